package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"finflow/internal/core"
	"finflow/internal/ports"
	applog "finflow/internal/log"
	"finflow/internal/storage/memory"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil), Component: applog.ComponentApp})
}

type event struct{ op, id string }

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, op, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{op, id})
	return p.err
}

func categoryByName(t *testing.T, cats []core.Category, name string) core.Category {
	t.Helper()
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not found", name)
	return core.Category{}
}

func setup(t *testing.T) (*memory.Store, *CategoryService, *TransactionService, *recordingPublisher, []core.Category) {
	t.Helper()
	store := memory.New(nil)
	cats := NewCategoryService(store, testLogger())
	pub := &recordingPublisher{}
	txs := NewTransactionService(store, pub, testLogger())
	list, err := cats.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return store, cats, txs, pub, list
}

func TestCategoryService_SeedsOnce(t *testing.T) {
	store := memory.New(nil)
	svc := NewCategoryService(store, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.List(context.Background()); err != nil {
				t.Errorf("List: %v", err)
			}
		}()
	}
	wg.Wait()

	n, _ := store.CountCategories(context.Background())
	if n != int64(len(core.DefaultCategories())) {
		t.Fatalf("got %d categories, want %d", n, len(core.DefaultCategories()))
	}
}

func TestCategoryService_NoSeedWhenPresent(t *testing.T) {
	store := memory.New([]core.Category{{Name: "Cà phê", Type: core.Expense}})
	svc := NewCategoryService(store, testLogger())
	cats, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Cà phê" {
		t.Fatalf("unexpected categories %+v", cats)
	}
}

func TestCategoryService_CRUD(t *testing.T) {
	ctx := context.Background()
	_, svc, _, _, _ := setup(t)

	if _, err := svc.Create(ctx, core.Category{Name: "  ", Type: core.Expense}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.Create(ctx, core.Category{Name: "Quà", Type: "gift"}); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}

	c, err := svc.Create(ctx, core.Category{Name: " Quà tặng ", Type: core.Expense, Color: "#ABCDEF"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" || c.Name != "Quà tặng" || c.Color != "#abcdef" {
		t.Fatalf("unexpected category %+v", c)
	}

	c.Type = core.Income
	if err := svc.Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := svc.Get(ctx, c.ID)
	if err != nil || got.Type != core.Income {
		t.Fatalf("Get after update = %+v, %v", got, err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if err := svc.Update(ctx, core.Category{ID: "missing", Name: "x", Type: core.Expense}); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	_, svc, txs, _, cats := setup(t)
	food := categoryByName(t, cats, "Ăn uống")

	_, err := txs.Add(ctx, TransactionInput{Amount: core.Money{Dong: 50_000}, CategoryID: food.ID, Date: time.Now()})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Delete(ctx, food.ID); !errors.Is(err, core.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
}

func TestTransactionService_AddCopiesCategoryType(t *testing.T) {
	ctx := context.Background()
	_, _, svc, pub, cats := setup(t)
	salary := categoryByName(t, cats, "Lương")

	tx, err := svc.Add(ctx, TransactionInput{
		Amount:      core.Money{Dong: 15_000_000},
		Description: "  Lương tháng 3 ",
		CategoryID:  salary.ID,
		Date:        time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tx.Type != core.Income || tx.Description != "Lương tháng 3" || tx.ID == "" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if len(pub.events) != 1 || pub.events[0] != (event{"created", tx.ID}) {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestTransactionService_Validation(t *testing.T) {
	ctx := context.Background()
	_, _, svc, pub, cats := setup(t)
	food := categoryByName(t, cats, "Ăn uống")
	now := time.Now()

	cases := []struct {
		name string
		in   TransactionInput
		want error
	}{
		{"zero amount", TransactionInput{CategoryID: food.ID, Date: now}, core.ErrInvalidAmount},
		{"no category", TransactionInput{Amount: core.Money{Dong: 1}, Date: now}, core.ErrEmptyCategory},
		{"unknown category", TransactionInput{Amount: core.Money{Dong: 1}, CategoryID: "nope", Date: now}, core.ErrCategoryNotFound},
		{"no date", TransactionInput{Amount: core.Money{Dong: 1}, CategoryID: food.ID}, core.ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed adds must not publish, got %+v", pub.events)
	}
}

func TestTransactionService_UpdateDeleteClear(t *testing.T) {
	ctx := context.Background()
	_, _, svc, pub, cats := setup(t)
	food := categoryByName(t, cats, "Ăn uống")
	invest := categoryByName(t, cats, "Đầu tư")
	date := time.Date(2025, 4, 10, 0, 0, 0, 0, time.Local)

	tx, err := svc.Add(ctx, TransactionInput{Amount: core.Money{Dong: 30_000}, CategoryID: food.ID, Date: date})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated, err := svc.Update(ctx, tx.ID, TransactionInput{Amount: core.Money{Dong: 2_000_000}, CategoryID: invest.ID, Date: date})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Type != core.Income {
		t.Fatalf("type should follow the new category, got %s", updated.Type)
	}
	got, err := svc.Get(ctx, tx.ID)
	if err != nil || got.Amount.Dong != 2_000_000 || got.CategoryID != invest.ID {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if _, err := svc.Update(ctx, "missing", TransactionInput{Amount: core.Money{Dong: 1}, CategoryID: food.ID, Date: date}); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, tx.ID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Add(ctx, TransactionInput{Amount: core.Money{Dong: 1000}, CategoryID: food.ID, Date: date}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	n, err := svc.ClearAll(ctx)
	if err != nil || n != 3 {
		t.Fatalf("ClearAll = %d, %v", n, err)
	}

	ops := make([]string, 0, len(pub.events))
	for _, e := range pub.events {
		ops = append(ops, e.op)
	}
	want := []string{"created", "updated", "deleted", "created", "created", "created", "cleared"}
	if len(ops) != len(want) {
		t.Fatalf("events %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("events %v, want %v", ops, want)
		}
	}
}

func TestTransactionService_PublishFailureIgnored(t *testing.T) {
	ctx := context.Background()
	store := memory.New(core.DefaultCategories())
	cats, _ := store.ListCategories(ctx)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, pub, testLogger())

	if _, err := svc.Add(ctx, TransactionInput{Amount: core.Money{Dong: 1}, CategoryID: cats[0].ID, Date: time.Now()}); err != nil {
		t.Fatalf("publish errors must not fail Add: %v", err)
	}

	noPub := NewTransactionService(store, nil, testLogger())
	if _, err := noPub.Add(ctx, TransactionInput{Amount: core.Money{Dong: 1}, CategoryID: cats[0].ID, Date: time.Now()}); err != nil {
		t.Fatalf("Add without publisher: %v", err)
	}
}

func TestTransactionService_ListByPeriod(t *testing.T) {
	ctx := context.Background()
	_, _, svc, _, cats := setup(t)
	food := categoryByName(t, cats, "Ăn uống")

	for _, d := range []time.Time{
		time.Date(2025, 1, 31, 23, 0, 0, 0, time.Local),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local),
		time.Date(2025, 2, 28, 23, 59, 59, 0, time.Local),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local),
	} {
		if _, err := svc.Add(ctx, TransactionInput{Amount: core.Money{Dong: 100}, CategoryID: food.ID, Date: d}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := svc.List(ctx, core.Period{Year: 2025, Month: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if !got[0].Date.After(got[1].Date) {
		t.Fatalf("expected newest first")
	}
	if _, err := svc.List(ctx, core.Period{Year: 2025, Month: 13}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestStatsService(t *testing.T) {
	ctx := context.Background()
	store, _, txs, _, cats := setup(t)
	stats := NewStatsService(store, testLogger())
	food := categoryByName(t, cats, "Ăn uống")
	move := categoryByName(t, cats, "Di chuyển")
	salary := categoryByName(t, cats, "Lương")
	p := core.Period{Year: 2025, Month: 6}

	add := func(cat core.Category, amount int64, day int) {
		t.Helper()
		_, err := txs.Add(ctx, TransactionInput{Amount: core.Money{Dong: amount}, CategoryID: cat.ID, Date: time.Date(2025, 6, day, 12, 0, 0, 0, time.Local)})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	add(salary, 10_000_000, 1)
	add(food, 150_000, 1)
	add(food, 50_000, 3)
	add(move, 300_000, 3)

	m, err := stats.Monthly(ctx, p)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if m.Income.Dong != 10_000_000 || m.Expense.Dong != 500_000 || m.Balance.Dong != 9_500_000 {
		t.Fatalf("unexpected stats %+v", m)
	}

	daily, err := stats.Daily(ctx, p)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if len(daily) != 30 {
		t.Fatalf("got %d days, want 30", len(daily))
	}
	if daily[0].Income.Dong != 10_000_000 || daily[0].Expense.Dong != 150_000 || daily[2].Expense.Dong != 350_000 {
		t.Fatalf("unexpected daily stats %+v %+v", daily[0], daily[2])
	}

	byCat, err := stats.ByCategory(ctx, p, core.Expense)
	if err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	if len(byCat) != 2 || byCat[0].Category.ID != move.ID || byCat[0].Amount.Dong != 300_000 {
		t.Fatalf("unexpected category totals %+v", byCat)
	}

	d, err := stats.Dashboard(ctx, p)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Stats != m {
		t.Fatalf("dashboard stats %+v, want %+v", d.Stats, m)
	}
	if d.BalanceWords != "Chín triệu năm trăm nghìn đồng" {
		t.Fatalf("BalanceWords = %q", d.BalanceWords)
	}
	if d.Count != 4 || len(d.Recent) != 4 || d.MaxDaily != 10_000_000 {
		t.Fatalf("unexpected dashboard %+v", d)
	}

	if _, err := stats.Dashboard(ctx, core.Period{Year: 2025, Month: 0}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestStatsService_EmptyMonth(t *testing.T) {
	store := memory.New(nil)
	stats := NewStatsService(store, testLogger())
	d, err := stats.Dashboard(context.Background(), core.Period{Year: 2024, Month: 2})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.BalanceWords != "Không đồng" || len(d.Daily) != 29 || d.MaxDaily != 1 {
		t.Fatalf("unexpected empty dashboard %+v", d)
	}
}

// sumStore reports fixed per-type sums.
type sumStore struct {
	ports.TransactionStore
	sums map[core.TransactionType]int64
}

func (s sumStore) SumByType(context.Context, time.Time, time.Time) (map[core.TransactionType]int64, error) {
	return s.sums, nil
}

func TestStatsService_MonthlyOverflow(t *testing.T) {
	p := core.Period{Year: 2025, Month: 3}
	store := sumStore{sums: map[core.TransactionType]int64{
		core.Expense:              math.MaxInt64 - 10,
		core.TransactionType("x"): 20,
	}}
	_, err := NewStatsService(store, testLogger()).Monthly(context.Background(), p)
	if !errors.Is(err, core.ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}

	store.sums = map[core.TransactionType]int64{core.Expense: math.MaxInt64 - 10, core.Income: 20}
	stats, err := NewStatsService(store, testLogger()).Monthly(context.Background(), p)
	if err != nil || stats.Expense.Dong != math.MaxInt64-10 || stats.Income.Dong != 20 {
		t.Fatalf("Monthly = %+v, %v", stats, err)
	}
}
