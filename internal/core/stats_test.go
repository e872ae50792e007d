package core

import (
	"testing"
	"time"
)

func tx(day int, typ TransactionType, amount int64, cat string) Transaction {
	return Transaction{
		ID:         cat + "-" + string(typ),
		Amount:     Money{Dong: amount},
		CategoryID: cat,
		Category:   &Category{ID: cat, Name: cat, Type: typ},
		Type:       typ,
		Date:       time.Date(2025, 4, day, 12, 0, 0, 0, time.Local),
	}
}

func TestBuildDailyStats(t *testing.T) {
	p := Period{Year: 2025, Month: 4}
	txs := []Transaction{
		tx(1, Income, 10_000_000, "salary"),
		tx(1, Expense, 50_000, "food"),
		tx(1, Expense, 30_000, "food"),
		tx(30, Expense, 200_000, "home"),
		{Amount: Money{Dong: 999}, Type: Expense, Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local)},
	}
	days := BuildDailyStats(p, txs)
	if len(days) != 30 {
		t.Fatalf("expected 30 days, got %d", len(days))
	}
	if days[0].Date != "2025-04-01" || days[0].Day != 1 {
		t.Fatalf("unexpected first day %+v", days[0])
	}
	if days[0].Income.Dong != 10_000_000 || days[0].Expense.Dong != 80_000 {
		t.Fatalf("unexpected day 1 totals %+v", days[0])
	}
	if days[1].Income.Dong != 0 || days[1].Expense.Dong != 0 {
		t.Fatalf("day 2 should be empty: %+v", days[1])
	}
	if days[29].Expense.Dong != 200_000 {
		t.Fatalf("unexpected day 30 %+v", days[29])
	}
	if MaxDaily(days) != 10_000_000 {
		t.Fatalf("MaxDaily = %d", MaxDaily(days))
	}
}

func TestSumTransactions(t *testing.T) {
	p := Period{Year: 2025, Month: 4}
	s := SumTransactions(p, []Transaction{
		tx(2, Income, 1_000, "a"),
		tx(3, Expense, 1_500, "b"),
		{Amount: Money{Dong: 100}, Type: "", Date: time.Now()},
	})
	if s.Income.Dong != 1_000 || s.Expense.Dong != 1_600 || s.Balance.Dong != -600 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestBuildCategoryTotals(t *testing.T) {
	totals := BuildCategoryTotals([]Transaction{
		tx(1, Expense, 100, "food"),
		tx(2, Expense, 300, "home"),
		tx(3, Expense, 100, "food"),
		tx(4, Income, 5_000, "salary"),
	}, Expense)
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	if totals[0].Category.ID != "home" || totals[0].Amount.Dong != 300 || totals[0].Share != 60 {
		t.Fatalf("unexpected first total %+v", totals[0])
	}
	if totals[1].Category.Name != "food" || totals[1].Share != 40 {
		t.Fatalf("unexpected second total %+v", totals[1])
	}
}
