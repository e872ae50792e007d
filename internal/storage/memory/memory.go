package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"finflow/internal/core"
	"finflow/internal/ports"

	"github.com/google/uuid"
)

var _ ports.Store = (*Store)(nil)

// Store keeps categories and transactions in process memory. Data is lost
// on restart; it backs DATA_BACKEND=memory and the service tests.
type Store struct {
	mu   sync.Mutex
	cats []core.Category
	txs  map[string]core.Transaction
	now  func() time.Time
}

func New(cats []core.Category) *Store {
	s := &Store{txs: map[string]core.Transaction{}, now: time.Now}
	for _, c := range dedupe(cats) {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		s.cats = append(s.cats, c)
	}
	return s
}

// NewFromFiles seeds categories from base/seed_categories.txt, one
// "name|type|icon|color" per line. A missing file yields an empty store.
func NewFromFiles(base string) *Store {
	return New(readCategories(filepath.Join(base, "seed_categories.txt")))
}

func (s *Store) Close() error { return nil }

func (s *Store) CountCategories(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.cats)), nil
}

func (s *Store) CreateCategories(_ context.Context, cats []core.Category) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(cats))
	for _, c := range cats {
		c.ID = uuid.NewString()
		c.CreatedAt = s.now()
		s.cats = append(s.cats, c)
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	created, err := s.CreateCategories(ctx, []core.Category{c})
	if err != nil {
		return core.Category{}, err
	}
	return created[0], nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.categoryIndex(c.ID)
	if i < 0 {
		return core.ErrCategoryNotFound
	}
	c.CreatedAt = s.cats[i].CreatedAt
	s.cats[i] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.categoryIndex(id)
	if i < 0 {
		return core.ErrCategoryNotFound
	}
	for _, t := range s.txs {
		if t.CategoryID == id {
			return core.ErrCategoryInUse
		}
	}
	s.cats = append(s.cats[:i], s.cats[i+1:]...)
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.categoryIndex(id)
	if i < 0 {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return s.cats[i], nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) CountTransactionsByCategory(_ context.Context, categoryID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.txs {
		if t.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryIndex(t.CategoryID) < 0 {
		return core.Transaction{}, core.ErrCategoryNotFound
	}
	t.ID = uuid.NewString()
	t.CreatedAt = s.now()
	t.Category = nil
	s.txs[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.txs[t.ID]
	if !ok {
		return core.ErrTransactionNotFound
	}
	t.CreatedAt = old.CreatedAt
	t.Category = nil
	s.txs[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return core.ErrTransactionNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return s.withCategory(t), nil
}

func (s *Store) ListTransactions(_ context.Context, from, to time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txs {
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		out = append(out, s.withCategory(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) SumByType(ctx context.Context, from, to time.Time) (map[core.TransactionType]int64, error) {
	txs, err := s.ListTransactions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := map[core.TransactionType]int64{}
	for _, t := range txs {
		if out[t.Type], err = core.AddChecked(out[t.Type], t.Amount.Dong); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) DeleteAllTransactions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.txs))
	s.txs = map[string]core.Transaction{}
	return n, nil
}

// categoryIndex must be called with mu held.
func (s *Store) categoryIndex(id string) int {
	for i, c := range s.cats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) withCategory(t core.Transaction) core.Transaction {
	if i := s.categoryIndex(t.CategoryID); i >= 0 {
		c := s.cats[i]
		t.Category = &c
	}
	return t
}

func readCategories(path string) []core.Category {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Category
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := parseCategoryLine(line)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func parseCategoryLine(line string) (core.Category, error) {
	fields := strings.Split(line, "|")
	for len(fields) < 4 {
		fields = append(fields, "")
	}
	typ, err := core.ParseTransactionType(fields[1])
	if err != nil {
		return core.Category{}, fmt.Errorf("parse %q: %w", line, err)
	}
	c := core.Category{
		Name:  strings.TrimSpace(fields[0]),
		Type:  typ,
		Icon:  strings.TrimSpace(fields[2]),
		Color: strings.TrimSpace(fields[3]),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("parse %q: %w", line, err)
	}
	return c, nil
}

// dedupe drops categories whose name repeats an earlier one, preserving
// input order.
func dedupe(in []core.Category) []core.Category {
	seen := map[string]struct{}{}
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
