package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finflow/internal/core"
	"finflow/internal/ports"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var _ ports.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the main pool opens the file.
	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("Database schema ready", "path", dbPath, "version", version)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable; used by /readyz.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CountCategories(ctx context.Context) (int64, error) {
	n, err := r.queries.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// CreateCategories inserts the categories atomically, used to seed an
// empty database.
func (r *SQLiteRepository) CreateCategories(ctx context.Context, cats []core.Category) ([]core.Category, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	created := make([]core.Category, 0, len(cats))
	now := r.now()
	for _, c := range cats {
		c.ID = uuid.NewString()
		c.CreatedAt = now
		if err := q.CreateCategory(ctx, categoryToRow(c)); err != nil {
			return nil, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		created = append(created, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit categories: %w", err)
	}

	slog.InfoContext(ctx, "Categories created", "count", len(created))
	return created, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = r.now()
	if err := r.queries.CreateCategory(ctx, categoryToRow(c)); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	n, err := r.queries.UpdateCategory(ctx, categoryToRow(c))
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	n, err := r.queries.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return rowToCategory(row), nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = rowToCategory(row)
	}
	return out, nil
}

func (r *SQLiteRepository) CountTransactionsByCategory(ctx context.Context, categoryID string) (int64, error) {
	n, err := r.queries.CountTransactionsByCategory(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("count transactions for category %s: %w", categoryID, err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = r.now()
	if err := r.queries.CreateTransaction(ctx, transactionToRow(t)); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount", t.Amount.Dong,
		"type", t.Type,
		"category_id", t.CategoryID)

	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	n, err := r.queries.UpdateTransaction(ctx, transactionToRow(t))
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return rowToTransaction(row), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsBetween(ctx, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = rowToTransaction(row)
	}
	return out, nil
}

func (r *SQLiteRepository) SumByType(ctx context.Context, from, to time.Time) (map[core.TransactionType]int64, error) {
	sums, err := r.queries.SumByType(ctx, from.Unix(), to.Unix())
	if err != nil {
		// SQLite's SUM fails with "integer overflow" rather than wrapping.
		if strings.Contains(err.Error(), "integer overflow") {
			return nil, fmt.Errorf("sum by type: %w: %v", core.ErrAmountOverflow, err)
		}
		return nil, fmt.Errorf("sum by type: %w", err)
	}
	out := make(map[core.TransactionType]int64, len(sums))
	for _, s := range sums {
		out[core.TransactionType(s.Type)] = s.Total
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteAllTransactions(ctx context.Context) (int64, error) {
	n, err := r.queries.DeleteAllTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all transactions: %w", err)
	}
	slog.WarnContext(ctx, "All transactions deleted", "count", n)
	return n, nil
}

func categoryToRow(c core.Category) Category {
	return Category{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Icon:      c.Icon,
		Color:     c.Color,
		CreatedAt: c.CreatedAt.Unix(),
	}
}

func rowToCategory(row Category) core.Category {
	return core.Category{
		ID:        row.ID,
		Name:      row.Name,
		Type:      core.TransactionType(row.Type),
		Icon:      row.Icon,
		Color:     row.Color,
		CreatedAt: time.Unix(row.CreatedAt, 0),
	}
}

func transactionToRow(t core.Transaction) Transaction {
	return Transaction{
		ID:          t.ID,
		Amount:      t.Amount.Dong,
		Description: t.Description,
		CategoryID:  t.CategoryID,
		Type:        string(t.Type),
		OccurredAt:  t.Date.Unix(),
		CreatedAt:   t.CreatedAt.Unix(),
	}
}

func rowToTransaction(row TransactionWithCategory) core.Transaction {
	return core.Transaction{
		ID:          row.ID,
		Amount:      core.Money{Dong: row.Amount},
		Description: row.Description,
		CategoryID:  row.CategoryID,
		Category: &core.Category{
			ID:    row.CategoryID,
			Name:  row.CategoryName,
			Type:  core.TransactionType(row.CategoryType),
			Icon:  row.CategoryIcon,
			Color: row.CategoryColor,
		},
		Type:      core.TransactionType(row.Type),
		Date:      time.Unix(row.OccurredAt, 0),
		CreatedAt: time.Unix(row.CreatedAt, 0),
	}
}
