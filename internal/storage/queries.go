package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Category struct {
	ID        string
	Name      string
	Type      string
	Icon      string
	Color     string
	CreatedAt int64
}

type Transaction struct {
	ID          string
	Amount      int64
	Description string
	CategoryID  string
	Type        string
	OccurredAt  int64
	CreatedAt   int64
}

// TransactionWithCategory is a transaction row joined with its category.
type TransactionWithCategory struct {
	Transaction
	CategoryName  string
	CategoryType  string
	CategoryIcon  string
	CategoryColor string
}

const countCategories = `SELECT COUNT(*) FROM categories`

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countCategories).Scan(&n)
	return n, err
}

const createCategory = `INSERT INTO categories (id, name, type, icon, color, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, c Category) error {
	_, err := q.db.ExecContext(ctx, createCategory, c.ID, c.Name, c.Type, c.Icon, c.Color, c.CreatedAt)
	return err
}

const updateCategory = `UPDATE categories SET name = ?, type = ?, icon = ?, color = ? WHERE id = ?`

func (q *Queries) UpdateCategory(ctx context.Context, c Category) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCategory, c.Name, c.Type, c.Icon, c.Color, c.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getCategory = `SELECT id, name, type, icon, color, created_at FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id string) (Category, error) {
	var c Category
	err := q.db.QueryRowContext(ctx, getCategory, id).Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.CreatedAt)
	return c, err
}

const listCategories = `SELECT id, name, type, icon, color, created_at FROM categories ORDER BY created_at, rowid`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const countTransactionsByCategory = `SELECT COUNT(*) FROM transactions WHERE category_id = ?`

func (q *Queries) CountTransactionsByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTransactionsByCategory, categoryID).Scan(&n)
	return n, err
}

const createTransaction = `INSERT INTO transactions (id, amount, description, category_id, type, occurred_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, t Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction, t.ID, t.Amount, t.Description, t.CategoryID, t.Type, t.OccurredAt, t.CreatedAt)
	return err
}

const updateTransaction = `UPDATE transactions
SET amount = ?, description = ?, category_id = ?, type = ?, occurred_at = ?
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, t Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction, t.Amount, t.Description, t.CategoryID, t.Type, t.OccurredAt, t.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAllTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteAllTransactions(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAllTransactions)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const transactionColumns = `t.id, t.amount, t.description, t.category_id, t.type, t.occurred_at, t.created_at,
       c.name, c.type, c.icon, c.color`

const getTransaction = `SELECT ` + transactionColumns + `
FROM transactions t JOIN categories c ON c.id = t.category_id
WHERE t.id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionWithCategory, error) {
	var r TransactionWithCategory
	err := scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id), &r)
	return r, err
}

const listTransactionsBetween = `SELECT ` + transactionColumns + `
FROM transactions t JOIN categories c ON c.id = t.category_id
WHERE t.occurred_at >= ? AND t.occurred_at <= ?
ORDER BY t.occurred_at DESC, t.created_at DESC`

func (q *Queries) ListTransactionsBetween(ctx context.Context, from, to int64) ([]TransactionWithCategory, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionWithCategory
	for rows.Next() {
		var r TransactionWithCategory
		if err := scanTransaction(rows, &r); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type TypeSum struct {
	Type  string
	Total int64
}

const sumByType = `SELECT type, COALESCE(SUM(amount), 0)
FROM transactions
WHERE occurred_at >= ? AND occurred_at <= ?
GROUP BY type`

func (q *Queries) SumByType(ctx context.Context, from, to int64) ([]TypeSum, error) {
	rows, err := q.db.QueryContext(ctx, sumByType, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TypeSum
	for rows.Next() {
		var s TypeSum
		if err := rows.Scan(&s.Type, &s.Total); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner, r *TransactionWithCategory) error {
	return row.Scan(
		&r.ID, &r.Amount, &r.Description, &r.CategoryID, &r.Type, &r.OccurredAt, &r.CreatedAt,
		&r.CategoryName, &r.CategoryType, &r.CategoryIcon, &r.CategoryColor,
	)
}
