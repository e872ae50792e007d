// Package ports declares the storage interfaces the services depend on.
package ports

import (
	"context"
	"time"

	"finflow/internal/core"
)

type (
	CategoryStore interface {
		CountCategories(ctx context.Context) (int64, error)
		// CreateCategories inserts all categories in one transaction and
		// returns them with ids assigned.
		CreateCategories(ctx context.Context, cats []core.Category) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string) error
		GetCategory(ctx context.Context, id string) (core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		CountTransactionsByCategory(ctx context.Context, categoryID string) (int64, error)
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// ListTransactions returns transactions dated within [from, to],
		// newest first, with their category attached.
		ListTransactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error)
		// SumByType totals amounts within [from, to] per transaction type.
		SumByType(ctx context.Context, from, to time.Time) (map[core.TransactionType]int64, error)
		DeleteAllTransactions(ctx context.Context) (int64, error)
	}

	// Store is implemented by every data backend.
	Store interface {
		CategoryStore
		TransactionStore
		Close() error
	}

	// EventPublisher is notified after each transaction mutation.
	EventPublisher interface {
		PublishTransactionEvent(ctx context.Context, op string, id string) error
	}
)
