package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finflow/internal/amqp"
	"finflow/internal/core"
	applog "finflow/internal/log"
	"finflow/internal/metrics"
	"finflow/internal/ports"
)

// TransactionInput is what a user submits for a new or edited
// transaction. The type is never taken from input; it follows the
// category.
type TransactionInput struct {
	Amount      core.Money
	Description string
	CategoryID  string
	Date        time.Time
}

// TransactionService stores transactions locally and announces each
// change on the event publisher, if one is configured.
type TransactionService struct {
	store     ports.Store
	publisher ports.EventPublisher
	logger    *applog.Logger
}

// NewTransactionService accepts a nil publisher, in which case events are
// not sent.
func NewTransactionService(store ports.Store, publisher ports.EventPublisher, logger *applog.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentTx),
	}
}

func (s *TransactionService) build(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t := core.Transaction{
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Date:        in.Date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	cat, err := s.store.GetCategory(ctx, t.CategoryID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("category %s: %w", t.CategoryID, err)
	}
	t.ApplyCategory(cat)
	return t, nil
}

func (s *TransactionService) Add(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t, err := s.build(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	created.Category = t.Category

	metrics.RecordTransaction(string(created.Type), applog.OpCreate)
	s.logger.InfoContext(ctx, "Transaction created", applog.NewFields().
		WithTransaction(created.ID, string(created.Type), created.Amount.Dong, created.CategoryID).
		WithOperation(applog.OpCreate).ToSlice()...)
	s.publish(ctx, amqp.OpCreated, created.ID)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	t, err := s.build(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	metrics.RecordTransaction(string(t.Type), applog.OpUpdate)
	s.logger.InfoContext(ctx, "Transaction updated", applog.NewFields().
		WithTransaction(t.ID, string(t.Type), t.Amount.Dong, t.CategoryID).
		WithOperation(applog.OpUpdate).ToSlice()...)
	s.publish(ctx, amqp.OpUpdated, id)
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	metrics.RecordTransaction("", applog.OpDelete)
	s.logger.InfoContext(ctx, "Transaction deleted", applog.FieldTxID, id, applog.FieldOperation, applog.OpDelete)
	s.publish(ctx, amqp.OpDeleted, id)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// List returns the month's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, p.Start(), p.End())
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", p.Key(), err)
	}
	return txs, nil
}

// ClearAll deletes every transaction. Categories are kept.
func (s *TransactionService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAllTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear transactions: %w", err)
	}
	metrics.RecordTransaction("", applog.OpClear)
	s.logger.WarnContext(ctx, "All transactions deleted", "count", n, applog.FieldOperation, applog.OpClear)
	s.publish(ctx, amqp.OpCleared, "")
	return n, nil
}

// publish never fails the caller; the local write already succeeded.
func (s *TransactionService) publish(ctx context.Context, op, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, op, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldTxID, id,
			applog.FieldOperation, op,
			applog.FieldError, err)
	}
}
