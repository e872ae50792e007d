// Package worker consumes transaction events and mirrors the ledger into
// the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finflow/internal/amqp"
	"finflow/internal/core"
	applog "finflow/internal/log"
	"finflow/internal/metrics"
	"finflow/internal/sheets/google"
)

// Ledger is the read side of the store the worker needs.
type Ledger interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	ListTransactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error)
}

// Exporter writes ledger rows keyed by transaction id.
type Exporter interface {
	Upsert(ctx context.Context, r google.Row) (string, error)
	Delete(ctx context.Context, id string) (bool, error)
	ClearAll(ctx context.Context) error
}

type ExportWorker struct {
	ledger   Ledger
	exporter Exporter
	logger   *applog.Logger
}

func NewExportWorker(ledger Ledger, exporter Exporter, logger *applog.Logger) *ExportWorker {
	return &ExportWorker{
		ledger:   ledger,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// Run consumes events until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.Consume(ctx, w.Handle)
}

// Handle applies one event to the export. A returned error requeues the
// message.
func (w *ExportWorker) Handle(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.logger.DebugContext(ctx, "Processing transaction event",
		applog.FieldOperation, ev.Op, applog.FieldTxID, ev.ID, "version", ev.Version)

	switch ev.Op {
	case amqp.OpCreated, amqp.OpUpdated:
		return w.export(ctx, ev.ID)
	case amqp.OpDeleted:
		found, err := w.exporter.Delete(ctx, ev.ID)
		if err != nil {
			return fmt.Errorf("delete exported row %s: %w", ev.ID, err)
		}
		if !found {
			w.logger.WarnContext(ctx, "No exported row for deleted transaction", applog.FieldTxID, ev.ID)
			return nil
		}
		w.logger.InfoContext(ctx, "Exported row deleted", applog.FieldTxID, ev.ID)
		return nil
	case amqp.OpCleared:
		if err := w.exporter.ClearAll(ctx); err != nil {
			return fmt.Errorf("clear export: %w", err)
		}
		w.logger.InfoContext(ctx, "Export cleared")
		return nil
	default:
		return fmt.Errorf("%w: %q", amqp.ErrUnknownOp, ev.Op)
	}
}

func (w *ExportWorker) export(ctx context.Context, id string) error {
	t, err := w.ledger.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrTransactionNotFound) {
		// Deleted before the worker got to it; the delete event follows.
		w.logger.WarnContext(ctx, "Transaction gone before export", applog.FieldTxID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", id, err)
	}
	return w.upsert(ctx, t)
}

func (w *ExportWorker) upsert(ctx context.Context, t core.Transaction) error {
	if t.Category == nil && t.CategoryID != "" {
		c, err := w.ledger.GetCategory(ctx, t.CategoryID)
		if err != nil && !errors.Is(err, core.ErrCategoryNotFound) {
			return fmt.Errorf("load category %s: %w", t.CategoryID, err)
		}
		if err == nil {
			t.Category = &c
		}
	}

	ref, err := w.exporter.Upsert(ctx, google.RowFromTransaction(t))
	metrics.RecordExport(err)
	if err != nil {
		return fmt.Errorf("export transaction %s: %w", t.ID, err)
	}
	w.logger.InfoContext(ctx, "Transaction exported", applog.NewFields().
		WithTransaction(t.ID, string(t.Type), t.Amount.Dong, t.CategoryID).
		ToSlice()...)
	w.logger.DebugContext(ctx, "Export range", applog.FieldTxID, t.ID, applog.FieldSheetsRef, ref)
	return nil
}

// Backfill re-exports every transaction of p. It recovers rows missed
// while the worker was down; rows are keyed by id so repeats are safe.
func (w *ExportWorker) Backfill(ctx context.Context, p core.Period) (int, error) {
	txs, err := w.ledger.ListTransactions(ctx, p.Start(), p.End())
	if err != nil {
		return 0, fmt.Errorf("list transactions for %s: %w", p.Key(), err)
	}
	var failed int
	for _, t := range txs {
		if err := w.upsert(ctx, t); err != nil {
			failed++
			w.logger.ErrorContext(ctx, "Backfill export failed", applog.FieldTxID, t.ID, applog.FieldError, err)
		}
	}
	w.logger.InfoContext(ctx, "Backfill completed",
		applog.FieldYear, p.Year, applog.FieldMonth, p.Month,
		"total", len(txs), "errors", failed)
	if failed > 0 {
		return len(txs) - failed, fmt.Errorf("backfill %s: %d of %d rows failed", p.Key(), failed, len(txs))
	}
	return len(txs), nil
}
