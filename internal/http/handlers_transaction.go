package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"finflow/internal/core"
	applog "finflow/internal/log"
)

type transactionsView struct {
	Period       core.Period
	Prev         core.Period
	Next         core.Period
	Stats        core.MonthStats
	Transactions []core.Transaction
	Categories   []core.Category
	Today        time.Time
	Edit         *core.Transaction
}

func (s *Server) transactionsView(ctx context.Context, p core.Period) (transactionsView, error) {
	txs, err := s.transactions.List(ctx, p)
	if err != nil {
		return transactionsView{}, err
	}
	cats, err := s.categories.List(ctx)
	if err != nil {
		return transactionsView{}, err
	}
	return transactionsView{
		Period:       p,
		Prev:         p.Prev(),
		Next:         p.Next(),
		Stats:        core.SumTransactions(p, txs),
		Transactions: txs,
		Categories:   cats,
		Today:        s.now(),
	}, nil
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := ParsePeriod(r.URL.Query(), s.now())
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Invalid period parameter",
			applog.FieldQuery, r.URL.RawQuery, applog.FieldError, err)
	}
	view, err := s.transactionsView(ctx, p)
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	if isHTMX(r) && r.Header.Get("HX-Target") == "transaction-list" {
		s.renderFragment(w, r, "transaction_list", view, NewHTMXResponse())
		return
	}
	s.render(w, r, http.StatusOK, "transactions_page", view)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	in, err := ParseTransactionInput(p, s.now())
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	created, err := s.transactions.Add(ctx, in)
	if err != nil {
		s.writeError(w, r, categoryAsInput(err), applog.OpCreate)
		return
	}
	s.invalidate()

	period := core.CurrentPeriod(created.Date)
	s.afterTransactionChange(w, r, period, NewHTMXResponse().
		TriggerFormReset().
		TriggerSuccessNotification(msgTxCreated))
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	t, err := s.transactions.Get(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	view, err := s.transactionsView(ctx, core.CurrentPeriod(t.Date))
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	view.Edit = &t
	if isHTMX(r) {
		s.renderFragment(w, r, "transaction_form", view, NewHTMXResponse())
		return
	}
	s.render(w, r, http.StatusOK, "transactions_page", view)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := r.PathValue("id")
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	in, err := ParseTransactionInput(p, s.now())
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	if _, err := s.transactions.Get(ctx, id); err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	updated, err := s.transactions.Update(ctx, id, in)
	if err != nil {
		s.writeError(w, r, categoryAsInput(err), applog.OpUpdate)
		return
	}
	s.invalidate()

	s.afterTransactionChange(w, r, core.CurrentPeriod(updated.Date), NewHTMXResponse().
		TriggerFormReset().
		TriggerSuccessNotification(msgTxUpdated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := r.PathValue("id")
	t, err := s.transactions.Get(ctx, id)
	if err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	s.invalidate()

	s.afterTransactionChange(w, r, core.CurrentPeriod(t.Date), NewHTMXResponse().
		TriggerSuccessNotification(msgTxDeleted))
}

// afterTransactionChange answers an HTMX request with the refreshed list
// of month p and a plain form post with a redirect to that month.
func (s *Server) afterTransactionChange(w http.ResponseWriter, r *http.Request, p core.Period, b *HTMXResponseBuilder) {
	if !isHTMX(r) {
		http.Redirect(w, r, fmt.Sprintf("/transactions?year=%d&month=%d", p.Year, p.Month), http.StatusSeeOther)
		return
	}
	view, err := s.transactionsView(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.renderFragment(w, r, "transaction_list", view, b.TriggerTransactionsChanged(p))
}

// categoryAsInput turns a missing category on a transaction into an input
// error; the transaction itself was never found missing.
func categoryAsInput(err error) error {
	if errors.Is(err, core.ErrCategoryNotFound) {
		return fmt.Errorf("%w: %w", core.ErrEmptyCategory, err)
	}
	return err
}
