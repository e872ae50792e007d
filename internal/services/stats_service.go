package services

import (
	"context"
	"fmt"

	"finflow/internal/core"
	applog "finflow/internal/log"
	"finflow/internal/ports"

	"golang.org/x/sync/errgroup"
)

const recentLimit = 10

type StatsService struct {
	store  ports.TransactionStore
	logger *applog.Logger
}

func NewStatsService(store ports.TransactionStore, logger *applog.Logger) *StatsService {
	return &StatsService{store: store, logger: logger.WithComponent(applog.ComponentStats)}
}

// Monthly totals income and expense for p. Types other than income count
// as expense.
func (s *StatsService) Monthly(ctx context.Context, p core.Period) (core.MonthStats, error) {
	if err := p.Validate(); err != nil {
		return core.MonthStats{}, err
	}
	sums, err := s.store.SumByType(ctx, p.Start(), p.End())
	if err != nil {
		return core.MonthStats{}, fmt.Errorf("sum transactions for %s: %w", p.Key(), err)
	}
	var income, expense int64
	for typ, v := range sums {
		if typ == core.Income {
			income, err = core.AddChecked(income, v)
		} else {
			expense, err = core.AddChecked(expense, v)
		}
		if err != nil {
			return core.MonthStats{}, fmt.Errorf("sum transactions for %s: %w", p.Key(), err)
		}
	}
	return core.NewMonthStats(p, core.Money{Dong: income}, core.Money{Dong: expense}), nil
}

// Daily returns one entry per calendar day of p.
func (s *StatsService) Daily(ctx context.Context, p core.Period) ([]core.DailyStat, error) {
	txs, err := s.list(ctx, p)
	if err != nil {
		return nil, err
	}
	return core.BuildDailyStats(p, txs), nil
}

func (s *StatsService) ByCategory(ctx context.Context, p core.Period, typ core.TransactionType) ([]core.CategoryTotal, error) {
	if err := typ.Validate(); err != nil {
		return nil, err
	}
	txs, err := s.list(ctx, p)
	if err != nil {
		return nil, err
	}
	return core.BuildCategoryTotals(txs, typ), nil
}

func (s *StatsService) list(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, p.Start(), p.End())
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", p.Key(), err)
	}
	return txs, nil
}

// Dashboard is everything the home page shows for one month.
type Dashboard struct {
	Stats        core.MonthStats
	BalanceWords string
	Daily        []core.DailyStat
	MaxDaily     int64
	Expenses     []core.CategoryTotal
	Recent       []core.Transaction
	Count        int
}

// Dashboard loads the month's figures concurrently.
func (s *StatsService) Dashboard(ctx context.Context, p core.Period) (Dashboard, error) {
	if err := p.Validate(); err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	var txs []core.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Stats, err = s.Monthly(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		d.Daily, err = s.Daily(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		d.Expenses, err = s.ByCategory(gctx, p, core.Expense)
		return err
	})
	g.Go(func() (err error) {
		txs, err = s.list(gctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load dashboard",
			applog.FieldYear, p.Year,
			applog.FieldMonth, p.Month,
			applog.FieldError, err)
		return Dashboard{}, err
	}

	d.BalanceWords = d.Stats.Balance.Words()
	d.MaxDaily = core.MaxDaily(d.Daily)
	d.Count = len(txs)
	if len(txs) > recentLimit {
		txs = txs[:recentLimit]
	}
	d.Recent = txs
	return d, nil
}
