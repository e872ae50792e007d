package http

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"finflow/internal/core"
	applog "finflow/internal/log"
	"finflow/internal/vnwords"
)

type statsView struct {
	Period   core.Period
	Prev     core.Period
	Next     core.Period
	Stats    core.MonthStats
	Daily    []core.DailyStat
	MaxDaily int64
	Expenses []core.CategoryTotal
	Income   []core.CategoryTotal
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := ParsePeriod(r.URL.Query(), s.now())
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Invalid period parameter",
			applog.FieldQuery, r.URL.RawQuery, applog.FieldError, err)
	}

	view := statsView{Period: p, Prev: p.Prev(), Next: p.Next()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.dashboard(gctx, p)
		if err != nil {
			return err
		}
		view.Stats, view.Daily, view.MaxDaily, view.Expenses = d.Stats, d.Daily, d.MaxDaily, d.Expenses
		return nil
	})
	g.Go(func() (err error) {
		view.Income, err = s.stats.ByCategory(gctx, p, core.Income)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	s.render(w, r, http.StatusOK, "stats_page", view)
}

type dailyStatJSON struct {
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

type dailyStatsJSON struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Income  int64           `json:"income"`
	Expense int64           `json:"expense"`
	Balance int64           `json:"balance"`
	Max     int64           `json:"max"`
	Days    []dailyStatJSON `json:"days"`
}

// handleDailyStatsAPI returns the month's per-day totals. Unlike the
// pages, a bad period is an error here.
func (s *Server) handleDailyStatsAPI(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriod(r.URL.Query(), s.now())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": userMessage(err)})
		return
	}
	d, err := s.dashboard(r.Context(), p)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load daily stats",
			applog.FieldYear, p.Year, applog.FieldMonth, p.Month, applog.FieldError, err)
		writeJSON(w, statusFor(err), map[string]string{"error": userMessage(err)})
		return
	}

	out := dailyStatsJSON{
		Year:    p.Year,
		Month:   p.Month,
		Income:  d.Stats.Income.Dong,
		Expense: d.Stats.Expense.Dong,
		Balance: d.Stats.Balance.Dong,
		Max:     d.MaxDaily,
		Days:    make([]dailyStatJSON, 0, len(d.Daily)),
	}
	for _, day := range d.Daily {
		out.Days = append(out.Days, dailyStatJSON{
			Day:     day.Day,
			Date:    day.Date,
			Income:  day.Income.Dong,
			Expense: day.Expense.Dong,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleWordsAPI reads ?amount= aloud in Vietnamese.
func (s *Server) handleWordsAPI(w http.ResponseWriter, r *http.Request) {
	amount := strings.TrimSpace(r.URL.Query().Get("amount"))
	words, err := vnwords.FromString(amount)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"amount": amount,
			"error":  userMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"amount": amount, "words": words})
}

// handleAmountWords is the live preview under the amount field. Anything
// that is not a valid amount renders an empty hint.
func (s *Server) handleAmountWords(w http.ResponseWriter, r *http.Request) {
	m, err := core.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		NewHTMXResponse().BodyHTML(`<span class="amount-words"></span>`).Write(w)
		return
	}
	s.renderFragment(w, r, "amount_words", m, NewHTMXResponse())
}
