package http

import (
	"fmt"
	"net/http"

	"finflow/internal/core"
	applog "finflow/internal/log"
)

type settingsView struct {
	Categories int
	Period     core.Period
	Count      int
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	p := core.CurrentPeriod(s.now())
	txs, err := s.transactions.List(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	s.render(w, r, http.StatusOK, "settings_page", settingsView{
		Categories: len(cats),
		Period:     p,
		Count:      len(txs),
	})
}

// handleClearTransactions deletes every transaction; categories stay.
func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	n, err := s.transactions.ClearAll(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpClear)
		return
	}
	s.invalidate()

	if !isHTMX(r) {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	msg := fmt.Sprintf("Đã xóa %d giao dịch", n)
	NewHTMXResponse().
		TriggerTransactionsChanged(core.CurrentPeriod(s.now())).
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success" role="status">` + msg + `</div>`).
		Write(w)
}
