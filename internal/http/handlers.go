package http

import (
	"context"
	"net/http"
	"time"

	"finflow/internal/core"
	applog "finflow/internal/log"
	"finflow/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and the data backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.ready == nil:
		checks["store"] = "not_configured"
	default:
		if err := s.ready.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	hits, misses := s.dashCache.Stats()
	checks["cache"] = map[string]any{
		"entries": s.dashCache.Len(),
		"hits":    hits,
		"misses":  misses,
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Rejected(),
	}
	checks["suspicious_requests"] = s.detector.Suspicious()

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

type dashboardView struct {
	services.Dashboard
	Period  core.Period
	Prev    core.Period
	Next    core.Period
	Current bool
}

// handleDashboard renders the month summary. An invalid ?month= falls
// back to the current month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	now := s.now()
	p, err := ParsePeriod(r.URL.Query(), now)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Invalid period parameter",
			applog.FieldQuery, r.URL.RawQuery,
			applog.FieldError, err)
	}

	d, err := s.dashboard(ctx, p)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}

	view := dashboardView{
		Dashboard: d,
		Period:    p,
		Prev:      p.Prev(),
		Next:      p.Next(),
		Current:   p == core.CurrentPeriod(now),
	}
	if isHTMX(r) && r.Header.Get("HX-Target") == "dashboard" {
		s.renderFragment(w, r, "dashboard_body", view, NewHTMXResponse())
		return
	}
	s.render(w, r, http.StatusOK, "dashboard_page", view)
}
