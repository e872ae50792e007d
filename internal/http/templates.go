package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"finflow/internal/core"
	applog "finflow/internal/log"
)

const chartHeight = 160

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"vnd":       func(m core.Money) string { return m.String() },
		"words":     func(m core.Money) string { return m.Words() },
		"pct":       func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
		"barHeight": barHeight,
		"barX":      func(i int) int { return i * 12 },
		"barY":      func(h int) int { return chartHeight - h },
		"chartH":    func() int { return chartHeight },
		"chartW":    func(days int) int { return days * 12 },
		"dateInput": func(t time.Time) string { return t.Format("2006-01-02") },
		"dateShort": func(t time.Time) string { return t.Format("02/01") },
		"isIncome":  func(t core.TransactionType) bool { return t == core.Income },
		"query": func(p core.Period) template.URL {
			return template.URL(fmt.Sprintf("year=%d&month=%d", p.Year, p.Month))
		},
	}
}

// barHeight scales value against max into [0, chartHeight]. Non-zero
// values get at least 2px so that small days stay visible.
func barHeight(value core.Money, max int64) int {
	if max <= 0 || value.Dong <= 0 {
		return 0
	}
	h := int(value.Dong * chartHeight / max)
	if h < 2 {
		h = 2
	}
	if h > chartHeight {
		h = chartHeight
	}
	return h
}

// render executes a named template into a buffer first so that a failing
// template never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, msgTemplatesMissing, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Template execution failed", err, applog.OpRender,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", ""))
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderFragment renders a partial and attaches the builder's triggers.
func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	if s.templates == nil {
		http.Error(w, msgTemplatesMissing, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Fragment execution failed",
			"template", name, applog.FieldError, err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	b.BodyHTML(buf.String()).Write(w)
}
