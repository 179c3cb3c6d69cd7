package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"

	"savings/internal/core"
	applog "savings/internal/log"
)

var templateFuncs = template.FuncMap{
	"currency": core.FormatCurrency,
	"short":    core.FormatShort,
	"dateLong": core.FormatDateLong,
	"growth": func(g *decimal.Decimal) string {
		if g == nil {
			return ""
		}
		return core.FormatPercent(*g)
	},
	"positive": func(g *decimal.Decimal) bool {
		return g != nil && !g.IsNegative()
	},
}

type indexData struct {
	Today   string
	Rates   core.Rates
	Summary core.Summary
	History []core.HistoryEntry
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if s.templates == nil {
		logger.ErrorContext(ctx, "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	rates, err := s.svc.LatestRates(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Latest rates error", applog.FieldError, err)
		rates = core.DefaultRates()
	}
	sum, err := s.summary(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Summary error", applog.FieldError, err)
	}
	history, err := s.svc.History(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "History error", applog.FieldError, err)
	}

	data := indexData{
		Today:   core.Today().String(),
		Rates:   rates,
		Summary: sum,
		History: history,
	}

	// render into a buffer so a template error still yields a clean 500
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logger.ErrorContext(ctx, "Index template execution failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
