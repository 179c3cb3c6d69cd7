package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"savings/internal/core"
	"savings/internal/export"
	applog "savings/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.History(r.Context())
	if err != nil {
		s.internalError(w, r, "List records failed", applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	raw, err := s.decodeRecordInput(w, r)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid record payload",
			applog.FieldError, err, applog.FieldOperation, applog.OpParse)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.svc.AddRaw(r.Context(), raw)
	if errors.Is(err, core.ErrInvalidDate) {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}
	if err != nil {
		s.internalError(w, r, "Create record failed", applog.OpCreate, err)
		return
	}

	s.summaryCache.Purge()
	s.events.LogRecordCreated(r.Context(), rec.ID, rec.Date.String(), rec.Total.String())

	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, err := s.svc.Delete(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "Delete record failed", applog.OpDelete, err)
		return
	}
	if removed {
		s.summaryCache.Purge()
		s.events.LogRecordDeleted(r.Context(), id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.svc.LatestRates(r.Context())
	if err != nil {
		s.internalError(w, r, "Latest rates failed", applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

type previewResponse struct {
	core.Preview
	Display struct {
		TotalGold    string `json:"totalGold"`
		DollarsInEGP string `json:"dollarsInEGP"`
		Total        string `json:"total"`
	} `json:"display"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	raw, err := s.decodeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query")
		return
	}
	resp := previewResponse{Preview: core.PreviewOf(raw)}
	resp.Display.TotalGold = core.FormatCurrency(resp.TotalGold)
	resp.Display.DollarsInEGP = core.FormatCurrency(resp.DollarsInEGP)
	resp.Display.Total = core.FormatCurrency(resp.Total)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r.Context())
	if err != nil {
		s.internalError(w, r, "Summary failed", applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	points, err := s.svc.Trend(r.Context())
	if err != nil {
		s.internalError(w, r, "Trend failed", applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.List(r.Context())
	if err != nil {
		s.internalError(w, r, "Export failed", applog.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="savings-`+core.Today().String()+`.csv"`)
	if err := export.WriteCSV(w, recs); err != nil {
		// headers are gone already, only log
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export write failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpExport)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg, op string, err error) {
	s.events.LogError(r.Context(), msg, err, op, applog.NewFields().WithPath(r.URL.Path))
	writeError(w, http.StatusInternalServerError, "internal error")
}
