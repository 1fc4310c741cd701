package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mxfunds/nav-analytics-backend/internal/api/response"
	"github.com/mxfunds/nav-analytics-backend/internal/filings"
	"github.com/mxfunds/nav-analytics-backend/internal/report"
	"github.com/mxfunds/nav-analytics-backend/internal/service"
	"github.com/mxfunds/nav-analytics-backend/internal/validation"
)

// ReconciliationHandler handles NAV reconciliation HTTP requests
type ReconciliationHandler struct {
	reconService *service.ReconciliationService
	filingsRoot  string
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconService *service.ReconciliationService, filingsRoot string) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconService: reconService,
		filingsRoot:  filingsRoot,
	}
}

// Report builds a reconciliation report from a ticker's filings directory.
//
// Endpoint: GET /api/reconciliation/{ticker}/report?period_type=&as_of=&format=
// The as_of parameter accepts "YYYY-QN" or "YYYY-MM-DD"; format=text returns
// the fixed-width rendering instead of JSON.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if err := validation.ValidateTicker(ticker); err != nil {
		respondServiceError(w, err)
		return
	}

	q := r.URL.Query()
	period := filings.PeriodITD
	if raw := q.Get("period_type"); raw != "" {
		var err error
		period, err = filings.ParseReportPeriod(raw)
		if err != nil {
			respondServiceError(w, err)
			return
		}
	}

	var asOf *filings.AsOf
	if raw := q.Get("as_of"); raw != "" {
		var err error
		asOf, err = filings.ParseAsOf(raw)
		if err != nil {
			respondServiceError(w, err)
			return
		}
	}

	dir := filepath.Join(h.filingsRoot, ticker, "xbrls")
	rpt, err := h.reconService.BuildReport(r.Context(), ticker, dir, period, asOf)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		report.Render(w, rpt)
		return
	}
	response.RespondJSON(w, http.StatusOK, rpt)
}

// Import builds a ticker's inception-to-date report and persists it into
// the analytics store.
//
// Endpoint: POST /api/reconciliation/{ticker}/import
func (h *ReconciliationHandler) Import(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if err := validation.ValidateTicker(ticker); err != nil {
		respondServiceError(w, err)
		return
	}

	dir := filepath.Join(h.filingsRoot, ticker, "xbrls")
	rpt, err := h.reconService.ImportFilings(r.Context(), ticker, dir)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, service.ImportResult{
		Ticker:  ticker,
		Periods: len(rpt.Periods),
	})
}
