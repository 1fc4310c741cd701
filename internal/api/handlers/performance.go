package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mxfunds/nav-analytics-backend/internal/api/request"
	"github.com/mxfunds/nav-analytics-backend/internal/api/response"
	"github.com/mxfunds/nav-analytics-backend/internal/model"
	"github.com/mxfunds/nav-analytics-backend/internal/service"
	"github.com/mxfunds/nav-analytics-backend/internal/validation"
)

// PerformanceHandler handles fund performance HTTP requests
type PerformanceHandler struct {
	perfService *service.PerformanceService
}

// NewPerformanceHandler creates a new PerformanceHandler
func NewPerformanceHandler(perfService *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{
		perfService: perfService,
	}
}

func (h *PerformanceHandler) metricsRequest(r *http.Request) (service.MetricsRequest, error) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if err := validation.ValidateTicker(ticker); err != nil {
		return service.MetricsRequest{}, err
	}
	params, err := request.ParsePerformanceParams(r)
	if err != nil {
		return service.MetricsRequest{}, err
	}
	return service.MetricsRequest{
		Ticker:     ticker,
		PeriodType: params.PeriodType,
		AsOf:       params.AsOf,
		Start:      params.Start,
		End:        params.End,
	}, nil
}

// Metrics computes performance metrics for one fund.
//
// Endpoint: GET /api/performance/{ticker}?period_type=&as_of=&start_date=&end_date=
func (h *PerformanceHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	req, err := h.metricsRequest(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	metrics, err := h.perfService.Metrics(req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, metrics)
}

// Accuracy reports reconciliation accuracy for one fund.
//
// Endpoint: GET /api/performance/{ticker}/accuracy?period_type=&as_of=&start_date=&end_date=
func (h *PerformanceHandler) Accuracy(w http.ResponseWriter, r *http.Request) {
	req, err := h.metricsRequest(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	accuracy, err := h.perfService.Accuracy(req, model.DefaultTolerances)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, accuracy)
}

// Compare computes metrics side by side for several funds; funds that fail
// carry their error in the result instead of failing the batch.
//
// Endpoint: GET /api/performance/compare?tickers=A,B,C&period_type=&as_of=
func (h *PerformanceHandler) Compare(w http.ResponseWriter, r *http.Request) {
	tickers, err := request.ParseTickers(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	params, err := request.ParsePerformanceParams(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	results := h.perfService.CompareFunds(tickers, params.PeriodType, params.AsOf)
	response.RespondJSON(w, http.StatusOK, results)
}

// Tickers lists every ticker present in the analytics store.
//
// Endpoint: GET /api/tickers
func (h *PerformanceHandler) Tickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.perfService.Tickers()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string][]string{"tickers": tickers})
}
