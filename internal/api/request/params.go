// Package request parses and validates query parameters shared across
// handlers.
package request

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
	"github.com/mxfunds/nav-analytics-backend/internal/model"
	"github.com/mxfunds/nav-analytics-backend/internal/validation"
)

// PerformanceParams are the query parameters of the performance endpoints.
type PerformanceParams struct {
	PeriodType model.PeriodType
	AsOf       string
	Start      string
	End        string
}

// ParsePerformanceParams reads period_type (default itd), as_of, start_date
// and end_date from the query string.
func ParsePerformanceParams(r *http.Request) (PerformanceParams, error) {
	q := r.URL.Query()

	params := PerformanceParams{PeriodType: model.PeriodITD}
	if raw := q.Get("period_type"); raw != "" {
		pt, ok := model.ParsePeriodType(raw)
		if !ok {
			return params, fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriodType, raw)
		}
		params.PeriodType = pt
	}

	if asOf := q.Get("as_of"); asOf != "" {
		if err := validation.ValidateDate(asOf); err != nil {
			return params, fmt.Errorf("%w: %q", apperrors.ErrInvalidAsOf, asOf)
		}
		params.AsOf = asOf
	}

	params.Start = q.Get("start_date")
	params.End = q.Get("end_date")
	return params, nil
}

// ParseTickers splits a comma-separated tickers parameter and validates
// each entry.
func ParseTickers(r *http.Request) ([]string, error) {
	raw := r.URL.Query().Get("tickers")
	if raw == "" {
		return nil, fmt.Errorf("%w: tickers parameter required", apperrors.ErrInvalidTicker)
	}
	parts := strings.Split(raw, ",")
	tickers := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToUpper(strings.TrimSpace(p))
		if t == "" {
			continue
		}
		tickers = append(tickers, t)
	}
	if err := validation.ValidateTickers(tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}
