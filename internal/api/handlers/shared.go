package handlers

import (
	"errors"
	"net/http"

	"github.com/mxfunds/nav-analytics-backend/internal/api/response"
	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
)

// respondServiceError maps a service error onto an HTTP status: validation
// failures are 400, missing data is 404, everything else is 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidTicker),
		errors.Is(err, apperrors.ErrInvalidPeriodType),
		errors.Is(err, apperrors.ErrInvalidAsOf),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidCSVHeaders):
		response.RespondError(w, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, apperrors.ErrTickerNotFound),
		errors.Is(err, apperrors.ErrNoDataInRange),
		errors.Is(err, apperrors.ErrNoFilingsFound):
		response.RespondError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, apperrors.ErrInsufficientPeriods):
		response.RespondError(w, http.StatusUnprocessableEntity, "insufficient data", err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
