package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
)

// Exchange tickers are short uppercase alphanumerics, e.g. "CAPGLPI".
var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,12}$`)

// ValidateTicker checks that a string looks like a fund ticker.
func ValidateTicker(ticker string) error {
	if !tickerPattern.MatchString(ticker) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidTicker, ticker)
	}
	return nil
}

// ValidateTickers validates a slice of tickers.
func ValidateTickers(tickers []string) error {
	if len(tickers) == 0 {
		return fmt.Errorf("%w: no tickers given", apperrors.ErrInvalidTicker)
	}
	for _, t := range tickers {
		if err := ValidateTicker(t); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDate checks an ISO "2006-01-02" date string.
func ValidateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidDateRange, s)
	}
	return nil
}
