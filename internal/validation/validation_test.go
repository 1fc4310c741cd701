package validation_test

import (
	"errors"
	"testing"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
	"github.com/mxfunds/nav-analytics-backend/internal/validation"
)

func TestValidateTicker(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		valid  bool
	}{
		{"plain ticker", "CAPGLPI", true},
		{"digits allowed", "FNDA25", true},
		{"single character", "X", true},
		{"lowercase rejected", "fnda", false},
		{"hyphen rejected", "FND-A", false},
		{"empty rejected", "", false},
		{"too long rejected", "ABCDEFGHIJKLM", false},
		{"path traversal rejected", "../FNDA", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateTicker(tt.ticker)
			if tt.valid && err != nil {
				t.Errorf("Expected %q to validate, got %v", tt.ticker, err)
			}
			if !tt.valid && !errors.Is(err, apperrors.ErrInvalidTicker) {
				t.Errorf("Expected ErrInvalidTicker for %q, got %v", tt.ticker, err)
			}
		})
	}
}

func TestValidateTickers(t *testing.T) {
	t.Run("empty list rejected", func(t *testing.T) {
		if err := validation.ValidateTickers(nil); !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Expected ErrInvalidTicker, got %v", err)
		}
	})

	t.Run("one bad entry fails the batch", func(t *testing.T) {
		err := validation.ValidateTickers([]string{"FNDA", "bad"})
		if !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Expected ErrInvalidTicker, got %v", err)
		}
	})
}

func TestValidateDate(t *testing.T) {
	if err := validation.ValidateDate("2025-06-30"); err != nil {
		t.Errorf("Expected ISO date to validate, got %v", err)
	}
	if err := validation.ValidateDate("30/06/2025"); !errors.Is(err, apperrors.ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}
