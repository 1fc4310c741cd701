package testutil

import (
	"database/sql"
	"testing"

	"github.com/mxfunds/nav-analytics-backend/internal/repository"
	"github.com/mxfunds/nav-analytics-backend/internal/service"
	"github.com/mxfunds/nav-analytics-backend/internal/xbrl"
)

func NewTestReconciliationService(t *testing.T, db *sql.DB) *service.ReconciliationService {
	t.Helper()

	reconRepo := repository.NewReconciliationRepository(db)
	flowRepo := repository.NewCashFlowRepository(db)

	return service.NewReconciliationService(
		xbrl.NewParser(nil),
		reconRepo,
		flowRepo,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

func NewTestPerformanceService(t *testing.T, db *sql.DB) *service.PerformanceService {
	t.Helper()

	reconRepo := repository.NewReconciliationRepository(db)
	flowRepo := repository.NewCashFlowRepository(db)

	return service.NewPerformanceService(
		reconRepo,
		flowRepo,
	)
}
