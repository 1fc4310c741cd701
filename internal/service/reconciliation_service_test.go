package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
	"github.com/mxfunds/nav-analytics-backend/internal/filings"
	"github.com/mxfunds/nav-analytics-backend/internal/model"
	"github.com/mxfunds/nav-analytics-backend/internal/reconciliation"
	"github.com/mxfunds/nav-analytics-backend/internal/repository"
	"github.com/mxfunds/nav-analytics-backend/internal/testutil"
	"github.com/mxfunds/nav-analytics-backend/internal/xbrl"
)

func writeQuarterFiling(t *testing.T, dir, ticker string, quarter int, equity, capital, retained float64) {
	t.Helper()

	ends := []string{"03-31", "06-30", "09-30", "12-31"}
	date := "2025-" + ends[quarter-1]
	name := fmt.Sprintf("%s_ifrsxbrl_%dT_2025_1700000000.xbrl", ticker, quarter)
	testutil.NewFiling().
		WithInstantFact(xbrl.NamespaceIFRS, "Equity", date, equity).
		WithInstantFact(xbrl.NamespaceIFRS, "IssuedCapital", date, capital).
		WithInstantFact(xbrl.NamespaceIFRS, "RetainedEarnings", date, retained).
		Write(t, dir, name)
}

// TestReconciliationService_BuildReport tests the scan-select-parse-reconcile
// pipeline over real files.
//
// WHY: this is the path every report and import request takes; the service
// must tolerate individual bad filings without losing the rest of the run.
func TestReconciliationService_BuildReport(t *testing.T) {
	t.Run("reconciles two quarters end to end", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		dir := t.TempDir()
		writeQuarterFiling(t, dir, "FNDA", 1, 1000e6, 800e6, 200e6)
		writeQuarterFiling(t, dir, "FNDA", 2, 1130e6, 850e6, 280e6)

		// Execute
		report, err := svc.BuildReport(context.Background(), "FNDA", dir, filings.PeriodITD, nil)

		// Assert
		if err != nil {
			t.Fatalf("BuildReport() returned unexpected error: %v", err)
		}
		if len(report.Periods) != 2 || len(report.Records) != 1 {
			t.Fatalf("Expected 2 periods and 1 record, got %d / %d", len(report.Periods), len(report.Records))
		}
		rec := report.Records[0]
		if rec.PeriodFrom != "1T_2025" || rec.PeriodTo != "2T_2025" {
			t.Errorf("Unexpected record periods %s -> %s", rec.PeriodFrom, rec.PeriodTo)
		}
		if rec.NavOpen != 1000e6 || rec.NavClose != 1130e6 || rec.NavChange != 130e6 {
			t.Errorf("Unexpected NAV evolution %v -> %v (Δ%v)", rec.NavOpen, rec.NavClose, rec.NavChange)
		}
	})

	t.Run("skips a malformed filing and keeps the rest", func(t *testing.T) {
		// Setup: three quarters, the middle one truncated
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		dir := t.TempDir()
		writeQuarterFiling(t, dir, "FNDA", 1, 1000e6, 800e6, 200e6)
		broken := filepath.Join(dir, "FNDA_ifrsxbrl_2T_2025_1700000000.xbrl")
		if err := os.WriteFile(broken, []byte("<xbrl><context"), 0o644); err != nil {
			t.Fatalf("Failed to write broken filing: %v", err)
		}
		writeQuarterFiling(t, dir, "FNDA", 3, 1200e6, 850e6, 350e6)

		// Execute
		report, err := svc.BuildReport(context.Background(), "FNDA", dir, filings.PeriodITD, nil)

		// Assert
		if err != nil {
			t.Fatalf("BuildReport() returned unexpected error: %v", err)
		}
		if len(report.Periods) != 2 {
			t.Fatalf("Expected the 2 parsable periods, got %d", len(report.Periods))
		}
		if report.Records[0].PeriodFrom != "1T_2025" || report.Records[0].PeriodTo != "3T_2025" {
			t.Errorf("Expected the surviving quarters to pair up, got %s -> %s",
				report.Records[0].PeriodFrom, report.Records[0].PeriodTo)
		}
	})

	t.Run("fewer than two parsable periods fails", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		dir := t.TempDir()
		writeQuarterFiling(t, dir, "FNDA", 1, 1000e6, 800e6, 200e6)
		broken := filepath.Join(dir, "FNDA_ifrsxbrl_2T_2025_1700000000.xbrl")
		if err := os.WriteFile(broken, []byte("<xbrl><fact>unterminated"), 0o644); err != nil {
			t.Fatalf("Failed to write broken filing: %v", err)
		}

		// Execute
		_, err := svc.BuildReport(context.Background(), "FNDA", dir, filings.PeriodITD, nil)

		// Assert
		if !errors.Is(err, apperrors.ErrInsufficientPeriods) {
			t.Errorf("Expected ErrInsufficientPeriods, got %v", err)
		}
	})

	t.Run("empty directory yields ErrNoFilingsFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)

		_, err := svc.BuildReport(context.Background(), "FNDA", t.TempDir(), filings.PeriodITD, nil)

		if !errors.Is(err, apperrors.ErrNoFilingsFound) {
			t.Errorf("Expected ErrNoFilingsFound, got %v", err)
		}
	})
}

// TestReconciliationService_ImportReport tests report-to-store persistence
// and cash-flow derivation.
func TestReconciliationService_ImportReport(t *testing.T) {
	buildReport := func(t *testing.T, withPlacement bool) *model.ReconciliationReport {
		t.Helper()

		opening := testutil.NewSnapshot("1T_2025").
			WithBalance(model.FieldEquity, 1000e6, "2025-03-31").
			WithBalance(model.FieldIssuedCapital, 800e6, "2025-03-31").
			WithBalance(model.FieldRetainedEarnings, 200e6, "2025-03-31")
		closing := testutil.NewSnapshot("2T_2025").
			WithBalance(model.FieldEquity, 1130e6, "2025-06-30").
			WithBalance(model.FieldIssuedCapital, 850e6, "2025-06-30").
			WithBalance(model.FieldRetainedEarnings, 280e6, "2025-06-30").
			WithQuarterlyPL(model.FieldDistributions, 20e6)
		if withPlacement {
			closing = closing.WithQuarterlyPL(model.FieldCapitalCalls, 40e6)
		}

		report, err := reconciliation.Reconcile("FNDA", []model.FilingSnapshot{
			opening.Snapshot(), closing.Snapshot(),
		})
		if err != nil {
			t.Fatalf("Reconcile() returned unexpected error: %v", err)
		}
		return report
	}

	t.Run("persists one row per closing period with derived flows", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		report := buildReport(t, true)

		// Execute
		if err := svc.ImportReport(report); err != nil {
			t.Fatalf("ImportReport() returned unexpected error: %v", err)
		}

		// Assert
		reconRepo := repository.NewReconciliationRepository(db)
		rows, err := reconRepo.GetRange("FNDA",
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("GetRange() returned unexpected error: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected 1 stored row, got %d", len(rows))
		}
		row := rows[0]
		if row.Period != "2025Q2" || row.Year != 2025 || row.Quarter != 2 {
			t.Errorf("Unexpected period %s (%d Q%d)", row.Period, row.Year, row.Quarter)
		}
		if !row.BalanceDate.Equal(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected the equity reporting date as balance date, got %v", row.BalanceDate)
		}
		if row.Nav != 1130e6 || row.NavPrior == nil || *row.NavPrior != 1000e6 {
			t.Errorf("Unexpected NAV columns %v / %v", row.Nav, row.NavPrior)
		}
		// The explicit placement fact wins over the issued-capital delta.
		if row.CapitalCalls != 40e6 {
			t.Errorf("Expected capital calls 40e6, got %v", row.CapitalCalls)
		}
		if row.Distributions != 20e6 {
			t.Errorf("Expected distributions 20e6, got %v", row.Distributions)
		}
		if row.ReconciliationDiff == nil {
			t.Fatal("Expected a stored reconciliation gap")
		}

		flowRepo := repository.NewCashFlowRepository(db)
		flows, err := flowRepo.GetRange("FNDA",
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("GetRange() returned unexpected error: %v", err)
		}
		if len(flows) != 2 {
			t.Fatalf("Expected 2 derived flow events, got %d", len(flows))
		}
		for _, ev := range flows {
			switch ev.Kind {
			case model.FlowCapitalCall:
				if ev.Amount != -40e6 {
					t.Errorf("Expected call stored as -40e6, got %v", ev.Amount)
				}
			case model.FlowDistribution:
				if ev.Amount != 20e6 {
					t.Errorf("Expected distribution stored as 20e6, got %v", ev.Amount)
				}
			default:
				t.Errorf("Unexpected flow kind %q", ev.Kind)
			}
		}
	})

	t.Run("falls back to the issued-capital delta for calls", func(t *testing.T) {
		// Setup: no placement fact, capital grew 800M -> 850M
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		report := buildReport(t, false)

		// Execute
		if err := svc.ImportReport(report); err != nil {
			t.Fatalf("ImportReport() returned unexpected error: %v", err)
		}

		// Assert
		rows, err := repository.NewReconciliationRepository(db).GetRange("FNDA",
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("GetRange() returned unexpected error: %v", err)
		}
		if len(rows) != 1 || rows[0].CapitalCalls != 50e6 {
			t.Errorf("Expected fallback capital calls 50e6, got %+v", rows)
		}
	})
}

// TestReconciliationService_ImportAll tests batch imports over a filings
// root.
func TestReconciliationService_ImportAll(t *testing.T) {
	// Setup: FNDA has two importable quarters, FNDB has no directory at all
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestReconciliationService(t, db)
	root := t.TempDir()
	dir := filepath.Join(root, "FNDA", "xbrls")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create filings dir: %v", err)
	}
	writeQuarterFiling(t, dir, "FNDA", 1, 1000e6, 800e6, 200e6)
	writeQuarterFiling(t, dir, "FNDA", 2, 1130e6, 850e6, 280e6)

	// Execute
	results := svc.ImportAll(context.Background(), root, []string{"FNDA", "FNDB"})

	// Assert
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Error != "" || results[0].Periods != 2 {
		t.Errorf("Expected FNDA to import 2 periods, got %+v", results[0])
	}
	if results[1].Error == "" {
		t.Errorf("Expected FNDB to carry an error, got %+v", results[1])
	}
}

// TestReconciliationService_ImportCSV tests the external spreadsheet loader.
func TestReconciliationService_ImportCSV(t *testing.T) {
	writeCSV := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "recon.csv")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write CSV fixture: %v", err)
		}
		return path
	}

	t.Run("imports rows and derives flows", func(t *testing.T) {
		// Setup: two good rows (one day-first date) and one bad date
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		path := writeCSV(t,
			"period,year,quarter,balance_date,nav,nav_prior,capital_calls,distributions\n"+
				"2025Q1,2025,1,2025-03-31,1000000000,,50000000,0\n"+
				"2025Q2,2025,2,30/06/25,1130000000,1000000000,0,20000000\n"+
				"2025Q3,2025,3,not-a-date,1200000000,,0,0\n")

		// Execute
		imported, err := svc.ImportCSV("FNDA", path)

		// Assert
		if err != nil {
			t.Fatalf("ImportCSV() returned unexpected error: %v", err)
		}
		if imported != 2 {
			t.Errorf("Expected 2 imported rows, got %d", imported)
		}

		rows, err := repository.NewReconciliationRepository(db).GetRange("FNDA",
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("GetRange() returned unexpected error: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("Expected 2 stored rows, got %d", len(rows))
		}
		if rows[0].NavPrior != nil {
			t.Errorf("Expected empty nav_prior to stay NULL, got %v", *rows[0].NavPrior)
		}
		if !rows[1].BalanceDate.Equal(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected day-first date parsed as 2025-06-30, got %v", rows[1].BalanceDate)
		}

		flows, err := repository.NewCashFlowRepository(db).GetRange("FNDA",
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("GetRange() returned unexpected error: %v", err)
		}
		if len(flows) != 2 {
			t.Fatalf("Expected a call and a distribution, got %d events", len(flows))
		}
		if flows[0].Kind != model.FlowCapitalCall || flows[0].Amount != -50e6 {
			t.Errorf("Unexpected first flow %+v", flows[0])
		}
	})

	t.Run("missing required column fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		path := writeCSV(t, "period,year,quarter,nav\n2025Q1,2025,1,1000\n")

		_, err := svc.ImportCSV("FNDA", path)

		if !errors.Is(err, apperrors.ErrInvalidCSVHeaders) {
			t.Errorf("Expected ErrInvalidCSVHeaders, got %v", err)
		}
	})
}
