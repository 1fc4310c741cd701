package report_test

import (
	"strings"
	"testing"

	"github.com/mxfunds/nav-analytics-backend/internal/model"
	"github.com/mxfunds/nav-analytics-backend/internal/reconciliation"
	"github.com/mxfunds/nav-analytics-backend/internal/report"
	"github.com/mxfunds/nav-analytics-backend/internal/testutil"
)

func renderReport(t *testing.T, snapshots ...model.FilingSnapshot) string {
	t.Helper()

	rpt, err := reconciliation.Reconcile("FNDA", snapshots)
	if err != nil {
		t.Fatalf("Reconcile() returned unexpected error: %v", err)
	}
	var buf strings.Builder
	report.Render(&buf, rpt)
	return buf.String()
}

// TestRender tests the fixed-width text rendering.
//
// WHY: the text report is consumed in terminals and diffed between runs;
// section layout and the N/A / gap-line conventions must stay stable.
func TestRender(t *testing.T) {
	t.Run("renders all three sections", func(t *testing.T) {
		// Setup
		out := renderReport(t,
			testutil.NewSnapshot("1T_2025").
				WithBalance(model.FieldEquity, 1000e6, "2025-03-31").
				WithBalance(model.FieldIssuedCapital, 800e6, "2025-03-31").
				WithBalance(model.FieldRetainedEarnings, 200e6, "2025-03-31").
				Snapshot(),
			testutil.NewSnapshot("2T_2025").
				WithBalance(model.FieldEquity, 1130e6, "2025-06-30").
				WithBalance(model.FieldIssuedCapital, 850e6, "2025-06-30").
				WithBalance(model.FieldRetainedEarnings, 280e6, "2025-06-30").
				Snapshot(),
		)

		// Assert
		for _, section := range []string{
			"FNDA - BALANCE SHEET EVOLUTION",
			"NAV RECONCILIATION - Quarter over Quarter",
			"1T_2025 → 2T_2025",
			"LTM CONSOLIDATED",
		} {
			if !strings.Contains(out, section) {
				t.Errorf("Expected section %q in output", section)
			}
		}
		if !strings.Contains(out, "1,000.0") {
			t.Errorf("Expected comma-grouped millions in balance table, got:\n%s", out)
		}
	})

	t.Run("shows N/A for concepts a filing never reported", func(t *testing.T) {
		// Setup: equity only, so assets/cash/liabilities columns are empty
		out := renderReport(t,
			testutil.NewSnapshot("1T_2025").
				WithBalance(model.FieldEquity, 1000e6, "2025-03-31").
				Snapshot(),
			testutil.NewSnapshot("2T_2025").
				WithBalance(model.FieldEquity, 1100e6, "2025-06-30").
				Snapshot(),
		)

		// Assert
		if !strings.Contains(out, "N/A") {
			t.Error("Expected N/A placeholders for unreported concepts")
		}
	})

	t.Run("suppresses the gap line when books balance", func(t *testing.T) {
		// Setup: ΔNAV exactly equals ΔCapital + ΔRetained
		out := renderReport(t,
			testutil.NewSnapshot("1T_2025").
				WithBalance(model.FieldEquity, 1000e6, "2025-03-31").
				WithBalance(model.FieldIssuedCapital, 800e6, "2025-03-31").
				WithBalance(model.FieldRetainedEarnings, 200e6, "2025-03-31").
				Snapshot(),
			testutil.NewSnapshot("2T_2025").
				WithBalance(model.FieldEquity, 1130e6, "2025-06-30").
				WithBalance(model.FieldIssuedCapital, 850e6, "2025-06-30").
				WithBalance(model.FieldRetainedEarnings, 280e6, "2025-06-30").
				Snapshot(),
		)

		// Assert
		if strings.Contains(out, "Reconciliation Gap:") {
			t.Errorf("Expected no gap line for balanced books, got:\n%s", out)
		}
	})

	t.Run("prints the gap line when equity does not reconcile", func(t *testing.T) {
		// Setup: equity moved 130M but capital+retained only explain 90M
		out := renderReport(t,
			testutil.NewSnapshot("1T_2025").
				WithBalance(model.FieldEquity, 1000e6, "2025-03-31").
				WithBalance(model.FieldIssuedCapital, 800e6, "2025-03-31").
				WithBalance(model.FieldRetainedEarnings, 200e6, "2025-03-31").
				Snapshot(),
			testutil.NewSnapshot("2T_2025").
				WithBalance(model.FieldEquity, 1130e6, "2025-06-30").
				WithBalance(model.FieldIssuedCapital, 850e6, "2025-06-30").
				WithBalance(model.FieldRetainedEarnings, 240e6, "2025-06-30").
				Snapshot(),
		)

		// Assert
		if !strings.Contains(out, "Reconciliation Gap:") {
			t.Errorf("Expected a gap line for a 40M shortfall, got:\n%s", out)
		}
	})

	t.Run("negative amounts keep the sign ahead of the grouping", func(t *testing.T) {
		out := renderReport(t,
			testutil.NewSnapshot("1T_2025").
				WithBalance(model.FieldEquity, 2000e6, "2025-03-31").
				Snapshot(),
			testutil.NewSnapshot("2T_2025").
				WithBalance(model.FieldEquity, 500e6, "2025-06-30").
				Snapshot(),
		)

		if !strings.Contains(out, "-1,500.00") {
			t.Errorf("Expected -1,500.00 for the NAV drop, got:\n%s", out)
		}
	})
}
