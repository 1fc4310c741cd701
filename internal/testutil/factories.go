package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/mxfunds/nav-analytics-backend/internal/model"
	"github.com/mxfunds/nav-analytics-backend/internal/repository"
)

// RowBuilder provides a fluent interface for creating stored
// reconciliation rows.
//
// Example usage:
//
//	testutil.NewRow("TESTFND", 2024, 1).
//	    WithNav(1_000_000_000).
//	    WithFlows(500, 0).
//	    Build(t, db)
type RowBuilder struct {
	row model.ReconciliationRow
}

// NewRow creates a RowBuilder for one fiscal quarter with sensible defaults.
func NewRow(ticker string, year, quarter int) *RowBuilder {
	month := time.Month(quarter * 3)
	day := 31
	if month == time.June || month == time.September {
		day = 30
	}
	return &RowBuilder{row: model.ReconciliationRow{
		Ticker:      ticker,
		Period:      periodLabel(year, quarter),
		Year:        year,
		Quarter:     quarter,
		BalanceDate: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Nav:         1_000_000_000,
	}}
}

// WithNav sets the closing NAV.
func (b *RowBuilder) WithNav(nav float64) *RowBuilder {
	b.row.Nav = nav
	return b
}

// WithNavPrior sets the opening NAV and the implied NAV change.
func (b *RowBuilder) WithNavPrior(prior float64) *RowBuilder {
	change := b.row.Nav - prior
	b.row.NavPrior = &prior
	b.row.NavChange = &change
	return b
}

// WithBalanceDate overrides the default quarter-end balance date.
func (b *RowBuilder) WithBalanceDate(date time.Time) *RowBuilder {
	b.row.BalanceDate = date
	return b
}

// WithFlows sets the quarter's capital calls and distributions.
func (b *RowBuilder) WithFlows(calls, distributions float64) *RowBuilder {
	b.row.CapitalCalls = calls
	b.row.Distributions = distributions
	return b
}

// WithReconciliation sets the calculated NAV change and reconciliation gap.
func (b *RowBuilder) WithReconciliation(calculated, diff float64) *RowBuilder {
	b.row.CalculatedChange = &calculated
	b.row.ReconciliationDiff = &diff
	return b
}

// WithPL sets the quarter's P&L attribution lines.
func (b *RowBuilder) WithPL(mgmtFee, netInterest, realized, netUnrealized, netFX, otherExp float64) *RowBuilder {
	b.row.ManagementFee = mgmtFee
	b.row.NetInterest = netInterest
	b.row.RealizedGains = realized
	b.row.NetUnrealized = netUnrealized
	b.row.NetFX = netFX
	b.row.OtherExpenses = otherExp
	return b
}

// Row returns the built row without persisting it.
func (b *RowBuilder) Row() model.ReconciliationRow {
	return b.row
}

// Build persists the row and returns it.
func (b *RowBuilder) Build(t *testing.T, db *sql.DB) model.ReconciliationRow {
	t.Helper()

	repo := repository.NewReconciliationRepository(db)
	if err := repo.Upsert(&b.row); err != nil {
		t.Fatalf("Failed to insert reconciliation row: %v", err)
	}
	return b.row
}

// InsertFlow persists one cash-flow event.
func InsertFlow(t *testing.T, db *sql.DB, ticker string, date time.Time, kind string, amount float64) {
	t.Helper()

	repo := repository.NewCashFlowRepository(db)
	err := repo.Upsert(model.CashFlowEvent{
		Ticker: ticker,
		Date:   date,
		Kind:   kind,
		Amount: amount,
	})
	if err != nil {
		t.Fatalf("Failed to insert cash flow: %v", err)
	}
}

// SnapshotBuilder assembles filing snapshots for reconciliation tests.
type SnapshotBuilder struct {
	snapshot model.FilingSnapshot
}

// NewSnapshot creates a SnapshotBuilder for one fiscal period label,
// e.g. "1T_2025".
func NewSnapshot(period string) *SnapshotBuilder {
	return &SnapshotBuilder{snapshot: model.FilingSnapshot{
		Period:       period,
		SourceFile:   period + ".xbrl",
		BalanceDates: map[string]string{},
	}}
}

// WithBalance sets one balance-sheet field and its reporting date.
func (b *SnapshotBuilder) WithBalance(field string, value float64, date string) *SnapshotBuilder {
	b.snapshot.BalanceSheet.Set(field, value)
	if date != "" {
		b.snapshot.BalanceDates[field] = date
	}
	return b
}

// WithQuarterlyPL sets one quarterly P&L field.
func (b *SnapshotBuilder) WithQuarterlyPL(field string, value float64) *SnapshotBuilder {
	b.snapshot.ProfitLossQuarterly.Set(field, value)
	return b
}

// WithYTDPL sets one year-to-date P&L field.
func (b *SnapshotBuilder) WithYTDPL(field string, value float64) *SnapshotBuilder {
	b.snapshot.ProfitLossYTD.Set(field, value)
	return b
}

// Snapshot returns the built snapshot.
func (b *SnapshotBuilder) Snapshot() model.FilingSnapshot {
	return b.snapshot
}

func periodLabel(year, quarter int) string {
	return fmt.Sprintf("%dQ%d", year, quarter)
}
