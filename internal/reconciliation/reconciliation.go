// Package reconciliation verifies two independent accounting identities
// across fiscal-period transitions:
//
//	NAV    = Assets − Liabilities  (asset decomposition)
//	Equity = IssuedCapital + RetainedEarnings  (equity decomposition)
//
// Divergence between the reported NAV change and either decomposition is
// reported as a gap, never silently corrected.
package reconciliation

import (
	"fmt"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
	"github.com/mxfunds/nav-analytics-backend/internal/model"
)

// Reconcile computes pairwise reconciliation records and trailing rollups
// over a snapshot sequence sorted ascending by fiscal period. The sort order
// is a required precondition; the period selector guarantees it.
//
// Missing concepts enter the arithmetic as zero. A concept absent across
// every period is a data-quality signal for the caller, not a true zero.
func Reconcile(ticker string, snapshots []model.FilingSnapshot) (*model.ReconciliationReport, error) {
	if len(snapshots) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 snapshots, got %d", apperrors.ErrInsufficientPeriods, len(snapshots))
	}

	records := make([]model.ReconciliationRecord, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		records = append(records, reconcilePair(&snapshots[i-1], &snapshots[i]))
	}

	first := &snapshots[0]
	last := &snapshots[len(snapshots)-1]

	report := &model.ReconciliationReport{
		Ticker:  ticker,
		Periods: snapshots,
		Records: records,

		LTMNavOpen:  first.BalanceSheet.Amount(model.FieldEquity),
		LTMNavClose: last.BalanceSheet.Amount(model.FieldEquity),
		LTMCashChange: last.BalanceSheet.Amount(model.FieldCash) -
			first.BalanceSheet.Amount(model.FieldCash),
		LTMOtherAssetsChange: otherAssets(last) - otherAssets(first),
		LTMLiabilitiesChange: last.BalanceSheet.Amount(model.FieldLiabilities) -
			first.BalanceSheet.Amount(model.FieldLiabilities),
		LTMCapitalChange: last.BalanceSheet.Amount(model.FieldIssuedCapital) -
			first.BalanceSheet.Amount(model.FieldIssuedCapital),
		LTMRetainedEarningsChange: last.BalanceSheet.Amount(model.FieldRetainedEarnings) -
			first.BalanceSheet.Amount(model.FieldRetainedEarnings),
	}
	report.LTMNavChange = report.LTMNavClose - report.LTMNavOpen

	// Flow items sum over every period after the first; balance items above
	// are first-vs-last deltas, not sums of quarterly deltas.
	for i := 1; i < len(snapshots); i++ {
		report.LTMProfitLoss += snapshots[i].ProfitLossQuarterly.Amount(model.FieldProfitLoss)
		report.LTMDividends += snapshots[i].ProfitLossQuarterly.Amount(model.FieldDividendsPaid)
	}
	report.LTMPriorPeriodAdj = report.LTMRetainedEarningsChange - report.LTMProfitLoss

	return report, nil
}

func reconcilePair(prev, curr *model.FilingSnapshot) model.ReconciliationRecord {
	r := model.ReconciliationRecord{
		PeriodFrom: prev.Period,
		PeriodTo:   curr.Period,

		NavOpen:  prev.BalanceSheet.Amount(model.FieldEquity),
		NavClose: curr.BalanceSheet.Amount(model.FieldEquity),

		CashOpen:  prev.BalanceSheet.Amount(model.FieldCash),
		CashClose: curr.BalanceSheet.Amount(model.FieldCash),

		OtherAssetsOpen:  otherAssets(prev),
		OtherAssetsClose: otherAssets(curr),

		LiabilitiesOpen:  prev.BalanceSheet.Amount(model.FieldLiabilities),
		LiabilitiesClose: curr.BalanceSheet.Amount(model.FieldLiabilities),

		CapitalOpen:  prev.BalanceSheet.Amount(model.FieldIssuedCapital),
		CapitalClose: curr.BalanceSheet.Amount(model.FieldIssuedCapital),

		RetainedEarningsOpen:  prev.BalanceSheet.Amount(model.FieldRetainedEarnings),
		RetainedEarningsClose: curr.BalanceSheet.Amount(model.FieldRetainedEarnings),

		ProfitLossQuarterly: curr.ProfitLossQuarterly.Amount(model.FieldProfitLoss),
		ProfitLossYTD:       curr.ProfitLossYTD.Amount(model.FieldProfitLoss),
		Dividends:           curr.ProfitLossQuarterly.Amount(model.FieldDividendsPaid),
	}

	r.NavChange = r.NavClose - r.NavOpen
	r.CashChange = r.CashClose - r.CashOpen
	r.OtherAssetsChange = r.OtherAssetsClose - r.OtherAssetsOpen
	r.LiabilitiesChange = r.LiabilitiesClose - r.LiabilitiesOpen
	r.CapitalChange = r.CapitalClose - r.CapitalOpen
	r.RetainedEarningsChange = r.RetainedEarningsClose - r.RetainedEarningsOpen

	r.CalculatedNavChange = r.CashChange + r.OtherAssetsChange - r.LiabilitiesChange
	r.RetainedVsPLGap = r.RetainedEarningsChange - r.ProfitLossQuarterly
	r.EquityReconciliationGap = r.NavChange - (r.CapitalChange + r.RetainedEarningsChange)

	return r
}

// otherAssets is total assets net of the cash bucket.
func otherAssets(s *model.FilingSnapshot) float64 {
	return s.BalanceSheet.Amount(model.FieldAssets) - s.BalanceSheet.Amount(model.FieldCash)
}
