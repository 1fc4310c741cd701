package model

// ReconciliationRecord reconciles the NAV change across one fiscal-period
// transition using two independent decompositions of the balance sheet.
// Gaps are carried in the record, never folded back into the figures.
type ReconciliationRecord struct {
	PeriodFrom string `json:"period_from"`
	PeriodTo   string `json:"period_to"`

	// NAV (equity)
	NavOpen   float64 `json:"nav_open"`
	NavClose  float64 `json:"nav_close"`
	NavChange float64 `json:"nav_change"`

	// Asset decomposition
	CashOpen          float64 `json:"cash_open"`
	CashClose         float64 `json:"cash_close"`
	CashChange        float64 `json:"cash_change"`
	OtherAssetsOpen   float64 `json:"other_assets_open"`
	OtherAssetsClose  float64 `json:"other_assets_close"`
	OtherAssetsChange float64 `json:"other_assets_change"`
	LiabilitiesOpen   float64 `json:"liabilities_open"`
	LiabilitiesClose  float64 `json:"liabilities_close"`
	LiabilitiesChange float64 `json:"liabilities_change"`

	// Equity decomposition
	CapitalOpen            float64 `json:"capital_open"`
	CapitalClose           float64 `json:"capital_close"`
	CapitalChange          float64 `json:"capital_change"`
	RetainedEarningsOpen   float64 `json:"retained_earnings_open"`
	RetainedEarningsClose  float64 `json:"retained_earnings_close"`
	RetainedEarningsChange float64 `json:"retained_earnings_change"`

	// Income statement facts for the closing period
	ProfitLossQuarterly float64 `json:"profit_loss_quarterly"`
	ProfitLossYTD       float64 `json:"profit_loss_ytd"`
	Dividends           float64 `json:"dividends"`

	// RetainedVsPLGap is ΔRetainedEarnings − quarterly P&L: prior-period
	// restatements and items that bypass the income statement.
	RetainedVsPLGap float64 `json:"retained_vs_pl_gap"`

	// EquityReconciliationGap is ΔNAV − (ΔIssuedCapital + ΔRetainedEarnings).
	EquityReconciliationGap float64 `json:"equity_reconciliation_gap"`

	// CalculatedNavChange is the engine's independent re-derivation of the
	// NAV change: ΔCash + ΔOtherAssets − ΔLiabilities.
	CalculatedNavChange float64 `json:"calculated_nav_change"`
}

// ReconciliationReport aggregates an ordered snapshot sequence, its pairwise
// reconciliation records, and trailing (LTM) rollups. Balance-item rollups are
// first-vs-last deltas; flow items are summed over every period after the first.
type ReconciliationReport struct {
	Ticker  string                 `json:"ticker"`
	Periods []FilingSnapshot       `json:"periods"`
	Records []ReconciliationRecord `json:"quarterly_reconciliations"`

	LTMNavOpen                float64 `json:"ltm_nav_open"`
	LTMNavClose               float64 `json:"ltm_nav_close"`
	LTMNavChange              float64 `json:"ltm_nav_change"`
	LTMCashChange             float64 `json:"ltm_cash_change"`
	LTMOtherAssetsChange      float64 `json:"ltm_other_assets_change"`
	LTMLiabilitiesChange      float64 `json:"ltm_liabilities_change"`
	LTMCapitalChange          float64 `json:"ltm_capital_change"`
	LTMRetainedEarningsChange float64 `json:"ltm_retained_earnings_change"`
	LTMProfitLoss             float64 `json:"ltm_profit_loss"`
	LTMDividends              float64 `json:"ltm_dividends"`
	LTMPriorPeriodAdj         float64 `json:"ltm_prior_period_adj"`
}
