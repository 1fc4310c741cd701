package model

import "time"

// PeriodType selects how the analytics store resolves a date range.
type PeriodType string

const (
	PeriodYTD    PeriodType = "ytd"    // calendar year to date
	PeriodLTM    PeriodType = "ltm"    // last twelve months
	PeriodL24M   PeriodType = "l24m"   // last twenty-four months
	PeriodITD    PeriodType = "itd"    // inception to date
	PeriodCustom PeriodType = "custom" // explicit start/end dates
)

// ParsePeriodType converts a request string into a PeriodType.
func ParsePeriodType(s string) (PeriodType, bool) {
	switch PeriodType(s) {
	case PeriodYTD, PeriodLTM, PeriodL24M, PeriodITD, PeriodCustom:
		return PeriodType(s), true
	}
	return "", false
}

// Cash-flow event kinds. Capital calls are stored with negative amounts
// (outflow from the investor's perspective), distributions positive.
const (
	FlowCapitalCall  = "capital_call"
	FlowDistribution = "distribution"
)

// CashFlowEvent is one discrete capital call or distribution.
type CashFlowEvent struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Kind   string    `json:"kind"`
	Amount float64   `json:"amount"`
	Period string    `json:"period,omitempty"`
}

// PerformanceMetrics carries fund-level return multiples, money-weighted IRR
// and the P&L attribution for one (ticker, period type, date range).
type PerformanceMetrics struct {
	Ticker     string  `json:"ticker"`
	PeriodType string  `json:"period_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Years      float64 `json:"years"`

	CapitalCalls  float64 `json:"capital_calls"`
	Distributions float64 `json:"distributions"`
	NavStart      float64 `json:"nav_start"`
	NavEnd        float64 `json:"nav_end"`

	TVPI float64  `json:"tvpi"`
	DPI  float64  `json:"dpi"`
	RVPI float64  `json:"rvpi"`
	IRR  *float64 `json:"irr"` // nil when no money-weighted rate is solvable

	ManagementFee   float64 `json:"management_fee"`
	NetInterest     float64 `json:"net_interest"`
	RealizedGains   float64 `json:"realized_gains"`
	UnrealizedGains float64 `json:"unrealized_gains"`
	FXGains         float64 `json:"fx_gains"`
	OtherExpenses   float64 `json:"other_expenses"`
	NetPL           float64 `json:"net_pl"`
	PLReturnPct     float64 `json:"pl_return_pct"`
}

// ProblemPeriod is a period whose reconciliation gap exceeds the middle
// tolerance band.
type ProblemPeriod struct {
	Period           string   `json:"period"`
	BalanceDate      string   `json:"balance_date"`
	NavChange        *float64 `json:"nav_change"`
	CalculatedChange *float64 `json:"calculated_change"`
	Difference       float64  `json:"difference"`
}

// ReconciliationAccuracy summarizes how tightly the independently calculated
// NAV changes track the reported ones over a batch of periods.
type ReconciliationAccuracy struct {
	Ticker     string `json:"ticker"`
	PeriodType string `json:"period_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`

	TotalPeriods      int `json:"total_periods"`
	ReconciledPeriods int `json:"reconciled_periods"`

	PeriodsWithinLow  int     `json:"periods_within_1m"`
	PeriodsWithinMid  int     `json:"periods_within_2m"`
	PeriodsWithinHigh int     `json:"periods_within_5m"`
	AccuracyLowPct    float64 `json:"accuracy_1m_pct"`
	AccuracyMidPct    float64 `json:"accuracy_2m_pct"`
	AccuracyHighPct   float64 `json:"accuracy_5m_pct"`

	TotalNavChange        float64 `json:"total_nav_change"`
	TotalCalculatedChange float64 `json:"total_calculated_change"`
	TotalDifference       float64 `json:"total_difference"`
	AvgAbsDifference      float64 `json:"avg_abs_difference"`
	MaxAbsDifference      float64 `json:"max_abs_difference"`

	ProblemPeriods []ProblemPeriod `json:"problem_periods"`
}

// ToleranceBands are the absolute gap thresholds used by the accuracy report.
type ToleranceBands struct {
	Low  float64
	Mid  float64
	High float64
}

// DefaultTolerances are the 1M / 2M / 5M currency-unit bands.
var DefaultTolerances = ToleranceBands{Low: 1_000_000, Mid: 2_000_000, High: 5_000_000}
