package model

import "time"

// ReconciliationRow is one persisted (ticker, fiscal period) row of the
// analytics store. Nullable columns stay pointers so that "never reconciled"
// is distinguishable from a reconciled zero.
type ReconciliationRow struct {
	ID          string
	Ticker      string
	Period      string // e.g. "2025Q2"
	Year        int
	Quarter     int
	BalanceDate time.Time

	Nav                float64
	NavPrior           *float64
	NavChange          *float64
	IssuedCapital      float64
	IssuedCapitalPrior float64

	ManagementFee   float64
	InterestIncome  float64
	InterestExpense float64
	NetInterest     float64
	RealizedGains   float64
	UnrealizedGains float64
	UnrealizedLoss  float64
	NetUnrealized   float64
	FXGains         float64
	FXLosses        float64
	NetFX           float64
	OtherExpenses   float64

	CapitalCalls  float64
	Distributions float64

	CalculatedChange   *float64
	ReconciliationDiff *float64

	CreatedAt time.Time
}
