package model

// Canonical balance-sheet field names. These are the values the concept
// dictionary maps qualified XBRL element names onto.
const (
	FieldEquity                = "equity"
	FieldIssuedCapital         = "issued_capital"
	FieldRetainedEarnings      = "retained_earnings"
	FieldAssets                = "assets"
	FieldCash                  = "cash"
	FieldCurrentAssets         = "current_assets"
	FieldNoncurrentAssets      = "noncurrent_assets"
	FieldInvestments           = "investments"
	FieldLiabilities           = "liabilities"
	FieldCurrentLiabilities    = "current_liabilities"
	FieldNoncurrentLiabilities = "noncurrent_liabilities"
)

// Canonical profit-and-loss field names.
const (
	FieldProfitLoss       = "profit_loss"
	FieldDividendsPaid    = "dividends_paid"
	FieldCapitalCalls     = "capital_calls"
	FieldNetContributions = "net_contributions"
	FieldManagementFee    = "management_fee"
	FieldInterestIncome   = "interest_income"
	FieldInterestExpense  = "interest_expense"
	FieldRealizedGains    = "realized_gains"
	FieldUnrealizedGains  = "unrealized_gains"
	FieldUnrealizedLosses = "unrealized_losses"
	FieldFXGains          = "fx_gains"
	FieldFXLosses         = "fx_losses"
	FieldAdminExpense     = "admin_expense"
	FieldDistributions    = "distributions"
)

// BalanceSheet holds the instant (point-in-time) facts of one filing.
// Fields are pointers so that a concept missing from the filing stays
// distinguishable from a reported zero.
type BalanceSheet struct {
	Equity                *float64 `json:"equity,omitempty"`
	IssuedCapital         *float64 `json:"issued_capital,omitempty"`
	RetainedEarnings      *float64 `json:"retained_earnings,omitempty"`
	Assets                *float64 `json:"assets,omitempty"`
	Cash                  *float64 `json:"cash,omitempty"`
	CurrentAssets         *float64 `json:"current_assets,omitempty"`
	NoncurrentAssets      *float64 `json:"noncurrent_assets,omitempty"`
	Investments           *float64 `json:"investments,omitempty"`
	Liabilities           *float64 `json:"liabilities,omitempty"`
	CurrentLiabilities    *float64 `json:"current_liabilities,omitempty"`
	NoncurrentLiabilities *float64 `json:"noncurrent_liabilities,omitempty"`
}

// Set stores an amount under its canonical field name.
// Returns false for names outside the balance-sheet record.
func (b *BalanceSheet) Set(field string, value float64) bool {
	p := b.fieldPtr(field)
	if p == nil {
		return false
	}
	*p = &value
	return true
}

// Lookup returns the amount for a canonical field and whether it was reported.
func (b *BalanceSheet) Lookup(field string) (float64, bool) {
	p := b.fieldPtr(field)
	if p == nil || *p == nil {
		return 0, false
	}
	return **p, true
}

// Amount returns the reported amount for a canonical field, or 0 when the
// concept is absent from the filing. Callers that care about the difference
// use Lookup.
func (b *BalanceSheet) Amount(field string) float64 {
	v, _ := b.Lookup(field)
	return v
}

func (b *BalanceSheet) fieldPtr(field string) **float64 {
	switch field {
	case FieldEquity:
		return &b.Equity
	case FieldIssuedCapital:
		return &b.IssuedCapital
	case FieldRetainedEarnings:
		return &b.RetainedEarnings
	case FieldAssets:
		return &b.Assets
	case FieldCash:
		return &b.Cash
	case FieldCurrentAssets:
		return &b.CurrentAssets
	case FieldNoncurrentAssets:
		return &b.NoncurrentAssets
	case FieldInvestments:
		return &b.Investments
	case FieldLiabilities:
		return &b.Liabilities
	case FieldCurrentLiabilities:
		return &b.CurrentLiabilities
	case FieldNoncurrentLiabilities:
		return &b.NoncurrentLiabilities
	}
	return nil
}

// ProfitLoss holds duration facts for one reporting window (a single quarter
// or a year-to-date span). Same optional-field convention as BalanceSheet.
type ProfitLoss struct {
	ProfitLoss       *float64 `json:"profit_loss,omitempty"`
	DividendsPaid    *float64 `json:"dividends_paid,omitempty"`
	CapitalCalls     *float64 `json:"capital_calls,omitempty"`
	NetContributions *float64 `json:"net_contributions,omitempty"`
	ManagementFee    *float64 `json:"management_fee,omitempty"`
	InterestIncome   *float64 `json:"interest_income,omitempty"`
	InterestExpense  *float64 `json:"interest_expense,omitempty"`
	RealizedGains    *float64 `json:"realized_gains,omitempty"`
	UnrealizedGains  *float64 `json:"unrealized_gains,omitempty"`
	UnrealizedLosses *float64 `json:"unrealized_losses,omitempty"`
	FXGains          *float64 `json:"fx_gains,omitempty"`
	FXLosses         *float64 `json:"fx_losses,omitempty"`
	AdminExpense     *float64 `json:"admin_expense,omitempty"`
	Distributions    *float64 `json:"distributions,omitempty"`
}

// Set stores an amount under its canonical field name.
// Returns false for names outside the profit-and-loss record.
func (p *ProfitLoss) Set(field string, value float64) bool {
	ptr := p.fieldPtr(field)
	if ptr == nil {
		return false
	}
	*ptr = &value
	return true
}

// Lookup returns the amount for a canonical field and whether it was reported.
func (p *ProfitLoss) Lookup(field string) (float64, bool) {
	ptr := p.fieldPtr(field)
	if ptr == nil || *ptr == nil {
		return 0, false
	}
	return **ptr, true
}

// Amount returns the reported amount, or 0 when the concept is absent.
func (p *ProfitLoss) Amount(field string) float64 {
	v, _ := p.Lookup(field)
	return v
}

func (p *ProfitLoss) fieldPtr(field string) **float64 {
	switch field {
	case FieldProfitLoss:
		return &p.ProfitLoss
	case FieldDividendsPaid:
		return &p.DividendsPaid
	case FieldCapitalCalls:
		return &p.CapitalCalls
	case FieldNetContributions:
		return &p.NetContributions
	case FieldManagementFee:
		return &p.ManagementFee
	case FieldInterestIncome:
		return &p.InterestIncome
	case FieldInterestExpense:
		return &p.InterestExpense
	case FieldRealizedGains:
		return &p.RealizedGains
	case FieldUnrealizedGains:
		return &p.UnrealizedGains
	case FieldUnrealizedLosses:
		return &p.UnrealizedLosses
	case FieldFXGains:
		return &p.FXGains
	case FieldFXLosses:
		return &p.FXLosses
	case FieldAdminExpense:
		return &p.AdminExpense
	case FieldDistributions:
		return &p.Distributions
	}
	return nil
}

// Audit opinion classifications produced by the extractor. Unclassified
// non-empty opinion text is reported as "unclassified:<truncated text>" so
// that it stays distinguishable from OpinionNotFound and OpinionElementEmpty.
const (
	OpinionClean        = "clean"
	OpinionQualified    = "qualified"
	OpinionAdverse      = "adverse"
	OpinionDisclaimer   = "disclaimer"
	OpinionNotFound     = "not_found"
	OpinionElementEmpty = "element_empty"
)

// FilingSnapshot is the parsed content of a single XBRL filing. It is
// created by the extractor and never mutated afterwards, so a batch of
// snapshots can be produced concurrently and shared freely.
type FilingSnapshot struct {
	Period     string `json:"period"`      // fiscal label, e.g. "1T_2025"
	SourceFile string `json:"source_file"` // filename the snapshot came from

	BalanceSheet BalanceSheet      `json:"balance_sheet"`
	BalanceDates map[string]string `json:"balance_dates,omitempty"` // canonical field -> reporting date

	ProfitLossQuarterly ProfitLoss `json:"profit_loss_quarterly"`
	ProfitLossYTD       ProfitLoss `json:"profit_loss_ytd"`

	AuditOpinion string `json:"audit_opinion,omitempty"`
	AuditorFirm  string `json:"auditor_firm,omitempty"`
	OpinionDate  string `json:"opinion_date,omitempty"`
}
