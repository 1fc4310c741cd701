// Package xbrl extracts balance-sheet and profit-and-loss facts from XBRL
// instance documents filed by Mexican-exchange-listed investment vehicles.
package xbrl

import "github.com/mxfunds/nav-analytics-backend/internal/model"

// Taxonomy namespaces used by BMV/BIVA filings.
const (
	NamespaceIFRS   = "http://xbrl.ifrs.org/taxonomy/2014-03-05/ifrs-full"
	NamespaceMXCCD  = "http://www.cnbv.gob.mx/2015-06-30/ccd"
	NamespaceMXIFRS = "http://www.cnbv.gob.mx/2015-06-30/ifrs"
)

// FactKind tells the parser which context shape a concept is reported under.
type FactKind int

const (
	// KindInstant marks point-in-time (balance sheet) concepts.
	KindInstant FactKind = iota
	// KindDuration marks period (income statement) concepts.
	KindDuration
)

// QName is a taxonomy-qualified element name.
type QName struct {
	Namespace string
	Local     string
}

// Concept maps a qualified element name onto a canonical field.
type Concept struct {
	Field string
	Kind  FactKind
}

// Registry is an immutable lookup from qualified element names to concepts.
// Several qualified names may resolve to the same canonical field
// (cross-taxonomy synonyms); each qualified name resolves to exactly one.
// Registries are built once and passed into the parser explicitly.
type Registry struct {
	concepts map[QName]Concept
}

// NewRegistry builds a registry from an explicit concept table.
// The table is copied; the registry never mutates after construction.
func NewRegistry(concepts map[QName]Concept) *Registry {
	m := make(map[QName]Concept, len(concepts))
	for k, v := range concepts {
		m[k] = v
	}
	return &Registry{concepts: m}
}

// Lookup resolves a qualified element name. Unknown names are not an error;
// taxonomies carry thousands of concepts this system does not track.
func (r *Registry) Lookup(namespace, local string) (Concept, bool) {
	c, ok := r.concepts[QName{Namespace: namespace, Local: local}]
	return c, ok
}

// Len reports the number of qualified names in the registry.
func (r *Registry) Len() int { return len(r.concepts) }

// DefaultRegistry returns the production concept table for IFRS-full and
// CNBV taxonomies. The mx_ifrs entries are synonyms some issuers use in
// place of the ifrs-full namespace for the same concepts.
func DefaultRegistry() *Registry {
	return NewRegistry(map[QName]Concept{
		// Balance sheet (instant)
		{NamespaceIFRS, "Equity"}:                {model.FieldEquity, KindInstant},
		{NamespaceIFRS, "IssuedCapital"}:         {model.FieldIssuedCapital, KindInstant},
		{NamespaceIFRS, "RetainedEarnings"}:      {model.FieldRetainedEarnings, KindInstant},
		{NamespaceIFRS, "Assets"}:                {model.FieldAssets, KindInstant},
		{NamespaceIFRS, "CashAndCashEquivalents"}: {model.FieldCash, KindInstant},
		{NamespaceIFRS, "CurrentAssets"}:         {model.FieldCurrentAssets, KindInstant},
		{NamespaceIFRS, "NoncurrentAssets"}:      {model.FieldNoncurrentAssets, KindInstant},
		{NamespaceIFRS, "InvestmentsInSubsidiariesJointVenturesAndAssociates"}: {model.FieldInvestments, KindInstant},
		{NamespaceIFRS, "Liabilities"}:           {model.FieldLiabilities, KindInstant},
		{NamespaceIFRS, "CurrentLiabilities"}:    {model.FieldCurrentLiabilities, KindInstant},
		{NamespaceIFRS, "NoncurrentLiabilities"}: {model.FieldNoncurrentLiabilities, KindInstant},

		{NamespaceMXIFRS, "Equity"}:                 {model.FieldEquity, KindInstant},
		{NamespaceMXIFRS, "IssuedCapital"}:          {model.FieldIssuedCapital, KindInstant},
		{NamespaceMXIFRS, "RetainedEarnings"}:       {model.FieldRetainedEarnings, KindInstant},
		{NamespaceMXIFRS, "Assets"}:                 {model.FieldAssets, KindInstant},
		{NamespaceMXIFRS, "CashAndCashEquivalents"}: {model.FieldCash, KindInstant},
		{NamespaceMXIFRS, "Liabilities"}:            {model.FieldLiabilities, KindInstant},

		// P&L (duration)
		{NamespaceIFRS, "ProfitLoss"}: {model.FieldProfitLoss, KindDuration},
		{NamespaceIFRS, "DividendsPaidClassifiedAsFinancingActivities"}: {model.FieldDividendsPaid, KindDuration},
		{NamespaceMXIFRS, "ProfitLoss"}:                                 {model.FieldProfitLoss, KindDuration},
		{NamespaceMXCCD, "IssueAndPlacementOfStockCertificates"}:        {model.FieldCapitalCalls, KindDuration},
		{NamespaceMXCCD, "NetContributionOfHoldersOfIssuanceAndPlacementCosts"}: {model.FieldNetContributions, KindDuration},

		// Detailed P&L attribution (duration)
		{NamespaceMXCCD, "ManagementFee"}:    {model.FieldManagementFee, KindDuration},
		{NamespaceIFRS, "RevenueFromInterest"}: {model.FieldInterestIncome, KindDuration},
		{NamespaceIFRS, "FinanceCosts"}:        {model.FieldInterestExpense, KindDuration},
		{NamespaceMXCCD, "RealizedGainOfAssetsDesignatedAtFairValue"}:       {model.FieldRealizedGains, KindDuration},
		{NamespaceIFRS, "AdjustmentsForFairValueGainsLosses"}:               {model.FieldUnrealizedGains, KindDuration},
		{NamespaceMXCCD, "LossOnChangesInFairValueOfFinancialInstruments"}:  {model.FieldUnrealizedLosses, KindDuration},
		{NamespaceMXCCD, "GainOnForeignExchange"}:                           {model.FieldFXGains, KindDuration},
		{NamespaceMXCCD, "ForeignExchangeLoss"}:                             {model.FieldFXLosses, KindDuration},
		{NamespaceIFRS, "AdministrativeExpense"}:                            {model.FieldAdminExpense, KindDuration},
		{NamespaceIFRS, "DividendsPaid"}:                                    {model.FieldDistributions, KindDuration},
	})
}
