// Package report renders reconciliation reports as fixed-width text for
// terminal consumption.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mxfunds/nav-analytics-backend/internal/model"
)

// Amounts are shown in millions; gap lines print only when the gap is
// larger than this.
const gapEpsilon = 0.01

var balanceConcepts = []string{
	model.FieldEquity,
	model.FieldIssuedCapital,
	model.FieldRetainedEarnings,
	model.FieldAssets,
	model.FieldCash,
	model.FieldInvestments,
	model.FieldLiabilities,
}

// Render writes the full reconciliation report: balance-sheet evolution,
// quarter-over-quarter reconciliations and the LTM consolidation.
func Render(w io.Writer, r *model.ReconciliationReport) {
	rule := strings.Repeat("=", 100)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%s - BALANCE SHEET EVOLUTION\n", r.Ticker)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-30s ", "Concept")
	for _, p := range r.Periods {
		fmt.Fprintf(w, "%15s", p.Period)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, concept := range balanceConcepts {
		fmt.Fprintf(w, "%-30s ", concept)
		for _, p := range r.Periods {
			if v, ok := p.BalanceSheet.Lookup(concept); ok && v != 0 {
				fmt.Fprintf(w, "%15s", millions(v, 1))
			} else {
				fmt.Fprintf(w, "%15s", "N/A")
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "NAV RECONCILIATION - Quarter over Quarter")
	fmt.Fprintln(w, rule)

	for _, rec := range r.Records {
		fmt.Fprintf(w, "\n%s → %s\n", rec.PeriodFrom, rec.PeriodTo)
		fmt.Fprintln(w, strings.Repeat("-", 70))
		amountLine(w, "NAV Opening (Equity):", rec.NavOpen)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "ASSET DECOMPOSITION: (verifies NAV = Assets - Liabilities)")
		detailLine(w, "+ ΔCash & Equivalents:", rec.CashChange)
		detailLine(w, "+ ΔOther Assets (Investments):", rec.OtherAssetsChange)
		detailLine(w, "- ΔLiabilities:", -rec.LiabilitiesChange)
		detailLine(w, "= Calculated ΔNAV:", rec.CalculatedNavChange)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "EQUITY DECOMPOSITION: (verifies Equity = Capital + Retained)")
		detailLine(w, "+ ΔIssuedCapital (net contributions):", rec.CapitalChange)
		detailLine(w, "+ ΔRetainedEarnings:", rec.RetainedEarningsChange)
		subDetailLine(w, "└─ Quarterly P&L:", rec.ProfitLossQuarterly)
		if math.Abs(rec.RetainedVsPLGap) > gapEpsilon {
			subDetailLine(w, "└─ Prior period adj:", rec.RetainedVsPLGap)
		}
		detailLine(w, "= Calculated ΔNAV:", rec.CapitalChange+rec.RetainedEarningsChange)
		fmt.Fprintln(w)
		amountLine(w, "NAV Closing (Equity):", rec.NavClose)
		amountLine(w, "Actual ΔNAV:", rec.NavChange)
		if math.Abs(rec.EquityReconciliationGap) > gapEpsilon {
			amountLine(w, "Reconciliation Gap:", rec.EquityReconciliationGap)
		}
	}

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "LTM CONSOLIDATED")
	fmt.Fprintln(w, rule)
	amountLine(w, "NAV Opening:", r.LTMNavOpen)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "LTM ASSET DECOMPOSITION:")
	detailLine(w, "+ ΔCash & Equivalents:", r.LTMCashChange)
	detailLine(w, "+ ΔOther Assets (Investments):", r.LTMOtherAssetsChange)
	detailLine(w, "- ΔLiabilities:", -r.LTMLiabilitiesChange)
	calcAssets := r.LTMCashChange + r.LTMOtherAssetsChange - r.LTMLiabilitiesChange
	detailLine(w, "= Calculated ΔNAV:", calcAssets)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "LTM EQUITY DECOMPOSITION:")
	detailLine(w, "+ ΔIssuedCapital (net contributions):", r.LTMCapitalChange)
	detailLine(w, "+ ΔRetainedEarnings:", r.LTMRetainedEarningsChange)
	subDetailLine(w, "└─ LTM Quarterly P&L:", r.LTMProfitLoss)
	if math.Abs(r.LTMPriorPeriodAdj) > gapEpsilon {
		subDetailLine(w, "└─ Prior period adj:", r.LTMPriorPeriodAdj)
	}
	detailLine(w, "- LTM Dividends:", -r.LTMDividends)
	calcEquity := r.LTMCapitalChange + r.LTMRetainedEarningsChange
	detailLine(w, "= Calculated ΔNAV:", calcEquity)
	fmt.Fprintln(w)
	amountLine(w, "NAV Closing:", r.LTMNavClose)
	amountLine(w, "LTM ΔNAV:", r.LTMNavChange)
	if gap := r.LTMNavChange - calcEquity; math.Abs(gap) > gapEpsilon {
		amountLine(w, "Reconciliation Gap:", gap)
	}
}

func amountLine(w io.Writer, label string, v float64) {
	fmt.Fprintf(w, "%-45s %15s M\n", label, millions(v, 2))
}

func detailLine(w io.Writer, label string, v float64) {
	fmt.Fprintf(w, "  %-43s %15s M\n", label, millions(v, 2))
}

func subDetailLine(w io.Writer, label string, v float64) {
	fmt.Fprintf(w, "      %-41s %15s M\n", label, millions(v, 2))
}

// millions formats v/1e6 with thousands separators, e.g. 1234567890 →
// "1,234.57".
func millions(v float64, places int) string {
	s := fmt.Sprintf("%.*f", places, v/1e6)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
