// Package analytics holds the pure return-metric computations: the
// money-weighted IRR solver over irregular cash flows.
package analytics

import (
	"math"
	"sort"
	"time"
)

// CashFlow is one signed flow: negative for capital calls (investor
// outflow), positive for distributions and the terminal NAV.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

const (
	irrBracketLow  = -0.99
	irrBracketHigh = 5.0
	irrIterations  = 100
	irrTolerance   = 1e-6
)

// IRR solves for the annualized rate r with Σ cf_i / (1+r)^t_i = 0, where
// t_i is measured in years since the first flow, using bisection over
// (-0.99, 5.0). The ok result is false when no rate is solvable: fewer than
// two flows, all flows of one sign, or no root inside the bracket. That is
// an expected outcome for all-outflow or all-inflow windows, not an error.
func IRR(flows []CashFlow) (float64, bool) {
	if len(flows) < 2 {
		return 0, false
	}

	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	allNonNegative, allNonPositive := true, true
	for _, cf := range sorted {
		if cf.Amount < 0 {
			allNonNegative = false
		}
		if cf.Amount > 0 {
			allNonPositive = false
		}
	}
	if allNonNegative || allNonPositive {
		return 0, false
	}

	first := sorted[0].Date
	years := make([]float64, len(sorted))
	for i, cf := range sorted {
		years[i] = cf.Date.Sub(first).Hours() / 24 / 365
	}

	npv := func(rate float64) float64 {
		if rate <= -1 {
			return math.Inf(1)
		}
		var sum float64
		for i, cf := range sorted {
			sum += cf.Amount / math.Pow(1+rate, years[i])
		}
		return sum
	}

	low, high := irrBracketLow, irrBracketHigh
	if npv(low)*npv(high) > 0 {
		return 0, false // bracket does not contain a root
	}

	mid := (low + high) / 2
	for i := 0; i < irrIterations; i++ {
		mid = (low + high) / 2
		if npv(mid) > 0 {
			low = mid
		} else {
			high = mid
		}
		if math.Abs(high-low) < irrTolerance {
			break
		}
	}
	return mid, true
}
