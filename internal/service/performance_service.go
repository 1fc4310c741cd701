package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/mxfunds/nav-analytics-backend/internal/analytics"
	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
	"github.com/mxfunds/nav-analytics-backend/internal/model"
	"github.com/mxfunds/nav-analytics-backend/internal/repository"
)

// PerformanceService computes fund performance metrics and reconciliation
// accuracy from the analytics store.
type PerformanceService struct {
	reconRepo *repository.ReconciliationRepository
	flowRepo  *repository.CashFlowRepository
}

// NewPerformanceService creates a new PerformanceService.
func NewPerformanceService(
	reconRepo *repository.ReconciliationRepository,
	flowRepo *repository.CashFlowRepository,
) *PerformanceService {
	return &PerformanceService{reconRepo: reconRepo, flowRepo: flowRepo}
}

// MetricsRequest selects a ticker and a date range for metric computation.
// Start and End apply only to the custom period type; AsOf overrides the
// reference date for the relative types and defaults to the ticker's latest
// balance date.
type MetricsRequest struct {
	Ticker     string
	PeriodType model.PeriodType
	AsOf       string // "2006-01-02", optional
	Start, End string // custom only
}

// Metrics resolves the request's date range and computes the return
// multiples, money-weighted IRR and P&L attribution over it.
func (s *PerformanceService) Metrics(req MetricsRequest) (*model.PerformanceMetrics, error) {
	start, end, err := s.resolveRange(req)
	if err != nil {
		return nil, err
	}

	rows, err := s.reconRepo.GetRange(req.Ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s %s..%s", apperrors.ErrNoDataInRange,
			req.Ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	m := &model.PerformanceMetrics{
		Ticker:     req.Ticker,
		PeriodType: string(req.PeriodType),
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		Years:      round(end.Sub(start).Hours()/24/365, 2),
	}

	for _, row := range rows {
		m.CapitalCalls += row.CapitalCalls
		m.Distributions += row.Distributions
		m.ManagementFee += row.ManagementFee
		m.NetInterest += row.NetInterest
		m.RealizedGains += row.RealizedGains
		m.UnrealizedGains += row.NetUnrealized
		m.FXGains += row.NetFX
		m.OtherExpenses += row.OtherExpenses
	}

	first, last := rows[0], rows[len(rows)-1]
	m.NavStart = first.Nav
	if first.NavPrior != nil && *first.NavPrior != 0 {
		m.NavStart = *first.NavPrior
	}
	m.NavEnd = last.Nav

	// Paid-in capital falls back to 1 so a fund with no recorded calls in
	// the window still yields finite multiples.
	paidIn := m.CapitalCalls
	if paidIn <= 0 {
		paidIn = 1
	}
	m.DPI = round(m.Distributions/paidIn, 3)
	m.RVPI = round(m.NavEnd/paidIn, 3)
	m.TVPI = round((m.Distributions+m.NavEnd)/paidIn, 3)

	m.NetPL = -m.ManagementFee + m.NetInterest + m.RealizedGains +
		m.UnrealizedGains + m.FXGains - m.OtherExpenses

	avgNav := m.NavEnd / 2
	if m.NavStart != 0 {
		avgNav = (m.NavStart + m.NavEnd) / 2
	}
	if avgNav != 0 {
		m.PLReturnPct = round(m.NetPL/avgNav*100, 2)
	}

	m.IRR = s.solveIRR(req.Ticker, start, end, m.NavEnd)

	return m, nil
}

// solveIRR assembles the window's dated cash flows, appends the closing NAV
// as a terminal inflow and runs the bisection solver. Returns nil when no
// rate is solvable.
func (s *PerformanceService) solveIRR(ticker string, start, end time.Time, navEnd float64) *float64 {
	events, err := s.flowRepo.GetRange(ticker, start, end)
	if err != nil {
		log.Printf("cash flows for %s: %v", ticker, err)
		return nil
	}

	flows := make([]analytics.CashFlow, 0, len(events)+1)
	for _, ev := range events {
		flows = append(flows, analytics.CashFlow{Date: ev.Date, Amount: ev.Amount})
	}
	if navEnd > 0 {
		flows = append(flows, analytics.CashFlow{Date: end, Amount: navEnd})
	}

	rate, ok := analytics.IRR(flows)
	if !ok {
		return nil
	}
	rounded := round(rate, 4)
	return &rounded
}

// Accuracy reports how tightly independently calculated NAV changes track
// the reported ones, bucketed by the tolerance bands.
func (s *PerformanceService) Accuracy(req MetricsRequest, bands model.ToleranceBands) (*model.ReconciliationAccuracy, error) {
	start, end, err := s.resolveRange(req)
	if err != nil {
		return nil, err
	}

	rows, err := s.reconRepo.GetRange(req.Ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s %s..%s", apperrors.ErrNoDataInRange,
			req.Ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	acc := &model.ReconciliationAccuracy{
		Ticker:         req.Ticker,
		PeriodType:     string(req.PeriodType),
		StartDate:      start.Format("2006-01-02"),
		EndDate:        end.Format("2006-01-02"),
		TotalPeriods:   len(rows),
		ProblemPeriods: []model.ProblemPeriod{},
	}

	var sumAbs float64
	for _, row := range rows {
		if row.ReconciliationDiff == nil {
			continue
		}
		acc.ReconciledPeriods++

		diff := *row.ReconciliationDiff
		abs := math.Abs(diff)
		if abs <= bands.Low {
			acc.PeriodsWithinLow++
		}
		if abs <= bands.Mid {
			acc.PeriodsWithinMid++
		}
		if abs <= bands.High {
			acc.PeriodsWithinHigh++
		}

		if row.NavChange != nil {
			acc.TotalNavChange += *row.NavChange
		}
		if row.CalculatedChange != nil {
			acc.TotalCalculatedChange += *row.CalculatedChange
		}
		acc.TotalDifference += diff
		sumAbs += abs
		if abs > acc.MaxAbsDifference {
			acc.MaxAbsDifference = abs
		}

		if abs > bands.Mid {
			acc.ProblemPeriods = append(acc.ProblemPeriods, model.ProblemPeriod{
				Period:           row.Period,
				BalanceDate:      row.BalanceDate.Format("2006-01-02"),
				NavChange:        row.NavChange,
				CalculatedChange: row.CalculatedChange,
				Difference:       diff,
			})
		}
	}

	if acc.ReconciledPeriods == 0 {
		return nil, fmt.Errorf("%w: no reconciled periods for %s", apperrors.ErrNoDataInRange, req.Ticker)
	}

	n := float64(acc.ReconciledPeriods)
	acc.AccuracyLowPct = round(float64(acc.PeriodsWithinLow)/n*100, 1)
	acc.AccuracyMidPct = round(float64(acc.PeriodsWithinMid)/n*100, 1)
	acc.AccuracyHighPct = round(float64(acc.PeriodsWithinHigh)/n*100, 1)
	acc.AvgAbsDifference = round(sumAbs/n, 0)

	return acc, nil
}

// FundComparison is one ticker's slot in a side-by-side comparison. A fund
// whose metrics cannot be computed carries the error instead of aborting
// the batch.
type FundComparison struct {
	Ticker   string                        `json:"ticker"`
	Metrics  *model.PerformanceMetrics     `json:"metrics,omitempty"`
	Accuracy *model.ReconciliationAccuracy `json:"accuracy,omitempty"`
	Error    string                        `json:"error,omitempty"`
}

// CompareFunds computes metrics and accuracy for several tickers over the
// same period type.
func (s *PerformanceService) CompareFunds(tickers []string, periodType model.PeriodType, asOf string) []FundComparison {
	results := make([]FundComparison, 0, len(tickers))
	for _, ticker := range tickers {
		req := MetricsRequest{Ticker: ticker, PeriodType: periodType, AsOf: asOf}
		cmp := FundComparison{Ticker: ticker}

		metrics, err := s.Metrics(req)
		if err != nil {
			cmp.Error = err.Error()
			results = append(results, cmp)
			continue
		}
		cmp.Metrics = metrics

		if acc, err := s.Accuracy(req, model.DefaultTolerances); err == nil {
			cmp.Accuracy = acc
		}
		results = append(results, cmp)
	}
	return results
}

// Tickers lists every ticker present in the analytics store.
func (s *PerformanceService) Tickers() ([]string, error) {
	return s.reconRepo.Tickers()
}

// resolveRange turns a period type plus optional reference date into an
// inclusive [start, end] balance-date range. The relative types anchor the
// start at the latest row on or before the boundary so the window's first
// NAV delta has its opening value.
func (s *PerformanceService) resolveRange(req MetricsRequest) (time.Time, time.Time, error) {
	if req.PeriodType == model.PeriodCustom {
		if req.Start == "" || req.End == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: custom period requires start and end dates", apperrors.ErrInvalidDateRange)
		}
		start, err := repository.ParseTime(req.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", apperrors.ErrInvalidDateRange, req.Start)
		}
		end, err := repository.ParseTime(req.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", apperrors.ErrInvalidDateRange, req.End)
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start after end", apperrors.ErrInvalidDateRange)
		}
		return start, end, nil
	}

	minDate, maxDate, ok, err := s.reconRepo.DateBounds(req.Ticker)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", apperrors.ErrTickerNotFound, req.Ticker)
	}

	ref := maxDate
	if req.AsOf != "" {
		ref, err = repository.ParseTime(req.AsOf)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidAsOf, req.AsOf)
		}
	}

	switch req.PeriodType {
	case model.PeriodITD:
		return minDate, ref, nil
	case model.PeriodYTD:
		jan1 := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return s.anchorStart(req.Ticker, jan1, false), ref, nil
	case model.PeriodLTM:
		cutoff := ref.AddDate(0, 0, -365)
		return s.anchorStart(req.Ticker, cutoff, true), ref, nil
	case model.PeriodL24M:
		cutoff := ref.AddDate(0, 0, -730)
		return s.anchorStart(req.Ticker, cutoff, true), ref, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriodType, req.PeriodType)
}

// anchorStart pulls the range start back to the latest stored balance date
// at the boundary, falling back to the boundary itself when no earlier row
// exists.
func (s *PerformanceService) anchorStart(ticker string, boundary time.Time, inclusive bool) time.Time {
	prior, ok, err := s.reconRepo.LatestDateBefore(ticker, boundary, inclusive)
	if err != nil || !ok {
		return boundary
	}
	return prior
}

func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
