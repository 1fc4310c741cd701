package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
	"github.com/mxfunds/nav-analytics-backend/internal/filings"
	"github.com/mxfunds/nav-analytics-backend/internal/model"
	"github.com/mxfunds/nav-analytics-backend/internal/reconciliation"
	"github.com/mxfunds/nav-analytics-backend/internal/repository"
	"github.com/mxfunds/nav-analytics-backend/internal/xbrl"
)

// ReconciliationService builds NAV reconciliation reports from local XBRL
// filings and persists them into the analytics store.
type ReconciliationService struct {
	parser    *xbrl.Parser
	reconRepo *repository.ReconciliationRepository
	flowRepo  *repository.CashFlowRepository
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	parser *xbrl.Parser,
	reconRepo *repository.ReconciliationRepository,
	flowRepo *repository.CashFlowRepository,
) *ReconciliationService {
	return &ReconciliationService{
		parser:    parser,
		reconRepo: reconRepo,
		flowRepo:  flowRepo,
	}
}

// BuildReport scans a ticker's filings directory, selects the periods for
// the requested window, parses the selected filings concurrently and
// reconciles them. Malformed files are logged and skipped; the run fails
// only when fewer than two parsable periods remain.
func (s *ReconciliationService) BuildReport(
	ctx context.Context,
	ticker, dir string,
	period filings.ReportPeriod,
	asOf *filings.AsOf,
) (*model.ReconciliationReport, error) {
	scanned, err := filings.Scan(filings.Directory(dir))
	if err != nil {
		return nil, err
	}
	selected, err := filings.Select(scanned, period, asOf)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(selected))
	for i, f := range selected {
		paths[i] = f.Path
	}

	// Selected files are already ascending by fiscal period; extraction
	// preserves input order, so the reconciliation precondition holds.
	results := s.parser.ParseBatch(ctx, paths)
	snapshots := make([]model.FilingSnapshot, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			log.Printf("skipping filing %s: %v", filepath.Base(res.Path), res.Err)
			continue
		}
		snapshots = append(snapshots, *res.Snapshot)
	}
	if len(snapshots) < 2 {
		return nil, fmt.Errorf("%w: only %d of %d filings parsed", apperrors.ErrInsufficientPeriods, len(snapshots), len(results))
	}

	return reconciliation.Reconcile(ticker, snapshots)
}

// ImportReport persists a report's pairwise records into the analytics
// store, one row per closing period, and derives the period's cash-flow
// events (capital calls negative, distributions positive).
func (s *ReconciliationService) ImportReport(report *model.ReconciliationReport) error {
	for i, rec := range report.Records {
		curr := report.Periods[i+1]

		year, quarter, err := fiscalPeriod(rec.PeriodTo)
		if err != nil {
			return err
		}
		balanceDate := balanceDateFor(&curr, year, quarter)

		q := curr.ProfitLossQuarterly
		netInterest := q.Amount(model.FieldInterestIncome) - q.Amount(model.FieldInterestExpense)
		netUnrealized := q.Amount(model.FieldUnrealizedGains) - q.Amount(model.FieldUnrealizedLosses)
		netFX := q.Amount(model.FieldFXGains) - q.Amount(model.FieldFXLosses)

		capitalCalls := q.Amount(model.FieldCapitalCalls)
		if capitalCalls == 0 && rec.CapitalChange > 0 {
			// Filings that omit the placement concept still show the call
			// as new issued capital.
			capitalCalls = rec.CapitalChange
		}
		distributions := q.Amount(model.FieldDistributions)
		if distributions == 0 {
			distributions = rec.Dividends
		}

		navPrior := rec.NavOpen
		navChange := rec.NavChange
		calculated := rec.CalculatedNavChange
		gap := rec.EquityReconciliationGap

		row := model.ReconciliationRow{
			Ticker:             report.Ticker,
			Period:             fmt.Sprintf("%dQ%d", year, quarter),
			Year:               year,
			Quarter:            quarter,
			BalanceDate:        balanceDate,
			Nav:                rec.NavClose,
			NavPrior:           &navPrior,
			NavChange:          &navChange,
			IssuedCapital:      rec.CapitalClose,
			IssuedCapitalPrior: rec.CapitalOpen,
			ManagementFee:      q.Amount(model.FieldManagementFee),
			InterestIncome:     q.Amount(model.FieldInterestIncome),
			InterestExpense:    q.Amount(model.FieldInterestExpense),
			NetInterest:        netInterest,
			RealizedGains:      q.Amount(model.FieldRealizedGains),
			UnrealizedGains:    q.Amount(model.FieldUnrealizedGains),
			UnrealizedLoss:     q.Amount(model.FieldUnrealizedLosses),
			NetUnrealized:      netUnrealized,
			FXGains:            q.Amount(model.FieldFXGains),
			FXLosses:           q.Amount(model.FieldFXLosses),
			NetFX:              netFX,
			OtherExpenses:      q.Amount(model.FieldAdminExpense),
			CapitalCalls:       capitalCalls,
			Distributions:      distributions,
			CalculatedChange:   &calculated,
			ReconciliationDiff: &gap,
		}
		if err := s.reconRepo.Upsert(&row); err != nil {
			return err
		}

		if capitalCalls > 0 {
			err := s.flowRepo.Upsert(model.CashFlowEvent{
				Ticker: report.Ticker,
				Date:   balanceDate,
				Kind:   model.FlowCapitalCall,
				Amount: -capitalCalls,
				Period: row.Period,
			})
			if err != nil {
				return err
			}
		}
		if distributions > 0 {
			err := s.flowRepo.Upsert(model.CashFlowEvent{
				Ticker: report.Ticker,
				Date:   balanceDate,
				Kind:   model.FlowDistribution,
				Amount: distributions,
				Period: row.Period,
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// ImportFilings builds an inception-to-date report for one ticker's filings
// directory and persists it.
func (s *ReconciliationService) ImportFilings(ctx context.Context, ticker, dir string) (*model.ReconciliationReport, error) {
	report, err := s.BuildReport(ctx, ticker, dir, filings.PeriodITD, nil)
	if err != nil {
		return nil, err
	}
	if err := s.ImportReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

// ImportResult is the per-ticker outcome of a batch import.
type ImportResult struct {
	Ticker  string `json:"ticker"`
	Periods int    `json:"periods"`
	Error   string `json:"error,omitempty"`
}

// ImportAll imports every ticker under the filings root (layout
// <root>/<TICKER>/xbrls). A failing ticker is annotated in its result;
// the batch never aborts on a single bad input.
func (s *ReconciliationService) ImportAll(ctx context.Context, root string, tickers []string) []ImportResult {
	results := make([]ImportResult, 0, len(tickers))
	for _, ticker := range tickers {
		dir := filepath.Join(root, ticker, "xbrls")
		report, err := s.ImportFilings(ctx, ticker, dir)
		if err != nil {
			log.Printf("import %s: %v", ticker, err)
			results = append(results, ImportResult{Ticker: ticker, Error: err.Error()})
			continue
		}
		results = append(results, ImportResult{Ticker: ticker, Periods: len(report.Periods)})
	}
	return results
}

// csvRequiredHeaders are the columns an external reconciliation CSV must
// carry; the remaining analytics columns default to zero when absent.
var csvRequiredHeaders = []string{"period", "year", "quarter", "balance_date", "nav"}

// ImportCSV loads externally prepared reconciliation rows from a CSV file.
// Rows with unparsable balance dates are skipped; cash-flow events are
// derived the same way ImportReport derives them.
func (s *ReconciliationService) ImportCSV(ticker, csvPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrInvalidCSVHeaders, err)
	}
	indexes := make(map[string]int, len(headers))
	for i, h := range headers {
		indexes[strings.TrimSpace(h)] = i
	}
	for _, required := range csvRequiredHeaders {
		if _, ok := indexes[required]; !ok {
			return 0, fmt.Errorf("%w: missing column %q", apperrors.ErrInvalidCSVHeaders, required)
		}
	}

	imported := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, err
		}
		field := func(name string) string {
			i, ok := indexes[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		balanceDate, err := parseCSVDate(field("balance_date"))
		if err != nil {
			log.Printf("skipping CSV row with bad balance_date %q: %v", field("balance_date"), err)
			continue
		}

		year, _ := strconv.Atoi(field("year"))
		quarter, _ := strconv.Atoi(field("quarter"))

		row := model.ReconciliationRow{
			Ticker:             ticker,
			Period:             field("period"),
			Year:               year,
			Quarter:            quarter,
			BalanceDate:        balanceDate,
			Nav:                csvFloat(field("nav")),
			NavPrior:           csvOptFloat(field("nav_prior")),
			NavChange:          csvOptFloat(field("nav_change")),
			IssuedCapital:      csvFloat(field("issued_capital")),
			IssuedCapitalPrior: csvFloat(field("issued_capital_prior")),
			ManagementFee:      csvFloat(field("management_fee")),
			InterestIncome:     csvFloat(field("interest_income")),
			InterestExpense:    csvFloat(field("interest_expense")),
			NetInterest:        csvFloat(field("net_interest")),
			RealizedGains:      csvFloat(field("realized_gains")),
			UnrealizedGains:    csvFloat(field("unrealized_gains")),
			UnrealizedLoss:     csvFloat(field("unrealized_losses")),
			NetUnrealized:      csvFloat(field("net_unrealized")),
			FXGains:            csvFloat(field("fx_gains")),
			FXLosses:           csvFloat(field("fx_losses")),
			NetFX:              csvFloat(field("net_fx")),
			OtherExpenses:      csvFloat(field("other_expenses")),
			CapitalCalls:       csvFloat(field("capital_calls")),
			Distributions:      csvFloat(field("distributions")),
			CalculatedChange:   csvOptFloat(field("calculated_change")),
			ReconciliationDiff: csvOptFloat(field("reconciliation_diff")),
		}
		if err := s.reconRepo.Upsert(&row); err != nil {
			return imported, err
		}

		if row.CapitalCalls > 0 {
			err := s.flowRepo.Upsert(model.CashFlowEvent{
				Ticker: ticker,
				Date:   balanceDate,
				Kind:   model.FlowCapitalCall,
				Amount: -row.CapitalCalls,
				Period: row.Period,
			})
			if err != nil {
				return imported, err
			}
		}
		if row.Distributions > 0 {
			err := s.flowRepo.Upsert(model.CashFlowEvent{
				Ticker: ticker,
				Date:   balanceDate,
				Kind:   model.FlowDistribution,
				Amount: row.Distributions,
				Period: row.Period,
			})
			if err != nil {
				return imported, err
			}
		}
		imported++
	}

	return imported, nil
}

// parseCSVDate accepts ISO dates and the "02/01/06" day-first form the
// source spreadsheets export.
func parseCSVDate(s string) (time.Time, error) {
	if strings.Contains(s, "/") {
		return time.Parse("02/01/06", s)
	}
	return repository.ParseTime(s)
}

func csvFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func csvOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v := csvFloat(s)
	return &v
}

// Fiscal labels look like "2T_2025"; annual filings carry "4DT_2025" and
// count as the fourth quarter.
var fiscalLabelPattern = regexp.MustCompile(`^([1-4])D?T_(\d{4})$`)

func fiscalPeriod(label string) (year, quarter int, err error) {
	m := fiscalLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownPeriod, label)
	}
	quarter, _ = strconv.Atoi(m[1])
	year, _ = strconv.Atoi(m[2])
	return year, quarter, nil
}

// balanceDateFor prefers the equity fact's reporting date and falls back to
// the calendar quarter end.
func balanceDateFor(snapshot *model.FilingSnapshot, year, quarter int) time.Time {
	if dateStr, ok := snapshot.BalanceDates[model.FieldEquity]; ok {
		if t, err := repository.ParseTime(dateStr); err == nil {
			return t
		}
	}
	return quarterEnd(year, quarter)
}

func quarterEnd(year, quarter int) time.Time {
	month := time.Month(quarter * 3)
	day := 31
	if month == time.June || month == time.September {
		day = 30
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
