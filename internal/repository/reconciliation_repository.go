package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mxfunds/nav-analytics-backend/internal/model"
)

// ReconciliationRepository persists one row per (ticker, fiscal period) in
// the nav_reconciliation table. Writes assume a single importer; on a
// (ticker, period) conflict the last write wins.
type ReconciliationRepository struct {
	db *sql.DB
}

// NewReconciliationRepository creates a new ReconciliationRepository.
func NewReconciliationRepository(db *sql.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

const reconciliationColumns = `
	id, ticker, period, year, quarter, balance_date,
	nav, nav_prior, nav_change, issued_capital, issued_capital_prior,
	management_fee, interest_income, interest_expense, net_interest,
	realized_gains, unrealized_gains, unrealized_losses, net_unrealized,
	fx_gains, fx_losses, net_fx, other_expenses,
	capital_calls, distributions,
	calculated_change, reconciliation_diff, created_at`

// Upsert inserts or replaces the row for (ticker, period).
func (r *ReconciliationRepository) Upsert(row *model.ReconciliationRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	query := `
		INSERT INTO nav_reconciliation (
			id, ticker, period, year, quarter, balance_date,
			nav, nav_prior, nav_change, issued_capital, issued_capital_prior,
			management_fee, interest_income, interest_expense, net_interest,
			realized_gains, unrealized_gains, unrealized_losses, net_unrealized,
			fx_gains, fx_losses, net_fx, other_expenses,
			capital_calls, distributions,
			calculated_change, reconciliation_diff
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker, period) DO UPDATE SET
			year = excluded.year,
			quarter = excluded.quarter,
			balance_date = excluded.balance_date,
			nav = excluded.nav,
			nav_prior = excluded.nav_prior,
			nav_change = excluded.nav_change,
			issued_capital = excluded.issued_capital,
			issued_capital_prior = excluded.issued_capital_prior,
			management_fee = excluded.management_fee,
			interest_income = excluded.interest_income,
			interest_expense = excluded.interest_expense,
			net_interest = excluded.net_interest,
			realized_gains = excluded.realized_gains,
			unrealized_gains = excluded.unrealized_gains,
			unrealized_losses = excluded.unrealized_losses,
			net_unrealized = excluded.net_unrealized,
			fx_gains = excluded.fx_gains,
			fx_losses = excluded.fx_losses,
			net_fx = excluded.net_fx,
			other_expenses = excluded.other_expenses,
			capital_calls = excluded.capital_calls,
			distributions = excluded.distributions,
			calculated_change = excluded.calculated_change,
			reconciliation_diff = excluded.reconciliation_diff
	`

	_, err := r.db.Exec(query,
		row.ID, row.Ticker, row.Period, row.Year, row.Quarter, FormatDate(row.BalanceDate),
		row.Nav, row.NavPrior, row.NavChange, row.IssuedCapital, row.IssuedCapitalPrior,
		row.ManagementFee, row.InterestIncome, row.InterestExpense, row.NetInterest,
		row.RealizedGains, row.UnrealizedGains, row.UnrealizedLoss, row.NetUnrealized,
		row.FXGains, row.FXLosses, row.NetFX, row.OtherExpenses,
		row.CapitalCalls, row.Distributions,
		row.CalculatedChange, row.ReconciliationDiff,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert nav_reconciliation row: %w", err)
	}
	return nil
}

// GetRange returns the rows for a ticker between start and end (inclusive),
// ordered ascending by balance date.
func (r *ReconciliationRepository) GetRange(ticker string, start, end time.Time) ([]model.ReconciliationRow, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM nav_reconciliation
		WHERE ticker = ? AND balance_date >= ? AND balance_date <= ?
		ORDER BY balance_date ASC
	`

	rows, err := r.db.Query(query, ticker, FormatDate(start), FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query nav_reconciliation table: %w", err)
	}
	defer rows.Close()

	var result []model.ReconciliationRow
	for rows.Next() {
		row, err := scanReconciliationRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nav_reconciliation table: %w", err)
	}

	return result, nil
}

// DateBounds returns the earliest and latest balance dates stored for a
// ticker. ok is false when the store holds no rows for the ticker.
func (r *ReconciliationRepository) DateBounds(ticker string) (min, max time.Time, ok bool, err error) {
	var minStr, maxStr sql.NullString
	err = r.db.QueryRow(
		"SELECT MIN(balance_date), MAX(balance_date) FROM nav_reconciliation WHERE ticker = ?",
		ticker,
	).Scan(&minStr, &maxStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to query date bounds: %w", err)
	}
	if !minStr.Valid || !maxStr.Valid {
		return time.Time{}, time.Time{}, false, nil
	}

	if min, err = ParseTime(minStr.String); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if max, err = ParseTime(maxStr.String); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return min, max, true, nil
}

// LatestDateBefore returns the latest stored balance date strictly before
// (or at, when inclusive) the cutoff. ok is false when none exists.
func (r *ReconciliationRepository) LatestDateBefore(ticker string, cutoff time.Time, inclusive bool) (time.Time, bool, error) {
	op := "<"
	if inclusive {
		op = "<="
	}
	var dateStr sql.NullString
	err := r.db.QueryRow(
		"SELECT MAX(balance_date) FROM nav_reconciliation WHERE ticker = ? AND balance_date "+op+" ?",
		ticker, FormatDate(cutoff),
	).Scan(&dateStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query latest prior date: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, false, nil
	}

	date, err := ParseTime(dateStr.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return date, true, nil
}

// Tickers lists every ticker with stored reconciliation rows.
func (r *ReconciliationRepository) Tickers() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT ticker FROM nav_reconciliation ORDER BY ticker ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}

	return tickers, nil
}

func scanReconciliationRow(rows *sql.Rows) (model.ReconciliationRow, error) {
	var row model.ReconciliationRow
	var balanceDateStr, createdAtStr string

	err := rows.Scan(
		&row.ID, &row.Ticker, &row.Period, &row.Year, &row.Quarter, &balanceDateStr,
		&row.Nav, &row.NavPrior, &row.NavChange, &row.IssuedCapital, &row.IssuedCapitalPrior,
		&row.ManagementFee, &row.InterestIncome, &row.InterestExpense, &row.NetInterest,
		&row.RealizedGains, &row.UnrealizedGains, &row.UnrealizedLoss, &row.NetUnrealized,
		&row.FXGains, &row.FXLosses, &row.NetFX, &row.OtherExpenses,
		&row.CapitalCalls, &row.Distributions,
		&row.CalculatedChange, &row.ReconciliationDiff, &createdAtStr,
	)
	if err != nil {
		return model.ReconciliationRow{}, fmt.Errorf("failed to scan nav_reconciliation row: %w", err)
	}

	if row.BalanceDate, err = ParseTime(balanceDateStr); err != nil {
		return model.ReconciliationRow{}, err
	}
	if row.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		// created_at is written by SQLite as "YYYY-MM-DD HH:MM:SS"
		if row.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr); err != nil {
			return model.ReconciliationRow{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
	}

	return row, nil
}
