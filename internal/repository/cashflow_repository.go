package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mxfunds/nav-analytics-backend/internal/model"
)

// CashFlowRepository persists discrete capital-call and distribution events.
// Uniqueness is (ticker, flow_date, flow_type, period); re-importing the same
// period overwrites the existing event.
type CashFlowRepository struct {
	db *sql.DB
}

// NewCashFlowRepository creates a new CashFlowRepository.
func NewCashFlowRepository(db *sql.DB) *CashFlowRepository {
	return &CashFlowRepository{db: db}
}

// Upsert inserts or replaces one cash-flow event.
func (r *CashFlowRepository) Upsert(event model.CashFlowEvent) error {
	query := `
		INSERT INTO cash_flows (id, ticker, flow_date, flow_type, amount, period)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker, flow_date, flow_type, period) DO UPDATE SET
			amount = excluded.amount
	`

	_, err := r.db.Exec(query,
		uuid.NewString(), event.Ticker, FormatDate(event.Date), event.Kind, event.Amount, event.Period,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cash flow: %w", err)
	}
	return nil
}

// GetRange returns a ticker's cash flows between start and end (inclusive),
// ordered ascending by flow date.
func (r *CashFlowRepository) GetRange(ticker string, start, end time.Time) ([]model.CashFlowEvent, error) {
	query := `
		SELECT ticker, flow_date, flow_type, amount, period
		FROM cash_flows
		WHERE ticker = ? AND flow_date >= ? AND flow_date <= ?
		ORDER BY flow_date ASC
	`

	rows, err := r.db.Query(query, ticker, FormatDate(start), FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query cash_flows table: %w", err)
	}
	defer rows.Close()

	var events []model.CashFlowEvent
	for rows.Next() {
		var event model.CashFlowEvent
		var dateStr string

		err := rows.Scan(&event.Ticker, &dateStr, &event.Kind, &event.Amount, &event.Period)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash_flows row: %w", err)
		}

		if event.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash_flows table: %w", err)
	}

	return events, nil
}
