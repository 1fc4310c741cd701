// Package testutil provides shared helpers for package tests: an in-memory
// analytics database, row builders and XBRL fixture documents.
package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the embedded goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE nav_reconciliation (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker TEXT NOT NULL,
			period TEXT NOT NULL,
			year INTEGER NOT NULL,
			quarter INTEGER NOT NULL,
			balance_date DATE NOT NULL,

			nav REAL NOT NULL DEFAULT 0,
			nav_prior REAL,
			nav_change REAL,
			issued_capital REAL NOT NULL DEFAULT 0,
			issued_capital_prior REAL NOT NULL DEFAULT 0,

			management_fee REAL NOT NULL DEFAULT 0,
			interest_income REAL NOT NULL DEFAULT 0,
			interest_expense REAL NOT NULL DEFAULT 0,
			net_interest REAL NOT NULL DEFAULT 0,
			realized_gains REAL NOT NULL DEFAULT 0,
			unrealized_gains REAL NOT NULL DEFAULT 0,
			unrealized_losses REAL NOT NULL DEFAULT 0,
			net_unrealized REAL NOT NULL DEFAULT 0,
			fx_gains REAL NOT NULL DEFAULT 0,
			fx_losses REAL NOT NULL DEFAULT 0,
			net_fx REAL NOT NULL DEFAULT 0,
			other_expenses REAL NOT NULL DEFAULT 0,

			capital_calls REAL NOT NULL DEFAULT 0,
			distributions REAL NOT NULL DEFAULT 0,

			calculated_change REAL,
			reconciliation_diff REAL,

			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (ticker, period)
		);

		CREATE INDEX idx_nav_ticker_date ON nav_reconciliation (ticker, balance_date);

		CREATE TABLE cash_flows (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker TEXT NOT NULL,
			flow_date DATE NOT NULL,
			flow_type TEXT NOT NULL,
			amount REAL NOT NULL,
			period TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (ticker, flow_date, flow_type, period)
		);

		CREATE INDEX idx_cf_ticker_date ON cash_flows (ticker, flow_date);
	`
	_, err := db.Exec(schema)
	return err
}
