package apperrors

import "errors"

// Extraction errors cover failures while turning XBRL instance documents
// into filing snapshots. A malformed document is fatal for that file only;
// batch callers log it and move on.
var (
	// ErrMalformedDocument indicates that an XBRL file could not be parsed as XML.
	ErrMalformedDocument = errors.New("malformed XBRL document")

	// ErrUnknownPeriod indicates that a filename does not encode a fiscal period.
	ErrUnknownPeriod = errors.New("filename does not encode a fiscal period")
)

// Analysis errors represent requests that cannot be answered with the
// available data. They are fatal to the specific analysis request only.
var (
	// ErrInsufficientPeriods indicates fewer than two fiscal periods were
	// selected; reconciliation needs at least one period transition.
	ErrInsufficientPeriods = errors.New("insufficient periods for reconciliation")

	// ErrNoDataInRange indicates a date range query returned no stored records.
	ErrNoDataInRange = errors.New("no data in requested range")

	// ErrNoFilingsFound indicates a filings directory contained no recognizable XBRL files.
	ErrNoFilingsFound = errors.New("no XBRL filings found")

	// ErrTickerNotFound indicates the analytics store holds no rows for the ticker.
	ErrTickerNotFound = errors.New("ticker not found")
)

// Validation errors represent malformed request parameters.
var (
	// ErrInvalidPeriodType indicates an unsupported period type string.
	ErrInvalidPeriodType = errors.New("invalid period type")

	// ErrInvalidAsOf indicates an as-of reference that is neither YYYY-QN nor YYYY-MM-DD.
	ErrInvalidAsOf = errors.New("invalid as-of reference")

	// ErrInvalidDateRange indicates a missing or inverted custom date range.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidTicker indicates an empty or malformed ticker symbol.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrInvalidCSVHeaders indicates a reconciliation CSV with unexpected columns.
	ErrInvalidCSVHeaders = errors.New("invalid CSV headers")
)
