package filings_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
	"github.com/mxfunds/nav-analytics-backend/internal/filings"
)

// touch creates an empty filing; Scan reads names only, never content.
func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
		t.Fatalf("Failed to create fixture file: %v", err)
	}
}

func periods(files []filings.FileMeta) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Period
	}
	return out
}

func equalPeriods(got []filings.FileMeta, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, f := range got {
		if f.Period != want[i] {
			return false
		}
	}
	return true
}

// TestScan tests directory discovery and deduplication.
//
// WHY: Issuers re-file corrected documents for the same quarter; the scan
// must keep exactly one file per fiscal period, the latest re-filing.
func TestScan(t *testing.T) {
	t.Run("dedups by period keeping largest timestamp", func(t *testing.T) {
		// Setup
		dir := t.TempDir()
		touch(t, dir, "FND_ifrsxbrl_1T_2025_1700000100.xbrl")
		touch(t, dir, "FND_ifrsxbrl_1T_2025_1700000200.xbrl")
		touch(t, dir, "FND_ifrsxbrl_4T_2024_1700000050.xbrl")

		// Execute
		files, err := filings.Scan(filings.Directory(dir))

		// Assert
		if err != nil {
			t.Fatalf("Scan() returned unexpected error: %v", err)
		}
		if !equalPeriods(files, "4T_2024", "1T_2025") {
			t.Fatalf("Unexpected periods %v", periods(files))
		}
		if files[1].Timestamp != 1700000200 {
			t.Errorf("Expected re-filing with timestamp 1700000200, got %d", files[1].Timestamp)
		}
	})

	t.Run("ignores non-filing entries", func(t *testing.T) {
		// Setup
		dir := t.TempDir()
		touch(t, dir, "FND_ifrsxbrl_2T_2025_1700000000.xbrl")
		touch(t, dir, "._FND_ifrsxbrl_2T_2025_1700000000.xbrl")
		touch(t, dir, "notes.txt")
		touch(t, dir, "no_period_marker.xbrl")
		if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
			t.Fatalf("Failed to create subdir: %v", err)
		}

		// Execute
		files, err := filings.Scan(filings.Directory(dir))

		// Assert
		if err != nil {
			t.Fatalf("Scan() returned unexpected error: %v", err)
		}
		if !equalPeriods(files, "2T_2025") {
			t.Fatalf("Unexpected periods %v", periods(files))
		}
	})

	t.Run("sorts ascending by fiscal period", func(t *testing.T) {
		// Setup
		dir := t.TempDir()
		touch(t, dir, "FND_ifrsxbrl_3T_2025_1700000003.xbrl")
		touch(t, dir, "FND_ifrsxbrl_1T_2025_1700000001.xbrl")
		touch(t, dir, "FND_ifrsxbrl_4T_2024_1700000000.xbrl")
		touch(t, dir, "FND_ifrsxbrl_2T_2025_1700000002.xbrl")

		// Execute
		files, err := filings.Scan(filings.Directory(dir))

		// Assert
		if err != nil {
			t.Fatalf("Scan() returned unexpected error: %v", err)
		}
		if !equalPeriods(files, "4T_2024", "1T_2025", "2T_2025", "3T_2025") {
			t.Fatalf("Unexpected order %v", periods(files))
		}
	})
}

// scanned builds FileMeta fixtures for eight consecutive quarters ending
// at 3T_2025.
func eightQuarters(t *testing.T) []filings.FileMeta {
	t.Helper()
	dir := t.TempDir()
	names := []string{
		"FND_ifrsxbrl_4T_2023_1.xbrl",
		"FND_ifrsxbrl_1T_2024_2.xbrl",
		"FND_ifrsxbrl_2T_2024_3.xbrl",
		"FND_ifrsxbrl_3T_2024_4.xbrl",
		"FND_ifrsxbrl_4T_2024_5.xbrl",
		"FND_ifrsxbrl_1T_2025_6.xbrl",
		"FND_ifrsxbrl_2T_2025_7.xbrl",
		"FND_ifrsxbrl_3T_2025_8.xbrl",
	}
	for _, n := range names {
		touch(t, dir, n)
	}
	files, err := filings.Scan(filings.Directory(dir))
	if err != nil {
		t.Fatalf("Scan() returned unexpected error: %v", err)
	}
	return files
}

// TestSelect tests analysis window selection.
func TestSelect(t *testing.T) {
	t.Run("quarterly selects the last transition", func(t *testing.T) {
		files := eightQuarters(t)

		selected, err := filings.Select(files, filings.PeriodQuarterly, nil)

		if err != nil {
			t.Fatalf("Select() returned unexpected error: %v", err)
		}
		if !equalPeriods(selected, "2T_2025", "3T_2025") {
			t.Errorf("Unexpected selection %v", periods(selected))
		}
	})

	t.Run("ltm selects five periods for four transitions", func(t *testing.T) {
		files := eightQuarters(t)

		selected, err := filings.Select(files, filings.PeriodLTM, nil)

		if err != nil {
			t.Fatalf("Select() returned unexpected error: %v", err)
		}
		if !equalPeriods(selected, "3T_2024", "4T_2024", "1T_2025", "2T_2025", "3T_2025") {
			t.Errorf("Unexpected selection %v", periods(selected))
		}
	})

	t.Run("ytd selects from prior year Q4", func(t *testing.T) {
		files := eightQuarters(t)

		selected, err := filings.Select(files, filings.PeriodYTD, nil)

		if err != nil {
			t.Fatalf("Select() returned unexpected error: %v", err)
		}
		if !equalPeriods(selected, "4T_2024", "1T_2025", "2T_2025", "3T_2025") {
			t.Errorf("Unexpected selection %v", periods(selected))
		}
	})

	t.Run("itd selects everything up to the reference", func(t *testing.T) {
		files := eightQuarters(t)

		selected, err := filings.Select(files, filings.PeriodITD, nil)

		if err != nil {
			t.Fatalf("Select() returned unexpected error: %v", err)
		}
		if len(selected) != 8 {
			t.Errorf("Expected all 8 periods, got %v", periods(selected))
		}
	})

	t.Run("as-of caps the reference period", func(t *testing.T) {
		files := eightQuarters(t)
		asOf := &filings.AsOf{Year: 2024, Quarter: 4}

		selected, err := filings.Select(files, filings.PeriodQuarterly, asOf)

		if err != nil {
			t.Fatalf("Select() returned unexpected error: %v", err)
		}
		if !equalPeriods(selected, "3T_2024", "4T_2024") {
			t.Errorf("Unexpected selection %v", periods(selected))
		}
	})

	t.Run("annual in mid-year runs prior Q4 to reference", func(t *testing.T) {
		files := eightQuarters(t)
		asOf := &filings.AsOf{Year: 2025, Quarter: 2}

		selected, err := filings.Select(files, filings.PeriodAnnual, asOf)

		if err != nil {
			t.Fatalf("Select() returned unexpected error: %v", err)
		}
		if !equalPeriods(selected, "4T_2024", "1T_2025", "2T_2025") {
			t.Errorf("Unexpected selection %v", periods(selected))
		}
	})

	t.Run("single period yields ErrInsufficientPeriods", func(t *testing.T) {
		// Setup
		dir := t.TempDir()
		touch(t, dir, "FND_ifrsxbrl_1T_2025_1.xbrl")
		files, err := filings.Scan(filings.Directory(dir))
		if err != nil {
			t.Fatalf("Scan() returned unexpected error: %v", err)
		}

		// Execute
		_, err = filings.Select(files, filings.PeriodQuarterly, nil)

		// Assert
		if !errors.Is(err, apperrors.ErrInsufficientPeriods) {
			t.Errorf("Expected ErrInsufficientPeriods, got %v", err)
		}
	})

	t.Run("no filings yields ErrNoFilingsFound", func(t *testing.T) {
		_, err := filings.Select(nil, filings.PeriodITD, nil)

		if !errors.Is(err, apperrors.ErrNoFilingsFound) {
			t.Errorf("Expected ErrNoFilingsFound, got %v", err)
		}
	})
}

// TestParseAsOf tests reference-point parsing.
func TestParseAsOf(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    *filings.AsOf
		wantErr bool
	}{
		{"year-quarter form", "2025-Q2", &filings.AsOf{Year: 2025, Quarter: 2}, false},
		{"date form maps month to quarter", "2025-08-15", &filings.AsOf{Year: 2025, Quarter: 3}, false},
		{"empty means latest", "", nil, false},
		{"quarter out of range", "2025-Q5", nil, true},
		{"garbage", "next-quarter", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := filings.ParseAsOf(tc.input)

			if tc.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidAsOf) {
					t.Errorf("Expected ErrInvalidAsOf, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAsOf() returned unexpected error: %v", err)
			}
			if tc.want == nil {
				if got != nil {
					t.Errorf("Expected nil, got %+v", got)
				}
				return
			}
			if got == nil || *got != *tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
