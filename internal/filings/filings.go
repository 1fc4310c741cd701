// Package filings discovers XBRL filings on disk and selects the fiscal
// periods an analysis window needs. It depends only on filename conventions
// (embedded quarter, year and filing timestamp), never on file content.
package filings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
)

// ReportPeriod selects which subsequence of fiscal periods to reconcile.
type ReportPeriod string

const (
	PeriodQuarterly ReportPeriod = "quarterly" // single quarter transition
	PeriodYTD       ReportPeriod = "ytd"       // from Q4 of the prior year
	PeriodLTM       ReportPeriod = "ltm"       // trailing four transitions
	PeriodAnnual    ReportPeriod = "annual"    // full fiscal year
	PeriodITD       ReportPeriod = "itd"       // inception to date
)

// ParseReportPeriod converts a request string into a ReportPeriod.
func ParseReportPeriod(s string) (ReportPeriod, error) {
	switch ReportPeriod(strings.ToLower(s)) {
	case PeriodQuarterly, PeriodYTD, PeriodLTM, PeriodAnnual, PeriodITD:
		return ReportPeriod(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriodType, s)
}

// FileMeta is the filename-derived metadata of one filing.
type FileMeta struct {
	Path      string `json:"path"`
	Period    string `json:"period"` // e.g. "1T_2025"
	Year      int    `json:"year"`
	Quarter   int    `json:"quarter"`
	SortKey   int    `json:"sort_key"` // year*10 + quarter
	Timestamp int64  `json:"timestamp"`
}

// File is one discoverable filing, as supplied by a FileSource.
type File struct {
	Path string
	Name string
}

// FileSource yields the filings available for one ticker. The sync layer
// that downloads filings from the exchanges implements this; tests and the
// local importer use Directory.
type FileSource interface {
	List() ([]File, error)
}

// Directory is a FileSource over a local folder of .xbrl files.
type Directory string

// List returns every .xbrl file in the directory. macOS metadata files
// ("._*") are skipped.
func (d Directory) List() ([]File, error) {
	entries, err := os.ReadDir(string(d))
	if err != nil {
		return nil, fmt.Errorf("read filings directory: %w", err)
	}
	var files []File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "._") || !strings.EqualFold(filepath.Ext(name), ".xbrl") {
			continue
		}
		files = append(files, File{Path: filepath.Join(string(d), name), Name: name})
	}
	return files, nil
}

var quarterPattern = regexp.MustCompile(`_([1-4])T_(\d{4})_`)
var timestampPattern = regexp.MustCompile(`_(\d{10,})\.xbrl$`)

// Scan extracts period metadata for every filing whose name encodes a
// quarter, deduplicates by fiscal period keeping the entry with the largest
// embedded filing timestamp (the most recent re-filing), and returns the
// result sorted ascending by fiscal period.
func Scan(src FileSource) ([]FileMeta, error) {
	files, err := src.List()
	if err != nil {
		return nil, err
	}

	byPeriod := make(map[string]FileMeta)
	for _, f := range files {
		m := quarterPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		quarter, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])

		var timestamp int64
		if ts := timestampPattern.FindStringSubmatch(f.Name); ts != nil {
			timestamp, _ = strconv.ParseInt(ts[1], 10, 64)
		}

		meta := FileMeta{
			Path:      f.Path,
			Period:    fmt.Sprintf("%dT_%d", quarter, year),
			Year:      year,
			Quarter:   quarter,
			SortKey:   year*10 + quarter,
			Timestamp: timestamp,
		}
		if existing, ok := byPeriod[meta.Period]; !ok || timestamp > existing.Timestamp {
			byPeriod[meta.Period] = meta
		}
	}

	result := make([]FileMeta, 0, len(byPeriod))
	for _, meta := range byPeriod {
		result = append(result, meta)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortKey < result[j].SortKey })
	return result, nil
}

// AsOf is a fiscal reference point.
type AsOf struct {
	Year    int
	Quarter int
}

// ParseAsOf accepts "YYYY-QN" or "YYYY-MM-DD" (quarter derived from the
// month). An empty string means "latest available" and returns nil.
func ParseAsOf(s string) (*AsOf, error) {
	if s == "" {
		return nil, nil
	}
	upper := strings.ToUpper(s)
	if idx := strings.Index(upper, "-Q"); idx > 0 {
		year, errY := strconv.Atoi(upper[:idx])
		quarter, errQ := strconv.Atoi(upper[idx+2:])
		if errY != nil || errQ != nil || quarter < 1 || quarter > 4 {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidAsOf, s)
		}
		return &AsOf{Year: year, Quarter: quarter}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidAsOf, s)
	}
	return &AsOf{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}, nil
}

// Select picks the period subsequence for the requested analysis window.
// A nil asOf references the latest scanned period. Fewer than two selected
// periods cannot form a transition and yield ErrInsufficientPeriods.
func Select(files []FileMeta, period ReportPeriod, asOf *AsOf) ([]FileMeta, error) {
	if len(files) == 0 {
		return nil, apperrors.ErrNoFilingsFound
	}

	ref := AsOf{Year: files[len(files)-1].Year, Quarter: files[len(files)-1].Quarter}
	if asOf != nil {
		ref = *asOf
	}
	refKey := ref.Year*10 + ref.Quarter

	var available []FileMeta
	for _, f := range files {
		if f.SortKey <= refKey {
			available = append(available, f)
		}
	}

	var selected []FileMeta
	switch period {
	case PeriodQuarterly:
		selected = lastN(available, 2)

	case PeriodYTD:
		priorQ4 := (ref.Year-1)*10 + 4
		selected = between(available, priorQ4, refKey)
		if len(selected) == 0 {
			selected = lastN(available, 5)
		}

	case PeriodLTM:
		// 5 data points make 4 quarter transitions: a trailing twelve months.
		selected = lastN(available, 5)

	case PeriodAnnual:
		start := (ref.Year-1)*10 + 4
		end := refKey
		if ref.Quarter == 4 {
			end = ref.Year*10 + 4
		}
		selected = between(available, start, end)
		if len(selected) == 0 {
			selected = lastN(available, 5)
		}

	case PeriodITD:
		selected = available

	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriodType, period)
	}

	if len(selected) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 periods, found %d", apperrors.ErrInsufficientPeriods, len(selected))
	}
	return selected, nil
}

func lastN(files []FileMeta, n int) []FileMeta {
	if len(files) <= n {
		return files
	}
	return files[len(files)-n:]
}

func between(files []FileMeta, startKey, endKey int) []FileMeta {
	var out []FileMeta
	for _, f := range files {
		if f.SortKey >= startKey && f.SortKey <= endKey {
			out = append(out, f)
		}
	}
	return out
}
