package xbrl

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mxfunds/nav-analytics-backend/internal/apperrors"
	"github.com/mxfunds/nav-analytics-backend/internal/model"
)

// Duration bands, in days. Quarterly filings report roughly 90-day income
// statement contexts; year-to-date contexts run well past 200 days. Anything
// between the bands is a non-standard reporting window and is discarded.
const (
	quarterlyMinDays = 80
	quarterlyMaxDays = 100
	ytdMinDays       = 200
)

// Audit metadata element local names (CNBV ccd taxonomy, 4DT annual filings).
const (
	auditOpinionTag = "TypeOfOpinionOnTheFinancialStatements"
	auditDateTag    = "DateOfOpinionOnTheFinancialStatements"
	auditorFirmTag  = "NameServiceProviderExternalAudit"
)

var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`_([1-4]T)_(\d{4})`),
	regexp.MustCompile(`_([1-4]Q)_(\d{4})`),
	regexp.MustCompile(`_(4DT)_(\d{4})`),
}

// Opinion keywords checked in category order. The clean keywords run first:
// "sin salvedad(es)" must win over a later "con salvedad(es)" appearing in
// negated prose ("no ha emitido opinión con salvedades").
var opinionKeywords = []struct {
	category string
	keywords []string
}{
	{model.OpinionClean, []string{
		"limpia", "limpio", "sin salvedad", "sin salvedades", "favorable",
		"unqualified", "clean", "positiva", "positivo",
		"presentan razonablemente", "presentan razonable",
		"presentan en forma razonable",
	}},
	{model.OpinionQualified, []string{"con salvedad", "con salvedades", "qualified", "except for"}},
	{model.OpinionAdverse, []string{"negativa", "adverse", "desfavorable"}},
	{model.OpinionDisclaimer, []string{"abstención", "abstencion", "disclaimer", "denegación", "denegacion"}},
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// Parser turns XBRL instance documents into filing snapshots. It holds only
// an immutable concept registry, so one Parser is safe for concurrent use.
type Parser struct {
	registry *Registry
}

// NewParser builds a parser over the given concept registry.
// A nil registry selects DefaultRegistry.
func NewParser(registry *Registry) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Parser{registry: registry}
}

// reportingContext is the per-file, transient classification of one XBRL
// context element. Discarded once the snapshot is built.
type reportingContext struct {
	kind  FactKind
	date  string // instant date
	start string
	end   string
	days  int // duration length
}

// rawFact is a fact element captured during the token walk, resolved against
// the contexts after the walk completes.
type rawFact struct {
	namespace  string
	local      string
	contextRef string
	value      string
}

type xmlContext struct {
	ID     string `xml:"id,attr"`
	Period struct {
		Instant   string `xml:"instant"`
		StartDate string `xml:"startDate"`
		EndDate   string `xml:"endDate"`
	} `xml:"period"`
}

// Parse extracts a filing snapshot from one XBRL file.
//
// Balance-sheet facts keep the most recent reporting date per canonical
// field; on a date tie for the equity field the larger value wins, because
// some filings restate the same date with a preliminary smaller figure
// followed by the corrected one. The same larger-wins rule applies within
// each duration band. This heuristic can mask a genuine restatement downward;
// it mirrors observed issuer behavior rather than an accounting rule.
func (p *Parser) Parse(path string) (*model.FilingSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filing: %w", err)
	}
	defer f.Close()

	contexts, facts, audit, err := walkDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrMalformedDocument, filepath.Base(path), err)
	}

	snapshot := &model.FilingSnapshot{
		Period:       periodFromFilename(path),
		SourceFile:   filepath.Base(path),
		BalanceDates: make(map[string]string),
	}

	type datedAmount struct {
		value float64
		date  string
	}
	balance := make(map[string]datedAmount)
	quarterly := make(map[string]float64)
	ytd := make(map[string]float64)

	for _, fact := range facts {
		ctx, ok := contexts[fact.contextRef]
		if !ok {
			continue
		}
		concept, ok := p.registry.Lookup(fact.namespace, fact.local)
		if !ok {
			continue // unknown concepts are expected, not an error
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fact.value), 64)
		if err != nil {
			continue // non-numeric fact text drops the fact, not the file
		}

		switch {
		case ctx.kind == KindInstant && concept.Kind == KindInstant:
			existing, seen := balance[concept.Field]
			replace := !seen ||
				ctx.date > existing.date ||
				(ctx.date == existing.date && concept.Field == model.FieldEquity && value > existing.value)
			if replace {
				balance[concept.Field] = datedAmount{value: value, date: ctx.date}
			}

		case ctx.kind == KindDuration && concept.Kind == KindDuration:
			switch {
			case ctx.days >= quarterlyMinDays && ctx.days <= quarterlyMaxDays:
				if existing, seen := quarterly[concept.Field]; !seen || value > existing {
					quarterly[concept.Field] = value
				}
			case ctx.days > ytdMinDays:
				if existing, seen := ytd[concept.Field]; !seen || value > existing {
					ytd[concept.Field] = value
				}
			}
		}
	}

	for field, amount := range balance {
		snapshot.BalanceSheet.Set(field, amount.value)
		snapshot.BalanceDates[field] = amount.date
	}
	for field, value := range quarterly {
		snapshot.ProfitLossQuarterly.Set(field, value)
	}
	for field, value := range ytd {
		snapshot.ProfitLossYTD.Set(field, value)
	}

	snapshot.AuditOpinion = classifyOpinion(audit.opinionText, audit.opinionFound)
	snapshot.AuditorFirm = audit.firm
	snapshot.OpinionDate = audit.date

	return snapshot, nil
}

type auditMetadata struct {
	opinionFound bool
	opinionText  string
	firm         string
	date         string
}

// walkDocument tokenizes the instance document, collecting contexts, facts
// (any element carrying a contextRef) and audit metadata in a single pass.
func walkDocument(r io.Reader) (map[string]reportingContext, []rawFact, auditMetadata, error) {
	decoder := xml.NewDecoder(r)
	contexts := make(map[string]reportingContext)
	var facts []rawFact
	var audit auditMetadata

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, auditMetadata{}, err
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Local == "context" {
			var ctx xmlContext
			if err := decoder.DecodeElement(&ctx, &start); err != nil {
				return nil, nil, auditMetadata{}, err
			}
			if classified, ok := classifyContext(ctx); ok {
				contexts[ctx.ID] = classified
			}
			continue
		}

		switch start.Name.Local {
		case auditOpinionTag:
			text, err := elementText(decoder, &start)
			if err != nil {
				return nil, nil, auditMetadata{}, err
			}
			audit.opinionFound = true
			audit.opinionText = cleanOpinionText(text)
			continue
		case auditorFirmTag:
			text, err := elementText(decoder, &start)
			if err != nil {
				return nil, nil, auditMetadata{}, err
			}
			if s := strings.TrimSpace(html.UnescapeString(text)); s != "" {
				audit.firm = s
			}
			continue
		case auditDateTag:
			text, err := elementText(decoder, &start)
			if err != nil {
				return nil, nil, auditMetadata{}, err
			}
			if s := strings.TrimSpace(html.UnescapeString(text)); s != "" {
				audit.date = s
			}
			continue
		}

		contextRef := attrValue(start.Attr, "contextRef")
		if contextRef == "" {
			continue
		}
		value, err := elementText(decoder, &start)
		if err != nil {
			return nil, nil, auditMetadata{}, err
		}
		facts = append(facts, rawFact{
			namespace:  start.Name.Space,
			local:      start.Name.Local,
			contextRef: contextRef,
			value:      value,
		})
	}

	return contexts, facts, audit, nil
}

// classifyContext maps a decoded context element onto instant or duration.
// Contexts with neither shape are ignored.
func classifyContext(ctx xmlContext) (reportingContext, bool) {
	period := ctx.Period
	if period.Instant != "" {
		return reportingContext{kind: KindInstant, date: strings.TrimSpace(period.Instant)}, true
	}
	if period.StartDate == "" || period.EndDate == "" {
		return reportingContext{}, false
	}
	start, err := time.Parse("2006-01-02", strings.TrimSpace(period.StartDate))
	if err != nil {
		return reportingContext{}, false
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(period.EndDate))
	if err != nil {
		return reportingContext{}, false
	}
	return reportingContext{
		kind:  KindDuration,
		start: strings.TrimSpace(period.StartDate),
		end:   strings.TrimSpace(period.EndDate),
		days:  int(end.Sub(start).Hours() / 24),
	}, true
}

func elementText(decoder *xml.Decoder, start *xml.StartElement) (string, error) {
	var value string
	if err := decoder.DecodeElement(&value, start); err != nil {
		return "", err
	}
	return value, nil
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// cleanOpinionText strips embedded HTML markup and collapses whitespace in
// free-text audit opinions.
func cleanOpinionText(text string) string {
	decoded := html.UnescapeString(text)
	decoded = htmlTagPattern.ReplaceAllString(decoded, " ")
	decoded = whitespacePattern.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// classifyOpinion maps free opinion text onto a standard category via
// case-insensitive keyword match. Absence of the element, presence with empty
// text, and unmatched text are three distinguishable outcomes.
func classifyOpinion(text string, elementFound bool) string {
	if !elementFound {
		return model.OpinionNotFound
	}
	if text == "" {
		return model.OpinionElementEmpty
	}
	lower := strings.ToLower(text)
	for _, group := range opinionKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				return group.category
			}
		}
	}
	return "unclassified:" + truncate(text, 37)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// periodFromFilename derives the fiscal label from quarter-marker patterns
// such as "_1T_2025" or "_4DT_2025". Unknown layouts label as "Unknown".
func periodFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, pattern := range periodPatterns {
		if m := pattern.FindStringSubmatch(name); m != nil {
			return m[1] + "_" + m[2]
		}
	}
	return "Unknown"
}

// BatchResult is the outcome of parsing one file in a batch.
type BatchResult struct {
	Path     string
	Snapshot *model.FilingSnapshot
	Err      error
}

// ParseBatch parses many filings concurrently. Extraction has no ordering
// dependency, so files fan out across a bounded worker group; results come
// back in input order. Per-file failures are carried in the result rather
// than aborting the batch.
func (p *Parser) ParseBatch(ctx context.Context, paths []string) []BatchResult {
	results := make([]BatchResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		results[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Snapshot, results[i].Err = p.Parse(path)
			return nil
		})
	}
	_ = g.Wait() // workers report through results, never through the group

	return results
}
