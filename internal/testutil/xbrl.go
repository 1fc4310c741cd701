package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FilingBuilder assembles minimal XBRL instance documents for parser and
// service tests, and writes them with exchange-style filenames so the
// filings scanner recognizes them.
//
// Example usage:
//
//	path := testutil.NewFiling().
//	    WithInstantFact(xbrl.NamespaceIFRS, "Equity", "2025-03-31", 1000e6).
//	    Write(t, dir, "TESTFND_ifrsxbrl_1T_2025_1700000000.xbrl")
type FilingBuilder struct {
	contexts strings.Builder
	facts    strings.Builder
	nextID   int
}

// NewFiling creates an empty FilingBuilder.
func NewFiling() *FilingBuilder {
	return &FilingBuilder{}
}

// WithInstantFact adds a fact reported under a point-in-time context.
func (f *FilingBuilder) WithInstantFact(namespace, local, date string, value float64) *FilingBuilder {
	id := f.newContext(fmt.Sprintf("<period><instant>%s</instant></period>", date))
	f.addFact(namespace, local, id, fmt.Sprintf("%.2f", value))
	return f
}

// WithDurationFact adds a fact reported under a start/end context.
func (f *FilingBuilder) WithDurationFact(namespace, local, start, end string, value float64) *FilingBuilder {
	id := f.newContext(fmt.Sprintf("<period><startDate>%s</startDate><endDate>%s</endDate></period>", start, end))
	f.addFact(namespace, local, id, fmt.Sprintf("%.2f", value))
	return f
}

// WithTextFact adds a fact whose body is arbitrary text under an instant
// context, for numeric-coercion tests.
func (f *FilingBuilder) WithTextFact(namespace, local, date, text string) *FilingBuilder {
	id := f.newContext(fmt.Sprintf("<period><instant>%s</instant></period>", date))
	f.addFact(namespace, local, id, text)
	return f
}

// WithAuditOpinion adds the CNBV audit opinion element.
func (f *FilingBuilder) WithAuditOpinion(text string) *FilingBuilder {
	f.facts.WriteString(fmt.Sprintf(
		`<ccd:TypeOfOpinionOnTheFinancialStatements xmlns:ccd=%q>%s</ccd:TypeOfOpinionOnTheFinancialStatements>`,
		"http://www.cnbv.gob.mx/2015-06-30/ccd", text))
	return f
}

// WithAuditorFirm adds the external auditor element.
func (f *FilingBuilder) WithAuditorFirm(firm string) *FilingBuilder {
	f.facts.WriteString(fmt.Sprintf(
		`<ccd:NameServiceProviderExternalAudit xmlns:ccd=%q>%s</ccd:NameServiceProviderExternalAudit>`,
		"http://www.cnbv.gob.mx/2015-06-30/ccd", firm))
	return f
}

// WithOpinionDate adds the audit opinion date element.
func (f *FilingBuilder) WithOpinionDate(date string) *FilingBuilder {
	f.facts.WriteString(fmt.Sprintf(
		`<ccd:DateOfOpinionOnTheFinancialStatements xmlns:ccd=%q>%s</ccd:DateOfOpinionOnTheFinancialStatements>`,
		"http://www.cnbv.gob.mx/2015-06-30/ccd", date))
	return f
}

func (f *FilingBuilder) newContext(periodXML string) string {
	f.nextID++
	id := fmt.Sprintf("c%d", f.nextID)
	f.contexts.WriteString(fmt.Sprintf(`<context id=%q>%s</context>`, id, periodXML))
	return id
}

func (f *FilingBuilder) addFact(namespace, local, contextID, body string) {
	f.facts.WriteString(fmt.Sprintf(
		`<n:%s xmlns:n=%q contextRef=%q>%s</n:%s>`,
		local, namespace, contextID, body, local))
}

// Document renders the instance document.
func (f *FilingBuilder) Document() string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<xbrl xmlns="http://www.xbrl.org/2003/instance">` +
		f.contexts.String() + f.facts.String() +
		`</xbrl>`
}

// Write stores the document under dir with the given filename and returns
// its full path.
func (f *FilingBuilder) Write(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(f.Document()), 0o644); err != nil {
		t.Fatalf("Failed to write fixture filing: %v", err)
	}
	return path
}
