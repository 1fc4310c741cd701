package xbrl_test

import (
	"testing"

	"github.com/mxfunds/nav-analytics-backend/internal/model"
	"github.com/mxfunds/nav-analytics-backend/internal/xbrl"
)

// TestDefaultRegistry tests concept resolution across taxonomies.
func TestDefaultRegistry(t *testing.T) {
	registry := xbrl.DefaultRegistry()

	t.Run("resolves ifrs-full balance sheet concepts", func(t *testing.T) {
		concept, ok := registry.Lookup(xbrl.NamespaceIFRS, "Equity")
		if !ok {
			t.Fatal("Expected Equity to resolve")
		}
		if concept.Field != model.FieldEquity || concept.Kind != xbrl.KindInstant {
			t.Errorf("Unexpected concept %+v", concept)
		}
	})

	t.Run("cross-taxonomy synonyms share a canonical field", func(t *testing.T) {
		a, okA := registry.Lookup(xbrl.NamespaceIFRS, "CashAndCashEquivalents")
		b, okB := registry.Lookup(xbrl.NamespaceMXIFRS, "CashAndCashEquivalents")
		if !okA || !okB {
			t.Fatal("Expected both namespaces to resolve")
		}
		if a.Field != b.Field {
			t.Errorf("Expected shared field, got %q and %q", a.Field, b.Field)
		}
	})

	t.Run("ccd placement concept is a duration", func(t *testing.T) {
		concept, ok := registry.Lookup(xbrl.NamespaceMXCCD, "IssueAndPlacementOfStockCertificates")
		if !ok {
			t.Fatal("Expected placement concept to resolve")
		}
		if concept.Field != model.FieldCapitalCalls || concept.Kind != xbrl.KindDuration {
			t.Errorf("Unexpected concept %+v", concept)
		}
	})

	t.Run("unknown names do not resolve", func(t *testing.T) {
		if _, ok := registry.Lookup(xbrl.NamespaceIFRS, "NotARealConcept"); ok {
			t.Error("Expected unknown concept to miss")
		}
	})
}

// TestNewRegistry tests that registries copy their input table.
func TestNewRegistry(t *testing.T) {
	// Setup
	table := map[xbrl.QName]xbrl.Concept{
		{Namespace: "ns", Local: "A"}: {Field: "a", Kind: xbrl.KindInstant},
	}
	registry := xbrl.NewRegistry(table)

	// Execute: mutate the source table after construction
	table[xbrl.QName{Namespace: "ns", Local: "B"}] = xbrl.Concept{Field: "b"}

	// Assert
	if registry.Len() != 1 {
		t.Errorf("Expected registry to be unaffected by source mutation, len = %d", registry.Len())
	}
	if _, ok := registry.Lookup("ns", "B"); ok {
		t.Error("Expected late-added concept to be invisible")
	}
}
