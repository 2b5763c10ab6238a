package ingest

import (
	"testing"
)

func TestSimilarityMatcher_ExactAndNormalized(t *testing.T) {
	m := NewSimilarityMatcher()

	cases := []struct {
		raw       string
		canonical string
		min       float64
	}{
		{"SKU", "SKU", 100},
		{"sku", "SKU", 100},
		{"Current Stock", "Current_Stock", 100},
		{"current-stock", "Current_Stock", 100},
		{"Product_ID", "SKU", 80},  // via the product-id alias
		{"Units_Sold", "Sales", 80}, // via the units-sold alias
		{"Order_Date", "Date", 85},  // containment, scores below an exact match
	}
	for _, c := range cases {
		if got := m.Score(c.raw, c.canonical); got < c.min {
			t.Errorf("Score(%q, %q) = %.1f, want >= %.1f", c.raw, c.canonical, got, c.min)
		}
	}

	if got := m.Score("Temperature", "Sales"); got >= 80 {
		t.Errorf("Score(Temperature, Sales) = %.1f, want < 80", got)
	}
}

func TestSimilarityMatcher_ContainmentBelowExact(t *testing.T) {
	m := NewSimilarityMatcher()

	containment := m.Score("Order_Date", "Date")
	exact := m.Score("Date", "Date")
	if containment >= exact {
		t.Errorf("containment score %.1f should be below exact score %.1f", containment, exact)
	}
}

func TestMapHeaders_FuzzyColumns(t *testing.T) {
	headers := []string{"Product_ID", "Order_Date", "Units_Sold", "Unit Price", "Promo", "Stock on hand", "Temperature"}
	mapped := MapHeaders(headers, NewSimilarityMatcher(), 80)

	want := map[int]string{
		0: "SKU",
		1: "Date",
		2: "Sales",
		3: "Price",
		4: "Promotion",
		5: "Current_Stock",
	}
	if len(mapped) != len(want) {
		t.Fatalf("mapped %d columns, want %d: %v", len(mapped), len(want), mapped)
	}
	for idx, name := range want {
		if mapped[idx] != name {
			t.Errorf("column %d mapped to %q, want %q", idx, mapped[idx], name)
		}
	}
}

func TestMapHeaders_ThresholdBoundary(t *testing.T) {
	headers := []string{"Order_Date"}

	if mapped := MapHeaders(headers, NewSimilarityMatcher(), 80); mapped[0] != "Date" {
		t.Errorf("at threshold 80 Order_Date should map to Date, got %v", mapped)
	}
	if mapped := MapHeaders(headers, NewSimilarityMatcher(), 95); len(mapped) != 0 {
		t.Errorf("at threshold 95 Order_Date should be rejected, got %v", mapped)
	}
}

// fixedMatcher scores every (raw, canonical) pair identically, exposing the
// tie-breaking policy.
type fixedMatcher struct{ score float64 }

func (m fixedMatcher) Score(raw, canonical string) float64 { return m.score }

func TestMapHeaders_TieBreaksToCanonicalOrder(t *testing.T) {
	mapped := MapHeaders([]string{"anything"}, fixedMatcher{score: 100}, 80)
	if mapped[0] != "SKU" {
		t.Errorf("tied scores should resolve to the first canonical column (SKU), got %q", mapped[0])
	}
}

func TestMapHeaders_FirstClaimWins(t *testing.T) {
	// Two raw headers both resembling Sales: the first one keeps it.
	headers := []string{"Sales", "Units_Sold"}
	mapped := MapHeaders(headers, NewSimilarityMatcher(), 80)

	if mapped[0] != "Sales" {
		t.Fatalf("first header should claim Sales, got %v", mapped)
	}
	if name, ok := mapped[1]; ok && name == "Sales" {
		t.Errorf("second header must not claim an already-claimed column, got %v", mapped)
	}
}
