package ingest

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/qventory/demandcast/internal/domain"
)

// partialScore is awarded when one normalized name contains the other
// outright (e.g. "order date" contains "date"). Containment is strong
// evidence but weaker than an exact match, so it scores below 100.
const partialScore = 90

// HeaderMatcher scores how well a raw spreadsheet header matches a canonical
// column name, on a 0-100 scale.
type HeaderMatcher interface {
	Score(raw, canonical string) float64
}

// aliases lists alternative spellings commonly seen in merchant exports.
// Scores are taken against the canonical name and every alias; the best one
// wins.
var aliases = map[string][]string{
	"SKU":           {"product id", "product code", "item id", "item code"},
	"Sales":         {"units sold", "qty sold", "quantity sold"},
	"Price":         {"unit price", "selling price"},
	"Promotion":     {"promo", "on promotion"},
	"Current_Stock": {"stock", "stock on hand", "inventory"},
}

// SimilarityMatcher is the default HeaderMatcher: normalized Levenshtein
// similarity with an alias table and a containment fallback. Deterministic
// by construction.
type SimilarityMatcher struct {
	metric *metrics.Levenshtein
}

func NewSimilarityMatcher() *SimilarityMatcher {
	m := metrics.NewLevenshtein()
	m.CaseSensitive = false
	return &SimilarityMatcher{metric: m}
}

func (m *SimilarityMatcher) Score(raw, canonical string) float64 {
	r := normalizeHeader(raw)
	if r == "" {
		return 0
	}

	best := 0.0
	for _, cand := range candidates(canonical) {
		s := strutil.Similarity(r, cand, m.metric) * 100
		if s < partialScore && (strings.Contains(r, cand) || strings.Contains(cand, r)) {
			s = partialScore
		}
		if s > best {
			best = s
		}
	}
	return best
}

func candidates(canonical string) []string {
	out := []string{normalizeHeader(canonical)}
	for _, a := range aliases[canonical] {
		out = append(out, a)
	}
	return out
}

// normalizeHeader lowercases and collapses separators so that
// "Current_Stock", "current-stock" and "Current Stock" compare equal.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sep := range []string{"_", "-", "/", "."} {
		s = strings.ReplaceAll(s, sep, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}

// MapHeaders assigns each raw header to the canonical column it resembles
// most, keeping only scores at or above threshold. Ties between canonical
// names break to the earliest entry in domain.CanonicalColumns; when two raw
// headers claim the same canonical column, the first one encountered wins.
// The result maps raw column index to canonical name.
func MapHeaders(headers []string, matcher HeaderMatcher, threshold float64) map[int]string {
	mapped := make(map[int]string)
	claimed := make(map[string]bool)

	for i, raw := range headers {
		bestName := ""
		bestScore := 0.0
		for _, canonical := range domain.CanonicalColumns {
			score := matcher.Score(raw, canonical)
			if score > bestScore {
				bestScore = score
				bestName = canonical
			}
		}
		if bestName == "" || bestScore < threshold || claimed[bestName] {
			continue
		}
		mapped[i] = bestName
		claimed[bestName] = true
	}
	return mapped
}
