package clean

import (
	"math"
	"sort"

	"github.com/qventory/demandcast/internal/config"
	"github.com/qventory/demandcast/internal/domain"
	"github.com/qventory/demandcast/pkg/logger"
)

// Clean normalizes raw observations into the table the feature stage
// expects: no missing values, one row per (SKU, Date), sales winsorized at
// the configured global quantile, rows sorted by (SKU, Date). The input
// slice is not modified.
func Clean(obs []domain.Observation, cfg config.CleanConfig) []domain.Observation {
	out := make([]domain.Observation, len(obs))
	copy(out, obs)

	fillDefaults(out)
	fillPriceForward(out)
	out = dedupe(out)
	clipSales(out, cfg.OutlierQuantile)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SKU != out[j].SKU {
			return out[i].SKU < out[j].SKU
		}
		return out[i].Date.Before(out[j].Date)
	})

	logger.Log.Debug().Int("rows_in", len(obs)).Int("rows_out", len(out)).Msg("cleaned observations")
	return out
}

func fillDefaults(obs []domain.Observation) {
	for i := range obs {
		if math.IsNaN(obs[i].Sales) {
			obs[i].Sales = 0
		}
		if math.IsNaN(obs[i].Promotion) {
			obs[i].Promotion = 0
		}
		if math.IsNaN(obs[i].CurrentStock) {
			obs[i].CurrentStock = 0
		}
	}
}

// fillPriceForward carries the last known price forward per SKU, in row
// order. Filling per SKU (rather than over the whole table) keeps one SKU's
// price from bleeding into another's leading rows. Rows before a SKU's first
// known price take that first price, or 0 when the SKU never has one.
func fillPriceForward(obs []domain.Observation) {
	last := make(map[string]float64)
	for i := range obs {
		if math.IsNaN(obs[i].Price) {
			if v, ok := last[obs[i].SKU]; ok {
				obs[i].Price = v
			}
		} else {
			last[obs[i].SKU] = obs[i].Price
		}
	}

	first := make(map[string]float64)
	for i := range obs {
		if _, ok := first[obs[i].SKU]; !ok && !math.IsNaN(obs[i].Price) {
			first[obs[i].SKU] = obs[i].Price
		}
	}
	for i := range obs {
		if math.IsNaN(obs[i].Price) {
			obs[i].Price = first[obs[i].SKU] // zero value when the SKU has no price at all
		}
	}
}

// dedupe keeps the first occurrence of each (SKU, Date), preserving row
// order for the surviving rows.
func dedupe(obs []domain.Observation) []domain.Observation {
	type key struct {
		sku  string
		date int64
	}
	seen := make(map[key]bool, len(obs))
	out := obs[:0]
	for _, o := range obs {
		k := key{sku: o.SKU, date: o.Date.UnixNano()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, o)
	}
	return out
}

// clipSales caps Sales at the q-quantile computed once over the whole table.
// A global cap is a deliberate simplification inherited from the original
// design; per-SKU robust clipping is the stricter alternative.
func clipSales(obs []domain.Observation, q float64) {
	if len(obs) == 0 {
		return
	}
	sales := make([]float64, len(obs))
	for i, o := range obs {
		sales[i] = o.Sales
	}
	upper := Quantile(sales, q)
	for i := range obs {
		if obs[i].Sales > upper {
			obs[i].Sales = upper
		}
	}
}

// Quantile computes the q-quantile of values using linear interpolation at
// position (n-1)*q, the same convention the original pipeline relied on.
// gonum's CumulantKind variants interpolate the empirical CDF instead, which
// lands on different values for small n.
func Quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := float64(len(sorted)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
