package forecast

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/qventory/demandcast/internal/domain"
	"github.com/qventory/demandcast/pkg/logger"
)

// Predictor is the trained regression model as the pipeline sees it: a
// feature vector in, one predicted sales value out. Implementations must be
// safe for concurrent Predict calls.
type Predictor interface {
	Predict(x []float64) float64
}

// Runner drives the multi-day recursive forecast and the single-shot month
// variant.
type Runner struct {
	model   Predictor
	spec    domain.FeatureSpec
	workers int
}

func NewRunner(model Predictor, spec domain.FeatureSpec, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{model: model, spec: spec, workers: workers}
}

// Recursive forecasts the next `days` days for every SKU in the feature
// table. For each SKU:
//
//  1. The SKU's most recent feature row becomes the model input vector.
//  2. For day d = 1..days, the model predicts sales for day d.
//  3. Every lag slot in the vector is overwritten with that prediction
//     before day d+1. All lag horizons receive the same value, exactly as
//     the original pipeline did; rolling and calendar features stay frozen
//     at their last observed values throughout the horizon.
//
// Each prediction is joined with the SKU's safety stock; the reorder
// quantity truncates forecast+buffer to an integer. SKUs are forecast
// concurrently (they are independent) but the output is always sorted by
// (SKU, Day).
func (r *Runner) Recursive(ctx context.Context, rows []domain.FeatureRow, safety map[string]int, days int) ([]domain.ForecastEntry, error) {
	latest, skus := latestRows(rows)
	if len(skus) == 0 {
		return nil, fmt.Errorf("%w: feature table has no rows to forecast from", domain.ErrInsufficientData)
	}

	perSKU := make([][]domain.ForecastEntry, len(skus))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, sku := range skus {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perSKU[i] = r.forecastSKU(sku, latest[sku], safety[sku], days)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.ForecastEntry, 0, len(skus)*days)
	for _, entries := range perSKU {
		out = append(out, entries...)
	}
	logger.Log.Info().Int("skus", len(skus)).Int("days", days).Msg("recursive forecast complete")
	return out, nil
}

func (r *Runner) forecastSKU(sku string, last domain.FeatureRow, safetyStock, days int) []domain.ForecastEntry {
	vec := r.spec.Vector(last)
	lagIdx := r.spec.LagIndices()

	entries := make([]domain.ForecastEntry, 0, days)
	for d := 1; d <= days; d++ {
		predicted := r.model.Predict(vec)
		entries = append(entries, domain.ForecastEntry{
			SKU:           sku,
			Day:           d,
			ForecastSales: predicted,
			SafetyStock:   safetyStock,
			ReorderQty:    int(predicted + float64(safetyStock)),
		})
		for _, li := range lagIdx {
			vec[li] = predicted
		}
	}
	return entries
}

// NextMonth is the single-shot variant: one prediction from each SKU's last
// feature row, scaled linearly by `days` instead of iterating.
func (r *Runner) NextMonth(rows []domain.FeatureRow, safety map[string]int, days int) ([]domain.MonthForecast, error) {
	latest, skus := latestRows(rows)
	if len(skus) == 0 {
		return nil, fmt.Errorf("%w: feature table has no rows to forecast from", domain.ErrInsufficientData)
	}

	out := make([]domain.MonthForecast, 0, len(skus))
	for _, sku := range skus {
		daily := r.model.Predict(r.spec.Vector(latest[sku]))
		monthly := daily * float64(days)
		out = append(out, domain.MonthForecast{
			SKU:                sku,
			ForecastMonthSales: monthly,
			SafetyStock:        safety[sku],
			ReorderQty:         int(monthly + float64(safety[sku])),
		})
	}
	logger.Log.Info().Int("skus", len(skus)).Int("days", days).Msg("month forecast complete")
	return out, nil
}

// latestRows picks each SKU's most recent feature row and returns the SKU
// identifiers in sorted order, which fixes the output ordering regardless of
// how the forecast work is scheduled.
func latestRows(rows []domain.FeatureRow) (map[string]domain.FeatureRow, []string) {
	latest := make(map[string]domain.FeatureRow)
	for _, row := range rows {
		cur, ok := latest[row.SKU]
		if !ok || row.Date.After(cur.Date) {
			latest[row.SKU] = row
		}
	}

	skus := make([]string, 0, len(latest))
	for sku := range latest {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return latest, skus
}
