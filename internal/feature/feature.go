package feature

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/qventory/demandcast/internal/domain"
	"github.com/qventory/demandcast/pkg/logger"
)

// Engineer derives the model's predictor columns from cleaned observations.
// The input must already be sorted by (SKU, Date); each SKU's series is
// processed independently. Rows whose lag or rolling features cannot be
// fully populated are dropped, which removes each SKU's warm-up prefix
// (spec.WarmupDays leading rows).
//
// Every derived aggregate at day T reads the SKU's sales strictly before T:
// lags by construction, rolling statistics because the window is taken over
// the series shifted by one day.
func Engineer(obs []domain.Observation, spec domain.FeatureSpec) ([]domain.FeatureRow, error) {
	var rows []domain.FeatureRow
	for start := 0; start < len(obs); {
		end := start
		for end < len(obs) && obs[end].SKU == obs[start].SKU {
			end++
		}
		rows = append(rows, engineerSKU(obs[start:end], spec)...)
		start = end
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no SKU has more than %d observations, nothing to train on",
			domain.ErrInsufficientData, spec.WarmupDays())
	}

	logger.Log.Debug().
		Int("rows_in", len(obs)).
		Int("rows_out", len(rows)).
		Int("warmup_days", spec.WarmupDays()).
		Msg("engineered features")
	return rows, nil
}

func engineerSKU(series []domain.Observation, spec domain.FeatureSpec) []domain.FeatureRow {
	warmup := spec.WarmupDays()
	if len(series) <= warmup {
		return nil
	}

	sales := make([]float64, len(series))
	for i, o := range series {
		sales[i] = o.Sales
	}

	rows := make([]domain.FeatureRow, 0, len(series)-warmup)
	for i := warmup; i < len(series); i++ {
		row := domain.FeatureRow{
			Observation: series[i],
			Lag:         make(map[int]float64, len(spec.LagOffsets)),
			RollMean:    make(map[int]float64, len(spec.RollingWindows)),
			RollStd:     make(map[int]float64, len(spec.RollingWindows)),
		}
		fillCalendar(&row)

		for _, l := range spec.LagOffsets {
			row.Lag[l] = sales[i-l]
		}
		// Window over the one-day-shifted series: days i-w .. i-1.
		for _, w := range spec.RollingWindows {
			window := sales[i-w : i]
			row.RollMean[w] = stat.Mean(window, nil)
			row.RollStd[w] = stat.StdDev(window, nil)
		}
		row.DiscountPct = discountPct(series[i-1].Price, series[i].Price)

		rows = append(rows, row)
	}
	return rows
}

func fillCalendar(row *domain.FeatureRow) {
	row.DayOfWeek = mondayIndexed(row.Date.Weekday())
	row.Month = int(row.Date.Month())
	row.Quarter = (int(row.Date.Month())-1)/3 + 1
	if row.DayOfWeek >= 5 {
		row.IsWeekend = 1
	}
}

// mondayIndexed maps time.Weekday (Sunday=0) onto the Monday=0 convention
// the rest of the pipeline uses, so that IsWeekend is DayOfWeek in {5, 6}.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// discountPct is the fractional day-over-day price drop. A zero or unknown
// previous price makes the ratio undefined and defaults to 0.
func discountPct(prevPrice, price float64) float64 {
	if prevPrice == 0 {
		return 0
	}
	return (prevPrice - price) / prevPrice
}
