package domain

import "fmt"

// FeatureSpec pins down which historical aggregates are derived and, through
// Columns and Vector, the exact ordering the regressor sees. Training and
// forecasting must use the same spec; the persisted model carries the column
// list so a mismatch is detectable at load time.
type FeatureSpec struct {
	LagOffsets     []int `json:"lag_offsets"`
	RollingWindows []int `json:"rolling_windows"`
}

// DefaultFeatureSpec returns the stock configuration: lags at 1, 7 and 30
// days and rolling windows of 7, 14 and 30 days.
func DefaultFeatureSpec() FeatureSpec {
	return FeatureSpec{
		LagOffsets:     []int{1, 7, 30},
		RollingWindows: []int{7, 14, 30},
	}
}

// WarmupDays is the number of leading observations per SKU that cannot form
// a fully populated feature row. A lag of L days needs L prior rows; a
// rolling window of W days over the one-day-shifted series also needs W
// prior rows.
func (s FeatureSpec) WarmupDays() int {
	max := 0
	for _, l := range s.LagOffsets {
		if l > max {
			max = l
		}
	}
	for _, w := range s.RollingWindows {
		if w > max {
			max = w
		}
	}
	return max
}

// LagColumn names the lag feature for a horizon, e.g. Sales_Lag_7.
func LagColumn(offset int) string { return fmt.Sprintf("Sales_Lag_%d", offset) }

// Columns returns the predictor column names in vector order. The target
// (Sales) and the identifiers (SKU, Date) are excluded.
func (s FeatureSpec) Columns() []string {
	cols := []string{"Price", "Promotion", "Current_Stock", "DayOfWeek", "Month", "Quarter", "IsWeekend"}
	for _, l := range s.LagOffsets {
		cols = append(cols, LagColumn(l))
	}
	for _, w := range s.RollingWindows {
		cols = append(cols, fmt.Sprintf("Sales_RollMean_%d", w))
		cols = append(cols, fmt.Sprintf("Sales_RollStd_%d", w))
	}
	return append(cols, "Discount_Pct")
}

// LagIndices returns the vector positions of the lag features, in
// LagOffsets order. The recursive forecaster overwrites exactly these slots
// between steps.
func (s FeatureSpec) LagIndices() []int {
	base := 7 // fixed raw + calendar prefix of Columns
	idx := make([]int, len(s.LagOffsets))
	for i := range s.LagOffsets {
		idx[i] = base + i
	}
	return idx
}

// Vector flattens a feature row into the predictor vector, in Columns order.
func (s FeatureSpec) Vector(r FeatureRow) []float64 {
	v := make([]float64, 0, 8+len(s.LagOffsets)+2*len(s.RollingWindows))
	v = append(v,
		r.Price,
		r.Promotion,
		r.CurrentStock,
		float64(r.DayOfWeek),
		float64(r.Month),
		float64(r.Quarter),
		float64(r.IsWeekend),
	)
	for _, l := range s.LagOffsets {
		v = append(v, r.Lag[l])
	}
	for _, w := range s.RollingWindows {
		v = append(v, r.RollMean[w], r.RollStd[w])
	}
	return append(v, r.DiscountPct)
}
