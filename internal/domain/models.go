package domain

import "time"

// CanonicalColumns is the schema every input file is mapped onto, in stable
// order. The order matters: fuzzy-match ties between canonical names are
// broken by position in this list.
var CanonicalColumns = []string{"SKU", "Date", "Sales", "Price", "Promotion", "Current_Stock"}

// RequiredColumns must survive header mapping for ingestion to proceed.
// Price, Promotion and Current_Stock are fillable by the cleaner.
var RequiredColumns = []string{"SKU", "Date", "Sales"}

// Observation is one SKU on one calendar day. Missing numeric cells are NaN
// until the cleaner fills them; (SKU, Date) is unique after cleaning.
type Observation struct {
	SKU          string    `json:"sku" db:"sku"`
	Date         time.Time `json:"date" db:"date"`
	Sales        float64   `json:"sales" db:"sales"`
	Price        float64   `json:"price" db:"price"`
	Promotion    float64   `json:"promotion" db:"promotion"`
	CurrentStock float64   `json:"current_stock" db:"current_stock"`
}

// FeatureRow is an Observation augmented with calendar fields and historical
// aggregates. Lag, RollMean and RollStd are keyed by horizon/window in days.
// Every aggregate only looks at the SKU's history strictly before Date.
type FeatureRow struct {
	Observation

	DayOfWeek   int     // Monday=0 .. Sunday=6
	Month       int     // 1..12
	Quarter     int     // 1..4
	IsWeekend   int     // 1 when DayOfWeek is 5 or 6
	DiscountPct float64 // (prevPrice - price) / prevPrice, 0 on the SKU's first day

	Lag      map[int]float64
	RollMean map[int]float64
	RollStd  map[int]float64
}

// ForecastEntry is one forecast day for one SKU produced by the recursive
// pipeline, joined with its safety stock.
type ForecastEntry struct {
	SKU           string  `json:"sku" db:"sku"`
	Day           int     `json:"day" db:"horizon_day"`
	ForecastSales float64 `json:"forecast_sales" db:"forecast_sales"`
	SafetyStock   int     `json:"safety_stock" db:"safety_stock"`
	ReorderQty    int     `json:"reorder_qty" db:"reorder_qty"`
}

// MonthForecast is the single-shot month-ahead variant: one row per SKU,
// daily prediction scaled linearly to the horizon.
type MonthForecast struct {
	SKU                string  `json:"sku" db:"sku"`
	ForecastMonthSales float64 `json:"forecast_month_sales" db:"forecast_month_sales"`
	SafetyStock        int     `json:"safety_stock" db:"safety_stock"`
	ReorderQty         int     `json:"reorder_qty" db:"reorder_qty"`
}
