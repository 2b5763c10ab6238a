package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/qventory/demandcast/pkg/logger"
)

// Config controls the synthetic retail dataset. The generator models a Gulf
// SME assortment: seasonal month multipliers, a weekend uplift, Ramadan
// months and a national-day demand spike.
type Config struct {
	NumSKUs   int
	StartDate time.Time
	EndDate   time.Time
	Seed      int64
}

// Row is one generated SKU-day. Beyond the canonical columns it carries
// context columns (temperature, foot traffic, competitor index) that a real
// export would have and that the ingester is expected to drop.
type Row struct {
	SKU             string
	Date            time.Time
	Sales           int
	Price           float64
	Promotion       int
	CurrentStock    int
	IsRamadan       int
	IsHoliday       int
	Temperature     float64
	FootTraffic     int
	CompetitorIndex float64
}

var monthMultiplier = map[time.Month]float64{
	time.January: 0.9, time.February: 0.85, time.March: 1.0, time.April: 1.05,
	time.May: 1.1, time.June: 1.2, time.July: 1.15, time.August: 1.05,
	time.September: 0.95, time.October: 1.0, time.November: 1.15, time.December: 1.3,
}

var ramadanMonths = map[time.Month]bool{time.March: true, time.April: true}

// Generate produces a deterministic daily series per SKU between StartDate
// and EndDate inclusive.
func Generate(cfg Config) []Row {
	rng := rand.New(rand.NewSource(cfg.Seed))

	var rows []Row
	for skuID := 1; skuID <= cfg.NumSKUs; skuID++ {
		sku := fmt.Sprintf("SKU_%d", skuID)
		basePrice := roundTo(15+rng.Float64()*135, 2)

		for date := cfg.StartDate; !date.After(cfg.EndDate); date = date.AddDate(0, 0, 1) {
			rows = append(rows, generateDay(rng, sku, basePrice, date))
		}
	}

	logger.Log.Info().
		Int("skus", cfg.NumSKUs).
		Int("rows", len(rows)).
		Msg("generated synthetic retail data")
	return rows
}

func generateDay(rng *rand.Rand, sku string, basePrice float64, date time.Time) Row {
	season := monthMultiplier[date.Month()]
	isWeekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
	isRamadan := ramadanMonths[date.Month()]
	isHoliday := date.Month() == time.December && date.Day() == 18

	sales := float64(poisson(rng, 25))
	if isWeekend {
		sales *= 1.1
	}
	if isRamadan {
		sales *= 1.15
	}
	if isHoliday {
		sales *= 1.4
	}

	promo := 0
	if rng.Float64() < 0.12 {
		promo = 1
	}
	if promo == 1 {
		sales *= 1.25
	}
	dailySales := int(sales * season)

	price := basePrice
	if promo == 1 {
		price *= 0.93
	}
	price = roundTo(price*(0.95+rng.Float64()*0.1), 2)

	temp := roundTo(22+15*math.Sin(float64(date.Month()-1)/12*2*math.Pi)+rng.NormFloat64()*2, 1)

	trafficMean := 70.0
	if isHoliday {
		trafficMean += 10
	}
	traffic := int(clamp(trafficMean+rng.NormFloat64()*8, 40, 120))

	return Row{
		SKU:             sku,
		Date:            date,
		Sales:           dailySales,
		Price:           price,
		Promotion:       promo,
		CurrentStock:    dailySales + 5 + rng.Intn(15),
		IsRamadan:       boolFlag(isRamadan),
		IsHoliday:       boolFlag(isHoliday),
		Temperature:     temp,
		FootTraffic:     traffic,
		CompetitorIndex: roundTo(0.9+rng.Float64()*0.2, 2),
	}
}

// WriteWorkbook saves the generated rows as an XLSX file with the same
// header layout the original datasets used.
func WriteWorkbook(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []interface{}{
		"SKU", "Date", "Sales", "Price", "Promotion", "Current_Stock",
		"Is_Ramadan", "Is_Holiday", "Temperature", "Foot_Traffic_Index", "Competitor_Price_Index",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.SKU, r.Date.Format("2006-01-02"), r.Sales, r.Price, r.Promotion, r.CurrentStock,
			r.IsRamadan, r.IsHoliday, r.Temperature, r.FootTraffic, r.CompetitorIndex,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	logger.Log.Info().Str("file", path).Int("rows", len(rows)).Msg("wrote synthetic dataset")
	return nil
}

// poisson draws from Poisson(lambda) by Knuth's product method; lambda stays
// small here so the method is fine.
func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
