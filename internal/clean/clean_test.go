package clean

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/qventory/demandcast/internal/config"
	"github.com/qventory/demandcast/internal/domain"
)

var testCfg = config.CleanConfig{OutlierQuantile: 0.99}

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func obs(sku string, d int, sales, price float64) domain.Observation {
	return domain.Observation{SKU: sku, Date: day(d), Sales: sales, Price: price}
}

func TestClean_FillsMissingValues(t *testing.T) {
	in := []domain.Observation{
		{SKU: "A", Date: day(0), Sales: math.NaN(), Price: 10, Promotion: math.NaN(), CurrentStock: math.NaN()},
	}
	out := Clean(in, testCfg)

	if out[0].Sales != 0 {
		t.Errorf("Sales = %v, want 0", out[0].Sales)
	}
	if out[0].Promotion != 0 {
		t.Errorf("Promotion = %v, want 0", out[0].Promotion)
	}
	if out[0].CurrentStock != 0 {
		t.Errorf("CurrentStock = %v, want 0", out[0].CurrentStock)
	}
}

func TestClean_PriceForwardFillPerSKU(t *testing.T) {
	in := []domain.Observation{
		obs("A", 0, 1, 10),
		obs("A", 1, 1, math.NaN()), // carries A's 10 forward
		obs("B", 0, 1, math.NaN()), // leading gap, must NOT take A's price
		obs("B", 1, 1, 20),
	}
	out := Clean(in, testCfg)

	byKey := make(map[string]float64)
	for _, o := range out {
		byKey[o.SKU+o.Date.Format("0102")] = o.Price
	}
	if byKey["A0102"] != 10 {
		t.Errorf("A day 2 price = %v, want forward-filled 10", byKey["A0102"])
	}
	if byKey["B0101"] != 20 {
		t.Errorf("B day 1 price = %v, want back-filled 20 (not A's price)", byKey["B0101"])
	}
}

func TestClean_DropsDuplicatesKeepingFirst(t *testing.T) {
	in := []domain.Observation{
		obs("A", 0, 5, 10),
		obs("A", 0, 99, 11), // duplicate (SKU, Date), dropped
		obs("A", 1, 7, 10),
	}
	out := Clean(in, testCfg)

	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].Sales != 5 {
		t.Errorf("first occurrence should survive, got Sales = %v", out[0].Sales)
	}
}

func TestClean_ClipsSalesAtGlobalQuantile(t *testing.T) {
	// 101 sales values 0..100: the linear-interpolated 99th percentile is
	// exactly 99, so the single value above it gets capped.
	in := make([]domain.Observation, 0, 101)
	for i := 0; i <= 100; i++ {
		in = append(in, obs("A", i, float64(i), 10))
	}
	out := Clean(in, testCfg)

	max := 0.0
	for _, o := range out {
		if o.Sales > max {
			max = o.Sales
		}
	}
	if max != 99 {
		t.Errorf("max sales after clipping = %v, want 99", max)
	}
}

func TestClean_SortsBySKUThenDate(t *testing.T) {
	in := []domain.Observation{
		obs("B", 1, 1, 1),
		obs("A", 1, 1, 1),
		obs("B", 0, 1, 1),
		obs("A", 0, 1, 1),
	}
	out := Clean(in, testCfg)

	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		if prev.SKU > cur.SKU || (prev.SKU == cur.SKU && prev.Date.After(cur.Date)) {
			t.Fatalf("rows not sorted by (SKU, Date) at position %d", i)
		}
	}
}

func TestClean_IdempotentOnCleanData(t *testing.T) {
	in := make([]domain.Observation, 0, 101)
	for i := 0; i <= 100; i++ {
		in = append(in, obs("A", i, float64(i), 10+float64(i%3)))
	}

	once := Clean(in, testCfg)
	twice := Clean(once, testCfg)
	if !reflect.DeepEqual(once, twice) {
		t.Error("cleaning already-clean data changed the table")
	}
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	// position (4-1)*0.5 = 1.5 -> midpoint of 2 and 3
	if got := Quantile(values, 0.5); got != 2.5 {
		t.Errorf("Quantile(0.5) = %v, want 2.5", got)
	}
	if got := Quantile(values, 1); got != 4 {
		t.Errorf("Quantile(1) = %v, want 4", got)
	}
}
