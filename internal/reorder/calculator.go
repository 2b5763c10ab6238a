package reorder

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/qventory/demandcast/internal/domain"
)

// Calculator sizes per-SKU safety stock from demand variability:
//
//	safety = ceil(z * std(daily sales) * sqrt(lead time days))
//
// where z is the one-sided service-level quantile (1.65 ~ 95%) and the
// standard deviation is the sample deviation of the SKU's daily sales.
type Calculator struct {
	ServiceLevelZ float64
	LeadTimeDays  int
}

func NewCalculator(z float64, leadTimeDays int) *Calculator {
	return &Calculator{ServiceLevelZ: z, LeadTimeDays: leadTimeDays}
}

// SafetyStock computes the buffer quantity for every SKU in the table.
// A SKU with a single observation has undefined sample deviation and gets a
// buffer of 0 rather than propagating NaN into the reorder quantity.
func (c *Calculator) SafetyStock(obs []domain.Observation) map[string]int {
	perSKU := make(map[string][]float64)
	for _, o := range obs {
		perSKU[o.SKU] = append(perSKU[o.SKU], o.Sales)
	}

	out := make(map[string]int, len(perSKU))
	for sku, sales := range perSKU {
		out[sku] = c.buffer(sales)
	}
	return out
}

func (c *Calculator) buffer(sales []float64) int {
	if len(sales) < 2 {
		return 0
	}
	std := stat.StdDev(sales, nil)
	if math.IsNaN(std) {
		return 0
	}
	return int(math.Ceil(c.ServiceLevelZ * std * math.Sqrt(float64(c.LeadTimeDays))))
}
