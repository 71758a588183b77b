// Package replenish turns a demand forecast and a stock position into a
// concrete purchase order recommendation.
package replenish

import (
	"math"

	"github.com/procurehq/replenish/internal/config"
	"github.com/procurehq/replenish/internal/domain"
)

const defaultHorizonDays = 30

// Calculator applies the order sizing policy: cover the shortfall, add
// safety stock, add lead-time demand, then respect warehouse capacity
// and the supplier's minimum order size.
type Calculator struct {
	minimumOrderQty int
	safetyBuffer    int
	safetyStockPct  float64
	horizonDays     int
}

func NewCalculator(cfg config.ReplenishConfig, horizonDays int) *Calculator {
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays
	}
	return &Calculator{
		minimumOrderQty: cfg.MinimumOrderQty,
		safetyBuffer:    cfg.SafetyBuffer,
		safetyStockPct:  cfg.SafetyStockPct,
		horizonDays:     horizonDays,
	}
}

// Calculate sizes the order for one item. The capacity cap always
// applies: an item with no recorded capacity has no space, so its order
// collapses to the supplier minimum. The minimum order quantity is
// applied after the cap, so the supplier minimum wins over the
// warehouse ceiling when the two conflict.
func (c *Calculator) Calculate(forecast domain.DemandForecast, item domain.InventoryItem) domain.OrderCalculation {
	demand := forecast.PredictedDemand
	current := item.CurrentQuantity

	baseNeed := demand - current
	if baseNeed < 0 {
		baseNeed = 0
	}

	safetyStock := int(math.Round(float64(demand) * c.safetyStockPct))
	if safetyStock < c.safetyBuffer {
		safetyStock = c.safetyBuffer
	}

	leadTimeDemand := int(math.Round(float64(demand) / float64(c.horizonDays) * float64(item.LeadTimeDays)))

	total := baseNeed + safetyStock + leadTimeDemand

	calc := domain.OrderCalculation{
		PredictedDemand: demand,
		CurrentStock:    current,
		BaseNeed:        baseNeed,
		SafetyStock:     safetyStock,
		LeadTimeDemand:  leadTimeDemand,
		TotalQuantity:   total,
		MaxCapacity:     item.MaxCapacity,
		AvailableSpace:  item.MaxCapacity - current,
	}
	if calc.AvailableSpace < 0 {
		calc.AvailableSpace = 0
	}

	final := total
	if final > calc.AvailableSpace {
		final = calc.AvailableSpace
		calc.Capped = true
	}
	if final < c.minimumOrderQty {
		final = c.minimumOrderQty
	}
	calc.FinalQuantity = final

	return calc
}

// UrgencyFor ranks an order by how soon the item runs dry. Days of
// cover compare against the supplier lead time first; an item that will
// empty before a replacement can arrive is always urgent.
func (c *Calculator) UrgencyFor(forecast domain.DemandForecast, item domain.InventoryItem) domain.Urgency {
	dailyDemand := float64(forecast.PredictedDemand) / float64(c.horizonDays)

	daysOfCover := math.Inf(1)
	if dailyDemand > 0 {
		daysOfCover = float64(item.CurrentQuantity) / dailyDemand
	}

	switch {
	case daysOfCover < float64(item.LeadTimeDays):
		return domain.UrgencyUrgent
	case item.CurrentQuantity < item.ReorderPoint:
		return domain.UrgencyHigh
	case daysOfCover < 14:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}
