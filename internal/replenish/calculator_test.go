package replenish

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procurehq/replenish/internal/config"
	"github.com/procurehq/replenish/internal/domain"
)

var defaultPolicy = config.ReplenishConfig{
	MinimumOrderQty: 100,
	SafetyBuffer:    500,
	SafetyStockPct:  0.20,
}

func TestCalculateOrderComposition(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 30)

	forecast := domain.DemandForecast{PredictedDemand: 150}
	item := domain.InventoryItem{
		CurrentQuantity: 40,
		ReorderPoint:    50,
		MaxCapacity:     5000,
		SafetyStock:     20,
		LeadTimeDays:    7,
	}

	got := calc.Calculate(forecast, item)

	assert.Equal(t, 110, got.BaseNeed)
	assert.Equal(t, 500, got.SafetyStock, "buffer wins over 20%% of demand")
	assert.Equal(t, 35, got.LeadTimeDemand)
	assert.Equal(t, 645, got.TotalQuantity)
	assert.Equal(t, 645, got.FinalQuantity)
	assert.False(t, got.Capped)
}

func TestCalculatePercentageSafetyStockWinsForLargeDemand(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 30)

	forecast := domain.DemandForecast{PredictedDemand: 3000}
	item := domain.InventoryItem{CurrentQuantity: 100, MaxCapacity: 50000, LeadTimeDays: 0}

	got := calc.Calculate(forecast, item)
	assert.Equal(t, 600, got.SafetyStock, "20%% of 3000 beats the flat buffer")
}

func TestCalculateCapsAtAvailableSpace(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 30)

	forecast := domain.DemandForecast{PredictedDemand: 150}
	item := domain.InventoryItem{
		CurrentQuantity: 40,
		MaxCapacity:     500,
		LeadTimeDays:    7,
	}

	got := calc.Calculate(forecast, item)

	assert.Equal(t, 645, got.TotalQuantity)
	assert.Equal(t, 460, got.AvailableSpace)
	assert.Equal(t, 460, got.FinalQuantity)
	assert.True(t, got.Capped)
}

func TestCalculateZeroCapacityStillCaps(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 30)

	// A snapshot row with a missing or unparseable max_capacity loads
	// as zero. Zero capacity means zero space, not unlimited space, so
	// the order collapses to the supplier minimum.
	forecast := domain.DemandForecast{PredictedDemand: 150}
	item := domain.InventoryItem{
		CurrentQuantity: 40,
		MaxCapacity:     0,
		LeadTimeDays:    7,
	}

	got := calc.Calculate(forecast, item)

	assert.Equal(t, 0, got.AvailableSpace)
	assert.True(t, got.Capped)
	assert.Equal(t, 100, got.FinalQuantity)
}

func TestCalculateMinimumOrderFloor(t *testing.T) {
	calc := NewCalculator(config.ReplenishConfig{
		MinimumOrderQty: 100,
		SafetyBuffer:    20,
		SafetyStockPct:  0.20,
	}, 30)

	forecast := domain.DemandForecast{PredictedDemand: 10}
	item := domain.InventoryItem{CurrentQuantity: 100, MaxCapacity: 1000}

	got := calc.Calculate(forecast, item)

	assert.Equal(t, 0, got.BaseNeed)
	assert.Equal(t, 20, got.SafetyStock)
	assert.Equal(t, 100, got.FinalQuantity, "supplier minimum applies")
}

func TestCalculateMinimumFloorAppliesAfterCap(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 30)

	forecast := domain.DemandForecast{PredictedDemand: 150}
	item := domain.InventoryItem{
		CurrentQuantity: 90,
		MaxCapacity:     100,
		LeadTimeDays:    7,
	}

	got := calc.Calculate(forecast, item)

	// Only 10 units of space, but the supplier will not ship fewer
	// than 100. The minimum wins over the warehouse ceiling.
	assert.True(t, got.Capped)
	assert.Equal(t, 10, got.AvailableSpace)
	assert.Equal(t, 100, got.FinalQuantity)
}

func TestCalculateHorizonScalesLeadTimeDemand(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 60)

	forecast := domain.DemandForecast{PredictedDemand: 150}
	item := domain.InventoryItem{
		CurrentQuantity: 40,
		MaxCapacity:     5000,
		LeadTimeDays:    8,
	}

	got := calc.Calculate(forecast, item)

	// 150 over a 60-day horizon is 2.5/day; 8 lead days cover 20.
	assert.Equal(t, 20, got.LeadTimeDemand)
}

func TestNewCalculatorDefaultsHorizon(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 0)
	assert.Equal(t, defaultHorizonDays, calc.horizonDays)
}

func TestUrgencyLadder(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 30)

	cases := []struct {
		name    string
		demand  int
		current int
		reorder int
		lead    int
		want    domain.Urgency
	}{
		{"runs dry before resupply", 300, 40, 50, 7, domain.UrgencyUrgent},
		{"below reorder point", 30, 40, 50, 7, domain.UrgencyHigh},
		{"under two weeks of cover", 300, 100, 50, 7, domain.UrgencyMedium},
		{"comfortable", 60, 200, 50, 7, domain.UrgencyLow},
		{"zero demand means infinite cover", 0, 200, 50, 7, domain.UrgencyLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			forecast := domain.DemandForecast{PredictedDemand: tc.demand}
			item := domain.InventoryItem{
				CurrentQuantity: tc.current,
				ReorderPoint:    tc.reorder,
				LeadTimeDays:    tc.lead,
			}
			assert.Equal(t, tc.want, calc.UrgencyFor(forecast, item))
		})
	}
}

func TestUrgencyZeroDemandBelowReorder(t *testing.T) {
	calc := NewCalculator(defaultPolicy, 30)

	// No forecast demand, but the snapshot is below the reorder point.
	forecast := domain.DemandForecast{PredictedDemand: 0}
	item := domain.InventoryItem{CurrentQuantity: 10, ReorderPoint: 50, LeadTimeDays: 7}
	assert.Equal(t, domain.UrgencyHigh, calc.UrgencyFor(forecast, item))
}
