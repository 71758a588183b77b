// Package stock derives reorder status from the inventory snapshot.
// Status is recomputed from the snapshot on every call and never
// persisted.
package stock

import (
	"github.com/rs/zerolog/log"

	"github.com/procurehq/replenish/internal/domain"
	"github.com/procurehq/replenish/internal/inventory"
)

type Monitor struct {
	repo *inventory.Repository
}

func NewMonitor(repo *inventory.Repository) *Monitor {
	return &Monitor{repo: repo}
}

// Check classifies one item's stock position against its reorder point
// and safety stock.
func (m *Monitor) Check(itemCode string) (domain.StockStatus, error) {
	item, err := m.repo.ByCode(itemCode)
	if err != nil {
		return domain.StockStatus{}, err
	}
	return classify(item), nil
}

// LowStockItems returns the status of every item at or below its
// reorder point, worst first.
func (m *Monitor) LowStockItems() ([]domain.StockStatus, error) {
	items, err := m.repo.All()
	if err != nil {
		return nil, err
	}

	var low []domain.StockStatus
	for _, item := range items {
		status := classify(item)
		if status.NeedsReorder {
			low = append(low, status)
		}
	}

	// Worst shortage first.
	for i := 1; i < len(low); i++ {
		for j := i; j > 0 && low[j].ShortageAmount > low[j-1].ShortageAmount; j-- {
			low[j], low[j-1] = low[j-1], low[j]
		}
	}

	log.Debug().Int("count", len(low)).Msg("low stock scan complete")
	return low, nil
}

// Summary aggregates the whole snapshot into counts and utilization.
func (m *Monitor) Summary() (domain.StockSummary, error) {
	items, err := m.repo.All()
	if err != nil {
		return domain.StockSummary{}, err
	}

	summary := domain.StockSummary{TotalItems: len(items)}
	if len(items) == 0 {
		return summary, nil
	}

	totalQty := 0
	totalCapacity := 0
	for _, item := range items {
		if classify(item).NeedsReorder {
			summary.ItemsNeedingReorder++
		}
		totalQty += item.CurrentQuantity
		totalCapacity += item.MaxCapacity
	}

	summary.ItemsStockOK = summary.TotalItems - summary.ItemsNeedingReorder
	summary.ReorderPercentage = float64(summary.ItemsNeedingReorder) / float64(summary.TotalItems) * 100
	summary.AvgStockLevel = float64(totalQty) / float64(summary.TotalItems)
	if totalCapacity > 0 {
		summary.CapacityUtilization = float64(totalQty) / float64(totalCapacity) * 100
	}

	return summary, nil
}

// classify applies the status ladder. An item sitting exactly at its
// reorder point already needs a reorder.
func classify(item domain.InventoryItem) domain.StockStatus {
	status := domain.StockStatus{
		ItemCode:        item.ItemCode,
		ItemName:        item.ItemName,
		CurrentQuantity: item.CurrentQuantity,
		ReorderPoint:    item.ReorderPoint,
		NeedsReorder:    item.CurrentQuantity <= item.ReorderPoint,
	}
	if shortage := item.ReorderPoint - item.CurrentQuantity; shortage > 0 {
		status.ShortageAmount = shortage
	}

	switch {
	case item.CurrentQuantity <= 0:
		status.Status = domain.StockOutOfStock
		status.Priority = domain.PriorityUrgent
	case item.CurrentQuantity < item.SafetyStock:
		status.Status = domain.StockCritical
		status.Priority = domain.PriorityUrgent
	case float64(item.CurrentQuantity) < 0.5*float64(item.ReorderPoint):
		status.Status = domain.StockLow
		status.Priority = domain.PriorityHigh
	case item.CurrentQuantity <= item.ReorderPoint:
		status.Status = domain.StockLow
		status.Priority = domain.PriorityMedium
	default:
		status.Status = domain.StockAdequate
		status.Priority = domain.PriorityNone
	}

	return status
}
