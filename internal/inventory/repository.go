// Package inventory reads the current inventory snapshot. The snapshot
// file is owned by the goods-receipt process; this package only reads
// it, reloading on every call so callers always see the latest write.
package inventory

import (
	"github.com/rs/zerolog/log"

	"github.com/procurehq/replenish/internal/dataset"
	"github.com/procurehq/replenish/internal/domain"
)

type Repository struct {
	path string
}

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// All loads every inventory row from the snapshot.
func (r *Repository) All() ([]domain.InventoryItem, error) {
	table, err := dataset.Load(r.path)
	if err != nil {
		log.Error().Err(err).Str("path", r.path).Msg("failed to load inventory snapshot")
		return nil, domain.WrapError(domain.ErrInventoryUnavailable, err,
			"inventory snapshot unavailable at %s", r.path)
	}

	items := make([]domain.InventoryItem, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		code := table.Value(i, "item_code")
		if code == "" {
			continue
		}

		item := domain.InventoryItem{
			ItemCode:          code,
			ItemName:          table.Value(i, "item_name"),
			Unit:              table.Value(i, "unit"),
			WarehouseLocation: table.Value(i, "warehouse_location"),
			LastUpdated:       table.Value(i, "last_updated"),
		}
		item.CurrentQuantity, _ = table.Int(i, "current_quantity")
		item.ReorderPoint, _ = table.Int(i, "reorder_point")
		item.MaxCapacity, _ = table.Int(i, "max_capacity")
		item.SafetyStock, _ = table.Int(i, "safety_stock")
		item.LeadTimeDays, _ = table.Int(i, "lead_time_days")

		items = append(items, item)
	}

	return items, nil
}

// ByCode finds a single item in the snapshot.
func (r *Repository) ByCode(itemCode string) (domain.InventoryItem, error) {
	items, err := r.All()
	if err != nil {
		return domain.InventoryItem{}, err
	}

	for _, item := range items {
		if item.ItemCode == itemCode {
			return item, nil
		}
	}

	return domain.InventoryItem{}, domain.NewError(domain.ErrItemNotFound,
		"item %s not found in inventory", itemCode)
}
