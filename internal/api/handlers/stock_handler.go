package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procurehq/replenish/internal/stock"
)

type StockHandler struct {
	monitor *stock.Monitor
}

func NewStockHandler(monitor *stock.Monitor) *StockHandler {
	return &StockHandler{monitor: monitor}
}

// GetStatus returns the stock position of one item.
func (h *StockHandler) GetStatus(c *gin.Context) {
	status, err := h.monitor.Check(c.Param("item_code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetSummary aggregates the whole inventory snapshot.
func (h *StockHandler) GetSummary(c *gin.Context) {
	summary, err := h.monitor.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetLowStock lists every item at or below its reorder point.
func (h *StockHandler) GetLowStock(c *gin.Context) {
	items, err := h.monitor.LowStockItems()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}
