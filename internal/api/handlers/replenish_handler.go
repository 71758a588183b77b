package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procurehq/replenish/internal/replenish"
)

type ReplenishHandler struct {
	service *replenish.Service
}

func NewReplenishHandler(service *replenish.Service) *ReplenishHandler {
	return &ReplenishHandler{service: service}
}

// GetRecommendation returns the order recommendation for one item.
func (h *ReplenishHandler) GetRecommendation(c *gin.Context) {
	rec, err := h.service.Recommend(c.Request.Context(), c.Param("item_code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type batchRequest struct {
	ItemCodes []string `json:"item_codes" binding:"required,min=1"`
}

// BatchRecommendations runs the pipeline over a list of items. Items
// that fail are omitted from the response rather than failing the call.
func (h *ReplenishHandler) BatchRecommendations(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_codes is required"})
		return
	}

	recs, err := h.service.RecommendBatch(c.Request.Context(), req.ItemCodes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requested":       len(req.ItemCodes),
		"recommendations": recs,
	})
}

// InvalidateCache drops cached recommendations, for one item or all of
// them, after the inventory snapshot changed out-of-band.
func (h *ReplenishHandler) InvalidateCache(c *gin.Context) {
	itemCode := c.Param("item_code")
	if err := h.service.InvalidateCache(c.Request.Context(), itemCode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": true})
}

// PriorityOrders recommends orders for every low-stock item, most
// urgent first.
func (h *ReplenishHandler) PriorityOrders(c *gin.Context) {
	recs, err := h.service.PriorityOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":           len(recs),
		"recommendations": recs,
	})
}
