package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procurehq/replenish/internal/replenish"
)

type ForecastHandler struct {
	service *replenish.Service
}

func NewForecastHandler(service *replenish.Service) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// GetForecast returns the demand forecast for one item.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	itemCode := c.Param("item_code")

	forecast, err := h.service.Forecast(c.Request.Context(), itemCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}
