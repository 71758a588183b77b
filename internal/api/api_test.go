package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/replenish/internal/cache"
	"github.com/procurehq/replenish/internal/config"
	"github.com/procurehq/replenish/internal/domain"
	"github.com/procurehq/replenish/internal/forecast"
	"github.com/procurehq/replenish/internal/harmonizer"
	"github.com/procurehq/replenish/internal/inference"
	"github.com/procurehq/replenish/internal/inventory"
	"github.com/procurehq/replenish/internal/replenish"
	"github.com/procurehq/replenish/internal/stock"
)

type stubInference struct{}

func (s *stubInference) InferSchema(ctx context.Context, columns []inference.ColumnSample) (domain.SchemaMapping, error) {
	return domain.SchemaMapping{
		DateColumn:     "order_date",
		ItemColumn:     "material",
		QuantityColumn: "qty",
		DateFormat:     "YYYY-MM-DD",
	}, nil
}

func (s *stubInference) GenerateReasoning(ctx context.Context, in inference.ReasoningInput) (string, error) {
	return "", fmt.Errorf("inference offline")
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	invCSV := "item_code,item_name,current_quantity,reorder_point,max_capacity,unit,warehouse_location,last_updated,safety_stock,lead_time_days\n" +
		"ITEM-1,Hex Bolt M8,40,50,500,pieces,A-01,2025-08-01,20,7\n" +
		"ITEM-2,Washer M8,300,50,500,pieces,A-02,2025-08-01,20,7\n"
	path := filepath.Join(t.TempDir(), "current_inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte(invCSV), 0644))

	monitor := stock.NewMonitor(inventory.NewRepository(path))
	return NewRouter(&Services{Stock: monitor}, []string{"*"})
}

func replenishRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	history := "order_date,material,qty\n"
	for i, qty := range []int{100, 120, 110, 130, 125, 140, 135} {
		history += fmt.Sprintf("2025-%02d-15,ITEM-1,%d\n", i+1, qty)
	}
	historyPath := filepath.Join(dir, "historical_orders.csv")
	require.NoError(t, os.WriteFile(historyPath, []byte(history), 0644))

	invCSV := "item_code,item_name,current_quantity,reorder_point,max_capacity,unit,warehouse_location,last_updated,safety_stock,lead_time_days\n" +
		"ITEM-1,Hex Bolt M8,40,50,5000,pieces,A-01,2025-08-01,20,7\n"
	invPath := filepath.Join(dir, "current_inventory.csv")
	require.NoError(t, os.WriteFile(invPath, []byte(invCSV), 0644))

	cfg := &config.Config{
		Data: config.DataConfig{HistoryPath: historyPath, InventoryPath: invPath},
		Replenish: config.ReplenishConfig{
			MinimumOrderQty: 100,
			SafetyBuffer:    500,
			SafetyStockPct:  0.20,
		},
		Forecast: config.ForecastConfig{HorizonDays: 30, MinMonths: 6, PreviewRows: 15},
	}

	repo := inventory.NewRepository(invPath)
	monitor := stock.NewMonitor(repo)
	service := replenish.NewService(
		cfg,
		harmonizer.New(&stubInference{}, cfg.Forecast.PreviewRows),
		forecast.New(cfg.Forecast.MinMonths),
		repo,
		monitor,
		replenish.NewCalculator(cfg.Replenish, cfg.Forecast.HorizonDays),
		&stubInference{},
		cache.NewNoopRecommendationCache(),
	)

	return NewRouter(&Services{Replenish: service, Stock: monitor}, []string{"*"})
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestGetStockStatus(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/stock/ITEM-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ITEM-1", body["item_code"])
	assert.Equal(t, true, body["needs_reorder"])
}

func TestGetStockStatusNotFound(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/stock/NOPE", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "item_not_found", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestGetStockSummary(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/stock/summary", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["total_items"])
	assert.Equal(t, float64(1), body["items_needing_reorder"])
}

func TestGetRecommendation(t *testing.T) {
	router := replenishRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/replenishment/ITEM-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ITEM-1", body["item_code"])
	assert.GreaterOrEqual(t, body["recommended_quantity"], float64(100))
}

func TestInvalidateRecommendationCache(t *testing.T) {
	router := replenishRouter(t)

	for _, target := range []string{
		"/api/v1/replenishment/cache",
		"/api/v1/replenishment/cache/ITEM-1",
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", target, nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Contains(t, w.Body.String(), "invalidated")
	}
}

func TestGetLowStock(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/stock/low", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
		Items []struct {
			ItemCode string `json:"item_code"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "ITEM-1", body.Items[0].ItemCode)
}
