// internal/domain/models.go
package domain

import "time"

// SchemaMapping describes which columns of a raw order file carry the
// date, item and quantity fields. Produced once per dataset by the
// harmonizer and immutable after validation.
type SchemaMapping struct {
	DateColumn     string   `json:"date_column"`
	ItemColumn     string   `json:"item_column"`
	QuantityColumn string   `json:"quantity_column"`
	DateFormat     string   `json:"date_format"`
	Unit           string   `json:"unit"`
	IssuesFound    []string `json:"issues_found"`
	Confidence     string   `json:"confidence"`
}

// SchemaValidation carries the outcome of checking a mapping against the
// actual file contents. Warnings are informational; errors invalidate.
type SchemaValidation struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// DateRange summarizes the span of parseable dates in a dataset.
type DateRange struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TotalMonths int    `json:"total_months"`
}

// HarmonizeResult is the full output of schema detection for one file.
type HarmonizeResult struct {
	Schema       SchemaMapping    `json:"schema"`
	Validation   SchemaValidation `json:"validation"`
	TotalRows    int              `json:"total_rows"`
	ColumnsFound []string         `json:"columns_found"`
	DateRange    *DateRange       `json:"date_range,omitempty"`
}

// OutlierFlag marks a quantity value that looks anomalous. Flagged rows
// are never removed, only reported.
type OutlierFlag struct {
	RowIndex int     `json:"row_index"`
	Value    float64 `json:"value"`
	Reason   string  `json:"reason"`
}

// CleaningReport is the audit trail of a cleaning pass.
type CleaningReport struct {
	RowsBefore        int           `json:"rows_before"`
	RowsAfter         int           `json:"rows_after"`
	DuplicatesRemoved int           `json:"duplicates_removed"`
	NullsHandled      int           `json:"nulls_handled"`
	OutliersDetected  []OutlierFlag `json:"outliers_detected"`
	DatesFixed        int           `json:"dates_fixed"`
}

// OrderRow is a cleaned historical order row: a placed date, the item it
// was for, and the quantity ordered.
type OrderRow struct {
	Date     time.Time
	ItemCode string
	Quantity float64
}

// MonthlyPoint is one calendar month of aggregated demand. Month is
// always the first day of the month.
type MonthlyPoint struct {
	Month    time.Time `json:"month"`
	Quantity float64   `json:"quantity"`
}

// MonthlySeries is an ascending chronological demand series. Months with
// no orders are absent, not zero-filled.
type MonthlySeries []MonthlyPoint

// Quantities returns the quantity values in series order.
func (s MonthlySeries) Quantities() []float64 {
	qs := make([]float64, len(s))
	for i, p := range s {
		qs[i] = p.Quantity
	}
	return qs
}

// ForecastModel identifies one of the candidate forecasting models.
type ForecastModel string

const (
	ModelMovingAverage        ForecastModel = "Moving Average"
	ModelExponentialSmoothing ForecastModel = "Exponential Smoothing"
	ModelLinearRegression     ForecastModel = "Linear Regression"
)

// Trend is the detected direction of the demand series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// ConfidenceInterval holds the 80% and 95% bands around a forecast.
// Lower bounds are floored at zero.
type ConfidenceInterval struct {
	Lower80 int `json:"lower_80"`
	Upper80 int `json:"upper_80"`
	Lower95 int `json:"lower_95"`
	Upper95 int `json:"upper_95"`
}

// DemandForecast is the result of a forecast invocation. Recomputed per
// request, never persisted.
type DemandForecast struct {
	ItemCode            string             `json:"item_code"`
	PredictedDemand     int                `json:"predicted_demand"`
	Confidence          float64            `json:"confidence"`
	ModelUsed           ForecastModel      `json:"model_used"`
	HistoricalAverage   int                `json:"historical_average"`
	Trend               Trend              `json:"trend"`
	SeasonalityDetected bool               `json:"seasonality_detected"`
	ConfidenceInterval  ConfidenceInterval `json:"confidence_interval"`
}

// InventoryItem is one row of the inventory snapshot. The snapshot is
// written by the goods-receipt process; this core only reads it.
type InventoryItem struct {
	ItemCode          string `json:"item_code"`
	ItemName          string `json:"item_name"`
	CurrentQuantity   int    `json:"current_quantity"`
	ReorderPoint      int    `json:"reorder_point"`
	MaxCapacity       int    `json:"max_capacity"`
	Unit              string `json:"unit"`
	WarehouseLocation string `json:"warehouse_location"`
	LastUpdated       string `json:"last_updated"`
	SafetyStock       int    `json:"safety_stock"`
	LeadTimeDays      int    `json:"lead_time_days"`
}

// StockState classifies how healthy an item's stock level is.
type StockState string

const (
	StockAdequate   StockState = "ADEQUATE"
	StockLow        StockState = "LOW"
	StockCritical   StockState = "CRITICAL"
	StockOutOfStock StockState = "OUT_OF_STOCK"
)

// StockPriority ranks how quickly a stock situation needs attention.
// The empty value means no action is needed.
type StockPriority string

const (
	PriorityNone   StockPriority = ""
	PriorityMedium StockPriority = "MEDIUM"
	PriorityHigh   StockPriority = "HIGH"
	PriorityUrgent StockPriority = "URGENT"
)

// StockStatus is the derived stock position of one item, recomputed per
// request.
type StockStatus struct {
	ItemCode        string        `json:"item_code"`
	ItemName        string        `json:"item_name"`
	CurrentQuantity int           `json:"current_quantity"`
	ReorderPoint    int           `json:"reorder_point"`
	NeedsReorder    bool          `json:"needs_reorder"`
	ShortageAmount  int           `json:"shortage_amount"`
	Status          StockState    `json:"status"`
	Priority        StockPriority `json:"priority,omitempty"`
}

// StockSummary aggregates the whole inventory snapshot.
type StockSummary struct {
	TotalItems          int     `json:"total_items"`
	ItemsNeedingReorder int     `json:"items_needing_reorder"`
	ItemsStockOK        int     `json:"items_stock_ok"`
	ReorderPercentage   float64 `json:"reorder_percentage"`
	AvgStockLevel       float64 `json:"avg_stock_level"`
	CapacityUtilization float64 `json:"capacity_utilization"`
}

// Urgency ranks an order recommendation.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
	UrgencyUrgent Urgency = "URGENT"
)

// OrderCalculation is the structured arithmetic behind a recommendation,
// kept separate so any reasoning generator can consume it.
type OrderCalculation struct {
	PredictedDemand int  `json:"predicted_demand"`
	CurrentStock    int  `json:"current_stock"`
	BaseNeed        int  `json:"base_need"`
	SafetyStock     int  `json:"safety_stock"`
	LeadTimeDemand  int  `json:"lead_time_demand"`
	TotalQuantity   int  `json:"total_quantity"`
	FinalQuantity   int  `json:"final_quantity"`
	Capped          bool `json:"capped"`
	MaxCapacity     int  `json:"max_capacity"`
	AvailableSpace  int  `json:"available_space"`
}

// OrderRecommendation is the final output of the replenishment core.
type OrderRecommendation struct {
	ItemCode            string           `json:"item_code"`
	ItemName            string           `json:"item_name"`
	RecommendedQuantity int              `json:"recommended_quantity"`
	Reason              string           `json:"reason"`
	Urgency             Urgency          `json:"urgency"`
	Calculation         OrderCalculation `json:"calculation"`
	Forecast            DemandForecast   `json:"forecast"`
	Stock               StockStatus      `json:"stock"`
}
