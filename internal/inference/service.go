// Package inference abstracts the text-completion service behind narrow
// typed call sites so the numeric core never depends on a live LLM.
package inference

import (
	"context"

	"github.com/procurehq/replenish/internal/domain"
)

// ColumnSample is what schema inference sees of one column: its name,
// a handful of values, and a crude primitive type guess.
type ColumnSample struct {
	ColumnName   string   `json:"column_name"`
	SampleValues []string `json:"sample_values"`
	DataType     string   `json:"data_type"`
}

// ReasoningInput is the structured calculation a narrative justification
// is generated from.
type ReasoningInput struct {
	ItemName        string
	CurrentStock    int
	ReorderPoint    int
	PredictedDemand int
	ModelUsed       domain.ForecastModel
	Confidence      float64
	Trend           domain.Trend
	FinalQuantity   int
	Urgency         domain.Urgency
}

// Service is the text-inference capability consumed by the core.
// Implementations may fail; callers must treat failures as recoverable.
type Service interface {
	// InferSchema maps raw column samples to a schema guess. A failure
	// here is surfaced as a structured error because the caller needs
	// the structured output.
	InferSchema(ctx context.Context, columns []ColumnSample) (domain.SchemaMapping, error)

	// GenerateReasoning produces a short narrative justification for an
	// order recommendation. Callers fall back to a deterministic
	// template on error.
	GenerateReasoning(ctx context.Context, input ReasoningInput) (string, error)
}
