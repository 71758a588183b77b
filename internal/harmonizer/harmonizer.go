// Package harmonizer detects which columns of a raw order file carry
// the date, item and quantity fields and validates the result against
// the actual data.
package harmonizer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/procurehq/replenish/internal/dataset"
	"github.com/procurehq/replenish/internal/domain"
	"github.com/procurehq/replenish/internal/inference"
)

const (
	defaultPreviewRows = 15
	maxSampleValues    = 5
)

type Harmonizer struct {
	inferer     inference.Service
	previewRows int
}

func New(inferer inference.Service, previewRows int) *Harmonizer {
	if previewRows <= 0 {
		previewRows = defaultPreviewRows
	}
	return &Harmonizer{inferer: inferer, previewRows: previewRows}
}

// Analyze loads the file, infers a schema mapping from a preview of the
// data, and validates the mapping. Inference failures surface as
// structured errors because the caller needs the structured mapping.
func (h *Harmonizer) Analyze(ctx context.Context, path string) (*domain.HarmonizeResult, error) {
	table, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	schema, err := h.inferer.InferSchema(ctx, h.columnSamples(table))
	if err != nil {
		return nil, err
	}

	validation := validate(table, schema)

	result := &domain.HarmonizeResult{
		Schema:       schema,
		Validation:   validation,
		TotalRows:    table.Len(),
		ColumnsFound: table.Header,
	}

	if validation.IsValid {
		result.DateRange = dateRange(table, schema.DateColumn, schema.DateFormat)
	}

	log.Info().
		Str("date_column", schema.DateColumn).
		Str("item_column", schema.ItemColumn).
		Str("quantity_column", schema.QuantityColumn).
		Bool("valid", validation.IsValid).
		Msg("schema detection complete")

	return result, nil
}

// columnSamples builds the per-column preview handed to inference:
// column name, up to 5 non-empty values, and a primitive type guess.
func (h *Harmonizer) columnSamples(table *dataset.Table) []inference.ColumnSample {
	previewLen := table.Len()
	if previewLen > h.previewRows {
		previewLen = h.previewRows
	}

	samples := make([]inference.ColumnSample, 0, len(table.Header))
	for _, col := range table.Header {
		var values []string
		for row := 0; row < previewLen && len(values) < maxSampleValues; row++ {
			if v := table.Value(row, col); v != "" {
				values = append(values, v)
			}
		}
		samples = append(samples, inference.ColumnSample{
			ColumnName:   col,
			SampleValues: values,
			DataType:     guessType(values),
		})
	}
	return samples
}

func guessType(values []string) string {
	if len(values) == 0 {
		return "empty"
	}
	numeric := true
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		return "numeric"
	}
	return "string"
}

// validate checks the mapping against the real column set. Missing
// required columns invalidate; null counts are only warnings.
func validate(table *dataset.Table, schema domain.SchemaMapping) domain.SchemaValidation {
	v := domain.SchemaValidation{IsValid: true}

	required := []struct {
		label string
		col   string
	}{
		{"Date", schema.DateColumn},
		{"Item", schema.ItemColumn},
		{"Quantity", schema.QuantityColumn},
	}
	for _, r := range required {
		if r.col == "" || !table.HasColumn(r.col) {
			v.Errors = append(v.Errors, fmt.Sprintf("%s column %q not found", r.label, r.col))
			v.IsValid = false
		}
	}
	if !v.IsValid {
		return v
	}

	if n := table.NullCount(schema.DateColumn); n > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%d missing values in date column", n))
	}
	if n := table.NullCount(schema.QuantityColumn); n > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%d missing values in quantity column", n))
	}

	if !quantityCoercible(table, schema.QuantityColumn) {
		v.Errors = append(v.Errors, "Quantity column contains non-numeric values")
		v.IsValid = false
	}

	return v
}

// quantityCoercible requires at least one parseable number in the
// quantity column; a column with no numeric content cannot feed a
// forecast.
func quantityCoercible(table *dataset.Table, col string) bool {
	for row := 0; row < table.Len(); row++ {
		if _, ok := table.Float(row, col); ok {
			return true
		}
	}
	return false
}

func dateRange(table *dataset.Table, dateCol, format string) *domain.DateRange {
	var min, max time.Time
	found := false
	for row := 0; row < table.Len(); row++ {
		t, ok := dataset.ParseDate(table.Value(row, dateCol), format)
		if !ok {
			continue
		}
		if !found || t.Before(min) {
			min = t
		}
		if !found || t.After(max) {
			max = t
		}
		found = true
	}
	if !found {
		return nil
	}
	return &domain.DateRange{
		StartDate:   min.Format("2006-01-02"),
		EndDate:     max.Format("2006-01-02"),
		TotalMonths: int(max.Sub(min).Hours()/24)/30 + 1,
	}
}
