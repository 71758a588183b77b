package harmonizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/replenish/internal/domain"
	"github.com/procurehq/replenish/internal/inference"
)

type stubInference struct {
	schema domain.SchemaMapping
	err    error

	seenColumns []inference.ColumnSample
}

func (s *stubInference) InferSchema(ctx context.Context, columns []inference.ColumnSample) (domain.SchemaMapping, error) {
	s.seenColumns = columns
	return s.schema, s.err
}

func (s *stubInference) GenerateReasoning(ctx context.Context, in inference.ReasoningInput) (string, error) {
	return "", fmt.Errorf("not used here")
}

func writeOrders(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAnalyzeValidSchema(t *testing.T) {
	path := writeOrders(t,
		"order_date,material,qty\n"+
			"2025-01-15,ITEM-1,100\n"+
			"2025-02-15,ITEM-1,120\n"+
			"2025-03-15,ITEM-2,90\n")

	stub := &stubInference{schema: domain.SchemaMapping{
		DateColumn:     "order_date",
		ItemColumn:     "material",
		QuantityColumn: "qty",
		DateFormat:     "YYYY-MM-DD",
		Unit:           "pieces",
		Confidence:     "high",
	}}

	result, err := New(stub, 15).Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, result.Validation.IsValid)
	assert.Empty(t, result.Validation.Errors)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, []string{"order_date", "material", "qty"}, result.ColumnsFound)

	require.NotNil(t, result.DateRange)
	assert.Equal(t, "2025-01-15", result.DateRange.StartDate)
	assert.Equal(t, "2025-03-15", result.DateRange.EndDate)
	assert.Equal(t, 2, result.DateRange.TotalMonths)
}

func TestAnalyzeMissingMappedColumn(t *testing.T) {
	path := writeOrders(t,
		"order_date,material,qty\n"+
			"2025-01-15,ITEM-1,100\n")

	stub := &stubInference{schema: domain.SchemaMapping{
		DateColumn:     "date", // not in the file
		ItemColumn:     "material",
		QuantityColumn: "qty",
	}}

	result, err := New(stub, 15).Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.False(t, result.Validation.IsValid)
	require.Len(t, result.Validation.Errors, 1)
	assert.Contains(t, result.Validation.Errors[0], "Date column")
	assert.Nil(t, result.DateRange, "no date range on an invalid mapping")
}

func TestAnalyzeNonNumericQuantityColumn(t *testing.T) {
	path := writeOrders(t,
		"order_date,material,qty\n"+
			"2025-01-15,ITEM-1,lots\n"+
			"2025-02-15,ITEM-1,some\n")

	stub := &stubInference{schema: domain.SchemaMapping{
		DateColumn:     "order_date",
		ItemColumn:     "material",
		QuantityColumn: "qty",
	}}

	result, err := New(stub, 15).Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.False(t, result.Validation.IsValid)
	assert.Contains(t, result.Validation.Errors[0], "non-numeric")
}

func TestAnalyzeNullWarnings(t *testing.T) {
	path := writeOrders(t,
		"order_date,material,qty\n"+
			"2025-01-15,ITEM-1,100\n"+
			",ITEM-1,120\n"+
			"2025-03-15,ITEM-1,\n")

	stub := &stubInference{schema: domain.SchemaMapping{
		DateColumn:     "order_date",
		ItemColumn:     "material",
		QuantityColumn: "qty",
	}}

	result, err := New(stub, 15).Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, result.Validation.IsValid, "nulls warn, they do not invalidate")
	assert.Len(t, result.Validation.Warnings, 2)
}

func TestColumnSamplesRespectPreviewWindow(t *testing.T) {
	content := "order_date,material,qty\n"
	for i := 0; i < 40; i++ {
		content += fmt.Sprintf("2025-01-%02d,ITEM-1,%d\n", i%28+1, i)
	}
	path := writeOrders(t, content)

	stub := &stubInference{schema: domain.SchemaMapping{
		DateColumn:     "order_date",
		ItemColumn:     "material",
		QuantityColumn: "qty",
	}}

	_, err := New(stub, 15).Analyze(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, stub.seenColumns, 3)
	for _, col := range stub.seenColumns {
		assert.LessOrEqual(t, len(col.SampleValues), 5, "at most five samples per column")
	}
	assert.Equal(t, "string", stub.seenColumns[1].DataType)
	assert.Equal(t, "numeric", stub.seenColumns[2].DataType)
}
