package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/replenish/internal/dataset"
	"github.com/procurehq/replenish/internal/domain"
)

var testSchema = domain.SchemaMapping{
	DateColumn:     "date",
	ItemColumn:     "item_code",
	QuantityColumn: "quantity",
	DateFormat:     "YYYY-MM-DD",
}

func orderTable(rows [][]string) *dataset.Table {
	return dataset.NewTable([]string{"date", "item_code", "quantity"}, rows)
}

func TestCleanRemovesExactDuplicates(t *testing.T) {
	table := orderTable([][]string{
		{"2024-01-15", "ITEM-1", "100"},
		{"2024-01-15", "ITEM-1", "100"},
		{"2024-02-15", "ITEM-1", "120"},
	})

	rows, report := Clean(table, testSchema)

	assert.Len(t, rows, 2)
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 3, report.RowsBefore)
	assert.Equal(t, 2, report.RowsAfter)
}

func TestCleanIsIdempotentOnCleanData(t *testing.T) {
	table := orderTable([][]string{
		{"2024-01-15", "ITEM-1", "100"},
		{"2024-02-15", "ITEM-1", "120"},
		{"2024-03-15", "ITEM-1", "110"},
	})

	first, report := Clean(table, testSchema)
	assert.Equal(t, 0, report.DuplicatesRemoved)
	assert.Equal(t, 0, report.NullsHandled)

	// Re-cleaning already-clean rows changes nothing.
	again := orderTable([][]string{
		{"2024-01-15", "ITEM-1", "100"},
		{"2024-02-15", "ITEM-1", "120"},
		{"2024-03-15", "ITEM-1", "110"},
	})
	second, _ := Clean(again, testSchema)
	assert.Equal(t, first, second)
}

func TestCleanDropsUnparseableDates(t *testing.T) {
	table := orderTable([][]string{
		{"2024-01-15", "ITEM-1", "100"},
		{"garbage", "ITEM-1", "120"},
		{"", "ITEM-1", "130"},
	})

	rows, report := Clean(table, testSchema)

	assert.Len(t, rows, 1)
	assert.Equal(t, 2, report.NullsHandled)
	assert.Equal(t, 1, report.DatesFixed)
}

func TestCleanInterpolatesSmallQuantityGaps(t *testing.T) {
	table := orderTable([][]string{
		{"2024-01-15", "ITEM-1", "10"},
		{"2024-02-15", "ITEM-1", ""},
		{"2024-03-15", "ITEM-1", "30"},
	})

	rows, report := Clean(table, testSchema)

	require.Len(t, rows, 3)
	assert.Equal(t, 20.0, rows[1].Quantity)
	assert.Equal(t, 1, report.NullsHandled)
}

func TestCleanDropsRowsWhenTooManyQuantitiesMissing(t *testing.T) {
	table := orderTable([][]string{
		{"2024-01-15", "ITEM-1", "10"},
		{"2024-02-15", "ITEM-1", ""},
		{"2024-03-15", "ITEM-1", ""},
		{"2024-04-15", "ITEM-1", ""},
		{"2024-05-15", "ITEM-1", "50"},
	})

	rows, _ := Clean(table, testSchema)

	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.NotZero(t, r.Quantity)
	}
}

func TestCleanFlagsOutliersWithoutRemovingThem(t *testing.T) {
	table := orderTable([][]string{
		{"2024-01-15", "ITEM-1", "100"},
		{"2024-02-15", "ITEM-1", "110"},
		{"2024-03-15", "ITEM-1", "105"},
		{"2024-04-15", "ITEM-1", "95"},
		{"2024-05-15", "ITEM-1", "10000"},
	})

	rows, report := Clean(table, testSchema)

	assert.Len(t, rows, 5, "outlier rows must stay in the data")
	require.Len(t, report.OutliersDetected, 1)
	assert.Equal(t, 10000.0, report.OutliersDetected[0].Value)
	assert.Contains(t, report.OutliersDetected[0].Reason, "Extreme value")
}

func TestPercentileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.75, percentile(sorted, 0.25))
	assert.Equal(t, 2.5, percentile(sorted, 0.5))
	assert.Equal(t, 4.0, percentile(sorted, 1.0))
	assert.Equal(t, 7.0, percentile([]float64{7}, 0.5))
}
