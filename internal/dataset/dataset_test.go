package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/replenish/internal/domain"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, "date,item_code,quantity\n2024-01-15,ITEM-1,100\n2024-02-15,ITEM-1,120\n")

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "item_code", "quantity"}, table.Header)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "ITEM-1", table.Value(0, "item_code"))
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("orders.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.NewError(domain.ErrUnsupportedFormat, "")))
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.NewError(domain.ErrEmptyFile, "")))
}

func TestLoadHeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "date,item_code,quantity\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.NewError(domain.ErrEmptyFile, "")))
}

func TestTableAccessors(t *testing.T) {
	table := NewTable(
		[]string{"item", "qty"},
		[][]string{
			{"A", "10"},
			{"B", "1.0"},
			{"C", ""},
			{"D", "abc"},
		},
	)

	f, ok := table.Float(0, "qty")
	assert.True(t, ok)
	assert.Equal(t, 10.0, f)

	// float-formatted ints coerce
	i, ok := table.Int(1, "qty")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = table.Float(2, "qty")
	assert.False(t, ok)
	_, ok = table.Float(3, "qty")
	assert.False(t, ok)

	assert.Equal(t, 1, table.NullCount("qty"))
	assert.Equal(t, "", table.Value(0, "missing_column"))
	assert.False(t, table.HasColumn("missing_column"))
}

func TestParseDateWithDetectedFormat(t *testing.T) {
	got, ok := ParseDate("15/01/2023", "DD/MM/YYYY")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateFallbacks(t *testing.T) {
	got, ok := ParseDate("2023-06-01", "")
	require.True(t, ok)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.June, got.Month())

	_, ok = ParseDate("not a date", "DD/MM/YYYY")
	assert.False(t, ok)

	_, ok = ParseDate("", "")
	assert.False(t, ok)
}

func TestParseDateBadFormatFallsBack(t *testing.T) {
	// Detected format disagrees with the data; fallbacks still parse.
	got, ok := ParseDate("2024-03-10", "DD/MM/YYYY")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)
}
