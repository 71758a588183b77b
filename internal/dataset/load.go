package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/procurehq/replenish/internal/domain"
)

// Load reads a tabular file into a Table. CSV and XLSX/XLS are
// supported; anything else is an unsupported_format error.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx", ".xls":
		return loadXLSX(path)
	default:
		return nil, domain.NewError(domain.ErrUnsupportedFormat,
			"unsupported file format %q, use CSV or Excel", filepath.Ext(path))
	}
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInventoryUnavailable, err, "failed to open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, err, "failed to parse CSV %s", path)
	}

	if len(records) == 0 {
		return nil, domain.NewError(domain.ErrEmptyFile, "file %s is empty", path)
	}

	table := NewTable(records[0], records[1:])
	if table.Len() == 0 {
		return nil, domain.NewError(domain.ErrEmptyFile, "file %s has a header but no rows", path)
	}
	return table, nil
}

func loadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, err, "failed to open xlsx file %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewError(domain.ErrEmptyFile, "file %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	if len(rows) == 0 {
		return nil, domain.NewError(domain.ErrEmptyFile, "file %s is empty", path)
	}

	table := NewTable(rows[0], rows[1:])
	if table.Len() == 0 {
		return nil, domain.NewError(domain.ErrEmptyFile, "file %s has a header but no rows", path)
	}
	return table, nil
}
