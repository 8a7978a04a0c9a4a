package ingestion

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/salesboard-lab/salesboard/internal/core/dataset"
)

// LoadXLSX reads the first sheet of a workbook into a Table. The first
// non-empty row is treated as the header.
func LoadXLSX(path string) (dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataset.Table{}, fmt.Errorf("workbook %q has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return dataset.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	header := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return dataset.Table{}, fmt.Errorf("workbook %q has no header row", path)
	}

	return dataset.Table{Columns: rows[header], Rows: rows[header+1:]}, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
