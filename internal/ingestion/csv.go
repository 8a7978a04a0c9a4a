package ingestion

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/salesboard-lab/salesboard/internal/core/dataset"
)

// LoadCSV reads a CSV file with a header row into a Table. Ragged rows are
// kept as-is; the normalizer treats missing cells as empty values and
// decides per row whether to drop.
func LoadCSV(path string) (dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return dataset.Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return dataset.Table{}, fmt.Errorf("csv file %q has no header row", path)
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return dataset.Table{Columns: header, Rows: all[1:]}, nil
}
