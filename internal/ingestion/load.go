// Package ingestion reads a raw sales table from a file source into the
// row-of-fields abstraction the pipeline core consumes. CSV and XLSX
// sources are supported; the core never sees file access.
package ingestion

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/salesboard-lab/salesboard/internal/core/dataset"
)

// Load reads a table from path. format is "csv", "xlsx", or "auto"
// (dispatch on the file extension).
func Load(path, format string) (dataset.Table, error) {
	if format == "" || format == "auto" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm":
			format = "xlsx"
		default:
			format = "csv"
		}
	}

	switch format {
	case "csv":
		return LoadCSV(path)
	case "xlsx":
		return LoadXLSX(path)
	default:
		return dataset.Table{}, fmt.Errorf("unsupported dataset format %q", format)
	}
}
