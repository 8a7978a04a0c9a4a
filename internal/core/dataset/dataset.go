// Package dataset defines the typed sales records the pipeline operates on
// and the normalizer that produces them from a raw tabular source.
package dataset

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one cleaned sales transaction line.
// Every retained Record has a valid InvoiceDate, parsed Quantity and
// UnitPrice, and Sales = Quantity * UnitPrice with Sales > 0.
type Record struct {
	Country     string
	InvoiceDate time.Time
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Sales       decimal.Decimal
	CustomerID  string // empty when the source value is missing
	InvoiceID   string
}

// Table is the row-of-fields abstraction the normalizer consumes. Rows may
// be ragged; a missing cell reads as the empty string.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of a column by exact name, or -1.
func (t Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Report summarizes a normalization pass. Dropped rows are absorbed, never
// surfaced as errors; the count is exposed for observability only.
type Report struct {
	RowsIn      int `json:"rows_in"`
	RowsDropped int `json:"rows_dropped"`
	Retained    int `json:"retained"`
}

// Dataset is an ordered, immutable collection of cleaned records. It is
// read-only after construction and safe to share across goroutines.
type Dataset struct {
	records   []Record
	countries []string // first-seen order
	minYear   int
	maxYear   int
}

// New builds a Dataset from already-cleaned records, deriving the country
// list and year span. The caller must not mutate records afterwards.
func New(records []Record) *Dataset {
	ds := &Dataset{records: records}
	seen := make(map[string]bool)
	for _, r := range records {
		if !seen[r.Country] {
			seen[r.Country] = true
			ds.countries = append(ds.countries, r.Country)
		}
		year := r.InvoiceDate.Year()
		if ds.minYear == 0 || year < ds.minYear {
			ds.minYear = year
		}
		if year > ds.maxYear {
			ds.maxYear = year
		}
	}
	return ds
}

// Records returns the underlying record slice. Callers must treat it as
// read-only.
func (d *Dataset) Records() []Record { return d.records }

func (d *Dataset) Len() int { return len(d.records) }

// Countries returns the distinct countries in first-seen order.
func (d *Dataset) Countries() []string {
	return slices.Clone(d.countries)
}

// SortedCountries returns the distinct countries in lexical order.
func (d *Dataset) SortedCountries() []string {
	out := slices.Clone(d.countries)
	slices.Sort(out)
	return out
}

// YearSpan returns the minimum and maximum calendar year present.
// Both are zero for an empty dataset.
func (d *Dataset) YearSpan() (int, int) { return d.minYear, d.maxYear }
