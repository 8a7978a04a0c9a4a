package dataset

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salesboard-lab/salesboard/internal/core/errs"
	"github.com/salesboard-lab/salesboard/internal/core/schema"
)

// Accepted invoice date layouts, tried in order. The first two match the
// canonical retail export ("12/1/2010 8:26"); the rest cover common
// re-exports of the same data.
var dateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
	"02-01-2006",
}

// ctxCheckInterval is how many rows are processed between context checks
// during normalization.
const ctxCheckInterval = 1024

// Normalize coerces the raw table into a Dataset using the resolved
// role-to-column mapping.
//
// Row-level parse failures (unparseable date, quantity, or unit price) and
// non-positive derived sales drop the row silently; the Report carries the
// aggregate drop count. Two dataset-level conditions are fatal:
//
//   - the resolved date column yields fewer than two distinct parsed date
//     values over a non-empty table, which means a non-date column was
//     mapped to the invoice_date role (*errs.SchemaError);
//   - fewer than two distinct calendar years survive cleaning, which makes
//     year-range filtering meaningless (*errs.DataSufficiencyError).
//
// A context deadline bounds the parse loop; exceeding it returns
// *errs.TimeoutError.
func Normalize(ctx context.Context, tbl Table, m schema.Mapping) (*Dataset, Report, error) {
	idx := make(map[schema.Role]int, len(m))
	for _, role := range schema.Roles() {
		idx[role] = tbl.ColumnIndex(m[role])
	}

	report := Report{RowsIn: len(tbl.Rows)}
	records := make([]Record, 0, len(tbl.Rows))
	distinctDates := make(map[time.Time]struct{})
	distinctYears := make(map[int]struct{})
	dateFailures := 0

	var deadline time.Duration
	if dl, ok := ctx.Deadline(); ok {
		deadline = time.Until(dl)
	}

	for i, row := range tbl.Rows {
		if i%ctxCheckInterval == 0 && ctx.Err() != nil {
			return nil, report, &errs.TimeoutError{Stage: "normalize", Budget: deadline}
		}

		date, ok := parseDate(cell(row, idx[schema.RoleInvoiceDate]))
		if ok {
			// Count distinct date values over all rows, dropped or not:
			// the date-role guard judges the column, not the clean subset.
			distinctDates[date] = struct{}{}
		} else {
			dateFailures++
			report.RowsDropped++
			continue
		}

		qty, qok := parseNumber(cell(row, idx[schema.RoleQuantity]))
		price, pok := parseNumber(cell(row, idx[schema.RoleUnitPrice]))
		if !qok || !pok {
			report.RowsDropped++
			continue
		}

		sales := qty.Mul(price)
		if !sales.IsPositive() {
			report.RowsDropped++
			continue
		}

		records = append(records, Record{
			Country:     strings.TrimSpace(cell(row, idx[schema.RoleCountry])),
			InvoiceDate: date,
			Quantity:    qty,
			UnitPrice:   price,
			Sales:       sales,
			CustomerID:  strings.TrimSpace(cell(row, idx[schema.RoleCustomerID])),
			InvoiceID:   strings.TrimSpace(cell(row, idx[schema.RoleInvoiceID])),
		})
		distinctYears[date.Year()] = struct{}{}
	}

	// The guard targets a non-date column mistakenly mapped to the date
	// role, so it needs actual parse failures: a genuine date column whose
	// every cell holds the same instant parses clean and falls through to
	// the sufficiency check instead.
	if report.RowsIn > 0 && dateFailures > 0 && len(distinctDates) < 2 {
		return nil, report, &errs.SchemaError{
			Roles:  []string{string(schema.RoleInvoiceDate)},
			Reason: "resolved column does not parse as a date column",
		}
	}
	if len(distinctYears) < 2 {
		return nil, report, &errs.DataSufficiencyError{DistinctYears: len(distinctYears)}
	}

	report.Retained = len(records)
	return New(records), report, nil
}

// cell reads a field from a possibly ragged row; out-of-range reads as "".
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
