package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/salesboard-lab/salesboard/internal/core/errs"
	"github.com/salesboard-lab/salesboard/internal/core/schema"
)

var testMapping = schema.Mapping{
	schema.RoleCountry:     "Country",
	schema.RoleInvoiceDate: "InvoiceDate",
	schema.RoleQuantity:    "Quantity",
	schema.RoleUnitPrice:   "UnitPrice",
	schema.RoleCustomerID:  "CustomerID",
	schema.RoleInvoiceID:   "InvoiceNo",
}

func testTable(rows [][]string) Table {
	return Table{
		Columns: []string{"InvoiceNo", "InvoiceDate", "Quantity", "UnitPrice", "CustomerID", "Country"},
		Rows:    rows,
	}
}

func TestNormalize_CleanRows(t *testing.T) {
	tbl := testTable([][]string{
		{"100", "1/5/2010 8:26", "2", "5.0", "1", "UK"},
		{"101", "12/1/2011 9:00", "3", "1.25", "2", "France"},
	})

	ds, report, err := Normalize(context.Background(), tbl, testMapping)
	require.NoError(t, err)
	require.Equal(t, Report{RowsIn: 2, RowsDropped: 0, Retained: 2}, report)
	require.Equal(t, 2, ds.Len())

	r := ds.Records()[0]
	require.Equal(t, "UK", r.Country)
	require.Equal(t, time.Date(2010, 1, 5, 8, 26, 0, 0, time.UTC), r.InvoiceDate)
	require.True(t, r.Sales.Equal(decimal.RequireFromString("10")), "sales = %s", r.Sales)

	minYear, maxYear := ds.YearSpan()
	require.Equal(t, 2010, minYear)
	require.Equal(t, 2011, maxYear)
	require.Equal(t, []string{"UK", "France"}, ds.Countries())
	require.Equal(t, []string{"France", "UK"}, ds.SortedCountries())
}

func TestNormalize_DropsBadRows(t *testing.T) {
	tests := []struct {
		name string
		row  []string
	}{
		{name: "unparseable date", row: []string{"100", "not-a-date", "2", "5.0", "1", "UK"}},
		{name: "unparseable quantity", row: []string{"100", "1/5/2010 8:26", "two", "5.0", "1", "UK"}},
		{name: "unparseable price", row: []string{"100", "1/5/2010 8:26", "2", "cheap", "1", "UK"}},
		{name: "negative quantity gives non-positive sales", row: []string{"100", "1/5/2010 8:26", "-2", "5.0", "1", "UK"}},
		{name: "zero price gives non-positive sales", row: []string{"100", "1/5/2010 8:26", "2", "0", "1", "UK"}},
		{name: "ragged row missing cells", row: []string{"100", "1/5/2010 8:26"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tbl := testTable([][]string{
				tc.row,
				// Anchor rows so the run survives the fatal checks.
				{"200", "2/7/2010 10:00", "1", "3", "9", "UK"},
				{"201", "2/7/2011 10:00", "1", "3", "9", "UK"},
			})

			ds, report, err := Normalize(context.Background(), tbl, testMapping)
			require.NoError(t, err)
			require.Equal(t, 1, report.RowsDropped)
			require.Equal(t, 2, report.Retained)
			require.Equal(t, 2, ds.Len())
		})
	}
}

// Every retained record must satisfy sales == quantity * unit_price and
// sales > 0.
func TestNormalize_RetainedRecordInvariant(t *testing.T) {
	tbl := testTable([][]string{
		{"100", "1/5/2010 8:26", "2", "5.0", "1", "UK"},
		{"101", "3/9/2011 11:15", "7", "0.42", "", "France"},
		{"102", "bad-date", "1", "1", "2", "UK"},
		{"103", "4/2/2011 12:00", "-3", "2", "2", "UK"},
	})

	ds, _, err := Normalize(context.Background(), tbl, testMapping)
	require.NoError(t, err)

	for _, r := range ds.Records() {
		require.True(t, r.Sales.Equal(r.Quantity.Mul(r.UnitPrice)))
		require.True(t, r.Sales.IsPositive())
	}
}

func TestNormalize_SingleYearInsufficient(t *testing.T) {
	tbl := testTable([][]string{
		{"100", "1/5/2010 8:26", "2", "5.0", "1", "UK"},
		{"101", "1/6/2010 9:00", "1", "5.0", "1", "UK"},
	})

	_, _, err := Normalize(context.Background(), tbl, testMapping)

	var dataErr *errs.DataSufficiencyError
	require.ErrorAs(t, err, &dataErr)
	require.Equal(t, 1, dataErr.DistinctYears)
}

func TestNormalize_NonDateColumnMappedToDateRole(t *testing.T) {
	// The quantity column mistakenly mapped to the date role: no cell
	// parses as a date, so fewer than two distinct date values appear.
	bad := schema.Mapping{}
	for role, col := range testMapping {
		bad[role] = col
	}
	bad[schema.RoleInvoiceDate] = "Quantity"

	tbl := testTable([][]string{
		{"100", "1/5/2010 8:26", "2", "5.0", "1", "UK"},
		{"101", "1/6/2011 9:00", "1", "5.0", "1", "UK"},
	})

	_, _, err := Normalize(context.Background(), tbl, bad)

	var schemaErr *errs.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, []string{"invoice_date"}, schemaErr.Roles)
}

// A real date column whose every cell holds the same instant is a data
// sufficiency problem, not a mis-mapped column.
func TestNormalize_SingleDistinctDateIsInsufficientNotSchemaError(t *testing.T) {
	tbl := testTable([][]string{
		{"100", "1/5/2010 8:26", "2", "5.0", "1", "UK"},
		{"101", "1/5/2010 8:26", "1", "5.0", "1", "UK"},
		{"102", "1/5/2010 8:26", "3", "2.0", "2", "France"},
	})

	_, _, err := Normalize(context.Background(), tbl, testMapping)

	var dataErr *errs.DataSufficiencyError
	require.ErrorAs(t, err, &dataErr)
	require.Equal(t, 1, dataErr.DistinctYears)
}

func TestNormalize_EmptyTableInsufficient(t *testing.T) {
	_, _, err := Normalize(context.Background(), testTable(nil), testMapping)

	var dataErr *errs.DataSufficiencyError
	require.ErrorAs(t, err, &dataErr)
	require.Equal(t, 0, dataErr.DistinctYears)
}

func TestNormalize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tbl := testTable([][]string{
		{"100", "1/5/2010 8:26", "2", "5.0", "1", "UK"},
	})

	_, _, err := Normalize(ctx, tbl, testMapping)

	var timeoutErr *errs.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, "normalize", timeoutErr.Stage)
}

func TestNormalize_MissingCustomerIDRetained(t *testing.T) {
	tbl := testTable([][]string{
		{"100", "1/5/2010 8:26", "2", "5.0", "", "UK"},
		{"101", "1/6/2011 9:00", "1", "5.0", "7", "UK"},
	})

	ds, _, err := Normalize(context.Background(), tbl, testMapping)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, "", ds.Records()[0].CustomerID)
	require.Equal(t, "7", ds.Records()[1].CustomerID)
}
