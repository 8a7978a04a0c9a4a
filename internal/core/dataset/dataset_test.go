package dataset

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyDataset(t *testing.T) {
	ds := New(nil)

	require.Equal(t, 0, ds.Len())
	require.Empty(t, ds.Countries())
	minYear, maxYear := ds.YearSpan()
	require.Equal(t, 0, minYear)
	require.Equal(t, 0, maxYear)
}

func TestNew_DerivesMetadata(t *testing.T) {
	one := decimal.NewFromInt(1)
	mk := func(country string, year int) Record {
		return Record{
			Country:     country,
			InvoiceDate: time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC),
			Quantity:    one,
			UnitPrice:   one,
			Sales:       one,
			InvoiceID:   "1",
		}
	}

	ds := New([]Record{
		mk("UK", 2012),
		mk("France", 2010),
		mk("UK", 2011),
	})

	require.Equal(t, 3, ds.Len())
	require.Equal(t, []string{"UK", "France"}, ds.Countries())
	require.Equal(t, []string{"France", "UK"}, ds.SortedCountries())

	minYear, maxYear := ds.YearSpan()
	require.Equal(t, 2010, minYear)
	require.Equal(t, 2012, maxYear)
}

func TestTable_ColumnIndex(t *testing.T) {
	tbl := Table{Columns: []string{"A", "B", "C"}}

	require.Equal(t, 1, tbl.ColumnIndex("B"))
	require.Equal(t, -1, tbl.ColumnIndex("Z"))
}
