package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/salesboard-lab/salesboard/internal/core/dataset"
	"github.com/salesboard-lab/salesboard/internal/core/filter"
)

func rec(country string, year int, month time.Month, qty, price, customer, invoice string) dataset.Record {
	q := decimal.RequireFromString(qty)
	p := decimal.RequireFromString(price)
	return dataset.Record{
		Country:     country,
		InvoiceDate: time.Date(year, month, 5, 8, 26, 0, 0, time.UTC),
		Quantity:    q,
		UnitPrice:   p,
		Sales:       q.Mul(p),
		CustomerID:  customer,
		InvoiceID:   invoice,
	}
}

func testService() *Service {
	records := []dataset.Record{
		rec("UK", 2010, time.January, "2", "5.0", "1", "100"),
		rec("UK", 2010, time.January, "1", "5.0", "1", "100"),
		rec("France", 2011, time.June, "4", "2.5", "2", "200"),
	}
	return NewService(
		dataset.New(records),
		dataset.Report{RowsIn: 4, RowsDropped: 1, Retained: 3},
	)
}

func TestService_Query(t *testing.T) {
	svc := testService()

	res, err := svc.Query(context.Background(), svc.DefaultSpec())
	require.NoError(t, err)

	require.True(t, res.KPIs.TotalSales.Equal(decimal.RequireFromString("25")))
	require.Equal(t, 2, res.KPIs.TotalOrders)
	require.Equal(t, 2, res.KPIs.TotalCustomers)
}

func TestService_QueryInvalidSpec(t *testing.T) {
	svc := testService()

	_, err := svc.Query(context.Background(), filter.Spec{YearMin: 2012, YearMax: 2010})
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestService_QueryEmptyResultIsNotAnError(t *testing.T) {
	svc := testService()

	res, err := svc.Query(context.Background(), filter.Spec{
		Countries: []string{"Atlantis"},
		YearMin:   2010,
		YearMax:   2011,
	})
	require.NoError(t, err)
	require.True(t, res.KPIs.TotalSales.IsZero())
	require.Equal(t, 0, res.KPIs.TotalOrders)
	require.Empty(t, res.YearlyTrend)
}

func TestService_QueryDeterministic(t *testing.T) {
	svc := testService()
	spec := svc.DefaultSpec()

	first, err := svc.Query(context.Background(), spec)
	require.NoError(t, err)
	second, err := svc.Query(context.Background(), spec)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestService_DefaultSpec(t *testing.T) {
	svc := testService()
	spec := svc.DefaultSpec()

	require.Equal(t, []string{"UK", "France"}, spec.Countries)
	require.Equal(t, 2010, spec.YearMin)
	require.Equal(t, 2011, spec.YearMax)
	require.Nil(t, spec.Months)
}
