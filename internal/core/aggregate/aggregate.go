// Package aggregate computes the dashboard result groups from a filtered
// view in a single pass: headline KPIs, yearly trend, top countries by
// sales, monthly seasonality, and top countries by average order value.
package aggregate

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/salesboard-lab/salesboard/internal/core/filter"
)

// TopN caps the country rankings.
const TopN = 10

// KPIs are the four headline scalars.
type KPIs struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalCustomers int             `json:"total_customers"`
	TotalOrders    int             `json:"total_orders"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
}

type YearSales struct {
	Year       int             `json:"year"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type MonthSales struct {
	Month      int             `json:"month"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type CountrySales struct {
	Country    string          `json:"country"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type CountryAOV struct {
	Country       string          `json:"country"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// Result is the complete aggregate output for one filtered view. It is a
// value object: built fresh per computation, never mutated afterwards.
type Result struct {
	KPIs                        KPIs           `json:"kpis"`
	YearlyTrend                 []YearSales    `json:"yearly_trend"`
	TopCountriesBySales         []CountrySales `json:"top_countries_by_sales"`
	MonthlyPattern              []MonthSales   `json:"monthly_pattern"`
	TopCountriesByAvgOrderValue []CountryAOV   `json:"top_countries_by_avg_order_value"`
}

// Compute folds the view into all five result groups at once. Empty groups
// yield zero sums and zero means, never an error. Output is deterministic:
// trend and pattern sort by their natural key, rankings sort by value
// descending with ties kept in first-seen country order.
func Compute(v filter.View) Result {
	totalSales := decimal.Zero
	customers := make(map[string]struct{})
	invoiceSales := make(map[string]decimal.Decimal)
	yearSales := make(map[int]decimal.Decimal)
	monthSales := make(map[int]decimal.Decimal)

	countrySales := make(map[string]decimal.Decimal)
	countryInvoicedSales := make(map[string]decimal.Decimal)
	countryInvoices := make(map[string]map[string]struct{})
	countryOrder := make([]string, 0)

	for _, r := range v {
		totalSales = totalSales.Add(r.Sales)
		if r.CustomerID != "" {
			customers[r.CustomerID] = struct{}{}
		}
		if r.InvoiceID != "" {
			invoiceSales[r.InvoiceID] = invoiceSales[r.InvoiceID].Add(r.Sales)
		}

		year := r.InvoiceDate.Year()
		yearSales[year] = yearSales[year].Add(r.Sales)
		month := int(r.InvoiceDate.Month())
		monthSales[month] = monthSales[month].Add(r.Sales)

		if _, seen := countrySales[r.Country]; !seen {
			countryOrder = append(countryOrder, r.Country)
		}
		countrySales[r.Country] = countrySales[r.Country].Add(r.Sales)
		if r.InvoiceID != "" {
			countryInvoicedSales[r.Country] = countryInvoicedSales[r.Country].Add(r.Sales)
			inv := countryInvoices[r.Country]
			if inv == nil {
				inv = make(map[string]struct{})
				countryInvoices[r.Country] = inv
			}
			inv[r.InvoiceID] = struct{}{}
		}
	}

	return Result{
		KPIs: KPIs{
			TotalSales:     totalSales,
			TotalCustomers: len(customers),
			TotalOrders:    len(invoiceSales),
			AvgOrderValue:  meanOfSums(invoiceSales),
		},
		YearlyTrend:                 trendByKey(yearSales, func(y int, s decimal.Decimal) YearSales { return YearSales{Year: y, TotalSales: s} }),
		TopCountriesBySales:         topBySales(countryOrder, countrySales),
		MonthlyPattern:              trendByKey(monthSales, func(m int, s decimal.Decimal) MonthSales { return MonthSales{Month: m, TotalSales: s} }),
		TopCountriesByAvgOrderValue: topByAOV(countryOrder, countryInvoicedSales, countryInvoices),
	}
}

// meanOfSums is the two-level order-value reduction: sales summed per
// invoice first, then averaged across invoices. This is not the mean of
// per-line sales.
func meanOfSums(invoiceSales map[string]decimal.Decimal) decimal.Decimal {
	if len(invoiceSales) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, s := range invoiceSales {
		sum = sum.Add(s)
	}
	return sum.Div(decimal.NewFromInt(int64(len(invoiceSales))))
}

// trendByKey converts a key-to-sum map into a sequence sorted ascending by
// key, independent of row arrival order.
func trendByKey[T any](sums map[int]decimal.Decimal, mk func(int, decimal.Decimal) T) []T {
	keys := make([]int, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, mk(k, sums[k]))
	}
	return out
}

// topBySales ranks countries by total sales descending, ties broken by
// first-seen order, capped at TopN.
func topBySales(order []string, sums map[string]decimal.Decimal) []CountrySales {
	out := make([]CountrySales, 0, len(order))
	for _, c := range order {
		out = append(out, CountrySales{Country: c, TotalSales: sums[c]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSales.GreaterThan(out[j].TotalSales)
	})
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}

// topByAOV ranks countries by average order value descending; the average
// is the mean across that country's per-invoice sums. Lines without an
// invoice ID belong to no per-invoice sum and are excluded from both
// numerator and denominator. Ties break by first-seen order, capped at TopN.
func topByAOV(order []string, invoicedSums map[string]decimal.Decimal, invoices map[string]map[string]struct{}) []CountryAOV {
	out := make([]CountryAOV, 0, len(order))
	for _, c := range order {
		aov := decimal.Zero
		if n := len(invoices[c]); n > 0 {
			aov = invoicedSums[c].Div(decimal.NewFromInt(int64(n)))
		}
		out = append(out, CountryAOV{Country: c, AvgOrderValue: aov})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgOrderValue.GreaterThan(out[j].AvgOrderValue)
	})
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}
