// Package filter applies a declarative record filter to a dataset,
// producing the view the aggregator consumes.
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/salesboard-lab/salesboard/internal/core/dataset"
)

// Spec describes which records to include in an aggregation pass.
// Countries is a membership set: an empty set matches no record. Months is
// optional; nil means every month matches.
type Spec struct {
	Countries []string `json:"countries"`
	YearMin   int      `json:"year_min"`
	YearMax   int      `json:"year_max"`
	Months    []int    `json:"months,omitempty"`
}

// Validate checks spec consistency. An empty country set is valid (it
// selects nothing).
func (s Spec) Validate() error {
	if s.YearMin > s.YearMax {
		return fmt.Errorf("year_min %d exceeds year_max %d", s.YearMin, s.YearMax)
	}
	for _, m := range s.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("month %d out of range 1..12", m)
		}
	}
	return nil
}

// Key returns a canonical string form of the spec, independent of the order
// countries and months were supplied in. Used to dedupe identical queries.
func (s Spec) Key() string {
	countries := slices.Clone(s.Countries)
	slices.Sort(countries)
	months := slices.Clone(s.Months)
	slices.Sort(months)

	var b strings.Builder
	b.WriteString(strings.Join(countries, "\x1f"))
	b.WriteString("|")
	b.WriteString(strconv.Itoa(s.YearMin))
	b.WriteString("-")
	b.WriteString(strconv.Itoa(s.YearMax))
	b.WriteString("|")
	if s.Months == nil {
		b.WriteString("*")
	} else {
		for i, m := range months {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(strconv.Itoa(m))
		}
	}
	return b.String()
}

// View is the subsequence of dataset records satisfying a Spec, in dataset
// order. It is rebuilt on every filter change and never mutated in place.
type View []dataset.Record

// Apply evaluates the spec against every record. An empty result is valid
// and propagates as an empty View, never as a failure.
func Apply(ds *dataset.Dataset, spec Spec) View {
	countries := make(map[string]struct{}, len(spec.Countries))
	for _, c := range spec.Countries {
		countries[c] = struct{}{}
	}
	var months map[int]struct{}
	if spec.Months != nil {
		months = make(map[int]struct{}, len(spec.Months))
		for _, m := range spec.Months {
			months[m] = struct{}{}
		}
	}

	view := make(View, 0)
	for _, r := range ds.Records() {
		if _, ok := countries[r.Country]; !ok {
			continue
		}
		year := r.InvoiceDate.Year()
		if year < spec.YearMin || year > spec.YearMax {
			continue
		}
		if months != nil {
			if _, ok := months[int(r.InvoiceDate.Month())]; !ok {
				continue
			}
		}
		view = append(view, r)
	}
	return view
}

// Default is the spec used when the caller supplies none: every country
// present, the full year span, all months.
func Default(ds *dataset.Dataset) Spec {
	minYear, maxYear := ds.YearSpan()
	return Spec{
		Countries: ds.Countries(),
		YearMin:   minYear,
		YearMax:   maxYear,
	}
}
