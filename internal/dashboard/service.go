// Package dashboard is the query layer: it turns a filter spec into the
// aggregate result set over the loaded dataset and serves both over HTTP.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/salesboard-lab/salesboard/internal/core/aggregate"
	"github.com/salesboard-lab/salesboard/internal/core/dataset"
	"github.com/salesboard-lab/salesboard/internal/core/errs"
	"github.com/salesboard-lab/salesboard/internal/core/filter"
)

// ErrInvalidFilter marks request validation errors that should return HTTP 400.
var ErrInvalidFilter = errors.New("invalid filter")

// Service serves filter/aggregate queries over one immutable dataset.
// The dataset is read-only and shared across requests without locking;
// only the per-request spec, view and result are request-local.
type Service struct {
	ds     *dataset.Dataset
	report dataset.Report

	// queryGroup dedupes concurrent identical queries (same canonical spec)
	// so simultaneous dashboard sessions share one aggregation pass.
	queryGroup singleflight.Group

	// DefaultCountryLimit is surfaced in dataset metadata as a hint for UI
	// clients that want a bounded default country selection.
	DefaultCountryLimit int
}

// NewService creates the query service over a normalized dataset.
func NewService(ds *dataset.Dataset, report dataset.Report) *Service {
	return &Service{ds: ds, report: report}
}

// Query validates the spec, filters the dataset and computes the aggregate
// result. An empty filtered view yields zeroed KPIs and empty sequences,
// not an error.
func (s *Service) Query(ctx context.Context, spec filter.Spec) (*aggregate.Result, error) {
	if ctx.Err() != nil {
		return nil, &errs.TimeoutError{Stage: "query"}
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	res, err, _ := s.queryGroup.Do(spec.Key(), func() (interface{}, error) {
		result := aggregate.Compute(filter.Apply(s.ds, spec))
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*aggregate.Result), nil
}

// DefaultSpec returns the spec used when a request supplies no filter:
// every country, the full year span, all months.
func (s *Service) DefaultSpec() filter.Spec {
	return filter.Default(s.ds)
}

// Records reports the retained record count; used by the health endpoint.
func (s *Service) Records() int {
	return s.ds.Len()
}
