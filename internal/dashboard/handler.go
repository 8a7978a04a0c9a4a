package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salesboard-lab/salesboard/internal/core/errs"
	"github.com/salesboard-lab/salesboard/internal/core/filter"
)

// filterRequest is the POST body shape for summary queries. Pointer fields
// distinguish "absent" (fall back to the dataset default) from "empty".
type filterRequest struct {
	Countries *[]string `json:"countries"`
	YearMin   *int      `json:"year_min"`
	YearMax   *int      `json:"year_max"`
	Months    *[]int    `json:"months"`
}

// RegisterRoutes attaches the dashboard API to the gin engine.
func (s *Service) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.GET("/summary", s.handleSummaryQuery)
	api.POST("/summary", s.handleSummaryBody)
	api.GET("/dataset", s.handleDatasetMeta)
}

// handleSummaryQuery serves GET /api/v1/summary. Absent query params fall
// back per field to the default spec.
func (s *Service) handleSummaryQuery(c *gin.Context) {
	spec := s.DefaultSpec()

	if vals, ok := c.GetQueryArray("countries"); ok {
		spec.Countries = splitList(vals)
	}
	if raw, ok := c.GetQuery("year_min"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalidFilter(c, "year_min must be an integer")
			return
		}
		spec.YearMin = n
	}
	if raw, ok := c.GetQuery("year_max"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalidFilter(c, "year_max must be an integer")
			return
		}
		spec.YearMax = n
	}
	if vals, ok := c.GetQueryArray("months"); ok {
		// An empty months param means "unset": months is optional and an
		// explicit empty month set is not a meaningful filter.
		parts := splitList(vals)
		if len(parts) > 0 {
			months := make([]int, 0, len(parts))
			for _, raw := range parts {
				n, err := strconv.Atoi(raw)
				if err != nil {
					writeInvalidFilter(c, "months must be integers")
					return
				}
				months = append(months, n)
			}
			spec.Months = months
		}
	}

	s.respondSummary(c, spec)
}

// handleSummaryBody serves POST /api/v1/summary with a FilterSpec JSON body.
func (s *Service) handleSummaryBody(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidFilter(c, "invalid JSON body")
		return
	}

	spec := s.DefaultSpec()
	if req.Countries != nil {
		spec.Countries = *req.Countries
	}
	if req.YearMin != nil {
		spec.YearMin = *req.YearMin
	}
	if req.YearMax != nil {
		spec.YearMax = *req.YearMax
	}
	if req.Months != nil {
		spec.Months = *req.Months
	}

	s.respondSummary(c, spec)
}

func (s *Service) respondSummary(c *gin.Context, spec filter.Spec) {
	result, err := s.Query(c.Request.Context(), spec)
	if err != nil {
		if errors.Is(err, ErrInvalidFilter) {
			writeInvalidFilter(c, err.Error())
			return
		}
		var timeoutErr *errs.TimeoutError
		if errors.As(err, &timeoutErr) {
			c.JSON(http.StatusServiceUnavailable, errs.ResponseFor(err))
			return
		}
		slog.Error("summary query failed", "error", err)
		c.JSON(http.StatusInternalServerError, errs.ErrorResponse{
			ErrorType: errs.HttpInternalError,
			Message:   "failed to compute summary",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleDatasetMeta serves GET /api/v1/dataset: the metadata a client needs
// to build its own filter controls.
func (s *Service) handleDatasetMeta(c *gin.Context) {
	sorted := s.ds.SortedCountries()

	defaults := sorted
	if s.DefaultCountryLimit > 0 && len(defaults) > s.DefaultCountryLimit {
		defaults = defaults[:s.DefaultCountryLimit]
	}

	yearMin, yearMax := s.ds.YearSpan()
	c.JSON(http.StatusOK, gin.H{
		"countries":         sorted,
		"default_countries": defaults,
		"year_min":          yearMin,
		"year_max":          yearMax,
		"records":           s.ds.Len(),
		"rows_in":           s.report.RowsIn,
		"rows_dropped":      s.report.RowsDropped,
	})
}

func writeInvalidFilter(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errs.ErrorResponse{
		ErrorType: errs.HttpInvalidFilter,
		Message:   msg,
	})
}

// splitList flattens repeated query params and comma-separated values into
// one list, dropping empties.
func splitList(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
