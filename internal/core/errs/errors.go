package errs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error type identifiers used in HTTP error responses.
const (
	HttpInternalError    = "internal_error"
	HttpInvalidFilter    = "invalid_filter"
	HttpSchemaError      = "schema_error"
	HttpInsufficientData = "insufficient_data"
	HttpDatasetNotReady  = "dataset_not_ready"
	HttpTimeout          = "timeout"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// Detailer surfaces structured error details for API error responses.
// Implemented by the fatal pipeline errors so consumers extract details
// without type-asserting against concrete structs.
type Detailer interface {
	Details() map[string]interface{}
}

// SchemaError reports a column-role resolution or role-validation failure.
// It is fatal to the pipeline run: the caller must halt rather than
// continue with a misresolved table.
type SchemaError struct {
	// Roles lists the semantic roles that could not be resolved or validated,
	// in canonical role order.
	Roles  []string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema error for role(s) %s: %s", strings.Join(e.Roles, ", "), e.Reason)
	}
	return fmt.Sprintf("missing required role(s): %s", strings.Join(e.Roles, ", "))
}

func (e *SchemaError) Details() map[string]interface{} {
	return map[string]interface{}{"roles": e.Roles}
}

// DataSufficiencyError reports that the cleaned dataset does not span enough
// distinct calendar years for year-range filtering to be meaningful.
type DataSufficiencyError struct {
	DistinctYears int
}

func (e *DataSufficiencyError) Error() string {
	return fmt.Sprintf("dataset spans %d distinct year(s), need at least 2", e.DistinctYears)
}

func (e *DataSufficiencyError) Details() map[string]interface{} {
	return map[string]interface{}{"distinct_years": e.DistinctYears}
}

// TimeoutError reports that a pipeline stage exceeded its wall-clock budget.
type TimeoutError struct {
	Stage  string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Budget > 0 {
		return fmt.Sprintf("stage %q exceeded its %s budget", e.Stage, e.Budget)
	}
	return fmt.Sprintf("stage %q cancelled", e.Stage)
}

func (e *TimeoutError) Details() map[string]interface{} {
	return map[string]interface{}{"stage": e.Stage}
}

// ResponseFor maps a pipeline error to its HTTP error response body,
// classifying by error type and extracting structured details when the
// error provides them. Unrecognized errors map to internal_error.
func ResponseFor(err error) ErrorResponse {
	resp := ErrorResponse{
		ErrorType: HttpInternalError,
		Message:   err.Error(),
	}

	var schemaErr *SchemaError
	var dataErr *DataSufficiencyError
	var timeoutErr *TimeoutError
	switch {
	case errors.As(err, &schemaErr):
		resp.ErrorType = HttpSchemaError
	case errors.As(err, &dataErr):
		resp.ErrorType = HttpInsufficientData
	case errors.As(err, &timeoutErr):
		resp.ErrorType = HttpTimeout
	}

	var det Detailer
	if errors.As(err, &det) {
		resp.Details = det.Details()
	}
	return resp
}
