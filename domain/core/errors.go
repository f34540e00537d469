package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrComparisonNotFound = fmt.Errorf("%w: comparison", ErrNotFound)
	ErrDatasetNotFound    = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrVariableNotFound   = fmt.Errorf("%w: variable", ErrNotFound)

	// Validation errors
	ErrInvalidCandidate = errors.New("invalid candidate model record")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrNonNumericColumn = errors.New("column resolved to non-numeric values")

	// Fitting errors
	ErrFitFailed       = errors.New("model fit failed")
	ErrSingularDesign  = errors.New("design matrix is singular")
	ErrFitNotConverged = errors.New("fit did not converge")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewFitError(model string, err error) error {
	return fmt.Errorf("%w for model %s: %v", ErrFitFailed, model, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsFitError(err error) bool {
	return errors.Is(err, ErrFitFailed) ||
		errors.Is(err, ErrSingularDesign) ||
		errors.Is(err, ErrFitNotConverged)
}
