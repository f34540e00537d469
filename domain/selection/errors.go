package selection

import (
	"errors"
	"fmt"
)

// Domain errors for model comparison
var (
	// ErrEmptyCandidateSet is returned when there is nothing to rank.
	ErrEmptyCandidateSet = errors.New("empty candidate set")
	// ErrMixedCriterion is returned when rows computed under different
	// criteria are ranked together. AIC and AICc values are not comparable.
	ErrMixedCriterion = errors.New("mixed criteria in one comparison")
	// ErrCriterionUndefined is returned when the correction term is
	// mathematically undefined (n - k - 1 <= 0).
	ErrCriterionUndefined = errors.New("criterion undefined")
	// ErrDatasetMismatch is returned when candidates report different
	// observation counts. Criterion values are only comparable across models
	// fit to the identical observation set.
	ErrDatasetMismatch = errors.New("candidates fit to different observation sets")
	// ErrNonFiniteLogLikelihood is returned under FailOnNonFinite when a
	// candidate's log-likelihood is NaN or infinite.
	ErrNonFiniteLogLikelihood = errors.New("non-finite log-likelihood")
	// ErrInvalidCandidate is returned when a candidate record violates its
	// structural invariants.
	ErrInvalidCandidate = errors.New("invalid candidate")
	// ErrInvalidConfidenceLevel is returned for confidence-set levels
	// outside (0, 1].
	ErrInvalidConfidenceLevel = errors.New("confidence level must be in (0, 1]")
)

// Error constructors with context

func NewCandidateError(label string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidCandidate, label, reason)
}

func NewUndefinedCorrectionError(label string, n, k int) error {
	return fmt.Errorf("%w: AICc correction for %q has n-k-1 = %d (n=%d, k=%d)",
		ErrCriterionUndefined, label, n-k-1, n, k)
}

func NewMixedCriterionError(want, got Criterion) error {
	return fmt.Errorf("%w: expected %s, found %s", ErrMixedCriterion, want, got)
}

func NewDatasetMismatchError(label string, want, got int) error {
	return fmt.Errorf("%w: %q has n=%d, expected n=%d", ErrDatasetMismatch, label, got, want)
}

func NewNonFiniteError(label string, ll float64) error {
	return fmt.Errorf("%w for %q: %v", ErrNonFiniteLogLikelihood, label, ll)
}

// Error checking helpers

func IsDomainError(err error) bool {
	return errors.Is(err, ErrCriterionUndefined)
}

func IsComparisonError(err error) bool {
	return errors.Is(err, ErrEmptyCandidateSet) ||
		errors.Is(err, ErrMixedCriterion) ||
		errors.Is(err, ErrDatasetMismatch) ||
		errors.Is(err, ErrNonFiniteLogLikelihood)
}
