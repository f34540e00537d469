package selection

import (
	"math"
)

// AIC computes the Akaike Information Criterion: -2*ll + 2k.
// Lower values indicate better support.
func AIC(logLikelihood float64, numParameters int) float64 {
	return -2*logLikelihood + 2*float64(numParameters)
}

// AICc computes the small-sample-corrected AIC:
//
//	AICc = AIC + 2k(k+1) / (n - k - 1)
//
// The correction is undefined when n - k - 1 <= 0 (too many parameters
// relative to sample size); that case is a domain error, not a value.
func AICc(logLikelihood float64, numParameters, numObservations int) (float64, error) {
	k := numParameters
	n := numObservations
	if n-k-1 <= 0 {
		return 0, NewUndefinedCorrectionError("", n, k)
	}
	correction := (2 * float64(k) * float64(k+1)) / float64(n-k-1)
	return AIC(logLikelihood, k) + correction, nil
}

// BIC computes the Bayesian (Schwarz) Information Criterion: -2*ll + k*ln(n)
func BIC(logLikelihood float64, numParameters, numObservations int) (float64, error) {
	if numObservations < 1 {
		return 0, NewCandidateError("", "BIC requires num_observations >= 1")
	}
	return -2*logLikelihood + float64(numParameters)*math.Log(float64(numObservations)), nil
}

// ComputeRow scores one candidate under the given criterion.
// The candidate is validated first; the row carries the criterion it was
// computed with so downstream ranking can reject mixed-criterion sets.
func ComputeRow(c Candidate, criterion Criterion) (CriterionRow, error) {
	if err := c.Validate(); err != nil {
		return CriterionRow{}, err
	}

	var value float64
	switch criterion {
	case CriterionAIC, "":
		criterion = CriterionAIC
		value = AIC(c.LogLikelihood, c.NumParameters)
	case CriterionAICc:
		v, err := AICc(c.LogLikelihood, c.NumParameters, c.NumObservations)
		if err != nil {
			return CriterionRow{}, NewUndefinedCorrectionError(c.Label(), c.NumObservations, c.NumParameters)
		}
		value = v
	case CriterionBIC:
		v, err := BIC(c.LogLikelihood, c.NumParameters, c.NumObservations)
		if err != nil {
			return CriterionRow{}, err
		}
		value = v
	default:
		return CriterionRow{}, NewCandidateError(c.Label(), "unknown criterion "+string(criterion))
	}

	return CriterionRow{
		ModelID:         c.ID,
		Name:            c.Name,
		LogLikelihood:   c.LogLikelihood,
		NumParameters:   c.NumParameters,
		NumObservations: c.NumObservations,
		Criterion:       criterion,
		Value:           value,
	}, nil
}
