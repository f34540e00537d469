package ports

import (
	"context"

	"modelrank/domain/core"
	"modelrank/domain/dataset"
	"modelrank/domain/selection"
)

// FittedModel is the minimal extraction interface the ranking engine needs
// from any fitting backend. It deliberately exposes nothing about the
// backend's model object beyond the comparison triple.
type FittedModel interface {
	// Name returns the human-facing model label (usually its formula).
	Name() string
	// LogLikelihood returns the maximized log-likelihood of the fit.
	LogLikelihood() float64
	// NumParameters returns the count of free parameters, including any
	// estimated dispersion.
	NumParameters() int
	// NumObservations returns the number of rows the model was fit to.
	NumObservations() int
}

// Summarize converts any fitted model into an immutable candidate record
func Summarize(m FittedModel) selection.Candidate {
	return selection.Candidate{
		ID:              core.ModelID(core.NewID()),
		Name:            m.Name(),
		LogLikelihood:   m.LogLikelihood(),
		NumParameters:   m.NumParameters(),
		NumObservations: m.NumObservations(),
	}
}

// ModelFitter fits one candidate specification against a dataset frame
type ModelFitter interface {
	// Fit estimates the model on the frame's complete cases for the columns
	// it uses. Implementations must not mutate the frame.
	Fit(ctx context.Context, frame *dataset.Frame) (FittedModel, error)
	// Spec returns the candidate specification label (e.g. "richness ~ rainfall + grazing").
	Spec() string
}
