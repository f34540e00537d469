package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"modelrank/domain/dataset"
	"modelrank/domain/selection"
	"modelrank/internal"
	"modelrank/ports"

	"golang.org/x/sync/errgroup"
)

// SweepService fits a family of candidate model specifications against one
// dataset and ranks the results. Fitting is the expensive step, so candidates
// run concurrently; ranking stays a single pure pass over the summaries.
type SweepService struct {
	comparisons *ComparisonService
	workers     int
	logger      *internal.Logger
}

// NewSweepService creates a sweep service with a concurrency limit
func NewSweepService(comparisons *ComparisonService, workers int, logger *internal.Logger) *SweepService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SweepService{comparisons: comparisons, workers: workers, logger: logger}
}

// SweepRequest defines the inputs for a candidate-family sweep
type SweepRequest struct {
	Label   string
	Frame   *dataset.Frame
	Fitters []ports.ModelFitter
	Options selection.Options
	Persist bool
}

// FitFailure records a candidate whose fit did not produce a usable summary
type FitFailure struct {
	Spec  string `json:"spec"`
	Error string `json:"error"`
}

// SweepResult is the outcome of a sweep: the comparison over the candidates
// that fit, and the list of candidates that failed to fit.
type SweepResult struct {
	Comparison  *ports.ComparisonRecord `json:"comparison"`
	FitFailures []FitFailure            `json:"fit_failures,omitempty"`
	RuntimeMs   int64                   `json:"runtime_ms"`
}

// RunSweep fits every candidate concurrently, then ranks the summaries.
// A failed fit does not abort the sweep; it is reported alongside the
// ranking. A sweep where nothing fits is an error.
func (s *SweepService) RunSweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	if req.Frame == nil {
		return nil, fmt.Errorf("sweep requires a dataset frame")
	}
	if len(req.Fitters) == 0 {
		return nil, selection.ErrEmptyCandidateSet
	}

	start := time.Now()

	fitted := make([]ports.FittedModel, len(req.Fitters))
	failures := make([]FitFailure, 0)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, fitter := range req.Fitters {
		g.Go(func() error {
			model, err := fitter.Fit(gctx, req.Frame)
			if err != nil {
				s.logger.Warn("sweep fit failed for %s: %v", fitter.Spec(), err)
				mu.Lock()
				failures = append(failures, FitFailure{Spec: fitter.Spec(), Error: err.Error()})
				mu.Unlock()
				return nil
			}
			fitted[i] = model
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Summaries keep fitter declaration order so criterion ties rank stably
	candidates := make([]selection.Candidate, 0, len(fitted))
	for _, model := range fitted {
		if model != nil {
			candidates = append(candidates, ports.Summarize(model))
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate fit succeeded", selection.ErrEmptyCandidateSet)
	}

	record, err := s.comparisons.Compare(ctx, CompareRequest{
		Label:      req.Label,
		Candidates: candidates,
		Options:    req.Options,
		Persist:    req.Persist,
	})
	if err != nil {
		return nil, err
	}

	runtime := time.Since(start).Milliseconds()
	s.logger.Info("sweep %q ranked %d/%d candidates in %dms, best %s",
		record.Label, len(candidates), len(req.Fitters), runtime, record.Table.Best().Name)

	return &SweepResult{
		Comparison:  record,
		FitFailures: failures,
		RuntimeMs:   runtime,
	}, nil
}
