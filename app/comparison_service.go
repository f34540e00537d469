package app

import (
	"context"
	"fmt"
	"strings"

	"modelrank/domain/core"
	"modelrank/domain/selection"
	"modelrank/internal"
	"modelrank/ports"
)

// ComparisonService builds, and optionally persists, model comparison tables
// from caller-supplied fit summaries.
type ComparisonService struct {
	repo   ports.ComparisonRepository // nil disables persistence
	logger *internal.Logger
}

// NewComparisonService creates a comparison service
func NewComparisonService(repo ports.ComparisonRepository, logger *internal.Logger) *ComparisonService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ComparisonService{repo: repo, logger: logger}
}

// CompareRequest defines the inputs for one comparison
type CompareRequest struct {
	Label      string
	Candidates []selection.Candidate
	Options    selection.Options
	// Persist stores the record when a repository is configured
	Persist bool
}

// Compare ranks the candidate set and returns the comparison record.
// The table is recomputed fresh on every call; persistence is an audit
// copy, never a cache.
func (s *ComparisonService) Compare(ctx context.Context, req CompareRequest) (*ports.ComparisonRecord, error) {
	table, err := selection.Rank(req.Candidates, req.Options)
	if err != nil {
		return nil, err
	}

	record := &ports.ComparisonRecord{
		ID:         core.ComparisonID(core.NewID()),
		Label:      labelOrDefault(req),
		Criterion:  table.Criterion,
		Candidates: req.Candidates,
		Table:      table,
		CreatedAt:  core.Now(),
	}

	for _, w := range table.Warnings {
		s.logger.Warn("comparison %s: [%s] %s", record.ID, w.Code, w.Message)
	}

	if req.Persist && s.repo != nil {
		if err := s.repo.Store(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to store comparison: %w", err)
		}
		s.logger.Info("stored comparison %s (%d candidates, best %s)",
			record.ID, len(req.Candidates), table.Best().Name)
	}

	return record, nil
}

// Get retrieves a stored comparison
func (s *ComparisonService) Get(ctx context.Context, id core.ComparisonID) (*ports.ComparisonRecord, error) {
	if s.repo == nil {
		return nil, core.NewNotFoundError("comparison", id.String())
	}
	return s.repo.Get(ctx, id)
}

// List returns recent stored comparisons
func (s *ComparisonService) List(ctx context.Context, limit int) ([]*ports.ComparisonRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.List(ctx, limit)
}

func labelOrDefault(req CompareRequest) string {
	if strings.TrimSpace(req.Label) != "" {
		return req.Label
	}
	names := make([]string, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		names = append(names, c.Label())
	}
	return strings.Join(names, " vs ")
}
