package ports

import (
	"context"

	"modelrank/domain/core"
	"modelrank/domain/selection"
)

// ComparisonRecord is a persisted comparison: the candidate set, the options
// it was ranked under, and the derived table at the time it was stored. The
// table itself stays a pure function of the candidates; the record exists
// for audit and retrieval, not as a cache.
type ComparisonRecord struct {
	ID         core.ComparisonID     `json:"id"`
	Label      string                `json:"label"`
	Criterion  selection.Criterion   `json:"criterion"`
	Candidates []selection.Candidate `json:"candidates"`
	Table      *selection.Table      `json:"table"`
	CreatedAt  core.Timestamp        `json:"created_at"`
}

// ComparisonRepository persists comparison records
type ComparisonRepository interface {
	Store(ctx context.Context, record *ComparisonRecord) error
	Get(ctx context.Context, id core.ComparisonID) (*ComparisonRecord, error)
	List(ctx context.Context, limit int) ([]*ComparisonRecord, error)
	Delete(ctx context.Context, id core.ComparisonID) error
}
