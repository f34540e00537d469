package app

import (
	"context"
	"testing"

	"modelrank/domain/core"
	"modelrank/domain/selection"
	"modelrank/internal/testkit"
	"modelrank/ports"

	"modelrank/adapters/fit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository is an in-memory ports.ComparisonRepository for tests
type memoryRepository struct {
	records map[core.ComparisonID]*ports.ComparisonRecord
	order   []core.ComparisonID
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[core.ComparisonID]*ports.ComparisonRecord)}
}

func (r *memoryRepository) Store(_ context.Context, record *ports.ComparisonRecord) error {
	r.records[record.ID] = record
	r.order = append(r.order, record.ID)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id core.ComparisonID) (*ports.ComparisonRecord, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, core.NewNotFoundError("comparison", id.String())
	}
	return record, nil
}

func (r *memoryRepository) List(_ context.Context, limit int) ([]*ports.ComparisonRecord, error) {
	out := make([]*ports.ComparisonRecord, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[r.order[i]])
	}
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, id core.ComparisonID) error {
	delete(r.records, id)
	return nil
}

func testCandidates() []selection.Candidate {
	return []selection.Candidate{
		{Name: "full", LogLikelihood: -340.1, NumParameters: 6, NumObservations: 200},
		{Name: "reduced", LogLikelihood: -338.4, NumParameters: 2, NumObservations: 200},
	}
}

func TestComparisonService_CompareAndPersist(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewComparisonService(repo, nil)
	ctx := context.Background()

	record, err := svc.Compare(ctx, CompareRequest{
		Label:      "grassland models",
		Candidates: testCandidates(),
		Options:    selection.Options{Criterion: selection.CriterionAIC},
		Persist:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, record.Table)

	assert.Equal(t, "reduced", record.Table.Best().Name)
	assert.False(t, record.ID.String() == "")
	assert.Equal(t, selection.CriterionAIC, record.Criterion)

	stored, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Table.Fingerprint, stored.Table.Fingerprint)

	listed, err := svc.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestComparisonService_NoPersistenceWithoutFlag(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewComparisonService(repo, nil)

	_, err := svc.Compare(context.Background(), CompareRequest{
		Candidates: testCandidates(),
	})
	require.NoError(t, err)
	assert.Empty(t, repo.records)
}

func TestComparisonService_DefaultLabel(t *testing.T) {
	svc := NewComparisonService(nil, nil)

	record, err := svc.Compare(context.Background(), CompareRequest{
		Candidates: testCandidates(),
	})
	require.NoError(t, err)
	assert.Equal(t, "full vs reduced", record.Label)
}

func TestComparisonService_PropagatesRankingErrors(t *testing.T) {
	svc := NewComparisonService(nil, nil)

	_, err := svc.Compare(context.Background(), CompareRequest{})
	assert.ErrorIs(t, err, selection.ErrEmptyCandidateSet)

	mismatch := []selection.Candidate{
		{Name: "a", LogLikelihood: -10, NumParameters: 1, NumObservations: 100},
		{Name: "b", LogLikelihood: -10, NumParameters: 1, NumObservations: 90},
	}
	_, err = svc.Compare(context.Background(), CompareRequest{Candidates: mismatch})
	assert.ErrorIs(t, err, selection.ErrDatasetMismatch)
}

func TestSweepService_RanksCandidateFamily(t *testing.T) {
	frame := testkit.NewGenerator(11).GrasslandSurvey(150)
	svc := NewSweepService(NewComparisonService(newMemoryRepository(), nil), 4, nil)

	result, err := svc.RunSweep(context.Background(), SweepRequest{
		Label: "biomass models",
		Frame: frame,
		Fitters: []ports.ModelFitter{
			fit.NewOLS("biomass"),
			fit.NewOLS("biomass", "rainfall"),
			fit.NewOLS("biomass", "rainfall", "grazing"),
			fit.NewOLS("biomass", "soil_n"),
		},
		Options: selection.Options{Criterion: selection.CriterionAICc},
		Persist: true,
	})
	require.NoError(t, err)
	require.Len(t, result.Comparison.Table.Rows, 4)
	assert.Empty(t, result.FitFailures)

	// biomass is generated from rainfall and grazing; that model must win
	assert.Equal(t, "biomass ~ rainfall + grazing", result.Comparison.Table.Best().Name)
	assert.Greater(t, result.Comparison.Table.Best().Weight, 0.5)
}

func TestSweepService_ReportsFitFailures(t *testing.T) {
	frame := testkit.NewGenerator(3).GrasslandSurvey(100)
	svc := NewSweepService(NewComparisonService(nil, nil), 2, nil)

	result, err := svc.RunSweep(context.Background(), SweepRequest{
		Frame: frame,
		Fitters: []ports.ModelFitter{
			fit.NewOLS("biomass", "rainfall"),
			fit.NewOLS("biomass", "no_such_column"),
		},
		Options: selection.Options{},
	})
	require.NoError(t, err)
	assert.Len(t, result.Comparison.Table.Rows, 1)
	require.Len(t, result.FitFailures, 1)
	assert.Equal(t, "biomass ~ no_such_column", result.FitFailures[0].Spec)
}

func TestSweepService_EmptyFamily(t *testing.T) {
	svc := NewSweepService(NewComparisonService(nil, nil), 2, nil)
	frame := testkit.NewGenerator(5).GrasslandSurvey(20)

	_, err := svc.RunSweep(context.Background(), SweepRequest{Frame: frame})
	assert.ErrorIs(t, err, selection.ErrEmptyCandidateSet)
}
