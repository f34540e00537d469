package postgres

import (
	"context"
	"os"
	"testing"

	"modelrank/domain/core"
	"modelrank/domain/selection"
	"modelrank/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to TEST_DATABASE_URL or skips. The comparisons table must
// exist (run cmd/migrate against the test database first).
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord(t *testing.T) *ports.ComparisonRecord {
	t.Helper()
	candidates := []selection.Candidate{
		{ID: core.ModelID(core.NewID()), Name: "full", LogLikelihood: -340.1, NumParameters: 6, NumObservations: 200},
		{ID: core.ModelID(core.NewID()), Name: "reduced", LogLikelihood: -338.4, NumParameters: 2, NumObservations: 200},
	}
	table, err := selection.Rank(candidates, selection.Options{Criterion: selection.CriterionAICc})
	require.NoError(t, err)

	return &ports.ComparisonRecord{
		ID:         core.ComparisonID(core.NewID()),
		Label:      "round trip",
		Criterion:  table.Criterion,
		Candidates: candidates,
		Table:      table,
		CreatedAt:  core.Now(),
	}
}

func TestComparisonRepository_RoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewComparisonRepository(db)
	ctx := context.Background()

	record := sampleRecord(t)
	require.NoError(t, repo.Store(ctx, record))
	t.Cleanup(func() { _ = repo.Delete(context.Background(), record.ID) })

	loaded, err := repo.Get(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, record.Label, loaded.Label)
	assert.Equal(t, record.Criterion, loaded.Criterion)
	assert.Equal(t, record.Table.Fingerprint, loaded.Table.Fingerprint)
	require.Len(t, loaded.Table.Rows, 2)
	assert.Equal(t, "reduced", loaded.Table.Best().Name)
	assert.Len(t, loaded.Candidates, 2)

	listed, err := repo.List(ctx, 10)
	require.NoError(t, err)
	found := false
	for _, r := range listed {
		if r.ID == record.ID {
			found = true
		}
	}
	assert.True(t, found, "stored comparison should appear in the listing")
}

func TestComparisonRepository_GetMissing(t *testing.T) {
	db := testDB(t)
	repo := NewComparisonRepository(db)

	_, err := repo.Get(context.Background(), core.ComparisonID(core.NewID()))
	assert.True(t, core.IsNotFoundError(err), "expected not-found error, got %v", err)
}

func TestComparisonRepository_Delete(t *testing.T) {
	db := testDB(t)
	repo := NewComparisonRepository(db)
	ctx := context.Background()

	record := sampleRecord(t)
	require.NoError(t, repo.Store(ctx, record))
	require.NoError(t, repo.Delete(ctx, record.ID))

	err := repo.Delete(ctx, record.ID)
	assert.True(t, core.IsNotFoundError(err), "deleting twice should report not found, got %v", err)
}
