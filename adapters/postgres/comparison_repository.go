package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modelrank/domain/core"
	"modelrank/domain/selection"
	apperrors "modelrank/internal/errors"
	"modelrank/ports"

	"github.com/jmoiron/sqlx"
)

// ComparisonRepositoryImpl implements ports.ComparisonRepository for PostgreSQL
type ComparisonRepositoryImpl struct {
	db *sqlx.DB
}

// NewComparisonRepository creates a new PostgreSQL comparison repository
func NewComparisonRepository(db *sqlx.DB) ports.ComparisonRepository {
	return &ComparisonRepositoryImpl{db: db}
}

// comparisonRow is the flat row shape; candidate set and table travel as JSONB
type comparisonRow struct {
	ID         string    `db:"id"`
	Label      string    `db:"label"`
	Criterion  string    `db:"criterion"`
	Candidates []byte    `db:"candidates"`
	TableJSON  []byte    `db:"table_json"`
	CreatedAt  time.Time `db:"created_at"`
}

// Store persists a comparison record
func (r *ComparisonRepositoryImpl) Store(ctx context.Context, record *ports.ComparisonRecord) error {
	candidates, err := json.Marshal(record.Candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	tableJSON, err := json.Marshal(record.Table)
	if err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO comparisons (id, label, criterion, candidates, table_json, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID.String(), record.Label, string(record.Criterion), candidates, tableJSON,
		record.Table.Fingerprint.String(), record.CreatedAt.Time())

	return apperrors.Wrapf(err, "failed to store comparison %s", record.ID)
}

// Get retrieves a comparison record by ID
func (r *ComparisonRepositoryImpl) Get(ctx context.Context, id core.ComparisonID) (*ports.ComparisonRecord, error) {
	var row comparisonRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, label, criterion, candidates, table_json, created_at
		FROM comparisons
		WHERE id = $1
	`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("comparison", id.String())
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to load comparison %s", id)
	}

	return row.toRecord()
}

// List returns the most recent comparison records
func (r *ComparisonRepositoryImpl) List(ctx context.Context, limit int) ([]*ports.ComparisonRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []comparisonRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, label, criterion, candidates, table_json, created_at
		FROM comparisons
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list comparisons")
	}

	records := make([]*ports.ComparisonRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes a comparison record
func (r *ComparisonRepositoryImpl) Delete(ctx context.Context, id core.ComparisonID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comparisons WHERE id = $1`, id.String())
	if err != nil {
		return apperrors.Wrapf(err, "failed to delete comparison %s", id)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return core.NewNotFoundError("comparison", id.String())
	}
	return nil
}

func (row comparisonRow) toRecord() (*ports.ComparisonRecord, error) {
	record := &ports.ComparisonRecord{
		ID:        core.ComparisonID(row.ID),
		Label:     row.Label,
		Criterion: selection.Criterion(row.Criterion),
		CreatedAt: core.NewTimestamp(row.CreatedAt),
	}
	if err := json.Unmarshal(row.Candidates, &record.Candidates); err != nil {
		return nil, fmt.Errorf("unmarshal candidates: %w", err)
	}
	if err := json.Unmarshal(row.TableJSON, &record.Table); err != nil {
		return nil, fmt.Errorf("unmarshal table: %w", err)
	}
	return record, nil
}
