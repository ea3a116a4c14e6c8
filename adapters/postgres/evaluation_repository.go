// Package postgres persists finished evaluations.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"perfeval/domain/core"
	"perfeval/domain/perf"
	"perfeval/ports"
)

// Schema is the evaluations table definition.
const Schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id         TEXT PRIMARY KEY,
	x_measure  TEXT NOT NULL,
	y_measure  TEXT NOT NULL,
	num_runs   INTEGER NOT NULL,
	curves     JSONB NOT NULL,
	averaged   JSONB,
	created_at TIMESTAMPTZ NOT NULL
)`

// evaluationRepository implements the EvaluationRepository interface.
type evaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(db *sqlx.DB) ports.EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Save inserts an evaluation record.
func (r *evaluationRepository) Save(ctx context.Context, rec *ports.EvaluationRecord) error {
	curvesJSON, err := json.Marshal(rec.Curves)
	if err != nil {
		return core.DatabaseError("failed to marshal curves", err)
	}
	var averagedJSON []byte
	if rec.Averaged != nil {
		if averagedJSON, err = json.Marshal(rec.Averaged); err != nil {
			return core.DatabaseError("failed to marshal averaged curve", err)
		}
	}

	query := `INSERT INTO evaluations (
		id, x_measure, y_measure, num_runs, curves, averaged, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID.String(), rec.XMeasure, rec.YMeasure, rec.NumRuns,
		curvesJSON, nullableJSON(averagedJSON), rec.CreatedAt,
	)
	if err != nil {
		return core.DatabaseError("failed to save evaluation", err)
	}
	return nil
}

// GetByID retrieves an evaluation by its ID.
func (r *evaluationRepository) GetByID(ctx context.Context, id core.EvaluationID) (*ports.EvaluationRecord, error) {
	query := `SELECT id, x_measure, y_measure, num_runs, curves, averaged, created_at
	FROM evaluations WHERE id = $1`

	row := evaluationRow{}
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, core.Newf(core.CodeNotFound, "evaluation %s not found", id)
		}
		return nil, core.DatabaseError("failed to load evaluation", err)
	}
	return row.toRecord()
}

// ListRecent returns the most recent evaluations, newest first.
func (r *evaluationRepository) ListRecent(ctx context.Context, limit int) ([]*ports.EvaluationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, x_measure, y_measure, num_runs, curves, averaged, created_at
	FROM evaluations ORDER BY created_at DESC LIMIT $1`

	rows := []evaluationRow{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, core.DatabaseError("failed to list evaluations", err)
	}

	out := make([]*ports.EvaluationRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

type evaluationRow struct {
	ID        string       `db:"id"`
	XMeasure  string       `db:"x_measure"`
	YMeasure  string       `db:"y_measure"`
	NumRuns   int          `db:"num_runs"`
	Curves    []byte       `db:"curves"`
	Averaged  []byte       `db:"averaged"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (row evaluationRow) toRecord() (*ports.EvaluationRecord, error) {
	rec := &ports.EvaluationRecord{
		ID:       core.EvaluationID(row.ID),
		XMeasure: row.XMeasure,
		YMeasure: row.YMeasure,
		NumRuns:  row.NumRuns,
	}
	if row.CreatedAt.Valid {
		rec.CreatedAt = row.CreatedAt.Time
	}
	if err := json.Unmarshal(row.Curves, &rec.Curves); err != nil {
		return nil, core.DatabaseError("failed to unmarshal curves", err)
	}
	if len(row.Averaged) > 0 {
		rec.Averaged = &perf.AveragedCurve{}
		if err := json.Unmarshal(row.Averaged, rec.Averaged); err != nil {
			return nil, core.DatabaseError("failed to unmarshal averaged curve", err)
		}
	}
	return rec, nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
