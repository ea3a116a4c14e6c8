package ports

import (
	"context"
	"time"

	"perfeval/domain/core"
	"perfeval/domain/perf"
)

// EvaluationRecord is the persisted form of one evaluation.
type EvaluationRecord struct {
	ID        core.EvaluationID
	XMeasure  string
	YMeasure  string
	NumRuns   int
	Curves    []perf.Curve
	Averaged  *perf.AveragedCurve
	CreatedAt time.Time
}

// EvaluationRepository stores finished evaluations.
type EvaluationRepository interface {
	Save(ctx context.Context, rec *EvaluationRecord) error
	GetByID(ctx context.Context, id core.EvaluationID) (*EvaluationRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*EvaluationRecord, error)
}
