// Package ports defines the interfaces between the evaluation core and its
// external collaborators.
package ports

import (
	"context"

	"perfeval/domain/perf"
)

// RunReader loads one or more runs of (score, label) pairs from an external
// source, e.g. a CSV or XLSX file.
type RunReader interface {
	ReadRuns(ctx context.Context, source string) ([]perf.RawRun, error)
}
