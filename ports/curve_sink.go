package ports

import (
	"context"

	"perfeval/domain/perf"
)

// CurveSink consumes a finished performance result. Plotting and report
// rendering sit behind this boundary; the core only hands over the ordered
// (cutoff, x, y) triples and spread statistics.
type CurveSink interface {
	Consume(ctx context.Context, p *perf.Performance) error
}
