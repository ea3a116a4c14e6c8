// Package curves applies the confusion accumulator and measure evaluator to
// every run of a prediction, producing one curve per run.
package curves

import (
	"context"

	"golang.org/x/sync/errgroup"

	"perfeval/adapters/stats/measures"
	"perfeval/domain/perf"
)

// Options configures a multi-run build.
type Options struct {
	// Cutoffs overrides each run's natural cutoff sequence.
	Cutoffs []float64
	// Params is forwarded verbatim; nil means the measure defaults.
	Params *measures.Params
}

// Build evaluates the (xMeasure, yMeasure) pair independently over each run
// of the prediction. Runs are independent, so they are computed
// concurrently and joined before the performance result is assembled.
func Build(ctx context.Context, pred *perf.Prediction, xMeasure, yMeasure string, opts Options) (*perf.Performance, error) {
	// Reject unknown measure names before fanning out.
	if _, err := measures.Lookup(yMeasure); err != nil {
		return nil, err
	}
	if xMeasure != "" && xMeasure != measures.CutoffMeasure {
		if _, err := measures.Lookup(xMeasure); err != nil {
			return nil, err
		}
	}

	results := make([]perf.Curve, pred.NumRuns())
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < pred.NumRuns(); i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			curve, err := measures.EvalRun(pred.Run(i), measures.Request{
				XMeasure: xMeasure,
				YMeasure: yMeasure,
				Cutoffs:  opts.Cutoffs,
				Params:   opts.Params,
			})
			if err != nil {
				return err
			}
			results[i] = curve
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// All curves carry the same resolved measure pair; read it back from
	// the first curve since an empty x request resolves to "cutoff" and a
	// transform resolves to its partner axis.
	return perf.NewPerformance(results[0].XMeasure, results[0].YMeasure, results)
}
