// Package app orchestrates the evaluation pipeline: run validation, curve
// building, averaging, and the optional persistence and reporting steps.
package app

import (
	"context"
	"time"

	"perfeval/adapters/stats/average"
	"perfeval/adapters/stats/curves"
	"perfeval/adapters/stats/measures"
	"perfeval/domain/perf"
	"perfeval/internal"
	"perfeval/ports"
)

// EvaluationRequest defines one evaluation of a multi-run prediction.
type EvaluationRequest struct {
	Runs []perf.RawRun

	// NegativeLabel/PositiveLabel optionally fix the label polarity; both
	// empty means the ordering is inferred from the label values.
	NegativeLabel string
	PositiveLabel string

	XMeasure string
	YMeasure string
	Cutoffs  []float64
	// Params is applied exactly as given when non-nil; nil uses
	// measures.DefaultParams.
	Params *measures.Params

	Averaging average.Mode
	Spread    average.SpreadMode
}

// EvaluationService runs evaluations and hands results to the configured
// collaborators.
type EvaluationService struct {
	repo   ports.EvaluationRepository
	sink   ports.CurveSink
	logger *internal.Logger
}

// NewEvaluationService creates an evaluation service. Both repo and sink
// may be nil.
func NewEvaluationService(repo ports.EvaluationRepository, sink ports.CurveSink, logger *internal.Logger) *EvaluationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EvaluationService{repo: repo, sink: sink, logger: logger}
}

// Evaluate validates the runs, builds one curve per run, averages them when
// requested, and forwards the result to the repository and sink.
func (s *EvaluationService) Evaluate(ctx context.Context, req EvaluationRequest) (*perf.Performance, error) {
	started := time.Now()

	pred, err := s.buildPrediction(req)
	if err != nil {
		return nil, err
	}

	result, err := curves.Build(ctx, pred, req.XMeasure, req.YMeasure, curves.Options{
		Cutoffs: req.Cutoffs,
		Params:  req.Params,
	})
	if err != nil {
		return nil, err
	}

	avg, err := average.Average(result.Curves(), average.Options{
		Mode:   req.Averaging,
		Spread: req.Spread,
	})
	if err != nil {
		return nil, err
	}
	if avg != nil {
		result = result.WithAveraged(avg)
	}

	s.logger.Info("evaluated %s vs %s over %d runs in %s",
		result.YMeasure(), result.XMeasure(), result.NumRuns(), time.Since(started))

	if s.repo != nil {
		rec := &ports.EvaluationRecord{
			ID:        result.ID(),
			XMeasure:  result.XMeasure(),
			YMeasure:  result.YMeasure(),
			NumRuns:   result.NumRuns(),
			Curves:    result.Curves(),
			Averaged:  result.Averaged(),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.Save(ctx, rec); err != nil {
			return nil, err
		}
	}
	if s.sink != nil {
		if err := s.sink.Consume(ctx, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *EvaluationService) buildPrediction(req EvaluationRequest) (*perf.Prediction, error) {
	if req.NegativeLabel != "" || req.PositiveLabel != "" {
		return perf.NewPredictionOrdered(req.Runs, req.NegativeLabel, req.PositiveLabel)
	}
	return perf.NewPrediction(req.Runs)
}
