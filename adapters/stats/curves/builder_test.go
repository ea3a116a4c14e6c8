package curves

import (
	"context"
	"testing"

	"perfeval/domain/core"
	"perfeval/domain/perf"
)

func multiRunPrediction(t *testing.T) *perf.Prediction {
	t.Helper()
	pred, err := perf.NewPrediction([]perf.RawRun{
		{
			Scores: []float64{0.9, 0.8, 0.7, 0.6, 0.5},
			Labels: []string{"1", "1", "0", "1", "0"},
		},
		{
			Scores: []float64{0.95, 0.4, 0.85, 0.3},
			Labels: []string{"1", "0", "1", "0"},
		},
		{
			Scores: []float64{0.6, 0.2, 0.9},
			Labels: []string{"0", "0", "1"},
		},
	})
	if err != nil {
		t.Fatalf("building prediction: %v", err)
	}
	return pred
}

func TestBuild_OneCurvePerRun(t *testing.T) {
	pred := multiRunPrediction(t)

	result, err := Build(context.Background(), pred, "fpr", "tpr", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumRuns() != 3 {
		t.Fatalf("expected 3 curves, got %d", result.NumRuns())
	}
	if result.XMeasure() != "fpr" || result.YMeasure() != "tpr" {
		t.Errorf("unexpected measure pair %s/%s", result.XMeasure(), result.YMeasure())
	}

	// Each curve reflects its own run's score set: distinct scores + 1.
	for i, want := range []int{6, 5, 4} {
		if got := result.Curve(i).Len(); got != want {
			t.Errorf("run %d: expected %d points, got %d", i, want, got)
		}
	}
}

func TestBuild_CutoffCurveWhenXEmpty(t *testing.T) {
	pred := multiRunPrediction(t)

	result, err := Build(context.Background(), pred, "", "acc", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.XMeasure() != "cutoff" {
		t.Errorf("expected cutoff x axis, got %q", result.XMeasure())
	}

	for i := 0; i < result.NumRuns(); i++ {
		alphas := result.AlphaValues(i)
		for j := 1; j < len(alphas); j++ {
			if alphas[j] >= alphas[j-1] {
				t.Errorf("run %d: alpha values not descending at %d", i, j)
			}
		}
	}
}

func TestBuild_SharedExplicitCutoffs(t *testing.T) {
	pred := multiRunPrediction(t)

	result, err := Build(context.Background(), pred, "fpr", "tpr", Options{
		Cutoffs: []float64{0.25, 0.75},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < result.NumRuns(); i++ {
		alphas := result.AlphaValues(i)
		if len(alphas) != 2 || alphas[0] != 0.75 || alphas[1] != 0.25 {
			t.Errorf("run %d: expected cutoffs [0.75 0.25], got %v", i, alphas)
		}
	}
}

func TestBuild_RejectsUnknownMeasures(t *testing.T) {
	pred := multiRunPrediction(t)

	if _, err := Build(context.Background(), pred, "fpr", "nope", Options{}); !core.HasCode(err, core.CodeUndefinedMeasure) {
		t.Errorf("unknown y: expected %s, got %v", core.CodeUndefinedMeasure, err)
	}
	if _, err := Build(context.Background(), pred, "nope", "tpr", Options{}); !core.HasCode(err, core.CodeUndefinedMeasure) {
		t.Errorf("unknown x: expected %s, got %v", core.CodeUndefinedMeasure, err)
	}
}

func TestBuild_PropagatesRunErrors(t *testing.T) {
	// The second run's scores leave [0,1], which rmse rejects.
	pred, err := perf.NewPrediction([]perf.RawRun{
		{Scores: []float64{0.9, 0.1}, Labels: []string{"1", "0"}},
		{Scores: []float64{1.8, 0.2}, Labels: []string{"1", "0"}},
	})
	if err != nil {
		t.Fatalf("building prediction: %v", err)
	}

	_, err = Build(context.Background(), pred, "", "rmse", Options{})
	if !core.HasCode(err, core.CodeDomainError) {
		t.Fatalf("expected %s, got %v", core.CodeDomainError, err)
	}
}

func TestBuild_CancelledContext(t *testing.T) {
	pred := multiRunPrediction(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Build(ctx, pred, "fpr", "tpr", Options{}); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}
