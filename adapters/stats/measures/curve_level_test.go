package measures

import (
	"math"
	"math/rand"
	"testing"

	"perfeval/domain/core"
	"perfeval/domain/perf"
)

func TestAUC_KnownValue(t *testing.T) {
	curve, err := EvalRun(testRun(t), Request{YMeasure: "auc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(curve.Points) != 1 {
		t.Fatalf("scalar measure should yield one point, got %d", len(curve.Points))
	}
	if got := curve.Points[0].Y; !approx(got, 5.0/6, 1e-12) {
		t.Errorf("auc: got %f, want %f", got, 5.0/6)
	}
	if curve.XMeasure != CutoffMeasure || curve.YMeasure != "auc" {
		t.Errorf("unexpected measure pair %s/%s", curve.XMeasure, curve.YMeasure)
	}
}

// TestAUC_EqualsMannWhitney verifies the trapezoidal area matches the
// rank-sum statistic U/(P*N) on randomized runs with distinct scores.
func TestAUC_EqualsMannWhitney(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		n := 20 + rng.Intn(80)
		scores := make([]float64, n)
		labels := make([]string, n)
		perm := rng.Perm(n)
		for i := range scores {
			// Distinct scores so no tie correction is needed.
			scores[i] = float64(perm[i]) / float64(n)
			labels[i] = "neg"
		}
		for i := 2; i < n; i++ {
			if rng.Float64() < 0.4 {
				labels[i] = "pos"
			}
		}
		// Force at least one of each class.
		labels[0] = "pos"
		labels[1] = "neg"

		pred, err := perf.NewPredictionOrdered(
			[]perf.RawRun{{Scores: scores, Labels: labels}}, "neg", "pos")
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		run := pred.Run(0)

		curve, err := EvalRun(run, Request{YMeasure: "auc"})
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		u := 0.0
		for i, si := range scores {
			if labels[i] != "pos" {
				continue
			}
			for j, sj := range scores {
				if labels[j] == "pos" {
					continue
				}
				if si > sj {
					u++
				}
			}
		}
		want := u / float64(run.Positives()*run.Negatives())
		if got := curve.Points[0].Y; !approx(got, want, 1e-9) {
			t.Errorf("trial %d: auc %f, Mann-Whitney %f", trial, got, want)
		}
	}
}

func TestPRBE_CrossingPoint(t *testing.T) {
	curve, err := EvalRun(testRun(t), Request{YMeasure: "prbe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := curve.Points[0]
	if !approx(p.Cutoff, 0.7, 1e-12) {
		t.Errorf("prbe cutoff: got %f, want 0.7", p.Cutoff)
	}
	if !approx(p.Y, 2.0/3, 1e-12) {
		t.Errorf("prbe value: got %f, want %f", p.Y, 2.0/3)
	}
}

func TestRMSE_ScoresAgainstBinaryLabels(t *testing.T) {
	curve, err := EvalRun(testRun(t), Request{YMeasure: "rmse"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Sqrt((0.01 + 0.04 + 0.49 + 0.16 + 0.25) / 5)
	if got := curve.Points[0].Y; !approx(got, want, 1e-12) {
		t.Errorf("rmse: got %f, want %f", got, want)
	}
}

func TestRMSE_RejectsNonProbabilityScores(t *testing.T) {
	pred, err := perf.NewPrediction([]perf.RawRun{{
		Scores: []float64{2.5, -1.0, 0.5, 0.1},
		Labels: []string{"1", "0", "1", "0"},
	}})
	if err != nil {
		t.Fatalf("building prediction: %v", err)
	}
	_, err = EvalRun(pred.Run(0), Request{YMeasure: "rmse"})
	if !core.HasCode(err, core.CodeDomainError) {
		t.Fatalf("expected %s, got %v", core.CodeDomainError, err)
	}
}

func TestConvexHull_ReferenceRun(t *testing.T) {
	curve, err := EvalRun(testRun(t), Request{YMeasure: "rch"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if curve.XMeasure != "fpr" {
		t.Fatalf("rch should produce an fpr x axis, got %q", curve.XMeasure)
	}

	want := []perf.Point{
		{Cutoff: 0.8, X: 0, Y: 2.0 / 3},
		{Cutoff: 0.6, X: 0.5, Y: 1},
		{Cutoff: 0.5, X: 1, Y: 1},
	}
	if len(curve.Points) != len(want) {
		t.Fatalf("expected %d hull points, got %d: %v", len(want), len(curve.Points), curve.Points)
	}
	for i, w := range want {
		g := curve.Points[i]
		if !approx(g.Cutoff, w.Cutoff, 1e-12) || !approx(g.X, w.X, 1e-12) || !approx(g.Y, w.Y, 1e-12) {
			t.Errorf("hull point %d: got %+v, want %+v", i, g, w)
		}
	}
}

func TestConvexHull_DropsDominatedPoints(t *testing.T) {
	pred, err := perf.NewPrediction([]perf.RawRun{{
		Scores: []float64{0.9, 0.7, 0.5, 0.3},
		Labels: []string{"1", "0", "0", "1"},
	}})
	if err != nil {
		t.Fatalf("building prediction: %v", err)
	}
	curve, err := EvalRun(pred.Run(0), Request{YMeasure: "rch"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The interior ROC points lie on or below the chord from (0, 0.5) to
	// (1, 1) and must be removed.
	if len(curve.Points) != 2 {
		t.Fatalf("expected 2 hull points, got %d: %v", len(curve.Points), curve.Points)
	}
	if !approx(curve.Points[0].X, 0, 1e-12) || !approx(curve.Points[0].Y, 0.5, 1e-12) {
		t.Errorf("first hull point: got %+v", curve.Points[0])
	}
	if !approx(curve.Points[1].X, 1, 1e-12) || !approx(curve.Points[1].Y, 1, 1e-12) {
		t.Errorf("last hull point: got %+v", curve.Points[1])
	}
}

func TestCalibration_WindowSweep(t *testing.T) {
	curve, err := EvalRun(testRun(t), Request{
		YMeasure: "cal",
		Params:   &Params{Alpha: 0.5, CostFP: 1, CostFN: 1, CalWindow: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if curve.XMeasure != "cutoff" {
		t.Fatalf("cal should use the cutoff axis, got %q", curve.XMeasure)
	}
	if len(curve.Points) != 4 {
		t.Fatalf("expected 4 windows over 5 scores, got %d", len(curve.Points))
	}

	// First window holds the two highest scores, both positive.
	first := curve.Points[0]
	if !approx(first.X, 0.85, 1e-12) || !approx(first.Y, 0.15, 1e-12) {
		t.Errorf("first window: got %+v, want mean 0.85 error 0.15", first)
	}
}

func TestCalibration_WindowLargerThanRun(t *testing.T) {
	curve, err := EvalRun(testRun(t), Request{YMeasure: "cal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The default window exceeds the run length and collapses to one point
	// over all scores.
	if len(curve.Points) != 1 {
		t.Fatalf("expected a single window, got %d points", len(curve.Points))
	}
	p := curve.Points[0]
	if !approx(p.X, 0.7, 1e-12) || !approx(p.Y, 0.1, 1e-12) {
		t.Errorf("collapsed window: got %+v, want mean 0.7 error 0.1", p)
	}
}

func TestCalibration_RejectsCutoffOutsideUnitInterval(t *testing.T) {
	_, err := EvalRun(testRun(t), Request{
		YMeasure: "cal",
		Cutoffs:  []float64{1.5},
	})
	if !core.HasCode(err, core.CodeDomainError) {
		t.Fatalf("expected %s for cutoff 1.5, got %v", core.CodeDomainError, err)
	}
}

func TestExpectedCost_EnvelopeEndpoints(t *testing.T) {
	curve, err := EvalRun(testRun(t), Request{YMeasure: "ecost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if curve.XMeasure != "pcost" {
		t.Fatalf("ecost should use the pcost axis, got %q", curve.XMeasure)
	}

	pts := curve.Points
	if len(pts) < 2 {
		t.Fatalf("expected at least the two endpoints, got %d points", len(pts))
	}
	if pts[0].X != 0 {
		t.Errorf("envelope should start at pcost 0, got %f", pts[0].X)
	}
	if pts[len(pts)-1].X != 1 {
		t.Errorf("envelope should end at pcost 1, got %f", pts[len(pts)-1].X)
	}
	for i, p := range pts {
		if p.Y < 0 {
			t.Errorf("point %d: negative expected cost %f", i, p.Y)
		}
		if i > 0 && pts[i].X < pts[i-1].X {
			t.Errorf("pcost values not ascending at %d", i)
		}
	}

	// Between the hull vertices (0, 2/3) and (0.5, 1) the tie falls at
	// pcost 0.6 with expected cost 0.2.
	found := false
	for _, p := range pts {
		if approx(p.X, 0.6, 1e-12) && approx(p.Y, 0.2, 1e-12) {
			found = true
		}
	}
	if !found {
		t.Errorf("missing interior break point (0.6, 0.2) in %v", pts)
	}
}

func TestSAR_CombinesThreeMetrics(t *testing.T) {
	curve, err := EvalRun(testRun(t), Request{YMeasure: "sar"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Natural cutoffs on a bounded measure are clamped to [0,1]: the +Inf
	// boundary becomes 1.
	if got := curve.Points[0].Cutoff; got != 1 {
		t.Errorf("first cutoff should clamp to 1, got %f", got)
	}

	rmse := math.Sqrt(0.19)
	i := -1
	for j, p := range curve.Points {
		if p.Cutoff == 0.7 {
			i = j
		}
	}
	if i < 0 {
		t.Fatalf("cutoff 0.7 missing from %v", curve.Points)
	}
	want := (0.6 + 5.0/6 + (1 - rmse)) / 3
	if got := curve.Points[i].Y; !approx(got, want, 1e-12) {
		t.Errorf("sar at 0.7: got %f, want %f", got, want)
	}
}
