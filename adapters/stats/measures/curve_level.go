package measures

import (
	"math"
	"sort"

	"perfeval/domain/core"
	"perfeval/domain/perf"
)

// Curve-level measures: computed once over the full per-run curve instead
// of streamed per cutoff.

func init() {
	register(&Spec{
		Name:        "auc",
		Description: "area under the ROC curve (trapezoidal)",
		Kind:        KindScalar,
		Scalar: func(v *RunView, _ Params) (float64, float64, error) {
			fpr, tpr := rocPoints(v)
			return math.NaN(), trapezoid(fpr, tpr), nil
		},
	})
	register(&Spec{
		Name:        "prbe",
		Description: "precision/recall break-even point",
		Kind:        KindScalar,
		Scalar: func(v *RunView, _ Params) (float64, float64, error) {
			return breakEven(v)
		},
	})
	register(&Spec{
		Name:        "rmse",
		Description: "root-mean-squared error of scores against 0/1 labels",
		Kind:        KindScalar,
		Bounded:     true,
		Scalar: func(v *RunView, _ Params) (float64, float64, error) {
			value, err := rootMeanSquaredError(v)
			return math.NaN(), value, err
		},
	})
	register(&Spec{
		Name:        "rch",
		Description: "ROC convex hull",
		Kind:        KindTransform,
		PartnerX:    "fpr",
		Transform: func(v *RunView, _ Params) ([]perf.Point, error) {
			return convexHull(v), nil
		},
	})
	register(&Spec{
		Name:        "cal",
		Description: "calibration error over a moving score window",
		Kind:        KindTransform,
		Bounded:     true,
		PartnerX:    "cutoff",
		Transform:   calibrationError,
	})
	register(&Spec{
		Name:        "ecost",
		Description: "expected cost over the probability-cost range [0,1]",
		Kind:        KindTransform,
		PartnerX:    "pcost",
		Transform:   expectedCost,
	})
}

// rocPoints derives the (fpr, tpr) sequence from the run's natural counts,
// ordered by decreasing cutoff so fpr ascends from 0 to 1.
func rocPoints(v *RunView) (fpr, tpr []float64) {
	c := v.Counts
	fpr = make([]float64, c.Len())
	tpr = make([]float64, c.Len())
	for i := range c.Cutoffs {
		fpr[i] = float64(c.FP[i]) / float64(c.TotalNeg)
		tpr[i] = float64(c.TP[i]) / float64(c.TotalPos)
	}
	return fpr, tpr
}

func trapezoid(x, y []float64) float64 {
	area := 0.0
	for i := 1; i < len(x); i++ {
		area += math.Abs(x[i]-x[i-1]) * (y[i] + y[i-1]) / 2
	}
	return area
}

// breakEven locates the cutoff where precision and recall cross, refining
// linearly between the two bracketing cutoffs when the difference changes
// sign.
func breakEven(v *RunView) (cutoff, value float64, err error) {
	c := v.Counts
	type pr struct{ cutoff, prec, rec float64 }
	points := make([]pr, 0, c.Len())
	for i := range c.Cutoffs {
		tp := float64(c.TP[i])
		prec := tp / float64(c.TP[i]+c.FP[i])
		rec := tp / float64(c.TotalPos)
		if math.IsNaN(prec) {
			continue
		}
		points = append(points, pr{c.Cutoffs[i], prec, rec})
	}
	if len(points) == 0 {
		return math.NaN(), math.NaN(), nil
	}

	best := points[0]
	bestGap := math.Abs(best.prec - best.rec)
	for i := 1; i < len(points); i++ {
		p := points[i]
		prevDiff := points[i-1].prec - points[i-1].rec
		diff := p.prec - p.rec
		if prevDiff*diff < 0 {
			// Crossing between i-1 and i: interpolate the shared value.
			t := prevDiff / (prevDiff - diff)
			val := points[i-1].rec + t*(p.rec-points[i-1].rec)
			cut := points[i-1].cutoff + t*(p.cutoff-points[i-1].cutoff)
			return cut, val, nil
		}
		if gap := math.Abs(diff); gap < bestGap {
			bestGap = gap
			best = p
		}
	}
	return best.cutoff, (best.prec + best.rec) / 2, nil
}

func rootMeanSquaredError(v *RunView) (float64, error) {
	if err := requireProbabilityScores(v.Scores); err != nil {
		return 0, err
	}
	sum := 0.0
	for i, s := range v.Scores {
		y := 0.0
		if v.Labels[i] == perf.Positive {
			y = 1.0
		}
		d := s - y
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(v.Scores))), nil
}

// convexHull returns the ROC points on the upper convex hull, keeping each
// retained point's cutoff.
func convexHull(v *RunView) []perf.Point {
	fpr, tpr := rocPoints(v)
	cutoffs := v.Counts.Cutoffs

	// Points arrive sorted by ascending fpr (descending cutoff). Compress
	// ties in fpr to the highest tpr, then build the upper hull with a
	// monotone-chain scan.
	compressed := make([]perf.Point, 0, len(fpr))
	for i := range fpr {
		p := perf.Point{Cutoff: cutoffs[i], X: fpr[i], Y: tpr[i]}
		if n := len(compressed); n > 0 && compressed[n-1].X == p.X {
			if p.Y > compressed[n-1].Y {
				compressed[n-1] = p
			}
			continue
		}
		compressed = append(compressed, p)
	}

	hull := make([]perf.Point, 0, len(compressed))
	for _, p := range compressed {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) >= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull
}

func cross(o, a, b perf.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// calibrationError slides a window of fixed size over the scores sorted
// descending and contrasts the mean predicted score with the empirical
// positive rate inside the window. Scores must lie in [0,1].
func calibrationError(v *RunView, prm Params) ([]perf.Point, error) {
	if err := requireProbabilityScores(v.Scores); err != nil {
		return nil, err
	}

	n := len(v.Scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return v.Scores[order[a]] > v.Scores[order[b]]
	})

	window := prm.CalWindow
	if window > n {
		window = n
	}

	points := make([]perf.Point, 0, n-window+1)
	for start := 0; start+window <= n; start++ {
		meanScore, posCount := 0.0, 0.0
		for k := start; k < start+window; k++ {
			meanScore += v.Scores[order[k]]
			if v.Labels[order[k]] == perf.Positive {
				posCount++
			}
		}
		meanScore /= float64(window)
		posRate := posCount / float64(window)
		points = append(points, perf.Point{
			Cutoff: meanScore,
			X:      meanScore,
			Y:      math.Abs(meanScore - posRate),
		})
	}
	return points, nil
}

// expectedCost evaluates the lower envelope of the cost lines
// E(pc) = pc*FNR + (1-pc)*FPR over the ROC convex hull, weighted by the
// supplied error costs. Break points fall where adjacent hull vertices tie.
func expectedCost(v *RunView, prm Params) ([]perf.Point, error) {
	hull := convexHull(v)
	if len(hull) == 0 {
		return nil, nil
	}

	costAt := func(pc float64, h perf.Point) float64 {
		fnr := 1 - h.Y
		fpr := h.X
		return pc*prm.CostFN*fnr + (1-pc)*prm.CostFP*fpr
	}

	points := []perf.Point{{Cutoff: hull[0].Cutoff, X: 0, Y: costAt(0, hull[0])}}
	for i := 1; i < len(hull); i++ {
		a, b := hull[i-1], hull[i]
		dFPR := (b.X - a.X) * prm.CostFP
		dTPR := (b.Y - a.Y) * prm.CostFN
		if dFPR+dTPR == 0 {
			continue
		}
		// pc where vertex a and vertex b incur equal expected cost.
		pc := dFPR / (dFPR + dTPR)
		if pc < 0 || pc > 1 {
			continue
		}
		points = append(points, perf.Point{Cutoff: b.Cutoff, X: pc, Y: costAt(pc, b)})
	}
	last := hull[len(hull)-1]
	points = append(points, perf.Point{Cutoff: last.Cutoff, X: 1, Y: costAt(1, last)})
	return points, nil
}

func requireProbabilityScores(scores []float64) error {
	for _, s := range scores {
		if s < 0 || s > 1 {
			return core.DomainErrorf(
				"measure requires scores in [0,1], found %g", s)
		}
	}
	return nil
}
