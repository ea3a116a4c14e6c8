package measures

import (
	"math"
	"sort"

	"perfeval/adapters/stats/confusion"
	"perfeval/domain/core"
	"perfeval/domain/perf"
)

// CutoffMeasure is the x-measure identifier of a degenerate curve whose x
// axis is the cutoff itself (a single measure requested as performance).
const CutoffMeasure = "cutoff"

// Request describes one curve evaluation for a single run.
type Request struct {
	// XMeasure may be empty: the curve then uses the cutoff as its x axis.
	XMeasure string
	YMeasure string
	// Cutoffs overrides the run's natural cutoff sequence; nil uses all
	// distinct score values plus the +Inf boundary.
	Cutoffs []float64
	// Params is used exactly as given when non-nil; nil means DefaultParams.
	Params *Params
}

// EvalRun computes one run's performance curve for the requested measure
// pair.
func EvalRun(run *perf.Run, req Request) (perf.Curve, error) {
	ySpec, err := Lookup(req.YMeasure)
	if err != nil {
		return perf.Curve{}, err
	}
	var xSpec *Spec
	if req.XMeasure != "" && req.XMeasure != CutoffMeasure {
		if xSpec, err = Lookup(req.XMeasure); err != nil {
			return perf.Curve{}, err
		}
	}

	prm := DefaultParams()
	if req.Params != nil {
		prm = *req.Params
	}

	bounded := ySpec.Bounded || (xSpec != nil && xSpec.Bounded)
	if bounded {
		for _, c := range req.Cutoffs {
			if c < 0 || c > 1 {
				return perf.Curve{}, core.DomainErrorf(
					"measure %q restricts cutoffs to [0,1], got %g", ySpec.Name, c)
			}
		}
	}

	switch ySpec.Kind {
	case KindTransform:
		if xSpec != nil && req.XMeasure != ySpec.PartnerX {
			return perf.Curve{}, core.MeasureMismatch(
				"measure " + ySpec.Name + " defines its own x axis (" + ySpec.PartnerX +
					") and cannot be paired with " + req.XMeasure)
		}
		v, err := newRunView(run, nil, false)
		if err != nil {
			return perf.Curve{}, err
		}
		points, err := ySpec.Transform(v, prm)
		if err != nil {
			return perf.Curve{}, err
		}
		return perf.Curve{XMeasure: ySpec.PartnerX, YMeasure: ySpec.Name, Points: points}, nil

	case KindScalar:
		if xSpec != nil {
			return perf.Curve{}, core.MeasureMismatch(
				"measure " + ySpec.Name + " reduces a run to a single value and cannot be paired with " + req.XMeasure)
		}
		v, err := newRunView(run, nil, false)
		if err != nil {
			return perf.Curve{}, err
		}
		cutoff, value, err := ySpec.Scalar(v, prm)
		if err != nil {
			return perf.Curve{}, err
		}
		return perf.Curve{
			XMeasure: CutoffMeasure,
			YMeasure: ySpec.Name,
			Points:   []perf.Point{{Cutoff: cutoff, X: cutoff, Y: value}},
		}, nil
	}

	// Pointwise y; x must be pointwise too.
	if xSpec != nil && xSpec.Kind != KindPoint {
		return perf.Curve{}, core.MeasureMismatch(
			"measure " + xSpec.Name + " cannot serve as an x axis")
	}

	cutoffs := req.Cutoffs
	if cutoffs == nil {
		cutoffs = confusion.NaturalCutoffs(run.Scores())
		if bounded {
			cutoffs = clampToUnit(cutoffs)
		}
	} else {
		cutoffs = append([]float64(nil), cutoffs...)
		sort.Sort(sort.Reverse(sort.Float64Slice(cutoffs)))
	}

	needStats := ySpec.NeedsRunStats || (xSpec != nil && xSpec.NeedsRunStats)
	v, err := newRunView(run, cutoffs, needStats)
	if err != nil {
		return perf.Curve{}, err
	}

	xName := req.XMeasure
	if xName == "" {
		xName = CutoffMeasure
	}

	points := make([]perf.Point, v.Counts.Len())
	for i := range v.Counts.Cutoffs {
		p := Point{
			TP:     float64(v.Counts.TP[i]),
			FP:     float64(v.Counts.FP[i]),
			TN:     float64(v.Counts.TN[i]),
			FN:     float64(v.Counts.FN[i]),
			Cutoff: v.Counts.Cutoffs[i],
			Pos:    float64(v.Counts.TotalPos),
			Neg:    float64(v.Counts.TotalNeg),
		}
		x := p.Cutoff
		if xSpec != nil {
			x = xSpec.Eval(p, v, prm)
		}
		points[i] = perf.Point{Cutoff: p.Cutoff, X: x, Y: ySpec.Eval(p, v, prm)}
	}
	return perf.Curve{XMeasure: xName, YMeasure: ySpec.Name, Points: points}, nil
}

// newRunView builds the evaluation context for one run. Scalar and
// transform measures always see the natural cutoff grid; pointwise
// evaluation passes its own grid. Run-level statistics (AUC, RMSE) are
// computed over the natural grid when requested.
func newRunView(run *perf.Run, cutoffs []float64, needStats bool) (*RunView, error) {
	counts, err := confusion.Accumulate(run.Scores(), run.Labels(), cutoffs)
	if err != nil {
		return nil, err
	}
	v := &RunView{
		Scores: run.Scores(),
		Labels: run.Labels(),
		Counts: counts,
		AUC:    math.NaN(),
		RMSE:   math.NaN(),
	}
	if needStats {
		natural := v
		if cutoffs != nil {
			naturalCounts, err := confusion.Accumulate(run.Scores(), run.Labels(), nil)
			if err != nil {
				return nil, err
			}
			natural = &RunView{Scores: v.Scores, Labels: v.Labels, Counts: naturalCounts}
		}
		fpr, tpr := rocPoints(natural)
		v.AUC = trapezoid(fpr, tpr)
		if v.RMSE, err = rootMeanSquaredError(natural); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// clampToUnit filters a descending cutoff sequence to the [0,1] domain,
// adding the boundary cutoff 1 in place of the +Inf boundary.
func clampToUnit(cutoffs []float64) []float64 {
	out := make([]float64, 0, len(cutoffs))
	for _, c := range cutoffs {
		if math.IsInf(c, 1) {
			c = 1
		}
		if c < 0 || c > 1 {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == c {
			continue
		}
		out = append(out, c)
	}
	return out
}
