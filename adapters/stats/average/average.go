// Package average combines per-run performance curves into one averaged
// curve with a per-point spread estimate, reconciling curves of different
// lengths and cutoff sets.
package average

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"perfeval/domain/core"
	"perfeval/domain/perf"
)

// Mode selects the alignment strategy.
type Mode string

const (
	ModeNone       Mode = "none"
	ModeThreshold  Mode = "threshold"
	ModeVertical   Mode = "vertical"
	ModeHorizontal Mode = "horizontal"
)

// SpreadMode selects the per-point variability summary.
type SpreadMode string

const (
	SpreadNone     SpreadMode = "none"
	SpreadStdDev   SpreadMode = "stddev"
	SpreadStdError SpreadMode = "stderror"
	SpreadBoxplot  SpreadMode = "boxplot"
)

// ParseMode validates an averaging mode identifier.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNone, ModeThreshold, ModeVertical, ModeHorizontal:
		return Mode(s), nil
	case "":
		return ModeNone, nil
	}
	return "", core.InvalidInputf("unknown averaging mode %q", s)
}

// ParseSpreadMode validates a spread mode identifier.
func ParseSpreadMode(s string) (SpreadMode, error) {
	switch SpreadMode(s) {
	case SpreadNone, SpreadStdDev, SpreadStdError, SpreadBoxplot:
		return SpreadMode(s), nil
	case "":
		return SpreadNone, nil
	}
	return "", core.InvalidInputf("unknown spread mode %q", s)
}

// Options configures the reduction.
type Options struct {
	Mode   Mode
	Spread SpreadMode
}

// Average reduces N curves of the same measure pair into one averaged
// curve. Mode none returns nil, leaving the original curves untouched.
// Spread is empty when N = 1 regardless of the requested mode.
func Average(curves []perf.Curve, opts Options) (*perf.AveragedCurve, error) {
	if opts.Mode == ModeNone || opts.Mode == "" {
		return nil, nil
	}
	if len(curves) == 0 {
		return nil, core.EmptyInput("averaging requires at least one curve")
	}
	for i := 1; i < len(curves); i++ {
		if curves[i].XMeasure != curves[0].XMeasure || curves[i].YMeasure != curves[0].YMeasure {
			return nil, core.IncompatibleCurves(
				"curves disagree on the measure pair and cannot be averaged")
		}
	}
	for i, c := range curves {
		if c.Len() == 0 {
			return nil, core.EmptyInput("curve " + strconv.Itoa(i) + " has no points")
		}
	}

	switch opts.Mode {
	case ModeThreshold:
		return thresholdAverage(curves, opts.Spread)
	case ModeVertical:
		return gridAverage(curves, opts.Spread, false)
	case ModeHorizontal:
		return gridAverage(curves, opts.Spread, true)
	}
	return nil, core.InvalidInputf("unknown averaging mode %q", opts.Mode)
}

// thresholdAverage aligns runs on the union of all cutoff values. At each
// unified cutoff every run contributes the (x, y) values holding from its
// last-crossed curve point (step-function lookup, no interpolation); x and
// y are averaged independently and the spread summarizes the y values.
func thresholdAverage(curves []perf.Curve, spread SpreadMode) (*perf.AveragedCurve, error) {
	unified := unionCutoffs(curves)

	out := &perf.AveragedCurve{
		XMeasure: curves[0].XMeasure,
		YMeasure: curves[0].YMeasure,
		Mode:     string(ModeThreshold),
		Points:   make([]perf.Point, len(unified)),
	}
	collectSpread := spread != SpreadNone && len(curves) > 1
	if collectSpread {
		out.Spread = make([]perf.SpreadStats, len(unified))
	}

	xs := make([]float64, len(curves))
	ys := make([]float64, len(curves))
	for i, t := range unified {
		for r, c := range curves {
			p := stepLookup(c.Points, t)
			xs[r] = p.X
			ys[r] = p.Y
		}
		out.Points[i] = perf.Point{Cutoff: t, X: mean(xs), Y: mean(ys)}
		if collectSpread {
			stats, err := summarize(ys, spread)
			if err != nil {
				return nil, err
			}
			out.Spread[i] = stats
		}
	}
	return out, nil
}

// gridAverage fixes a uniform grid on one axis and linearly interpolates
// the other axis along each run's curve. With swapAxes false this is
// vertical averaging (x grid, averaged y); with swapAxes true the roles of
// x and y are exchanged (horizontal averaging).
func gridAverage(curves []perf.Curve, spread SpreadMode, swapAxes bool) (*perf.AveragedCurve, error) {
	axis := func(p perf.Point) (fixed, free float64) {
		if swapAxes {
			return p.Y, p.X
		}
		return p.X, p.Y
	}

	// The grid spans the intersection of the runs' fixed-axis ranges so
	// every run can interpolate at every grid value.
	lo := math.Inf(-1)
	hi := math.Inf(1)
	gridN := 0
	for _, c := range curves {
		cLo, cHi := math.Inf(1), math.Inf(-1)
		for _, p := range c.Points {
			f, _ := axis(p)
			if math.IsNaN(f) {
				continue
			}
			cLo = math.Min(cLo, f)
			cHi = math.Max(cHi, f)
		}
		lo = math.Max(lo, cLo)
		hi = math.Min(hi, cHi)
		if c.Len() > gridN {
			gridN = c.Len()
		}
	}
	if !(lo <= hi) {
		return nil, core.IncompatibleCurves("curves share no common range on the averaging axis")
	}
	if gridN < 2 {
		gridN = 2
	}
	grid := floats.Span(make([]float64, gridN), lo, hi)

	mode := ModeVertical
	if swapAxes {
		mode = ModeHorizontal
	}
	out := &perf.AveragedCurve{
		XMeasure: curves[0].XMeasure,
		YMeasure: curves[0].YMeasure,
		Mode:     string(mode),
		Points:   make([]perf.Point, len(grid)),
	}
	collectSpread := spread != SpreadNone && len(curves) > 1
	if collectSpread {
		out.Spread = make([]perf.SpreadStats, len(grid))
	}

	values := make([]float64, len(curves))
	for i, g := range grid {
		for r, c := range curves {
			values[r] = interpolate(c.Points, g, swapAxes)
		}
		avg := mean(values)
		if swapAxes {
			out.Points[i] = perf.Point{Cutoff: math.NaN(), X: avg, Y: g}
		} else {
			out.Points[i] = perf.Point{Cutoff: math.NaN(), X: g, Y: avg}
		}
		if collectSpread {
			stats, err := summarize(values, spread)
			if err != nil {
				return nil, err
			}
			out.Spread[i] = stats
		}
	}
	return out, nil
}

// unionCutoffs merges all cutoff values across runs, sorted descending
// with duplicates removed.
func unionCutoffs(curves []perf.Curve) []float64 {
	seen := map[float64]struct{}{}
	var union []float64
	for _, c := range curves {
		for _, p := range c.Points {
			if _, ok := seen[p.Cutoff]; ok {
				continue
			}
			seen[p.Cutoff] = struct{}{}
			union = append(union, p.Cutoff)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(union)))
	return union
}

// stepLookup returns the last point whose cutoff is still >= t, i.e. the
// state holding at threshold t. Points are ordered by decreasing cutoff;
// a t above every cutoff maps to the first point.
func stepLookup(points []perf.Point, t float64) perf.Point {
	// First index with cutoff < t.
	idx := sort.Search(len(points), func(i int) bool {
		return points[i].Cutoff < t
	})
	if idx == 0 {
		return points[0]
	}
	return points[idx-1]
}

// interpolate evaluates the curve's free axis at the grid value g on the
// fixed axis. Curves need not be monotonic on the fixed axis: segments are
// scanned in curve order and the last segment containing g wins; a g
// outside the curve's range clamps to the endpoint nearest on the fixed
// axis.
func interpolate(points []perf.Point, g float64, swapAxes bool) float64 {
	axis := func(p perf.Point) (fixed, free float64) {
		if swapAxes {
			return p.Y, p.X
		}
		return p.X, p.Y
	}

	result := math.NaN()
	for i := 1; i < len(points); i++ {
		f0, v0 := axis(points[i-1])
		f1, v1 := axis(points[i])
		lo, hi := math.Min(f0, f1), math.Max(f0, f1)
		if g < lo || g > hi {
			continue
		}
		if f0 == f1 {
			result = v1
			continue
		}
		result = v0 + (g-f0)/(f1-f0)*(v1-v0)
	}
	if !math.IsNaN(result) {
		return result
	}

	// Out of range: clamp to the nearest endpoint.
	best := math.NaN()
	bestDist := math.Inf(1)
	for _, p := range points {
		f, v := axis(p)
		if d := math.Abs(f - g); d < bestDist {
			bestDist = d
			best = v
		}
	}
	return best
}
