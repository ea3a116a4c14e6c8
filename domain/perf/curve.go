package perf

import (
	"strconv"

	"perfeval/domain/core"
)

// Point is one curve sample: the cutoff and the x/y measure values holding
// when instances with score >= cutoff are predicted positive.
type Point struct {
	Cutoff float64 `json:"cutoff"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Curve is one run's performance curve for a fixed (x-measure, y-measure)
// pair, ordered by decreasing cutoff. Immutable once computed.
type Curve struct {
	XMeasure string  `json:"x_measure"`
	YMeasure string  `json:"y_measure"`
	Points   []Point `json:"points"`
}

func (c Curve) Len() int { return len(c.Points) }

// Cutoffs returns the curve's alpha values in point order.
func (c Curve) Cutoffs() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Cutoff
	}
	return out
}

// XValues returns the x coordinates in point order.
func (c Curve) XValues() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.X
	}
	return out
}

// YValues returns the y coordinates in point order.
func (c Curve) YValues() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Y
	}
	return out
}

// FiveNum is the five-number boxplot summary of the per-run values at one
// aggregation point.
type FiveNum struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// SpreadStats summarizes cross-run variability at one averaged point.
// StdDev and StdErr are NaN unless the corresponding mode was requested;
// Box is nil unless the boxplot mode was requested.
type SpreadStats struct {
	N      int      `json:"n"`
	StdDev float64  `json:"stddev"`
	StdErr float64  `json:"stderr"`
	Box    *FiveNum `json:"box,omitempty"`
}

// AveragedCurve is the reduction of N per-run curves into one curve plus a
// per-point spread estimate. Cutoff is NaN for points produced by vertical
// or horizontal averaging, which align on a value grid rather than cutoffs.
type AveragedCurve struct {
	XMeasure string        `json:"x_measure"`
	YMeasure string        `json:"y_measure"`
	Mode     string        `json:"mode"`
	Points   []Point       `json:"points"`
	Spread   []SpreadStats `json:"spread,omitempty"`
}

// Performance aggregates the evaluation of one Prediction: one curve per
// run, the measure pair, and optionally an averaged curve. Never mutated
// after creation.
type Performance struct {
	id       core.EvaluationID
	xMeasure string
	yMeasure string
	curves   []Curve
	averaged *AveragedCurve
}

// NewPerformance creates a performance result from per-run curves.
func NewPerformance(xMeasure, yMeasure string, curves []Curve) (*Performance, error) {
	if len(curves) == 0 {
		return nil, core.EmptyInput("performance requires at least one curve")
	}
	for i, c := range curves {
		if c.XMeasure != xMeasure || c.YMeasure != yMeasure {
			return nil, core.IncompatibleCurves(
				"curve " + strconv.Itoa(i) + " does not carry the requested measure pair")
		}
	}
	return &Performance{
		id:       core.EvaluationID(core.NewID()),
		xMeasure: xMeasure,
		yMeasure: yMeasure,
		curves:   curves,
	}, nil
}

// WithAveraged returns a copy of p carrying the averaged curve.
func (p *Performance) WithAveraged(avg *AveragedCurve) *Performance {
	out := *p
	out.averaged = avg
	return &out
}

func (p *Performance) ID() core.EvaluationID    { return p.id }
func (p *Performance) XMeasure() string         { return p.xMeasure }
func (p *Performance) YMeasure() string         { return p.yMeasure }
func (p *Performance) NumRuns() int             { return len(p.curves) }
func (p *Performance) Curve(i int) Curve        { return p.curves[i] }
func (p *Performance) Curves() []Curve          { return p.curves }
func (p *Performance) Averaged() *AveragedCurve { return p.averaged }

// AlphaValues returns run i's cutoff sequence.
func (p *Performance) AlphaValues(i int) []float64 {
	return p.curves[i].Cutoffs()
}
