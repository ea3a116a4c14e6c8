// Package perf holds the immutable value types of the evaluation core:
// per-run predictions, computed curves and aggregate performance results.
package perf

import (
	"math"
	"sort"
	"strconv"

	"perfeval/domain/core"
)

// Label is the canonical binary class encoding.
type Label int8

const (
	Negative Label = iota
	Positive
)

// RawRun is one fold of raw classifier output: scores paired with the
// original label values, exactly as supplied by the caller.
type RawRun struct {
	Scores []float64
	Labels []string
}

// Run is one validated fold with labels normalized to {Negative, Positive}.
// Treat the returned slices as read-only.
type Run struct {
	scores []float64
	labels []Label
	nPos   int
	nNeg   int
}

func (r *Run) Len() int           { return len(r.scores) }
func (r *Run) Scores() []float64  { return r.scores }
func (r *Run) Labels() []Label    { return r.labels }
func (r *Run) Positives() int     { return r.nPos }
func (r *Run) Negatives() int     { return r.nNeg }

// Prediction owns one or more validated runs. It is created once and never
// mutated afterwards.
type Prediction struct {
	id       core.ID
	runs     []Run
	negLabel string
	posLabel string
}

// NewPrediction validates the given runs and normalizes label polarity.
//
// Polarity is inferred deterministically: when both observed label values
// parse as numbers the larger number is positive, otherwise the
// lexicographically larger value is positive. Use NewPredictionOrdered to
// supply the ordering explicitly.
func NewPrediction(runs []RawRun) (*Prediction, error) {
	return newPrediction(runs, "", "")
}

// NewPredictionOrdered is like NewPrediction but with an explicit label
// ordering (negative first, positive second).
func NewPredictionOrdered(runs []RawRun, negative, positive string) (*Prediction, error) {
	if negative == positive {
		return nil, core.InvalidInput("label ordering must name two distinct values")
	}
	return newPrediction(runs, negative, positive)
}

func newPrediction(raw []RawRun, negative, positive string) (*Prediction, error) {
	if len(raw) == 0 {
		return nil, core.InvalidInput("prediction requires at least one run")
	}

	distinct := map[string]struct{}{}
	for i, r := range raw {
		if len(r.Scores) == 0 {
			return nil, core.InvalidInputf("run %d: empty score sequence", i)
		}
		if len(r.Scores) != len(r.Labels) {
			return nil, core.InvalidInputf("run %d: %d scores but %d labels", i, len(r.Scores), len(r.Labels))
		}
		for j, s := range r.Scores {
			if math.IsNaN(s) || math.IsInf(s, 0) {
				return nil, core.InvalidInputf("run %d: score %d is not finite", i, j)
			}
		}
		for _, l := range r.Labels {
			distinct[l] = struct{}{}
		}
	}
	if len(distinct) != 2 {
		return nil, core.InvalidInputf("expected exactly 2 label classes, found %d", len(distinct))
	}

	values := make([]string, 0, 2)
	for v := range distinct {
		values = append(values, v)
	}
	sort.Strings(values)
	neg, pos := orderLabelValues(values[0], values[1])

	if negative != "" || positive != "" {
		if _, ok := distinct[negative]; !ok {
			return nil, core.InvalidInputf("ordering names unobserved label %q", negative)
		}
		if _, ok := distinct[positive]; !ok {
			return nil, core.InvalidInputf("ordering names unobserved label %q", positive)
		}
		neg, pos = negative, positive
	}

	runs := make([]Run, len(raw))
	for i, r := range raw {
		run := Run{
			scores: append([]float64(nil), r.Scores...),
			labels: make([]Label, len(r.Labels)),
		}
		for j, l := range r.Labels {
			if l == pos {
				run.labels[j] = Positive
				run.nPos++
			} else {
				run.labels[j] = Negative
				run.nNeg++
			}
		}
		if run.nPos == 0 || run.nNeg == 0 {
			return nil, core.InvalidInputf("run %d: both label classes must be present", i)
		}
		runs[i] = run
	}

	return &Prediction{
		id:       core.NewID(),
		runs:     runs,
		negLabel: neg,
		posLabel: pos,
	}, nil
}

// orderLabelValues orders two raw label values, numerically when both parse
// as numbers and lexicographically otherwise. The larger value is positive.
func orderLabelValues(a, b string) (neg, pos string) {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		if fa < fb {
			return a, b
		}
		return b, a
	}
	if a < b {
		return a, b
	}
	return b, a
}

func (p *Prediction) ID() core.ID           { return p.id }
func (p *Prediction) NumRuns() int          { return len(p.runs) }
func (p *Prediction) Run(i int) *Run        { return &p.runs[i] }
func (p *Prediction) PositiveLabel() string { return p.posLabel }
func (p *Prediction) NegativeLabel() string { return p.negLabel }
