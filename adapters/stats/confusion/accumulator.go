// Package confusion computes cumulative confusion-matrix counts for one run
// across a descending cutoff sweep in a single linear pass.
package confusion

import (
	"math"
	"sort"

	"perfeval/domain/core"
	"perfeval/domain/perf"
)

// Counts holds parallel TP/FP/TN/FN sequences over a cutoff sequence.
// Counts[i] reflects "predict positive iff score >= Cutoffs[i]".
type Counts struct {
	Cutoffs []float64
	TP      []int
	FP      []int
	TN      []int
	FN      []int

	TotalPos int
	TotalNeg int
}

func (c *Counts) Len() int { return len(c.Cutoffs) }

// NaturalCutoffs returns the cutoff sequence at which counts change: +Inf
// followed by the distinct score values in descending order.
func NaturalCutoffs(scores []float64) []float64 {
	sorted := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	cutoffs := make([]float64, 0, len(sorted)+1)
	cutoffs = append(cutoffs, math.Inf(1))
	for i, s := range sorted {
		if i > 0 && s == sorted[i-1] {
			continue
		}
		cutoffs = append(cutoffs, s)
	}
	return cutoffs
}

// Accumulate sweeps the cutoff sequence from highest to lowest over scores
// sorted descending, maintaining running TP/FP totals and deriving TN/FN
// from the class totals. All instances tied at a cutoff's exact score value
// are included together at that cutoff. A nil cutoffs argument uses the
// run's natural cutoffs.
func Accumulate(scores []float64, labels []perf.Label, cutoffs []float64) (*Counts, error) {
	if len(scores) == 0 {
		return nil, core.InvalidInput("empty score sequence")
	}
	if len(scores) != len(labels) {
		return nil, core.InvalidInputf("%d scores but %d labels", len(scores), len(labels))
	}
	for i, s := range scores {
		if math.IsNaN(s) {
			return nil, core.InvalidInputf("score %d is NaN", i)
		}
	}

	if cutoffs == nil {
		cutoffs = NaturalCutoffs(scores)
	} else {
		cutoffs = append([]float64(nil), cutoffs...)
		sort.Sort(sort.Reverse(sort.Float64Slice(cutoffs)))
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	totalPos, totalNeg := 0, 0
	for _, l := range labels {
		if l == perf.Positive {
			totalPos++
		} else {
			totalNeg++
		}
	}

	c := &Counts{
		Cutoffs:  cutoffs,
		TP:       make([]int, len(cutoffs)),
		FP:       make([]int, len(cutoffs)),
		TN:       make([]int, len(cutoffs)),
		FN:       make([]int, len(cutoffs)),
		TotalPos: totalPos,
		TotalNeg: totalNeg,
	}

	tp, fp := 0, 0
	next := 0
	for i, cut := range cutoffs {
		for next < len(order) && scores[order[next]] >= cut {
			if labels[order[next]] == perf.Positive {
				tp++
			} else {
				fp++
			}
			next++
		}
		c.TP[i] = tp
		c.FP[i] = fp
		c.FN[i] = totalPos - tp
		c.TN[i] = totalNeg - fp
	}
	return c, nil
}
