package measures

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Pointwise measure formulas. Division by zero follows IEEE semantics: a
// formula whose denominator vanishes yields NaN (or Inf for ratio measures
// like odds), which propagates into the curve instead of crashing.

func init() {
	register(&Spec{
		Name:        "acc",
		Description: "accuracy: (TP+TN)/(P+N)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return (p.TP + p.TN) / p.total()
		},
	})
	register(&Spec{
		Name:        "err",
		Description: "error rate: (FP+FN)/(P+N)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return (p.FP + p.FN) / p.total()
		},
	})
	register(&Spec{
		Name:        "tpr",
		Description: "true positive rate, sensitivity, recall: TP/P",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return p.TP / p.Pos
		},
	}, "sens", "rec")
	register(&Spec{
		Name:        "tnr",
		Description: "true negative rate, specificity: TN/N",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return p.TN / p.Neg
		},
	}, "spec")
	register(&Spec{
		Name:        "fpr",
		Description: "false positive rate, fallout: FP/N",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return p.FP / p.Neg
		},
	}, "fall")
	register(&Spec{
		Name:        "fnr",
		Description: "false negative rate, miss: FN/P",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return p.FN / p.Pos
		},
	}, "miss")
	register(&Spec{
		Name:        "ppv",
		Description: "positive predictive value, precision: TP/(TP+FP)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return p.TP / (p.TP + p.FP)
		},
	}, "prec")
	register(&Spec{
		Name:        "npv",
		Description: "negative predictive value: TN/(TN+FN)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return p.TN / (p.TN + p.FN)
		},
	})
	register(&Spec{
		Name:        "pcfall",
		Description: "prediction-conditioned fallout: FP/(TP+FP)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return p.FP / (p.TP + p.FP)
		},
	})
	register(&Spec{
		Name:        "pcmiss",
		Description: "prediction-conditioned miss: FN/(TN+FN)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return p.FN / (p.TN + p.FN)
		},
	})
	register(&Spec{
		Name:        "rpp",
		Description: "rate of positive predictions: (TP+FP)/(P+N)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return (p.TP + p.FP) / p.total()
		},
	})
	register(&Spec{
		Name:        "rnp",
		Description: "rate of negative predictions: (TN+FN)/(P+N)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return (p.TN + p.FN) / p.total()
		},
	})
	register(&Spec{
		Name:        "phi",
		Description: "phi / Matthews correlation coefficient",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return (p.TP*p.TN - p.FP*p.FN) /
				math.Sqrt(p.Pos*p.Neg*(p.TP+p.FP)*(p.TN+p.FN))
		},
	}, "mat")
	register(&Spec{
		Name:        "mi",
		Description: "mutual information of the confusion table, in bits",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return mutualInformation(p)
		},
	})
	register(&Spec{
		Name:        "chisq",
		Description: "chi-squared statistic of the confusion table",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return chiSquared(p)
		},
	})
	register(&Spec{
		Name:        "odds",
		Description: "odds ratio: (TP*TN)/(FN*FP)",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return (p.TP * p.TN) / (p.FN * p.FP)
		},
	})
	register(&Spec{
		Name:        "lift",
		Description: "lift: (TP/P)/((TP+FP)/(P+N))",
		Eval: func(p Point, _ *RunView, _ Params) float64 {
			return (p.TP / p.Pos) / ((p.TP + p.FP) / p.total())
		},
	})
	register(&Spec{
		Name:        "f",
		Description: "F measure: 1/(alpha/prec + (1-alpha)/rec), alpha 0.5",
		Eval: func(p Point, _ *RunView, prm Params) float64 {
			prec := p.TP / (p.TP + p.FP)
			rec := p.TP / p.Pos
			return 1 / (prm.Alpha/prec + (1-prm.Alpha)/rec)
		},
	})
	register(&Spec{
		Name:        "cost",
		Description: "explicit cost: cost.fp*FPR*N/(P+N) + cost.fn*FNR*P/(P+N)",
		Eval: func(p Point, _ *RunView, prm Params) float64 {
			fpr := p.FP / p.Neg
			fnr := p.FN / p.Pos
			return prm.CostFP*fpr*(p.Neg/p.total()) + prm.CostFN*fnr*(p.Pos/p.total())
		},
	})
	register(&Spec{
		Name:          "sar",
		Description:   "SAR: (accuracy + AUC + (1-RMSE))/3",
		Bounded:       true,
		NeedsRunStats: true,
		Eval: func(p Point, v *RunView, _ Params) float64 {
			acc := (p.TP + p.TN) / p.total()
			return (acc + v.AUC + (1 - v.RMSE)) / 3
		},
	})
}

// mutualInformation computes I(truth; prediction) over the 2x2 confusion
// table, in bits. Empty cells contribute zero.
func mutualInformation(p Point) float64 {
	n := p.total()
	rows := [2]float64{p.Pos, p.Neg}                       // truth margins
	cols := [2]float64{p.TP + p.FP, p.TN + p.FN}           // prediction margins
	cells := [2][2]float64{{p.TP, p.FN}, {p.FP, p.TN}}     // truth x prediction
	mi := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cells[i][j] == 0 {
				continue
			}
			pij := cells[i][j] / n
			mi += pij * math.Log2(pij/((rows[i]/n)*(cols[j]/n)))
		}
	}
	return mi
}

// chiSquared computes the chi-squared statistic of the 2x2 confusion table
// against independence of truth and prediction.
func chiSquared(p Point) float64 {
	n := p.total()
	rows := [2]float64{p.Pos, p.Neg}
	cols := [2]float64{p.TP + p.FP, p.TN + p.FN}
	cells := [2][2]float64{{p.TP, p.FN}, {p.FP, p.TN}}
	stat := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			expected := rows[i] * cols[j] / n
			if expected == 0 {
				return math.NaN()
			}
			d := cells[i][j] - expected
			stat += d * d / expected
		}
	}
	return stat
}

// ChiSquaredSignificance converts a 2x2-table chi-squared statistic into a
// p-value (one degree of freedom).
func ChiSquaredSignificance(statistic float64) float64 {
	if math.IsNaN(statistic) || statistic < 0 {
		return math.NaN()
	}
	dist := distuv.ChiSquared{K: 1}
	return 1 - dist.CDF(statistic)
}
