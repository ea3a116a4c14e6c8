package average

import (
	"math"

	"github.com/montanaflynn/stats"

	"perfeval/domain/core"
	"perfeval/domain/perf"
)

// summarize computes the requested spread statistic over the per-run
// values contributing to one aggregation point.
func summarize(values []float64, mode SpreadMode) (perf.SpreadStats, error) {
	out := perf.SpreadStats{
		N:      len(values),
		StdDev: math.NaN(),
		StdErr: math.NaN(),
	}

	switch mode {
	case SpreadStdDev, SpreadStdError:
		sd, err := stats.StandardDeviationSample(values)
		if err != nil {
			return out, core.Wrap(err, "spread computation failed")
		}
		out.StdDev = sd
		if mode == SpreadStdError {
			out.StdErr = sd / math.Sqrt(float64(len(values)))
		}
	case SpreadBoxplot:
		box, err := fiveNumberSummary(values)
		if err != nil {
			return out, err
		}
		out.Box = box
	}
	return out, nil
}

// fiveNumberSummary reports min, quartiles and max of the values.
func fiveNumberSummary(values []float64) (*perf.FiveNum, error) {
	min, err := stats.Min(values)
	if err != nil {
		return nil, core.Wrap(err, "spread computation failed")
	}
	max, err := stats.Max(values)
	if err != nil {
		return nil, core.Wrap(err, "spread computation failed")
	}
	median, err := stats.Median(values)
	if err != nil {
		return nil, core.Wrap(err, "spread computation failed")
	}
	q, err := stats.Quartile(values)
	if err != nil {
		return nil, core.Wrap(err, "spread computation failed")
	}
	return &perf.FiveNum{Min: min, Q1: q.Q1, Median: median, Q3: q.Q3, Max: max}, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
