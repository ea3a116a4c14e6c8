package perf

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPointJSON_NonFiniteRoundTrip(t *testing.T) {
	in := []Point{
		{Cutoff: math.Inf(1), X: 0, Y: 0},
		{Cutoff: 0.7, X: 0.5, Y: 2.0 / 3},
		{Cutoff: math.NaN(), X: 0.25, Y: math.Inf(-1)},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out []Point
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d points, got %d", len(in), len(out))
	}

	if !math.IsInf(out[0].Cutoff, 1) {
		t.Errorf("+Inf cutoff lost: %f", out[0].Cutoff)
	}
	if out[1] != in[1] {
		t.Errorf("finite point changed: %+v", out[1])
	}
	if !math.IsNaN(out[2].Cutoff) || !math.IsInf(out[2].Y, -1) {
		t.Errorf("NaN/-Inf lost: %+v", out[2])
	}
}

func TestSpreadStatsJSON_RoundTrip(t *testing.T) {
	in := SpreadStats{
		N:      3,
		StdDev: 0.25,
		StdErr: math.NaN(),
		Box:    &FiveNum{Min: 0.1, Q1: 0.2, Median: 0.3, Q3: 0.4, Max: 0.5},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out SpreadStats
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.N != 3 || out.StdDev != 0.25 || !math.IsNaN(out.StdErr) {
		t.Errorf("scalar fields changed: %+v", out)
	}
	if out.Box == nil || *out.Box != *in.Box {
		t.Errorf("boxplot summary changed: %+v", out.Box)
	}
}
