package perf

import (
	"encoding/json"
	"math"
	"strconv"
)

// Curves legitimately contain non-finite values: the boundary cutoff is
// +Inf and undefined measure values are NaN. encoding/json rejects those,
// so Point and SpreadStats encode them as the strings "NaN", "Infinity"
// and "-Infinity".

func encodeFloat(f float64) interface{} {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return math.NaN(), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	err := json.Unmarshal(raw, &f)
	return f, err
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"cutoff": encodeFloat(p.Cutoff),
		"x":      encodeFloat(p.X),
		"y":      encodeFloat(p.Y),
	})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw struct {
		Cutoff json.RawMessage `json:"cutoff"`
		X      json.RawMessage `json:"x"`
		Y      json.RawMessage `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if p.Cutoff, err = decodeFloat(raw.Cutoff); err != nil {
		return err
	}
	if p.X, err = decodeFloat(raw.X); err != nil {
		return err
	}
	p.Y, err = decodeFloat(raw.Y)
	return err
}

func (s SpreadStats) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"n":      s.N,
		"stddev": encodeFloat(s.StdDev),
		"stderr": encodeFloat(s.StdErr),
	}
	if s.Box != nil {
		out["box"] = s.Box
	}
	return json.Marshal(out)
}

func (s *SpreadStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		N      int             `json:"n"`
		StdDev json.RawMessage `json:"stddev"`
		StdErr json.RawMessage `json:"stderr"`
		Box    *FiveNum        `json:"box"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.N = raw.N
	s.Box = raw.Box
	var err error
	if s.StdDev, err = decodeFloat(raw.StdDev); err != nil {
		return err
	}
	s.StdErr, err = decodeFloat(raw.StdErr)
	return err
}
