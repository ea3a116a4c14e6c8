// Package measures is the static catalog of classifier-performance
// measures and the evaluator that turns one run's confusion counts into a
// performance curve for any supported measure pair.
package measures

import (
	"sort"

	"perfeval/adapters/stats/confusion"
	"perfeval/domain/core"
	"perfeval/domain/perf"
)

// Kind classifies how a measure is computed.
type Kind int

const (
	// KindPoint measures are pure functions of the confusion counts at one
	// cutoff and stream over the cutoff sequence.
	KindPoint Kind = iota
	// KindScalar measures reduce the whole run to a single value (auc,
	// prbe, rmse).
	KindScalar
	// KindTransform measures replace the cutoff-parametrized curve with a
	// derived one (rch, cal, ecost).
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindTransform:
		return "transform"
	default:
		return "point"
	}
}

// Params carries the tunable parameters some measures accept. Every field
// is taken literally; callers who only want to adjust one knob should start
// from DefaultParams and override it. A zero CostFP is a valid cost, not a
// request for the default.
type Params struct {
	// Alpha weights precision against recall in the f measure; 0.5 is the
	// balanced F1.
	Alpha float64
	// CostFP and CostFN weight the two error kinds in cost and ecost.
	CostFP float64
	CostFN float64
	// CalWindow is the moving-window size of the calibration error.
	CalWindow int
}

// DefaultParams returns the documented measure defaults.
func DefaultParams() Params {
	return Params{Alpha: 0.5, CostFP: 1, CostFN: 1, CalWindow: 100}
}

// Point is the confusion state at one cutoff, with class totals.
type Point struct {
	TP, FP, TN, FN float64
	Cutoff         float64
	Pos, Neg       float64
}

func (p Point) total() float64 { return p.Pos + p.Neg }

// RunView is the full-run context handed to scalar and transform measures,
// and to pointwise measures that need run-level statistics.
type RunView struct {
	Scores []float64
	Labels []perf.Label
	Counts *confusion.Counts

	// Populated only for measures with NeedsRunStats.
	AUC  float64
	RMSE float64
}

// Spec is one registry entry.
type Spec struct {
	Name        string
	Description string
	Kind        Kind

	// Bounded restricts the valid cutoff domain to [0,1] (measures with a
	// probabilistic reading of the score).
	Bounded bool

	// PartnerX names the x axis a transform measure produces; pairing a
	// transform with any other x measure is a mismatch.
	PartnerX string

	// NeedsRunStats requests AUC and RMSE on the RunView.
	NeedsRunStats bool

	Eval      func(p Point, v *RunView, prm Params) float64
	Scalar    func(v *RunView, prm Params) (cutoff, value float64, err error)
	Transform func(v *RunView, prm Params) ([]perf.Point, error)
}

var registry = map[string]*Spec{}

func register(s *Spec, aliases ...string) {
	registry[s.Name] = s
	for _, a := range aliases {
		registry[a] = s
	}
}

// Lookup resolves a measure identifier, including aliases.
func Lookup(name string) (*Spec, error) {
	s, ok := registry[name]
	if !ok {
		return nil, core.UndefinedMeasure(name)
	}
	return s, nil
}

// Names returns every registered identifier, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// CatalogEntry describes one identifier for external callers.
type CatalogEntry struct {
	Name        string `json:"name"`
	Canonical   string `json:"canonical"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Bounded     bool   `json:"bounded,omitempty"`
}

// Catalog lists the measure name surface, sorted by identifier.
func Catalog() []CatalogEntry {
	names := Names()
	out := make([]CatalogEntry, 0, len(names))
	for _, n := range names {
		s := registry[n]
		out = append(out, CatalogEntry{
			Name:        n,
			Canonical:   s.Name,
			Description: s.Description,
			Kind:        s.Kind.String(),
			Bounded:     s.Bounded,
		})
	}
	return out
}
