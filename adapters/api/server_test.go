package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"perfeval/app"
	"perfeval/domain/core"
)

func newTestServer() *Server {
	service := app.NewEvaluationService(nil, nil, nil)
	return NewServer(service, nil, nil)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleListMeasures(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/measures", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var catalog []struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("decoding catalog: %v", err)
	}
	found := map[string]bool{}
	for _, e := range catalog {
		found[e.Name] = true
	}
	for _, name := range []string{"tpr", "fpr", "auc", "cal", "sens"} {
		if !found[name] {
			t.Errorf("catalog missing %q", name)
		}
	}
}

func TestHandleEvaluate(t *testing.T) {
	srv := newTestServer()

	body := map[string]interface{}{
		"runs": []map[string]interface{}{
			{
				"scores": []float64{0.9, 0.8, 0.7, 0.6, 0.5},
				"labels": []string{"1", "1", "0", "1", "0"},
			},
			{
				"scores": []float64{0.95, 0.4, 0.85, 0.3},
				"labels": []string{"1", "0", "1", "0"},
			},
		},
		"x_measure": "fpr",
		"y_measure": "tpr",
		"averaging": "threshold",
		"spread":    "stddev",
	}
	raw, _ := json.Marshal(body)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/evaluate", bytes.NewReader(raw)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID       string `json:"id"`
		XMeasure string `json:"x_measure"`
		NumRuns  int    `json:"num_runs"`
		Curves   []struct {
			Points []map[string]interface{} `json:"points"`
		} `json:"curves"`
		Averaged *struct {
			Mode   string                   `json:"mode"`
			Points []map[string]interface{} `json:"points"`
		} `json:"averaged"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ID == "" {
		t.Error("response should carry an evaluation id")
	}
	if resp.NumRuns != 2 || len(resp.Curves) != 2 {
		t.Errorf("expected 2 runs, got %d/%d", resp.NumRuns, len(resp.Curves))
	}
	if resp.Averaged == nil || resp.Averaged.Mode != "threshold" {
		t.Errorf("expected a threshold-averaged curve, got %+v", resp.Averaged)
	}
	// The boundary cutoff is the string "Infinity" on the wire.
	if got := resp.Curves[0].Points[0]["cutoff"]; got != "Infinity" {
		t.Errorf("boundary cutoff on the wire: got %v", got)
	}
}

func TestHandleEvaluate_ExplicitZeroCost(t *testing.T) {
	srv := newTestServer()

	body := `{
		"runs": [{"scores": [0.9, 0.8, 0.7, 0.6, 0.5], "labels": ["1", "1", "0", "1", "0"]}],
		"y_measure": "cost",
		"cost_fp": 0,
		"cost_fn": 1
	}`

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/evaluate", bytes.NewBufferString(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Curves []struct {
			Points []struct {
				Cutoff interface{} `json:"cutoff"`
				Y      float64     `json:"y"`
			} `json:"points"`
		} `json:"curves"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(resp.Curves))
	}
	for _, p := range resp.Curves[0].Points {
		c, ok := p.Cutoff.(float64)
		if !ok || c != 0.7 {
			continue
		}
		// fnr * P/n with a free false positive: (1/3) * 0.6.
		if math.Abs(p.Y-0.2) > 1e-12 {
			t.Fatalf("cost with cost_fp=0 at cutoff 0.7: got %f, want 0.2", p.Y)
		}
		return
	}
	t.Fatal("no point at cutoff 0.7")
}

func TestHandleEvaluate_BadRequests(t *testing.T) {
	srv := newTestServer()

	cases := map[string]struct {
		body string
		code string
	}{
		"malformed json": {
			body: "{not json",
			code: core.CodeInvalidInput,
		},
		"unknown measure": {
			body: `{"runs":[{"scores":[0.9,0.1],"labels":["1","0"]}],"y_measure":"nope"}`,
			code: core.CodeUndefinedMeasure,
		},
		"one class": {
			body: `{"runs":[{"scores":[0.9,0.1],"labels":["1","1"]}],"y_measure":"acc"}`,
			code: core.CodeInvalidInput,
		},
		"scalar with x axis": {
			body: `{"runs":[{"scores":[0.9,0.1],"labels":["1","0"]}],"x_measure":"fpr","y_measure":"auc"}`,
			code: core.CodeMeasureMismatch,
		},
		"cutoff out of domain": {
			body: `{"runs":[{"scores":[0.9,0.1],"labels":["1","0"]}],"y_measure":"cal","cutoffs":[1.5]}`,
			code: core.CodeDomainError,
		},
		"unknown averaging mode": {
			body: `{"runs":[{"scores":[0.9,0.1],"labels":["1","0"]}],"y_measure":"acc","averaging":"diagonal"}`,
			code: core.CodeInvalidInput,
		},
	}

	for name, tc := range cases {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/evaluate", bytes.NewBufferString(tc.body)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
			continue
		}
		var resp struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Errorf("%s: decoding error body: %v", name, err)
			continue
		}
		if resp.Code != tc.code {
			t.Errorf("%s: expected code %s, got %s", name, tc.code, resp.Code)
		}
	}
}

func TestEvaluationRoutes_AbsentWithoutRepository(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evaluations", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a repository, got %d", rec.Code)
	}
}
