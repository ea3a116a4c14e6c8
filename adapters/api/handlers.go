package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"perfeval/adapters/stats/average"
	"perfeval/adapters/stats/measures"
	"perfeval/app"
	"perfeval/domain/core"
	"perfeval/domain/perf"
)

// evaluateRequest is the wire form of one evaluation call.
type evaluateRequest struct {
	Runs []struct {
		Scores []float64 `json:"scores"`
		Labels []string  `json:"labels"`
	} `json:"runs"`
	NegativeLabel string    `json:"negative_label,omitempty"`
	PositiveLabel string    `json:"positive_label,omitempty"`
	XMeasure      string    `json:"x_measure"`
	YMeasure      string    `json:"y_measure"`
	Cutoffs       []float64 `json:"cutoffs,omitempty"`
	Alpha         *float64  `json:"alpha,omitempty"`
	CostFP        *float64  `json:"cost_fp,omitempty"`
	CostFN        *float64  `json:"cost_fn,omitempty"`
	CalWindow     *int      `json:"cal_window,omitempty"`
	Averaging     string    `json:"averaging,omitempty"`
	Spread        string    `json:"spread,omitempty"`
}

type evaluateResponse struct {
	ID       string              `json:"id"`
	XMeasure string              `json:"x_measure"`
	YMeasure string              `json:"y_measure"`
	NumRuns  int                 `json:"num_runs"`
	Curves   []perf.Curve        `json:"curves"`
	Averaged *perf.AveragedCurve `json:"averaged,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMeasures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, measures.Catalog())
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.InvalidInput("malformed request body"))
		return
	}

	mode, err := average.ParseMode(req.Averaging)
	if err != nil {
		writeError(w, err)
		return
	}
	spread, err := average.ParseSpreadMode(req.Spread)
	if err != nil {
		writeError(w, err)
		return
	}

	runs := make([]perf.RawRun, len(req.Runs))
	for i, raw := range req.Runs {
		runs[i] = perf.RawRun{Scores: raw.Scores, Labels: raw.Labels}
	}

	params := measures.DefaultParams()
	if req.Alpha != nil {
		params.Alpha = *req.Alpha
	}
	if req.CostFP != nil {
		params.CostFP = *req.CostFP
	}
	if req.CostFN != nil {
		params.CostFN = *req.CostFN
	}
	if req.CalWindow != nil {
		params.CalWindow = *req.CalWindow
	}

	result, err := s.service.Evaluate(r.Context(), app.EvaluationRequest{
		Runs:          runs,
		NegativeLabel: req.NegativeLabel,
		PositiveLabel: req.PositiveLabel,
		XMeasure:      req.XMeasure,
		YMeasure:      req.YMeasure,
		Cutoffs:       req.Cutoffs,
		Params:        &params,
		Averaging:     mode,
		Spread:        spread,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		ID:       string(result.ID()),
		XMeasure: result.XMeasure(),
		YMeasure: result.YMeasure(),
		NumRuns:  result.NumRuns(),
		Curves:   result.Curves(),
		Averaged: result.Averaged(),
	})
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.repo.GetByID(r.Context(), core.EvaluationID(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, core.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}
	recs, err := s.repo.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := core.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case core.CodeInvalidInput, core.CodeUndefinedMeasure, core.CodeDomainError,
		core.CodeMeasureMismatch, core.CodeIncompatibleCurves, core.CodeEmptyInput:
		status = http.StatusBadRequest
	case core.CodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"code": code, "error": err.Error()})
}
