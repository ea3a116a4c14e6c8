package config

import (
	"testing"

	"perfeval/domain/core"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("default port: got %q", cfg.Server.Port)
	}
	if cfg.Database.Enabled {
		t.Error("database should be disabled without a URL")
	}
	if cfg.Data.ScoreColumn != "score" || cfg.Data.LabelColumn != "label" {
		t.Errorf("default columns: got %q/%q", cfg.Data.ScoreColumn, cfg.Data.LabelColumn)
	}
	if cfg.Eval.FAlpha != 0.5 || cfg.Eval.CalWindow != 100 {
		t.Errorf("default eval params: got %+v", cfg.Eval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PERFEVAL_PORT", "9999")
	t.Setenv("PERFEVAL_DATABASE_URL", "postgres://localhost/perfeval")
	t.Setenv("PERFEVAL_SCORE_COLUMN", "prob")
	t.Setenv("PERFEVAL_F_ALPHA", "0.25")
	t.Setenv("PERFEVAL_COST_FP", "0")
	t.Setenv("PERFEVAL_COST_FN", "2.5")
	t.Setenv("PERFEVAL_CAL_WINDOW", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("port override: got %q", cfg.Server.Port)
	}
	if !cfg.Database.Enabled {
		t.Error("database should be enabled with a URL")
	}
	if cfg.Data.ScoreColumn != "prob" {
		t.Errorf("score column override: got %q", cfg.Data.ScoreColumn)
	}
	if cfg.Eval.FAlpha != 0.25 || cfg.Eval.CalWindow != 50 {
		t.Errorf("eval overrides: got %+v", cfg.Eval)
	}
	// An explicit zero cost is a valid setting, not a fallback trigger.
	if cfg.Eval.CostFP != 0 || cfg.Eval.CostFN != 2.5 {
		t.Errorf("cost overrides: got %+v", cfg.Eval)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("PERFEVAL_F_ALPHA", "1.5")
	if _, err := Load(); !core.HasCode(err, core.CodeConfigInvalid) {
		t.Errorf("alpha 1.5: expected %s, got %v", core.CodeConfigInvalid, err)
	}

	t.Setenv("PERFEVAL_F_ALPHA", "0.5")
	t.Setenv("PERFEVAL_CAL_WINDOW", "0")
	if _, err := Load(); !core.HasCode(err, core.CodeConfigInvalid) {
		t.Errorf("window 0: expected %s, got %v", core.CodeConfigInvalid, err)
	}

	t.Setenv("PERFEVAL_CAL_WINDOW", "50")
	t.Setenv("PERFEVAL_COST_FP", "-1")
	if _, err := Load(); !core.HasCode(err, core.CodeConfigInvalid) {
		t.Errorf("negative cost: expected %s, got %v", core.CodeConfigInvalid, err)
	}
}
