// Package config loads the application configuration from environment
// variables.
package config

import (
	"os"
	"strconv"

	"perfeval/domain/core"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	Eval     EvalConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional evaluation-store connection settings.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// DataConfig holds default input-file settings.
type DataConfig struct {
	File        string
	ScoreColumn string
	LabelColumn string
	RunColumn   string
}

// EvalConfig holds default measure parameters.
type EvalConfig struct {
	FAlpha    float64
	CostFP    float64
	CostFN    float64
	CalWindow int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PERFEVAL_PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("PERFEVAL_DATABASE_URL"),
		},
		Data: DataConfig{
			File:        os.Getenv("PERFEVAL_DATA_FILE"),
			ScoreColumn: getEnv("PERFEVAL_SCORE_COLUMN", "score"),
			LabelColumn: getEnv("PERFEVAL_LABEL_COLUMN", "label"),
			RunColumn:   os.Getenv("PERFEVAL_RUN_COLUMN"),
		},
		Eval: EvalConfig{
			FAlpha:    0.5,
			CostFP:    1,
			CostFN:    1,
			CalWindow: 100,
		},
	}
	cfg.Database.Enabled = cfg.Database.URL != ""

	if v := os.Getenv("PERFEVAL_F_ALPHA"); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil || alpha <= 0 || alpha >= 1 {
			return nil, core.ConfigInvalid("PERFEVAL_F_ALPHA must be a number in (0,1)")
		}
		cfg.Eval.FAlpha = alpha
	}
	if v := os.Getenv("PERFEVAL_COST_FP"); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil || cost < 0 {
			return nil, core.ConfigInvalid("PERFEVAL_COST_FP must be a non-negative number")
		}
		cfg.Eval.CostFP = cost
	}
	if v := os.Getenv("PERFEVAL_COST_FN"); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil || cost < 0 {
			return nil, core.ConfigInvalid("PERFEVAL_COST_FN must be a non-negative number")
		}
		cfg.Eval.CostFN = cost
	}
	if v := os.Getenv("PERFEVAL_CAL_WINDOW"); v != "" {
		window, err := strconv.Atoi(v)
		if err != nil || window < 1 {
			return nil, core.ConfigInvalid("PERFEVAL_CAL_WINDOW must be a positive integer")
		}
		cfg.Eval.CalWindow = window
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
