package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"CONVLENS_PORT", "NATS_URL", "NATS_TOKEN", "DATABASE_URL", "LOG_LEVEL",
		"GROQ_API_KEY", "GROQ_MODEL", "CONVLENS_MAX_CONCURRENT",
		"CONVLENS_RESULTS_FILE", "CONVLENS_PROGRESS_FILE", "CONVLENS_TIME_THRESHOLD_MIN",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != 8760 {
		t.Errorf("Port = %d, want 8760", cfg.Port)
	}
	if cfg.GroqModel != "llama-3.1-8b-instant" {
		t.Errorf("GroqModel = %q", cfg.GroqModel)
	}
	if cfg.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", cfg.MaxConcurrent)
	}
	if cfg.ResultsFile != "conversations_data.json" {
		t.Errorf("ResultsFile = %q", cfg.ResultsFile)
	}
	if cfg.TimeThreshold != 30*time.Minute {
		t.Errorf("TimeThreshold = %v, want 30m", cfg.TimeThreshold)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONVLENS_PORT", "9100")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("CONVLENS_MAX_CONCURRENT", "4")
	t.Setenv("CONVLENS_TIME_THRESHOLD_MIN", "15")

	cfg := Load()

	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if cfg.GroqAPIKey != "gsk-test" {
		t.Errorf("GroqAPIKey = %q", cfg.GroqAPIKey)
	}
	if cfg.MaxConcurrent != 4 {
		t.Errorf("MaxConcurrent = %d, want 4", cfg.MaxConcurrent)
	}
	if cfg.TimeThreshold != 15*time.Minute {
		t.Errorf("TimeThreshold = %v, want 15m", cfg.TimeThreshold)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("CONVLENS_MAX_CONCURRENT", "lots")
	cfg := Load()
	if cfg.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want fallback 10", cfg.MaxConcurrent)
	}
}
