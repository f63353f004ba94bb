package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int
	NatsURL       string
	NatsToken     string
	DatabaseURL   string
	LogLevel      string
	GroqAPIKey    string
	GroqModel     string
	MaxConcurrent int
	ResultsFile   string
	ProgressFile  string
	TimeThreshold time.Duration
}

func Load() Config {
	return Config{
		Port:          envInt("CONVLENS_PORT", 8760),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		GroqAPIKey:    envStr("GROQ_API_KEY", ""),
		GroqModel:     envStr("GROQ_MODEL", "llama-3.1-8b-instant"),
		MaxConcurrent: envInt("CONVLENS_MAX_CONCURRENT", 10),
		ResultsFile:   envStr("CONVLENS_RESULTS_FILE", "conversations_data.json"),
		ProgressFile:  envStr("CONVLENS_PROGRESS_FILE", "processing_progress.json"),
		TimeThreshold: time.Duration(envInt("CONVLENS_TIME_THRESHOLD_MIN", 30)) * time.Minute,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
