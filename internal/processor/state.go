package processor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunState tracks progress of a batch run. It is persisted alongside the
// results file so an interrupted run can be inspected, and it backs the
// progress endpoint.
type RunState struct {
	StartedAt       time.Time `json:"started_at"`
	LastProcessedAt time.Time `json:"last_processed_at"`
	Total           int       `json:"total"`
	Processed       int       `json:"processed"`
	Succeeded       int       `json:"succeeded"`
	Failed          int       `json:"failed"`
	Errors          []string  `json:"errors"`
}

func (s *RunState) addError(msg string) {
	s.Errors = append(s.Errors, msg)
}

func (s RunState) save(path string) error {
	s.LastProcessedAt = time.Now().UTC()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
