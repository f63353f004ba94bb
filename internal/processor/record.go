package processor

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/CrudyLame/convlens/internal/analysis"
	"github.com/CrudyLame/convlens/internal/conv"
)

// Record is the read-only per-conversation unit the dashboard consumes.
// Analysis is nil and Error is set when the mapping failed for this
// conversation.
type Record struct {
	ID              uuid.UUID        `json:"id"`
	DialogueID      int64            `json:"dialogue_id"`
	UserID          int64            `json:"user_id"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         time.Time        `json:"end_time"`
	DurationMinutes float64          `json:"duration_minutes"`
	MessageCount    int              `json:"message_count"`
	Departments     []string         `json:"departments,omitempty"`
	AgentTypes      []conv.AgentType `json:"agent_types"`
	Summary         string           `json:"summary"`
	Analysis        *analysis.Result `json:"analysis"`
	Error           string           `json:"error,omitempty"`
}

// NewRecord builds the reporting record for one conversation.
func NewRecord(c *conv.Conversation, res *analysis.Result) Record {
	agentTypes := c.AgentTypes()
	if agentTypes == nil {
		agentTypes = []conv.AgentType{}
	}
	return Record{
		ID:              uuid.New(),
		DialogueID:      c.DialogueID,
		UserID:          c.UserID,
		StartTime:       c.StartTime,
		EndTime:         c.EndTime,
		DurationMinutes: c.DurationMinutes(),
		MessageCount:    c.MessageCount,
		Departments:     c.Departments,
		AgentTypes:      agentTypes,
		Summary:         c.Summary(),
		Analysis:        res,
	}
}

type resultsMetadata struct {
	TotalConversations   int    `json:"total_conversations"`
	ProcessedAt          string `json:"processed_at"`
	SourceFile           string `json:"source_file"`
	TimeThresholdMinutes int    `json:"time_threshold_minutes"`
}

type resultsDoc struct {
	Metadata      resultsMetadata `json:"metadata"`
	Conversations []Record        `json:"conversations"`
}

// writeResults persists the records, sorted by dialogue id so concurrent
// completion order never changes the artifact.
func writeResults(path, sourceFile string, threshold time.Duration, records []Record) error {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DialogueID < sorted[j].DialogueID })

	doc := resultsDoc{
		Metadata: resultsMetadata{
			TotalConversations:   len(sorted),
			ProcessedAt:          time.Now().UTC().Format(time.RFC3339),
			SourceFile:           sourceFile,
			TimeThresholdMinutes: int(threshold.Minutes()),
		},
		Conversations: sorted,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
