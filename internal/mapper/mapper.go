package mapper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CrudyLame/convlens/internal/analysis"
	"github.com/CrudyLame/convlens/internal/conv"
)

const maxTokens = 512

// LLM is the completion capability the mapper calls through. Retry and rate
// limiting belong to the implementation, not here.
type LLM interface {
	CompleteJSON(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// MappingFailedError reports that the classification call for one
// conversation failed or returned an unusable response. It carries the
// dialogue identifier so the batch runner can record, retry, or skip that
// conversation without touching its siblings.
type MappingFailedError struct {
	DialogueID int64
	Err        error
}

func (e *MappingFailedError) Error() string {
	return fmt.Sprintf("dialogue %d: mapping failed: %v", e.DialogueID, e.Err)
}

func (e *MappingFailedError) Unwrap() error {
	return e.Err
}

// Mapper turns a conversation into one LLM classification call and parses
// the structured result.
type Mapper struct {
	llm    LLM
	logger *slog.Logger
}

func New(llm LLM, logger *slog.Logger) *Mapper {
	return &Mapper{llm: llm, logger: logger}
}

// Map classifies one conversation. The prompt is built from the user-only
// view: agent and system block text never leaves the process. Any failure
// (transport, rate-limit exhaustion, schema-invalid response) surfaces as a
// MappingFailedError; there is no default classification.
func (m *Mapper) Map(ctx context.Context, c *conv.Conversation) (*analysis.Result, error) {
	prompt := fmt.Sprintf(analysisUserPrompt, c.DurationMinutes(), c.MessageCount, c.UserText())

	m.logger.Debug("mapping conversation",
		"dialogue_id", c.DialogueID,
		"user_text_len", len(c.UserText()),
	)

	raw, err := m.llm.CompleteJSON(ctx, systemPrompt, prompt, maxTokens)
	if err != nil {
		return nil, &MappingFailedError{DialogueID: c.DialogueID, Err: err}
	}

	result, err := analysis.Parse([]byte(raw))
	if err != nil {
		m.logger.Error("unparseable analysis response",
			"dialogue_id", c.DialogueID,
			"error", err,
			"raw", raw,
		)
		return nil, &MappingFailedError{DialogueID: c.DialogueID, Err: err}
	}

	return result, nil
}
