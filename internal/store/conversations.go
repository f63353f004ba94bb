package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/CrudyLame/convlens/internal/analysis"
	"github.com/CrudyLame/convlens/internal/conv"
)

// WriteConversation persists the reporting record for one analyzed
// conversation across the conversations and conversation_analysis tables.
// The dashboard reads these rows; nothing in this service reads them back
// except the status endpoint's count.
func (s *Store) WriteConversation(ctx context.Context, c *conv.Conversation, res *analysis.Result) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	recordID := uuid.New()

	agentTypes := make([]string, 0, len(c.AgentTypes()))
	for _, at := range c.AgentTypes() {
		agentTypes = append(agentTypes, string(at))
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, dialogue_id, user_id, start_time, end_time, duration_minutes, message_count, departments, agent_types, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (dialogue_id) DO UPDATE SET
			agent_types = EXCLUDED.agent_types,
			summary = EXCLUDED.summary`,
		recordID, c.DialogueID, c.UserID, c.StartTime, c.EndTime,
		c.DurationMinutes(), c.MessageCount, c.Departments, agentTypes, c.Summary(),
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	if res != nil {
		emotions := make([]string, 0, len(res.Emotions))
		for _, e := range res.Emotions {
			emotions = append(emotions, string(e))
		}
		problems := make([]string, 0, len(res.Problems))
		for _, p := range res.Problems {
			problems = append(problems, string(p))
		}
		categories := make([]string, 0, len(res.Categories))
		for _, cat := range res.Categories {
			categories = append(categories, string(cat))
		}
		intents := make([]string, 0, len(res.Intents))
		for _, i := range res.Intents {
			intents = append(intents, string(i))
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO conversation_analysis (id, conversation_id, sentiment, sentiment_confidence, emotions, problems, problem_severity, problem_extra_info, categories, intents, feedback, suggestions, is_successful)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			uuid.New(), recordID, string(res.Sentiment), res.SentimentConfidence,
			emotions, problems, res.ProblemSeverity, res.ProblemExtraInfo,
			categories, intents, res.Feedback, res.Suggestions, res.IsSuccessful,
		)
		if err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountAnalyzed returns how many conversations carry an analysis row.
func (s *Store) CountAnalyzed(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM conversation_analysis`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count analyzed: %w", err)
	}
	return n, nil
}
