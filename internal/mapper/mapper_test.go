package mapper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/CrudyLame/convlens/internal/analysis"
	"github.com/CrudyLame/convlens/internal/conv"
)

type fakeLLM struct {
	lastSystem string
	lastUser   string
	reply      string
	err        error
}

func (f *fakeLLM) CompleteJSON(_ context.Context, system, user string, _ int) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testConversation(t *testing.T) *conv.Conversation {
	t.Helper()
	c, err := conv.New(conv.Meta{DialogueID: 17, UserID: 3}, []conv.Segment{
		{BlockType: conv.RawRequest, Text: "Где находится отдел кадров?"},
		{BlockType: conv.RawIntermediateResponse, Text: "HR assistant: смотрю записи, секретный внутренний контекст"},
		{BlockType: conv.RawResponse, Text: "Корпус 3, этаж 2."},
	})
	if err != nil {
		t.Fatalf("failed to build conversation: %v", err)
	}
	return c
}

const validReply = `{
	"sentiment": "neutral",
	"sentiment_confidence": 0.9,
	"emotions": [],
	"problems": [],
	"problem_severity": 1,
	"problem_extra_info": "",
	"categories": ["hr"],
	"intent": ["general_info"],
	"feedback": [],
	"suggestions": [],
	"is_successful": true
}`

func TestMap_UsesUserTextOnly(t *testing.T) {
	llm := &fakeLLM{reply: validReply}
	m := New(llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := m.Map(context.Background(), testConversation(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(llm.lastUser, "Где находится отдел кадров?") {
		t.Errorf("prompt missing user text:\n%s", llm.lastUser)
	}
	if strings.Contains(llm.lastUser, "секретный внутренний контекст") {
		t.Errorf("agent text leaked into prompt:\n%s", llm.lastUser)
	}
	if strings.Contains(llm.lastUser, "Корпус 3") {
		t.Errorf("system response leaked into prompt:\n%s", llm.lastUser)
	}
	if res.Sentiment != analysis.SentimentNeutral {
		t.Errorf("sentiment = %q", res.Sentiment)
	}
	if len(res.Categories) != 1 || res.Categories[0] != analysis.CategoryHR {
		t.Errorf("categories = %v", res.Categories)
	}
}

func TestMap_CallFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	m := New(llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := m.Map(context.Background(), testConversation(t))
	if err == nil {
		t.Fatal("expected error")
	}
	var mf *MappingFailedError
	if !errors.As(err, &mf) {
		t.Fatalf("error type = %T, want *MappingFailedError", err)
	}
	if mf.DialogueID != 17 {
		t.Errorf("dialogue id = %d, want 17", mf.DialogueID)
	}
}

func TestMap_UnparseableReply(t *testing.T) {
	llm := &fakeLLM{reply: "the user asked about HR and everything went fine"}
	m := New(llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := m.Map(context.Background(), testConversation(t))
	if err == nil {
		t.Fatal("expected error for unparseable reply, not a default classification")
	}
	var mf *MappingFailedError
	if !errors.As(err, &mf) {
		t.Fatalf("error type = %T, want *MappingFailedError", err)
	}
}

func TestMap_SchemaInvalidReply(t *testing.T) {
	llm := &fakeLLM{reply: strings.Replace(validReply, `"neutral"`, `"meh"`, 1)}
	m := New(llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := m.Map(context.Background(), testConversation(t)); err == nil {
		t.Fatal("expected error for schema-invalid reply")
	}
}
