package conv

import (
	"errors"
	"strings"
	"testing"
)

func TestClassify_UserKeepsFullText(t *testing.T) {
	long := strings.Repeat("a", 500)
	b, err := Classify(Segment{BlockType: RawRequest, Text: long})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Type != BlockUser {
		t.Errorf("type = %q, want %q", b.Type, BlockUser)
	}
	if b.Text != long {
		t.Errorf("user text was truncated: len %d, want %d", len(b.Text), len(long))
	}
	if b.AgentType != "" {
		t.Errorf("user block has agent type %q", b.AgentType)
	}
}

func TestClassify_UserEmptyText(t *testing.T) {
	b, err := Classify(Segment{BlockType: RawRequest, Text: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Text != "" {
		t.Errorf("text = %q, want empty", b.Text)
	}
}

func TestClassify_SystemTruncatesAt150(t *testing.T) {
	text := strings.Repeat("x", 151)
	b, err := Classify(Segment{BlockType: RawResponse, Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Type != BlockSystem {
		t.Errorf("type = %q, want %q", b.Type, BlockSystem)
	}
	if b.Text != text[:150] {
		t.Errorf("expected first 150 characters, got %d", len(b.Text))
	}
}

func TestClassify_ShortSystemTextUnchanged(t *testing.T) {
	b, err := Classify(Segment{BlockType: RawResponse, Text: "Building 3, Floor 2."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Text != "Building 3, Floor 2." {
		t.Errorf("text = %q", b.Text)
	}
}

func TestClassify_TruncationCountsRunes(t *testing.T) {
	// 151 Cyrillic characters are 302 bytes; the cut must keep 150 characters,
	// not split the 76th one in half.
	text := strings.Repeat("ж", 151)
	b, err := Classify(Segment{BlockType: RawIntermediateResponse, Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Repeat("ж", 150)
	if b.Text != want {
		t.Errorf("rune-truncated text has %d bytes, want %d", len(b.Text), len(want))
	}
}

func TestClassify_AgentNameDetected(t *testing.T) {
	b, err := Classify(Segment{BlockType: RawIntermediateResponse, Text: "HR assistant: checking records..."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Type != BlockAgent {
		t.Errorf("type = %q, want %q", b.Type, BlockAgent)
	}
	if b.AgentType != AgentHR {
		t.Errorf("agent type = %q, want %q", b.AgentType, AgentHR)
	}
}

func TestClassify_AgentNameScansUntruncatedText(t *testing.T) {
	// The assistant name sits past the 150-character preview boundary; the
	// scan runs against the raw text, so it must still be found.
	text := strings.Repeat("п", 200) + " Designer assistant ready"
	b, err := Classify(Segment{BlockType: RawIntermediateResponse, Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AgentType != AgentDesigner {
		t.Errorf("agent type = %q, want %q", b.AgentType, AgentDesigner)
	}
	if b.Text != strings.Repeat("п", 150) {
		t.Errorf("preview text not truncated to 150 runes")
	}
}

func TestClassify_NoAgentNameIsValid(t *testing.T) {
	b, err := Classify(Segment{BlockType: RawIntermediateResponse, Text: "делегирую запрос дальше"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AgentType != "" {
		t.Errorf("agent type = %q, want unset", b.AgentType)
	}
}

func TestClassify_UnknownBlockType(t *testing.T) {
	_, err := Classify(Segment{BlockType: "final_answer", Text: "whatever"})
	if err == nil {
		t.Fatal("expected error for unknown block type")
	}
	var ub *UnknownBlockTypeError
	if !errors.As(err, &ub) {
		t.Fatalf("error type = %T, want *UnknownBlockTypeError", err)
	}
	if ub.BlockType != "final_answer" {
		t.Errorf("error block type = %q", ub.BlockType)
	}
}

func TestDetectAgentType_FirstTableEntryWins(t *testing.T) {
	// Two names in one block: table order decides, never input position.
	text := "Designer assistant asked Facts assistant for data"
	at, ok := DetectAgentType(text)
	if !ok {
		t.Fatal("expected a match")
	}
	if at != AgentFacts {
		t.Errorf("agent type = %q, want %q (table order)", at, AgentFacts)
	}
}

func TestDetectAgentType_CaseSensitive(t *testing.T) {
	// Casing variants are deliberately not matched; they produce the unset
	// state, not an error. If real exports turn out to vary casing this is
	// where under-classification would show up.
	if at, ok := DetectAgentType("hr assistant: checking"); ok {
		t.Errorf("lowercase name matched as %q, matching is case-sensitive", at)
	}
}

func TestDetectAgentType_Supervisor(t *testing.T) {
	at, ok := DetectAgentType("Supervisor routed the request")
	if !ok || at != AgentSupervisor {
		t.Errorf("got (%q, %v), want (%q, true)", at, ok, AgentSupervisor)
	}
}
