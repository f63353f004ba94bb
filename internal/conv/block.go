package conv

import (
	"strings"
	"unicode/utf8"
)

// BlockType classifies a transcript block by speaker role.
type BlockType string

const (
	BlockUser   BlockType = "user"   // human request
	BlockSystem BlockType = "system" // supervisor/final response
	BlockAgent  BlockType = "agent"  // specialist intermediate step
)

// Raw block_type tags as they appear in exported transcripts.
const (
	RawRequest              = "request"
	RawResponse             = "response"
	RawIntermediateResponse = "intermediate_response"
)

// AgentType identifies which specialist assistant produced an agent block.
// The roster is closed: adding an assistant means adding a constant here and
// an entry in agentNames.
type AgentType string

const (
	AgentSupervisor  AgentType = "supervisor"
	AgentFacts       AgentType = "facts"
	AgentQuestions   AgentType = "questions"
	AgentDepartments AgentType = "departments"
	AgentProducts    AgentType = "products"
	AgentTasks       AgentType = "tasks"
	AgentMeetings    AgentType = "meetings"
	AgentHR          AgentType = "hr"
	AgentFAQ         AgentType = "faq"
	AgentFeedback    AgentType = "feedback"
	AgentSources     AgentType = "sources"
	AgentStatistic   AgentType = "statistic"
	AgentDesigner    AgentType = "designer"
)

// agentNames maps the human-readable assistant names that appear in transcript
// text to their AgentType. The slice order is the match order: the first name
// found in a block's text wins, so two names in one block never produce a
// nondeterministic result.
var agentNames = []struct {
	Name string
	Type AgentType
}{
	{"Supervisor", AgentSupervisor},
	{"Facts assistant", AgentFacts},
	{"Questions assistant", AgentQuestions},
	{"Departments assistant", AgentDepartments},
	{"Products assistant", AgentProducts},
	{"Tasks assistant", AgentTasks},
	{"Meetings assistant", AgentMeetings},
	{"HR assistant", AgentHR},
	{"FAQ assistant", AgentFAQ},
	{"Feedback assistant", AgentFeedback},
	{"Sources assistant", AgentSources},
	{"Statistic assistant", AgentStatistic},
	{"Designer assistant", AgentDesigner},
}

// previewRunes is how much agent/system text a block retains. User text is
// never truncated; agent chatter is voluminous and only kept as a preview.
const previewRunes = 150

// Segment is one raw transcript entry prior to classification.
type Segment struct {
	BlockType string
	Text      string
}

// ConvBlock is one classified segment of a conversation transcript.
// AgentType is empty unless Type is BlockAgent and a known assistant name
// appeared in the raw text.
type ConvBlock struct {
	Type      BlockType `json:"type"`
	Text      string    `json:"text"`
	AgentType AgentType `json:"agent_type,omitempty"`
}

// Classify converts a raw segment into a ConvBlock. It is a pure function:
// user blocks keep their full text, agent and system blocks are cut to the
// first previewRunes characters, and agent blocks are scanned for a known
// assistant name before truncation. An unrecognized block_type tag is a hard
// failure, not a silent default.
func Classify(seg Segment) (ConvBlock, error) {
	switch seg.BlockType {
	case RawRequest:
		return ConvBlock{Type: BlockUser, Text: seg.Text}, nil
	case RawResponse:
		return ConvBlock{Type: BlockSystem, Text: truncateRunes(seg.Text, previewRunes)}, nil
	case RawIntermediateResponse:
		b := ConvBlock{Type: BlockAgent, Text: truncateRunes(seg.Text, previewRunes)}
		if at, ok := DetectAgentType(seg.Text); ok {
			b.AgentType = at
		}
		return b, nil
	default:
		return ConvBlock{}, &UnknownBlockTypeError{Index: -1, BlockType: seg.BlockType}
	}
}

// DetectAgentType scans text for the known assistant names, case-sensitive,
// in fixed table order. A miss is a valid outcome (supervisor-only or
// unattributed intermediate steps), not an error.
func DetectAgentType(text string) (AgentType, bool) {
	for _, entry := range agentNames {
		if strings.Contains(text, entry.Name) {
			return entry.Type, true
		}
	}
	return "", false
}

// truncateRunes cuts s to at most n characters. Transcripts are largely
// Russian, so the count is Unicode code points, never bytes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
