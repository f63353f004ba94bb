package conv

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Meta carries the transcript-level metadata a conversation is built with.
// Ingestion computes it while segmenting the raw export.
type Meta struct {
	DialogueID   int64
	UserID       int64
	StartTime    time.Time
	EndTime      time.Time
	MessageCount int
	Departments  []string
}

// Conversation is the full ordered sequence of blocks exchanged in one
// session. It is built once from a complete transcript and never mutated
// afterwards: the block slice is owned exclusively by the aggregate, and the
// derived views (user text, agent-type roster) are computed at construction
// so repeated reads are O(1) and always stable.
type Conversation struct {
	Meta

	blocks     []ConvBlock
	agentTypes []AgentType
	userText   string
}

// New classifies every segment in order and assembles the conversation.
// It fails fast: an unrecognized block_type aborts construction with an
// UnknownBlockTypeError carrying the offending segment's index, and zero
// segments yield an EmptyConversationError.
func New(meta Meta, segments []Segment) (*Conversation, error) {
	if len(segments) == 0 {
		return nil, &EmptyConversationError{DialogueID: meta.DialogueID}
	}

	blocks := make([]ConvBlock, 0, len(segments))
	for i, seg := range segments {
		b, err := Classify(seg)
		if err != nil {
			var ub *UnknownBlockTypeError
			if errors.As(err, &ub) {
				ub.Index = i
			}
			return nil, err
		}
		blocks = append(blocks, b)
	}

	if meta.MessageCount == 0 {
		meta.MessageCount = len(segments)
	}

	c := &Conversation{
		Meta:   meta,
		blocks: blocks,
	}

	// Fold the agent-type roster once. Reads vastly outnumber constructions
	// in a batch-then-analyze workload.
	seen := make(map[AgentType]bool)
	for _, b := range blocks {
		if b.Type == BlockAgent && b.AgentType != "" && !seen[b.AgentType] {
			seen[b.AgentType] = true
			c.agentTypes = append(c.agentTypes, b.AgentType)
		}
	}
	sort.Slice(c.agentTypes, func(i, j int) bool { return c.agentTypes[i] < c.agentTypes[j] })

	var sb strings.Builder
	for _, b := range blocks {
		if b.Type != BlockUser {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Text)
	}
	c.userText = sb.String()

	return c, nil
}

// Blocks returns the classified blocks in transcript order. The returned
// slice is a copy; the conversation stays the sole owner of its sequence.
func (c *Conversation) Blocks() []ConvBlock {
	out := make([]ConvBlock, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// AgentTypes returns the set of specialists that participated, sorted for
// stable output. Empty means no delegation happened.
func (c *Conversation) AgentTypes() []AgentType {
	out := make([]AgentType, len(c.agentTypes))
	copy(out, c.agentTypes)
	return out
}

// UserText returns the full text of every user block, in transcript order,
// joined by newlines. It never contains agent or system text and is the only
// conversational content that reaches the outbound classifier prompt.
func (c *Conversation) UserText() string {
	return c.userText
}

// Summary pairs the user's initial request with the agent-side response trail
// that followed it, as a single text artifact for human review. If the
// transcript somehow has no user block, the trail covers every agent and
// system block.
func (c *Conversation) Summary() string {
	firstUser := -1
	for i, b := range c.blocks {
		if b.Type == BlockUser {
			firstUser = i
			break
		}
	}

	var sb strings.Builder
	if firstUser >= 0 {
		sb.WriteString("Request: ")
		sb.WriteString(c.blocks[firstUser].Text)
	}
	for _, b := range c.blocks[firstUser+1:] {
		if b.Type == BlockUser {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		switch b.Type {
		case BlockAgent:
			sb.WriteString("Agent: ")
		case BlockSystem:
			sb.WriteString("Response: ")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}

// DurationMinutes is the wall-clock span of the transcript.
func (c *Conversation) DurationMinutes() float64 {
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return 0
	}
	return c.EndTime.Sub(c.StartTime).Minutes()
}
