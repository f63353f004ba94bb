package conv

import "fmt"

// UnknownBlockTypeError reports a transcript segment whose block_type tag is
// not one of the three recognized values. Malformed input must not be
// absorbed, so construction of the whole conversation aborts.
type UnknownBlockTypeError struct {
	Index     int // segment position in the input, -1 when not yet known
	BlockType string
}

func (e *UnknownBlockTypeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("unknown block type %q", e.BlockType)
	}
	return fmt.Sprintf("segment %d: unknown block type %q", e.Index, e.BlockType)
}

// EmptyConversationError reports an attempt to build a conversation from zero
// segments. A conversation needs at least one block to be meaningful.
type EmptyConversationError struct {
	DialogueID int64
}

func (e *EmptyConversationError) Error() string {
	return fmt.Sprintf("dialogue %d: conversation has no segments", e.DialogueID)
}
