package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/CrudyLame/convlens/internal/conv"
)

// DefaultTimeThreshold is the silence gap that closes a dialogue.
const DefaultTimeThreshold = 30 * time.Minute

// timestampLayouts are tried in order when parsing the export's timestamp
// column.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// row is one line of the raw transcript export.
type row struct {
	userID     int64
	timestamp  time.Time
	blockType  string
	blockData  string
	department string
}

// Parser reads a semicolon-separated transcript export and segments it into
// conversations. Events belong to the same dialogue until the silence gap
// exceeds the threshold or a final response is followed by a new request.
type Parser struct {
	timeThreshold time.Duration
	logger        *slog.Logger
}

func NewParser(threshold time.Duration, logger *slog.Logger) *Parser {
	if threshold <= 0 {
		threshold = DefaultTimeThreshold
	}
	return &Parser{timeThreshold: threshold, logger: logger}
}

// ParseFile parses a transcript export from disk.
func (p *Parser) ParseFile(path string) ([]*conv.Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads the export, groups rows per user, segments them into dialogues,
// and builds a Conversation for each. Dialogue ids are assigned globally in
// discovery order. Rows with an unrecognized block_type fail the whole parse:
// a malformed export must not be absorbed.
func (p *Parser) Parse(r io.Reader) ([]*conv.Conversation, error) {
	rows, err := p.readRows(r)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64][]row)
	var userOrder []int64
	for _, rw := range rows {
		if _, ok := byUser[rw.userID]; !ok {
			userOrder = append(userOrder, rw.userID)
		}
		byUser[rw.userID] = append(byUser[rw.userID], rw)
	}

	var conversations []*conv.Conversation
	var dialogueID int64 = 1

	for _, uid := range userOrder {
		userRows := byUser[uid]
		sort.SliceStable(userRows, func(i, j int) bool {
			return userRows[i].timestamp.Before(userRows[j].timestamp)
		})

		for _, dialogue := range p.segment(userRows) {
			c, err := p.buildConversation(dialogueID, uid, dialogue)
			if err != nil {
				return nil, fmt.Errorf("dialogue %d: %w", dialogueID, err)
			}
			conversations = append(conversations, c)
			dialogueID++
		}
	}

	p.logger.Info("transcript export parsed",
		"rows", len(rows),
		"users", len(byUser),
		"conversations", len(conversations),
	)

	return conversations, nil
}

// segment splits one user's ordered rows into dialogues. A new dialogue
// starts on a silence gap above the threshold, or when the previous row was
// a final response and the current one is a fresh request.
func (p *Parser) segment(userRows []row) [][]row {
	var dialogues [][]row
	var current []row

	for i, rw := range userRows {
		if i > 0 {
			prev := userRows[i-1]
			gap := rw.timestamp.Sub(prev.timestamp)
			if gap > p.timeThreshold ||
				(prev.blockType == conv.RawResponse && rw.blockType == conv.RawRequest) {
				dialogues = append(dialogues, current)
				current = nil
			}
		}
		current = append(current, rw)
	}
	if len(current) > 0 {
		dialogues = append(dialogues, current)
	}
	return dialogues
}

// buildConversation assembles one dialogue's rows into a Conversation.
// Repeated block texts (the export duplicates supervisor echoes) are dropped;
// the message count still reflects the raw row count.
func (p *Parser) buildConversation(dialogueID, userID int64, rows []row) (*conv.Conversation, error) {
	meta := conv.Meta{
		DialogueID:   dialogueID,
		UserID:       userID,
		StartTime:    rows[0].timestamp,
		EndTime:      rows[len(rows)-1].timestamp,
		MessageCount: len(rows),
	}

	seenDepts := make(map[string]bool)
	for _, rw := range rows {
		if rw.department != "" && !seenDepts[rw.department] {
			seenDepts[rw.department] = true
			meta.Departments = append(meta.Departments, rw.department)
		}
	}

	var segments []conv.Segment
	seenTexts := make(map[string]bool)
	for _, rw := range rows {
		if seenTexts[rw.blockData] {
			continue
		}
		seenTexts[rw.blockData] = true
		segments = append(segments, conv.Segment{BlockType: rw.blockType, Text: rw.blockData})
	}

	return conv.New(meta, segments)
}

func (p *Parser) readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	// The header fixes the field count; rows that are shorter or longer
	// surface as csv.ErrFieldCount instead of panicking on a column index.

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"user_id", "timestamp", "block_type", "block_data"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("export missing column %q", required)
		}
	}

	var rows []row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line+1, err)
		}
		line++

		uid, err := strconv.ParseInt(record[col["user_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad user_id %q", line, record[col["user_id"]])
		}

		ts, err := parseTimestamp(record[col["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rw := row{
			userID:    uid,
			timestamp: ts,
			blockType: record[col["block_type"]],
			blockData: record[col["block_data"]],
		}
		if di, ok := col["nnDepartment"]; ok && di < len(record) {
			rw.department = record[di]
		}
		rows = append(rows, rw)
	}

	return rows, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
