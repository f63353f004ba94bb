package ingest

import "github.com/CrudyLame/convlens/internal/conv"

// Stats summarizes a parsed batch for logging and the status endpoint.
type Stats struct {
	TotalConversations int     `json:"total_conversations"`
	TotalMessages      int     `json:"total_messages"`
	UniqueUsers        int     `json:"unique_users"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
	AvgMessageCount    float64 `json:"avg_message_count"`
}

// Summarize computes batch statistics over parsed conversations.
func Summarize(conversations []*conv.Conversation) Stats {
	if len(conversations) == 0 {
		return Stats{}
	}

	var s Stats
	s.TotalConversations = len(conversations)

	users := make(map[int64]bool)
	var totalDuration float64
	for _, c := range conversations {
		s.TotalMessages += c.MessageCount
		users[c.UserID] = true
		totalDuration += c.DurationMinutes()
	}

	s.UniqueUsers = len(users)
	s.AvgDurationMinutes = totalDuration / float64(len(conversations))
	s.AvgMessageCount = float64(s.TotalMessages) / float64(len(conversations))
	return s
}
