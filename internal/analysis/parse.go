package analysis

import (
	"encoding/json"
	"fmt"
)

// Parse validates a raw LLM JSON payload into a Result.
//
// Structural problems (bad JSON, unknown sentiment, out-of-range confidence
// or severity) are hard errors; the caller must not fall back to a default
// classification. Unknown members inside the list fields are dropped instead:
// models occasionally invent a label, and losing one list entry is not the
// same failure as an unusable response.
func Parse(raw []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}

	if !validSentiments[r.Sentiment] {
		return nil, fmt.Errorf("invalid sentiment %q", r.Sentiment)
	}
	if r.SentimentConfidence < 0 || r.SentimentConfidence > 1 {
		return nil, fmt.Errorf("sentiment_confidence %v out of [0,1]", r.SentimentConfidence)
	}
	if r.ProblemSeverity < 0 || r.ProblemSeverity > 10 {
		return nil, fmt.Errorf("problem_severity %d out of [0,10]", r.ProblemSeverity)
	}

	r.Emotions = filterEmotions(r.Emotions)
	r.Problems = filterProblems(r.Problems)
	r.Categories = filterCategories(r.Categories)
	r.Intents = filterIntents(r.Intents)

	return &r, nil
}

func filterEmotions(in []Emotion) []Emotion {
	out := in[:0]
	for _, e := range in {
		if validEmotions[e] {
			out = append(out, e)
		}
	}
	return out
}

func filterProblems(in []Problem) []Problem {
	out := in[:0]
	for _, p := range in {
		if validProblems[p] {
			out = append(out, p)
		}
	}
	return out
}

func filterCategories(in []Category) []Category {
	out := in[:0]
	for _, c := range in {
		if validCategories[c] {
			out = append(out, c)
		}
	}
	return out
}

func filterIntents(in []Intent) []Intent {
	out := in[:0]
	for _, i := range in {
		if validIntents[i] {
			out = append(out, i)
		}
	}
	return out
}
