package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

const (
	maxRetries = 3
	baseDelay  = time.Second
)

// retryAfterRe matches the wait hint Groq embeds in rate-limit error
// messages, e.g. "Please try again in 1.234s".
var retryAfterRe = regexp.MustCompile(`[Pp]lease try again in (\d+\.?\d*)s`)

// Client talks to Groq's OpenAI-compatible chat-completions endpoint.
// Rate-limit retries live here, not in callers: a 429 is retried up to
// maxRetries times, honoring the server's suggested wait when present and
// falling back to exponential backoff with jitter.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(apiKey, model string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}
}

// SetBaseURL points the client at a different endpoint. Used by tests and
// self-hosted OpenAI-compatible gateways.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// rateLimitError carries the server's suggested wait so the retry loop can
// honor it.
type rateLimitError struct {
	message  string
	waitHint time.Duration
	hasHint  bool
}

func (e *rateLimitError) Error() string {
	return "rate limit exceeded: " + e.message
}

// CompleteJSON sends one chat completion in JSON mode and returns the raw
// model output. The system prompt pins the task, the user message carries the
// per-conversation content.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		text, err := c.complete(ctx, system, user, maxTokens)
		if err == nil {
			return text, nil
		}
		lastErr = err

		rle, ok := err.(*rateLimitError)
		if !ok {
			return "", err
		}

		wait := baseDelay*(1<<attempt) + time.Duration(rand.Int63n(int64(time.Second)))
		if rle.hasHint {
			wait = rle.waitHint
		}
		c.logger.Warn("groq rate limit hit, backing off",
			"wait", wait.String(),
			"attempt", attempt+1,
			"max_retries", maxRetries,
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", fmt.Errorf("rate limited after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	reqBody := request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.7,
		MaxTokens:      maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		var errResp errorResponse
		_ = json.Unmarshal(respBody, &errResp)
		rle := &rateLimitError{message: errResp.Error.Message}
		if hint, ok := extractWaitHint(errResp.Error.Message); ok {
			rle.waitHint = hint
			rle.hasHint = true
		}
		return "", rle
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("api error %d (%s): %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response choices")
	}

	return apiResp.Choices[0].Message.Content, nil
}

// extractWaitHint pulls the suggested wait out of a rate-limit message.
func extractWaitHint(msg string) (time.Duration, bool) {
	m := retryAfterRe.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
