// Package llm talks to a chat-completions compatible text-generation API.
package llm

import (
	"alcyxob/coach-app/internal/config"
	"alcyxob/coach-app/internal/logger"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request kinds, used as a metrics label.
const (
	KindStrategy = "strategy"
	KindDayPlan  = "day_plan"
	KindChat     = "chat"
)

// Request is one system+user exchange that must be answered with a JSON object.
type Request struct {
	Kind   string
	System string
	User   string
}

// Generator produces the raw text answer for a Request.
type Generator interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Observer receives the outcome of every upstream call.
type Observer interface {
	ObserveGeneration(kind string, took time.Duration, err error)
}

var (
	ErrNotConfigured = errors.New("llm: api key is not configured")
	ErrEmptyResponse = errors.New("llm: empty response")
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: upstream status %d: %s", e.StatusCode, e.Body)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Client is the HTTP Generator.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	http     *http.Client
	log      *logger.Logger
	observer Observer
}

// NewClient builds a Client from config. observer may be nil.
func NewClient(cfg config.LLMConfig, log *logger.Logger, observer Observer) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, log, observer)
}

// NewWithHTTPClient is NewClient with a caller supplied http.Client.
func NewWithHTTPClient(cfg config.LLMConfig, hc *http.Client, log *logger.Logger, observer Observer) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		http:     hc,
		log:      log,
		observer: observer,
	}
}

// Complete sends req and returns choices[0].message.content. No retries.
func (c *Client) Complete(ctx context.Context, req Request) (out string, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveGeneration(req.Kind, time.Since(start), err)
		}
		if err != nil {
			c.log.Warn("generation failed", "kind", req.Kind, "error", err, "took", time.Since(start))
		}
	}()

	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.7,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	c.log.Debug("generation finished", "kind", req.Kind, "took", time.Since(start))
	return parsed.Choices[0].Message.Content, nil
}

// StripFences removes a surrounding ```json ... ``` block, if any.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
