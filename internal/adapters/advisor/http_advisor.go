// Package advisor provides the reference implementation of ports.Advisor:
// an HTTP client targeting a generic chat-completion-style endpoint, built
// on the same request/retry idiom as the Route Cache's directions client.
// Matcher and Adapter depend only on ports.Advisor, never on this type, so
// their rule-based fallbacks are exercised identically whether this client
// succeeds, errors, or times out.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleet-dispatch-engine/internal/config"
)

// HTTPAdvisor implements ports.Advisor against an OpenAI-compatible
// chat-completions endpoint.
type HTTPAdvisor struct {
	session *http.Client
	apiKey  string
	baseURL string
	model   string
}

func New(cfg config.AdvisorConfig) *HTTPAdvisor {
	return &HTTPAdvisor{
		session: &http.Client{Timeout: time.Duration(cfg.TimeoutS) * time.Second},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends systemPrompt and userPrompt to the configured endpoint
// and returns the model's text. An empty base URL is treated as "no
// advisor configured": the call fails fast so the caller's
// rule-based fallback engages immediately instead of waiting out a timeout.
func (c *HTTPAdvisor) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("advisor: no base url configured")
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	})
	if err != nil {
		return "", fmt.Errorf("advisor request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}
