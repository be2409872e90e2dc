// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft turns an assembled research prompt into report prose.
// Exactly one backend is chosen at construction: the Claude Messages API
// when a key is configured, otherwise a deterministic extractive drafter
// that needs no network at all.
package draft

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/meshintel/deep-research/internal/analysis"
	"github.com/meshintel/deep-research/internal/httputil"
	"github.com/meshintel/deep-research/pkg/types"
)

// Drafter produces report text from a fully assembled prompt.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

// NewDrafter selects a backend from the configuration. With an API key
// it drafts through the Claude Messages API; without one it falls back
// to extractive summarization.
func NewDrafter(cfg types.DraftingConfig) Drafter {
	if cfg.APIKey == "" {
		return Extractive{}
	}
	return &Claude{Config: cfg, Client: httputil.NewClient(cfg.HTTPConfig)}
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 4096
	anthropicVersion = "2023-06-01"
)

// Claude drafts reports through the Claude Messages API.
type Claude struct {
	Config types.DraftingConfig
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Draft sends the prompt as a single user message and returns the
// concatenated text blocks of the response.
func (c *Claude) Draft(ctx context.Context, prompt string) (string, error) {
	model := c.Config.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := c.Config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := claudeRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.Config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var resp claudeResponse
	if err := httputil.PostJSON(ctx, c.Client, claudeAPIURL, c.Config.HTTPConfig, headers, reqBody, &resp); err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		b.WriteString(block.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("Claude API returned no text content")
	}
	return text, nil
}

// extractiveSentences bounds the fallback draft length.
const extractiveSentences = 8

// Extractive drafts by picking the highest-scoring sentences from the
// prompt itself. Deterministic and offline; quality is what it is.
type Extractive struct{}

// Draft returns an extractive summary of the prompt.
func (Extractive) Draft(_ context.Context, prompt string) (string, error) {
	summary := analysis.Summarize(prompt, extractiveSentences)
	if summary == "" || summary == analysis.SummaryUnavailable {
		return strings.TrimSpace(prompt), nil
	}
	return summary, nil
}
