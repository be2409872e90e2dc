// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch queries a web search provider and returns ranked
// snippets. An empty or failed search is a valid outcome for callers;
// both pipelines degrade rather than abort when the web is unreachable.
package websearch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/meshintel/deep-research/internal/httputil"
	"github.com/meshintel/deep-research/pkg/types"
)

// Provider searches the web for a query. The Tavily backend implements
// this interface; tests supply fakes.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.WebResult, error)
}

// tavilyAPIBase is the Tavily search endpoint. Package-level var for test
// substitution.
var tavilyAPIBase = "https://api.tavily.com/search"

// Tavily queries the Tavily search API.
type Tavily struct {
	Config types.WebSearchConfig
	Client *http.Client
}

// NewTavily builds a Tavily provider from configuration.
func NewTavily(cfg types.WebSearchConfig) *Tavily {
	return &Tavily{Config: cfg, Client: httputil.NewClient(cfg.HTTPConfig)}
}

// tavilyRequest is the request body for the Tavily search API.
type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

// tavilyResponse is the response body from the Tavily search API.
type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// tavilyResult is a single search hit in the Tavily response.
type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search runs one provider query and returns up to maxResults snippets.
// A zero maxResults falls back to the configured default.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]types.WebResult, error) {
	if t.Config.APIKey == "" {
		return nil, fmt.Errorf("web search API key not configured")
	}
	if maxResults <= 0 {
		maxResults = t.Config.MaxResults
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	reqBody := tavilyRequest{
		APIKey:      t.Config.APIKey,
		Query:       query,
		SearchDepth: "advanced",
		MaxResults:  maxResults,
	}

	var resp tavilyResponse
	if err := httputil.PostJSON(ctx, t.Client, tavilyAPIBase, t.Config.HTTPConfig, nil, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	results := make([]types.WebResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, types.WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
