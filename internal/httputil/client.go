// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the web search and
// drafting backends. Calls are attempted exactly once; retry policy is
// deliberately absent (degraded statuses, not retries, are the recovery
// mechanism in the pipelines).
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meshintel/deep-research/pkg/types"
)

// defaultTimeout applies when the configuration leaves Timeout unset.
const defaultTimeout = 30 * time.Second

// NewClient builds an HTTP client honoring the configured timeout.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// PostJSON sends body as JSON to url and decodes the JSON response into
// out. Extra headers are applied on top of Content-Type and User-Agent.
// A non-2xx status is an error carrying the response body.
func PostJSON(ctx context.Context, client *http.Client, url string, cfg types.HTTPConfig, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = NewClient(cfg)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
