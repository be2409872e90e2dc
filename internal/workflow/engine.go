// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"io"

	"github.com/meshintel/deep-research/internal/websearch"
	"github.com/meshintel/deep-research/pkg/types"
)

// DocumentRetriever searches the stored document chunks and formats hits
// into a context block for drafting.
type DocumentRetriever interface {
	Search(ctx context.Context, query, topic string, limit int, threshold float64) ([]types.DocumentChunk, error)
	Context(ctx context.Context, query, topic string, maxChunks int) (string, error)
}

// SnippetStore persists retrieved web snippets for later document search.
type SnippetStore interface {
	Put(ctx context.Context, chunks []types.DocumentChunk) (int, error)
}

// Drafter turns an assembled prompt into report prose.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

// Stage is one named step of a pipeline. Run receives the current state
// and returns the next one; it never panics across the boundary.
type Stage struct {
	Name string
	Run  func(ctx context.Context, s State) State
}

// Defaults applied when the workflow configuration leaves fields unset.
const (
	defaultMaxInsights      = 8
	defaultSummarySentences = 4
	defaultMaxIterations    = 3

	webSnippetLimit = 5
	webContextTop   = 3
	sourceSummaries = 3
	reportInsights  = 10
)

// Engine executes the pipelines against its collaborators. Any
// collaborator may be nil; the owning stage then degrades instead of
// crashing.
type Engine struct {
	docs     DocumentRetriever
	web      websearch.Provider
	drafter  Drafter
	snippets SnippetStore
	cfg      types.WorkflowConfig
	out      io.Writer
}

// New builds an engine. A nil out discards progress output.
func New(docs DocumentRetriever, web websearch.Provider, drafter Drafter, snippets SnippetStore, cfg types.WorkflowConfig, out io.Writer) *Engine {
	if out == nil {
		out = io.Discard
	}
	if cfg.MaxInsights <= 0 {
		cfg.MaxInsights = defaultMaxInsights
	}
	if cfg.SummarySentences <= 0 {
		cfg.SummarySentences = defaultSummarySentences
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	return &Engine{
		docs:     docs,
		web:      web,
		drafter:  drafter,
		snippets: snippets,
		cfg:      cfg,
		out:      out,
	}
}

// run executes the stages strictly in order over one threaded state.
// There is no branching, no retry, and no cancellation mid-run.
func (e *Engine) run(ctx context.Context, stages []Stage, s State) State {
	for _, stage := range stages {
		s = stage.Run(ctx, s)
	}
	return s
}

// fail tags the state with a terminal error message.
func fail(s State, msg string) State {
	s.Status = StatusError
	s.ErrorMessage = msg
	return s
}
