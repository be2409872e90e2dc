// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/meshintel/deep-research/internal/tree"
)

// ragPromptTmpl is the instructional prompt sent to the drafting backend
// with the retrieved document context embedded.
var ragPromptTmpl = template.Must(template.New("rag").Parse(`Please analyze the following document content and provide a structured answer to this question: "{{.Query}}"

Requirements:
- Extract specific, relevant information from the provided context
- Organize the response in a clear, structured format with bullet points or numbered lists
- Focus on evidence-based information from the documents
- Highlight key facts and recommendations
- Provide actionable insights where applicable

Document Context:
{{.Context}}

Please provide a comprehensive, well-structured analysis that directly answers the question.`))

// maxFallbackContext bounds how much raw context the fallback report
// reproduces verbatim.
const maxFallbackContext = 2000

// AskOptions parameterizes a RAG run.
type AskOptions struct {
	// Topic filters document retrieval; empty matches all topics.
	Topic string

	// UploadedFiles lists files the caller expects to be in the store.
	UploadedFiles []string

	// UseWebSearch gates the optional web search stage.
	UseWebSearch bool
}

// Ask runs the document-RAG pipeline: retrieve stored chunks relevant to
// query, optionally search the web, and draft an answer from the
// document context. The run always returns a report, possibly a degraded
// or error one.
func (e *Engine) Ask(ctx context.Context, query string, opts AskOptions) Result {
	stages := []Stage{
		{Name: "start_rag", Run: e.startRAG},
		{Name: "process_documents", Run: e.processDocuments},
		{Name: "search_documents", Run: e.searchDocuments},
		{Name: "web_search", Run: e.webSearch},
		{Name: "combine_context", Run: e.combineContext},
		{Name: "finalize", Run: e.finalizeRAG},
	}

	initial := State{
		Query:         query,
		Topic:         opts.Topic,
		Tree:          tree.New("RAG Analysis: " + query),
		MaxIterations: e.cfg.MaxIterations,
		UploadedFiles: opts.UploadedFiles,
		UseWebSearch:  opts.UseWebSearch,
	}
	final := e.run(ctx, stages, initial)
	return resultFromState(final)
}

func (e *Engine) startRAG(_ context.Context, s State) State {
	fmt.Fprintf(e.out, "processing query: %q\n", s.Query)
	s.Status = StatusRAGStarted
	return s
}

// processDocuments acknowledges the caller's uploaded files. Ingestion
// happens ahead of the run through the document store; this stage only
// records whether any documents are expected.
func (e *Engine) processDocuments(_ context.Context, s State) State {
	if len(s.UploadedFiles) == 0 {
		fmt.Fprintf(e.out, "no documents to process, skipping\n")
		s.Status = StatusNoDocuments
		return s
	}

	fmt.Fprintf(e.out, "processing %d documents...\n", len(s.UploadedFiles))
	for _, path := range s.UploadedFiles {
		fmt.Fprintf(e.out, "  processed %s\n", path)
	}
	s.Status = StatusDocumentsProcessed
	return s
}

// searchDocuments retrieves the document context for the query. Empty
// results and retrieval errors are both non-fatal; the pipeline proceeds
// to later stages either way.
func (e *Engine) searchDocuments(ctx context.Context, s State) State {
	fmt.Fprintf(e.out, "searching documents for: %s\n", s.Query)

	if e.docs == nil {
		s.ErrorMessage = "document search failed: no document store configured"
		s.Status = StatusError
		return s
	}

	docContext, err := e.docs.Context(ctx, s.Query, s.Topic, webSnippetLimit)
	if err != nil {
		fmt.Fprintf(e.out, "warning: document search failed: %v\n", err)
		s.ErrorMessage = fmt.Sprintf("document search failed: %v", err)
		s.Status = StatusError
		return s
	}

	if docContext == "" {
		fmt.Fprintf(e.out, "no relevant documents found\n")
		s.Status = StatusNoDocumentsFound
		return s
	}

	fmt.Fprintf(e.out, "using %d characters of document context\n", len(docContext))
	s.DocumentContext = docContext
	s.Status = StatusDocumentsSearched
	return s
}

// webSearch runs only when the caller asked for it. The web context is
// recorded in state but not merged into the drafting context; see
// combineContext.
func (e *Engine) webSearch(ctx context.Context, s State) State {
	if !s.UseWebSearch {
		fmt.Fprintf(e.out, "web search disabled, skipping\n")
		s.WebContext = ""
		s.Status = StatusWebSearchSkipped
		return s
	}

	fmt.Fprintf(e.out, "searching web for: %s\n", s.Query)

	if e.web == nil {
		s.ErrorMessage = "web search failed: no provider configured"
		s.WebContext = ""
		s.Status = StatusWebSearchError
		return s
	}

	results, err := e.web.Search(ctx, s.Query, webSnippetLimit)
	if err != nil {
		fmt.Fprintf(e.out, "warning: web search failed: %v\n", err)
		s.ErrorMessage = fmt.Sprintf("web search failed: %v", err)
		s.WebContext = ""
		s.Status = StatusWebSearchError
		return s
	}

	if len(results) == 0 {
		fmt.Fprintf(e.out, "no web results found\n")
		s.WebContext = ""
		s.Status = StatusNoWebResults
		return s
	}
	fmt.Fprintf(e.out, "found %d web sources\n", len(results))

	var b strings.Builder
	top := results
	if len(top) > webContextTop {
		top = top[:webContextTop]
	}
	for _, r := range top {
		title := r.Title
		if title == "" {
			title = "Web Source"
		}
		fmt.Fprintf(&b, "\n\n[%s]\n%s", title, r.Content)
	}
	s.WebContext = b.String()
	s.Status = StatusWebSearchCompleted
	return s
}

// combineContext hands the document context to drafting. The web context
// is deliberately left out: web snippets inform the operator log only,
// and the drafted answer stays grounded in the uploaded documents.
func (e *Engine) combineContext(_ context.Context, s State) State {
	fmt.Fprintf(e.out, "preparing context for analysis...\n")
	s.CombinedContext = s.DocumentContext
	s.Status = StatusContextCombined
	return s
}

// finalizeRAG produces the report. Empty context is the one terminal
// failure; a drafting failure still yields a context-only report.
func (e *Engine) finalizeRAG(ctx context.Context, s State) State {
	combined := s.CombinedContext
	if combined == "" {
		combined = s.DocumentContext
	}

	if combined == "" {
		msg := "No relevant context found for the query"
		fmt.Fprintf(e.out, "%s\n", msg)
		s.Report = "# Error\n\n" + msg
		s.Status = StatusError
		s.ErrorMessage = msg
		return s
	}

	s.Report = e.draftRAGReport(ctx, s.Query, combined)
	s.Status = StatusCompleted
	return s
}

// draftRAGReport asks the drafting backend for an analysis and wraps it
// in the report frame. When drafting fails the retrieved context itself
// becomes the report body.
func (e *Engine) draftRAGReport(ctx context.Context, query, docContext string) string {
	fmt.Fprintf(e.out, "creating RAG report...\n")

	if e.drafter != nil {
		var prompt bytes.Buffer
		err := ragPromptTmpl.Execute(&prompt, struct{ Query, Context string }{Query: query, Context: docContext})
		if err == nil {
			analysisText, draftErr := e.drafter.Draft(ctx, prompt.String())
			if draftErr == nil {
				return fmt.Sprintf(`# RAG Analysis Report

## Query
%s

## AI Analysis
%s

## Sources
- Uploaded document excerpts retrieved by keyword search
- Analysis generated by the drafting backend

---
*Report generated by Deep Research AI Agent with AI Analysis*
`, query, analysisText)
			}
			fmt.Fprintf(e.out, "warning: drafting failed, using fallback report: %v\n", draftErr)
		}
	}

	truncated := docContext
	if len(truncated) > maxFallbackContext {
		truncated = truncated[:maxFallbackContext] + "...\n[Content truncated for readability]"
	}
	return fmt.Sprintf(`# RAG Analysis Report

## Query
%s

## Retrieved Information
%s

## Sources
- Uploaded document excerpts retrieved by keyword search

## Note
This report contains retrieved text only; no drafting backend was available for analysis.

---
*Report generated by Deep Research AI Agent*
`, query, truncated)
}
