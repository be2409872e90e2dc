package workflow

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/meshintel/deep-research/internal/tree"
	"github.com/meshintel/deep-research/pkg/types"
)

type fakeWeb struct {
	results []types.WebResult
	err     error
	queries []string
}

func (f *fakeWeb) Search(_ context.Context, query string, maxResults int) ([]types.WebResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > maxResults {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}

type fakeDocs struct {
	context string
	chunks  []types.DocumentChunk
	err     error
}

func (f *fakeDocs) Search(_ context.Context, _, _ string, _ int, _ float64) ([]types.DocumentChunk, error) {
	return f.chunks, f.err
}

func (f *fakeDocs) Context(_ context.Context, _, _ string, _ int) (string, error) {
	return f.context, f.err
}

type fakeDrafter struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeDrafter) Draft(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type fakeSnippets struct {
	chunks []types.DocumentChunk
	err    error
}

func (f *fakeSnippets) Put(_ context.Context, chunks []types.DocumentChunk) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.chunks = append(f.chunks, chunks...)
	return len(chunks), nil
}

func webResults(n int) []types.WebResult {
	results := make([]types.WebResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, types.WebResult{
			Title: fmt.Sprintf("Source %d", i+1),
			URL:   fmt.Sprintf("https://example.org/%d", i+1),
			Content: fmt.Sprintf("Research shows that factor %d matters a great deal. "+
				"The study finds a %d percent improvement across trials. "+
				"Evidence suggests the trend continues under varied conditions.", i+1, (i+1)*10),
			Score: 1.0 - float64(i)*0.1,
		})
	}
	return results
}

func TestResearchHappyPath(t *testing.T) {
	web := &fakeWeb{results: webResults(5)}
	snippets := &fakeSnippets{}
	var out bytes.Buffer
	e := New(nil, web, nil, snippets, types.WorkflowConfig{}, &out)

	res := e.Research(context.Background(), "heart health")

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %q, want %q", res.Status, StatusCompleted)
	}
	if res.Query != "heart health" {
		t.Errorf("Query = %q", res.Query)
	}
	if res.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", res.Iterations)
	}

	if res.Quality.ResultCount != 1 {
		t.Errorf("ResultCount = %d, want 1", res.Quality.ResultCount)
	}
	if res.Quality.InsightCount == 0 {
		t.Error("InsightCount = 0, want insights from indicator sentences")
	}
	if res.Quality.Score <= 0 {
		t.Errorf("Score = %d, want > 0", res.Quality.Score)
	}

	if !strings.HasPrefix(res.Report, "# Research Report: heart health") {
		t.Errorf("report header missing:\n%s", res.Report)
	}
	for _, section := range []string{
		"## Executive Summary",
		"## Key Findings",
		"## Research Results Summary",
		"## Research Quality Analysis",
		"## Recommendations",
		"## Conclusion",
	} {
		if !strings.Contains(res.Report, section) {
			t.Errorf("report missing section %q", section)
		}
	}
	if !strings.Contains(res.Report, fmt.Sprintf("*Report generated by Deep Research AI Agent with %d data points*", res.Quality.TotalNodes)) {
		t.Errorf("report missing data-points footer:\n%s", res.Report)
	}

	// Snippets land in the store, one chunk per web result.
	if len(snippets.chunks) != 5 {
		t.Errorf("stored %d snippets, want 5", len(snippets.chunks))
	}
	if len(web.queries) != 1 || web.queries[0] != "heart health" {
		t.Errorf("web queries = %v", web.queries)
	}
}

func TestResearchTreeStructure(t *testing.T) {
	web := &fakeWeb{results: webResults(3)}
	e := New(nil, web, nil, nil, types.WorkflowConfig{}, nil)

	res := e.Research(context.Background(), "renewable energy")

	snap := res.Tree
	root, ok := snap.Nodes[snap.RootID]
	if !ok {
		t.Fatal("snapshot missing root node")
	}
	if root.Content != "Research: renewable energy" {
		t.Errorf("root content = %q", root.Content)
	}
	if len(root.ChildrenIDs) != 1 {
		t.Fatalf("root children = %d, want 1 query node", len(root.ChildrenIDs))
	}

	query := snap.Nodes[root.ChildrenIDs[0]]
	if query.Kind != tree.KindQuery {
		t.Errorf("query node kind = %q", query.Kind)
	}
	if query.Metadata.Extra["type"] != "initial_query" {
		t.Errorf("query Extra = %v", query.Metadata.Extra)
	}
	if len(query.ChildrenIDs) != 1 {
		t.Fatalf("query children = %d, want 1 result node", len(query.ChildrenIDs))
	}

	result := snap.Nodes[query.ChildrenIDs[0]]
	if result.Kind != tree.KindResult {
		t.Errorf("result node kind = %q", result.Kind)
	}
	if !strings.HasPrefix(result.Content, "Research Results for: renewable energy") {
		t.Errorf("result content = %q", result.Content)
	}
	if result.Metadata.Agent != "research_workflow" {
		t.Errorf("result Agent = %q", result.Metadata.Agent)
	}
	if result.Metadata.Extra["results_count"] != "3" {
		t.Errorf("results_count = %q", result.Metadata.Extra["results_count"])
	}

	for _, id := range result.ChildrenIDs {
		child := snap.Nodes[id]
		if child.Kind != tree.KindInsight {
			t.Errorf("result child kind = %q, want insight", child.Kind)
		}
		if child.Metadata.ExtractedBy != "research_workflow" {
			t.Errorf("insight ExtractedBy = %q", child.Metadata.ExtractedBy)
		}
	}
}

func TestResearchInsightCap(t *testing.T) {
	// Every snippet sentence carries an indicator phrase; extraction would
	// return 10 but the tree takes at most MaxInsights.
	web := &fakeWeb{results: webResults(5)}
	e := New(nil, web, nil, nil, types.WorkflowConfig{MaxInsights: 2}, nil)

	res := e.Research(context.Background(), "ai adoption")

	insightCount := 0
	for _, n := range res.Tree.Nodes {
		if n.Kind == tree.KindInsight {
			insightCount++
		}
	}
	if insightCount != 2 {
		t.Errorf("insight nodes = %d, want 2", insightCount)
	}
}

func TestResearchWebFailureDegrades(t *testing.T) {
	web := &fakeWeb{err: fmt.Errorf("connection refused")}
	var out bytes.Buffer
	e := New(nil, web, nil, nil, types.WorkflowConfig{}, &out)

	res := e.Research(context.Background(), "quantum computing")

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %q, want completed despite search failure", res.Status)
	}
	if res.Report == "" {
		t.Error("no report generated")
	}
	if !strings.Contains(out.String(), "warning: web search failed") {
		t.Errorf("missing warning in output:\n%s", out.String())
	}
}

func TestAnalyzeQualityScoring(t *testing.T) {
	e := New(nil, nil, nil, nil, types.WorkflowConfig{}, nil)

	// A tree rich on every axis: 1 result, 6 insights, > 2000 chars,
	// > 8 nodes. Expect 30 + 30 + 25 + 15.
	rich := tree.New("Research: test")
	queryID, _ := rich.AddNode("test", tree.KindQuery, "", tree.Metadata{})
	resultID, _ := rich.AddNode(strings.Repeat("finding ", 300), tree.KindResult, queryID, tree.Metadata{})
	for i := 0; i < 6; i++ {
		rich.AddNode(fmt.Sprintf("insight %d", i), tree.KindInsight, resultID, tree.Metadata{})
	}

	s := e.analyzeQuality(context.Background(), State{Query: "test", Tree: rich, Status: StatusResearchCompleted})
	if s.Quality.Score != 100 {
		t.Errorf("rich tree score = %d, want 100", s.Quality.Score)
	}
	if s.Status != StatusQualityAnalyzed {
		t.Errorf("Status = %q", s.Status)
	}

	// An empty tree scores nothing from insights or results.
	empty := tree.New("Research: empty")
	s = e.analyzeQuality(context.Background(), State{Query: "empty", Tree: empty, Status: StatusResearchCompleted})
	if s.Quality.Score != 0 {
		t.Errorf("empty tree score = %d, want 0", s.Quality.Score)
	}
	if s.Quality.InsightCount != 0 || s.Quality.ResultCount != 0 {
		t.Errorf("empty tree counts = %+v", s.Quality)
	}
}

func TestCreateReportNoInsights(t *testing.T) {
	e := New(nil, nil, nil, nil, types.WorkflowConfig{}, nil)

	empty := tree.New("Research: silent topic")
	s := State{Query: "silent topic", Tree: empty, Status: StatusQualityAnalyzed}
	s = e.createReport(context.Background(), s)

	if s.Status != StatusReportCreated {
		t.Fatalf("Status = %q", s.Status)
	}
	if !strings.Contains(s.Report, "No specific insights were extracted from the research.") {
		t.Errorf("report missing no-insights line:\n%s", s.Report)
	}
	if s.ReportType != ReportExecutive {
		t.Errorf("ReportType = %q, want executive at score 0", s.ReportType)
	}
}

func TestReportTierSelection(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, ReportComprehensive},
		{80, ReportComprehensive},
		{79, ReportSummary},
		{60, ReportSummary},
		{59, ReportExecutive},
		{0, ReportExecutive},
	}

	e := New(nil, nil, nil, nil, types.WorkflowConfig{}, nil)
	for _, tt := range tests {
		s := State{
			Query:   "tiers",
			Tree:    tree.New("Research: tiers"),
			Status:  StatusQualityAnalyzed,
			Quality: QualityAnalysis{Score: tt.score},
		}
		s = e.createReport(context.Background(), s)
		if s.ReportType != tt.want {
			t.Errorf("score %d: ReportType = %q, want %q", tt.score, s.ReportType, tt.want)
		}
	}
}

func TestAskEmptyStoreWithoutWebSearch(t *testing.T) {
	docs := &fakeDocs{context: ""}
	e := New(docs, nil, &fakeDrafter{text: "unused"}, nil, types.WorkflowConfig{}, nil)

	res := e.Ask(context.Background(), "what are the symptoms?", AskOptions{})

	if res.Status != StatusError {
		t.Fatalf("Status = %q, want error", res.Status)
	}
	if !strings.HasPrefix(res.Report, "# Error") {
		t.Errorf("report should begin with an error header:\n%s", res.Report)
	}
	if res.ErrorMessage == "" {
		t.Error("ErrorMessage empty")
	}
}

func TestAskDraftsFromDocumentContext(t *testing.T) {
	docs := &fakeDocs{context: "Context from uploaded documents for \"symptoms\":\n[Source 1: guide.pdf - Chunk 0]\nChest pain and fatigue are common symptoms.\n(Relevance: 0.80)\n"}
	drafter := &fakeDrafter{text: "- Chest pain\n- Fatigue"}
	e := New(docs, nil, drafter, nil, types.WorkflowConfig{}, nil)

	res := e.Ask(context.Background(), "what are the symptoms?", AskOptions{Topic: "medical"})

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %q, want completed", res.Status)
	}
	if !strings.Contains(res.Report, "## AI Analysis") {
		t.Errorf("report missing analysis section:\n%s", res.Report)
	}
	if !strings.Contains(res.Report, "- Chest pain") {
		t.Errorf("report missing drafted text:\n%s", res.Report)
	}

	if len(drafter.prompts) != 1 {
		t.Fatalf("drafter called %d times, want 1", len(drafter.prompts))
	}
	prompt := drafter.prompts[0]
	if !strings.Contains(prompt, `"what are the symptoms?"`) {
		t.Errorf("prompt missing query:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Chest pain and fatigue") {
		t.Errorf("prompt missing document context:\n%s", prompt)
	}
}

func TestAskDrafterFailureFallsBack(t *testing.T) {
	longContext := strings.Repeat("Retrieved sentence with useful details. ", 100)
	docs := &fakeDocs{context: longContext}
	drafter := &fakeDrafter{err: fmt.Errorf("api unreachable")}
	var out bytes.Buffer
	e := New(docs, nil, drafter, nil, types.WorkflowConfig{}, &out)

	res := e.Ask(context.Background(), "details?", AskOptions{})

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %q, want completed with fallback report", res.Status)
	}
	if !strings.Contains(res.Report, "## Retrieved Information") {
		t.Errorf("fallback report missing context section:\n%s", res.Report)
	}
	if !strings.Contains(res.Report, "[Content truncated for readability]") {
		t.Error("long context should be truncated in fallback report")
	}
	if strings.Contains(res.Report, "## AI Analysis") {
		t.Error("fallback report should not claim an AI analysis")
	}
	if !strings.Contains(out.String(), "warning: drafting failed") {
		t.Errorf("missing drafting warning:\n%s", out.String())
	}
}

func TestAskWebSearchGate(t *testing.T) {
	docs := &fakeDocs{context: "some document context about storage systems and more"}
	web := &fakeWeb{results: webResults(5)}
	drafter := &fakeDrafter{text: "analysis"}

	// Disabled: the provider is never consulted.
	e := New(docs, web, drafter, nil, types.WorkflowConfig{}, nil)
	e.Ask(context.Background(), "storage?", AskOptions{UseWebSearch: false})
	if len(web.queries) != 0 {
		t.Errorf("web queried %d times with search disabled", len(web.queries))
	}

	// Enabled: consulted once.
	e.Ask(context.Background(), "storage?", AskOptions{UseWebSearch: true})
	if len(web.queries) != 1 {
		t.Errorf("web queried %d times with search enabled, want 1", len(web.queries))
	}
}

func TestWebSearchStageStatuses(t *testing.T) {
	base := State{Query: "q", UseWebSearch: true}

	tests := []struct {
		name       string
		web        *fakeWeb
		state      State
		wantStatus string
		wantCtx    bool
	}{
		{
			name:       "skipped when disabled",
			web:        &fakeWeb{results: webResults(2)},
			state:      State{Query: "q", UseWebSearch: false},
			wantStatus: StatusWebSearchSkipped,
		},
		{
			name:       "completed with results",
			web:        &fakeWeb{results: webResults(5)},
			state:      base,
			wantStatus: StatusWebSearchCompleted,
			wantCtx:    true,
		},
		{
			name:       "no results",
			web:        &fakeWeb{},
			state:      base,
			wantStatus: StatusNoWebResults,
		},
		{
			name:       "provider error",
			web:        &fakeWeb{err: fmt.Errorf("timeout")},
			state:      base,
			wantStatus: StatusWebSearchError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(nil, tt.web, nil, nil, types.WorkflowConfig{}, nil)
			s := e.webSearch(context.Background(), tt.state)
			if s.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", s.Status, tt.wantStatus)
			}
			if tt.wantCtx && s.WebContext == "" {
				t.Error("WebContext empty")
			}
			if !tt.wantCtx && s.WebContext != "" {
				t.Errorf("WebContext = %q, want empty", s.WebContext)
			}
		})
	}
}

func TestWebSearchContextFormat(t *testing.T) {
	web := &fakeWeb{results: webResults(5)}
	e := New(nil, web, nil, nil, types.WorkflowConfig{}, nil)

	s := e.webSearch(context.Background(), State{Query: "q", UseWebSearch: true})

	// Top 3 only, each under a bracketed title header.
	for i := 1; i <= 3; i++ {
		if !strings.Contains(s.WebContext, fmt.Sprintf("[Source %d]", i)) {
			t.Errorf("WebContext missing [Source %d]:\n%s", i, s.WebContext)
		}
	}
	if strings.Contains(s.WebContext, "[Source 4]") {
		t.Error("WebContext should hold at most 3 snippets")
	}
}

func TestCombineContextUsesDocumentsOnly(t *testing.T) {
	e := New(nil, nil, nil, nil, types.WorkflowConfig{}, nil)

	s := State{
		Query:           "q",
		DocumentContext: "doc context",
		WebContext:      "web context",
	}
	s = e.combineContext(context.Background(), s)

	if s.CombinedContext != "doc context" {
		t.Errorf("CombinedContext = %q, want document context only", s.CombinedContext)
	}
	if s.WebContext != "web context" {
		t.Error("WebContext should remain recorded in state")
	}
	if s.Status != StatusContextCombined {
		t.Errorf("Status = %q", s.Status)
	}
}

func TestAskStatusProgression(t *testing.T) {
	// No documents uploaded, empty store, no web search: the run must
	// still terminate with an error report rather than a crash.
	docs := &fakeDocs{}
	e := New(docs, nil, nil, nil, types.WorkflowConfig{}, nil)

	res := e.Ask(context.Background(), "anything", AskOptions{})
	if res.Status != StatusError {
		t.Fatalf("Status = %q, want error", res.Status)
	}
	if res.Tree.RootID == "" {
		t.Error("result should carry the tree snapshot even on error")
	}
}

func TestResearchProgressOutput(t *testing.T) {
	web := &fakeWeb{results: webResults(2)}
	var out bytes.Buffer
	e := New(nil, web, nil, nil, types.WorkflowConfig{}, &out)

	e.Research(context.Background(), "solar power")

	for _, line := range []string{
		"starting research on: solar power",
		"conducting research...",
		"analyzing research quality...",
		"creating report...",
		"RESEARCH SUMMARY",
	} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("progress output missing %q", line)
		}
	}
}
