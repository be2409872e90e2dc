// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/meshintel/deep-research/internal/analysis"
	"github.com/meshintel/deep-research/internal/tree"
	"github.com/meshintel/deep-research/pkg/types"
)

// Research runs the web-research pipeline for query: search the web,
// grow a research tree, score the outcome, and render a Markdown report.
func (e *Engine) Research(ctx context.Context, query string) Result {
	stages := []Stage{
		{Name: "start_research", Run: e.startResearch},
		{Name: "conduct_research", Run: e.conductResearch},
		{Name: "analyze_quality", Run: e.analyzeQuality},
		{Name: "create_report", Run: e.createReport},
		{Name: "finalize", Run: e.finalizeResearch},
	}

	initial := State{
		Query:         query,
		MaxIterations: e.cfg.MaxIterations,
	}
	final := e.run(ctx, stages, initial)
	return resultFromState(final)
}

func (e *Engine) startResearch(_ context.Context, s State) State {
	fmt.Fprintf(e.out, "starting research on: %s\n", s.Query)
	s.Status = StatusStarted
	s.Iteration = 0
	return s
}

// conductResearch builds the research tree: a query node, one
// concatenated result node beneath it, and up to MaxInsights insight
// nodes beneath that. A failed web search degrades to an empty result
// set; nodes added before any failure remain in the tree.
func (e *Engine) conductResearch(ctx context.Context, s State) State {
	if s.Status == StatusError {
		return s
	}
	fmt.Fprintf(e.out, "conducting research...\n")

	t := tree.New("Research: " + s.Query)
	s.Tree = t

	queryID, err := t.AddNode(s.Query, tree.KindQuery, "", tree.Metadata{
		Extra: map[string]string{"depth": "0", "type": "initial_query"},
	})
	if err != nil {
		return fail(s, fmt.Sprintf("adding query node: %v", err))
	}

	var results []types.WebResult
	if e.web == nil {
		fmt.Fprintf(e.out, "warning: web search unavailable\n")
	} else {
		results, err = e.web.Search(ctx, s.Query, webSnippetLimit)
		if err != nil {
			fmt.Fprintf(e.out, "warning: web search failed: %v\n", err)
			results = nil
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Research Results for: %s\n\n", s.Query)
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		fmt.Fprintf(&b, "   Content: %s...\n\n", truncate(r.Content, 300))

		e.storeSnippet(ctx, title, r, i)
	}
	fmt.Fprintf(e.out, "found %d valid results\n", len(results))

	output := b.String()
	resultID, err := t.AddNode(output, tree.KindResult, queryID, tree.Metadata{
		Agent: "research_workflow",
		Extra: map[string]string{
			"iteration":     "1",
			"results_count": strconv.Itoa(len(results)),
		},
	})
	if err != nil {
		return fail(s, fmt.Sprintf("adding result node: %v", err))
	}

	report := analysis.ExtractInsights(output, s.Query)
	insights := report.Insights
	if len(insights) > e.cfg.MaxInsights {
		insights = insights[:e.cfg.MaxInsights]
	}
	for _, insight := range insights {
		if _, err := t.AddNode(insight, tree.KindInsight, resultID, tree.Metadata{
			ExtractedBy: "research_workflow",
		}); err != nil {
			return fail(s, fmt.Sprintf("adding insight node: %v", err))
		}
	}
	fmt.Fprintf(e.out, "extracted %d insights\n", len(insights))

	s.Status = StatusResearchCompleted
	s.Iteration++
	return s
}

// storeSnippet persists one web snippet into the document store so later
// RAG runs can retrieve it. Failures warn and move on.
func (e *Engine) storeSnippet(ctx context.Context, title string, r types.WebResult, index int) {
	if e.snippets == nil || r.Content == "" {
		return
	}
	chunk := types.DocumentChunk{
		ID:           fmt.Sprintf("%s_web_%d", title, index),
		DocumentName: title,
		Content:      r.Content,
		Topic:        "web-research",
		Index:        0,
	}
	if _, err := e.snippets.Put(ctx, []types.DocumentChunk{chunk}); err != nil {
		fmt.Fprintf(e.out, "warning: could not store web snippet %q: %v\n", title, err)
	}
}

// analyzeQuality scores the tree 0-100 from four independent weighted
// contributions with three-tier thresholds each.
func (e *Engine) analyzeQuality(_ context.Context, s State) State {
	if s.Status == StatusError {
		return s
	}
	fmt.Fprintf(e.out, "analyzing research quality...\n")

	if s.Tree == nil {
		return fail(s, "quality analysis requires a research tree")
	}

	insights := s.Tree.Insights()
	results := s.Tree.Results()

	score := 0
	var feedback []string

	switch {
	case len(insights) >= 5:
		score += 30
		feedback = append(feedback, "Good insight extraction")
	case len(insights) >= 3:
		score += 20
		feedback = append(feedback, "Moderate insight extraction")
	default:
		feedback = append(feedback, "Limited insights extracted")
	}

	if len(results) >= 1 {
		score += 30
		feedback = append(feedback, "Research results obtained")
	} else {
		feedback = append(feedback, "No research results")
	}

	totalContent := s.Tree.TotalContentLen()
	switch {
	case totalContent > 2000:
		score += 25
		feedback = append(feedback, "Rich content gathered")
	case totalContent > 1000:
		score += 15
		feedback = append(feedback, "Adequate content volume")
	default:
		feedback = append(feedback, "Limited content gathered")
	}

	totalNodes := s.Tree.Len()
	switch {
	case totalNodes > 8:
		score += 15
		feedback = append(feedback, "Well-structured research tree")
	case totalNodes > 5:
		score += 10
		feedback = append(feedback, "Basic research structure")
	}

	s.Quality = QualityAnalysis{
		Score:         score,
		InsightCount:  len(insights),
		ResultCount:   len(results),
		ContentLength: totalContent,
		TotalNodes:    totalNodes,
		Feedback:      feedback,
	}
	s.Status = StatusQualityAnalyzed

	fmt.Fprintf(e.out, "quality score: %d/100\n", score)
	return s
}

// createReport assembles the Markdown report. The quality score selects
// the verbosity tier; a low score still produces a complete report.
func (e *Engine) createReport(_ context.Context, s State) State {
	if s.Status == StatusError {
		return s
	}
	fmt.Fprintf(e.out, "creating report...\n")

	if s.Tree == nil {
		return fail(s, "report creation requires a research tree")
	}

	insights := s.Tree.Insights()
	results := s.Tree.Results()

	switch {
	case s.Quality.Score >= 80:
		s.ReportType = ReportComprehensive
	case s.Quality.Score >= 60:
		s.ReportType = ReportSummary
	default:
		s.ReportType = ReportExecutive
	}
	fmt.Fprintf(e.out, "report type: %s\n", s.ReportType)

	parts := []string{
		fmt.Sprintf("# Research Report: %s", s.Query),
		"",
		fmt.Sprintf("**Report Type:** %s", capitalizeWord(s.ReportType)),
		fmt.Sprintf("**Quality Score:** %d/100", s.Quality.Score),
		"",
		"## Executive Summary",
		fmt.Sprintf("This research investigation into '%s' yielded %d key insights", s.Query, len(insights)),
		fmt.Sprintf("from %d research sources. The analysis provides comprehensive coverage of the topic", len(results)),
		"with actionable findings and recommendations.",
		"",
		"## Key Findings",
		"",
	}

	top := insights
	if len(top) > reportInsights {
		top = top[:reportInsights]
	}
	for i, insight := range top {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, insight.Content))
	}
	if len(insights) == 0 {
		parts = append(parts, "No specific insights were extracted from the research.")
	}

	parts = append(parts, "", "## Research Results Summary", "")

	sources := results
	if len(sources) > sourceSummaries {
		sources = sources[:sourceSummaries]
	}
	for i, result := range sources {
		if strings.HasPrefix(result.Content, "Research error") {
			continue
		}
		summary := analysis.Summarize(result.Content, e.cfg.SummarySentences)
		parts = append(parts, fmt.Sprintf("### Source %d", i+1), summary, "")
	}

	parts = append(parts,
		"## Research Quality Analysis",
		fmt.Sprintf("- **Overall Score:** %d/100", s.Quality.Score),
		fmt.Sprintf("- **Insights Extracted:** %d", s.Quality.InsightCount),
		fmt.Sprintf("- **Research Sources:** %d", s.Quality.ResultCount),
		fmt.Sprintf("- **Content Volume:** %d characters", s.Quality.ContentLength),
		fmt.Sprintf("- **Research Depth:** %d data points", s.Quality.TotalNodes),
		"",
		"## Recommendations",
		"Based on the research findings, consider the following next steps:",
		"1. Validate key findings with additional sources",
		"2. Explore specific aspects that require deeper investigation",
		"3. Monitor ongoing developments in this area",
		"4. Apply insights to relevant decision-making processes",
		"",
		"## Conclusion",
		fmt.Sprintf("This research provides a %s overview of '%s'.", s.ReportType, s.Query),
		"The findings should be considered alongside other relevant information and expert judgment.",
		"",
		fmt.Sprintf("*Report generated by Deep Research AI Agent with %d data points*", s.Tree.Len()),
	)

	s.Report = strings.Join(parts, "\n")
	s.Status = StatusReportCreated
	return s
}

// finalizeResearch sets the terminal status and logs a run summary. An
// error state stays an error; it is surfaced, not overwritten.
func (e *Engine) finalizeResearch(_ context.Context, s State) State {
	if s.Status == StatusError {
		fmt.Fprintf(e.out, "workflow completed with error: %s\n", s.ErrorMessage)
		return s
	}

	fmt.Fprintf(e.out, "research workflow completed\n")
	if s.Tree != nil {
		divider := strings.Repeat("=", 50)
		fmt.Fprintf(e.out, "\n%s\nRESEARCH SUMMARY\n%s\n", divider, divider)
		fmt.Fprintf(e.out, "Research Topic: %s\n", s.Query)
		fmt.Fprintf(e.out, "Total Data Points: %d\n", s.Tree.Len())
		fmt.Fprintf(e.out, "Research Sources: %d\n", len(s.Tree.Results()))
		fmt.Fprintf(e.out, "Insights Extracted: %d\n", len(s.Tree.Insights()))
		fmt.Fprintf(e.out, "Quality Score: %d/100\n", s.Quality.Score)
	}

	s.Status = StatusCompleted
	return s
}

// truncate cuts s to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func capitalizeWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
