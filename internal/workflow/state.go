// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow drives the two research pipelines: a web-research run
// that builds a research tree and scores its own output, and a
// document-RAG run that retrieves stored chunks and drafts an answer.
// Both are fixed ordered stage lists executed synchronously; a stage
// tags the outgoing state with a status describing its own outcome.
package workflow

import "github.com/meshintel/deep-research/internal/tree"

// Status values tagged onto the state by pipeline stages.
const (
	StatusStarted           = "started"
	StatusResearchCompleted = "research_completed"
	StatusQualityAnalyzed   = "quality_analyzed"
	StatusReportCreated     = "report_created"
	StatusCompleted         = "completed"
	StatusError             = "error"

	StatusRAGStarted         = "rag_started"
	StatusNoDocuments        = "no_documents"
	StatusDocumentsProcessed = "documents_processed"
	StatusDocumentsSearched  = "documents_searched"
	StatusNoDocumentsFound   = "no_documents_found"
	StatusWebSearchSkipped   = "web_search_skipped"
	StatusWebSearchCompleted = "web_search_completed"
	StatusNoWebResults       = "no_web_results"
	StatusWebSearchError     = "web_search_error"
	StatusContextCombined    = "context_combined"
)

// Report verbosity tiers selected by the quality score.
const (
	ReportComprehensive = "comprehensive"
	ReportSummary       = "summary"
	ReportExecutive     = "executive"
)

// QualityAnalysis scores a finished research tree from four independent
// weighted contributions. Deterministic; the same tree always scores the
// same.
type QualityAnalysis struct {
	Score         int      `json:"quality_score" yaml:"quality_score"`
	InsightCount  int      `json:"insights_count" yaml:"insights_count"`
	ResultCount   int      `json:"results_count" yaml:"results_count"`
	ContentLength int      `json:"content_length" yaml:"content_length"`
	TotalNodes    int      `json:"total_nodes" yaml:"total_nodes"`
	Feedback      []string `json:"feedback" yaml:"feedback"`
}

// State is the record threaded through a pipeline run. Each stage
// receives the current state by value and returns a new one reflecting
// its updates; no stage mutates a state another stage holds.
type State struct {
	Query         string
	Topic         string
	Tree          *tree.Tree
	Report        string
	ReportType    string
	Status        string
	ErrorMessage  string
	Iteration     int
	MaxIterations int

	UploadedFiles []string
	UseWebSearch  bool

	DocumentContext string
	WebContext      string
	CombinedContext string

	Quality QualityAnalysis
}

// Result is what a pipeline run hands back to the caller.
type Result struct {
	Query        string          `json:"query" yaml:"query"`
	Report       string          `json:"report" yaml:"report"`
	Status       string          `json:"status" yaml:"status"`
	ErrorMessage string          `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Tree         tree.Snapshot   `json:"research_tree" yaml:"research_tree"`
	Quality      QualityAnalysis `json:"quality_analysis" yaml:"quality_analysis"`
	Iterations   int             `json:"iterations" yaml:"iterations"`
}

func resultFromState(s State) Result {
	r := Result{
		Query:        s.Query,
		Report:       s.Report,
		Status:       s.Status,
		ErrorMessage: s.ErrorMessage,
		Quality:      s.Quality,
		Iterations:   s.Iteration,
	}
	if s.Tree != nil {
		r.Tree = s.Tree.Snapshot()
	}
	return r
}
