// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// WebResult is a ranked snippet returned by the web search provider.
type WebResult struct {
	// Title is the page title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the source page address.
	URL string `json:"url" yaml:"url"`

	// Content is the extracted snippet text.
	Content string `json:"content" yaml:"content"`

	// Score is the provider's relevance rating for the query.
	Score float64 `json:"score" yaml:"score"`
}

// Document describes an ingested file tracked by the document store.
type Document struct {
	// Name is the file's base name (e.g. "healthyheart.pdf").
	Name string `json:"name" yaml:"name"`

	// Topic is the category the document was filed under.
	Topic string `json:"topic" yaml:"topic"`

	// TotalChunks is the number of chunks the document was split into.
	TotalChunks int `json:"total_chunks" yaml:"total_chunks"`
}

// DocumentChunk is one retrievable slice of an ingested document.
type DocumentChunk struct {
	// ID identifies the chunk (e.g. "healthyheart.pdf_chunk_3").
	ID string `json:"id" yaml:"id"`

	// DocumentName is the base name of the source file.
	DocumentName string `json:"document_name" yaml:"document_name"`

	// Content is the chunk text.
	Content string `json:"content" yaml:"content"`

	// Topic is the category inherited from the document.
	Topic string `json:"topic" yaml:"topic"`

	// Index is this chunk's position within the document, starting at 0.
	Index int `json:"index" yaml:"index"`

	// Relevance is a score in [0,1] set by document search; zero when the
	// chunk was not produced by a query.
	Relevance float64 `json:"relevance,omitempty" yaml:"relevance,omitempty"`
}
