// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads uploaded files and splits their text into
// retrievable chunks for the document store. Plain text is read directly;
// PDF extraction is delegated to an external tool through the Extractor
// interface.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/meshintel/deep-research/pkg/types"
)

// Extractor pulls plain text out of a binary document format. Different
// backends (pdftotext, test fakes) implement this interface.
type Extractor interface {
	// Extract reads the file at path and returns its text content.
	Extract(path string) (string, error)
}

// PdftotextExtractor extracts PDF text by running the pdftotext tool.
type PdftotextExtractor struct{}

// Extract runs `pdftotext path -` and returns its stdout.
func (PdftotextExtractor) Extract(path string) (string, error) {
	out, err := exec.Command("pdftotext", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("running pdftotext: %w", err)
	}
	return string(out), nil
}

// FileContent holds the text read from one uploaded file.
type FileContent struct {
	// Name is the file's base name.
	Name string

	// Content is the extracted text.
	Content string
}

// ReadFile reads one uploaded file, dispatching on extension: .txt and .md
// are read directly, .pdf goes through the extractor. Unsupported
// extensions and unreadable files are errors.
func ReadFile(path string, pdf Extractor) (FileContent, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return FileContent{}, fmt.Errorf("reading %s: %w", path, err)
		}
		return FileContent{Name: filepath.Base(path), Content: string(data)}, nil
	case ".pdf":
		text, err := pdf.Extract(path)
		if err != nil {
			return FileContent{}, fmt.Errorf("extracting %s: %w", path, err)
		}
		return FileContent{Name: filepath.Base(path), Content: text}, nil
	default:
		return FileContent{}, fmt.Errorf("unsupported file type %q: %s", filepath.Ext(path), path)
	}
}

// BatchSummary holds counts from an ingestion run.
type BatchSummary struct {
	Ingested int
	Failed   int
	Chunks   int
}

// Storer accepts chunks for persistence. *docstore.Store implements it.
type Storer interface {
	Put(ctx context.Context, chunks []types.DocumentChunk) (int, error)
}

// IngestFiles reads, chunks, and stores each file, printing per-file
// status to w. A file that fails to read or store is reported and skipped;
// the batch continues.
func IngestFiles(ctx context.Context, store Storer, paths []string, topic string, cfg types.IngestConfig, pdf Extractor, w io.Writer) BatchSummary {
	var summary BatchSummary
	for _, path := range paths {
		fc, err := ReadFile(path, pdf)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", filepath.Base(path), err)
			summary.Failed++
			continue
		}

		chunks := Chunk(fc, topic, cfg)
		n, err := store.Put(ctx, chunks)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", fc.Name, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "ingested %s (%d chunks)\n", fc.Name, n)
		summary.Ingested++
		summary.Chunks += n
	}
	fmt.Fprintf(w, "\ningested: %d, failed: %d, chunks: %d\n",
		summary.Ingested, summary.Failed, summary.Chunks)
	return summary
}
