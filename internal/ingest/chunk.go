// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"

	"github.com/meshintel/deep-research/pkg/types"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// Chunk splits a file's content into overlapping chunks sized per cfg.
// A document shorter than the chunk size becomes a single chunk. Split
// points prefer sentence boundaries within the trailing 200 characters of
// a chunk so sentences are not cut mid-thought.
func Chunk(fc FileContent, topic string, cfg types.IngestConfig) []types.DocumentChunk {
	size := cfg.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}

	content := fc.Content
	if len(content) <= size {
		return []types.DocumentChunk{{
			ID:           chunkID(fc.Name, 0),
			DocumentName: fc.Name,
			Content:      content,
			Topic:        topic,
			Index:        0,
		}}
	}

	var chunks []types.DocumentChunk
	start := 0
	for start < len(content) {
		end := start + size
		if end >= len(content) {
			end = len(content)
		} else {
			end = sentenceBoundary(content, start, end)
		}

		chunks = append(chunks, types.DocumentChunk{
			ID:           chunkID(fc.Name, len(chunks)),
			DocumentName: fc.Name,
			Content:      content[start:end],
			Topic:        topic,
			Index:        len(chunks),
		})

		if end == len(content) {
			break
		}
		// Overlap must never stall the scan when chunks come out short.
		if next := end - overlap; next > start {
			start = next
		} else {
			start = end
		}
	}
	return chunks
}

// sentenceBoundary scans backwards from end for a sentence terminator,
// looking at most 200 characters back and never past the chunk midpoint.
// It returns the position just after the terminator, or end unchanged.
func sentenceBoundary(content string, start, end int) int {
	floor := end - 200
	if mid := start + (end-start)/2; mid > floor {
		floor = mid
	}
	for i := end; i > floor; i-- {
		switch content[i-1] {
		case '.', '!', '?':
			return i
		}
	}
	return end
}

func chunkID(name string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", name, index)
}
