package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/deep-research/pkg/types"
)

// fakeExtractor returns canned text for any path.
type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(string) (string, error) {
	return f.text, f.err
}

// memStorer collects chunks in memory.
type memStorer struct {
	chunks []types.DocumentChunk
	err    error
}

func (m *memStorer) Put(_ context.Context, chunks []types.DocumentChunk) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.chunks = append(m.chunks, chunks...)
	return len(chunks), nil
}

func TestReadFilePlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	fc, err := ReadFile(path, fakeExtractor{})
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", fc.Name)
	assert.Equal(t, "hello world", fc.Content)
}

func TestReadFilePDFDelegates(t *testing.T) {
	fc, err := ReadFile("report.pdf", fakeExtractor{text: "extracted text"})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", fc.Name)
	assert.Equal(t, "extracted text", fc.Content)
}

func TestReadFileUnsupported(t *testing.T) {
	_, err := ReadFile("slides.pptx", fakeExtractor{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.txt"), fakeExtractor{})
	require.Error(t, err)
}

func TestChunkSmallDocumentSingleChunk(t *testing.T) {
	fc := FileContent{Name: "small.txt", Content: "short body"}

	chunks := Chunk(fc, "general", types.IngestConfig{})
	require.Len(t, chunks, 1)
	assert.Equal(t, "small.txt_chunk_0", chunks[0].ID)
	assert.Equal(t, "short body", chunks[0].Content)
	assert.Equal(t, "general", chunks[0].Topic)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunkSplitsWithOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "Sentence number %d carries a bit of padding text. ", i)
	}
	fc := FileContent{Name: "long.txt", Content: b.String()}

	cfg := types.IngestConfig{ChunkSize: 500, ChunkOverlap: 100}
	chunks := Chunk(fc, "", cfg)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, fmt.Sprintf("long.txt_chunk_%d", i), c.ID)
		assert.LessOrEqual(t, len(c.Content), 500)
	}

	// Consecutive chunks must share overlapping text.
	tail := chunks[0].Content[len(chunks[0].Content)-50:]
	assert.Contains(t, chunks[1].Content, tail)
}

func TestChunkBreaksAtSentenceBoundary(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Sentence %d ends cleanly here. ", i)
	}
	fc := FileContent{Name: "doc.txt", Content: b.String()}

	chunks := Chunk(fc, "", types.IngestConfig{ChunkSize: 400, ChunkOverlap: 50})
	require.Greater(t, len(chunks), 1)
	// Every non-final chunk should end just after a terminator.
	for _, c := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimRight(c.Content, " ")
		assert.Regexp(t, `[.!?]$`, trimmed)
	}
}

func TestIngestFilesContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("usable content for the store"), 0o644))
	bad := filepath.Join(dir, "bad.pptx")

	store := &memStorer{}
	var buf bytes.Buffer
	summary := IngestFiles(context.Background(), store, []string{bad, good}, "general",
		types.IngestConfig{}, fakeExtractor{}, &buf)

	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Chunks)
	assert.Len(t, store.chunks, 1)
	assert.Contains(t, buf.String(), "failed  bad.pptx")
	assert.Contains(t, buf.String(), "ingested good.txt")
}

func TestIngestFilesStoreFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	store := &memStorer{err: fmt.Errorf("disk full")}
	var buf bytes.Buffer
	summary := IngestFiles(context.Background(), store, []string{path}, "",
		types.IngestConfig{}, fakeExtractor{}, &buf)

	assert.Equal(t, 0, summary.Ingested)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, buf.String(), "disk full")
}
