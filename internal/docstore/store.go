// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docstore persists document chunks in SQLite and answers
// keyword-overlap retrieval queries for the RAG pipeline.
package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/deep-research/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "documents.db"

	defaultMaxResults = 5
	defaultThreshold  = 0.3
)

// Store manages the document chunk SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
	threshold  float64
}

// NewStore opens or creates the chunk database at dataDir/index/documents.db
// and creates the schema if it does not exist.
func NewStore(cfg types.DocStoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	s := &Store{db: db, maxResults: maxResults, threshold: threshold}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			topic TEXT,
			total_chunks INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			document_name TEXT NOT NULL REFERENCES documents(name),
			content TEXT NOT NULL,
			topic TEXT,
			chunk_index INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_name)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_topic ON chunks(topic)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put stores a document's chunks, replacing any previous chunks for the
// same document. The document row and its chunks are written in one
// transaction. It returns the number of chunks stored.
func (s *Store) Put(ctx context.Context, chunks []types.DocumentChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	name := chunks[0].DocumentName
	topic := chunks[0].Topic

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (name, topic, total_chunks) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET topic=excluded.topic, total_chunks=excluded.total_chunks`,
		name, topic, len(chunks),
	); err != nil {
		return 0, fmt.Errorf("upserting document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE document_name = ?`, name,
	); err != nil {
		return 0, fmt.Errorf("deleting old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, document_name, content, topic, chunk_index)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentName, c.Content, c.Topic, c.Index); err != nil {
			return 0, fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return len(chunks), nil
}

// Documents lists stored documents, optionally filtered by topic.
func (s *Store) Documents(ctx context.Context, topic string) ([]types.Document, error) {
	query := `SELECT name, topic, total_chunks FROM documents`
	var args []any
	if topic != "" {
		query += ` WHERE topic = ?`
		args = append(args, topic)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var d types.Document
		if err := rows.Scan(&d.Name, &d.Topic, &d.TotalChunks); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
