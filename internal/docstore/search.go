// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/meshintel/deep-research/pkg/types"
)

// stopWords are filtered out of queries before scoring so that filler
// terms ("what are the ...") do not dominate the overlap fraction.
var stopWords = map[string]bool{
	"what": true, "are": true, "the": true, "main": true, "for": true,
	"of": true, "in": true, "to": true, "and": true, "a": true, "an": true,
	"is": true, "that": true, "this": true, "with": true, "from": true,
	"by": true, "on": true, "at": true, "as": true, "be": true,
	"have": true, "has": true, "will": true, "would": true, "could": true,
	"should": true,
}

// partialMatchWeight discounts partial word matches relative to exact
// term hits when scoring a chunk.
const partialMatchWeight = 0.7

// Search returns stored chunks relevant to query, ranked by keyword
// overlap. Candidates are fetched by the most salient query term, scored
// as the fraction of meaningful query terms present in the chunk (with
// discounted credit for partial word matches), and filtered at threshold.
// Zero limit and threshold fall back to the store defaults. An empty
// result is a valid outcome, not an error.
func (s *Store) Search(ctx context.Context, query, topic string, limit int, threshold float64) ([]types.DocumentChunk, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	if threshold <= 0 {
		threshold = s.threshold
	}

	terms := meaningfulTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	// The last meaningful term is usually the subject noun; use it to
	// narrow the candidate set before scoring.
	salient := terms[len(terms)-1]

	sqlQuery := `SELECT id, document_name, content, topic, chunk_index
		FROM chunks WHERE content LIKE '%' || ? || '%'`
	args := []any{salient}
	if topic != "" {
		sqlQuery += ` AND topic = ?`
		args = append(args, topic)
	}
	sqlQuery += ` ORDER BY document_name, chunk_index LIMIT ?`
	args = append(args, limit*2)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var scored []types.DocumentChunk
	for rows.Next() {
		var c types.DocumentChunk
		if err := rows.Scan(&c.ID, &c.DocumentName, &c.Content, &c.Topic, &c.Index); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		c.Relevance = scoreChunk(c.Content, terms)
		if c.Relevance >= threshold {
			scored = append(scored, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Context runs a search and formats the hits as a context block for the
// drafting prompt, with per-source headers and relevance annotations.
// An empty string means no chunk reached the threshold.
func (s *Store) Context(ctx context.Context, query, topic string, maxChunks int) (string, error) {
	chunks, err := s.Search(ctx, query, topic, maxChunks, 0)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Context from uploaded documents for %q:\n", query)
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n[Source %d: %s - Chunk %d]\n%s\n(Relevance: %.2f)\n",
			i+1, c.DocumentName, c.Index, c.Content, c.Relevance)
	}
	return b.String(), nil
}

// meaningfulTerms lowercases and strips query terms, dropping stop words
// and terms of two characters or fewer. When nothing survives the filter
// the raw terms are used instead.
func meaningfulTerms(query string) []string {
	fields := strings.Fields(query)
	var terms []string
	for _, f := range fields {
		term := strings.ToLower(strings.Trim(f, "?.,!"))
		if len(term) > 2 && !stopWords[term] {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		for _, f := range fields {
			if term := strings.ToLower(strings.Trim(f, "?.,!")); term != "" {
				terms = append(terms, term)
			}
		}
	}
	return terms
}

// scoreChunk returns the fraction of query terms present in content, in
// [0,1]. Terms found only inside longer words earn partial credit.
func scoreChunk(content string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(content)) {
		words[strings.Trim(w, "?.,!:;()\"'")] = true
	}

	exact := 0
	partial := 0
	for _, term := range terms {
		if words[term] {
			exact++
			continue
		}
		for w := range words {
			if strings.Contains(w, term) {
				partial++
				break
			}
		}
	}

	score := float64(exact) / float64(len(terms))
	if partial > 0 {
		withPartial := (float64(exact) + partialMatchWeight*float64(partial)) / float64(len(terms))
		if withPartial > score {
			score = withPartial
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}
