// Package retrieve answers "give me the knowledge-base text relevant to this
// query" with metadata-filtered vector search.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"syllabusgpt/internal/model"
	"syllabusgpt/internal/store"
)

const DefaultTopK = 10

// Embedder converts query text into the same vector space the knowledge
// base was ingested with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever struct {
	embedder Embedder
	vectors  store.VectorStore
}

func NewRetriever(embedder Embedder, vectors store.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, vectors: vectors}
}

// BuildFilter derives the metadata filter from caller intent. The subject
// constraint is present only when a specific subject was asked for; the
// content-type constraint is always present and derived solely from usePYQ.
func BuildFilter(subject string, usePYQ bool) store.Filter {
	f := store.Filter{Type: model.ContentBook}
	if usePYQ {
		f.Type = model.ContentPYQ
	}
	if subject != "" && !strings.EqualFold(subject, model.SubjectAll) {
		f.Subject = model.SubjectTag(subject)
	}
	return f
}

// Context returns the top-k matching chunk texts for query, joined by blank
// lines in store rank order. Empty string when nothing matches.
func (r *Retriever) Context(ctx context.Context, query, subject string, usePYQ bool, topK int) (string, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query failed: %w", err)
	}

	matches, err := r.vectors.Query(ctx, vector, topK, BuildFilter(subject, usePYQ))
	if err != nil {
		return "", fmt.Errorf("vector query failed: %w", err)
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// Search is the raw, unfiltered similarity query backing the debug endpoint.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]store.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}
	matches, err := r.vectors.Query(ctx, vector, topK, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	return matches, nil
}
