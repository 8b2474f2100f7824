// Package store defines the vector-store contract the pipeline depends on
// and its Qdrant and in-memory implementations.
package store

import (
	"context"

	"syllabusgpt/internal/model"
)

// Metadata is the fixed per-chunk metadata schema. No extension fields.
type Metadata struct {
	Source  string            `json:"source"`
	Type    model.ContentType `json:"type"`
	Subject model.SubjectTag  `json:"subject"`
}

// Point is one embedded chunk ready for upsert.
type Point struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata Metadata
}

// Match is one ranked query hit.
type Match struct {
	ID       string
	Score    float32
	Text     string
	Metadata Metadata
}

// Filter is a conjunction of equality constraints over chunk metadata. Nil
// string/zero values mean "no constraint on this field".
type Filter struct {
	Subject model.SubjectTag
	Type    model.ContentType
}

// Empty reports whether the filter constrains nothing.
func (f Filter) Empty() bool {
	return f.Subject == "" && f.Type == ""
}

// VectorStore persists chunk embeddings with metadata and answers filtered
// nearest-neighbor queries. Implementations must preserve rank order in
// Query results.
type VectorStore interface {
	// Upsert inserts points; callers batch, implementations need not.
	Upsert(ctx context.Context, points []Point) error
	// DeleteByMetadata removes every point matching source and content
	// type. Used before re-ingesting a file so chunk IDs never collide
	// with stale entries.
	DeleteByMetadata(ctx context.Context, source string, contentType model.ContentType) error
	// Query returns up to topK nearest points to vector, restricted by
	// filter, best first.
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error)
	// Scroll visits every stored point's ID and metadata. Used by the
	// metadata-repair job.
	Scroll(ctx context.Context, visit func(id string, meta Metadata) error) error
	// UpdateMetadata overwrites the metadata payload of one point.
	UpdateMetadata(ctx context.Context, id string, meta Metadata) error
}
