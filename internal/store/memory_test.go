package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syllabusgpt/internal/model"
)

func bookPoint(id, source, text string, vector []float32) Point {
	return Point{
		ID:     id,
		Vector: vector,
		Text:   text,
		Metadata: Metadata{
			Source: source, Type: model.ContentBook, Subject: model.SubjectAI,
		},
	}
}

func TestMemoryUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.Upsert(ctx, []Point{
		bookPoint("p1", "ai_book.pdf", "exact", []float32{1, 0, 0}),
		bookPoint("p2", "ai_book.pdf", "close", []float32{0.9, 0.4, 0}),
		bookPoint("p3", "ai_book.pdf", "far", []float32{0, 0, 1}),
	}))

	matches, err := mem.Query(ctx, []float32{1, 0, 0}, 2, Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].Text)
	assert.Equal(t, "close", matches[1].Text)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryQueryFilter(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.Upsert(ctx, []Point{
		{ID: "b", Vector: []float32{1, 0}, Text: "book", Metadata: Metadata{Source: "s.pdf", Type: model.ContentBook, Subject: model.SubjectAI}},
		{ID: "q", Vector: []float32{1, 0}, Text: "pyq", Metadata: Metadata{Source: "s.pdf", Type: model.ContentPYQ, Subject: model.SubjectAI}},
		{ID: "m", Vector: []float32{1, 0}, Text: "ml", Metadata: Metadata{Source: "m.pdf", Type: model.ContentBook, Subject: model.SubjectML}},
	}))

	matches, err := mem.Query(ctx, []float32{1, 0}, 10, Filter{Subject: model.SubjectAI, Type: model.ContentBook})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "book", matches[0].Text)

	matches, err = mem.Query(ctx, []float32{1, 0}, 10, Filter{Type: model.ContentBook})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

// Re-ingesting a file is delete-then-insert; the store must not accumulate
// stale chunks for the same source and type.
func TestMemoryDeleteByMetadata(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	first := make([]Point, 3)
	for i := range first {
		first[i] = bookPoint(fmt.Sprintf("old-%d", i), "ai_book.pdf", "old", []float32{1, 0})
	}
	require.NoError(t, mem.Upsert(ctx, first))

	// A PYQ entry for the same source must survive the book deletion.
	require.NoError(t, mem.Upsert(ctx, []Point{{
		ID: "pyq-1", Vector: []float32{1, 0}, Text: "question",
		Metadata: Metadata{Source: "ai_book.pdf", Type: model.ContentPYQ, Subject: model.SubjectAI},
	}}))

	require.NoError(t, mem.DeleteByMetadata(ctx, "ai_book.pdf", model.ContentBook))
	require.NoError(t, mem.Upsert(ctx, []Point{
		bookPoint("new-0", "ai_book.pdf", "new", []float32{1, 0}),
		bookPoint("new-1", "ai_book.pdf", "new", []float32{1, 0}),
	}))

	assert.Equal(t, 3, mem.Len())

	matches, err := mem.Query(ctx, []float32{1, 0}, 10, Filter{Type: model.ContentBook})
	require.NoError(t, err)
	for _, m := range matches {
		assert.Equal(t, "new", m.Text)
	}
}

func TestMemoryScrollAndUpdateMetadata(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.Upsert(ctx, []Point{
		bookPoint("a", "ai_book.pdf", "one", []float32{1, 0}),
		bookPoint("b", "ai_book.pdf", "two", []float32{0, 1}),
	}))

	require.NoError(t, mem.UpdateMetadata(ctx, "b", Metadata{
		Source: "ai_book.pdf", Type: model.ContentBook, Subject: model.SubjectML,
	}))

	var ids []string
	var subjects []model.SubjectTag
	err := mem.Scroll(ctx, func(id string, meta Metadata) error {
		ids = append(ids, id)
		subjects = append(subjects, meta.Subject)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, []model.SubjectTag{model.SubjectAI, model.SubjectML}, subjects)
}

func TestMemoryUpdateMetadataUnknownID(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	err := mem.UpdateMetadata(ctx, "missing", Metadata{
		Source: "ai_book.pdf", Type: model.ContentBook, Subject: model.SubjectAI,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFilterEmpty(t *testing.T) {
	assert.True(t, Filter{}.Empty())
	assert.False(t, Filter{Type: model.ContentBook}.Empty())
	assert.False(t, Filter{Subject: model.SubjectAI}.Empty())
}
