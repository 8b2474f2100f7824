package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syllabusgpt/internal/model"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newQdrantTestServer(t *testing.T, respond func(r recordedRequest) any) (*Qdrant, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))

		rec := recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body}
		requests = append(requests, rec)

		resp := map[string]any{"status": "ok"}
		if respond != nil {
			if custom := respond(rec); custom != nil {
				resp = map[string]any{"result": custom}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	q := NewQdrant(QdrantConfig{URL: srv.URL, Collection: "study_kb"})
	return q, &requests
}

func TestQdrantInit(t *testing.T) {
	q, requests := newQdrantTestServer(t, nil)

	require.NoError(t, q.Init(context.Background(), 384))
	require.Len(t, *requests, 1)

	req := (*requests)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/collections/study_kb", req.path)
	vectors := req.body["vectors"].(map[string]any)
	assert.Equal(t, float64(384), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestQdrantInitRejectsBadDimension(t *testing.T) {
	q := NewQdrant(QdrantConfig{URL: "http://unused", Collection: "c"})
	assert.Error(t, q.Init(context.Background(), 0))
}

func TestQdrantUpsertPayload(t *testing.T) {
	q, requests := newQdrantTestServer(t, nil)

	err := q.Upsert(context.Background(), []Point{{
		ID:     "id-1",
		Vector: []float32{0.1, 0.2},
		Text:   "chunk text",
		Metadata: Metadata{
			Source: "ai_book.pdf", Type: model.ContentBook, Subject: model.SubjectAI,
		},
	}})
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, "/collections/study_kb/points", req.path)
	assert.Equal(t, "wait=true", req.query)

	points := req.body["points"].([]any)
	require.Len(t, points, 1)
	payload := points[0].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "chunk text", payload["text"])
	assert.Equal(t, "ai_book.pdf", payload["source"])
	assert.Equal(t, "BOOK", payload["type"])
	assert.Equal(t, "AI", payload["subject"])
}

func TestQdrantUpsertEmptyIsNoop(t *testing.T) {
	q, requests := newQdrantTestServer(t, nil)
	require.NoError(t, q.Upsert(context.Background(), nil))
	assert.Empty(t, *requests)
}

func TestQdrantDeleteByMetadata(t *testing.T) {
	q, requests := newQdrantTestServer(t, nil)

	require.NoError(t, q.DeleteByMetadata(context.Background(), "ai_book.pdf", model.ContentBook))

	req := (*requests)[0]
	assert.Equal(t, "/collections/study_kb/points/delete", req.path)

	must := req.body["filter"].(map[string]any)["must"].([]any)
	require.Len(t, must, 2)
}

func TestQdrantQueryFilter(t *testing.T) {
	q, requests := newQdrantTestServer(t, func(r recordedRequest) any {
		return []map[string]any{
			{
				"id":    "id-1",
				"score": 0.93,
				"payload": map[string]any{
					"text": "chunk", "source": "ai_book.pdf", "type": "BOOK", "subject": "AI",
				},
			},
		}
	})

	matches, err := q.Query(context.Background(), []float32{1, 0}, 5, Filter{Subject: model.SubjectAI, Type: model.ContentBook})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "chunk", matches[0].Text)
	assert.Equal(t, model.SubjectAI, matches[0].Metadata.Subject)

	req := (*requests)[0]
	assert.Equal(t, "/collections/study_kb/points/search", req.path)
	must := req.body["filter"].(map[string]any)["must"].([]any)
	assert.Len(t, must, 2)
}

// An empty filter must not send a filter clause at all; Qdrant treats an
// empty must differently from no filter.
func TestQdrantQueryNoFilter(t *testing.T) {
	q, requests := newQdrantTestServer(t, func(recordedRequest) any {
		return []map[string]any{}
	})

	_, err := q.Query(context.Background(), []float32{1, 0}, 5, Filter{})
	require.NoError(t, err)

	_, hasFilter := (*requests)[0].body["filter"]
	assert.False(t, hasFilter)
}

func TestQdrantScrollPaging(t *testing.T) {
	page := 0
	q, _ := newQdrantTestServer(t, func(recordedRequest) any {
		page++
		if page == 1 {
			return map[string]any{
				"points": []map[string]any{
					{"id": "a", "payload": map[string]any{"source": "ai_book.pdf", "type": "BOOK", "subject": "AI"}},
				},
				"next_page_offset": "cursor-1",
			}
		}
		return map[string]any{
			"points": []map[string]any{
				{"id": "b", "payload": map[string]any{"source": "ml_book.pdf", "type": "BOOK", "subject": "ML"}},
			},
			"next_page_offset": nil,
		}
	})

	var ids []string
	err := q.Scroll(context.Background(), func(id string, meta Metadata) error {
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, 2, page)
}

func TestQdrantUpdateMetadata(t *testing.T) {
	q, requests := newQdrantTestServer(t, nil)

	err := q.UpdateMetadata(context.Background(), "id-1", Metadata{
		Source: "ai_book.pdf", Type: model.ContentBook, Subject: model.SubjectAI,
	})
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, "/collections/study_kb/points/payload", req.path)
	assert.Equal(t, []any{"id-1"}, req.body["points"])
	payload := req.body["payload"].(map[string]any)
	assert.Equal(t, "AI", payload["subject"])
}

func TestQdrantErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wrong vector size", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	q := NewQdrant(QdrantConfig{URL: srv.URL, Collection: "study_kb"})
	err := q.Upsert(context.Background(), []Point{{ID: "x", Vector: []float32{1}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
