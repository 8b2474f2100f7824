package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"syllabusgpt/internal/model"
)

// Qdrant is a minimal REST client to a Qdrant collection using cosine
// distance. It creates the collection on Init if missing.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewQdrant(cfg QdrantConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init ensures the collection exists with the given vector dimension.
func (q *Qdrant) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant answers 200 when the collection already exists with the same
	// schema; any other failure propagates.
	return q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", q.collection), body, nil)
}

func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(points))
	for i, p := range points {
		payload[i] = map[string]any{
			"id":     p.ID,
			"vector": p.Vector,
			"payload": map[string]any{
				"text":    p.Text,
				"source":  p.Metadata.Source,
				"type":    string(p.Metadata.Type),
				"subject": string(p.Metadata.Subject),
			},
		}
	}
	body := map[string]any{"points": payload}
	path := fmt.Sprintf("/collections/%s/points?wait=true", q.collection)
	if err := q.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (q *Qdrant) DeleteByMetadata(ctx context.Context, source string, contentType model.ContentType) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				matchCondition("source", source),
				matchCondition("type", string(contentType)),
			},
		},
	}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", q.collection)
	if err := q.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("qdrant delete by metadata failed: %w", err)
	}
	return nil
}

func (q *Qdrant) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if topK <= 0 {
		topK = 10
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if cond := filterConditions(filter); len(cond) > 0 {
		req["filter"] = map[string]any{"must": cond}
	}

	var resp struct {
		Result []struct {
			ID      string        `json:"id"`
			Score   float32       `json:"score"`
			Payload qdrantPayload `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", q.collection)
	if err := q.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	matches := make([]Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, Match{
			ID:       r.ID,
			Score:    r.Score,
			Text:     r.Payload.Text,
			Metadata: r.Payload.metadata(),
		})
	}
	return matches, nil
}

func (q *Qdrant) Scroll(ctx context.Context, visit func(id string, meta Metadata) error) error {
	var offset any
	for {
		req := map[string]any{
			"limit":        256,
			"with_payload": true,
		}
		if offset != nil {
			req["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					ID      string        `json:"id"`
					Payload qdrantPayload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		path := fmt.Sprintf("/collections/%s/points/scroll", q.collection)
		if err := q.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return fmt.Errorf("qdrant scroll failed: %w", err)
		}

		for _, p := range resp.Result.Points {
			if err := visit(p.ID, p.Payload.metadata()); err != nil {
				return err
			}
		}
		if resp.Result.NextPageOffset == nil {
			return nil
		}
		offset = resp.Result.NextPageOffset
	}
}

func (q *Qdrant) UpdateMetadata(ctx context.Context, id string, meta Metadata) error {
	body := map[string]any{
		"points": []string{id},
		"payload": map[string]any{
			"source":  meta.Source,
			"type":    string(meta.Type),
			"subject": string(meta.Subject),
		},
	}
	path := fmt.Sprintf("/collections/%s/points/payload?wait=true", q.collection)
	if err := q.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("qdrant update payload failed: %w", err)
	}
	return nil
}

type qdrantPayload struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
}

func (p qdrantPayload) metadata() Metadata {
	return Metadata{
		Source:  p.Source,
		Type:    model.ContentType(p.Type),
		Subject: model.SubjectTag(p.Subject),
	}
}

func filterConditions(f Filter) []map[string]any {
	var cond []map[string]any
	if f.Subject != "" {
		cond = append(cond, matchCondition("subject", string(f.Subject)))
	}
	if f.Type != "" {
		cond = append(cond, matchCondition("type", string(f.Type)))
	}
	return cond
}

func matchCondition(key, value string) map[string]any {
	return map[string]any{
		"key":   key,
		"match": map[string]any{"value": value},
	}
}

func (q *Qdrant) do(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal qdrant request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, q.url+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build qdrant request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qdrant response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s status %d: %s", method, path, resp.StatusCode, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parse qdrant response failed: %w", err)
		}
	}
	return nil
}
