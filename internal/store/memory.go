package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"syllabusgpt/internal/model"
)

// Memory is an in-process VectorStore used in tests and for running without
// a Qdrant instance. Brute-force cosine search.
type Memory struct {
	mu     sync.RWMutex
	points map[string]Point
}

func NewMemory() *Memory {
	return &Memory{points: make(map[string]Point)}
}

func (m *Memory) Upsert(_ context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

func (m *Memory) DeleteByMetadata(_ context.Context, source string, contentType model.ContentType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.points {
		if p.Metadata.Source == source && p.Metadata.Type == contentType {
			delete(m.points, id)
		}
	}
	return nil
}

func (m *Memory) Query(_ context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if topK <= 0 {
		topK = 10
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, p := range m.points {
		if filter.Subject != "" && p.Metadata.Subject != filter.Subject {
			continue
		}
		if filter.Type != "" && p.Metadata.Type != filter.Type {
			continue
		}
		matches = append(matches, Match{
			ID:       p.ID,
			Score:    cosineSimilarity(vector, p.Vector),
			Text:     p.Text,
			Metadata: p.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *Memory) Scroll(_ context.Context, visit func(id string, meta Metadata) error) error {
	m.mu.RLock()
	snapshot := make([]Point, 0, len(m.points))
	for _, p := range m.points {
		snapshot = append(snapshot, p)
	}
	m.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })
	for _, p := range snapshot {
		if err := visit(p.ID, p.Metadata); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) UpdateMetadata(_ context.Context, id string, meta Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.points[id]
	if !ok {
		return fmt.Errorf("point %s not found", id)
	}
	p.Metadata = meta
	m.points[id] = p
	return nil
}

// Len reports how many points are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
