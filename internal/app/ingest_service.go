package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"syllabusgpt/internal/config"
	"syllabusgpt/internal/model"
	"syllabusgpt/internal/pipeline/classify"
	"syllabusgpt/internal/pipeline/clean"
	"syllabusgpt/internal/pipeline/extract"
	"syllabusgpt/internal/pipeline/segment"
	"syllabusgpt/internal/repository"
	"syllabusgpt/internal/store"
)

var ErrFileNotFound = errors.New("raw file not found")

// BatchEmbedder is the embedding collaborator for ingestion.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestService runs the offline knowledge-base pipeline: classify, extract,
// clean or split, chunk, embed, and store. Single ingestion process at a
// time; concurrent re-ingestion of the same file is not supported.
type IngestService struct {
	cfg        config.KnowledgeConfig
	embedder   BatchEmbedder
	vectors    store.VectorStore
	recognizer extract.Recognizer
	docRepo    *repository.SourceDocumentRepository
	ocrDPI     int
}

func NewIngestService(
	cfg config.KnowledgeConfig,
	embedder BatchEmbedder,
	vectors store.VectorStore,
	recognizer extract.Recognizer,
	docRepo *repository.SourceDocumentRepository,
	ocrDPI int,
) *IngestService {
	return &IngestService{
		cfg:        cfg,
		embedder:   embedder,
		vectors:    vectors,
		recognizer: recognizer,
		docRepo:    docRepo,
		ocrDPI:     ocrDPI,
	}
}

// FileOutcome is the per-file result of an ingestion run. Skips and failures
// are data, not errors: the batch never aborts because of one file.
type FileOutcome struct {
	Filename   string             `json:"filename"`
	Status     model.IngestStatus `json:"status"`
	Subject    model.SubjectTag   `json:"subject,omitempty"`
	Type       model.ContentType  `json:"type,omitempty"`
	ChunkCount int                `json:"chunk_count,omitempty"`
	TextLen    int                `json:"text_len,omitempty"`
	Detail     string             `json:"detail,omitempty"`
}

// IngestDir processes every file in the raw-files directory and reports one
// outcome per file.
func (s *IngestService) IngestDir(ctx context.Context) ([]FileOutcome, error) {
	entries, err := os.ReadDir(s.cfg.RawDir)
	if err != nil {
		return nil, fmt.Errorf("read raw dir failed: %w", err)
	}

	var outcomes []FileOutcome
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			log.Printf("ingest skip %s: not a pdf", name)
			outcomes = append(outcomes, FileOutcome{
				Filename: name,
				Status:   model.IngestStatusSkipped,
				Detail:   "not a pdf",
			})
			continue
		}
		outcomes = append(outcomes, s.IngestFile(ctx, name))
	}
	return outcomes, nil
}

// IngestFile runs the full pipeline for one file in the raw dir.
func (s *IngestService) IngestFile(ctx context.Context, filename string) FileOutcome {
	outcome := s.ingestFile(ctx, filename)

	switch outcome.Status {
	case model.IngestStatusIngested:
		log.Printf("ingest ok %s: subject=%s type=%s chunks=%d",
			filename, outcome.Subject, outcome.Type, outcome.ChunkCount)
	case model.IngestStatusSkipped:
		log.Printf("ingest skip %s: %s", filename, outcome.Detail)
	case model.IngestStatusFailed:
		log.Printf("ingest fail %s: %s", filename, outcome.Detail)
	}

	s.record(outcome)
	return outcome
}

func (s *IngestService) ingestFile(ctx context.Context, filename string) FileOutcome {
	outcome := FileOutcome{Filename: filename, Subject: classify.Subject(filename)}

	raw, err := os.ReadFile(filepath.Join(s.cfg.RawDir, filename))
	if err != nil {
		outcome.Status = model.IngestStatusFailed
		if errors.Is(err, os.ErrNotExist) {
			outcome.Detail = ErrFileNotFound.Error()
		} else {
			outcome.Detail = fmt.Sprintf("read file failed: %v", err)
		}
		return outcome
	}

	// Direct extraction first; its yield also feeds the content-type
	// heuristic (scanned questions sets extract almost nothing).
	rawText, err := extract.Text(raw)
	if err != nil {
		log.Printf("ingest %s: direct extraction failed, treating as scanned: %v", filename, err)
		rawText = ""
	}

	outcome.Type = classify.ContentType(filename, rawText)

	var fullText string
	if outcome.Type == model.ContentPYQ {
		fullText, err = extract.TextOCR(ctx, raw, s.recognizer, s.ocrDPI)
		if err != nil {
			outcome.Status = model.IngestStatusFailed
			outcome.Detail = fmt.Sprintf("ocr failed: %v", err)
			return outcome
		}
	} else {
		if len(strings.TrimSpace(rawText)) < s.cfg.MinTextLen {
			outcome.Status = model.IngestStatusSkipped
			outcome.Detail = "too little text for reference material"
			return outcome
		}
		fullText = clean.Text(rawText, s.cfg.FrontSkipChars)
	}

	if len(strings.TrimSpace(fullText)) < s.cfg.MinTextLen {
		outcome.Status = model.IngestStatusSkipped
		outcome.Detail = "no usable text after extraction"
		return outcome
	}
	outcome.TextLen = len(fullText)

	if err := s.writeProcessed(filename, outcome.Type, fullText); err != nil {
		// Audit artifact only; ingestion continues without it.
		log.Printf("ingest %s: write processed file failed: %v", filename, err)
	}

	chunks, err := s.segmentText(fullText, outcome.Type)
	if err != nil {
		outcome.Status = model.IngestStatusFailed
		outcome.Detail = err.Error()
		return outcome
	}
	if len(chunks) == 0 {
		outcome.Status = model.IngestStatusSkipped
		outcome.Detail = "no chunks produced"
		return outcome
	}

	// Best-effort cleanup of stale chunks from a prior ingest of this
	// source+type pair; failure here must not block the new data.
	if err := s.vectors.DeleteByMetadata(ctx, filename, outcome.Type); err != nil {
		log.Printf("ingest %s: delete stale chunks failed: %v", filename, err)
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		outcome.Status = model.IngestStatusFailed
		outcome.Detail = fmt.Sprintf("embed chunks failed: %v", err)
		return outcome
	}

	meta := store.Metadata{Source: filename, Type: outcome.Type, Subject: outcome.Subject}
	if err := s.upsertChunks(ctx, chunks, vectors, meta); err != nil {
		outcome.Status = model.IngestStatusFailed
		outcome.Detail = fmt.Sprintf("store chunks failed: %v", err)
		return outcome
	}

	outcome.Status = model.IngestStatusIngested
	outcome.ChunkCount = len(chunks)
	return outcome
}

// segmentText chunks reference text directly; question sets are split into
// questions first so a chunk never straddles two questions.
func (s *IngestService) segmentText(text string, contentType model.ContentType) ([]string, error) {
	if contentType == model.ContentPYQ {
		var chunks []string
		for _, q := range segment.SplitQuestions(text) {
			c, err := segment.Chunk(q, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, c...)
		}
		return chunks, nil
	}
	return segment.Chunk(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
}

func (s *IngestService) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	batchSize := s.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	var vectors [][]float32
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embedder.EmbedBatch(ctx, chunks[i:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count %d does not match chunk count %d", len(vectors), len(chunks))
	}
	return vectors, nil
}

func (s *IngestService) upsertChunks(ctx context.Context, chunks []string, vectors [][]float32, meta store.Metadata) error {
	points := make([]store.Point, len(chunks))
	for i := range chunks {
		points[i] = store.Point{
			ID:       uuid.NewString(),
			Vector:   vectors[i],
			Text:     chunks[i],
			Metadata: meta,
		}
	}

	batchSize := s.cfg.UpsertBatch
	if batchSize <= 0 {
		batchSize = 1000
	}
	for i := 0; i < len(points); i += batchSize {
		end := i + batchSize
		if end > len(points) {
			end = len(points)
		}
		if err := s.vectors.Upsert(ctx, points[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// writeProcessed stores the extracted text as <stem>_<TYPE>.txt, a debug and
// audit artifact not consumed downstream.
func (s *IngestService) writeProcessed(filename string, contentType model.ContentType, text string) error {
	if s.cfg.ProcessedDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.cfg.ProcessedDir, 0o755); err != nil {
		return err
	}
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	path := filepath.Join(s.cfg.ProcessedDir, fmt.Sprintf("%s_%s.txt", stem, contentType))
	return os.WriteFile(path, []byte(text), 0o644)
}

func (s *IngestService) record(outcome FileOutcome) {
	if s.docRepo == nil {
		return
	}
	doc := &model.SourceDocument{
		Filename:   outcome.Filename,
		Subject:    outcome.Subject,
		Type:       outcome.Type,
		Status:     outcome.Status,
		Detail:     outcome.Detail,
		ChunkCount: outcome.ChunkCount,
		TextLen:    outcome.TextLen,
	}
	if err := s.docRepo.Upsert(doc); err != nil {
		log.Printf("ingest %s: record ledger row failed: %v", outcome.Filename, err)
	}
}

// RepairMetadata re-derives the subject tag for every stored chunk from its
// source filename and rewrites entries that drifted. Idempotent; safe to run
// on demand.
func (s *IngestService) RepairMetadata(ctx context.Context) (int, error) {
	repaired := 0
	err := s.vectors.Scroll(ctx, func(id string, meta store.Metadata) error {
		corrected := classify.Subject(meta.Source)
		if corrected == meta.Subject {
			return nil
		}
		meta.Subject = corrected
		if err := s.vectors.UpdateMetadata(ctx, id, meta); err != nil {
			return fmt.Errorf("update metadata for %s failed: %w", id, err)
		}
		repaired++
		return nil
	})
	if err != nil {
		return repaired, err
	}
	log.Printf("metadata repair: updated %d entries", repaired)
	return repaired, nil
}
