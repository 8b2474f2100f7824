package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"syllabusgpt/internal/model"
)

// SourceDocumentRepository persists the ingestion ledger: one row per raw
// file with the outcome of its latest ingestion run.
type SourceDocumentRepository struct {
	db *gorm.DB
}

func NewSourceDocumentRepository(db *gorm.DB) *SourceDocumentRepository {
	return &SourceDocumentRepository{db: db}
}

// Upsert replaces the ledger row for the document's filename, so re-ingesting
// a file updates its outcome in place.
func (r *SourceDocumentRepository) Upsert(doc *model.SourceDocument) error {
	var existing model.SourceDocument
	err := r.db.Where("filename = ?", doc.Filename).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.Create(doc).Error; err != nil {
			return fmt.Errorf("create source document failed: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("query source document failed: %w", err)
	}

	doc.ID = existing.ID
	doc.CreatedAt = existing.CreatedAt
	if err := r.db.Save(doc).Error; err != nil {
		return fmt.Errorf("update source document failed: %w", err)
	}
	return nil
}

func (r *SourceDocumentRepository) GetByFilename(filename string) (*model.SourceDocument, error) {
	var doc model.SourceDocument
	if err := r.db.Where("filename = ?", filename).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query source document failed: %w", err)
	}
	return &doc, nil
}

func (r *SourceDocumentRepository) List() ([]model.SourceDocument, error) {
	var docs []model.SourceDocument
	if err := r.db.Order("updated_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list source documents failed: %w", err)
	}
	return docs, nil
}
