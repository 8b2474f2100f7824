package model

import "time"

// SubjectTag is the fixed subject enumeration used in chunk metadata.
type SubjectTag string

const (
	SubjectAI      SubjectTag = "AI"
	SubjectML      SubjectTag = "ML"
	SubjectIOT     SubjectTag = "IOT"
	SubjectTOC     SubjectTag = "TOC"
	SubjectSTDS    SubjectTag = "STDS"
	SubjectUnknown SubjectTag = "UNKNOWN"

	// SubjectAll is a request sentinel, never stored in metadata.
	SubjectAll = "ALL"
)

// ContentType tags a source document as reference material or a
// past-year-question set.
type ContentType string

const (
	ContentBook ContentType = "BOOK"
	ContentPYQ  ContentType = "PYQ"
)

// IngestStatus is the per-file outcome of a knowledge-base ingestion run.
type IngestStatus string

const (
	IngestStatusIngested IngestStatus = "ingested"
	IngestStatusSkipped  IngestStatus = "skipped"
	IngestStatusFailed   IngestStatus = "failed"
)

// SourceDocument is the ingestion ledger row for one knowledge-base file.
// Chunks live in the vector store; this records what was done with the file.
type SourceDocument struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Filename   string       `gorm:"size:256;not null;index" json:"filename"`
	Subject    SubjectTag   `gorm:"size:16;not null" json:"subject"`
	Type       ContentType  `gorm:"size:8;not null" json:"type"`
	Status     IngestStatus `gorm:"size:16;not null" json:"status"`
	Detail     string       `gorm:"size:512" json:"detail,omitempty"`
	ChunkCount int          `json:"chunk_count"`
	TextLen    int          `json:"text_len"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
