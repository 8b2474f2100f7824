package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"syllabusgpt/internal/app"
	"syllabusgpt/internal/platform/rabbitmq"
	"syllabusgpt/internal/repository"
	"syllabusgpt/internal/transport/http/response"
)

// KnowledgeHandler manages the knowledge base: enqueueing ingestion runs,
// listing per-file outcomes, and the metadata repair job.
type KnowledgeHandler struct {
	ingestService   *app.IngestService
	ingestPublisher *rabbitmq.IngestPublisher
	docRepo         *repository.SourceDocumentRepository
}

type IngestRequest struct {
	// Filename limits the run to one raw file; empty means the whole dir.
	Filename string `json:"filename"`
}

func NewKnowledgeHandler(
	ingestService *app.IngestService,
	ingestPublisher *rabbitmq.IngestPublisher,
	docRepo *repository.SourceDocumentRepository,
) *KnowledgeHandler {
	return &KnowledgeHandler{
		ingestService:   ingestService,
		ingestPublisher: ingestPublisher,
		docRepo:         docRepo,
	}
}

// Ingest enqueues an ingestion job; the worker runs it asynchronously.
func (h *KnowledgeHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.ingestPublisher.Publish(c.Request.Context(), rabbitmq.IngestJob{Filename: req.Filename}); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "enqueue ingest job failed")
		return
	}
	response.OK(c, gin.H{"enqueued": true, "filename": req.Filename})
}

// Documents lists the ingestion ledger.
func (h *KnowledgeHandler) Documents(c *gin.Context) {
	docs, err := h.docRepo.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

// RepairMetadata re-derives subject tags for all stored chunks. Synchronous:
// it is an operator-invoked maintenance action, not a steady-state path.
func (h *KnowledgeHandler) RepairMetadata(c *gin.Context) {
	repaired, err := h.ingestService.RepairMetadata(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "metadata repair failed: "+err.Error())
		return
	}
	response.OK(c, gin.H{"repaired": repaired})
}
