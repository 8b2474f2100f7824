package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"syllabusgpt/internal/pipeline/retrieve"
	"syllabusgpt/internal/transport/http/response"
)

type RetrieveHandler struct {
	retriever *retrieve.Retriever
}

type QueryRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

type ContextRequest struct {
	SyllabusText string `json:"syllabus_text" binding:"required"`
	Subject      string `json:"subject"`
	UsePYQ       bool   `json:"use_pyq"`
	TopK         int    `json:"top_k"`
}

func NewRetrieveHandler(retriever *retrieve.Retriever) *RetrieveHandler {
	return &RetrieveHandler{retriever: retriever}
}

// Query is the raw similarity search, unfiltered. Debug surface.
func (h *RetrieveHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	matches, err := h.retriever.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "search failed")
		return
	}
	response.OK(c, gin.H{"matches": matches})
}

// Context returns the concatenated retrieval context for a syllabus query,
// filtered by subject and content type.
func (h *RetrieveHandler) Context(c *gin.Context) {
	var req ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	ctx, err := h.retriever.Context(c.Request.Context(), req.SyllabusText, req.Subject, req.UsePYQ, req.TopK)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "retrieve context failed")
		return
	}
	response.OK(c, gin.H{"context": ctx, "context_length": len(ctx)})
}
