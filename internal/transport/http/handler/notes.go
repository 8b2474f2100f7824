package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"syllabusgpt/internal/app"
	"syllabusgpt/internal/pkg/mdexport"
	"syllabusgpt/internal/transport/http/response"
)

type NotesHandler struct {
	notesService *app.NotesService
}

type NotesRequest struct {
	SyllabusText string `json:"syllabus_text" binding:"required"`
	Subject      string `json:"subject"`
	UsePYQ       bool   `json:"use_pyq"`
	TopK         int    `json:"top_k"`
}

type HydeRequest struct {
	Topic string `json:"topic" binding:"required"`
}

type ParseTopicsRequest struct {
	Text string `json:"text" binding:"required"`
}

func NewNotesHandler(notesService *app.NotesService) *NotesHandler {
	return &NotesHandler{notesService: notesService}
}

func (h *NotesHandler) Generate(c *gin.Context) {
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	doc, err := h.notesService.Generate(c.Request.Context(), app.NotesInput{
		SyllabusText: req.SyllabusText,
		Subject:      req.Subject,
		UsePYQ:       req.UsePYQ,
		TopK:         req.TopK,
	})
	if err != nil {
		if errors.Is(err, app.ErrEmptySyllabus) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "notes generation failed: "+err.Error())
		}
		return
	}
	response.OK(c, doc)
}

// GenerateAndExport runs the full pipeline and returns the notes rendered as
// a standalone HTML document.
func (h *NotesHandler) GenerateAndExport(c *gin.Context) {
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	doc, err := h.notesService.Generate(c.Request.Context(), app.NotesInput{
		SyllabusText: req.SyllabusText,
		Subject:      req.Subject,
		UsePYQ:       req.UsePYQ,
		TopK:         req.TopK,
	})
	if err != nil {
		if errors.Is(err, app.ErrEmptySyllabus) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "notes generation failed: "+err.Error())
		}
		return
	}

	page, err := mdexport.HTML(doc.Title, doc.Markdown)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "export failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Title+".html"))
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *NotesHandler) Hyde(c *gin.Context) {
	var req HydeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	doc, err := h.notesService.Expand(c.Request.Context(), req.Topic)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "hyde generation failed")
		return
	}
	response.OK(c, gin.H{"hyde_doc": doc})
}

func (h *NotesHandler) ParseTopics(c *gin.Context) {
	var req ParseTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	topics, err := h.notesService.ParseTopics(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, app.ErrEmptySyllabus) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "parse topics failed")
		}
		return
	}
	response.OK(c, gin.H{"topics": topics})
}
