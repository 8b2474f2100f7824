package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"syllabusgpt/internal/ocr"
	"syllabusgpt/internal/pipeline/extract"
	"syllabusgpt/internal/transport/http/response"
)

const maxUploadSize = 10 << 20 // 10 MB

// UploadHandler turns an uploaded syllabus (PDF, image, or plain text) into
// text the notes endpoints can consume.
type UploadHandler struct {
	ocrClient *ocr.Client
}

func NewUploadHandler(ocrClient *ocr.Client) *UploadHandler {
	return &UploadHandler{ocrClient: ocrClient}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	var text string
	switch ext {
	case ".pdf":
		text, err = extract.Text(content)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text from PDF: "+err.Error())
			return
		}
	case ".jpg", ".jpeg", ".png":
		lines, err := h.ocrClient.Recognize(c.Request.Context(), content)
		if err != nil {
			response.Error(c, http.StatusBadGateway, response.CodeInternalServer, "recognition failed: "+err.Error())
			return
		}
		text = strings.Join(lines, "\n")
	default:
		text = string(content)
	}

	if strings.TrimSpace(text) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "document contains no extractable text")
		return
	}

	response.OK(c, gin.H{"filename": file.Filename, "text": text})
}
