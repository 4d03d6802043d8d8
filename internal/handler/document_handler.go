package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/firmdesk/firmdesk-backend/internal/extract"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/response"
	"github.com/firmdesk/firmdesk-backend/internal/service"
)

type DocumentHandler struct {
	documents      *service.DocumentService
	uploadMaxBytes int64
}

func NewDocumentHandler(documents *service.DocumentService, uploadMaxBytes int64) *DocumentHandler {
	return &DocumentHandler{documents: documents, uploadMaxBytes: uploadMaxBytes}
}

// Ingest accepts a JSON body with the document text already extracted.
func (h *DocumentHandler) Ingest(c *gin.Context) {
	var req service.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	result, err := h.documents.Ingest(c.Request.Context(), getUserID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Upload accepts a multipart file, extracts its text and ingests it.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "file is required")
		return
	}
	if h.uploadMaxBytes > 0 && file.Size > h.uploadMaxBytes {
		response.Error(c, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("file exceeds the %d byte limit", h.uploadMaxBytes))
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !extract.Supported(file.Filename, contentType) {
		response.Error(c, http.StatusBadRequest, "unsupported_file_type", "only plain text, markdown, csv and json files are supported")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "failed to open file")
		return
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "failed to read file")
		return
	}
	text, err := extract.Text(file.Filename, contentType, data)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "unsupported_file_type", "could not extract text from file")
		return
	}
	result, err := h.documents.Ingest(c.Request.Context(), getUserID(c), service.IngestRequest{
		ID:      c.PostForm("id"),
		Source:  file.Filename,
		Content: text,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	summaries, err := h.documents.List(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, summaries)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
