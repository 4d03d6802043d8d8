package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/firmdesk/firmdesk-backend/internal/extract"
	"github.com/firmdesk/firmdesk-backend/internal/filestore"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/response"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/timeutil"
	"github.com/firmdesk/firmdesk-backend/internal/service"
)

type ChatHandler struct {
	chats          *service.ChatService
	store          filestore.Store
	uploadMaxBytes int64
}

func NewChatHandler(chats *service.ChatService, store filestore.Store, uploadMaxBytes int64) *ChatHandler {
	return &ChatHandler{chats: chats, store: store, uploadMaxBytes: uploadMaxBytes}
}

type sendRequest struct {
	Message        string `json:"message"`
	ChatID         string `json:"chat_id"`
	ConversationID string `json:"conversation_id"`
	ForceRetrieval bool   `json:"force_retrieval"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	result, err := h.chats.SendMessage(c.Request.Context(), service.SendRequest{
		UserID:         getUserID(c),
		ChatID:         req.ChatID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		ForceRetrieval: req.ForceRetrieval,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// SendWithFile runs one chat turn with an uploaded file inlined into the
// prompt. The raw file is archived to the file store best-effort; the turn
// itself never fails on archive trouble.
func (h *ChatHandler) SendWithFile(c *gin.Context) {
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

	h.archive(c, file.Filename, data)

	result, err := h.chats.SendMessage(c.Request.Context(), service.SendRequest{
		UserID:         getUserID(c),
		ChatID:         c.PostForm("chat_id"),
		ConversationID: c.PostForm("conversation_id"),
		Message:        c.PostForm("message"),
		ForceRetrieval: c.PostForm("force_retrieval") == "true",
		AttachmentName: file.Filename,
		AttachmentText: text,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	result.FileName = file.Filename
	response.Success(c, result)
}

func (h *ChatHandler) archive(c *gin.Context, filename string, data []byte) {
	if h.store == nil {
		return
	}
	key := fmt.Sprintf("%s_%d_%s", getUserID(c), timeutil.NowUnix(), filepath.Base(filename))
	if err := h.store.Save(c.Request.Context(), key, bytes.NewReader(data), int64(len(data))); err != nil {
		logutil.GetLogger(c.Request.Context()).Warn("archive upload failed",
			zap.String("key", key), zap.Error(err))
	}
}

func (h *ChatHandler) List(c *gin.Context) {
	chats, err := h.chats.ListChats(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chats)
}

func (h *ChatHandler) History(c *gin.Context) {
	messages, err := h.chats.History(c.Request.Context(), getUserID(c), c.Param("id"), 0, 0)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, messages)
}

type renameRequest struct {
	Title string `json:"title"`
}

func (h *ChatHandler) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if err := h.chats.RenameChat(c.Request.Context(), getUserID(c), c.Param("id"), req.Title); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.chats.DeleteChat(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// ClearConversation drops only the in-process conversation memory.
func (h *ChatHandler) ClearConversation(c *gin.Context) {
	h.chats.ClearConversation(c.Param("id"))
	response.Success(c, gin.H{"ok": true})
}
