package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/firmdesk/firmdesk-backend/internal/middleware"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/response"
	"github.com/firmdesk/firmdesk-backend/internal/service"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	var quotaErr *service.QuotaExceededError
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		response.Error(c, http.StatusBadRequest, "missing_message", "message is required")
	case errors.Is(err, service.ErrChatLimitReached):
		response.Error(c, http.StatusBadRequest, "chat_limit_reached", "this chat has reached its message limit, start a new one")
	case errors.As(err, &quotaErr):
		response.ErrorFields(c, http.StatusTooManyRequests, "quota_exceeded", "daily prompt quota exceeded",
			map[string]interface{}{"used": quotaErr.Used, "limit": quotaErr.Limit})
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, http.StatusForbidden, "permission_denied", "permission denied")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, "conflict", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
