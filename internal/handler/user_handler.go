package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/response"
	"github.com/firmdesk/firmdesk-backend/internal/service"
)

type UserHandler struct {
	perms *service.PermissionService
	quota *service.QuotaService
}

func NewUserHandler(perms *service.PermissionService, quota *service.QuotaService) *UserHandler {
	return &UserHandler{perms: perms, quota: quota}
}

// Me returns the caller's profile plus resolved capabilities.
func (h *UserHandler) Me(c *gin.Context) {
	caps, user, err := h.perms.Effective(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user, "capabilities": caps})
}

// MyPermissions returns only the resolved capability set.
func (h *UserHandler) MyPermissions(c *gin.Context) {
	caps, _, err := h.perms.Effective(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, caps)
}

// MyQuota reports where the caller stands against today's limit.
func (h *UserHandler) MyQuota(c *gin.Context) {
	status, err := h.quota.Check(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, status)
}

// UpdatePermissions patches another user's overrides. Admin only; the role
// is checked against the stored record, not just the token claim.
func (h *UserHandler) UpdatePermissions(c *gin.Context) {
	_, caller, err := h.perms.Effective(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if !caller.IsAdmin() {
		handleError(c, appErr.ErrForbidden)
		return
	}
	var patch service.OverridePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if err := h.perms.UpdateOverrides(c.Request.Context(), c.Param("id"), patch); err != nil {
		handleError(c, err)
		return
	}
	caps, _, err := h.perms.Effective(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, caps)
}
