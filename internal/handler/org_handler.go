package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/response"
	"github.com/firmdesk/firmdesk-backend/internal/service"
)

type OrgHandler struct {
	orgs  *service.OrgService
	perms *service.PermissionService
}

func NewOrgHandler(orgs *service.OrgService, perms *service.PermissionService) *OrgHandler {
	return &OrgHandler{orgs: orgs, perms: perms}
}

type createOrgRequest struct {
	Name string `json:"name"`
}

func (h *OrgHandler) Create(c *gin.Context) {
	var req createOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	org, err := h.orgs.Create(c.Request.Context(), getUserID(c), req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, org)
}

// ValidateCode is public: signup flows confirm a join code before asking
// for credentials. Only the organization name is revealed.
func (h *OrgHandler) ValidateCode(c *gin.Context) {
	org, err := h.orgs.ValidateCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"valid": true, "name": org.Name})
}

type joinOrgRequest struct {
	Code string `json:"code"`
}

func (h *OrgHandler) Join(c *gin.Context) {
	var req joinOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	org, err := h.orgs.Join(c.Request.Context(), getUserID(c), req.Code)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, org)
}

// Get returns the caller's organization, join code included for admins.
func (h *OrgHandler) Get(c *gin.Context) {
	org, err := h.orgs.Get(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	_, caller, err := h.perms.Effective(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if !caller.IsAdmin() {
		org.OrgCode = ""
	}
	response.Success(c, org)
}

// UpdateDefaults patches the organization-wide capability defaults. Admin
// only, and only for the caller's own organization.
func (h *OrgHandler) UpdateDefaults(c *gin.Context) {
	_, caller, err := h.perms.Effective(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if !caller.IsAdmin() {
		handleError(c, appErr.ErrForbidden)
		return
	}
	if caller.OrgID == "" {
		handleError(c, appErr.ErrNotFound)
		return
	}
	var patch service.DefaultsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if err := h.orgs.UpdateDefaults(c.Request.Context(), caller.OrgID, patch); err != nil {
		handleError(c, err)
		return
	}
	org, err := h.orgs.Get(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, org)
}
