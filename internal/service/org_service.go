package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/timeutil"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
)

type OrgService struct {
	orgs  *repo.OrgRepo
	users *repo.UserRepo
}

func NewOrgService(orgs *repo.OrgRepo, users *repo.UserRepo) *OrgService {
	return &OrgService{orgs: orgs, users: users}
}

// Create provisions an organization with a fresh join code and attaches the
// creator to it. Join codes are retried on the off chance of a collision.
func (s *OrgService) Create(ctx context.Context, creatorID, name string) (*model.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("organization name is required: %w", appErr.ErrInvalid)
	}
	now := timeutil.NowUnix()
	org := &model.Organization{
		ID:    newID(),
		Name:  name,
		Ctime: now,
		Mtime: now,
	}
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		org.OrgCode = newOrgCode()
		err = s.orgs.Create(ctx, org)
		if err == nil {
			break
		}
		if !appErr.IsConflict(err) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateOrg(ctx, creatorID, org.ID, timeutil.NowUnix()); err != nil {
		return nil, err
	}
	return org, nil
}

// ValidateCode checks a join code without joining. Used by signup flows to
// confirm the code before asking for credentials.
func (s *OrgService) ValidateCode(ctx context.Context, code string) (*model.Organization, error) {
	org, err := s.orgs.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	return org, nil
}

// Join attaches an existing user to the organization behind the code.
func (s *OrgService) Join(ctx context.Context, userID, code string) (*model.Organization, error) {
	org, err := s.ValidateCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateOrg(ctx, userID, org.ID, timeutil.NowUnix()); err != nil {
		return nil, err
	}
	return org, nil
}

// Get returns the caller's organization.
func (s *OrgService) Get(ctx context.Context, userID string) (*model.Organization, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrgID == "" {
		return nil, appErr.ErrNotFound
	}
	return s.orgs.GetByID(ctx, user.OrgID)
}

// DefaultsPatch mirrors OverridePatch at the organization level.
type DefaultsPatch struct {
	UseRetrieval    *bool `json:"default_use_retrieval"`
	UploadDocuments *bool `json:"default_upload_documents"`
	EditDocuments   *bool `json:"default_edit_documents"`
	DeleteDocuments *bool `json:"default_delete_documents"`
	DailyQuota      *int  `json:"default_daily_quota"`

	ClearUseRetrieval    bool `json:"clear_default_use_retrieval"`
	ClearUploadDocuments bool `json:"clear_default_upload_documents"`
	ClearEditDocuments   bool `json:"clear_default_edit_documents"`
	ClearDeleteDocuments bool `json:"clear_default_delete_documents"`
	ClearDailyQuota      bool `json:"clear_default_daily_quota"`
}

func (s *OrgService) UpdateDefaults(ctx context.Context, orgID string, patch DefaultsPatch) error {
	fields := map[string]interface{}{}
	applyBool(fields, "default_use_retrieval", patch.UseRetrieval, patch.ClearUseRetrieval)
	applyBool(fields, "default_upload_documents", patch.UploadDocuments, patch.ClearUploadDocuments)
	applyBool(fields, "default_edit_documents", patch.EditDocuments, patch.ClearEditDocuments)
	applyBool(fields, "default_delete_documents", patch.DeleteDocuments, patch.ClearDeleteDocuments)
	if patch.ClearDailyQuota {
		fields["default_daily_quota"] = nil
	} else if patch.DailyQuota != nil {
		fields["default_daily_quota"] = *patch.DailyQuota
	}
	if len(fields) == 0 {
		return nil
	}
	return s.orgs.UpdateDefaults(ctx, orgID, fields, timeutil.NowUnix())
}
