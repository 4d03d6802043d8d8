package service

import (
	"context"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/timeutil"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
)

// QuotaUnbounded marks a daily quota with no ceiling.
const QuotaUnbounded = -1

// Capabilities is the fully resolved permission set for a user. Every field
// always carries a concrete value; resolution is total.
type Capabilities struct {
	UseRetrieval    bool `json:"use_retrieval"`
	UploadDocuments bool `json:"upload_documents"`
	EditDocuments   bool `json:"edit_documents"`
	DeleteDocuments bool `json:"delete_documents"`
	DailyQuota      int  `json:"daily_quota"`
}

// Hard-coded fallbacks, applied when neither the user nor the organization
// sets a value.
const (
	fallbackUseRetrieval    = true
	fallbackUploadDocuments = false
	fallbackEditDocuments   = false
	fallbackDeleteDocuments = false
	fallbackDailyQuota      = 50
)

// ResolveCapabilities computes the effective capability set for a user.
// Precedence per capability: admin bypass, then the user's explicit
// override, then the organization default, then the hard-coded fallback.
// Pure: no I/O, no side effects. org may be nil for users not yet attached
// to an organization.
func ResolveCapabilities(user *model.User, org *model.Organization) Capabilities {
	if user.IsAdmin() {
		return Capabilities{
			UseRetrieval:    true,
			UploadDocuments: true,
			EditDocuments:   true,
			DeleteDocuments: true,
			DailyQuota:      QuotaUnbounded,
		}
	}
	var (
		orgUseRetrieval, orgUpload, orgEdit, orgDelete *bool
		orgQuota                                       *int
	)
	if org != nil {
		orgUseRetrieval = org.DefaultUseRetrieval
		orgUpload = org.DefaultUploadDocuments
		orgEdit = org.DefaultEditDocuments
		orgDelete = org.DefaultDeleteDocuments
		orgQuota = org.DefaultDailyQuota
	}
	return Capabilities{
		UseRetrieval:    resolveBool(user.UseRetrieval, orgUseRetrieval, fallbackUseRetrieval),
		UploadDocuments: resolveBool(user.UploadDocuments, orgUpload, fallbackUploadDocuments),
		EditDocuments:   resolveBool(user.EditDocuments, orgEdit, fallbackEditDocuments),
		DeleteDocuments: resolveBool(user.DeleteDocuments, orgDelete, fallbackDeleteDocuments),
		DailyQuota:      resolveInt(user.DailyQuota, orgQuota, fallbackDailyQuota),
	}
}

func resolveBool(userVal, orgVal *bool, fallback bool) bool {
	if userVal != nil {
		return *userVal
	}
	if orgVal != nil {
		return *orgVal
	}
	return fallback
}

func resolveInt(userVal, orgVal *int, fallback int) int {
	if userVal != nil {
		return *userVal
	}
	if orgVal != nil {
		return *orgVal
	}
	return fallback
}

// PermissionService loads the records the resolver needs and applies
// override patches. It is the single place capability precedence lives;
// every endpoint that needs an effective value goes through it.
type PermissionService struct {
	users *repo.UserRepo
	orgs  *repo.OrgRepo
}

func NewPermissionService(users *repo.UserRepo, orgs *repo.OrgRepo) *PermissionService {
	return &PermissionService{users: users, orgs: orgs}
}

// Effective returns the resolved capabilities plus the underlying user
// record. Missing user or organization surfaces as ErrNotFound; absence is
// never treated as granted.
func (s *PermissionService) Effective(ctx context.Context, userID string) (Capabilities, *model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Capabilities{}, nil, err
	}
	var org *model.Organization
	if user.OrgID != "" {
		org, err = s.orgs.GetByID(ctx, user.OrgID)
		if err != nil {
			return Capabilities{}, nil, err
		}
	}
	return ResolveCapabilities(user, org), user, nil
}

// OverridePatch carries the nullable per-user override updates from
// PATCH /users/:id/permissions. A nil field is left untouched; the Clear*
// flags reset an override back to "defer to organization default".
type OverridePatch struct {
	UseRetrieval    *bool `json:"use_retrieval"`
	UploadDocuments *bool `json:"upload_documents"`
	EditDocuments   *bool `json:"edit_documents"`
	DeleteDocuments *bool `json:"delete_documents"`
	DailyQuota      *int  `json:"daily_quota"`

	ClearUseRetrieval    bool `json:"clear_use_retrieval"`
	ClearUploadDocuments bool `json:"clear_upload_documents"`
	ClearEditDocuments   bool `json:"clear_edit_documents"`
	ClearDeleteDocuments bool `json:"clear_delete_documents"`
	ClearDailyQuota      bool `json:"clear_daily_quota"`
}

func (s *PermissionService) UpdateOverrides(ctx context.Context, userID string, patch OverridePatch) error {
	fields := map[string]interface{}{}
	applyBool(fields, "use_retrieval", patch.UseRetrieval, patch.ClearUseRetrieval)
	applyBool(fields, "upload_documents", patch.UploadDocuments, patch.ClearUploadDocuments)
	applyBool(fields, "edit_documents", patch.EditDocuments, patch.ClearEditDocuments)
	applyBool(fields, "delete_documents", patch.DeleteDocuments, patch.ClearDeleteDocuments)
	if patch.ClearDailyQuota {
		fields["daily_quota"] = nil
	} else if patch.DailyQuota != nil {
		fields["daily_quota"] = *patch.DailyQuota
	}
	if len(fields) == 0 {
		return nil
	}
	return s.users.UpdateOverrides(ctx, userID, fields, timeutil.NowUnix())
}

func applyBool(fields map[string]interface{}, column string, value *bool, clear bool) {
	if clear {
		fields[column] = nil
		return
	}
	if value != nil {
		fields[column] = *value
	}
}
