package model

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	OrgID        string `json:"org_id"`

	// Per-capability overrides. Nil means "defer to the organization
	// default", which itself may defer to the hard-coded fallback.
	UseRetrieval    *bool `json:"use_retrieval,omitempty"`
	UploadDocuments *bool `json:"upload_documents,omitempty"`
	EditDocuments   *bool `json:"edit_documents,omitempty"`
	DeleteDocuments *bool `json:"delete_documents,omitempty"`
	DailyQuota      *int  `json:"daily_quota,omitempty"`

	Ctime int64 `json:"ctime"`
	Mtime int64 `json:"mtime"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
