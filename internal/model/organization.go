package model

type Organization struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OrgCode string `json:"org_code"`

	// Organization-level capability defaults. Nil falls through to the
	// hard-coded fallback in the permission resolver.
	DefaultUseRetrieval    *bool `json:"default_use_retrieval,omitempty"`
	DefaultUploadDocuments *bool `json:"default_upload_documents,omitempty"`
	DefaultEditDocuments   *bool `json:"default_edit_documents,omitempty"`
	DefaultDeleteDocuments *bool `json:"default_delete_documents,omitempty"`
	DefaultDailyQuota      *int  `json:"default_daily_quota,omitempty"`

	Ctime int64 `json:"ctime"`
	Mtime int64 `json:"mtime"`
}
