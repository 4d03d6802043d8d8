package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/dbutil"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
)

var orgColumns = []string{
	"id", "name", "org_code",
	"default_use_retrieval", "default_upload_documents",
	"default_edit_documents", "default_delete_documents",
	"default_daily_quota", "ctime", "mtime",
}

type OrgRepo struct {
	db *sql.DB
}

func NewOrgRepo(db *sql.DB) *OrgRepo {
	return &OrgRepo{db: db}
}

func (r *OrgRepo) Create(ctx context.Context, org *model.Organization) error {
	data := map[string]interface{}{
		"id":                       org.ID,
		"name":                     org.Name,
		"org_code":                 org.OrgCode,
		"default_use_retrieval":    org.DefaultUseRetrieval,
		"default_upload_documents": org.DefaultUploadDocuments,
		"default_edit_documents":   org.DefaultEditDocuments,
		"default_delete_documents": org.DefaultDeleteDocuments,
		"default_daily_quota":      org.DefaultDailyQuota,
		"ctime":                    org.Ctime,
		"mtime":                    org.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("organizations", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *OrgRepo) GetByID(ctx context.Context, orgID string) (*model.Organization, error) {
	return r.getOne(ctx, map[string]interface{}{"id": orgID})
}

func (r *OrgRepo) GetByCode(ctx context.Context, code string) (*model.Organization, error) {
	return r.getOne(ctx, map[string]interface{}{"org_code": code})
}

func (r *OrgRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Organization, error) {
	sqlStr, args, err := builder.BuildSelect("organizations", where, orgColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var org model.Organization
	if err := rows.Scan(
		&org.ID, &org.Name, &org.OrgCode,
		&org.DefaultUseRetrieval, &org.DefaultUploadDocuments,
		&org.DefaultEditDocuments, &org.DefaultDeleteDocuments,
		&org.DefaultDailyQuota, &org.Ctime, &org.Mtime,
	); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateDefaults patches the organization-level capability defaults.
func (r *OrgRepo) UpdateDefaults(ctx context.Context, orgID string, fields map[string]interface{}, mtime int64) error {
	if len(fields) == 0 {
		return nil
	}
	update := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		update[k] = v
	}
	update["mtime"] = mtime
	where := map[string]interface{}{"id": orgID}
	sqlStr, args, err := builder.BuildUpdate("organizations", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
