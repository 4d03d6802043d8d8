package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/dbutil"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
)

var userColumns = []string{
	"id", "email", "password_hash", "role", "org_id",
	"use_retrieval", "upload_documents", "edit_documents", "delete_documents",
	"daily_quota", "ctime", "mtime",
}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":               user.ID,
		"email":            user.Email,
		"password_hash":    user.PasswordHash,
		"role":             user.Role,
		"org_id":           user.OrgID,
		"use_retrieval":    user.UseRetrieval,
		"upload_documents": user.UploadDocuments,
		"edit_documents":   user.EditDocuments,
		"delete_documents": user.DeleteDocuments,
		"daily_quota":      user.DailyQuota,
		"ctime":            user.Ctime,
		"mtime":            user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
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

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userColumns)
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
	return scanUser(rows)
}

func scanUser(rows *sql.Rows) (*model.User, error) {
	var user model.User
	if err := rows.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.OrgID,
		&user.UseRetrieval, &user.UploadDocuments, &user.EditDocuments, &user.DeleteDocuments,
		&user.DailyQuota, &user.Ctime, &user.Mtime,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateOverrides patches the per-user capability override columns. A nil
// value in fields clears the override back to "defer to org default".
func (r *UserRepo) UpdateOverrides(ctx context.Context, userID string, fields map[string]interface{}, mtime int64) error {
	if len(fields) == 0 {
		return nil
	}
	update := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		update[k] = v
	}
	update["mtime"] = mtime
	where := map[string]interface{}{"id": userID}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
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

func (r *UserRepo) UpdateOrg(ctx context.Context, userID, orgID string, mtime int64) error {
	return r.UpdateOverrides(ctx, userID, map[string]interface{}{"org_id": orgID}, mtime)
}

func (r *UserRepo) UpdateRole(ctx context.Context, userID, role string, mtime int64) error {
	return r.UpdateOverrides(ctx, userID, map[string]interface{}{"role": role}, mtime)
}
