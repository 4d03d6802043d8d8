package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/dbutil"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
)

var chatColumns = []string{"id", "user_id", "title", "ctime", "mtime"}

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) Create(ctx context.Context, chat *model.Chat) error {
	data := map[string]interface{}{
		"id":      chat.ID,
		"user_id": chat.UserID,
		"title":   chat.Title,
		"ctime":   chat.Ctime,
		"mtime":   chat.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("chats", []map[string]interface{}{data})
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

func (r *ChatRepo) Get(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	where := map[string]interface{}{"id": chatID, "user_id": userID}
	sqlStr, args, err := builder.BuildSelect("chats", where, chatColumns)
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
	var chat model.Chat
	if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.Ctime, &chat.Mtime); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepo) ListByUser(ctx context.Context, userID string) ([]model.Chat, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "mtime desc",
	}
	sqlStr, args, err := builder.BuildSelect("chats", where, chatColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var chats []model.Chat
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.Ctime, &chat.Mtime); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepo) UpdateTitle(ctx context.Context, userID, chatID, title string, mtime int64) error {
	where := map[string]interface{}{"id": chatID, "user_id": userID}
	update := map[string]interface{}{"title": title, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("chats", where, update)
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

func (r *ChatRepo) Touch(ctx context.Context, chatID string, mtime int64) error {
	where := map[string]interface{}{"id": chatID}
	update := map[string]interface{}{"mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("chats", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ChatRepo) Delete(ctx context.Context, userID, chatID string) error {
	where := map[string]interface{}{"id": chatID, "user_id": userID}
	sqlStr, args, err := builder.BuildDelete("chats", where)
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
