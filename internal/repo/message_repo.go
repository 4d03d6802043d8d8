package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/dbutil"
)

var messageColumns = []string{"id", "chat_id", "role", "content", "ctime"}

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, msg *model.ChatMessage) error {
	data := map[string]interface{}{
		"id":      msg.ID,
		"chat_id": msg.ChatID,
		"role":    msg.Role,
		"content": msg.Content,
		"ctime":   msg.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_messages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *MessageRepo) CountByChat(ctx context.Context, chatID string) (int, error) {
	const query = `SELECT COUNT(*) FROM chat_messages WHERE chat_id = $1`
	row := r.db.QueryRowContext(ctx, query, chatID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MessageRepo) ListByChat(ctx context.Context, chatID string, limit, offset uint) ([]model.ChatMessage, error) {
	where := map[string]interface{}{
		"chat_id":  chatID,
		"_orderby": "ctime asc",
		"_limit":   []uint{offset, limit},
	}
	sqlStr, args, err := builder.BuildSelect("chat_messages", where, messageColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var messages []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.Ctime); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) DeleteByChat(ctx context.Context, chatID string) error {
	where := map[string]interface{}{"chat_id": chatID}
	sqlStr, args, err := builder.BuildDelete("chat_messages", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
