package repo

import (
	"context"
	"database/sql"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// GetCount returns the prompt count for (user, day); zero when no row exists.
func (r *UsageRepo) GetCount(ctx context.Context, userID, day string) (int, error) {
	const query = `
		SELECT prompt_count
		FROM daily_usage
		WHERE user_id = $1 AND day = $2
	`
	row := r.db.QueryRowContext(ctx, query, userID, day)
	var count int
	if err := row.Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// Increment upserts the (user, day) row: count 1 when absent, else +1.
func (r *UsageRepo) Increment(ctx context.Context, userID, day string) error {
	const query = `
		INSERT INTO daily_usage (user_id, day, prompt_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET
			prompt_count = daily_usage.prompt_count + 1
	`
	_, err := r.db.ExecContext(ctx, query, userID, day)
	return err
}

func (r *UsageRepo) DeleteBefore(ctx context.Context, day string) (int64, error) {
	const query = `DELETE FROM daily_usage WHERE day < $1`
	res, err := r.db.ExecContext(ctx, query, day)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
