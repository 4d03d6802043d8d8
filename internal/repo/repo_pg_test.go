package repo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firmdesk/firmdesk-backend/internal/config"
	"github.com/firmdesk/firmdesk-backend/internal/db"
	"github.com/firmdesk/firmdesk-backend/internal/model"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "firmdesk",
		Password: "firmdesk_pass",
		DBName:   "firmdesk_test",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	require.NoError(t, db.ApplyMigrations(conn))
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func uniqueSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func TestUserRepoRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUserRepo(conn)
	ctx := context.Background()

	suffix := uniqueSuffix()
	user := &model.User{
		ID:    "u-" + suffix,
		Email: "alice-" + suffix + "@example.com",
		Role:  model.RoleEmployee,
		Ctime: 1,
		Mtime: 1,
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Nil(t, got.UseRetrieval)
	require.Nil(t, got.DailyQuota)

	dup := *user
	dup.ID = "u2-" + suffix
	require.ErrorIs(t, repo.Create(ctx, &dup), appErr.ErrConflict)

	require.NoError(t, repo.UpdateOverrides(ctx, user.ID, map[string]interface{}{
		"use_retrieval": false,
		"daily_quota":   7,
	}, 2))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UseRetrieval)
	require.False(t, *got.UseRetrieval)
	require.Equal(t, 7, *got.DailyQuota)

	// Clearing an override stores NULL again.
	require.NoError(t, repo.UpdateOverrides(ctx, user.ID, map[string]interface{}{
		"use_retrieval": nil,
	}, 3))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, got.UseRetrieval)

	_, err = repo.GetByID(ctx, "missing-"+suffix)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestOrgRepoDefaults(t *testing.T) {
	conn := openTestDB(t)
	repo := NewOrgRepo(conn)
	ctx := context.Background()

	suffix := uniqueSuffix()
	org := &model.Organization{
		ID:      "o-" + suffix,
		Name:    "Cabinet Test",
		OrgCode: "CODE" + suffix,
		Ctime:   1,
		Mtime:   1,
	}
	require.NoError(t, repo.Create(ctx, org))

	got, err := repo.GetByCode(ctx, org.OrgCode)
	require.NoError(t, err)
	require.Equal(t, org.ID, got.ID)
	require.Nil(t, got.DefaultUploadDocuments)

	require.NoError(t, repo.UpdateDefaults(ctx, org.ID, map[string]interface{}{
		"default_upload_documents": true,
		"default_daily_quota":      100,
	}, 2))
	got, err = repo.GetByID(ctx, org.ID)
	require.NoError(t, err)
	require.True(t, *got.DefaultUploadDocuments)
	require.Equal(t, 100, *got.DefaultDailyQuota)
}

func TestUsageRepoIncrementAndPrune(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUsageRepo(conn)
	ctx := context.Background()

	userID := "usage-" + uniqueSuffix()
	count, err := repo.GetCount(ctx, userID, "2026-08-23")
	require.NoError(t, err)
	require.Equal(t, 0, count, "missing row reads as zero")

	require.NoError(t, repo.Increment(ctx, userID, "2026-08-23"))
	require.NoError(t, repo.Increment(ctx, userID, "2026-08-23"))
	count, err = repo.GetCount(ctx, userID, "2026-08-23")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// Different day is a fresh counter.
	require.NoError(t, repo.Increment(ctx, userID, "2026-08-24"))
	count, err = repo.GetCount(ctx, userID, "2026-08-24")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	deleted, err := repo.DeleteBefore(ctx, "2026-08-24")
	require.NoError(t, err)
	require.GreaterOrEqual(t, deleted, int64(1))
	count, err = repo.GetCount(ctx, userID, "2026-08-23")
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestChatAndMessageRepo(t *testing.T) {
	conn := openTestDB(t)
	chats := NewChatRepo(conn)
	messages := NewMessageRepo(conn)
	ctx := context.Background()

	suffix := uniqueSuffix()
	userID := "chat-user-" + suffix
	chat := &model.Chat{ID: "c-" + suffix, UserID: userID, Title: "vat question", Ctime: 1, Mtime: 1}
	require.NoError(t, chats.Create(ctx, chat))

	_, err := chats.Get(ctx, "someone-else", chat.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound, "chats are owner-scoped")

	for i := 0; i < 4; i++ {
		role := model.TurnRoleUser
		if i%2 == 1 {
			role = model.TurnRoleModel
		}
		require.NoError(t, messages.Create(ctx, &model.ChatMessage{
			ID:      fmt.Sprintf("m-%s-%d", suffix, i),
			ChatID:  chat.ID,
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
			Ctime:   int64(i),
		}))
	}

	count, err := messages.CountByChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	list, err := messages.ListByChat(ctx, chat.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 4)
	require.Equal(t, "message 0", list[0].Content)
	require.Equal(t, model.TurnRoleModel, list[1].Role)

	require.NoError(t, chats.Delete(ctx, userID, chat.ID))
	require.NoError(t, messages.DeleteByChat(ctx, chat.ID))
	count, err = messages.CountByChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func testVec(seed int) []float32 {
	vec := make([]float32, 768)
	if seed >= 0 && seed < len(vec) {
		vec[seed] = 1
	}
	return vec
}

func TestChunkRepoSearchAndDelete(t *testing.T) {
	conn := openTestDB(t)
	repo := NewChunkRepo(conn)
	ctx := context.Background()

	suffix := uniqueSuffix()
	baseID := "doc-" + suffix
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, &model.DocumentChunk{
			ID:          fmt.Sprintf("%s-chunk-%d", baseID, i),
			Source:      "brief.txt",
			Content:     fmt.Sprintf("part %d", i),
			Embedding:   testVec(i),
			ChunkIndex:  i,
			TotalChunks: 3,
			UploadedAt:  10,
		}))
	}

	// Query vector aligned with chunk 1 must rank it first.
	nearest, err := repo.TopK(ctx, testVec(1), 2)
	require.NoError(t, err)
	require.Len(t, nearest, 2)
	require.Equal(t, baseID+"-chunk-1", nearest[0].ID)

	ordered, err := repo.ListByBaseID(ctx, baseID)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	require.Equal(t, 0, ordered[0].ChunkIndex)
	require.Equal(t, "part 2", ordered[2].Content)

	// Upsert replaces in place.
	require.NoError(t, repo.Save(ctx, &model.DocumentChunk{
		ID:          baseID + "-chunk-0",
		Source:      "brief.txt",
		Content:     "part 0 revised",
		Embedding:   testVec(0),
		ChunkIndex:  0,
		TotalChunks: 3,
		UploadedAt:  11,
	}))
	ordered, err = repo.ListByBaseID(ctx, baseID)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	require.Equal(t, "part 0 revised", ordered[0].Content)

	deleted, err := repo.DeleteByBaseID(ctx, baseID)
	require.NoError(t, err)
	require.Equal(t, int64(3), deleted)
	ordered, err = repo.ListByBaseID(ctx, baseID)
	require.NoError(t, err)
	require.Empty(t, ordered)
}
