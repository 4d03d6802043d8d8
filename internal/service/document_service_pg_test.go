package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
)

type docFixture struct {
	svc    *DocumentService
	users  *repo.UserRepo
	userID string
}

func newDocFixture(t *testing.T) *docFixture {
	t.Helper()
	conn := openTestDB(t)

	users := repo.NewUserRepo(conn)
	orgs := repo.NewOrgRepo(conn)
	chunks := repo.NewChunkRepo(conn)

	userID := fmt.Sprintf("docsvc-%d", time.Now().UnixNano())
	require.NoError(t, users.Create(context.Background(), &model.User{
		ID:    userID,
		Email: userID + "@example.com",
		Role:  model.RoleEmployee,
		Ctime: 1,
		Mtime: 1,
	}))

	perms := NewPermissionService(users, orgs)
	// Tiny chunk size keeps the split math visible in fixtures.
	svc := NewDocumentService(chunks, perms, fakeEmbedder{}, 8)
	return &docFixture{svc: svc, users: users, userID: userID}
}

func (fx *docFixture) grant(t *testing.T, fields map[string]interface{}) {
	t.Helper()
	require.NoError(t, fx.users.UpdateOverrides(context.Background(), fx.userID, fields, 2))
}

func TestDocumentIngestPermissionDenied(t *testing.T) {
	fx := newDocFixture(t)
	_, err := fx.svc.Ingest(context.Background(), fx.userID, IngestRequest{
		Source:  "brief.txt",
		Content: "some content",
	})
	require.ErrorIs(t, err, appErr.ErrForbidden, "upload is deny-by-default")
}

func TestDocumentIngestListGetDelete(t *testing.T) {
	fx := newDocFixture(t)
	fx.grant(t, map[string]interface{}{"upload_documents": true})
	ctx := context.Background()

	id := fmt.Sprintf("brief-%d", time.Now().UnixNano())
	// 20 runes with max chunk size 8 split as 8, 8, 4.
	result, err := fx.svc.Ingest(ctx, fx.userID, IngestRequest{
		ID:      id,
		Source:  "brief.txt",
		Content: "aaaaaaaabbbbbbbbcccc",
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.ChunkCount)

	summaries, err := fx.svc.List(ctx, fx.userID)
	require.NoError(t, err)
	var found bool
	for _, s := range summaries {
		if s.ID == id {
			found = true
			require.Equal(t, 3, s.ChunkCount)
			require.Equal(t, "brief.txt", s.Source)
		}
	}
	require.True(t, found)

	doc, err := fx.svc.Get(ctx, fx.userID, id)
	require.NoError(t, err)
	require.Equal(t, "aaaaaaaabbbbbbbbcccc", doc.Content, "chunks reassemble to the original text")

	// Replacing needs edit_documents, deleting needs delete_documents.
	_, err = fx.svc.Ingest(ctx, fx.userID, IngestRequest{ID: id, Source: "brief.txt", Content: "new"})
	require.ErrorIs(t, err, appErr.ErrForbidden)
	require.ErrorIs(t, fx.svc.Delete(ctx, fx.userID, id), appErr.ErrForbidden)

	fx.grant(t, map[string]interface{}{"edit_documents": true, "delete_documents": true})
	replaced, err := fx.svc.Ingest(ctx, fx.userID, IngestRequest{ID: id, Source: "brief.txt", Content: "new"})
	require.NoError(t, err)
	require.Equal(t, 1, replaced.ChunkCount)
	doc, err = fx.svc.Get(ctx, fx.userID, id)
	require.NoError(t, err)
	require.Equal(t, "new", doc.Content, "shrinking replacement leaves no stale chunks")

	require.NoError(t, fx.svc.Delete(ctx, fx.userID, id))
	_, err = fx.svc.Get(ctx, fx.userID, id)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.ErrorIs(t, fx.svc.Delete(ctx, fx.userID, id), appErr.ErrNotFound)
}
