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

func newAuthFixture(t *testing.T) (*AuthService, *OrgService, *repo.UserRepo) {
	t.Helper()
	conn := openTestDB(t)
	users := repo.NewUserRepo(conn)
	orgs := repo.NewOrgRepo(conn)
	auth := NewAuthService(users, orgs, []byte("test-secret"), time.Hour, "bootstrap-me")
	return auth, NewOrgService(orgs, users), users
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()
	email := fmt.Sprintf("reg-%d@Example.COM", time.Now().UnixNano())

	result, err := auth.Register(ctx, RegisterRequest{Email: email, Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, model.RoleEmployee, result.User.Role)

	_, err = auth.Register(ctx, RegisterRequest{Email: email, Password: "correct horse"})
	require.ErrorIs(t, err, appErr.ErrConflict)

	// Email matching is case-insensitive via normalization.
	logged, err := auth.Login(ctx, email, "correct horse")
	require.NoError(t, err)
	require.Equal(t, result.User.ID, logged.User.ID)

	_, err = auth.Login(ctx, email, "wrong password")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
	_, err = auth.Login(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "long enough"})
	require.ErrorIs(t, err, appErr.ErrInvalid)
	_, err = auth.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "short"})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestRegisterBootstrapAdmin(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()
	email := fmt.Sprintf("admin-%d@example.com", time.Now().UnixNano())

	_, err := auth.Register(ctx, RegisterRequest{Email: email, Password: "correct horse", BootstrapSecret: "nope"})
	require.ErrorIs(t, err, appErr.ErrForbidden)

	result, err := auth.Register(ctx, RegisterRequest{Email: email, Password: "correct horse", BootstrapSecret: "bootstrap-me"})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, result.User.Role)
}

func TestRegisterWithOrgCode(t *testing.T) {
	auth, orgSvc, users := newAuthFixture(t)
	ctx := context.Background()

	creatorEmail := fmt.Sprintf("founder-%d@example.com", time.Now().UnixNano())
	creator, err := auth.Register(ctx, RegisterRequest{Email: creatorEmail, Password: "correct horse"})
	require.NoError(t, err)
	org, err := orgSvc.Create(ctx, creator.User.ID, "Cabinet Test")
	require.NoError(t, err)
	require.NotEmpty(t, org.OrgCode)

	founder, err := users.GetByID(ctx, creator.User.ID)
	require.NoError(t, err)
	require.Equal(t, org.ID, founder.OrgID, "creator is attached to the new org")

	_, err = auth.Register(ctx, RegisterRequest{
		Email:    fmt.Sprintf("joiner-%d@example.com", time.Now().UnixNano()),
		Password: "correct horse",
		OrgCode:  "NOPE00000",
	})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	joined, err := auth.Register(ctx, RegisterRequest{
		Email:    fmt.Sprintf("joiner-%d@example.com", time.Now().UnixNano()),
		Password: "correct horse",
		OrgCode:  org.OrgCode,
	})
	require.NoError(t, err)
	require.Equal(t, org.ID, joined.User.OrgID)
}
