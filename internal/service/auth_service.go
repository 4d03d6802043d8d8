package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/jwt"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/password"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/timeutil"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
)

type AuthService struct {
	users           *repo.UserRepo
	orgs            *repo.OrgRepo
	jwtSecret       []byte
	tokenTTL        time.Duration
	bootstrapSecret string
}

func NewAuthService(users *repo.UserRepo, orgs *repo.OrgRepo, jwtSecret []byte, tokenTTL time.Duration, bootstrapSecret string) *AuthService {
	return &AuthService{
		users:           users,
		orgs:            orgs,
		jwtSecret:       jwtSecret,
		tokenTTL:        tokenTTL,
		bootstrapSecret: bootstrapSecret,
	}
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	OrgCode         string `json:"org_code"`
	BootstrapSecret string `json:"bootstrap_secret"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates an account. Supplying the deployment's bootstrap secret
// grants the admin role; a valid org code attaches the account to that
// organization. Email is normalized to lowercase.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %w", appErr.ErrInvalid)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", appErr.ErrInvalid)
	}
	role := model.RoleEmployee
	if req.BootstrapSecret != "" {
		if s.bootstrapSecret == "" || req.BootstrapSecret != s.bootstrapSecret {
			return nil, fmt.Errorf("bad bootstrap secret: %w", appErr.ErrForbidden)
		}
		role = model.RoleAdmin
	}
	orgID := ""
	if req.OrgCode != "" {
		org, err := s.orgs.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(req.OrgCode)))
		if err != nil {
			if appErr.IsNotFound(err) {
				return nil, fmt.Errorf("unknown organization code: %w", appErr.ErrInvalid)
			}
			return nil, err
		}
		orgID = org.ID
	}
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		OrgID:        orgID,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if appErr.IsConflict(err) {
			return nil, fmt.Errorf("email already registered: %w", appErr.ErrConflict)
		}
		return nil, err
	}
	return s.issue(user)
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, plain string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrUnauthorized
		}
		return nil, err
	}
	if password.Compare(user.PasswordHash, plain) != nil {
		return nil, appErr.ErrUnauthorized
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwt.GenerateToken(user.ID, user.Email, user.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
