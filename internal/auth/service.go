package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielcastano/mercato-backend/internal/users"
	pkgauth "github.com/danielcastano/mercato-backend/pkg/auth"
	"github.com/danielcastano/mercato-backend/pkg/config"
	"github.com/danielcastano/mercato-backend/pkg/db"
	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
	"github.com/danielcastano/mercato-backend/pkg/security"
)

// Service handles registration, credential login and refresh token rotation.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)
	Refresh(ctx context.Context, refreshToken string) (*Result, error)
}

type refreshStore interface {
	StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	RevokeRefreshToken(ctx context.Context, userID string) error
}

type guestMerger interface {
	MergeGuestCart(ctx context.Context, guestID, userID uuid.UUID) error
}

// RegisterInput carries a new account request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    *string
	Role     enums.UserRole
}

// LoginInput carries a credential login. GuestID, when present, is the
// anonymous cart identity to fold into the account after authentication.
type LoginInput struct {
	Email    string
	Password string
	GuestID  *uuid.UUID
}

// UserView is the account payload embedded in auth responses.
type UserView struct {
	ID    uuid.UUID      `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Phone *string        `json:"phone,omitempty"`
	Role  enums.UserRole `json:"role"`
}

// Result is the response of every successful auth operation.
type Result struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

type service struct {
	users    *users.Repository
	tokens   refreshStore
	merger   guestMerger
	jwt      config.JWTConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the auth service. The guest merger is optional; without
// one, logins simply skip cart adoption.
func NewService(usersRepo *users.Repository, tokens refreshStore, merger guestMerger, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("refresh token store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		users:    usersRepo,
		tokens:   tokens,
		merger:   merger,
		jwt:      jwtCfg,
		password: passwordCfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Phone:        input.Phone,
		Role:         role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issueTokens(ctx, user)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logg.Error(ctx, "update last login", err)
	}

	// Cart adoption is best effort: a merge failure must never block login.
	if input.GuestID != nil && s.merger != nil {
		if err := s.merger.MergeGuestCart(ctx, *input.GuestID, user.ID); err != nil {
			s.logg.Error(s.logg.WithGuestID(ctx, input.GuestID.String()), "merge guest cart", err)
		}
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token. The presented token must match the one
// stored for the user, so revocation and rotation both invalidate old tokens.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refresh token is required")
	}
	claims, err := pkgauth.ParseRefreshToken(s.jwt, refreshToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	stored, err := s.tokens.GetRefreshToken(ctx, claims.UserID.String())
	if err != nil || stored != refreshToken {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token revoked")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	return s.issueTokens(ctx, user)
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*Result, error) {
	now := s.now()
	access, err := pkgauth.MintAccessToken(s.jwt, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := pkgauth.MintRefreshToken(s.jwt, now, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}
	if err := s.tokens.StoreRefreshToken(ctx, user.ID.String(), refresh, s.jwt.RefreshTokenTTL()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	return &Result{
		User: UserView{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Phone: user.Phone,
			Role:  user.Role,
		},
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
