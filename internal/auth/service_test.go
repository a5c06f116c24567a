package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielcastano/mercato-backend/internal/users"
	"github.com/danielcastano/mercato-backend/pkg/config"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:authtest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  is_deleted INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

type memoryTokenStore struct {
	tokens map[string]string
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: map[string]string{}}
}

func (s *memoryTokenStore) StoreRefreshToken(_ context.Context, userID, token string, _ time.Duration) error {
	s.tokens[userID] = token
	return nil
}

func (s *memoryTokenStore) GetRefreshToken(_ context.Context, userID string) (string, error) {
	token, ok := s.tokens[userID]
	if !ok {
		return "", errors.New("not found")
	}
	return token, nil
}

func (s *memoryTokenStore) RevokeRefreshToken(_ context.Context, userID string) error {
	delete(s.tokens, userID)
	return nil
}

type recordingMerger struct {
	guestID uuid.UUID
	userID  uuid.UUID
	calls   int
	err     error
}

func (m *recordingMerger) MergeGuestCart(_ context.Context, guestID, userID uuid.UUID) error {
	m.guestID = guestID
	m.userID = userID
	m.calls++
	return m.err
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "auth-service-test-secret",
		Issuer:                 "mercato-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func newAuthService(t *testing.T, store refreshStore, merger guestMerger) Service {
	t.Helper()
	db := setupAuthTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "auth-test", Output: io.Discard})
	svc, err := NewService(users.NewRepository(db), store, merger, testJWTConfig(), config.PasswordConfig{}, logg)
	require.NoError(t, err)
	return svc
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Email:    email,
		Password: "correct-horse-7",
		Name:     "Meera Joshi",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	store := newMemoryTokenStore()
	svc := newAuthService(t, store, nil)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	created, err := svc.Register(ctx, registerInput(email))
	require.NoError(t, err)
	assert.Equal(t, email, created.User.Email)
	assert.NotEmpty(t, created.AccessToken)
	assert.Equal(t, store.tokens[created.User.ID.String()], created.RefreshToken)

	_, err = svc.Register(ctx, registerInput(email))
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())

	logged, err := svc.Login(ctx, LoginInput{Email: email, Password: "correct-horse-7"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, logged.User.ID)

	_, err = svc.Login(ctx, LoginInput{Email: email, Password: "wrong-password"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever-123"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t, newMemoryTokenStore(), nil)
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "not-an-email", Password: "long-enough-1", Name: "A"},
		{Email: "ok@example.com", Password: "short", Name: "A"},
		{Email: "ok@example.com", Password: "long-enough-1", Name: "  "},
		{Email: "ok@example.com", Password: "long-enough-1", Name: "A", Role: "superadmin"},
	}
	for _, input := range cases {
		_, err := svc.Register(ctx, input)
		var appErr *pkgerrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	}
}

func TestLoginMergesGuestCart(t *testing.T) {
	merger := &recordingMerger{}
	svc := newAuthService(t, newMemoryTokenStore(), merger)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	created, err := svc.Register(ctx, registerInput(email))
	require.NoError(t, err)

	guestID := uuid.New()
	_, err = svc.Login(ctx, LoginInput{Email: email, Password: "correct-horse-7", GuestID: &guestID})
	require.NoError(t, err)
	assert.Equal(t, 1, merger.calls)
	assert.Equal(t, guestID, merger.guestID)
	assert.Equal(t, created.User.ID, merger.userID)
}

func TestLoginSucceedsWhenMergeFails(t *testing.T) {
	merger := &recordingMerger{err: errors.New("merge blew up")}
	svc := newAuthService(t, newMemoryTokenStore(), merger)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	_, err := svc.Register(ctx, registerInput(email))
	require.NoError(t, err)

	guestID := uuid.New()
	result, err := svc.Login(ctx, LoginInput{Email: email, Password: "correct-horse-7", GuestID: &guestID})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, 1, merger.calls)
}

func TestRefreshRotation(t *testing.T) {
	store := newMemoryTokenStore()
	svc := newAuthService(t, store, nil)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	created, err := svc.Register(ctx, registerInput(email))
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, created.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, refreshed.User.ID)
	assert.Equal(t, store.tokens[created.User.ID.String()], refreshed.RefreshToken)

	_, err = svc.Refresh(ctx, "not-a-token")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	require.NoError(t, store.RevokeRefreshToken(ctx, created.User.ID.String()))
	_, err = svc.Refresh(ctx, refreshed.RefreshToken)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}
