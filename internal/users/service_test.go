package users

import (
	"context"
	"testing"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:userstest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  is_deleted INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS user_addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  house TEXT NOT NULL,
  landmark TEXT,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  pincode TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

type dbTxRunner struct {
	db *gorm.DB
}

func (r dbTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func addressInput(userID uuid.UUID) CreateAddressInput {
	return CreateAddressInput{
		UserID:   userID,
		FullName: "Asha Verma",
		Phone:    "9876543210",
		House:    "12 MG Road",
		City:     "Pune",
		State:    "MH",
		Pincode:  "411001",
	}
}

func TestCreateAddressFirstBecomesDefault(t *testing.T) {
	db := setupUsersTestDB(t)
	svc, err := NewService(NewRepository(db), dbTxRunner{db: db})
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateAddress(ctx, addressInput(userID))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.CreateAddress(ctx, addressInput(userID))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	var defaults int64
	require.NoError(t, db.Model(&models.UserAddress{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&defaults).Error)
	assert.Equal(t, int64(1), defaults)
}

func TestSetDefaultAddressSwapsFlag(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, dbTxRunner{db: db})
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateAddress(ctx, addressInput(userID))
	require.NoError(t, err)
	second, err := svc.CreateAddress(ctx, addressInput(userID))
	require.NoError(t, err)

	require.NoError(t, svc.SetDefaultAddress(ctx, userID, second.ID))

	current, err := repo.FindDefaultAddress(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	refreshed, err := repo.FindAddress(ctx, userID, first.ID)
	require.NoError(t, err)
	assert.False(t, refreshed.IsDefault)
}

func TestSetDefaultAddressRejectsForeignAddress(t *testing.T) {
	db := setupUsersTestDB(t)
	svc, err := NewService(NewRepository(db), dbTxRunner{db: db})
	require.NoError(t, err)
	ctx := context.Background()

	owner := uuid.New()
	address, err := svc.CreateAddress(ctx, addressInput(owner))
	require.NoError(t, err)

	err = svc.SetDefaultAddress(ctx, uuid.New(), address.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	// the real owner's default flag is untouched
	repo := NewRepository(db)
	current, err := repo.FindDefaultAddress(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, address.ID, current.ID)
}

func TestCreateAddressValidation(t *testing.T) {
	db := setupUsersTestDB(t)
	svc, err := NewService(NewRepository(db), dbTxRunner{db: db})
	require.NoError(t, err)

	input := addressInput(uuid.New())
	input.Pincode = ""
	_, err = svc.CreateAddress(context.Background(), input)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
