package users

import (
	"context"
	"time"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user and address persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", email, false).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID. Soft-deleted users do not resolve.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs loads a batch of users keyed by id, skipping soft-deleted rows.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	result := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// CreateAddress inserts a new address for the user.
func (r *Repository) CreateAddress(ctx context.Context, address *models.UserAddress) (*models.UserAddress, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// ListAddresses returns the user's addresses, default first.
func (r *Repository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	var addresses []models.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// FindAddress loads one address scoped to its owner.
func (r *Repository) FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	var address models.UserAddress
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// FindDefaultAddress returns the user's default address if one is flagged.
func (r *Repository) FindDefaultAddress(ctx context.Context, userID uuid.UUID) (*models.UserAddress, error) {
	var address models.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// ClearDefaults removes the default flag from every address of the user.
// Callers pair this with a single SetDefault inside one transaction so at
// most one default survives.
func (r *Repository) ClearDefaults(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("user_id = ?", userID).
		UpdateColumn("is_default", false).Error
}

// SetDefault flags one address as the default, scoped to its owner. Returns
// the number of rows touched so callers can detect a foreign address id.
func (r *Repository) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		UpdateColumn("is_default", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
