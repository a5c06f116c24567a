package users

import (
	"context"
	"fmt"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers the address book; user creation itself lives in the auth
// service.
type Service interface {
	CreateAddress(ctx context.Context, input CreateAddressInput) (*models.UserAddress, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error)
	SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

// CreateAddressInput carries the shipping address fields.
type CreateAddressInput struct {
	UserID      uuid.UUID
	FullName    string
	Phone       string
	House       string
	Landmark    *string
	City        string
	State       string
	Pincode     string
	MakeDefault bool
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds a users service with the required dependencies.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateAddress(ctx context.Context, input CreateAddressInput) (*models.UserAddress, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.FullName == "" || input.Phone == "" || input.House == "" ||
		input.City == "" || input.State == "" || input.Pincode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "all address fields except landmark are required")
	}

	existing, err := s.repo.ListAddresses(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	// the first address always becomes the default
	makeDefault := input.MakeDefault || len(existing) == 0

	address := &models.UserAddress{
		ID:       uuid.New(),
		UserID:   input.UserID,
		FullName: input.FullName,
		Phone:    input.Phone,
		House:    input.House,
		Landmark: input.Landmark,
		City:     input.City,
		State:    input.State,
		Pincode:  input.Pincode,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if makeDefault {
			if err := repo.ClearDefaults(ctx, input.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default addresses")
			}
			address.IsDefault = true
		}
		if _, err := repo.CreateAddress(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	addresses, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

func (s *service) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if addressID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearDefaults(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default addresses")
		}
		affected, err := repo.SetDefault(ctx, userID, addressID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil
	})
}
