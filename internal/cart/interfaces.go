package cart

import (
	"context"

	"github.com/danielcastano/mercato-backend/internal/catalog"
	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the persistence surface required by the cart service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindActiveByOwner(ctx context.Context, ownerID uuid.UUID, kind enums.CartOwnerKind) (*models.Cart, error)
	Create(ctx context.Context, record *models.Cart) (*models.Cart, error)
	Touch(ctx context.Context, cartID uuid.UUID) error
	Deactivate(ctx context.Context, cartID uuid.UUID) error

	FindLine(ctx context.Context, cartID, lineID uuid.UUID) (*models.CartLine, error)
	FindLineByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartLine, error)
	ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID uuid.UUID) (int64, error)
	DeleteLines(ctx context.Context, cartID uuid.UUID) error

	PricedLines(ctx context.Context, cartID uuid.UUID) ([]PricedLine, error)
}

type availabilityChecker interface {
	CheckAvailability(ctx context.Context, productID uuid.UUID, shopID *uuid.UUID) (catalog.Availability, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
