package orders

import (
	"context"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	"github.com/danielcastano/mercato-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the persistence surface required by the order service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	CreateAddress(ctx context.Context, address *models.OrderAddress) error
	CreatePayment(ctx context.Context, payment *models.Payment) error

	FindDetailed(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]UserOrderRow, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error)
	FirstLines(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.OrderLine, error)
	UpdateStatus(ctx context.Context, shopID, orderID uuid.UUID, status enums.OrderStatus) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
