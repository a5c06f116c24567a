package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	"github.com/danielcastano/mercato-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) CreateAddress(ctx context.Context, address *models.OrderAddress) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindDetailed(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Address").
		Preload("Payment").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]UserOrderRow, error) {
	query := r.db.WithContext(ctx).
		Table("orders o").
		Select(`o.id, o.shop_id, s.name AS shop_name, s.image_url AS shop_image_url,
o.total_amount, o.item_count, o.order_status, o.payment_status, o.created_at`).
		Joins("LEFT JOIN shops s ON s.id = o.shop_id").
		Where("o.user_id = ?", userID).
		Order("o.created_at DESC, o.id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(o.created_at, o.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []UserOrderRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByShop(ctx context.Context, shopID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FirstLines returns each order's earliest line for list previews.
func (r *repository) FirstLines(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.OrderLine, error) {
	result := make(map[uuid.UUID]models.OrderLine, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	var lines []models.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("position ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if _, seen := result[line.OrderID]; !seen {
			result[line.OrderID] = line
		}
	}
	return result, nil
}

func (r *repository) UpdateStatus(ctx context.Context, shopID, orderID uuid.UUID, status enums.OrderStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND shop_id = ?", orderID, shopID).
		Update("order_status", status)
	return result.RowsAffected, result.Error
}
