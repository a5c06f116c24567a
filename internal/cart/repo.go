package cart

import (
	"context"
	"time"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID, kind enums.CartOwnerKind) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND owner_kind = ? AND is_active = ?", ownerID, kind, true).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if record.OwnerKind == "" {
		record.OwnerKind = enums.CartOwnerUser
	}
	record.IsActive = true
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		UpdateColumn("updated_at", time.Now().UTC()).Error
}

func (r *repository) Deactivate(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("is_active", false).Error
}

func (r *repository) FindLine(ctx context.Context, cartID, lineID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) FindLineByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteLine(ctx context.Context, cartID, lineID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Delete(&models.CartLine{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) DeleteLines(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartLine{}).Error
}

// PricedLines joins cart lines against the live catalog. The inventory join
// skips soft-deleted rows so pricing falls back to base price for them; the
// product join keeps soft-deleted products visible but flagged.
func (r *repository) PricedLines(ctx context.Context, cartID uuid.UUID) ([]PricedLine, error) {
	var rows []PricedLine
	err := r.db.WithContext(ctx).Raw(`
SELECT
  cl.id AS line_id,
  cl.product_id AS product_id,
  cl.quantity AS quantity,
  p.name AS product_name,
  p.base_price AS base_price,
  p.is_deleted AS product_deleted,
  ie.selling_price AS selling_price,
  ie.stock_quantity AS stock_quantity,
  ie.shop_id AS shop_id
FROM cart_lines cl
LEFT JOIN products p ON p.id = cl.product_id
LEFT JOIN inventory_entries ie ON ie.product_id = cl.product_id AND ie.is_deleted = ?
WHERE cl.cart_id = ?
ORDER BY cl.created_at ASC, ie.created_at DESC`, false, cartID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// a product listed by several shops produces one row per inventory entry;
	// keep the newest entry per line
	seen := make(map[uuid.UUID]bool, len(rows))
	deduped := rows[:0]
	for _, row := range rows {
		if seen[row.LineID] {
			continue
		}
		seen[row.LineID] = true
		deduped = append(deduped, row)
	}
	return deduped, nil
}
