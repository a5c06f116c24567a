package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	"github.com/danielcastano/mercato-backend/pkg/types"
)

// UserOrderRow is an order header joined with shop display info for the
// buyer-facing list.
type UserOrderRow struct {
	ID            uuid.UUID           `gorm:"column:id"`
	ShopID        uuid.UUID           `gorm:"column:shop_id"`
	ShopName      string              `gorm:"column:shop_name"`
	ShopImageURL  *string             `gorm:"column:shop_image_url"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount"`
	ItemCount     int                 `gorm:"column:item_count"`
	OrderStatus   enums.OrderStatus   `gorm:"column:order_status"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status"`
	CreatedAt     time.Time           `gorm:"column:created_at"`
}

// PlacementResult is returned to the buyer after a successful placement.
type PlacementResult struct {
	OrderID   uuid.UUID       `json:"order_id"`
	Total     float64         `json:"total"`
	ItemCount int             `json:"item_count"`
	Address   AddressSnapshot `json:"address"`
}

// AddressSnapshot mirrors the frozen shipping address stored with the order.
type AddressSnapshot struct {
	FullName string  `json:"full_name"`
	Phone    string  `json:"phone"`
	House    string  `json:"house"`
	Landmark *string `json:"landmark,omitempty"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	Pincode  string  `json:"pincode"`
}

// LineDetail is a single frozen order line in a detail payload.
type LineDetail struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	PriceAtTime float64   `json:"price_at_time"`
	LineTotal   float64   `json:"line_total"`
}

// Detail is the full order payload for buyer and shop detail endpoints.
type Detail struct {
	OrderID       uuid.UUID           `json:"order_id"`
	ShopID        uuid.UUID           `json:"shop_id"`
	Total         float64             `json:"total"`
	ItemCount     int                 `json:"item_count"`
	OrderStatus   enums.OrderStatus   `json:"order_status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Lines         []LineDetail        `json:"lines"`
	Address       *AddressSnapshot    `json:"address,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// UserOrderSummary is one entry of the buyer order list.
type UserOrderSummary struct {
	OrderID       uuid.UUID           `json:"order_id"`
	ShopID        uuid.UUID           `json:"shop_id"`
	ShopName      string              `json:"shop_name"`
	ShopImageURL  *string             `json:"shop_image_url,omitempty"`
	Total         float64             `json:"total"`
	ItemCount     int                 `json:"item_count"`
	OrderStatus   enums.OrderStatus   `json:"order_status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time           `json:"created_at"`
}

// UserOrderPage is a cursor page of buyer orders.
type UserOrderPage struct {
	Orders     []UserOrderSummary `json:"orders"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// ShopOrderSummary is one entry of the shop order list, with a first-line
// preview and the customer contact.
type ShopOrderSummary struct {
	OrderID       uuid.UUID         `json:"order_id"`
	Total         float64           `json:"total"`
	ItemCount     int               `json:"item_count"`
	OrderStatus   enums.OrderStatus `json:"order_status"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone *string           `json:"customer_phone,omitempty"`
	Preview       *LineDetail       `json:"preview,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ShopOrderPage is a cursor page of shop orders.
type ShopOrderPage struct {
	Orders     []ShopOrderSummary `json:"orders"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

func snapshotFromAddress(address *models.OrderAddress) *AddressSnapshot {
	if address == nil {
		return nil
	}
	return &AddressSnapshot{
		FullName: address.FullName,
		Phone:    address.Phone,
		House:    address.House,
		Landmark: address.Landmark,
		City:     address.City,
		State:    address.State,
		Pincode:  address.Pincode,
	}
}

func lineDetail(line models.OrderLine) LineDetail {
	return LineDetail{
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		PriceAtTime: types.MoneyFloat(line.PriceAtTime),
		LineTotal:   types.MoneyFloat(line.PriceAtTime.Mul(decimal.NewFromInt(int64(line.Quantity)))),
	}
}
