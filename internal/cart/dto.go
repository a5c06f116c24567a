package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastano/mercato-backend/pkg/types"
)

// PricedLine is a cart line joined live against the catalog. Nothing here is
// stored; prices move with the inventory until placement freezes them.
type PricedLine struct {
	LineID         uuid.UUID        `gorm:"column:line_id"`
	ProductID      uuid.UUID        `gorm:"column:product_id"`
	ProductName    string           `gorm:"column:product_name"`
	Quantity       int              `gorm:"column:quantity"`
	BasePrice      *decimal.Decimal `gorm:"column:base_price"`
	SellingPrice   *decimal.Decimal `gorm:"column:selling_price"`
	StockQuantity  *int             `gorm:"column:stock_quantity"`
	ShopID         *uuid.UUID       `gorm:"column:shop_id"`
	ProductDeleted bool             `gorm:"column:product_deleted"`
}

// ChargePrice resolves the price hierarchy: selling price, then base price,
// then zero. Lines with a soft-deleted product always price at zero.
func (l PricedLine) ChargePrice() decimal.Decimal {
	if l.ProductDeleted {
		return decimal.Zero
	}
	if l.SellingPrice != nil {
		return *l.SellingPrice
	}
	if l.BasePrice != nil {
		return *l.BasePrice
	}
	return decimal.Zero
}

// LineView is the per-line payload returned to clients.
type LineView struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	ProductName   string     `json:"product_name"`
	Quantity      int        `json:"quantity"`
	Price         float64    `json:"price"`
	LineTotal     float64    `json:"line_total"`
	StockQuantity int        `json:"stock_quantity"`
	ShopID        *uuid.UUID `json:"shop_id,omitempty"`
}

// Summary aggregates the cart: item count sums quantities across lines.
type Summary struct {
	ItemCount int     `json:"itemCount"`
	Total     float64 `json:"total"`
}

// View is the full cart payload for GET /cart.
type View struct {
	CartID  uuid.UUID  `json:"cart_id"`
	Items   []LineView `json:"items"`
	Summary Summary    `json:"summary"`
}

func buildView(cartID uuid.UUID, lines []PricedLine) *View {
	view := &View{CartID: cartID, Items: make([]LineView, 0, len(lines))}
	total := decimal.Zero
	for _, line := range lines {
		price := line.ChargePrice()
		lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)

		stock := 0
		if line.StockQuantity != nil {
			stock = *line.StockQuantity
		}
		view.Items = append(view.Items, LineView{
			ID:            line.LineID,
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			Quantity:      line.Quantity,
			Price:         types.MoneyFloat(price),
			LineTotal:     types.MoneyFloat(types.RoundMoney(lineTotal)),
			StockQuantity: stock,
			ShopID:        line.ShopID,
		})
		view.Summary.ItemCount += line.Quantity
	}
	view.Summary.Total = types.MoneyFloat(types.RoundMoney(total))
	return view
}
