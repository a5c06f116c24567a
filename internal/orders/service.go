package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/danielcastano/mercato-backend/internal/cart"
	"github.com/danielcastano/mercato-backend/internal/catalog"
	"github.com/danielcastano/mercato-backend/internal/users"
	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/pagination"
	"github.com/danielcastano/mercato-backend/pkg/types"
)

// Service owns order placement and the buyer and shop query surfaces.
type Service interface {
	PlaceOrder(ctx context.Context, userID, shopID uuid.UUID, method enums.PaymentMethod) (*PlacementResult, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserOrderPage, error)
	GetOrderDetails(ctx context.Context, userID, orderID uuid.UUID) (*Detail, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*ShopOrderPage, error)
	GetShopOrderDetails(ctx context.Context, shopID, orderID uuid.UUID) (*Detail, error)
	UpdateStatus(ctx context.Context, shopID, orderID uuid.UUID, status enums.OrderStatus) error
}

type service struct {
	repo    Repository
	carts   cart.Repository
	catalog catalog.Repository
	users   *users.Repository
	tx      txRunner
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, carts cart.Repository, catalogRepo catalog.Repository, usersRepo *users.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, carts: carts, catalog: catalogRepo, users: usersRepo, tx: tx}, nil
}

// PlaceOrder freezes the cart into an order in one transaction. Preconditions
// are checked up front for fast failure, then re-validated inside the
// transaction because the cart and address can change concurrently.
func (s *service) PlaceOrder(ctx context.Context, userID, shopID uuid.UUID, method enums.PaymentMethod) (*PlacementResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop_id is required")
	}
	if method == "" {
		method = enums.PaymentMethodCOD
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	if _, _, err := s.resolveCartAndAddress(ctx, s.carts, s.users, userID); err != nil {
		return nil, err
	}

	var result *PlacementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		placed, err := s.placeInTx(ctx, tx, userID, shopID, method)
		if err != nil {
			return err
		}
		result = placed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) placeInTx(ctx context.Context, tx *gorm.DB, userID, shopID uuid.UUID, method enums.PaymentMethod) (*PlacementResult, error) {
	cartRepo := s.carts.WithTx(tx)
	orderRepo := s.repo.WithTx(tx)
	catalogRepo := s.catalog.WithTx(tx)
	userRepo := s.users.WithTx(tx)

	record, address, err := s.resolveCartAndAddress(ctx, cartRepo, userRepo, userID)
	if err != nil {
		return nil, err
	}
	lines, err := cartRepo.PricedLines(ctx, record.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart lines")
	}
	eligible := make([]cart.PricedLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductDeleted {
			continue
		}
		eligible = append(eligible, line)
	}
	if len(eligible) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
	}

	total := decimal.Zero
	orderLines := make([]models.OrderLine, 0, len(eligible))
	orderID := uuid.New()
	for i, line := range eligible {
		price := types.RoundMoney(line.ChargePrice())
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		orderLines = append(orderLines, models.OrderLine{
			ID:          uuid.New(),
			OrderID:     orderID,
			Position:    i + 1,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			PriceAtTime: price,
		})
	}
	total = types.RoundMoney(total)

	order := &models.Order{
		ID:            orderID,
		UserID:        userID,
		ShopID:        shopID,
		TotalAmount:   total,
		ItemCount:     len(orderLines),
		OrderStatus:   enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}
	if _, err := orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	if err := orderRepo.CreateLines(ctx, orderLines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
	}

	snapshot := &models.OrderAddress{
		ID:       uuid.New(),
		OrderID:  orderID,
		FullName: address.FullName,
		Phone:    address.Phone,
		House:    address.House,
		Landmark: address.Landmark,
		City:     address.City,
		State:    address.State,
		Pincode:  address.Pincode,
	}
	if err := orderRepo.CreateAddress(ctx, snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot order address")
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		OrderID:       orderID,
		Amount:        total,
		Method:        method,
		PaymentStatus: enums.PaymentStatusPending,
	}
	if err := orderRepo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment record")
	}

	for _, line := range orderLines {
		affected, err := catalogRepo.DecrementStock(ctx, shopID, line.ProductID, line.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if affected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("insufficient stock for %s", line.ProductName))
		}
	}

	if err := cartRepo.DeleteLines(ctx, record.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	if err := cartRepo.Touch(ctx, record.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}

	return &PlacementResult{
		OrderID:   orderID,
		Total:     types.MoneyFloat(total),
		ItemCount: len(orderLines),
		Address:   *snapshotFromAddress(snapshot),
	}, nil
}

func (s *service) resolveCartAndAddress(ctx context.Context, cartRepo cart.Repository, userRepo *users.Repository, userID uuid.UUID) (*models.Cart, *models.UserAddress, error) {
	record, err := cartRepo.FindActiveByOwner(ctx, userID, enums.CartOwnerUser)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	cartLines, err := cartRepo.ListLines(ctx, record.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	if len(cartLines) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
	}

	address, err := userRepo.FindDefaultAddress(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "No default address found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default address")
	}
	return record, address, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserOrderPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByUser(ctx, userID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	rows, hasMore := pagination.TrimPage(rows, limit)

	page := &UserOrderPage{Orders: make([]UserOrderSummary, 0, len(rows))}
	for _, row := range rows {
		page.Orders = append(page.Orders, UserOrderSummary{
			OrderID:       row.ID,
			ShopID:        row.ShopID,
			ShopName:      row.ShopName,
			ShopImageURL:  row.ShopImageURL,
			Total:         types.MoneyFloat(row.TotalAmount),
			ItemCount:     row.ItemCount,
			OrderStatus:   row.OrderStatus,
			PaymentStatus: row.PaymentStatus,
			CreatedAt:     row.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// GetOrderDetails loads a full order for its buyer. A caller who is
// authenticated but does not own the order gets a forbidden error, not a
// not-found, so clients can tell the cases apart.
func (s *service) GetOrderDetails(ctx context.Context, userID, orderID uuid.UUID) (*Detail, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.repo.FindDetailed(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return buildDetail(order), nil
}

func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*ShopOrderPage, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByShop(ctx, shopID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop orders")
	}
	rows, hasMore := pagination.TrimPage(rows, limit)

	orderIDs := make([]uuid.UUID, 0, len(rows))
	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		orderIDs = append(orderIDs, row.ID)
		userIDs = append(userIDs, row.UserID)
	}
	previews, err := s.repo.FirstLines(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order previews")
	}
	customers, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}

	page := &ShopOrderPage{Orders: make([]ShopOrderSummary, 0, len(rows))}
	for _, row := range rows {
		summary := ShopOrderSummary{
			OrderID:     row.ID,
			Total:       types.MoneyFloat(row.TotalAmount),
			ItemCount:   row.ItemCount,
			OrderStatus: row.OrderStatus,
			CreatedAt:   row.CreatedAt,
		}
		if customer, ok := customers[row.UserID]; ok {
			summary.CustomerName = customer.Name
			summary.CustomerPhone = customer.Phone
		}
		if preview, ok := previews[row.ID]; ok {
			detail := lineDetail(preview)
			summary.Preview = &detail
		}
		page.Orders = append(page.Orders, summary)
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// GetShopOrderDetails is scoped to the shop: an order that belongs to another
// shop is indistinguishable from one that does not exist.
func (s *service) GetShopOrderDetails(ctx context.Context, shopID, orderID uuid.UUID) (*Detail, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	order, err := s.repo.FindDetailed(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.ShopID != shopID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return buildDetail(order), nil
}

func (s *service) UpdateStatus(ctx context.Context, shopID, orderID uuid.UUID, status enums.OrderStatus) error {
	if shopID == uuid.Nil || orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop and order ids required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	affected, err := s.repo.UpdateStatus(ctx, shopID, orderID, status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func buildDetail(order *models.Order) *Detail {
	detail := &Detail{
		OrderID:       order.ID,
		ShopID:        order.ShopID,
		Total:         types.MoneyFloat(order.TotalAmount),
		ItemCount:     order.ItemCount,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		Lines:         make([]LineDetail, 0, len(order.Lines)),
		Address:       snapshotFromAddress(order.Address),
		CreatedAt:     order.CreatedAt,
	}
	if order.Payment != nil {
		detail.PaymentMethod = order.Payment.Method
	}
	for _, line := range order.Lines {
		detail.Lines = append(detail.Lines, lineDetail(line))
	}
	return detail
}
