package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielcastano/mercato-backend/internal/cart"
	"github.com/danielcastano/mercato-backend/internal/catalog"
	"github.com/danielcastano/mercato-backend/internal/users"
	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:orderstest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
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
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category_id TEXT,
  base_price NUMERIC,
  image_url TEXT,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS shops (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS inventory_entries (
  id TEXT PRIMARY KEY,
  shop_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  selling_price NUMERIC,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  owner_kind TEXT NOT NULL DEFAULT 'user',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_lines (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  shop_id TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  item_count INTEGER NOT NULL,
  order_status TEXT NOT NULL DEFAULT 'PENDING',
  payment_status TEXT NOT NULL DEFAULT 'PENDING',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price_at_time NUMERIC NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_addresses (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  house TEXT NOT NULL,
  landmark TEXT,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  pincode TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  amount NUMERIC NOT NULL,
  method TEXT NOT NULL DEFAULT 'COD',
  payment_status TEXT NOT NULL DEFAULT 'PENDING',
  transaction_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

type ordersTxRunner struct {
	db *gorm.DB
}

func (r ordersTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type ordersFixture struct {
	db     *gorm.DB
	svc    Service
	carts  cart.Service
	shopID uuid.UUID
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()
	db := setupOrdersTestDB(t)

	cartRepo := cart.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	usersRepo := users.NewRepository(db)
	catalogSvc, err := catalog.NewService(catalogRepo)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cartRepo, catalogSvc, ordersTxRunner{db: db})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), cartRepo, catalogRepo, usersRepo, ordersTxRunner{db: db})
	require.NoError(t, err)

	shop := &models.Shop{ID: uuid.New(), OwnerID: uuid.New(), Name: "Lakshmi Stores"}
	require.NoError(t, db.Create(shop).Error)

	return &ordersFixture{db: db, svc: svc, carts: cartSvc, shopID: shop.ID}
}

func (f *ordersFixture) seedCustomer(t *testing.T, withAddress bool) uuid.UUID {
	t.Helper()
	phone := "9876501234"
	user := &models.User{
		ID:    uuid.New(),
		Email: uuid.NewString() + "@example.com",
		Name:  "Ravi Kumar",
		Phone: &phone,
	}
	require.NoError(t, f.db.Create(user).Error)
	if withAddress {
		require.NoError(t, f.db.Create(&models.UserAddress{
			ID:        uuid.New(),
			UserID:    user.ID,
			FullName:  "Ravi Kumar",
			Phone:     phone,
			House:     "12B Gandhi Road",
			City:      "Mysuru",
			State:     "Karnataka",
			Pincode:   "570001",
			IsDefault: true,
		}).Error)
	}
	return user.ID
}

func (f *ordersFixture) seedProduct(t *testing.T, name, sellingPrice string, stock int) uuid.UUID {
	t.Helper()
	product := &models.Product{ID: uuid.New(), Name: name}
	require.NoError(t, f.db.Create(product).Error)
	price := decimal.RequireFromString(sellingPrice)
	require.NoError(t, f.db.Create(&models.InventoryEntry{
		ID:            uuid.New(),
		ShopID:        f.shopID,
		ProductID:     product.ID,
		StockQuantity: stock,
		SellingPrice:  &price,
	}).Error)
	return product.ID
}

func (f *ordersFixture) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var entry models.InventoryEntry
	require.NoError(t, f.db.Where("product_id = ?", productID).First(&entry).Error)
	return entry.StockQuantity
}

func (f *ordersFixture) addToCart(t *testing.T, userID, productID uuid.UUID, quantity int) {
	t.Helper()
	_, err := f.carts.AddLine(context.Background(),
		cart.Identity{OwnerID: userID, Kind: enums.CartOwnerUser}, productID, quantity)
	require.NoError(t, err)
}

func TestPlaceOrderHappyPath(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	userID := f.seedCustomer(t, true)
	rice := f.seedProduct(t, "Basmati Rice 5kg", "320.00", 10)
	oil := f.seedProduct(t, "Groundnut Oil 1L", "185.50", 6)
	f.addToCart(t, userID, rice, 2)
	f.addToCart(t, userID, oil, 1)

	result, err := f.svc.PlaceOrder(ctx, userID, f.shopID, enums.PaymentMethodCOD)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ItemCount)
	assert.InDelta(t, 2*320.00+185.50, result.Total, 0.001)
	assert.Equal(t, "Ravi Kumar", result.Address.FullName)
	assert.Equal(t, "570001", result.Address.Pincode)

	assert.Equal(t, 8, f.stockOf(t, rice))
	assert.Equal(t, 5, f.stockOf(t, oil))

	var userCart models.Cart
	require.NoError(t, f.db.Where("owner_id = ?", userID).First(&userCart).Error)
	var remaining int64
	require.NoError(t, f.db.Model(&models.CartLine{}).
		Where("cart_id = ?", userCart.ID).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)

	var payment models.Payment
	require.NoError(t, f.db.Where("order_id = ?", result.OrderID).First(&payment).Error)
	assert.Equal(t, enums.PaymentMethodCOD, payment.Method)
	assert.InDelta(t, result.Total, payment.Amount.InexactFloat64(), 0.001)
}

func TestPlaceOrderPricesAreFrozen(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	userID := f.seedCustomer(t, true)
	product := f.seedProduct(t, "Coffee Powder 250g", "199.00", 10)
	f.addToCart(t, userID, product, 1)

	result, err := f.svc.PlaceOrder(ctx, userID, f.shopID, enums.PaymentMethodUPI)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.InventoryEntry{}).
		Where("product_id = ?", product).
		Update("selling_price", "249.00").Error)

	detail, err := f.svc.GetOrderDetails(ctx, userID, result.OrderID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 1)
	assert.InDelta(t, 199.00, detail.Lines[0].PriceAtTime, 0.001)
	assert.InDelta(t, 199.00, detail.Total, 0.001)
	assert.Equal(t, enums.PaymentMethodUPI, detail.PaymentMethod)
}

func TestPlaceOrderPreconditions(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	withAddress := f.seedCustomer(t, true)
	_, err := f.svc.PlaceOrder(ctx, withAddress, f.shopID, enums.PaymentMethodCOD)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, "Cart is empty", appErr.Message())

	withoutAddress := f.seedCustomer(t, false)
	product := f.seedProduct(t, "Sugar 1kg", "45.00", 10)
	f.addToCart(t, withoutAddress, product, 1)
	_, err = f.svc.PlaceOrder(ctx, withoutAddress, f.shopID, enums.PaymentMethodCOD)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, "No default address found", appErr.Message())
}

func TestPlaceOrderRollsBackOnInsufficientStock(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	userID := f.seedCustomer(t, true)
	plenty := f.seedProduct(t, "Atta 10kg", "420.00", 10)
	scarce := f.seedProduct(t, "Cashew 500g", "380.00", 3)
	f.addToCart(t, userID, plenty, 2)
	f.addToCart(t, userID, scarce, 3)

	// stock drains between cart validation and placement
	require.NoError(t, f.db.Model(&models.InventoryEntry{}).
		Where("product_id = ?", scarce).
		Update("stock_quantity", 1).Error)

	_, err := f.svc.PlaceOrder(ctx, userID, f.shopID, enums.PaymentMethodCOD)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).
		Where("user_id = ?", userID).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	assert.Equal(t, 10, f.stockOf(t, plenty))
	assert.Equal(t, 1, f.stockOf(t, scarce))

	var userCart models.Cart
	require.NoError(t, f.db.Where("owner_id = ?", userID).First(&userCart).Error)
	var cartLines int64
	require.NoError(t, f.db.Model(&models.CartLine{}).
		Where("cart_id = ?", userCart.ID).Count(&cartLines).Error)
	assert.Equal(t, int64(2), cartLines)
}

func TestGetOrderDetailsOwnership(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	owner := f.seedCustomer(t, true)
	product := f.seedProduct(t, "Detergent 1kg", "99.00", 10)
	f.addToCart(t, owner, product, 1)
	result, err := f.svc.PlaceOrder(ctx, owner, f.shopID, enums.PaymentMethodCOD)
	require.NoError(t, err)

	stranger := f.seedCustomer(t, true)
	_, err = f.svc.GetOrderDetails(ctx, stranger, result.OrderID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())

	_, err = f.svc.GetOrderDetails(ctx, owner, uuid.New())
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestShopOrderSurfaces(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	userID := f.seedCustomer(t, true)
	first := f.seedProduct(t, "Turmeric 200g", "55.00", 10)
	second := f.seedProduct(t, "Chilli Powder 200g", "65.00", 10)
	f.addToCart(t, userID, first, 1)
	f.addToCart(t, userID, second, 2)
	result, err := f.svc.PlaceOrder(ctx, userID, f.shopID, enums.PaymentMethodCOD)
	require.NoError(t, err)

	page, err := f.svc.ListByShop(ctx, f.shopID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	summary := page.Orders[0]
	assert.Equal(t, result.OrderID, summary.OrderID)
	assert.Equal(t, "Ravi Kumar", summary.CustomerName)
	require.NotNil(t, summary.CustomerPhone)
	assert.Equal(t, "9876501234", *summary.CustomerPhone)
	require.NotNil(t, summary.Preview)
	assert.Equal(t, "Turmeric 200g", summary.Preview.ProductName)

	otherShop := uuid.New()
	_, err = f.svc.GetShopOrderDetails(ctx, otherShop, result.OrderID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	detail, err := f.svc.GetShopOrderDetails(ctx, f.shopID, result.OrderID)
	require.NoError(t, err)
	assert.Len(t, detail.Lines, 2)

	err = f.svc.UpdateStatus(ctx, f.shopID, result.OrderID, enums.OrderStatus("MISPLACED"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	err = f.svc.UpdateStatus(ctx, otherShop, result.OrderID, enums.OrderStatusConfirmed)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	require.NoError(t, f.svc.UpdateStatus(ctx, f.shopID, result.OrderID, enums.OrderStatusConfirmed))
	detail, err = f.svc.GetShopOrderDetails(ctx, f.shopID, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, detail.OrderStatus)
}

func TestOrderLinesKeepCartInsertionOrder(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	userID := f.seedCustomer(t, true)
	names := []string{"Turmeric 200g", "Chilli Powder 200g", "Coriander Seeds 100g"}
	for i, name := range names {
		productID := f.seedProduct(t, name, "40.00", 10)
		f.addToCart(t, userID, productID, i+1)
	}
	result, err := f.svc.PlaceOrder(ctx, userID, f.shopID, enums.PaymentMethodCOD)
	require.NoError(t, err)

	detail, err := f.svc.GetOrderDetails(ctx, userID, result.OrderID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, len(names))
	for i, line := range detail.Lines {
		assert.Equal(t, names[i], line.ProductName)
		assert.Equal(t, i+1, line.Quantity)
	}

	shopDetail, err := f.svc.GetShopOrderDetails(ctx, f.shopID, result.OrderID)
	require.NoError(t, err)
	require.Len(t, shopDetail.Lines, len(names))
	for i, line := range shopDetail.Lines {
		assert.Equal(t, names[i], line.ProductName)
	}

	page, err := f.svc.ListByShop(ctx, f.shopID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.NotNil(t, page.Orders[0].Preview)
	assert.Equal(t, "Turmeric 200g", page.Orders[0].Preview.ProductName)
}

func TestListByUserPagination(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	userID := f.seedCustomer(t, true)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.db.Create(&models.Order{
			ID:            uuid.New(),
			UserID:        userID,
			ShopID:        f.shopID,
			TotalAmount:   decimal.NewFromInt(int64(100 + i)),
			ItemCount:     1,
			OrderStatus:   enums.OrderStatusPending,
			PaymentStatus: enums.PaymentStatusPending,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	page, err := f.svc.ListByUser(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.True(t, page.Orders[0].CreatedAt.After(page.Orders[1].CreatedAt))
	assert.Equal(t, "Lakshmi Stores", page.Orders[0].ShopName)

	rest, err := f.svc.ListByUser(ctx, userID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Empty(t, rest.NextCursor)
}
