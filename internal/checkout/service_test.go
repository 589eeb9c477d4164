package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dramirezh/tienda-backend/internal/cart"
	"github.com/dramirezh/tienda-backend/internal/catalog"
	"github.com/dramirezh/tienda-backend/internal/inventory"
	"github.com/dramirezh/tienda-backend/internal/orders"
	"github.com/dramirezh/tienda-backend/internal/pricing"
	"github.com/dramirezh/tienda-backend/internal/users"
	"github.com/dramirezh/tienda-backend/pkg/config"
	"github.com/dramirezh/tienda-backend/pkg/db"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/enums"
	pkgerrors "github.com/dramirezh/tienda-backend/pkg/errors"
	"github.com/dramirezh/tienda-backend/pkg/metrics"
)

type checkoutFixture struct {
	db      *gorm.DB
	cartSvc cart.Service
	user    *models.User
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{}, &models.Product{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderDetail{},
	))

	user := &models.User{
		Email:        "ana@example.com",
		Name:         "Ana",
		PasswordHash: "irrelevant",
		Role:         enums.RoleCustomer,
	}
	require.NoError(t, conn.Create(user).Error)

	cartSvc := cart.NewService(
		cart.NewRepository(conn),
		catalog.NewRepository(conn),
		users.NewRepository(conn),
	)
	return &checkoutFixture{db: conn, cartSvc: cartSvc, user: user}
}

func (f *checkoutFixture) newService(t *testing.T, ledger ledgerFunc) Service {
	t.Helper()
	return f.newServiceWithMetrics(t, ledger, metrics.NewCheckoutMetrics(prometheus.NewRegistry()))
}

func (f *checkoutFixture) newServiceWithMetrics(t *testing.T, ledger ledgerFunc, m *metrics.CheckoutMetrics) Service {
	t.Helper()

	pricer, err := pricing.NewCalculator(config.PricingConfig{
		TaxRate:               "0.10",
		FreeShippingThreshold: "50.00",
		FlatShippingFee:       "5.99",
	})
	require.NoError(t, err)

	return NewService(ServiceParams{
		Tx:       db.FromGorm(f.db),
		Carts:    cart.NewRepository(f.db),
		CartSvc:  f.cartSvc,
		Orders:   orders.NewRepository(f.db),
		Products: catalog.NewRepository(f.db),
		Pricer:   pricer,
		Metrics:  m,
		Ledger:   ledger,
	})
}

func (f *checkoutFixture) addUser(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		Name:         "Cliente",
		PasswordHash: "irrelevant",
		Role:         enums.RoleCustomer,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *checkoutFixture) addProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *checkoutFixture) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, "id = ?", productID).Error)
	return p.Stock
}

func TestConvertCreatesOrderAndDrainsStock(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc := f.newService(t, nil)
	ctx := context.Background()

	keyboard := f.addProduct(t, "Teclado mecánico", "10.00", 5)
	mouse := f.addProduct(t, "Mouse inalámbrico", "25.50", 3)

	_, err := f.cartSvc.AddItem(ctx, f.user.ID, keyboard.ID, 2)
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, f.user.ID, mouse.ID, 1)
	require.NoError(t, err)

	order, err := svc.Convert(ctx, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("45.50")))
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("4.55")))
	assert.True(t, order.Shipping.Equal(decimal.RequireFromString("5.99")))
	assert.True(t, order.GrandTotal.Equal(decimal.RequireFromString("56.04")))
	require.Len(t, order.Details, 2)
	assert.Equal(t, "Teclado mecánico", order.Details[0].ProductName)
	assert.True(t, order.Details[0].LineTotal.Equal(decimal.RequireFromString("20.00")))

	assert.Equal(t, 3, f.stockOf(t, keyboard.ID))
	assert.Equal(t, 2, f.stockOf(t, mouse.ID))

	// The converted cart is closed; the next fetch starts a fresh one.
	fresh, err := f.cartSvc.GetActiveCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Items)
}

func TestConvertRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc := f.newService(t, nil)
	ctx := context.Background()

	_, err := f.cartSvc.GetActiveCart(ctx, f.user.ID)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, f.user.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeCartNotReady))

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	details, ok := coded.Details().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(enums.CartStateEmpty), details["reason"])
}

func TestConvertRejectsUnavailableProduct(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc := f.newService(t, nil)
	ctx := context.Background()

	product := f.addProduct(t, "Monitor 27\"", "49.99", 4)
	_, err := f.cartSvc.AddItem(ctx, f.user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("active", false).Error)

	_, err = svc.Convert(ctx, f.user.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeCartNotReady))

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	details, ok := coded.Details().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(enums.CartStateUnavailableItems), details["reason"])
}

func TestConvertRejectsInsufficientStock(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc := f.newService(t, nil)
	ctx := context.Background()

	product := f.addProduct(t, "Audífonos", "15.00", 2)
	_, err := f.cartSvc.AddItem(ctx, f.user.ID, product.ID, 5)
	require.NoError(t, err)

	// The pre-conversion re-check rejects with a not-ready verdict naming the
	// shortfall; the conflict code belongs to the mid-conversion race alone.
	_, err = svc.Convert(ctx, f.user.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeCartNotReady))

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	details, ok := coded.Details().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(enums.CartStateInsufficientStock), details["reason"])
	assert.Equal(t, product.ID, details["productoId"])
	assert.Equal(t, "Audífonos", details["nombre"])
	assert.Equal(t, 2, details["disponible"])

	// Rejection must leave stock untouched.
	assert.Equal(t, 2, f.stockOf(t, product.ID))
}

func TestConvertTwiceReportsAlreadyConverted(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc := f.newService(t, nil)
	ctx := context.Background()

	product := f.addProduct(t, "Cargador USB-C", "12.00", 10)
	_, err := f.cartSvc.AddItem(ctx, f.user.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, f.user.ID)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, f.user.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeAlreadyConverted))
}

func TestConvertCountsAlreadyConvertedRejections(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	reg := prometheus.NewRegistry()
	svc := f.newServiceWithMetrics(t, nil, metrics.NewCheckoutMetrics(reg))
	ctx := context.Background()

	product := f.addProduct(t, "Lámpara LED", "18.00", 4)
	_, err := f.cartSvc.AddItem(ctx, f.user.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, f.user.ID)
	require.NoError(t, err)
	_, err = svc.Convert(ctx, f.user.ID)
	require.Error(t, err)

	expected := strings.NewReader(`# HELP checkout_rejections_total Checkout attempts rejected by cart state.
# TYPE checkout_rejections_total counter
checkout_rejections_total{state="already_converted"} 1
`)
	require.NoError(t, testutil.GatherAndCompare(reg, expected, "checkout_rejections_total"))
}

func TestConvertRollsBackOnMidConversionShortage(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()

	first := f.addProduct(t, "Teclado mecánico", "10.00", 5)
	second := f.addProduct(t, "Mouse inalámbrico", "25.50", 3)

	_, err := f.cartSvc.AddItem(ctx, f.user.ID, first.ID, 2)
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, f.user.ID, second.ID, 1)
	require.NoError(t, err)

	// The second decrement fails as if another shopper drained the product
	// between validation and the ledger write.
	calls := 0
	ledger := func(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
		calls++
		if productID == second.ID {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock insuficiente").
				WithDetails(map[string]interface{}{
					"productoId": productID,
					"nombre":     "Mouse inalámbrico",
					"disponible": 0,
				})
		}
		return inventory.Decrement(ctx, tx, productID, quantity)
	}
	svc := f.newService(t, ledger)

	_, err = svc.Convert(ctx, f.user.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock))
	assert.Equal(t, 2, calls)

	// All or nothing: the first decrement is rolled back, no order exists
	// and the cart stays open.
	assert.Equal(t, 5, f.stockOf(t, first.ID))

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	var detailCount int64
	require.NoError(t, f.db.Model(&models.OrderDetail{}).Count(&detailCount).Error)
	assert.Zero(t, detailCount)

	reloaded, err := f.cartSvc.GetActiveCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 2)
}

func TestConvertLastUnitWinnerTakesAll(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc := f.newService(t, nil)
	ctx := context.Background()

	rival := f.addUser(t, "beto@example.com")
	product := f.addProduct(t, "Consola retro", "40.00", 1)

	_, err := f.cartSvc.AddItem(ctx, f.user.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, rival.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.stockOf(t, product.ID))

	// The loser never reaches the ledger: the re-check sees the drained stock
	// and rejects the cart as not ready.
	_, err = svc.Convert(ctx, rival.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeCartNotReady))

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	details, ok := coded.Details().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(enums.CartStateInsufficientStock), details["reason"])
	assert.Equal(t, 0, f.stockOf(t, product.ID))
}

func TestConvertSkipsSavedForLaterLines(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc := f.newService(t, nil)
	ctx := context.Background()

	wanted := f.addProduct(t, "Libro de Go", "30.00", 5)
	parked := f.addProduct(t, "Silla gamer", "199.99", 2)

	_, err := f.cartSvc.AddItem(ctx, f.user.ID, wanted.ID, 1)
	require.NoError(t, err)
	parkedItem, err := f.cartSvc.AddItem(ctx, f.user.ID, parked.ID, 1)
	require.NoError(t, err)
	_, err = f.cartSvc.SetSavedForLater(ctx, f.user.ID, parkedItem.ID, true)
	require.NoError(t, err)

	order, err := svc.Convert(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, order.Details, 1)
	assert.Equal(t, wanted.ID, order.Details[0].ProductID)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("30.00")))

	// Saved-for-later stock is untouched.
	assert.Equal(t, 2, f.stockOf(t, parked.ID))
}

func TestSnapshotReportsStateAndTotals(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc := f.newService(t, nil)
	ctx := context.Background()

	empty, err := svc.Snapshot(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStateEmpty, empty.Classification.State)
	assert.True(t, empty.Totals.GrandTotal.IsZero())

	product := f.addProduct(t, "Teclado mecánico", "10.00", 5)
	_, err = f.cartSvc.AddItem(ctx, f.user.ID, product.ID, 5)
	require.NoError(t, err)

	ready, err := svc.Snapshot(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStateReady, ready.Classification.State)
	assert.True(t, ready.Totals.Subtotal.Equal(decimal.RequireFromString("50.00")))
	// Exactly at the threshold still pays flat shipping.
	assert.True(t, ready.Totals.Shipping.Equal(decimal.RequireFromString("5.99")))
	assert.True(t, ready.Totals.GrandTotal.Equal(decimal.RequireFromString("60.99")))

	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("stock", 3).Error)

	short, err := svc.Snapshot(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStateInsufficientStock, short.Classification.State)
	assert.Equal(t, 3, short.Classification.Available)
}
