package checkout

import (
	"context"
	stderrors "errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dramirezh/tienda-backend/internal/cart"
	"github.com/dramirezh/tienda-backend/internal/catalog"
	"github.com/dramirezh/tienda-backend/internal/inventory"
	"github.com/dramirezh/tienda-backend/internal/orders"
	"github.com/dramirezh/tienda-backend/internal/pricing"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/enums"
	"github.com/dramirezh/tienda-backend/pkg/errors"
	"github.com/dramirezh/tienda-backend/pkg/logger"
	"github.com/dramirezh/tienda-backend/pkg/metrics"
)

// txRunner runs a unit of work inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// activeCartLoader is the slice of the cart service the snapshot needs.
type activeCartLoader interface {
	GetActiveCart(ctx context.Context, userID uint) (*models.Cart, error)
}

// ledgerFunc decrements stock for one product inside a transaction.
type ledgerFunc func(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error

// Snapshot is the customer-facing view of the active cart: its lines, the
// validator's verdict and the totals it would convert at.
type Snapshot struct {
	Cart           *models.Cart
	Classification Classification
	Totals         pricing.Totals
}

// Service converts carts into orders.
type Service interface {
	Snapshot(ctx context.Context, userID uint) (*Snapshot, error)
	Convert(ctx context.Context, userID uint) (*models.Order, error)
}

// ServiceParams collects the checkout service dependencies.
type ServiceParams struct {
	Tx       txRunner
	Carts    *cart.Repository
	CartSvc  activeCartLoader
	Orders   *orders.Repository
	Products *catalog.Repository
	Pricer   *pricing.Calculator
	Metrics  *metrics.CheckoutMetrics
	Log      *logger.Logger

	// Ledger overrides the stock decrement; leave nil for the real one.
	Ledger ledgerFunc
}

type service struct {
	tx        txRunner
	carts     *cart.Repository
	cartSvc   activeCartLoader
	orders    *orders.Repository
	products  *catalog.Repository
	pricer    *pricing.Calculator
	metrics   *metrics.CheckoutMetrics
	log       *logger.Logger
	decrement ledgerFunc
}

// NewService constructs the conversion engine.
func NewService(params ServiceParams) Service {
	decrement := params.Ledger
	if decrement == nil {
		decrement = inventory.Decrement
	}
	return &service{
		tx:        params.Tx,
		carts:     params.Carts,
		cartSvc:   params.CartSvc,
		orders:    params.Orders,
		products:  params.Products,
		pricer:    params.Pricer,
		metrics:   params.Metrics,
		log:       params.Log,
		decrement: decrement,
	}
}

// Snapshot returns the active cart with its validation state and totals.
// It never mutates anything; the verdict is advisory and may change by the
// time checkout runs.
func (s *service) Snapshot(ctx context.Context, userID uint) (*Snapshot, error) {
	cartModel, err := s.cartSvc.GetActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindByIDs(ctx, productIDs(cartModel.Items))
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to load cart products")
	}

	return &Snapshot{
		Cart:           cartModel,
		Classification: Classify(cartModel, products),
		Totals:         s.pricer.ComputeTotals(cartModel.Items, decimal.Zero),
	}, nil
}

// Convert turns the user's active cart into an order. The whole conversion is
// one transaction: validation, order creation, every stock decrement and the
// cart deactivation commit together or not at all.
func (s *service) Convert(ctx context.Context, userID uint) (*models.Order, error) {
	var result *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		cartModel, err := carts.FindActiveByUser(ctx, userID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return s.noActiveCart(ctx, carts, userID)
			}
			return errors.Wrap(errors.CodeDependency, err, "failed to load cart")
		}

		products, err := s.products.WithTx(tx).FindByIDs(ctx, productIDs(cartModel.Items))
		if err != nil {
			return errors.Wrap(errors.CodeDependency, err, "failed to load cart products")
		}

		if verdict := Classify(cartModel, products); !verdict.Ready() {
			return rejectionError(verdict)
		}

		totals := s.pricer.ComputeTotals(cartModel.Items, decimal.Zero)

		order := &models.Order{
			UserID:     userID,
			Status:     enums.OrderStatusPending,
			Subtotal:   totals.Subtotal,
			Discount:   totals.Discount,
			Tax:        totals.Tax,
			Shipping:   totals.Shipping,
			GrandTotal: totals.GrandTotal,
		}
		for _, item := range cartModel.Items {
			if item.SavedForLater {
				continue
			}
			order.Details = append(order.Details, models.OrderDetail{
				ProductID:   item.ProductID,
				ProductName: products[item.ProductID].Name,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
			})
		}

		if _, err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return errors.Wrap(errors.CodeDependency, err, "failed to create order")
		}

		for _, detail := range order.Details {
			if err := s.decrement(ctx, tx, detail.ProductID, detail.Quantity); err != nil {
				return err
			}
		}

		if err := carts.Deactivate(ctx, cartModel.ID); err != nil {
			return errors.Wrap(errors.CodeDependency, err, "failed to close cart")
		}

		result = order
		return nil
	})
	if err != nil {
		s.observeFailure(ctx, userID, err)
		return nil, err
	}

	s.metrics.IncConverted()
	if s.log != nil {
		logCtx := s.log.WithFields(ctx, map[string]any{
			"user_id":     userID,
			"order_id":    result.ID,
			"grand_total": result.GrandTotal.String(),
		})
		s.log.Info(logCtx, "cart converted to order")
	}
	return result, nil
}

// noActiveCart decides why the user has nothing to convert. A user whose most
// recent cart was just deactivated is re-submitting a finished checkout; a
// user with no cart at all simply has nothing to buy.
func (s *service) noActiveCart(ctx context.Context, carts *cart.Repository, userID uint) error {
	converted, err := carts.HasInactive(ctx, userID)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "failed to inspect cart history")
	}
	if converted {
		return errors.New(errors.CodeAlreadyConverted, "el carrito ya fue convertido")
	}
	return errors.New(errors.CodeCartNotReady, "el carrito no está listo para checkout").
		WithDetails(map[string]interface{}{"reason": string(enums.CartStateEmpty)})
}

// rejectionError maps a validator verdict onto the API error taxonomy. Every
// pre-conversion rejection, the stock shortfall included, is a CartNotReady
// carrying the blocking state; CodeInsufficientStock is reserved for the
// ledger losing the race mid-conversion.
func rejectionError(verdict Classification) error {
	details := map[string]interface{}{"reason": string(verdict.State)}
	if verdict.ProductID != 0 {
		details["productoId"] = verdict.ProductID
	}
	if verdict.State == enums.CartStateInsufficientStock {
		details["nombre"] = verdict.ProductName
		details["disponible"] = verdict.Available
	}
	return errors.New(errors.CodeCartNotReady, "el carrito no está listo para checkout").
		WithDetails(details)
}

// rejectionAlreadyConverted labels repeat conversions in the rejection
// counter; it sits outside the cart state machine.
const rejectionAlreadyConverted = "ALREADY_CONVERTED"

func (s *service) observeFailure(ctx context.Context, userID uint, err error) {
	switch {
	case errors.Is(err, errors.CodeCartNotReady):
		s.metrics.IncRejected(string(rejectionState(err)))
	case errors.Is(err, errors.CodeAlreadyConverted):
		s.metrics.IncRejected(rejectionAlreadyConverted)
	case errors.Is(err, errors.CodeInsufficientStock):
		s.metrics.IncRejected(string(enums.CartStateInsufficientStock))
	default:
		s.metrics.IncFailed()
		if s.log != nil {
			s.log.Error(s.log.WithField(ctx, "user_id", userID), "cart conversion failed", err)
		}
	}
}

func rejectionState(err error) enums.CartState {
	if coded := errors.As(err); coded != nil {
		if details, ok := coded.Details().(map[string]interface{}); ok {
			if reason, ok := details["reason"].(string); ok {
				return enums.CartState(reason)
			}
		}
	}
	return enums.CartStateEmpty
}

func productIDs(items []models.CartItem) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
