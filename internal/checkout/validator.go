package checkout

import (
	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/enums"
)

// Classification is the validator's verdict on a cart. For non-READY states
// the offending product (the first one in cart order) is identified so the
// caller can tell the customer exactly what to fix.
type Classification struct {
	State       enums.CartState
	ProductID   uint
	ProductName string
	Available   int
}

// Ready reports whether the cart can be converted.
func (c Classification) Ready() bool {
	return c.State == enums.CartStateReady
}

// Classify inspects a cart against the current catalog and returns the first
// problem found, walking lines in insertion order. Saved-for-later lines are
// ignored entirely: they neither count toward emptiness nor block checkout.
//
// Precedence: an empty cart wins over everything, an unavailable product wins
// over a stock shortage.
func Classify(cartModel *models.Cart, products map[uint]*models.Product) Classification {
	active := make([]models.CartItem, 0, len(cartModel.Items))
	for _, item := range cartModel.Items {
		if !item.SavedForLater {
			active = append(active, item)
		}
	}
	if len(active) == 0 {
		return Classification{State: enums.CartStateEmpty}
	}

	for _, item := range active {
		product, ok := products[item.ProductID]
		if !ok || !product.Active {
			c := Classification{State: enums.CartStateUnavailableItems, ProductID: item.ProductID}
			if ok {
				c.ProductName = product.Name
			}
			return c
		}
	}

	for _, item := range active {
		product := products[item.ProductID]
		if item.Quantity > product.Stock {
			return Classification{
				State:       enums.CartStateInsufficientStock,
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
			}
		}
	}

	return Classification{State: enums.CartStateReady}
}
