package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dramirezh/tienda-backend/pkg/config"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
)

// Totals is the derived pricing view of a cart. It is recomputed on every
// read and never persisted as authoritative; order totals are recomputed one
// final time at conversion and those are the values of record.
type Totals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Calculator derives cart totals from line items. It is stateless; both the
// cart view and the conversion engine share one instance.
type Calculator struct {
	taxRate               decimal.Decimal
	freeShippingThreshold decimal.Decimal
	flatShippingFee       decimal.Decimal
}

// NewCalculator parses the configured pricing constants.
func NewCalculator(cfg config.PricingConfig) (*Calculator, error) {
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("parsing tax rate: %w", err)
	}
	threshold, err := decimal.NewFromString(cfg.FreeShippingThreshold)
	if err != nil {
		return nil, fmt.Errorf("parsing free shipping threshold: %w", err)
	}
	fee, err := decimal.NewFromString(cfg.FlatShippingFee)
	if err != nil {
		return nil, fmt.Errorf("parsing flat shipping fee: %w", err)
	}
	return &Calculator{
		taxRate:               taxRate,
		freeShippingThreshold: threshold,
		flatShippingFee:       fee,
	}, nil
}

// ComputeTotals derives totals from the cart lines. Saved-for-later lines are
// excluded. Discount is an externally supplied amount (coupons live outside
// this service) and is clamped to the subtotal.
func (c *Calculator) ComputeTotals(items []models.CartItem, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.SavedForLater {
			continue
		}
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	discount = discount.Round(2)

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(c.taxRate).Round(2)

	shipping := c.flatShippingFee
	if subtotal.IsZero() || taxable.GreaterThan(c.freeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal:   subtotal,
		Discount:   discount,
		Tax:        tax,
		Shipping:   shipping,
		GrandTotal: taxable.Add(tax).Add(shipping).Round(2),
	}
}
