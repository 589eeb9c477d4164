package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one product line inside a cart. UnitPrice is snapshotted when
// the product is first added so the customer is charged the price they saw,
// even if the catalog price changes before checkout.
type CartItem struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement"`
	CartID        uint            `gorm:"column:cart_id;not null;uniqueIndex:ux_cart_items_cart_product"`
	ProductID     uint            `gorm:"column:product_id;not null;uniqueIndex:ux_cart_items_cart_product"`
	Quantity      int             `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	SavedForLater bool            `gorm:"column:saved_for_later;not null;default:false"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
