package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderDetail is one locked line of an order. Quantity and unit price are
// copied verbatim from the cart item at conversion time.
type OrderDetail struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID     uint            `gorm:"column:order_id;not null;index"`
	ProductID   uint            `gorm:"column:product_id;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
