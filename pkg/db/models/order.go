package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dramirezh/tienda-backend/pkg/enums"
)

// Order is the immutable result of converting a cart. Totals are computed
// once at conversion time and are the values of record thereafter.
type Order struct {
	ID         uint              `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     uint              `gorm:"column:user_id;not null;index"`
	Status     enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Subtotal   decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Discount   decimal.Decimal   `gorm:"column:discount;type:numeric(10,2);not null"`
	Tax        decimal.Decimal   `gorm:"column:tax;type:numeric(10,2);not null"`
	Shipping   decimal.Decimal   `gorm:"column:shipping;type:numeric(10,2);not null"`
	GrandTotal decimal.Decimal   `gorm:"column:grand_total;type:numeric(10,2);not null"`
	Details    []OrderDetail     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
