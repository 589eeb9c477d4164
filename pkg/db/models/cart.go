package models

import "time"

// Cart is a user's mutable shopping cart. At most one cart per user is
// active at a time; converted carts stay behind, deactivated, as history.
type Cart struct {
	ID        uint       `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uint       `gorm:"column:user_id;not null;index"`
	Active    bool       `gorm:"column:active;not null;default:true"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
