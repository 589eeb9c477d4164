package enums

// UserRole distinguishes catalog administrators from regular shoppers.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	}
	return false
}

// OrderStatus tracks an order through its lifecycle. Conversion always
// produces a pending order; later transitions happen outside checkout.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CartState classifies whether a cart may proceed to checkout.
type CartState string

const (
	CartStateEmpty             CartState = "EMPTY"
	CartStateUnavailableItems  CartState = "HAS_UNAVAILABLE_ITEMS"
	CartStateInsufficientStock CartState = "INSUFFICIENT_STOCK"
	CartStateReady             CartState = "READY"
)
