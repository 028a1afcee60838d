package enums

import "fmt"

// OrderStatus tracks the lifecycle of a placed order.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPacked    OrderStatus = "PACKED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusConfirmed,
	OrderStatusPacked,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

var orderStatusFlow = map[OrderStatus]OrderStatus{
	OrderStatusPlaced:    OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusPacked,
	OrderStatusPacked:    OrderStatusShipped,
	OrderStatusShipped:   OrderStatusDelivered,
}

// NextOrderStatus returns the status an administrator advances s to.
// Delivered and cancelled orders have no successor.
func NextOrderStatus(s OrderStatus) (OrderStatus, bool) {
	next, ok := orderStatusFlow[s]
	return next, ok
}

// IsPending reports whether the order still awaits fulfilment work.
func (o OrderStatus) IsPending() bool {
	return o == OrderStatusPlaced || o == OrderStatusConfirmed
}

// IsTerminal reports whether no further transition is possible.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}
