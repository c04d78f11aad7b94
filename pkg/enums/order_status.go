package enums

// OrderStatus is free-form in storage; these are the values the reports know about.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// CountsAsSale reports whether items in this status are purchased for
// top-selling and review eligibility.
func (s OrderStatus) CountsAsSale() bool {
	return s == OrderStatusDelivered || s == OrderStatusCompleted
}

// SaleStatuses lists the statuses for which CountsAsSale is true.
func SaleStatuses() []string {
	return []string{string(OrderStatusDelivered), string(OrderStatusCompleted)}
}
