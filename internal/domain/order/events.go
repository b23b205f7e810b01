package order

import (
	"github.com/compucar/backend/internal/domain/shared"
)

const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderPlacedEvent is emitted when checkout persists a new order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID      string `json:"order_id"`
	CustomerID   string `json:"customer_id"`
	ItemCount    int    `json:"item_count"`
	GrandTotal   string `json:"grand_total"`
	WilayaID     int    `json:"wilaya_id"`
	ShippingCost string `json:"shipping_cost"`
}

// NewOrderPlacedEvent creates a new order placed event
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, "Order", o.ID),
		OrderID:         o.ID.String(),
		CustomerID:      o.CustomerID.String(),
		ItemCount:       len(o.Items),
		GrandTotal:      o.GrandTotal().String(),
		WilayaID:        o.Destination.WilayaID,
		ShippingCost:    o.ShippingCost.String(),
	}
}

// OrderStatusChangedEvent is emitted on every fulfilment transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new order status changed event
func NewOrderStatusChangedEvent(o *Order, oldStatus OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, "Order", o.ID),
		OrderID:         o.ID.String(),
		CustomerID:      o.CustomerID.String(),
		OldStatus:       string(oldStatus),
		NewStatus:       string(o.Status),
	}
}
