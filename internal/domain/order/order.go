package order

import (
	"time"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// LineItem is a priced snapshot of a product at order time. Prices and
// dimensions are copied so later catalog edits don't rewrite history.
type LineItem struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	WeightGr  int
}

// Subtotal returns quantity times unit price
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ParcelSnapshot freezes the packing result the order was quoted on
type ParcelSnapshot struct {
	TotalWeightGr    int
	BoundingLengthCm float64
	BoundingWidthCm  float64
	BoundingHeightCm float64
	BillableWeightKg float64
}

// Order is a placed checkout: item snapshot, destination, the parcel it
// was quoted on, and the server-confirmed shipping cost
type Order struct {
	shared.BaseAggregateRoot
	CustomerID   uuid.UUID
	Items        []LineItem
	Destination  shipping.Destination
	Parcel       ParcelSnapshot
	ShippingCost decimal.Decimal
	Status       OrderStatus
}

// NewOrder creates a pending order from validated checkout data
func NewOrder(customerID uuid.UUID, items []LineItem, dest shipping.Destination, parcel shipping.Parcel, shippingCost decimal.Decimal) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if err := dest.Validate(); err != nil {
		return nil, err
	}
	if shippingCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING_COST", "Shipping cost cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Items:             items,
		Destination:       dest,
		Parcel: ParcelSnapshot{
			TotalWeightGr:    parcel.TotalWeightGr,
			BoundingLengthCm: parcel.BoundingLengthCm,
			BoundingWidthCm:  parcel.BoundingWidthCm,
			BoundingHeightCm: parcel.BoundingHeightCm,
			BillableWeightKg: parcel.BillableWeightKg(),
		},
		ShippingCost: shippingCost,
		Status:       StatusPending,
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// ItemsTotal sums the line subtotals
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// GrandTotal is items plus shipping
func (o *Order) GrandTotal() decimal.Decimal {
	return o.ItemsTotal().Add(o.ShippingCost)
}

// ChangeStatus moves the order through its fulfilment workflow
func (o *Order) ChangeStatus(newStatus OrderStatus) error {
	if !newStatus.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	allowed := false
	for _, next := range orderTransitions[o.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return shared.ErrInvalidState
	}

	oldStatus := o.Status
	o.Status = newStatus
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, oldStatus))
	return nil
}
