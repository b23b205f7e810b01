package models

import (
	"encoding/json"

	"github.com/compucar/backend/internal/domain/order"
	"github.com/compucar/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for orders. Line items are stored
// as a JSON snapshot; they are immutable after checkout and never
// queried individually.
type OrderModel struct {
	AggregateModel
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemsJSON        string          `gorm:"column:items;type:jsonb;not null"`
	WilayaID         int             `gorm:"not null"`
	Wilaya           string          `gorm:"type:varchar(100);not null"`
	Commune          string          `gorm:"type:varchar(100)"`
	IsStopdesk       bool            `gorm:"not null;default:false"`
	TotalWeightGr    int             `gorm:"not null"`
	BoundingLengthCm float64         `gorm:"not null"`
	BoundingWidthCm  float64         `gorm:"not null"`
	BoundingHeightCm float64         `gorm:"not null"`
	BillableWeightKg float64         `gorm:"not null"`
	ShippingCost     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status           string          `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for OrderModel
func (OrderModel) TableName() string {
	return "orders"
}

// orderItemJSON is the stored shape of one line item
type orderItemJSON struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	WeightGr  int       `json:"weight_gr"`
}

// ToDomain converts the persistence model to a domain order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		CustomerID: m.CustomerID,
		Destination: shipping.Destination{
			WilayaID:   m.WilayaID,
			Wilaya:     m.Wilaya,
			Commune:    m.Commune,
			IsStopdesk: m.IsStopdesk,
		},
		Parcel: order.ParcelSnapshot{
			TotalWeightGr:    m.TotalWeightGr,
			BoundingLengthCm: m.BoundingLengthCm,
			BoundingWidthCm:  m.BoundingWidthCm,
			BoundingHeightCm: m.BoundingHeightCm,
			BillableWeightKg: m.BillableWeightKg,
		},
		ShippingCost: m.ShippingCost,
		Status:       order.OrderStatus(m.Status),
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)

	var stored []orderItemJSON
	if err := json.Unmarshal([]byte(m.ItemsJSON), &stored); err == nil {
		items := make([]order.LineItem, 0, len(stored))
		for _, it := range stored {
			price, _ := decimal.NewFromString(it.UnitPrice)
			items = append(items, order.LineItem{
				ProductID: it.ProductID,
				SKU:       it.SKU,
				Name:      it.Name,
				Quantity:  it.Quantity,
				UnitPrice: price,
				WeightGr:  it.WeightGr,
			})
		}
		o.Items = items
	}

	return o
}

// OrderModelFromDomain converts a domain order to its persistence model
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		CustomerID:       o.CustomerID,
		WilayaID:         o.Destination.WilayaID,
		Wilaya:           o.Destination.Wilaya,
		Commune:          o.Destination.Commune,
		IsStopdesk:       o.Destination.IsStopdesk,
		TotalWeightGr:    o.Parcel.TotalWeightGr,
		BoundingLengthCm: o.Parcel.BoundingLengthCm,
		BoundingWidthCm:  o.Parcel.BoundingWidthCm,
		BoundingHeightCm: o.Parcel.BoundingHeightCm,
		BillableWeightKg: o.Parcel.BillableWeightKg,
		ShippingCost:     o.ShippingCost,
		Status:           string(o.Status),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)

	stored := make([]orderItemJSON, 0, len(o.Items))
	for _, it := range o.Items {
		stored = append(stored, orderItemJSON{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.String(),
			WeightGr:  it.WeightGr,
		})
	}
	if jsonBytes, err := json.Marshal(stored); err == nil {
		m.ItemsJSON = string(jsonBytes)
	}

	return m
}
