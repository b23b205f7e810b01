package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/compucar/backend/internal/domain/order"
	"github.com/compucar/backend/internal/domain/shared"
)

// OrderItemRequest is one cart line at checkout
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest submits a cart for checkout
type PlaceOrderRequest struct {
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	WilayaID   int                `json:"wilaya_id" binding:"required,wilaya"`
	Wilaya     string             `json:"wilaya"`
	Commune    string             `json:"commune"`
	IsStopdesk bool               `json:"is_stopdesk"`
}

// ListOrdersRequest paginates a customer's orders
type ListOrdersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdminListOrdersRequest filters the fulfilment queue by status
type AdminListOrdersRequest struct {
	Status   string `form:"status" binding:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ChangeOrderStatusRequest moves an order through fulfilment
type ChangeOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

// OrderItemResponse is one priced line of a placed order
type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse is a placed order on the wire
type OrderResponse struct {
	ID               string              `json:"id"`
	CustomerID       string              `json:"customer_id"`
	Items            []OrderItemResponse `json:"items"`
	WilayaID         int                 `json:"wilaya_id"`
	Wilaya           string              `json:"wilaya,omitempty"`
	Commune          string              `json:"commune,omitempty"`
	IsStopdesk       bool                `json:"is_stopdesk"`
	BillableWeightKg float64             `json:"billable_weight_kg"`
	ItemsTotal       decimal.Decimal     `json:"items_total"`
	ShippingCost     decimal.Decimal     `json:"shipping_cost"`
	GrandTotal       decimal.Decimal     `json:"grand_total"`
	Currency         string              `json:"currency"`
	Status           string              `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID.String(),
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
	}
	return OrderResponse{
		ID:               o.ID.String(),
		CustomerID:       o.CustomerID.String(),
		Items:            items,
		WilayaID:         o.Destination.WilayaID,
		Wilaya:           o.Destination.Wilaya,
		Commune:          o.Destination.Commune,
		IsStopdesk:       o.Destination.IsStopdesk,
		BillableWeightKg: o.Parcel.BillableWeightKg,
		ItemsTotal:       o.ItemsTotal(),
		ShippingCost:     o.ShippingCost,
		GrandTotal:       o.GrandTotal(),
		Currency:         "DZD",
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderListResponse converts a page of orders
func ToOrderListResponse(items []*order.Order, total int64, filter shared.Filter) shared.Paginated[OrderResponse] {
	responses := make([]OrderResponse, len(items))
	for i, o := range items {
		responses[i] = ToOrderResponse(o)
	}
	return shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
}
