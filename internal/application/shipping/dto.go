package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/compucar/backend/internal/domain/shipping"
)

// QuoteItemRequest is one cart line in a quote request
type QuoteItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// QuoteRequest asks for a shipping price for a cart to a destination
type QuoteRequest struct {
	Items      []QuoteItemRequest `json:"items" binding:"required,min=1,dive"`
	WilayaID   int                `json:"wilaya_id" binding:"required,wilaya"`
	Wilaya     string             `json:"wilaya"`
	Commune    string             `json:"commune"`
	IsStopdesk bool               `json:"is_stopdesk"`
}

// QuoteResponse is the priced (or degraded) shipping quote
type QuoteResponse struct {
	WilayaID         int             `json:"wilaya_id"`
	Commune          string          `json:"commune,omitempty"`
	IsStopdesk       bool            `json:"is_stopdesk"`
	BillableWeightKg float64         `json:"billable_weight_kg"`
	Cost             decimal.Decimal `json:"cost"`
	Currency         string          `json:"currency"`
	// Estimated marks a quote produced while the carrier was
	// unreachable; the cost is zero and will be re-checked at checkout
	Estimated bool `json:"estimated"`
}

// WilayaResponse is one deliverable province
type WilayaResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	ZoneID int    `json:"zone_id"`
}

// CommuneResponse is one municipality of a wilaya
type CommuneResponse struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	WilayaID        int    `json:"wilaya_id"`
	HasStopDesk     bool   `json:"has_stop_desk"`
	DeliveryTimeHrs int    `json:"delivery_time_hrs,omitempty"`
}

// StopdeskResponse is one carrier pickup point
type StopdeskResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	WilayaID int    `json:"wilaya_id"`
	Commune  string `json:"commune"`
	Address  string `json:"address"`
}

// ToWilayaResponses converts deliverable wilayas, dropping the rest
func ToWilayaResponses(wilayas []shipping.Wilaya) []WilayaResponse {
	out := make([]WilayaResponse, 0, len(wilayas))
	for _, w := range wilayas {
		if !w.Deliverable {
			continue
		}
		out = append(out, WilayaResponse{ID: w.ID, Name: w.Name, ZoneID: w.ZoneID})
	}
	return out
}

// ToCommuneResponses converts deliverable communes, dropping the rest
func ToCommuneResponses(communes []shipping.Commune) []CommuneResponse {
	out := make([]CommuneResponse, 0, len(communes))
	for _, c := range communes {
		if !c.Deliverable {
			continue
		}
		out = append(out, CommuneResponse{
			ID:              c.ID,
			Name:            c.Name,
			WilayaID:        c.WilayaID,
			HasStopDesk:     c.HasStopDesk,
			DeliveryTimeHrs: c.DeliveryTimeHrs,
		})
	}
	return out
}

// ToStopdeskResponses converts pickup points
func ToStopdeskResponses(desks []shipping.Stopdesk) []StopdeskResponse {
	out := make([]StopdeskResponse, 0, len(desks))
	for _, d := range desks {
		out = append(out, StopdeskResponse{
			ID:       d.ID,
			Name:     d.Name,
			WilayaID: d.WilayaID,
			Commune:  d.Commune,
			Address:  d.Address,
		})
	}
	return out
}
