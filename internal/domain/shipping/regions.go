package shipping

import "context"

// Wilaya is an Algerian province, the top level of the carrier's
// delivery geography.
type Wilaya struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ZoneID      int    `json:"zone_id"`
	Deliverable bool   `json:"deliverable"`
}

// Commune is a municipality inside a wilaya. Home deliveries are
// priced per commune.
type Commune struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	WilayaID        int    `json:"wilaya_id"`
	Deliverable     bool   `json:"deliverable"`
	HasStopDesk     bool   `json:"has_stop_desk"`
	DeliveryTimeHrs int    `json:"delivery_time_hrs,omitempty"`
}

// Stopdesk is a carrier pickup point where customers collect parcels
// instead of home delivery.
type Stopdesk struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	WilayaID int    `json:"wilaya_id"`
	Commune  string `json:"commune"`
	Address  string `json:"address"`
}

// RegionDirectory lists the carrier's delivery geography. Implemented
// by the Yalidine adapter, fronted by a cache in the application layer.
type RegionDirectory interface {
	GetWilayas(ctx context.Context) ([]Wilaya, error)
	GetCommunes(ctx context.Context, wilayaID int) ([]Commune, error)
	GetStopdesks(ctx context.Context, wilayaID int) ([]Stopdesk, error)
}

// RegionCache holds region lookups between carrier calls. Geography
// changes rarely, so entries live for hours. The bool result reports a
// cache hit; a miss is not an error.
type RegionCache interface {
	GetWilayas(ctx context.Context) ([]Wilaya, bool, error)
	SetWilayas(ctx context.Context, wilayas []Wilaya) error
	GetCommunes(ctx context.Context, wilayaID int) ([]Commune, bool, error)
	SetCommunes(ctx context.Context, wilayaID int, communes []Commune) error
	GetStopdesks(ctx context.Context, wilayaID int) ([]Stopdesk, bool, error)
	SetStopdesks(ctx context.Context, wilayaID int, desks []Stopdesk) error
}
