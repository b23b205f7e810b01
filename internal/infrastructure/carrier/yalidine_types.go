package carrier

// ---------------------------------------------------------------------------
// Common Yalidine API Response Types
// ---------------------------------------------------------------------------

// yalidineListResponse is the pagination envelope Yalidine wraps every
// list endpoint in.
type yalidineListResponse struct {
	HasMore   bool `json:"has_more"`
	TotalData int  `json:"total_data"`
}

// yalidineError is the body Yalidine returns on non-2xx responses
type yalidineError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ---------------------------------------------------------------------------
// Geography Types
// ---------------------------------------------------------------------------

// yalidineWilayasResponse is the response for GET /wilayas/
type yalidineWilayasResponse struct {
	yalidineListResponse
	Data []yalidineWilaya `json:"data"`
}

type yalidineWilaya struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ZoneID        int    `json:"zone"`
	IsDeliverable int    `json:"is_deliverable"`
}

// yalidineCommunesResponse is the response for GET /communes/
type yalidineCommunesResponse struct {
	yalidineListResponse
	Data []yalidineCommune `json:"data"`
}

type yalidineCommune struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	WilayaID      int    `json:"wilaya_id"`
	WilayaName    string `json:"wilaya_name"`
	HasStopDesk   int    `json:"has_stop_desk"`
	IsDeliverable int    `json:"is_deliverable"`
	DeliveryTime  int    `json:"delivery_time_parcel"`
}

// yalidineCentersResponse is the response for GET /centers/ (stopdesks)
type yalidineCentersResponse struct {
	yalidineListResponse
	Data []yalidineCenter `json:"data"`
}

type yalidineCenter struct {
	CenterID    int    `json:"center_id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	CommuneName string `json:"commune_name"`
	WilayaID    int    `json:"wilaya_id"`
}

// ---------------------------------------------------------------------------
// Fee Types
// ---------------------------------------------------------------------------

// yalidineFeesResponse is the response for GET /fees/. Fees are quoted
// per destination commune for a given origin/destination wilaya pair.
type yalidineFeesResponse struct {
	FromWilayaName string                        `json:"from_wilaya_name"`
	ToWilayaName   string                        `json:"to_wilaya_name"`
	ZoneID         int                           `json:"zone"`
	OversizeFee    float64                       `json:"oversize_fee"`
	PerCommune     map[string]yalidineCommuneFee `json:"per_commune"`
}

type yalidineCommuneFee struct {
	CommuneID   int     `json:"commune_id"`
	CommuneName string  `json:"commune_name"`
	ExpressHome float64 `json:"express_home"`
	ExpressDesk float64 `json:"express_desk"`
}
