package shipping

import (
	"context"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Destination identifies where a parcel ships to, at the granularity
// the carrier prices on. Stopdesk deliveries are priced per wilaya and
// need no commune; home deliveries require one.
type Destination struct {
	WilayaID   int
	Wilaya     string
	Commune    string
	IsStopdesk bool
}

// Validate checks destination completeness for the chosen delivery mode
func (d Destination) Validate() error {
	if d.WilayaID <= 0 {
		return shared.NewDomainError("INVALID_WILAYA", "Destination wilaya is required")
	}
	if !d.IsStopdesk && d.Commune == "" {
		return shared.NewDomainError("MISSING_COMMUNE", "Commune is required for home delivery")
	}
	return nil
}

// Quote is a shipping cost estimate for a parcel to a destination.
// Estimated quotes come from a failed or degraded carrier lookup and
// must be re-verified server-side before any money moves.
type Quote struct {
	Destination Destination
	Cost        decimal.Decimal
	Currency    string
	// Estimated marks a fallback value produced when the carrier
	// lookup failed; cost is zero and not authoritative.
	Estimated bool
}

// RateService looks up live carrier rates. Implemented by the Yalidine
// adapter in the infrastructure layer.
type RateService interface {
	// CalculateShipping returns the carrier's price for a billable
	// weight to a destination
	CalculateShipping(ctx context.Context, dest Destination, billableWeightKg float64) (decimal.Decimal, error)
}
