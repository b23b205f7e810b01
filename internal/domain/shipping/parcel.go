package shipping

import (
	"math"

	"github.com/compucar/backend/internal/domain/shared"
)

// VolumetricDivisor is the divisor used to convert parcel volume (cm³)
// into volumetric weight (kg), per the road-freight convention.
const VolumetricDivisor = 5000.0

// CartLineItem is one physical line of a cart at checkout time.
// It is built from stored product dimensions and is immutable within
// a single packing computation.
type CartLineItem struct {
	Name     string
	SKU      string
	Quantity int
	WeightGr int
	LengthCm float64
	WidthCm  float64
	HeightCm float64
}

// Validate checks the item against packing preconditions
func (i CartLineItem) Validate() error {
	if i.Quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
	}
	if i.WeightGr <= 0 {
		return shared.NewDomainError("INVALID_WEIGHT", "Item weight must be greater than 0")
	}
	if i.LengthCm < 0 || i.WidthCm < 0 || i.HeightCm < 0 {
		return shared.NewDomainError("INVALID_DIMENSIONS", "Item dimensions cannot be negative")
	}
	return nil
}

// Parcel is the aggregate physical package derived from one cart's
// line items. It is recomputed on every cart change and never persisted
// as-is; orders store a snapshot of it.
type Parcel struct {
	TotalWeightGr    int
	BoundingLengthCm float64
	BoundingWidthCm  float64
	BoundingHeightCm float64
}

// ActualWeightKg returns the summed item weight in kilograms
func (p Parcel) ActualWeightKg() float64 {
	return float64(p.TotalWeightGr) / 1000.0
}

// VolumetricWeightKg returns the weight derived from the bounding volume
func (p Parcel) VolumetricWeightKg() float64 {
	return p.BoundingLengthCm * p.BoundingWidthCm * p.BoundingHeightCm / VolumetricDivisor
}

// BillableWeightKg returns the greater of actual and volumetric weight,
// which is what carriers charge on
func (p Parcel) BillableWeightKg() float64 {
	return math.Max(p.ActualWeightKg(), p.VolumetricWeightKg())
}

// ComputeParcel folds a cart's line items into a single parcel using a
// shelf-stacking heuristic: items are assumed stackable into one box
// whose footprint is the widest item footprint and whose height is the
// sum of all item heights scaled by quantity. This is an approximation
// for checkout estimates, not a bin-packing solver; the carrier's
// measured dimensions remain authoritative at pickup.
//
// The computation is pure, deterministic, and independent of item
// order. An empty cart or an item with non-positive weight or quantity
// is a validation error rather than a zero parcel.
func ComputeParcel(items []CartLineItem) (Parcel, error) {
	if len(items) == 0 {
		return Parcel{}, shared.NewDomainError("EMPTY_CART", "Cannot compute a parcel for an empty cart")
	}

	var parcel Parcel
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return Parcel{}, err
		}
		parcel.TotalWeightGr += item.WeightGr * item.Quantity
		parcel.BoundingLengthCm = math.Max(parcel.BoundingLengthCm, item.LengthCm)
		parcel.BoundingWidthCm = math.Max(parcel.BoundingWidthCm, item.WidthCm)
		parcel.BoundingHeightCm += item.HeightCm * float64(item.Quantity)
	}
	return parcel, nil
}
