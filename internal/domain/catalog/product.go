package catalog

import (
	"time"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid checks if the product status is valid
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Product is a catalog item. Physical dimensions feed the parcel
// packing engine at checkout; a product with zero weight cannot ship.
type Product struct {
	shared.BaseAggregateRoot
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Status      ProductStatus
	WeightGr    int
	LengthCm    float64
	WidthCm     float64
	HeightCm    float64
}

// NewProduct creates an active product
func NewProduct(sku, name, description string, price decimal.Decimal, weightGr int, lengthCm, widthCm, heightCm float64) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	if weightGr <= 0 {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Product weight must be greater than 0")
	}
	if lengthCm < 0 || widthCm < 0 || heightCm < 0 {
		return nil, shared.NewDomainError("INVALID_DIMENSIONS", "Product dimensions cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Description:       description,
		Price:             price,
		Status:            ProductStatusActive,
		WeightGr:          weightGr,
		LengthCm:          lengthCm,
		WidthCm:           widthCm,
		HeightCm:          heightCm,
	}, nil
}

// IsActive reports whether the product is sellable
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// UpdatePrice sets a new price
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UpdateDetails changes the descriptive and physical attributes
func (p *Product) UpdateDetails(name, description string, weightGr int, lengthCm, widthCm, heightCm float64) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if weightGr <= 0 {
		return shared.NewDomainError("INVALID_WEIGHT", "Product weight must be greater than 0")
	}
	if lengthCm < 0 || widthCm < 0 || heightCm < 0 {
		return shared.NewDomainError("INVALID_DIMENSIONS", "Product dimensions cannot be negative")
	}
	p.Name = name
	p.Description = description
	p.WeightGr = weightGr
	p.LengthCm = lengthCm
	p.WidthCm = widthCm
	p.HeightCm = heightCm
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// AdjustStock changes the stock level by delta; it cannot go negative
func (p *Product) AdjustStock(delta int) error {
	if p.Stock+delta < 0 {
		return shared.ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate removes the product from sale
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Activate puts the product back on sale
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ToCartLineItem builds a packing line from this product
func (p *Product) ToCartLineItem(quantity int) shipping.CartLineItem {
	return shipping.CartLineItem{
		Name:     p.Name,
		SKU:      p.SKU,
		Quantity: quantity,
		WeightGr: p.WeightGr,
		LengthCm: p.LengthCm,
		WidthCm:  p.WidthCm,
		HeightCm: p.HeightCm,
	}
}
