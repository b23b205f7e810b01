package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/compucar/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required,max=64"`
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"min=0"`
	WeightGr    int             `json:"weightGr" binding:"required,min=1"`
	LengthCm    float64         `json:"lengthCm" binding:"min=0"`
	WidthCm     float64         `json:"widthCm" binding:"min=0"`
	HeightCm    float64         `json:"heightCm" binding:"min=0"`
}

// UpdateProductRequest represents a request to update a product's details
type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	WeightGr    int     `json:"weightGr" binding:"required,min=1"`
	LengthCm    float64 `json:"lengthCm" binding:"min=0"`
	WidthCm     float64 `json:"widthCm" binding:"min=0"`
	HeightCm    float64 `json:"heightCm" binding:"min=0"`
}

// UpdatePriceRequest represents a request to change a product's price
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// AdjustStockRequest represents a request to change stock by a delta
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ListProductsRequest represents a request to list products
type ListProductsRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Search     string `form:"search" binding:"omitempty,max=200"`
	ActiveOnly bool   `form:"activeOnly"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Status      string          `json:"status"`
	InStock     bool            `json:"inStock"`
	WeightGr    int             `json:"weightGr"`
	LengthCm    float64         `json:"lengthCm"`
	WidthCm     float64         `json:"widthCm"`
	HeightCm    float64         `json:"heightCm"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Version     int             `json:"version"`
}

// ToProductResponse converts a product aggregate to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Status:      string(p.Status),
		InStock:     p.Stock > 0,
		WeightGr:    p.WeightGr,
		LengthCm:    p.LengthCm,
		WidthCm:     p.WidthCm,
		HeightCm:    p.HeightCm,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProductListResponse converts a slice of products to response DTOs
func ToProductListResponse(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
