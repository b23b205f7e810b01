package models

import (
	"github.com/compucar/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for catalog products
type ProductModel struct {
	AggregateModel
	SKU         string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
	WeightGr    int             `gorm:"not null"`
	LengthCm    float64         `gorm:"not null;default:0"`
	WidthCm     float64         `gorm:"not null;default:0"`
	HeightCm    float64         `gorm:"not null;default:0"`
}

// TableName returns the table name for ProductModel
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		Status:      catalog.ProductStatus(m.Status),
		WeightGr:    m.WeightGr,
		LengthCm:    m.LengthCm,
		WidthCm:     m.WidthCm,
		HeightCm:    m.HeightCm,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// ProductModelFromDomain converts a domain product to its persistence model
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Status:      string(p.Status),
		WeightGr:    p.WeightGr,
		LengthCm:    p.LengthCm,
		WidthCm:     p.WidthCm,
		HeightCm:    p.HeightCm,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
