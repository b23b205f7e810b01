package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/catalog"
	"github.com/compucar/backend/internal/domain/shared"
)

// ProductService handles catalog management and the public listing
type ProductService struct {
	repo   catalog.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(repo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// Create adds a new product to the catalog
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if existing, err := s.repo.FindBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, shared.NewDomainError("SKU_EXISTS", "A product with this SKU already exists")
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, req.Description, req.Price, req.WeightGr, req.LengthCm, req.WidthCm, req.HeightCm)
	if err != nil {
		return nil, err
	}
	if req.Stock > 0 {
		if err := product.AdjustStock(req.Stock); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", zap.Error(err), zap.String("sku", req.SKU))
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	response := ToProductResponse(product)
	return &response, nil
}

// Get returns a single product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns a page of products. Customers get active products only;
// the admin catalog passes ActiveOnly=false to see everything.
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) (*shared.Paginated[ProductResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.Search = req.Search
	if req.ActiveOnly {
		filter.Filters["status"] = string(catalog.ProductStatusActive)
	}

	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(ToProductListResponse(products), total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// Update changes a product's descriptive and physical attributes
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.UpdateDetails(req.Name, req.Description, req.WeightGr, req.LengthCm, req.WidthCm, req.HeightCm)
	})
}

// UpdatePrice changes a product's price
func (s *ProductService) UpdatePrice(ctx context.Context, id uuid.UUID, req UpdatePriceRequest) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.UpdatePrice(req.Price)
	})
}

// AdjustStock changes a product's stock level by a delta
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.AdjustStock(req.Delta)
	})
}

// Activate puts a product back on sale
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.Activate()
	})
}

// Deactivate removes a product from sale without deleting it
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.Deactivate()
	})
}

// Delete removes a product from the catalog
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", zap.Error(err), zap.String("product_id", id.String()))
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, apply func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(product); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", zap.Error(err), zap.String("product_id", id.String()))
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}
