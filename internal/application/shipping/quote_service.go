package shipping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/catalog"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/shipping"
	"github.com/compucar/backend/internal/infrastructure/telemetry"
)

// QuoteCurrency is the only currency the carrier prices in
const QuoteCurrency = "DZD"

// QuoteService prices a cart's shipping. A failed carrier lookup
// degrades to an estimated zero quote instead of blocking the
// storefront; checkout re-verifies the real price server-side.
type QuoteService struct {
	products catalog.ProductRepository
	rates    shipping.RateService
	metrics  *telemetry.BusinessMetrics
	logger   *zap.Logger
}

// NewQuoteService creates a quote service
func NewQuoteService(products catalog.ProductRepository, rates shipping.RateService, logger *zap.Logger) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{products: products, rates: rates, logger: logger}
}

// SetMetrics wires the business metrics recorder
func (s *QuoteService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// Quote packs the cart into a parcel and prices it to the destination
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error) {
	dest := shipping.Destination{
		WilayaID:   req.WilayaID,
		Wilaya:     req.Wilaya,
		Commune:    req.Commune,
		IsStopdesk: req.IsStopdesk,
	}
	if err := dest.Validate(); err != nil {
		return QuoteResponse{}, err
	}

	parcel, err := s.packCart(ctx, req.Items)
	if err != nil {
		return QuoteResponse{}, err
	}

	quote := s.PriceParcel(ctx, dest, parcel)
	return QuoteResponse{
		WilayaID:         dest.WilayaID,
		Commune:          dest.Commune,
		IsStopdesk:       dest.IsStopdesk,
		BillableWeightKg: parcel.BillableWeightKg(),
		Cost:             quote.Cost,
		Currency:         quote.Currency,
		Estimated:        quote.Estimated,
	}, nil
}

// PriceParcel asks the carrier for the price of an already-packed
// parcel. Carrier failures yield an estimated zero quote; the caller
// decides whether that is acceptable.
func (s *QuoteService) PriceParcel(ctx context.Context, dest shipping.Destination, parcel shipping.Parcel) shipping.Quote {
	start := time.Now()
	cost, err := s.rates.CalculateShipping(ctx, dest, parcel.BillableWeightKg())
	elapsed := time.Since(start)

	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordCarrierLookup(ctx, elapsed, "error")
		}
		s.logger.Warn("carrier rate lookup failed, degrading to estimated quote",
			zap.Int("wilaya_id", dest.WilayaID),
			zap.Bool("stopdesk", dest.IsStopdesk),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return shipping.Quote{Destination: dest, Cost: decimal.Zero, Currency: QuoteCurrency, Estimated: true}
	}

	if s.metrics != nil {
		s.metrics.RecordCarrierLookup(ctx, elapsed, "ok")
	}
	return shipping.Quote{Destination: dest, Cost: cost, Currency: QuoteCurrency}
}

// packCart loads the referenced products and folds them into a parcel
func (s *QuoteService) packCart(ctx context.Context, items []QuoteItemRequest) (shipping.Parcel, error) {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return shipping.Parcel{}, shared.NewDomainError("INVALID_PRODUCT_ID", "Malformed product ID "+item.ProductID)
		}
		ids[i] = id
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return shipping.Parcel{}, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]shipping.CartLineItem, len(items))
	for i, item := range items {
		product, ok := byID[ids[i]]
		if !ok {
			return shipping.Parcel{}, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product "+item.ProductID+" does not exist")
		}
		if !product.IsActive() {
			return shipping.Parcel{}, shared.NewDomainError("PRODUCT_INACTIVE", "Product "+product.SKU+" is not for sale")
		}
		lines[i] = product.ToCartLineItem(item.Quantity)
	}

	return shipping.ComputeParcel(lines)
}
