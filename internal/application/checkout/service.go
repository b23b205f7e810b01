package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	shippingapp "github.com/compucar/backend/internal/application/shipping"
	"github.com/compucar/backend/internal/domain/catalog"
	"github.com/compucar/backend/internal/domain/order"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/shipping"
	"github.com/compucar/backend/internal/infrastructure/telemetry"
)

// Service handles checkout and order fulfilment. The shipping cost is
// always re-quoted server-side at placement: whatever the storefront
// showed, the order stores the carrier's price. If the carrier is
// unreachable the order is still placed, with zero shipping to be
// settled manually; checkout never blocks on the carrier.
type Service struct {
	orders         order.Repository
	products       catalog.ProductRepository
	quotes         *shippingapp.QuoteService
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
}

// NewService creates a checkout service
func NewService(orders order.Repository, products catalog.ProductRepository, quotes *shippingapp.QuoteService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, products: products, quotes: quotes, logger: logger}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics wires the business metrics recorder
func (s *Service) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// PlaceOrder validates the cart, deducts stock, re-quotes shipping and
// persists the order
func (s *Service) PlaceOrder(ctx context.Context, customerID uuid.UUID, req PlaceOrderRequest) (OrderResponse, error) {
	dest := shipping.Destination{
		WilayaID:   req.WilayaID,
		Wilaya:     req.Wilaya,
		Commune:    req.Commune,
		IsStopdesk: req.IsStopdesk,
	}
	if err := dest.Validate(); err != nil {
		return OrderResponse{}, err
	}

	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return OrderResponse{}, err
	}

	lines := make([]order.LineItem, len(req.Items))
	cartItems := make([]shipping.CartLineItem, len(req.Items))
	for i, item := range req.Items {
		product := products[i]
		if !product.IsActive() {
			return OrderResponse{}, shared.NewDomainError("PRODUCT_INACTIVE", "Product "+product.SKU+" is not for sale")
		}
		if product.Stock < item.Quantity {
			return OrderResponse{}, shared.ErrInsufficientStock
		}
		lines[i] = order.LineItem{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			WeightGr:  product.WeightGr,
		}
		cartItems[i] = product.ToCartLineItem(item.Quantity)
	}

	parcel, err := shipping.ComputeParcel(cartItems)
	if err != nil {
		return OrderResponse{}, err
	}

	quote := s.quotes.PriceParcel(ctx, dest, parcel)
	if quote.Estimated {
		s.logger.Warn("order placed without a live carrier quote",
			zap.String("customer_id", customerID.String()),
			zap.Int("wilaya_id", dest.WilayaID),
		)
	}

	o, err := order.NewOrder(customerID, lines, dest, parcel, quote.Cost)
	if err != nil {
		return OrderResponse{}, err
	}

	deducted, err := s.deductStock(ctx, products, req.Items)
	if err != nil {
		return OrderResponse{}, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		s.restock(ctx, deducted, req.Items)
		return OrderResponse{}, fmt.Errorf("save order: %w", err)
	}

	if s.metrics != nil {
		amount, _ := o.GrandTotal().Float64()
		s.metrics.RecordOrderPlaced(ctx, amount)
	}
	s.publishEvents(ctx, o)

	s.logger.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("grand_total", o.GrandTotal().String()),
		zap.Bool("shipping_estimated", quote.Estimated),
	)
	return ToOrderResponse(o), nil
}

// Get returns one of the caller's orders; other customers' orders read
// as not found
func (s *Service) Get(ctx context.Context, customerID, orderID uuid.UUID) (OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderResponse{}, err
	}
	if o.CustomerID != customerID {
		return OrderResponse{}, shared.ErrNotFound
	}
	return ToOrderResponse(o), nil
}

// List returns a page of the caller's orders
func (s *Service) List(ctx context.Context, customerID uuid.UUID, req ListOrdersRequest) (shared.Paginated[OrderResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	items, err := s.orders.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, fmt.Errorf("list orders: %w", err)
	}
	total, err := s.orders.CountByCustomer(ctx, customerID)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, fmt.Errorf("count orders: %w", err)
	}
	return ToOrderListResponse(items, total, filter), nil
}

// AdminGet returns any order
func (s *Service) AdminGet(ctx context.Context, orderID uuid.UUID) (OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderResponse{}, err
	}
	return ToOrderResponse(o), nil
}

// AdminList returns the fulfilment queue for one status
func (s *Service) AdminList(ctx context.Context, req AdminListOrdersRequest) ([]OrderResponse, error) {
	status := order.OrderStatus(req.Status)
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	items, err := s.orders.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders by status: %w", err)
	}
	responses := make([]OrderResponse, len(items))
	for i, o := range items {
		responses[i] = ToOrderResponse(o)
	}
	return responses, nil
}

// ChangeStatus moves an order through fulfilment. Cancelling restocks
// the items.
func (s *Service) ChangeStatus(ctx context.Context, orderID uuid.UUID, req ChangeOrderStatusRequest) (OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderResponse{}, err
	}

	if err := o.ChangeStatus(order.OrderStatus(req.Status)); err != nil {
		return OrderResponse{}, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return OrderResponse{}, fmt.Errorf("save order: %w", err)
	}

	if o.Status == order.StatusCancelled {
		s.restockOrder(ctx, o)
	}
	s.publishEvents(ctx, o)
	return ToOrderResponse(o), nil
}

// loadProducts resolves cart lines to products, position for position
func (s *Service) loadProducts(ctx context.Context, items []OrderItemRequest) ([]*catalog.Product, error) {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Malformed product ID "+item.ProductID)
		}
		ids[i] = id
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	products := make([]*catalog.Product, len(items))
	for i, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product "+items[i].ProductID+" does not exist")
		}
		products[i] = product
	}
	return products, nil
}

// deductStock persists the stock decrease, returning the products
// updated so far for rollback on a later failure
func (s *Service) deductStock(ctx context.Context, products []*catalog.Product, items []OrderItemRequest) ([]*catalog.Product, error) {
	var deducted []*catalog.Product
	for i, product := range products {
		if err := product.AdjustStock(-items[i].Quantity); err != nil {
			s.restock(ctx, deducted, items)
			return nil, err
		}
		if err := s.products.Save(ctx, product); err != nil {
			s.restock(ctx, deducted, items)
			return nil, fmt.Errorf("deduct stock for %s: %w", product.SKU, err)
		}
		deducted = append(deducted, product)
	}
	return deducted, nil
}

// restock is the best-effort compensation when placement fails halfway
func (s *Service) restock(ctx context.Context, deducted []*catalog.Product, items []OrderItemRequest) {
	for i, product := range deducted {
		if err := product.AdjustStock(items[i].Quantity); err != nil {
			s.logger.Error("restock adjustment failed", zap.String("sku", product.SKU), zap.Error(err))
			continue
		}
		if err := s.products.Save(ctx, product); err != nil {
			s.logger.Error("restock save failed", zap.String("sku", product.SKU), zap.Error(err))
		}
	}
}

// restockOrder returns a cancelled order's items to stock, best effort
func (s *Service) restockOrder(ctx context.Context, o *order.Order) {
	for _, line := range o.Items {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			s.logger.Warn("restock lookup failed", zap.String("product_id", line.ProductID.String()), zap.Error(err))
			continue
		}
		if err := product.AdjustStock(line.Quantity); err != nil {
			s.logger.Warn("restock adjustment failed", zap.String("sku", product.SKU), zap.Error(err))
			continue
		}
		if err := s.products.Save(ctx, product); err != nil {
			s.logger.Warn("restock save failed", zap.String("sku", product.SKU), zap.Error(err))
		}
	}
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("event publish failed",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		}
	}
	o.ClearDomainEvents()
}
