package checkout

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shippingapp "github.com/compucar/backend/internal/application/shipping"
	"github.com/compucar/backend/internal/domain/catalog"
	"github.com/compucar/backend/internal/domain/order"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/shipping"
)

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*order.Order
	saveErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *fakeOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, _ shared.Filter) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) FindByStatus(_ context.Context, status order.OrderStatus, _ shared.Filter) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		if o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) CountByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	orders, _ := r.FindByCustomer(context.Background(), customerID, shared.Filter{})
	return int64(len(orders)), nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindBySKU(context.Context, string) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindAll(context.Context, shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Count(context.Context, shared.Filter) (int64, error) { return 0, nil }

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

type fakeRates struct {
	cost decimal.Decimal
	err  error
}

func (f *fakeRates) CalculateShipping(context.Context, shipping.Destination, float64) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.cost, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newCheckoutFixture(t *testing.T, rates shipping.RateService) (*Service, *fakeOrderRepo, *fakeProductRepo, *capturingPublisher, *catalog.Product) {
	t.Helper()
	product, err := catalog.NewProduct("OBD-100", "OBD scanner", "", decimal.NewFromInt(2500), 800, 20, 15, 5)
	require.NoError(t, err)
	require.NoError(t, product.AdjustStock(10))

	products := &fakeProductRepo{products: map[uuid.UUID]*catalog.Product{product.ID: product}}
	orders := newFakeOrderRepo()
	quotes := shippingapp.NewQuoteService(products, rates, nil)
	pub := &capturingPublisher{}
	svc := NewService(orders, products, quotes, nil)
	svc.SetEventPublisher(pub)
	return svc, orders, products, pub, product
}

func placeRequest(product *catalog.Product, quantity int) PlaceOrderRequest {
	return PlaceOrderRequest{
		Items:    []OrderItemRequest{{ProductID: product.ID.String(), Quantity: quantity}},
		WilayaID: 31,
		Wilaya:   "Oran",
		Commune:  "Oran",
	}
}

func TestPlaceOrder(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		svc, _, products, pub, product := newCheckoutFixture(t, &fakeRates{cost: decimal.NewFromInt(800)})

		resp, err := svc.PlaceOrder(context.Background(), uuid.New(), placeRequest(product, 2))
		require.NoError(t, err)

		assert.Equal(t, "PENDING", resp.Status)
		assert.True(t, resp.ItemsTotal.Equal(decimal.NewFromInt(5000)))
		assert.True(t, resp.ShippingCost.Equal(decimal.NewFromInt(800)))
		assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(5800)))
		assert.Equal(t, 8, products.stock(product.ID))
		assert.Contains(t, pub.types(), order.EventTypeOrderPlaced)
	})

	t.Run("carrier down places with zero shipping", func(t *testing.T) {
		svc, _, _, _, product := newCheckoutFixture(t, &fakeRates{err: errors.New("timeout")})

		resp, err := svc.PlaceOrder(context.Background(), uuid.New(), placeRequest(product, 1))
		require.NoError(t, err)
		assert.True(t, resp.ShippingCost.IsZero())
		assert.True(t, resp.GrandTotal.Equal(resp.ItemsTotal))
	})

	t.Run("insufficient stock", func(t *testing.T) {
		svc, _, products, _, product := newCheckoutFixture(t, &fakeRates{cost: decimal.NewFromInt(800)})

		_, err := svc.PlaceOrder(context.Background(), uuid.New(), placeRequest(product, 11))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 10, products.stock(product.ID))
	})

	t.Run("order save failure restocks and publishes nothing", func(t *testing.T) {
		svc, orders, products, pub, product := newCheckoutFixture(t, &fakeRates{cost: decimal.NewFromInt(800)})
		orders.saveErr = errors.New("db down")

		_, err := svc.PlaceOrder(context.Background(), uuid.New(), placeRequest(product, 3))
		require.Error(t, err)
		assert.Equal(t, 10, products.stock(product.ID))
		assert.NotContains(t, pub.types(), order.EventTypeOrderPlaced)
	})

	t.Run("inactive product rejected", func(t *testing.T) {
		svc, _, products, _, product := newCheckoutFixture(t, &fakeRates{cost: decimal.NewFromInt(800)})
		stored, err := products.FindByID(context.Background(), product.ID)
		require.NoError(t, err)
		require.NoError(t, stored.Deactivate())
		require.NoError(t, products.Save(context.Background(), stored))

		_, err = svc.PlaceOrder(context.Background(), uuid.New(), placeRequest(product, 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not for sale")
	})

	t.Run("missing destination rejected", func(t *testing.T) {
		svc, _, _, _, product := newCheckoutFixture(t, &fakeRates{cost: decimal.NewFromInt(800)})
		req := placeRequest(product, 1)
		req.Commune = ""

		_, err := svc.PlaceOrder(context.Background(), uuid.New(), req)
		require.Error(t, err)
	})
}

func TestOrderOwnership(t *testing.T) {
	svc, _, _, _, product := newCheckoutFixture(t, &fakeRates{cost: decimal.NewFromInt(800)})
	customerID := uuid.New()

	resp, err := svc.PlaceOrder(context.Background(), customerID, placeRequest(product, 1))
	require.NoError(t, err)
	orderID := uuid.MustParse(resp.ID)

	got, err := svc.Get(context.Background(), customerID, orderID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New(), orderID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	page, err := svc.List(context.Background(), customerID, ListOrdersRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestChangeOrderStatus(t *testing.T) {
	svc, _, products, pub, product := newCheckoutFixture(t, &fakeRates{cost: decimal.NewFromInt(800)})
	customerID := uuid.New()

	resp, err := svc.PlaceOrder(context.Background(), customerID, placeRequest(product, 4))
	require.NoError(t, err)
	orderID := uuid.MustParse(resp.ID)
	assert.Equal(t, 6, products.stock(product.ID))

	t.Run("confirm", func(t *testing.T) {
		got, err := svc.ChangeStatus(context.Background(), orderID, ChangeOrderStatusRequest{Status: "CONFIRMED"})
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", got.Status)
		assert.Contains(t, pub.types(), order.EventTypeOrderStatusChanged)
	})

	t.Run("invalid transition", func(t *testing.T) {
		_, err := svc.ChangeStatus(context.Background(), orderID, ChangeOrderStatusRequest{Status: "DELIVERED"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("cancel restocks", func(t *testing.T) {
		got, err := svc.ChangeStatus(context.Background(), orderID, ChangeOrderStatusRequest{Status: "CANCELLED"})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", got.Status)
		assert.Equal(t, 10, products.stock(product.ID))
	})
}

func TestAdminList(t *testing.T) {
	svc, _, _, _, product := newCheckoutFixture(t, &fakeRates{cost: decimal.NewFromInt(800)})

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), placeRequest(product, 1))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(context.Background(), uuid.New(), placeRequest(product, 1))
	require.NoError(t, err)

	pending, err := svc.AdminList(context.Background(), AdminListOrdersRequest{Status: "PENDING"})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	shipped, err := svc.AdminList(context.Background(), AdminListOrdersRequest{Status: "SHIPPED"})
	require.NoError(t, err)
	assert.Empty(t, shipped)
}
