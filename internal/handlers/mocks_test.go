package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopmart/commerce/internal/catalog"
	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/payments"
	"github.com/shopmart/commerce/internal/repositories"
	"github.com/shopmart/commerce/internal/services"
)

type memCartRepository struct {
	snapshot *domain.CartSnapshot
}

func (m *memCartRepository) Save(_ context.Context, snapshot domain.CartSnapshot) error {
	copied := snapshot
	m.snapshot = &copied
	return nil
}

func (m *memCartRepository) Load(context.Context) (domain.CartSnapshot, error) {
	if m.snapshot == nil {
		return domain.CartSnapshot{}, repositories.NewStorageError("cart_repository.load", repositories.StorageErrorNotFound, "no saved cart", nil)
	}
	return *m.snapshot, nil
}

func (m *memCartRepository) Clear(context.Context) error {
	m.snapshot = nil
	return nil
}

type memCheckoutRepository struct {
	state *domain.CheckoutState
}

func (m *memCheckoutRepository) Save(_ context.Context, state domain.CheckoutState) error {
	copied := state
	m.state = &copied
	return nil
}

func (m *memCheckoutRepository) Load(context.Context) (domain.CheckoutState, error) {
	if m.state == nil {
		return domain.CheckoutState{}, repositories.NewStorageError("checkout_repository.load", repositories.StorageErrorNotFound, "no saved checkout session", nil)
	}
	return *m.state, nil
}

func (m *memCheckoutRepository) Clear(context.Context) error {
	m.state = nil
	return nil
}

type memOrderRepository struct {
	orders []domain.Order
}

func (m *memOrderRepository) Append(_ context.Context, order domain.Order) error {
	m.orders = append(m.orders, order)
	return nil
}

func (m *memOrderRepository) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	for _, order := range m.orders {
		if order.ID == orderID {
			return order, nil
		}
	}
	return domain.Order{}, repositories.NewStorageError("order_repository.find", repositories.StorageErrorNotFound, "order not found", nil)
}

func (m *memOrderRepository) List(context.Context) ([]domain.Order, error) {
	out := make([]domain.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

// apiFixture wires the full service stack behind the router so tests exercise
// the HTTP surface end to end.
type apiFixture struct {
	router   chi.Router
	cart     services.CartService
	checkout services.CheckoutService
	orders   services.OrderService
	products services.CatalogProvider
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	products := catalog.NewStaticCatalog()
	coupons := services.NewCouponCatalog()

	cart, err := services.NewCartService(ctx, services.CartServiceDeps{
		Repository: &memCartRepository{},
		Coupons:    coupons,
	})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}

	sequence := 0
	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders: &memOrderRepository{},
		Cart:   cart,
		IDGenerator: func() string {
			sequence++
			return "ord_test_" + string(rune('0'+sequence))
		},
	})
	if err != nil {
		t.Fatalf("unexpected error constructing order service: %v", err)
	}

	simulator := payments.NewSimulator(payments.SimulatorDeps{
		Latency: 0,
		Rand:    func() float64 { return 0 },
	})

	checkout, err := services.NewCheckoutService(ctx, services.CheckoutServiceDeps{
		Repository: &memCheckoutRepository{},
		Cart:       cart,
		Provider:   simulator,
		Orders:     orders,
		SessionTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}

	cartHandlers := NewCartHandlers(cart, products)
	checkoutHandlers := NewCheckoutHandlers(checkout)
	orderHandlers := NewOrderHandlers(orders)
	productHandlers := NewProductHandlers(products)
	couponHandlers := NewCouponHandlers(coupons)

	router := NewRouter(
		WithProductRoutes(productHandlers.Routes),
		WithCouponRoutes(couponHandlers.Routes),
		WithCartRoutes(cartHandlers.Routes),
		WithCheckoutRoutes(checkoutHandlers.Routes),
		WithOrderRoutes(orderHandlers.Routes),
	)

	return &apiFixture{
		router:   router,
		cart:     cart,
		checkout: checkout,
		orders:   orders,
		products: products,
	}
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(context.Context) error { return s.err }

var _ repositories.HealthRepository = (*stubPinger)(nil)
