package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopmart/commerce/internal/catalog"
	"github.com/shopmart/commerce/internal/payments"
	"github.com/shopmart/commerce/internal/platform/config"
	"github.com/shopmart/commerce/internal/repositories"
	"github.com/shopmart/commerce/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Catalog  services.CatalogProvider
	Coupons  services.CouponCatalog
	Cart     services.CartService
	Checkout services.CheckoutService
	Orders   services.OrderService
	Provider payments.Provider
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides the SQLite-backed
// registry, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, logSink func(context.Context, string, map[string]any)) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(ctx, reg, cfg, logSink)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases resources such as the storage handle.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(ctx context.Context, reg repositories.Registry, cfg config.Config, logSink func(context.Context, string, map[string]any)) (Services, error) {
	var svc Services

	svc.Catalog = catalog.NewStaticCatalog()
	svc.Coupons = services.NewCouponCatalog()

	cart, err := services.NewCartService(ctx, services.CartServiceDeps{
		Repository: reg.Carts(),
		Coupons:    svc.Coupons,
		Clock:      time.Now,
		Logger:     logSink,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Cart = cart

	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders: reg.Orders(),
		Cart:   cart,
		Clock:  time.Now,
		Logger: logSink,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order service: %w", err)
	}
	svc.Orders = orders

	svc.Provider = payments.NewSimulator(payments.SimulatorDeps{
		Clock:       time.Now,
		Latency:     cfg.Payments.Latency,
		SuccessRate: cfg.Payments.SuccessRate,
	})

	checkout, err := services.NewCheckoutService(ctx, services.CheckoutServiceDeps{
		Repository: reg.Checkout(),
		Cart:       cart,
		Provider:   svc.Provider,
		Orders:     orders,
		Clock:      time.Now,
		Logger:     logSink,
		SessionTTL: cfg.Checkout.SessionTTL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkout

	return svc, nil
}
