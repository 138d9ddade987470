package repositories

import (
	"context"

	"github.com/shopmart/commerce/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Carts() CartRepository
	Checkout() CheckoutRepository
	Orders() OrderRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsUnavailable() bool
}

// CartRepository persists the single cart-state snapshot.
type CartRepository interface {
	Save(ctx context.Context, snapshot domain.CartSnapshot) error
	Load(ctx context.Context) (domain.CartSnapshot, error)
	Clear(ctx context.Context) error
}

// CheckoutRepository persists the single checkout-state snapshot.
type CheckoutRepository interface {
	Save(ctx context.Context, state domain.CheckoutState) error
	Load(ctx context.Context) (domain.CheckoutState, error)
	Clear(ctx context.Context) error
}

// OrderRepository stores committed orders in an append-only log.
type OrderRepository interface {
	Append(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}
