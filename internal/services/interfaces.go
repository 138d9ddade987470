package services

import (
	"context"

	"github.com/shopmart/commerce/internal/domain"
)

// CartService is the pricing ledger: it owns the cart lines and the applied
// coupon and derives totals from them.
type CartService interface {
	AddItem(ctx context.Context, product domain.Product, quantity int) (domain.CartSnapshot, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error)
	RemoveItem(ctx context.Context, productID string) (domain.CartSnapshot, error)
	Clear(ctx context.Context) error
	ApplyCoupon(ctx context.Context, code string) (domain.CartSnapshot, error)
	RemoveCoupon(ctx context.Context) (domain.CartSnapshot, error)
	Snapshot(ctx context.Context) domain.CartSnapshot
	Totals(ctx context.Context) domain.Totals
	ItemCount(ctx context.Context) int
}

// CouponCatalog resolves redeemable coupon codes.
type CouponCatalog interface {
	Lookup(code string) (domain.Coupon, error)
	ListAll() []domain.Coupon
}

// CheckoutService drives the four-step checkout wizard and the payment
// submission that concludes it.
type CheckoutService interface {
	State(ctx context.Context) domain.CheckoutState
	UpdateShippingAddress(ctx context.Context, patch domain.Address) domain.CheckoutState
	UpdateBillingAddress(ctx context.Context, patch domain.Address) domain.CheckoutState
	SetSameAsShipping(ctx context.Context, same bool) domain.CheckoutState
	SelectShippingOption(ctx context.Context, optionID string) (domain.CheckoutState, error)
	UpdatePayment(ctx context.Context, patch domain.PaymentForm) domain.CheckoutState
	SetOrderNotes(ctx context.Context, notes string) domain.CheckoutState
	Next(ctx context.Context) (domain.CheckoutState, error)
	Prev(ctx context.Context) domain.CheckoutState
	JumpTo(ctx context.Context, step domain.CheckoutStep) (domain.CheckoutState, error)
	Reset(ctx context.Context) domain.CheckoutState
	Submit(ctx context.Context) (SubmitResult, error)
	ShippingOptions() []domain.ShippingOption
}

// SubmitResult reports the outcome of a payment submission. Order is set only
// when the payment succeeded and the order was committed.
type SubmitResult struct {
	Payment domain.PaymentResult
	Order   *domain.Order
}

// OrderService commits paid checkouts into the order log and reads it back.
type OrderService interface {
	CommitOrder(ctx context.Context, session domain.CheckoutState, payment domain.PaymentResult) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// CatalogProvider supplies product data to cart mutations. It is read-only.
type CatalogProvider interface {
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}
