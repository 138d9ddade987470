package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/repositories"
)

const orderIDPrefix = "ord_"

// taxRate is the flat tax applied to the subtotal at commit time.
var taxRate = decimal.RequireFromString("0.08")

var (
	// ErrInvalidCommit indicates CommitOrder was called with a failed payment
	// result. This is a caller contract violation, not a user-facing condition.
	ErrInvalidCommit = errors.New("order: invalid commit")
	// ErrOrderInvalidInput signals missing session data at commit time.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")

	errOrderRepositoryRequired = errors.New("order service: repository is required")
	errOrderCartRequired       = errors.New("order service: cart service is required")
)

// OrderServiceDeps bundles collaborators required to construct the committer.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Cart        CartService
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
	IDGenerator func() string
}

type orderService struct {
	repo   repositories.OrderRepository
	cart   CartService
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
	newID  func() string
}

// NewOrderService constructs an OrderService enforcing dependency validation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errOrderRepositoryRequired
	}
	if deps.Cart == nil {
		return nil, errOrderCartRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return orderIDPrefix + ulid.Make().String() }
	}
	return &orderService{
		repo:   deps.Orders,
		cart:   deps.Cart,
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
		newID:  idGen,
	}, nil
}

// CommitOrder snapshots the ledger and session into an immutable order,
// appends it to the order log, and clears the ledger. It must only be invoked
// with a successful payment result.
func (s *orderService) CommitOrder(ctx context.Context, session domain.CheckoutState, payment domain.PaymentResult) (domain.Order, error) {
	if !payment.Success {
		return domain.Order{}, fmt.Errorf("%w: payment did not succeed", ErrInvalidCommit)
	}
	if session.ShippingOption == nil {
		return domain.Order{}, fmt.Errorf("%w: no shipping option selected", ErrOrderInvalidInput)
	}

	snapshot := s.cart.Snapshot(ctx)
	if len(snapshot.Lines) == 0 {
		return domain.Order{}, fmt.Errorf("%w: cart is empty", ErrOrderInvalidInput)
	}
	totals := s.cart.Totals(ctx)
	totals.Tax = totals.Subtotal.Mul(taxRate).Round(2)

	order := domain.Order{
		ID:              s.newID(),
		Items:           snapshot.Lines,
		ShippingAddress: session.ShippingAddress,
		BillingAddress:  session.BillingAddress,
		ShippingOption:  *session.ShippingOption,
		OrderNotes:      session.OrderNotes,
		Payment:         payment,
		Totals:          totals,
		OrderDate:       s.now(),
		Status:          domain.OrderStatusConfirmed,
	}

	if err := s.repo.Append(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("append order: %w", err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.logger(ctx, "order_cart_clear_failed", map[string]any{"orderId": order.ID, "error": err.Error()})
	}

	s.logger(ctx, "order_committed", map[string]any{
		"orderId": order.ID,
		"method":  string(payment.Method),
		"total":   totals.GrandTotal.StringFixed(2),
	})

	return order, nil
}

// GetOrder reads a single order from the log.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.repo.FindByID(ctx, trimmed)
	if err != nil {
		if isNotFound(err) {
			return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, trimmed)
		}
		return domain.Order{}, err
	}
	return order, nil
}

// ListOrders returns the order log in append order.
func (s *orderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}
