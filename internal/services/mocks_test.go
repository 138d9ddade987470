package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/payments"
	"github.com/shopmart/commerce/internal/repositories"
)

type memCartRepository struct {
	snapshot *domain.CartSnapshot
	saveErr  error
	saves    int
}

func (m *memCartRepository) Save(_ context.Context, snapshot domain.CartSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
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
	state   *domain.CheckoutState
	saveErr error
	saves   int
}

func (m *memCheckoutRepository) Save(_ context.Context, state domain.CheckoutState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
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
	orders    []domain.Order
	appendErr error
}

func (m *memOrderRepository) Append(_ context.Context, order domain.Order) error {
	if m.appendErr != nil {
		return m.appendErr
	}
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

type stubProvider struct {
	processFunc func(ctx context.Context, form domain.PaymentForm, amount decimal.Decimal) domain.PaymentResult
	calls       int
}

var _ payments.Provider = (*stubProvider)(nil)

func (s *stubProvider) Process(ctx context.Context, form domain.PaymentForm, amount decimal.Decimal) domain.PaymentResult {
	s.calls++
	if s.processFunc != nil {
		return s.processFunc(ctx, form, amount)
	}
	return domain.PaymentResult{Success: true, TransactionID: "txn_stub", Method: form.Method, Amount: amount}
}

type stubOrderService struct {
	commitFunc func(ctx context.Context, session domain.CheckoutState, payment domain.PaymentResult) (domain.Order, error)
	commits    int
}

var _ OrderService = (*stubOrderService)(nil)

func (s *stubOrderService) CommitOrder(ctx context.Context, session domain.CheckoutState, payment domain.PaymentResult) (domain.Order, error) {
	s.commits++
	if s.commitFunc != nil {
		return s.commitFunc(ctx, session, payment)
	}
	return domain.Order{ID: "ord_stub", Payment: payment}, nil
}

func (s *stubOrderService) GetOrder(context.Context, string) (domain.Order, error) {
	return domain.Order{}, ErrOrderNotFound
}

func (s *stubOrderService) ListOrders(context.Context) ([]domain.Order, error) {
	return nil, nil
}
