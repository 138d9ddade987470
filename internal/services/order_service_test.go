package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
)

type orderFixture struct {
	orders OrderService
	cart   CartService
	repo   *memOrderRepository
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	ctx := context.Background()

	cart, err := NewCartService(ctx, CartServiceDeps{
		Repository: &memCartRepository{},
		Coupons:    NewCouponCatalog(),
	})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}

	repo := &memOrderRepository{}
	sequence := 0
	orders, err := NewOrderService(OrderServiceDeps{
		Orders: repo,
		Cart:   cart,
		Clock:  func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
		IDGenerator: func() string {
			sequence++
			return "ord_test_" + string(rune('0'+sequence))
		},
	})
	if err != nil {
		t.Fatalf("unexpected error constructing order service: %v", err)
	}
	return &orderFixture{orders: orders, cart: cart, repo: repo}
}

func paidSession() domain.CheckoutState {
	option := domain.ShippingOption{ID: "express", Label: "Express Shipping", Cost: decimal.NewFromInt(15)}
	return domain.CheckoutState{
		CurrentStep:     domain.StepPayment,
		Status:          domain.CheckoutStatusEditing,
		ShippingAddress: validShippingAddress(),
		BillingAddress:  validShippingAddress(),
		SameAsShipping:  true,
		ShippingOption:  &option,
		OrderNotes:      "ring the bell",
	}
}

func successfulPayment() domain.PaymentResult {
	return domain.PaymentResult{
		Success:       true,
		TransactionID: "txn_abc123",
		Method:        domain.PaymentMethodCard,
		Amount:        dec("49.99"),
		CardLast4:     "1111",
		CardBrand:     "visa",
	}
}

func TestCommitOrderRejectsFailedPayment(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.orders.CommitOrder(context.Background(), paidSession(), domain.PaymentResult{Success: false})
	if !errors.Is(err, ErrInvalidCommit) {
		t.Fatalf("expected ErrInvalidCommit, got %v", err)
	}
	if len(f.repo.orders) != 0 {
		t.Fatalf("rejected commit must not append to the log")
	}
}

func TestCommitOrderRequiresShippingOption(t *testing.T) {
	f := newOrderFixture(t)
	session := paidSession()
	session.ShippingOption = nil

	_, err := f.orders.CommitOrder(context.Background(), session, successfulPayment())
	if !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("expected ErrOrderInvalidInput, got %v", err)
	}
}

func TestCommitOrderRequiresNonEmptyCart(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.orders.CommitOrder(context.Background(), paidSession(), successfulPayment())
	if !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("expected ErrOrderInvalidInput for an empty cart, got %v", err)
	}
}

func TestCommitOrderSnapshotsCartAndClearsIt(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, _ = f.cart.AddItem(ctx, product("a", "A", "10"), 2)
	_, _ = f.cart.AddItem(ctx, product("b", "B", "20"), 1)
	_, _ = f.cart.ApplyCoupon(ctx, "WELCOME10")

	order, err := f.orders.CommitOrder(ctx, paidSession(), successfulPayment())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.ID != "ord_test_1" {
		t.Fatalf("expected generated id, got %q", order.ID)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if order.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected confirmed status, got %q", order.Status)
	}
	if order.ShippingOption.ID != "express" {
		t.Fatalf("expected shipping option snapshot, got %q", order.ShippingOption.ID)
	}
	if order.OrderNotes != "ring the bell" {
		t.Fatalf("expected notes carried to the order, got %q", order.OrderNotes)
	}

	// Subtotal $40, 10% discount, flat $9.99 shipping, 8% tax on the subtotal.
	if !order.Totals.Subtotal.Equal(dec("40")) {
		t.Fatalf("expected subtotal 40, got %s", order.Totals.Subtotal)
	}
	if !order.Totals.Discount.Equal(dec("4")) {
		t.Fatalf("expected discount 4, got %s", order.Totals.Discount)
	}
	if !order.Totals.Tax.Equal(dec("3.20")) {
		t.Fatalf("expected tax 3.20, got %s", order.Totals.Tax)
	}
	if !order.Totals.GrandTotal.Equal(dec("45.99")) {
		t.Fatalf("expected grand total 45.99, got %s", order.Totals.GrandTotal)
	}

	if len(f.cart.Snapshot(ctx).Lines) != 0 {
		t.Fatalf("expected cart cleared after commit")
	}
	if len(f.repo.orders) != 1 {
		t.Fatalf("expected one appended order, got %d", len(f.repo.orders))
	}
}

func TestCommitOrderAppendFailureSurfaces(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, _ = f.cart.AddItem(ctx, product("a", "A", "10"), 1)
	f.repo.appendErr = errors.New("disk full")

	_, err := f.orders.CommitOrder(ctx, paidSession(), successfulPayment())
	if err == nil {
		t.Fatalf("expected append failure to surface")
	}
	if len(f.cart.Snapshot(ctx).Lines) == 0 {
		t.Fatalf("cart must survive a failed commit")
	}
}

func TestGetOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, _ = f.cart.AddItem(ctx, product("a", "A", "10"), 1)
	committed, err := f.orders.CommitOrder(ctx, paidSession(), successfulPayment())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err := f.orders.GetOrder(ctx, committed.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != committed.ID {
		t.Fatalf("expected order %q, got %q", committed.ID, order.ID)
	}

	if _, err := f.orders.GetOrder(ctx, "ord_missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.orders.GetOrder(ctx, "  "); !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("expected ErrOrderInvalidInput for a blank id, got %v", err)
	}
}

func TestListOrdersPreservesAppendOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = f.cart.AddItem(ctx, product("a", "A", "10"), 1)
		if _, err := f.orders.CommitOrder(ctx, paidSession(), successfulPayment()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	orders, err := f.orders.ListOrders(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	for i, order := range orders {
		expected := "ord_test_" + string(rune('1'+i))
		if order.ID != expected {
			t.Fatalf("expected %q at position %d, got %q", expected, i, order.ID)
		}
	}
}
