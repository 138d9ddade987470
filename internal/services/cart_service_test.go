package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func product(id, name, price string) domain.Product {
	return domain.Product{ID: id, Name: name, UnitPrice: dec(price), InStock: true}
}

func newTestCart(t *testing.T) (CartService, *memCartRepository) {
	t.Helper()
	repo := &memCartRepository{}
	cart, err := NewCartService(context.Background(), CartServiceDeps{
		Repository: repo,
		Coupons:    NewCouponCatalog(),
	})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}
	return cart, repo
}

func TestAddItemMergesQuantityOnRepeatAdd(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	if _, err := cart.AddItem(ctx, product("a", "Widget", "10"), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapshot, err := cart.AddItem(ctx, product("a", "Widget", "10"), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snapshot.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(snapshot.Lines))
	}
	if snapshot.Lines[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", snapshot.Lines[0].Quantity)
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	cart, repo := newTestCart(t)
	ctx := context.Background()

	_, err := cart.AddItem(ctx, product("a", "Widget", "10"), 0)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if len(cart.Snapshot(ctx).Lines) != 0 {
		t.Fatalf("failed add must not mutate the cart")
	}
	if repo.saves != 0 {
		t.Fatalf("failed add must not persist")
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "Widget", "10"), 2)
	snapshot, err := cart.UpdateQuantity(ctx, "a", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Lines) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(snapshot.Lines))
	}
}

func TestRemoveAfterZeroQuantityIsNoOp(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "Widget", "10"), 1)
	_, _ = cart.UpdateQuantity(ctx, "a", 0)
	before := cart.Snapshot(ctx)

	snapshot, err := cart.RemoveItem(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Lines) != len(before.Lines) {
		t.Fatalf("second removal must be a no-op")
	}
}

func TestUpdateQuantityAbsentLineIsNoOp(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "Widget", "10"), 1)
	snapshot, err := cart.UpdateQuantity(ctx, "missing", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Lines) != 1 || snapshot.Lines[0].Quantity != 1 {
		t.Fatalf("updating an absent line must not change the cart")
	}
}

func TestSubtotalMatchesLineTotals(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "Widget", "10.50"), 3)
	_, _ = cart.AddItem(ctx, product("b", "Gadget", "7.25"), 2)
	_, _ = cart.UpdateQuantity(ctx, "a", 1)
	_, _ = cart.AddItem(ctx, product("c", "Gizmo", "99.99"), 1)
	_, _ = cart.RemoveItem(ctx, "b")

	expected := decimal.Zero
	for _, line := range cart.Snapshot(ctx).Lines {
		expected = expected.Add(line.LineTotal())
	}
	subtotal := cart.Totals(ctx).Subtotal
	if !subtotal.Equal(expected) {
		t.Fatalf("subtotal %s does not match line totals %s", subtotal, expected)
	}
}

func TestTotalsWithoutCoupon(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	// Cart = {A: $10x2, B: $20x1} -> subtotal $40, shipping $9.99.
	_, _ = cart.AddItem(ctx, product("a", "A", "10"), 2)
	_, _ = cart.AddItem(ctx, product("b", "B", "20"), 1)

	totals := cart.Totals(ctx)
	if !totals.Subtotal.Equal(dec("40")) {
		t.Fatalf("expected subtotal 40, got %s", totals.Subtotal)
	}
	if !totals.Shipping.Equal(dec("9.99")) {
		t.Fatalf("expected shipping 9.99, got %s", totals.Shipping)
	}
	if !totals.GrandTotal.Equal(dec("49.99")) {
		t.Fatalf("expected grand total 49.99, got %s", totals.GrandTotal)
	}
}

func TestPercentageCouponDiscountsSubtotal(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "A", "10"), 2)
	_, _ = cart.AddItem(ctx, product("b", "B", "20"), 1)
	if _, err := cart.ApplyCoupon(ctx, "welcome10"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	totals := cart.Totals(ctx)
	if !totals.Discount.Equal(dec("4")) {
		t.Fatalf("expected discount 4, got %s", totals.Discount)
	}
	if !totals.GrandTotal.Equal(dec("45.99")) {
		t.Fatalf("expected grand total 45.99, got %s", totals.GrandTotal)
	}
}

func TestFixedCouponBelowMinimumContributesNothing(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	// Subtotal $60: SAVE20 applies but its $100 minimum is not met, and
	// shipping is free past the $50 threshold.
	_, _ = cart.AddItem(ctx, product("a", "A", "10"), 2)
	_, _ = cart.AddItem(ctx, product("b", "B", "20"), 1)
	_, _ = cart.AddItem(ctx, product("c", "C", "20"), 1)
	snapshot, err := cart.ApplyCoupon(ctx, "SAVE20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Coupon == nil || snapshot.Coupon.Code != "SAVE20" {
		t.Fatalf("coupon must be applied even while ineligible")
	}

	totals := cart.Totals(ctx)
	if !totals.Discount.Equal(decimal.Zero) {
		t.Fatalf("expected zero discount below minimum, got %s", totals.Discount)
	}
	if !totals.Shipping.Equal(decimal.Zero) {
		t.Fatalf("expected free shipping at subtotal 60, got %s", totals.Shipping)
	}
	if !totals.GrandTotal.Equal(dec("60")) {
		t.Fatalf("expected grand total 60, got %s", totals.GrandTotal)
	}
}

func TestFixedCouponActivatesOnceMinimumMet(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "A", "60"), 1)
	_, _ = cart.ApplyCoupon(ctx, "SAVE20")
	if !cart.Totals(ctx).Discount.Equal(decimal.Zero) {
		t.Fatalf("expected zero discount at subtotal 60")
	}

	_, _ = cart.AddItem(ctx, product("b", "B", "40"), 1)
	totals := cart.Totals(ctx)
	if !totals.Discount.Equal(dec("20")) {
		t.Fatalf("expected discount 20 at subtotal 100, got %s", totals.Discount)
	}
}

func TestFreeShippingCouponWaivesShippingOnly(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "A", "10"), 2)
	_, _ = cart.ApplyCoupon(ctx, "FREESHIP")

	totals := cart.Totals(ctx)
	if !totals.Shipping.Equal(decimal.Zero) {
		t.Fatalf("expected shipping waived, got %s", totals.Shipping)
	}
	if !totals.Discount.Equal(decimal.Zero) {
		t.Fatalf("free shipping coupon must not discount the subtotal")
	}
	if !totals.GrandTotal.Equal(totals.Subtotal) {
		t.Fatalf("expected grand total to equal subtotal")
	}
}

func TestFreeShippingThresholdBoundary(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "A", "49.99"), 1)
	if !cart.Totals(ctx).Shipping.Equal(dec("9.99")) {
		t.Fatalf("expected flat fee below threshold")
	}

	_, _ = cart.UpdateQuantity(ctx, "a", 2)
	if !cart.Totals(ctx).Shipping.Equal(decimal.Zero) {
		t.Fatalf("expected free shipping at or above threshold")
	}
}

func TestApplyUnknownCouponLeavesStateUntouched(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "A", "10"), 1)
	_, _ = cart.ApplyCoupon(ctx, "WELCOME10")

	snapshot, err := cart.ApplyCoupon(ctx, "BOGUS")
	if !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
	if snapshot.Coupon == nil || snapshot.Coupon.Code != "WELCOME10" {
		t.Fatalf("rejected coupon must leave the applied coupon untouched")
	}
}

func TestApplyCouponReplacesExisting(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.ApplyCoupon(ctx, "WELCOME10")
	snapshot, err := cart.ApplyCoupon(ctx, "FREESHIP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Coupon == nil || snapshot.Coupon.Code != "FREESHIP" {
		t.Fatalf("expected FREESHIP to replace WELCOME10")
	}
}

func TestClearEmptiesLinesAndCoupon(t *testing.T) {
	cart, repo := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "A", "10"), 1)
	_, _ = cart.ApplyCoupon(ctx, "WELCOME10")
	if err := cart.Clear(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot := cart.Snapshot(ctx)
	if len(snapshot.Lines) != 0 || snapshot.Coupon != nil {
		t.Fatalf("expected empty cart after clear")
	}
	if repo.snapshot != nil {
		t.Fatalf("expected persisted cart removed after clear")
	}
}

func TestCartRestoresPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := &memCartRepository{snapshot: &domain.CartSnapshot{
		Lines:  []domain.CartLine{{ProductID: "a", Name: "A", UnitPrice: dec("12.50"), Quantity: 2}},
		Coupon: &domain.Coupon{Code: "FREESHIP", Kind: domain.CouponFreeShipping, Value: decimal.Zero},
	}}

	cart, err := NewCartService(ctx, CartServiceDeps{Repository: repo, Coupons: NewCouponCatalog()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot := cart.Snapshot(ctx)
	if len(snapshot.Lines) != 1 || snapshot.Lines[0].ProductID != "a" {
		t.Fatalf("expected restored cart line")
	}
	if snapshot.Coupon == nil || snapshot.Coupon.Code != "FREESHIP" {
		t.Fatalf("expected restored coupon")
	}
	if cart.ItemCount(ctx) != 2 {
		t.Fatalf("expected item count 2, got %d", cart.ItemCount(ctx))
	}
}

func TestMutationsPersistSnapshots(t *testing.T) {
	cart, repo := newTestCart(t)
	ctx := context.Background()

	_, _ = cart.AddItem(ctx, product("a", "A", "10"), 1)
	_, _ = cart.UpdateQuantity(ctx, "a", 3)
	_, _ = cart.ApplyCoupon(ctx, "WELCOME10")
	_, _ = cart.RemoveCoupon(ctx)
	_, _ = cart.RemoveItem(ctx, "a")

	if repo.saves != 5 {
		t.Fatalf("expected 5 persisted snapshots, got %d", repo.saves)
	}
}
