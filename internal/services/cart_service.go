package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/repositories"
)

var (
	// ErrInvalidQuantity indicates a caller passed a non-positive quantity where a
	// positive one is required. This is a contract violation, not user input.
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
	// ErrCartInvalidInput indicates the caller supplied invalid input.
	ErrCartInvalidInput = errors.New("cart: invalid input")

	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartCatalogRequired    = errors.New("cart service: coupon catalog is required")
)

var (
	// freeShippingThreshold is the subtotal at which shipping becomes free.
	freeShippingThreshold = decimal.NewFromInt(50)
	// flatShippingFee applies below the free-shipping threshold.
	flatShippingFee = decimal.RequireFromString("9.99")
	oneHundred      = decimal.NewFromInt(100)
)

// CartServiceDeps wires the persistence and coupon dependencies for the ledger.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Coupons    CouponCatalog
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo    repositories.CartRepository
	coupons CouponCatalog
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)

	mu     sync.Mutex
	lines  []domain.CartLine
	coupon *domain.Coupon
}

// NewCartService constructs the ledger and restores any persisted cart snapshot.
func NewCartService(ctx context.Context, deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Coupons == nil {
		return nil, errCartCatalogRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	service := &cartService{
		repo:    deps.Repository,
		coupons: deps.Coupons,
		now:     func() time.Time { return clock().UTC() },
		logger:  logger,
	}

	snapshot, err := deps.Repository.Load(ctx)
	switch {
	case err == nil:
		service.lines = snapshot.Lines
		service.coupon = snapshot.Coupon
	case isNotFound(err):
		// fresh cart
	default:
		logger(ctx, "cart_restore_failed", map[string]any{"error": err.Error()})
	}

	return service, nil
}

// AddItem merges the product into the cart, incrementing quantity on repeat adds.
func (s *cartService) AddItem(ctx context.Context, product domain.Product, quantity int) (domain.CartSnapshot, error) {
	if quantity <= 0 {
		return s.Snapshot(ctx), fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if strings.TrimSpace(product.ID) == "" {
		return s.Snapshot(ctx), fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if product.UnitPrice.IsNegative() {
		return s.Snapshot(ctx), fmt.Errorf("%w: negative unit price for %s", ErrCartInvalidInput, product.ID)
	}

	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].ProductID == product.ID {
			s.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.UnitPrice,
			Quantity:  quantity,
			Image:     product.Image,
			Brand:     product.Brand,
		})
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// UpdateQuantity sets the line quantity; zero or below removes the line.
// Updating an absent line is a no-op.
func (s *cartService) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	s.mu.Lock()
	if quantity <= 0 {
		s.removeLineLocked(productID)
	} else {
		for i := range s.lines {
			if s.lines[i].ProductID == productID {
				s.lines[i].Quantity = quantity
				break
			}
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// RemoveItem removes the line for the product. Removing an absent line is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	s.mu.Lock()
	s.removeLineLocked(productID)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// Clear empties the cart and removes any applied coupon.
func (s *cartService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.lines = nil
	s.coupon = nil
	s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.logger(ctx, "cart_persist_failed", map[string]any{"op": "clear", "error": err.Error()})
	}
	return nil
}

// ApplyCoupon resolves the code in the catalog and replaces any applied coupon.
// Eligibility (minimum subtotal) is NOT checked here: an applied fixed-amount
// coupon contributes zero discount until the subtotal meets its minimum. This
// lazy evaluation is intentional and mirrors the pricing contract.
func (s *cartService) ApplyCoupon(ctx context.Context, code string) (domain.CartSnapshot, error) {
	coupon, err := s.coupons.Lookup(code)
	if err != nil {
		return s.Snapshot(ctx), err
	}

	s.mu.Lock()
	s.coupon = &coupon
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// RemoveCoupon clears the applied coupon unconditionally.
func (s *cartService) RemoveCoupon(ctx context.Context) (domain.CartSnapshot, error) {
	s.mu.Lock()
	s.coupon = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// Snapshot returns a copy of the current cart state. Callers may mutate the
// result freely.
func (s *cartService) Snapshot(context.Context) domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ItemCount returns the total quantity across all lines.
func (s *cartService) ItemCount(context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Totals derives the pricing breakdown from the current cart state. It has no
// side effects and is recomputed on every call; nothing is cached.
func (s *cartService) Totals(context.Context) domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeTotals(s.lines, s.coupon)
}

func computeTotals(lines []domain.CartLine, coupon *domain.Coupon) domain.Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	shipping := flatShippingFee
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	if coupon != nil && coupon.Kind == domain.CouponFreeShipping {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if coupon != nil {
		switch coupon.Kind {
		case domain.CouponPercentage:
			discount = subtotal.Mul(coupon.Value).Div(oneHundred)
		case domain.CouponFixedAmount:
			if coupon.MinimumSubtotal == nil || subtotal.GreaterThanOrEqual(*coupon.MinimumSubtotal) {
				discount = coupon.Value
			}
		}
	}

	grand := subtotal.Sub(discount).Add(shipping)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return domain.Totals{
		Subtotal:   subtotal,
		Discount:   discount,
		Shipping:   shipping,
		Tax:        decimal.Zero,
		GrandTotal: grand,
	}
}

func (s *cartService) removeLineLocked(productID string) {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

func (s *cartService) snapshotLocked() domain.CartSnapshot {
	snapshot := domain.CartSnapshot{}
	if len(s.lines) > 0 {
		snapshot.Lines = make([]domain.CartLine, len(s.lines))
		copy(snapshot.Lines, s.lines)
	}
	if s.coupon != nil {
		coupon := *s.coupon
		snapshot.Coupon = &coupon
	}
	return snapshot
}

// persist writes the snapshot as a fire-and-forget side effect; a failed write
// is superseded by the next one.
func (s *cartService) persist(ctx context.Context, snapshot domain.CartSnapshot) {
	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.logger(ctx, "cart_persist_failed", map[string]any{"error": err.Error()})
	}
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
