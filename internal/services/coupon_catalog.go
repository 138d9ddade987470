package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
)

// ErrCouponNotFound indicates the supplied code is not a recognised coupon.
var ErrCouponNotFound = errors.New("coupon catalog: not found")

// staticCouponCatalog serves the fixed set of redeemable codes. The codes and
// their mechanics are a published contract, not sample data.
type staticCouponCatalog struct {
	coupons map[string]domain.Coupon
	order   []string
}

var _ CouponCatalog = (*staticCouponCatalog)(nil)

// NewCouponCatalog constructs the static coupon catalog.
func NewCouponCatalog() CouponCatalog {
	save20Minimum := decimal.NewFromInt(100)
	coupons := []domain.Coupon{
		{
			Code:        "WELCOME10",
			Kind:        domain.CouponPercentage,
			Value:       decimal.NewFromInt(10),
			Description: "10% off your first order",
		},
		{
			Code:            "SAVE20",
			Kind:            domain.CouponFixedAmount,
			Value:           decimal.NewFromInt(20),
			MinimumSubtotal: &save20Minimum,
			Description:     "$20 off orders over $100",
		},
		{
			Code:        "FREESHIP",
			Kind:        domain.CouponFreeShipping,
			Value:       decimal.Zero,
			Description: "Free shipping on any order",
		},
	}

	catalog := &staticCouponCatalog{coupons: make(map[string]domain.Coupon, len(coupons))}
	for _, coupon := range coupons {
		catalog.coupons[coupon.Code] = coupon
		catalog.order = append(catalog.order, coupon.Code)
	}
	return catalog
}

// Lookup resolves a coupon by code, case-insensitively.
func (c *staticCouponCatalog) Lookup(code string) (domain.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return domain.Coupon{}, ErrCouponNotFound
	}
	coupon, ok := c.coupons[normalized]
	if !ok {
		return domain.Coupon{}, ErrCouponNotFound
	}
	return coupon, nil
}

// ListAll returns every redeemable coupon in declaration order for display.
func (c *staticCouponCatalog) ListAll() []domain.Coupon {
	out := make([]domain.Coupon, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.coupons[code])
	}
	return out
}
