package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmart/commerce/internal/services"
)

// CouponHandlers lists the redeemable coupon codes.
type CouponHandlers struct {
	coupons services.CouponCatalog
}

// NewCouponHandlers constructs handlers backed by the coupon catalog.
func NewCouponHandlers(coupons services.CouponCatalog) *CouponHandlers {
	return &CouponHandlers{coupons: coupons}
}

// Routes wires the /coupons endpoints onto the provided router.
func (h *CouponHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listCoupons)
}

func (h *CouponHandlers) listCoupons(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{"coupons": h.coupons.ListAll()})
}
