package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shopmart/commerce/internal/catalog"
	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/platform/httpx"
	"github.com/shopmart/commerce/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the cart endpoints.
type CartHandlers struct {
	carts    services.CartService
	products services.CatalogProvider
}

// NewCartHandlers constructs handlers backed by the cart service and catalog.
func NewCartHandlers(carts services.CartService, products services.CatalogProvider) *CartHandlers {
	return &CartHandlers{
		carts:    carts,
		products: products,
	}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{productId}", h.updateItem)
	r.Delete("/items/{productId}", h.removeItem)
	r.Post("/coupon", h.applyCoupon)
	r.Delete("/coupon", h.removeCoupon)
}

type cartPayload struct {
	Items      []domain.CartLine `json:"items"`
	ItemsCount int               `json:"itemsCount"`
	Coupon     *domain.Coupon    `json:"coupon,omitempty"`
	Totals     domain.Totals     `json:"totals"`
}

type cartResponse struct {
	Cart cartPayload `json:"cart"`
}

func (h *CartHandlers) buildResponse(ctx context.Context, snapshot domain.CartSnapshot) cartResponse {
	items := snapshot.Lines
	if items == nil {
		items = []domain.CartLine{}
	}
	return cartResponse{Cart: cartPayload{
		Items:      items,
		ItemsCount: h.carts.ItemCount(ctx),
		Coupon:     snapshot.Coupon,
		Totals:     h.carts.Totals(ctx),
	}}
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, h.carts.Snapshot(ctx)))
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.carts.Clear(ctx); err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, h.carts.Snapshot(ctx)))
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId is required", http.StatusBadRequest))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	snapshot, err := h.carts.AddItem(ctx, item, req.Quantity)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "productId")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	snapshot, err := h.carts.UpdateQuantity(ctx, productID, req.Quantity)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot, err := h.carts.RemoveItem(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) applyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	snapshot, err := h.carts.ApplyCoupon(ctx, req.Code)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) removeCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot, err := h.carts.RemoveCoupon(ctx)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCouponNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_not_found", "coupon code is not recognised", http.StatusNotFound))
	case errors.Is(err, catalog.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "cart operation failed", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}
