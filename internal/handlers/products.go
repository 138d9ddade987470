package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmart/commerce/internal/catalog"
	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/platform/httpx"
	"github.com/shopmart/commerce/internal/services"
)

// ProductHandlers exposes read access to the product catalog.
type ProductHandlers struct {
	products services.CatalogProvider
}

// NewProductHandlers constructs handlers backed by the catalog provider.
func NewProductHandlers(products services.CatalogProvider) *ProductHandlers {
	return &ProductHandlers{products: products}
}

// Routes wires the /products endpoints onto the provided router.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
	r.Get("/{productId}", h.getProduct)
}

func (h *ProductHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.products.SearchProducts(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.writeProductError(ctx, w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": products})
}

func (h *ProductHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item, err := h.products.GetProductByID(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeProductError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": item})
}

func (h *ProductHandlers) writeProductError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to read catalog", http.StatusInternalServerError))
	}
}
