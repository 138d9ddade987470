package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/platform/httpx"
	"github.com/shopmart/commerce/internal/services"
)

const maxCheckoutBodySize = 16 * 1024

// CheckoutHandlers exposes the checkout wizard endpoints.
type CheckoutHandlers struct {
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs handlers backed by the checkout service.
func NewCheckoutHandlers(checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/session", h.getSession)
	r.Get("/shipping-options", h.listShippingOptions)
	r.Put("/shipping-address", h.updateShippingAddress)
	r.Put("/billing-address", h.updateBillingAddress)
	r.Put("/same-as-shipping", h.setSameAsShipping)
	r.Put("/shipping-option", h.selectShippingOption)
	r.Put("/payment", h.updatePayment)
	r.Put("/notes", h.setOrderNotes)
	r.Post("/next", h.next)
	r.Post("/prev", h.prev)
	r.Post("/step/{step}", h.jumpTo)
	r.Post("/reset", h.reset)
	r.Post("/submit", h.submit)
}

type sessionResponse struct {
	Session domain.CheckoutState `json:"session"`
}

type submitResponse struct {
	Status  domain.CheckoutStatus `json:"status"`
	Payment domain.PaymentResult  `json:"payment"`
	Order   *domain.Order         `json:"order,omitempty"`
}

func (h *CheckoutHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: h.checkout.State(r.Context())})
}

func (h *CheckoutHandlers) listShippingOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{"shippingOptions": h.checkout.ShippingOptions()})
}

func (h *CheckoutHandlers) updateShippingAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var patch domain.Address
	if err := decodeJSONBody(r, maxCheckoutBodySize, &patch); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: h.checkout.UpdateShippingAddress(ctx, patch)})
}

func (h *CheckoutHandlers) updateBillingAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var patch domain.Address
	if err := decodeJSONBody(r, maxCheckoutBodySize, &patch); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: h.checkout.UpdateBillingAddress(ctx, patch)})
}

func (h *CheckoutHandlers) setSameAsShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		SameAsShipping bool `json:"sameAsShipping"`
	}
	if err := decodeJSONBody(r, maxCheckoutBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: h.checkout.SetSameAsShipping(ctx, req.SameAsShipping)})
}

func (h *CheckoutHandlers) selectShippingOption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		OptionID string `json:"optionId"`
	}
	if err := decodeJSONBody(r, maxCheckoutBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	state, err := h.checkout.SelectShippingOption(ctx, req.OptionID)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: state})
}

func (h *CheckoutHandlers) updatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var patch domain.PaymentForm
	if err := decodeJSONBody(r, maxCheckoutBodySize, &patch); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: h.checkout.UpdatePayment(ctx, patch)})
}

func (h *CheckoutHandlers) setOrderNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSONBody(r, maxCheckoutBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: h.checkout.SetOrderNotes(ctx, req.Notes)})
}

func (h *CheckoutHandlers) next(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.checkout.Next(ctx)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: state})
}

func (h *CheckoutHandlers) prev(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: h.checkout.Prev(r.Context())})
}

func (h *CheckoutHandlers) jumpTo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	step, err := parseStep(chi.URLParam(r, "step"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "step must be an integer between 1 and 4", http.StatusBadRequest))
		return
	}
	state, err := h.checkout.JumpTo(ctx, step)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: state})
}

func (h *CheckoutHandlers) reset(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: h.checkout.Reset(r.Context())})
}

func (h *CheckoutHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.checkout.Submit(ctx)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}

	resp := submitResponse{Payment: result.Payment}
	if result.Order != nil {
		resp.Status = domain.CheckoutStatusSucceeded
		resp.Order = result.Order
		writeJSONResponse(w, http.StatusOK, resp)
		return
	}
	resp.Status = domain.CheckoutStatusFailed
	// A declined payment is a resolved attempt, not a transport failure.
	writeJSONResponse(w, http.StatusPaymentRequired, resp)
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrPaymentInFlight):
		httpx.WriteError(ctx, w, httpx.NewError("payment_in_flight", "a payment attempt is already processing", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutIncomplete):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_incomplete", "complete the checkout steps before submitting", http.StatusConflict))
	case errors.Is(err, services.ErrValidationFailed):
		httpx.WriteError(ctx, w, httpx.NewError("validation_failed", "payment details are invalid", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"fields": h.checkout.State(ctx).Errors}))
	case errors.Is(err, services.ErrUnknownShippingOption):
		httpx.WriteError(ctx, w, httpx.NewError("unknown_shipping_option", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrForwardJump):
		httpx.WriteError(ctx, w, httpx.NewError("step_not_reached", "cannot jump to a step that has not been completed", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "checkout operation failed", http.StatusInternalServerError))
	}
}

func parseStep(raw string) (domain.CheckoutStep, error) {
	switch raw {
	case "1":
		return domain.StepShipping, nil
	case "2":
		return domain.StepBilling, nil
	case "3":
		return domain.StepDelivery, nil
	case "4":
		return domain.StepPayment, nil
	}
	return 0, errors.New("invalid step")
}
