package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/payments"
	"github.com/shopmart/commerce/internal/repositories"
)

const (
	// defaultSessionTTL is the window within which a persisted session is restored.
	defaultSessionTTL = time.Hour

	defaultCountry = "United States"
)

var (
	// ErrPaymentInFlight indicates a submission arrived while a payment attempt
	// was already processing. Submissions are single-flight, never queued.
	ErrPaymentInFlight = errors.New("checkout: payment already in flight")
	// ErrCheckoutIncomplete indicates submission was attempted before the payment step.
	ErrCheckoutIncomplete = errors.New("checkout: payment step not reached")
	// ErrValidationFailed indicates the payment step has outstanding field errors.
	ErrValidationFailed = errors.New("checkout: validation failed")
	// ErrUnknownShippingOption indicates the option id is not offered.
	ErrUnknownShippingOption = errors.New("checkout: unknown shipping option")
	// ErrForwardJump indicates a jump to a step that has not been completed yet.
	ErrForwardJump = errors.New("checkout: cannot jump forward")

	errCheckoutRepositoryRequired = errors.New("checkout service: repository is required")
	errCheckoutCartRequired       = errors.New("checkout service: cart service is required")
	errCheckoutProviderRequired   = errors.New("checkout service: payment provider is required")
	errCheckoutOrdersRequired     = errors.New("checkout service: order service is required")
)

// shippingOptions is the fixed delivery menu. IDs and prices are contract.
var shippingOptions = []domain.ShippingOption{
	{ID: "standard", Label: "Standard Shipping", Estimate: "5-7 business days", Cost: decimal.Zero},
	{ID: "express", Label: "Express Shipping", Estimate: "2-3 business days", Cost: decimal.NewFromInt(15)},
	{ID: "overnight", Label: "Overnight Shipping", Estimate: "next business day", Cost: decimal.NewFromInt(30)},
}

// CheckoutServiceDeps wires the collaborators of the checkout wizard.
type CheckoutServiceDeps struct {
	Repository repositories.CheckoutRepository
	Cart       CartService
	Provider   payments.Provider
	Orders     OrderService
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
	SessionTTL time.Duration
}

type checkoutService struct {
	repo      repositories.CheckoutRepository
	cart      CartService
	provider  payments.Provider
	orders    OrderService
	sanitizer *bluemonday.Policy
	now       func() time.Time
	logger    func(context.Context, string, map[string]any)
	ttl       time.Duration

	mu         sync.Mutex
	state      domain.CheckoutState
	processing bool
}

// NewCheckoutService constructs the wizard, restoring a persisted session when
// it is fresher than the TTL; stale sessions are discarded for defaults.
func NewCheckoutService(ctx context.Context, deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Repository == nil {
		return nil, errCheckoutRepositoryRequired
	}
	if deps.Cart == nil {
		return nil, errCheckoutCartRequired
	}
	if deps.Provider == nil {
		return nil, errCheckoutProviderRequired
	}
	if deps.Orders == nil {
		return nil, errCheckoutOrdersRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	service := &checkoutService{
		repo:      deps.Repository,
		cart:      deps.Cart,
		provider:  deps.Provider,
		orders:    deps.Orders,
		sanitizer: bluemonday.StrictPolicy(),
		now:       func() time.Time { return clock().UTC() },
		logger:    logger,
		ttl:       ttl,
	}
	service.state = service.defaultState()

	saved, err := deps.Repository.Load(ctx)
	switch {
	case err == nil:
		if service.now().Sub(saved.UpdatedAt) < ttl {
			saved.Status = domain.CheckoutStatusEditing
			service.state = saved
		} else {
			logger(ctx, "checkout_session_expired", map[string]any{"savedAt": saved.UpdatedAt})
			if clearErr := deps.Repository.Clear(ctx); clearErr != nil {
				logger(ctx, "checkout_persist_failed", map[string]any{"op": "clear", "error": clearErr.Error()})
			}
		}
	case isNotFound(err):
		// fresh session
	default:
		logger(ctx, "checkout_restore_failed", map[string]any{"error": err.Error()})
	}

	return service, nil
}

func (s *checkoutService) defaultState() domain.CheckoutState {
	return domain.CheckoutState{
		CurrentStep:     domain.StepShipping,
		Status:          domain.CheckoutStatusEditing,
		ShippingAddress: domain.Address{Country: defaultCountry},
		BillingAddress:  domain.Address{Country: defaultCountry},
		SameAsShipping:  true,
		Errors:          map[string]string{},
		UpdatedAt:       s.now(),
	}
}

// State returns a copy of the current session.
func (s *checkoutService) State(context.Context) domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

// ShippingOptions lists the fixed delivery menu.
func (s *checkoutService) ShippingOptions() []domain.ShippingOption {
	out := make([]domain.ShippingOption, len(shippingOptions))
	copy(out, shippingOptions)
	return out
}

// UpdateShippingAddress merges non-empty patch fields into the shipping
// address, clearing only the errors of touched fields. While sameAsShipping is
// set, the billing address tracks the shipping address.
func (s *checkoutService) UpdateShippingAddress(ctx context.Context, patch domain.Address) domain.CheckoutState {
	s.mu.Lock()
	touched := mergeAddress(&s.state.ShippingAddress, patch)
	if s.state.SameAsShipping {
		s.state.BillingAddress = s.state.ShippingAddress
	}
	s.clearErrorsLocked(touched)
	state := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, state)
	return state
}

// UpdateBillingAddress merges non-empty patch fields into the billing address.
func (s *checkoutService) UpdateBillingAddress(ctx context.Context, patch domain.Address) domain.CheckoutState {
	s.mu.Lock()
	touched := mergeAddress(&s.state.BillingAddress, patch)
	s.clearErrorsLocked(touched)
	state := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, state)
	return state
}

// SetSameAsShipping copies the shipping address over billing when enabled and
// resets billing to an empty template when disabled.
func (s *checkoutService) SetSameAsShipping(ctx context.Context, same bool) domain.CheckoutState {
	s.mu.Lock()
	s.state.SameAsShipping = same
	if same {
		s.state.BillingAddress = s.state.ShippingAddress
	} else {
		s.state.BillingAddress = domain.Address{Country: defaultCountry}
	}
	s.state.Errors = map[string]string{}
	state := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, state)
	return state
}

// SelectShippingOption records the chosen delivery option.
func (s *checkoutService) SelectShippingOption(ctx context.Context, optionID string) (domain.CheckoutState, error) {
	var selected *domain.ShippingOption
	for i := range shippingOptions {
		if shippingOptions[i].ID == strings.TrimSpace(optionID) {
			option := shippingOptions[i]
			selected = &option
			break
		}
	}
	if selected == nil {
		return s.State(ctx), fmt.Errorf("%w: %q", ErrUnknownShippingOption, optionID)
	}

	s.mu.Lock()
	s.state.ShippingOption = selected
	s.clearErrorsLocked([]string{"shippingOption"})
	state := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, state)
	return state, nil
}

// UpdatePayment merges non-empty patch fields into the payment form.
func (s *checkoutService) UpdatePayment(ctx context.Context, patch domain.PaymentForm) domain.CheckoutState {
	s.mu.Lock()
	touched := mergePayment(&s.state.Payment, patch)
	s.clearErrorsLocked(touched)
	if s.state.Status == domain.CheckoutStatusFailed {
		// Editing the form discards the failed attempt; fields stay intact.
		s.state.Status = domain.CheckoutStatusEditing
	}
	state := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, state)
	return state
}

// SetOrderNotes stores free-text notes, stripped of any markup.
func (s *checkoutService) SetOrderNotes(ctx context.Context, notes string) domain.CheckoutState {
	s.mu.Lock()
	s.state.OrderNotes = strings.TrimSpace(s.sanitizer.Sanitize(notes))
	state := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, state)
	return state
}

// Next validates the current step and advances on success. On the payment step
// a successful validation hands off to Submit instead of advancing.
func (s *checkoutService) Next(ctx context.Context) (domain.CheckoutState, error) {
	s.mu.Lock()
	errs := s.validateStepLocked(s.state.CurrentStep)
	if len(errs) > 0 {
		s.state.Errors = errs
		state := s.touchLocked()
		s.mu.Unlock()
		s.persist(ctx, state)
		return state, nil
	}

	if s.state.CurrentStep < domain.TotalSteps {
		s.state.CurrentStep++
		s.state.Errors = map[string]string{}
		state := s.touchLocked()
		s.mu.Unlock()
		s.persist(ctx, state)
		return state, nil
	}
	s.mu.Unlock()

	if _, err := s.Submit(ctx); err != nil {
		return s.State(ctx), err
	}
	return s.State(ctx), nil
}

// Prev steps back one step, clearing validation errors unconditionally.
func (s *checkoutService) Prev(ctx context.Context) domain.CheckoutState {
	s.mu.Lock()
	if s.state.CurrentStep > domain.StepShipping {
		s.state.CurrentStep--
	}
	s.state.Errors = map[string]string{}
	if s.state.Status == domain.CheckoutStatusFailed {
		s.state.Status = domain.CheckoutStatusEditing
	}
	state := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, state)
	return state
}

// JumpTo revisits a completed step. Forward jumps are rejected.
func (s *checkoutService) JumpTo(ctx context.Context, step domain.CheckoutStep) (domain.CheckoutState, error) {
	s.mu.Lock()
	if step < domain.StepShipping || step >= s.state.CurrentStep {
		state := copyState(s.state)
		s.mu.Unlock()
		return state, fmt.Errorf("%w: step %d from %d", ErrForwardJump, step, state.CurrentStep)
	}
	s.state.CurrentStep = step
	s.state.Errors = map[string]string{}
	state := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, state)
	return state, nil
}

// Reset returns the wizard to defaults and clears the persisted session.
func (s *checkoutService) Reset(ctx context.Context) domain.CheckoutState {
	s.mu.Lock()
	s.state = s.defaultState()
	state := copyState(s.state)
	s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.logger(ctx, "checkout_persist_failed", map[string]any{"op": "clear", "error": err.Error()})
	}
	return state
}

// Submit runs the payment attempt for the current session. It is single-flight:
// a submission while one is processing is rejected, not queued. The attempt
// itself cannot be cancelled; once issued it always resolves and the session
// reacts to the structured result.
func (s *checkoutService) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return SubmitResult{}, ErrPaymentInFlight
	}
	if s.state.CurrentStep != domain.StepPayment {
		s.mu.Unlock()
		return SubmitResult{}, fmt.Errorf("%w: on step %d", ErrCheckoutIncomplete, s.state.CurrentStep)
	}
	if errs := s.validateStepLocked(domain.StepPayment); len(errs) > 0 {
		s.state.Errors = errs
		state := s.touchLocked()
		s.mu.Unlock()
		s.persist(ctx, state)
		return SubmitResult{}, ErrValidationFailed
	}

	s.processing = true
	s.state.Status = domain.CheckoutStatusProcessing
	form := s.state.Payment
	sessionCopy := copyState(s.state)
	processingState := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, processingState)

	amount := s.cart.Totals(ctx).GrandTotal
	result := s.provider.Process(ctx, form, amount)

	s.mu.Lock()
	s.processing = false
	if !result.Success {
		s.state.Status = domain.CheckoutStatusFailed
		state := s.touchLocked()
		s.mu.Unlock()
		s.persist(ctx, state)
		s.logger(ctx, "checkout_payment_failed", map[string]any{"method": string(result.Method), "error": result.ErrorMessage})
		return SubmitResult{Payment: result}, nil
	}
	s.mu.Unlock()

	order, err := s.orders.CommitOrder(ctx, sessionCopy, result)
	if err != nil {
		s.mu.Lock()
		s.state.Status = domain.CheckoutStatusFailed
		state := s.touchLocked()
		s.mu.Unlock()
		s.persist(ctx, state)
		return SubmitResult{Payment: result}, fmt.Errorf("commit order: %w", err)
	}

	// Success discards the session; the next checkout starts from defaults.
	s.mu.Lock()
	s.state = s.defaultState()
	s.mu.Unlock()
	if clearErr := s.repo.Clear(ctx); clearErr != nil {
		s.logger(ctx, "checkout_persist_failed", map[string]any{"op": "clear", "error": clearErr.Error()})
	}
	s.logger(ctx, "checkout_order_committed", map[string]any{"orderId": order.ID})

	return SubmitResult{Payment: result, Order: &order}, nil
}

func (s *checkoutService) validateStepLocked(step domain.CheckoutStep) map[string]string {
	switch step {
	case domain.StepShipping:
		return validateAddress(s.state.ShippingAddress, true)
	case domain.StepBilling:
		if s.state.SameAsShipping {
			return map[string]string{}
		}
		return validateAddress(s.state.BillingAddress, false)
	case domain.StepDelivery:
		if s.state.ShippingOption == nil {
			return map[string]string{"shippingOption": "Please select a shipping option"}
		}
		return map[string]string{}
	case domain.StepPayment:
		return validatePayment(s.state.Payment, s.now())
	default:
		return map[string]string{}
	}
}

func (s *checkoutService) clearErrorsLocked(fields []string) {
	if s.state.Errors == nil {
		s.state.Errors = map[string]string{}
		return
	}
	for _, field := range fields {
		delete(s.state.Errors, field)
	}
}

func (s *checkoutService) touchLocked() domain.CheckoutState {
	s.state.UpdatedAt = s.now()
	return copyState(s.state)
}

func (s *checkoutService) persist(ctx context.Context, state domain.CheckoutState) {
	if err := s.repo.Save(ctx, state); err != nil {
		s.logger(ctx, "checkout_persist_failed", map[string]any{"error": err.Error()})
	}
}

func mergeAddress(dst *domain.Address, patch domain.Address) []string {
	var touched []string
	if patch.FullName != "" {
		dst.FullName = patch.FullName
		touched = append(touched, "fullName")
	}
	if patch.Email != "" {
		dst.Email = patch.Email
		touched = append(touched, "email")
	}
	if patch.Phone != "" {
		dst.Phone = patch.Phone
		touched = append(touched, "phone")
	}
	if patch.Street != "" {
		dst.Street = patch.Street
		touched = append(touched, "street")
	}
	if patch.City != "" {
		dst.City = patch.City
		touched = append(touched, "city")
	}
	if patch.State != "" {
		dst.State = patch.State
		touched = append(touched, "state")
	}
	if patch.ZipCode != "" {
		dst.ZipCode = patch.ZipCode
		touched = append(touched, "zipCode")
	}
	if patch.Country != "" {
		dst.Country = patch.Country
		touched = append(touched, "country")
	}
	return touched
}

func mergePayment(dst *domain.PaymentForm, patch domain.PaymentForm) []string {
	var touched []string
	if patch.Method != "" {
		dst.Method = patch.Method
		touched = append(touched, "paymentMethod")
	}
	if patch.CardNumber != "" {
		dst.CardNumber = patch.CardNumber
		touched = append(touched, "cardNumber")
	}
	if patch.ExpiryDate != "" {
		dst.ExpiryDate = patch.ExpiryDate
		touched = append(touched, "expiryDate")
	}
	if patch.CVV != "" {
		dst.CVV = patch.CVV
		touched = append(touched, "cvv")
	}
	if patch.CardholderName != "" {
		dst.CardholderName = patch.CardholderName
		touched = append(touched, "cardholderName")
	}
	if patch.SaveCard {
		dst.SaveCard = true
	}
	return touched
}

func copyState(state domain.CheckoutState) domain.CheckoutState {
	out := state
	if state.ShippingOption != nil {
		option := *state.ShippingOption
		out.ShippingOption = &option
	}
	if state.Errors != nil {
		out.Errors = make(map[string]string, len(state.Errors))
		for k, v := range state.Errors {
			out.Errors[k] = v
		}
	}
	return out
}
