package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product describes a catalog entry supplied by the catalog provider.
// The engine treats it as read-only input to cart mutations.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Image       string          `json:"image,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	InStock     bool            `json:"inStock"`
}

// CartLine is a single cart entry. Quantity is always >= 1 while the line
// exists; a requested quantity <= 0 removes the line instead.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Brand     string          `json:"brand,omitempty"`
}

// LineTotal returns unit price multiplied by quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CouponKind enumerates the supported discount mechanics.
type CouponKind string

const (
	// CouponPercentage discounts a percentage of the subtotal.
	CouponPercentage CouponKind = "percentage"
	// CouponFixedAmount discounts a fixed amount once the subtotal meets the minimum.
	CouponFixedAmount CouponKind = "fixedAmount"
	// CouponFreeShipping waives the shipping fee and contributes no discount amount.
	CouponFreeShipping CouponKind = "freeShipping"
)

// Coupon is a redeemable discount rule. MinimumSubtotal is nil when the
// coupon has no spend requirement.
type Coupon struct {
	Code            string           `json:"code"`
	Kind            CouponKind       `json:"kind"`
	Value           decimal.Decimal  `json:"value"`
	MinimumSubtotal *decimal.Decimal `json:"minimumSubtotal,omitempty"`
	Description     string           `json:"description,omitempty"`
}

// CartSnapshot is the persisted shape of the cart: its lines plus the
// applied coupon, if any. At most one coupon is applied at a time.
type CartSnapshot struct {
	Lines  []CartLine `json:"lines"`
	Coupon *Coupon    `json:"coupon,omitempty"`
}

// Totals is the deterministic pricing breakdown derived from cart state.
// Tax is zero until order commit, which adds the flat tax line.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Address holds the contact and street fields captured by the shipping and
// billing checkout steps.
type Address struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

// ShippingOption is a selectable delivery method.
type ShippingOption struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Estimate string          `json:"estimate,omitempty"`
	Cost     decimal.Decimal `json:"cost"`
}

// PaymentMethod enumerates the supported payment instruments.
type PaymentMethod string

const (
	// PaymentMethodCard pays by credit or debit card.
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodPayPal pays through a PayPal account.
	PaymentMethodPayPal PaymentMethod = "paypal"
	// PaymentMethodUPI pays through a UPI handle.
	PaymentMethodUPI PaymentMethod = "upi"
)

// PaymentForm carries the method selection and card fields entered on the
// payment step. Non-card methods ignore the card fields.
type PaymentForm struct {
	Method         PaymentMethod `json:"method"`
	CardNumber     string        `json:"cardNumber,omitempty"`
	ExpiryDate     string        `json:"expiryDate,omitempty"`
	CVV            string        `json:"cvv,omitempty"`
	CardholderName string        `json:"cardholderName,omitempty"`
	SaveCard       bool          `json:"saveCard,omitempty"`
}

// CheckoutStep identifies one of the four wizard steps.
type CheckoutStep int

const (
	// StepShipping captures the shipping address.
	StepShipping CheckoutStep = 1
	// StepBilling captures the billing address.
	StepBilling CheckoutStep = 2
	// StepDelivery selects the shipping option.
	StepDelivery CheckoutStep = 3
	// StepPayment captures the payment method and fields.
	StepPayment CheckoutStep = 4

	// TotalSteps is the number of wizard steps.
	TotalSteps = 4
)

// CheckoutStatus tracks the session beyond step position.
type CheckoutStatus string

const (
	// CheckoutStatusEditing means the wizard is accepting field edits and transitions.
	CheckoutStatusEditing CheckoutStatus = "editing"
	// CheckoutStatusProcessing means a payment attempt is in flight; submissions are rejected.
	CheckoutStatusProcessing CheckoutStatus = "processing"
	// CheckoutStatusFailed means the last payment attempt failed; the session is retryable.
	CheckoutStatusFailed CheckoutStatus = "failed"
	// CheckoutStatusSucceeded means payment succeeded and the order was committed.
	CheckoutStatusSucceeded CheckoutStatus = "succeeded"
)

// CheckoutState is the persisted wizard snapshot. UpdatedAt drives the
// one-hour restore window.
type CheckoutState struct {
	CurrentStep     CheckoutStep      `json:"currentStep"`
	Status          CheckoutStatus    `json:"status"`
	ShippingAddress Address           `json:"shippingAddress"`
	BillingAddress  Address           `json:"billingAddress"`
	SameAsShipping  bool              `json:"sameAsShipping"`
	ShippingOption  *ShippingOption   `json:"shippingOption,omitempty"`
	Payment         PaymentForm       `json:"payment"`
	OrderNotes      string            `json:"orderNotes,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// PaymentResult is the structured outcome of a payment attempt. Failures are
// reported through Success and ErrorMessage, never as a Go error.
type PaymentResult struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transactionId,omitempty"`
	Method        PaymentMethod   `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	CardLast4     string          `json:"cardLast4,omitempty"`
	CardBrand     string          `json:"cardBrand,omitempty"`
	ErrorMessage  string          `json:"errorMessage,omitempty"`
	ProcessedAt   time.Time       `json:"processedAt"`
}

// OrderStatus describes the lifecycle of a committed order. The engine only
// produces confirmed orders; later states belong to fulfilment.
type OrderStatus string

const (
	// OrderStatusConfirmed is the status of every freshly committed order.
	OrderStatusConfirmed OrderStatus = "confirmed"
)

// Order is the immutable record of a successfully paid checkout. It is
// appended to the order log and never mutated afterward.
type Order struct {
	ID              string         `json:"orderId"`
	Items           []CartLine     `json:"items"`
	ShippingAddress Address        `json:"shippingAddress"`
	BillingAddress  Address        `json:"billingAddress"`
	ShippingOption  ShippingOption `json:"shippingOption"`
	OrderNotes      string         `json:"orderNotes,omitempty"`
	Payment         PaymentResult  `json:"payment"`
	Totals          Totals         `json:"totals"`
	OrderDate       time.Time      `json:"orderDate"`
	Status          OrderStatus    `json:"status"`
}
