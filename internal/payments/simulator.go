package payments

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
)

const (
	defaultLatency     = 2 * time.Second
	defaultSuccessRate = 0.9

	declinedMessage = "Payment declined. Please try again or use a different card."
)

var (
	simCardPattern   = regexp.MustCompile(`^\d{16}$`)
	simExpiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	simCVVPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// SimulatorDeps configures the simulated gateway. Rand must return a uniform
// value in [0, 1); it is the test seam for forcing either card outcome.
type SimulatorDeps struct {
	Clock       func() time.Time
	Rand        func() float64
	Latency     time.Duration
	SuccessRate float64
}

// Simulator is a fallible, latency-injecting stand-in for a payment gateway.
type Simulator struct {
	now         func() time.Time
	roll        func() float64
	latency     time.Duration
	successRate float64
}

var _ Provider = (*Simulator)(nil)

// NewSimulator constructs the simulated gateway.
func NewSimulator(deps SimulatorDeps) *Simulator {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	roll := deps.Rand
	if roll == nil {
		roll = rand.Float64
	}
	latency := deps.Latency
	if latency < 0 {
		latency = defaultLatency
	}
	successRate := deps.SuccessRate
	if successRate <= 0 || successRate > 1 {
		successRate = defaultSuccessRate
	}
	return &Simulator{
		now:         func() time.Time { return clock().UTC() },
		roll:        roll,
		latency:     latency,
		successRate: successRate,
	}
}

// Process simulates a gateway round-trip. The attempt always resolves; there
// is no cancellation path once it is issued. Only card payments can decline;
// the wallet methods always settle.
func (s *Simulator) Process(_ context.Context, form domain.PaymentForm, amount decimal.Decimal) domain.PaymentResult {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	processedAt := s.now()

	if message, field := validateForm(form); message != "" {
		return domain.PaymentResult{
			Success:      false,
			Method:       form.Method,
			Amount:       amount,
			ErrorMessage: fmt.Sprintf("%s: %s", field, message),
			ProcessedAt:  processedAt,
		}
	}

	switch form.Method {
	case domain.PaymentMethodCard:
		cleaned := strings.ReplaceAll(form.CardNumber, " ", "")
		if s.roll() >= s.successRate {
			return domain.PaymentResult{
				Success:      false,
				Method:       domain.PaymentMethodCard,
				Amount:       amount,
				ErrorMessage: declinedMessage,
				ProcessedAt:  processedAt,
			}
		}
		return domain.PaymentResult{
			Success:       true,
			TransactionID: "txn_" + uuid.NewString(),
			Method:        domain.PaymentMethodCard,
			Amount:        amount,
			CardLast4:     cleaned[len(cleaned)-4:],
			CardBrand:     cardBrand(cleaned),
			ProcessedAt:   processedAt,
		}
	case domain.PaymentMethodPayPal:
		return domain.PaymentResult{
			Success:       true,
			TransactionID: "pp_" + uuid.NewString(),
			Method:        domain.PaymentMethodPayPal,
			Amount:        amount,
			ProcessedAt:   processedAt,
		}
	case domain.PaymentMethodUPI:
		return domain.PaymentResult{
			Success:       true,
			TransactionID: "upi_" + uuid.NewString(),
			Method:        domain.PaymentMethodUPI,
			Amount:        amount,
			ProcessedAt:   processedAt,
		}
	default:
		return domain.PaymentResult{
			Success:      false,
			Method:       form.Method,
			Amount:       amount,
			ErrorMessage: "Unsupported payment method",
			ProcessedAt:  processedAt,
		}
	}
}

// validateForm re-checks method-specific required fields. A failure here
// resolves immediately without generating a transaction id.
func validateForm(form domain.PaymentForm) (message, field string) {
	if form.Method != domain.PaymentMethodCard {
		return "", ""
	}
	cleaned := strings.ReplaceAll(form.CardNumber, " ", "")
	if !simCardPattern.MatchString(cleaned) {
		return "Invalid card number", "cardNumber"
	}
	if !simExpiryPattern.MatchString(form.ExpiryDate) {
		return "Invalid expiry date", "expiryDate"
	}
	if !simCVVPattern.MatchString(form.CVV) {
		return "Invalid CVV", "cvv"
	}
	if strings.TrimSpace(form.CardholderName) == "" {
		return "Cardholder name required", "cardholderName"
	}
	return "", ""
}

// cardBrand infers the network from the leading digits.
func cardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "5"), strings.HasPrefix(number, "2"):
		return "mastercard"
	case strings.HasPrefix(number, "3"):
		return "amex"
	default:
		return "unknown"
	}
}
