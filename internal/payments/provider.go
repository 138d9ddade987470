// Package payments defines the payment provider boundary and the simulated
// gateway that stands in for a real PSP.
package payments

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
)

// Provider executes a payment attempt for the given form and amount. Payment
// outcomes, including declines and field validation failures, are reported
// through the returned PaymentResult, never as a Go error; callers can retry
// without exception handling.
type Provider interface {
	Process(ctx context.Context, form domain.PaymentForm, amount decimal.Decimal) domain.PaymentResult
}
