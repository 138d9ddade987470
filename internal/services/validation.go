package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopmart/commerce/internal/domain"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	zipPattern        = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	nonDigits         = regexp.MustCompile(`[^\d+]`)
)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validPhone(phone string) bool {
	return phonePattern.MatchString(nonDigits.ReplaceAllString(phone, ""))
}

func validZipCode(zip string) bool {
	return zipPattern.MatchString(zip)
}

func validCardNumber(number string) bool {
	return cardNumberPattern.MatchString(strings.ReplaceAll(number, " ", ""))
}

// validExpiry accepts MM/YY dates in the current month or later.
func validExpiry(expiry string, now time.Time) bool {
	if !expiryPattern.MatchString(expiry) {
		return false
	}
	parts := strings.SplitN(expiry, "/", 2)
	month, _ := strconv.Atoi(parts[0])
	year, _ := strconv.Atoi(parts[1])
	if month < 1 || month > 12 {
		return false
	}
	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return false
	}
	return true
}

func validCVV(cvv string) bool {
	return cvvPattern.MatchString(cvv)
}

// validateAddress checks the shared field set of the shipping and billing
// steps. Email and phone checks apply only when requireContact is set; the
// billing step omits them.
func validateAddress(address domain.Address, requireContact bool) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(address.FullName) == "" {
		errs["fullName"] = "Full name is required"
	}
	if requireContact {
		if strings.TrimSpace(address.Email) == "" {
			errs["email"] = "Email is required"
		} else if !validEmail(address.Email) {
			errs["email"] = "Please enter a valid email address"
		}
		if strings.TrimSpace(address.Phone) == "" {
			errs["phone"] = "Phone number is required"
		} else if !validPhone(address.Phone) {
			errs["phone"] = "Please enter a valid phone number"
		}
	}
	if strings.TrimSpace(address.Street) == "" {
		errs["street"] = "Street address is required"
	}
	if strings.TrimSpace(address.City) == "" {
		errs["city"] = "City is required"
	}
	if strings.TrimSpace(address.State) == "" {
		errs["state"] = "State is required"
	}
	if strings.TrimSpace(address.ZipCode) == "" {
		errs["zipCode"] = "ZIP code is required"
	} else if !validZipCode(address.ZipCode) {
		errs["zipCode"] = "Please enter a valid ZIP code"
	}

	return errs
}

// validatePayment checks the payment step. Card details are only required for
// the card method; paypal and upi carry no additional fields.
func validatePayment(form domain.PaymentForm, now time.Time) map[string]string {
	errs := map[string]string{}

	if form.Method == "" {
		errs["paymentMethod"] = "Please select a payment method"
		return errs
	}

	if form.Method == domain.PaymentMethodCard {
		if form.CardNumber == "" || !validCardNumber(form.CardNumber) {
			errs["cardNumber"] = "Please enter a valid card number"
		}
		if form.ExpiryDate == "" || !validExpiry(form.ExpiryDate, now) {
			errs["expiryDate"] = "Please enter a valid expiry date (MM/YY)"
		}
		if form.CVV == "" || !validCVV(form.CVV) {
			errs["cvv"] = "Please enter a valid CVV"
		}
		if strings.TrimSpace(form.CardholderName) == "" {
			errs["cardholderName"] = "Please enter the cardholder name"
		}
	}

	return errs
}
