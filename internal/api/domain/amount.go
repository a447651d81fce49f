package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxAmount is the largest value the NUMERIC(12,2) amount and budget columns hold
const MaxAmount = 9_999_999_999.99

// ErrAmountOutOfRange is returned when the database refuses an amount the
// service-level checks let through
var ErrAmountOutOfRange = NewValidationError("Amount is out of range")

// CheckAmount validates a money value for storage. label names the field in
// the returned message, e.g. "Bid amount".
func CheckAmount(label string, amount float64) error {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		return NewValidationError(label + " must be a valid number")
	case amount <= 0:
		return NewValidationError(label + " must be greater than 0")
	case amount > MaxAmount:
		return NewValidationError(fmt.Sprintf("%s must not exceed %.2f", label, MaxAmount))
	case !hasCents(amount):
		return NewValidationError(label + " must have at most 2 decimal places")
	}
	return nil
}

// hasCents reports whether the shortest decimal form of amount has at most
// two fractional digits
func hasCents(amount float64) bool {
	s := strconv.FormatFloat(amount, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	return dot < 0 || len(s)-dot-1 <= 2
}
