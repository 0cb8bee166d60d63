package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// epsilon is the tolerance for all monetary comparisons. Amounts closer than
// this are treated as equal.
var epsilon = decimal.New(1, -3) // 0.001

// withinEpsilon reports whether a and b are equal within tolerance.
func withinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(epsilon)
}

// exceeds reports whether a is greater than b by more than the tolerance.
func exceeds(a, b decimal.Decimal) bool {
	return a.Sub(b).GreaterThan(epsilon)
}

// atLeast reports whether a >= b within tolerance.
func atLeast(a, b decimal.Decimal) bool {
	return !exceeds(b, a)
}

// ValidationError is a user-correctable input error. It is returned before
// any store mutation takes place.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
