// Package amount provides an exact, non-negative integer quantity paired with
// the decimal scale of the asset it measures.
package amount

import (
	"errors"
	"math/big"
	"strings"
)

// ErrInvalidAmount is returned when a decimal string cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// Quantity is an amount in base units together with its decimal scale.
// The zero value is a zero amount with zero decimals.
type Quantity struct {
	value    *big.Int
	decimals int
}

// New returns a Quantity for value with the given decimals.
// Negative values are clamped to zero. The value is copied.
func New(value *big.Int, decimals int) Quantity {
	v := new(big.Int)
	if value != nil && value.Sign() > 0 {
		v.Set(value)
	}
	return Quantity{value: v, decimals: decimals}
}

// FromUint64 returns a Quantity for a uint64 base-unit value.
func FromUint64(value uint64, decimals int) Quantity {
	return Quantity{value: new(big.Int).SetUint64(value), decimals: decimals}
}

// Zero returns a zero Quantity with the given decimals.
func Zero(decimals int) Quantity {
	return Quantity{value: new(big.Int), decimals: decimals}
}

// Parse converts a human decimal string ("1.5") into base units.
// Digits beyond the asset precision are truncated.
//
//nolint:gocognit,gocyclo // Decimal parsing requires sequential validation steps
func Parse(s string, decimals int) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return Quantity{}, ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Quantity{}, ErrInvalidAmount
	}

	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, c := range intPart + decPart {
		if c < '0' || c > '9' {
			return Quantity{}, ErrInvalidAmount
		}
	}

	intVal, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return Quantity{}, ErrInvalidAmount
	}
	result := new(big.Int).Mul(intVal, pow10(decimals))

	if decPart != "" && decimals > 0 {
		for len(decPart) < decimals {
			decPart += "0"
		}
		decVal, ok := new(big.Int).SetString(decPart[:decimals], 10)
		if !ok {
			return Quantity{}, ErrInvalidAmount
		}
		result.Add(result, decVal)
	}

	return Quantity{value: result, decimals: decimals}, nil
}

// Value returns a copy of the base-unit value.
func (q Quantity) Value() *big.Int {
	if q.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(q.value)
}

// Decimals returns the decimal scale.
func (q Quantity) Decimals() int {
	return q.decimals
}

// IsZero reports whether the quantity is zero.
func (q Quantity) IsZero() bool {
	return q.value == nil || q.value.Sign() == 0
}

// Cmp compares base-unit values, ignoring decimals.
func (q Quantity) Cmp(o Quantity) int {
	return q.Value().Cmp(o.Value())
}

// Add returns q+o in q's decimals.
func (q Quantity) Add(o Quantity) Quantity {
	return Quantity{value: new(big.Int).Add(q.Value(), o.Value()), decimals: q.decimals}
}

// Sub returns q-o in q's decimals, clamped at zero.
func (q Quantity) Sub(o Quantity) Quantity {
	return New(new(big.Int).Sub(q.Value(), o.Value()), q.decimals)
}

// String renders the quantity as a decimal string without trailing zeros.
func (q Quantity) String() string {
	return Format(q.Value(), q.decimals)
}

// Format renders a base-unit value with the given decimals.
// For example, 1500000000000000000 with 18 decimals returns "1.5".
func Format(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	str := value.String()
	if decimals <= 0 {
		return str
	}

	for len(str) <= decimals {
		str = "0" + str
	}
	pos := len(str) - decimals
	intPart, decPart := str[:pos], strings.TrimRight(str[pos:], "0")
	if decPart == "" {
		return intPart
	}
	return intPart + "." + decPart
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return a
	}
	return b
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
