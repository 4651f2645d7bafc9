package indexer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Number is an integer the indexer sends either as a JSON number or as a
// decimal (or 0x-prefixed hex) string. A null or missing value is invalid.
type Number struct {
	Int *big.Int
}

// NewNumber wraps v.
func NewNumber(v *big.Int) Number {
	return Number{Int: new(big.Int).Set(v)}
}

// Valid reports whether a value was present.
func (n Number) Valid() bool {
	return n.Int != nil
}

// Big returns a copy of the value, or zero when absent.
func (n Number) Big() *big.Int {
	if n.Int == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n.Int)
}

// String returns the decimal representation.
func (n Number) String() string {
	return n.Big().String()
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.Int = nil
		return nil
	}

	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		n.Int = nil
		return nil
	}

	v, err := parseInt(s)
	if err != nil {
		return err
	}
	n.Int = v
	return nil
}

// MarshalJSON encodes the value as a decimal string.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.Int == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Int.String())
}

// parseInt accepts base-10 or 0x-prefixed base-16. A leading zero is
// decimal, never octal.
func parseInt(s string) (*big.Int, error) {
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrMalformedResponse, s)
	}
	return v, nil
}
