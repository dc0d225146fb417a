// Package money represents currency amounts as integer cents.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is an amount in the smallest currency unit (two decimal places).
type Cents int64

// ErrInvalidAmount is returned when a decimal string cannot be represented
// exactly in cents.
var ErrInvalidAmount = errors.New("invalid money amount")

// FromUnits builds an amount from whole units and cents, e.g. FromUnits(40, 0).
func FromUnits(units, cents int64) Cents {
	return Cents(units*100 + cents)
}

// Parse reads a decimal such as "40", "40.5" or "149.99". More than two
// fractional digits are accepted only when the extra digits are zero.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if strings.TrimRight(frac[min(len(frac), 2):], "0") != "" {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	frac = frac[:min(len(frac), 2)]
	for len(frac) < 2 {
		frac += "0"
	}

	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	if units > (math.MaxInt64-cents)/100 {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}

	v := units*100 + cents
	if neg {
		v = -v
	}
	return Cents(v), nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Mul returns c multiplied by n.
func (c Cents) Mul(n int64) Cents { return c * Cents(n) }

// Int64 returns the raw cent count.
func (c Cents) Int64() int64 { return int64(c) }

// String formats the amount with exactly two decimals.
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits a JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		s = unq
	}
	if strings.ContainsAny(s, "eE") {
		return fmt.Errorf("%w: exponent notation not supported", ErrInvalidAmount)
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
