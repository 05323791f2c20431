// Package core holds the domain model for the marketplace financial
// pipeline: money in integer centavos, calendar months and quarters, the
// eight source relations and the derived transaction facts.
//
// All monetary arithmetic happens on int64 centavos so that sums over the
// ~112K fact rows stay exact; floats only appear at serialization time.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a BRL amount in centavos.
type Money struct {
	Centavos int64
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Centavos: m.Centavos + o.Centavos}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Centavos == 0
}

// String formats the amount as a plain decimal with two digits, e.g. "129.90".
func (m Money) String() string {
	c := m.Centavos
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return sign + strconv.FormatInt(c/100, 10) + "." + pad2(c%100)
}

// MarshalJSON emits the amount as a fixed two-decimal JSON number. The
// formatting is exact and stable, which keeps serialized summaries
// byte-identical across runs.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// Reais returns the value as float64 for display only; never use it for
// aggregation.
func (m Money) Reais() float64 {
	return float64(m.Centavos) / 100.0
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// ParseDecimalToCentavos converts a decimal string to centavos with half-up
// rounding on the third decimal place. Accepts both dot and comma separators.
// Zero is valid (freight is often 0.00); negative amounts are not.
//
// Examples:
//
//	ParseDecimalToCentavos("129.90") -> 12990, nil
//	ParseDecimalToCentavos("0")      -> 0, nil
//	ParseDecimalToCentavos("-1.00")  -> 0, ErrInvalidAmount
func ParseDecimalToCentavos(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCentavos int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCentavos = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCentavos += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCentavos++
			}
		}
	}
	return iv*100 + fracCentavos, nil
}
