// Package quantity normalizes user quantity input. Quantities are positive
// real numbers; anything blank, unparseable, zero, or negative becomes 1.
package quantity

import (
	"strconv"
	"strings"
)

// Parse converts form input to a quantity. Both "." and "," work as the
// decimal separator ("1,5" and "1.5" are the same amount).
func Parse(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	s = strings.ReplaceAll(s, ",", ".")
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	return Normalize(q)
}

// Normalize floors a quantity at the minimum of 1 when it is not positive.
func Normalize(q float64) float64 {
	if q <= 0 {
		return 1
	}
	return q
}

// Format renders a quantity without a trailing ".0" for whole amounts.
func Format(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
