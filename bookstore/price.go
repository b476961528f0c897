package bookstore

import (
	"strconv"
	"strings"
)

// ParsePrice parses a price field that may use either decimal-point or
// decimal-comma notation ("49.90" and "49,90" are equivalent). An empty
// value parses as zero. The result is always decimal-point internally.
func ParsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, NewValidationError("price", "invalid number: "+raw)
	}
	if v < 0 {
		return 0, NewValidationError("price", "must not be negative")
	}
	return v, nil
}
