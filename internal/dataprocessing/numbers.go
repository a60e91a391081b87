package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseBRNumber parses a pt-BR formatted number such as "1.234.567,89".
// Dots are thousands separators and the comma is the decimal separator.
func ParseBRNumber(raw string) (decimal.Decimal, error) {
	s := strings.Trim(strings.TrimSpace(raw), `"`)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty field", ErrInvalidNumber)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return d, nil
}

// parseBRInt parses a pt-BR number and rounds it to the nearest integer
func parseBRInt(raw string) (int64, error) {
	d, err := ParseBRNumber(raw)
	if err != nil {
		return 0, err
	}
	return d.Round(0).IntPart(), nil
}
