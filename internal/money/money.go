// Package money converts between display currency strings and decimals.
package money

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is prefixed to formatted amounts when no symbol is given.
const DefaultSymbol = "€"

var errEmpty = errors.New("empty amount")

// Parse reads amounts such as "€12.34", "12,34", "$1,000" or "$ 1,234.50".
func Parse(s string) (decimal.Decimal, error) {
	raw := strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.Is(unicode.Sc, r)
	})
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return decimal.Zero, errEmpty
	}
	if strings.HasPrefix(raw, "-") {
		return decimal.Zero, fmt.Errorf("negative amount %q", s)
	}
	raw, err := normalizeSeparators(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// normalizeSeparators rewrites raw into a plain decimal. When both separators
// appear the last one is the decimal point. A single dot is a decimal point.
// A lone comma followed by exactly three digits groups thousands, one
// followed by one or two digits is a decimal comma. Repeated separators must
// group thousands. Anything else is rejected.
func normalizeSeparators(raw string) (string, error) {
	comma := strings.LastIndex(raw, ",")
	dot := strings.LastIndex(raw, ".")
	switch {
	case comma < 0 && dot < 0:
		return raw, nil
	case comma >= 0 && dot >= 0:
		dec, group := ".", ","
		if comma > dot {
			dec, group = ",", "."
		}
		i := strings.LastIndex(raw, dec)
		if strings.Count(raw, dec) != 1 {
			return "", errors.New("repeated decimal separator")
		}
		whole, err := ungroup(raw[:i], group)
		if err != nil {
			return "", err
		}
		return whole + "." + raw[i+1:], nil
	}
	sep := ","
	if comma < 0 {
		sep = "."
	}
	parts := strings.Split(raw, sep)
	if sep == "." && len(parts) == 2 {
		return raw, nil
	}
	if len(parts) == 2 && len(parts[1]) != 3 {
		if len(parts[1]) > 2 {
			return "", errors.New("ambiguous decimal comma")
		}
		return parts[0] + "." + parts[1], nil
	}
	return ungroup(raw, sep)
}

// ungroup removes thousands separators, requiring a leading group of one to
// three digits and exactly three digits in every later group.
func ungroup(s, sep string) (string, error) {
	parts := strings.Split(s, sep)
	if len(parts) == 1 {
		return s, nil
	}
	for i, p := range parts {
		if (i == 0 && (len(p) < 1 || len(p) > 3)) || (i > 0 && len(p) != 3) {
			return "", fmt.Errorf("bad digit grouping %q", s)
		}
	}
	return strings.Join(parts, ""), nil
}

// Format renders d with two decimals and the currency symbol prefix.
func Format(d decimal.Decimal, symbol string) string {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return symbol + d.StringFixed(2)
}
