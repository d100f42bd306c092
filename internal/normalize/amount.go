// Package normalize provides the pure field normalizers shared by the
// transaction parser and downstream consumers: amount strings to
// decimals and statement date strings to calendar dates.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPatterns are tried in order; the first match is extracted.
// Broader patterns come last so "1,000.00" is not truncated to "1,000".
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\d,]+\.\d{2}`),
	regexp.MustCompile(`[\d,]+\.\d{1}`),
	regexp.MustCompile(`\d+\.\d{2}`),
	regexp.MustCompile(`\d+\.\d{1}`),
	regexp.MustCompile(`[\d,]+`),
}

var amountFallback = regexp.MustCompile(`[\d,]*\.?\d+`)

// ParseAmount normalizes an amount string to a decimal rounded to two
// fraction digits. Parenthesis notation "(1,234.56)" parses as negative.
// Currency symbols, commas and surrounding noise are stripped.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned, negative, err := cleanAmountString(s)
	if err != nil {
		return decimal.Zero, err
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(cleaned, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount '%s': %w", s, err)
	}

	d = d.Round(2)
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func cleanAmountString(s string) (string, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false, fmt.Errorf("amount string cannot be empty")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	for _, pattern := range amountPatterns {
		if match := pattern.FindString(s); match != "" {
			return match, negative, nil
		}
	}

	if match := amountFallback.FindString(s); match != "" {
		return match, negative, nil
	}

	return "", false, fmt.Errorf("no amount found in '%s'", s)
}

// ValidAmount reports whether s contains a parseable amount.
func ValidAmount(s string) bool {
	_, err := ParseAmount(s)
	return err == nil
}

// FormatAmount renders a decimal with thousands separators and two
// fraction digits. Negative values use parenthesis notation, matching
// the statement convention the parser accepts.
func FormatAmount(d decimal.Decimal) string {
	formatted := groupThousands(d.Abs().StringFixed(2))
	if d.IsNegative() {
		return "(" + formatted + ")"
	}
	return formatted
}

func groupThousands(s string) string {
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	n := len(intPart)
	if n <= 3 {
		return intPart + fracPart
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + fracPart
}
