package currency

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount parses a user-entered amount, tolerating thousands
// separators. Zero and negative amounts are rejected.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %v", amount)
	}
	return amount, nil
}

// Convert applies an exchange rate to a source amount.
func Convert(sourceAmount, rate float64) float64 {
	return sourceAmount * rate
}

// Format renders an amount with a currency code for logs and notifications.
func Format(amount float64, code string) string {
	return fmt.Sprintf("%s %s", FormatAmount(amount), code)
}

// FormatAmount renders an amount with thousands separators and two decimal
// places.
func FormatAmount(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatFloat(amount, 'f', 2, 64)
	parts := strings.SplitN(s, ".", 2)

	intPart := parts[0]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}
