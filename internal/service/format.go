package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as Brazilian currency: R$ 1.234,56.
func FormatBRL(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatAmount renders an amount with two decimal places: 1234.56.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDateBR renders a YYYY-MM-DD or DD/MM/YYYY date as DD/MM/YYYY.
// Anything else is returned unchanged.
func FormatDateBR(value string) string {
	t, ok := ParseDueDate(value, time.UTC)
	if !ok {
		return value
	}
	return t.Format(brDateLayout)
}

// FormatBytes renders a byte count with a binary unit: 1.5 GB.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < 4; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTP"[exp])
}
