package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders amount as US dollars with cents, e.g. "$1,234.56".
func FormatCurrency(amount float64) string {
	return formatDollars(decimal.NewFromFloat(amount).Round(2), 2)
}

// FormatCurrencyWhole renders amount rounded to whole dollars, e.g. "$1,235".
func FormatCurrencyWhole(amount float64) string {
	return formatDollars(decimal.NewFromFloat(amount).Round(0), 0)
}

func formatDollars(d decimal.Decimal, places int32) string {
	negative := d.IsNegative()
	text := d.Abs().StringFixed(places)

	whole, frac, _ := strings.Cut(text, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	if places > 0 {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
