package render

import (
	"fmt"
	"math"
	"strings"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"AUD": "A$",
	"CAD": "CA$",
	"JPY": "¥",
	"CHF": "CHF ",
}

// FormatCurrency renders an amount the way the upstream page does for en-US
// locales: symbol prefix for known currencies, thousands separators, two
// decimals, sign ahead of the symbol (-$100.00).
func FormatCurrency(amount float64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	sign := ""
	if amount < 0 {
		sign = "-"
	}
	digits := groupThousands(fmt.Sprintf("%.2f", math.Abs(amount)))

	symbol, ok := currencySymbols[currency]
	if !ok {
		if currency == "" {
			return sign + digits
		}
		return sign + currency + " " + digits
	}
	return sign + symbol + digits
}

func groupThousands(s string) string {
	whole, frac, _ := strings.Cut(s, ".")
	if len(whole) <= 3 {
		return whole + "." + frac
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	return b.String() + "." + frac
}
