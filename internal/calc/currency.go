package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Currency is a display currency for amounts.
type Currency string

const (
	CurrencyGHS Currency = "GHS"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyNGN Currency = "NGN"
)

// DefaultCurrency is used when no currency has been chosen.
const DefaultCurrency = CurrencyGHS

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{CurrencyGHS, CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyJPY, CurrencyNGN}

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
	CurrencyJPY: "¥",
	CurrencyNGN: "₦",
}

// ParseCurrency parses a currency code, case-insensitively.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Currencies {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// FormatCurrency formats a preview or result string as an amount with
// thousands separators and two decimals. GHS is written as a "ghs" suffix,
// the others as a symbol prefix. Unparseable input formats as zero.
func FormatCurrency(value string, c Currency) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return FormatAmount(v, c)
}

// FormatAmount is FormatCurrency for an already-parsed amount.
func FormatAmount(v float64, c Currency) string {
	amount := humanize.FormatFloat("#,###.##", v)
	if c == CurrencyGHS {
		return amount + "ghs"
	}
	if sym, ok := currencySymbols[c]; ok {
		return sym + amount
	}
	return amount
}
