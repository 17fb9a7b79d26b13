package calc

import "testing"

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		value    string
		currency Currency
		want     string
	}{
		{"1234.5", CurrencyGHS, "1,234.50ghs"},
		{"1234.5", CurrencyUSD, "$1,234.50"},
		{"17.00", CurrencyEUR, "€17.00"},
		{"1000000", CurrencyGBP, "£1,000,000.00"},
		{"0.00", CurrencyJPY, "¥0.00"},
		{"99.99", CurrencyNGN, "₦99.99"},
		{"not a number", CurrencyUSD, "$0.00"},
		{"12", Currency("XYZ"), "12.00"},
	}

	for _, tt := range tests {
		t.Run(string(tt.currency)+"/"+tt.value, func(t *testing.T) {
			if got := FormatCurrency(tt.value, tt.currency); got != tt.want {
				t.Errorf("FormatCurrency(%q, %s) = %q, want %q", tt.value, tt.currency, got, tt.want)
			}
		})
	}
}

func TestParseCurrency(t *testing.T) {
	c, ok := ParseCurrency(" usd ")
	if !ok || c != CurrencyUSD {
		t.Errorf("ParseCurrency(\" usd \") = %q, %v; want USD, true", c, ok)
	}
	if _, ok := ParseCurrency("BTC"); ok {
		t.Error("ParseCurrency(\"BTC\") ok = true, want false")
	}
}
