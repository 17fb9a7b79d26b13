package calc

import (
	"regexp"
	"testing"
)

var previewShape = regexp.MustCompile(`^-?\d+\.\d{2}$`)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"zero", "0", "0.00"},
		{"empty", "", "0.00"},
		{"single number", "42", "42.00"},
		{"sum of products", "5*3+2", "17.00"},
		{"chained factors", "5*3*2+1*4", "34.00"},
		{"display glyphs", "5×3+2", "17.00"},
		{"x as multiply", "5x3", "15.00"},
		{"whitespace ignored", " 5 * 3 + 2 ", "17.00"},
		{"dangling multiply", "5*", "0.00"},
		{"dangling divide", "5÷", "0.00"},
		{"dangling term among complete ones", "5*3+2*", "15.00"},
		{"trailing plus", "5+", "5.00"},
		{"leading plus", "+5", "5.00"},
		{"lone operator", "×", "0.00"},
		{"negative term", "-5+10", "5.00"},
		{"negative zero", "-0", "0.00"},
		{"decimal", "2.5*4", "10.00"},
		{"leading dot", ".5+.25", "0.75"},
		{"trailing dot", "5.", "5.00"},
		{"rounding", "0.125+0.001", "0.13"},
		{"division not applied", "10*4÷2", "40.00"},
		{"division in price", "10÷2", "10.00"},
		{"division chain", "10÷2÷5", "10.00"},
		{"subtraction not binary", "5-3", "5.00"},
		{"subtraction beside valid term", "5-3+2", "7.00"},
		{"subtraction in quantity", "5×3-2", "15.00"},
		{"trailing minus keeps total", "12-", "12.00"},
		{"negative quantity", "3×-2", "-6.00"},
		{"minus after sign", "--5", "0.00"},
		{"multi dot price", "1.2.3", "0.00"},
		{"multi dot quantity is identity", "4*1.2.3", "4.00"},
		{"multi dot before divide", "1.2.3÷2", "0.00"},
		{"percent is display only", "15%", "15.00"},
		{"percent quantity", "200*15%", "3000.00"},
		{"double percent", "200*15%%", "3000.00"},
		{"percent without number", "%5", "0.00"},
		{"garbage", "abc", "0.00"},
		{"garbage quantity", "7*abc", "7.00"},
		{"overflow", "1" + repeat("0", 300) + "*1" + repeat("0", 300), "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.expr)
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluate_AlwaysTwoDecimals(t *testing.T) {
	inputs := []string{
		"", "0", "-", "+", "×", "÷", ".", "%", "5", "5.", "-5", "5×", "5÷", "5+", "5-",
		"5×3+2", "0.1+0.2", "99999999999×99999999999", "1.2.3×4", "--5", "5%×", "0÷0",
		"17.00+", "-17.00×2", "3×-2", "%5", "5..", "1e5", "NaN", "Inf",
	}
	for _, in := range inputs {
		got := Evaluate(in)
		if !previewShape.MatchString(got) {
			t.Errorf("Evaluate(%q) = %q, does not match %s", in, got, previewShape)
		}
	}
}

func TestEvaluate_RejectsNonDecimalLiterals(t *testing.T) {
	// strconv accepts these; the keypad grammar does not.
	for _, in := range []string{"1e5", "NaN", "Inf", "0x10", "1_000"} {
		if got := Evaluate(in); got != ZeroPreview {
			t.Errorf("Evaluate(%q) = %q, want %q", in, got, ZeroPreview)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5*3", "5×3"},
		{"10/2", "10÷2"},
		{"5 − 3", "5-3"},
		{"1 2 + 3", "12+3"},
		{"5×3", "5×3"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for range n {
		out = append(out, s...)
	}
	return string(out)
}
