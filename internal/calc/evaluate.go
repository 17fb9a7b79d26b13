package calc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Zero is the canonical empty expression.
const Zero = "0"

// ZeroPreview is the preview of an empty, incomplete or broken expression.
const ZeroPreview = "0.00"

// glyphReplacer maps ASCII and typographic operator spellings to display glyphs.
var glyphReplacer = strings.NewReplacer(
	"*", string(GlyphMultiply),
	"x", string(GlyphMultiply),
	"X", string(GlyphMultiply),
	"/", string(GlyphDivide),
	"−", string(GlyphSubtract),
)

// numberRegex matches the numeric head of a factor: optional sign and at most
// one decimal point.
var numberRegex = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// factorTail holds the glyphs that end a factor's numeric head. Whatever
// follows is carried in the text but not applied.
const factorTail = "÷-%"

// Normalize rewrites operator glyphs to their display form and drops whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(glyphReplacer.Replace(text)), "")
}

// Evaluate computes the running total of an expression as a two-decimal string.
//
// The grammar is a flat sum of products: terms are separated by "+", factors
// within a term by "×". The first factor of a term is its price and the rest
// are quantities. Evaluation never fails: a term with an unparseable price or a
// dangling trailing "×"/"÷" contributes nothing, an unparseable quantity counts
// as 1. A factor is read up to its first "÷", "-" or "%" after the sign, so
// division and subtraction are never applied and "%" is a display marker.
func Evaluate(text string) (preview string) {
	defer func() {
		if recover() != nil {
			preview = ZeroPreview
		}
	}()

	expr := Normalize(text)
	if expr == "" || expr == Zero {
		return ZeroPreview
	}

	var total float64
	for _, term := range strings.Split(expr, string(GlyphAdd)) {
		if value, ok := evaluateTerm(term); ok {
			total += value
		}
	}
	return formatPreview(total)
}

// evaluateTerm returns the value of one additive term and whether it counts.
func evaluateTerm(term string) (float64, bool) {
	body, dangling := trimDangling(term)
	if body == "" || dangling {
		return 0, false
	}

	factors := strings.Split(body, string(GlyphMultiply))
	value, ok := parseFactor(factors[0])
	if !ok {
		return 0, false
	}
	for _, f := range factors[1:] {
		if qty, ok := parseFactor(f); ok {
			value *= qty
		}
	}
	return value, true
}

// trimDangling strips one trailing "×" or "÷" and reports whether it did.
func trimDangling(term string) (string, bool) {
	for _, g := range []rune{GlyphMultiply, GlyphDivide} {
		if trimmed, ok := strings.CutSuffix(term, string(g)); ok {
			return trimmed, true
		}
	}
	return term, false
}

// parseFactor parses the numeric head of a price or quantity. Multi-dot
// literals and non-decimal spellings are rejected rather than prefix-parsed.
func parseFactor(s string) (float64, bool) {
	sign := ""
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign, s = "-", rest
	}
	if i := strings.IndexAny(s, factorTail); i >= 0 {
		s = s[:i]
	}
	num := sign + s
	if !numberRegex.MatchString(num) {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// formatPreview renders v with exactly two fraction digits.
func formatPreview(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ZeroPreview
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-"+ZeroPreview {
		return ZeroPreview
	}
	return s
}
