package calc

import (
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/tally/internal/errors"
)

// Operator glyphs as they appear in expression text.
const (
	GlyphAdd      = '+'
	GlyphSubtract = '-'
	GlyphMultiply = '×'
	GlyphDivide   = '÷'
)

// operatorGlyphs lists every binary operator glyph, for strings.*Any lookups.
const operatorGlyphs = "+-×÷"

// Op is a binary operator.
type Op int

const (
	OpAdd Op = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
)

// Glyph returns the character the operator is written as.
func (o Op) Glyph() rune {
	switch o {
	case OpAdd:
		return GlyphAdd
	case OpSubtract:
		return GlyphSubtract
	case OpMultiply:
		return GlyphMultiply
	case OpDivide:
		return GlyphDivide
	}
	return utf8.RuneError
}

// String returns the operator name.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	}
	return "unknown"
}

// Kind classifies a Token.
type Kind int

const (
	KindDigit Kind = iota + 1
	KindDot
	KindPercent
	KindOperator
)

// String returns the kind name, used as a metrics label.
func (k Kind) String() string {
	switch k {
	case KindDigit:
		return "digit"
	case KindDot:
		return "dot"
	case KindPercent:
		return "percent"
	case KindOperator:
		return "operator"
	}
	return "unknown"
}

// Token is one keypad press.
type Token struct {
	Kind  Kind
	Digit byte // '0'..'9' when Kind is KindDigit
	Op    Op   // set when Kind is KindOperator
}

// Digit returns the token for d, which must be 0..9.
func Digit(d int) Token {
	return Token{Kind: KindDigit, Digit: byte('0' + d)}
}

// Dot returns the decimal point token.
func Dot() Token { return Token{Kind: KindDot} }

// Percent returns the percent token.
func Percent() Token { return Token{Kind: KindPercent} }

// Operator returns the token for a binary operator.
func Operator(op Op) Token { return Token{Kind: KindOperator, Op: op} }

// IsOperator reports whether the token is a binary operator.
func (t Token) IsOperator() bool { return t.Kind == KindOperator }

// Text returns the characters the token appends to an expression.
func (t Token) Text() string {
	switch t.Kind {
	case KindDigit:
		return string(rune(t.Digit))
	case KindDot:
		return "."
	case KindPercent:
		return "%"
	case KindOperator:
		return string(t.Op.Glyph())
	}
	return ""
}

// ParseToken parses a single keypad token. Operators accept both the display
// glyphs and their ASCII forms (* x / −).
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return Token{}, errors.NewInvalidToken(s)
	}
	tok, ok := tokenForRune(r)
	if !ok {
		return Token{}, errors.NewInvalidToken(s)
	}
	return tok, nil
}

// ParseTokens parses a run of keypad presses such as "12×3+4".
// Whitespace is ignored.
func ParseTokens(s string) ([]Token, error) {
	tokens := make([]Token, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		tok, ok := tokenForRune(r)
		if !ok {
			return nil, errors.NewInvalidToken(string(r))
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil, errors.NewInvalidRequest("no tokens given")
	}
	return tokens, nil
}

func tokenForRune(r rune) (Token, bool) {
	switch {
	case r >= '0' && r <= '9':
		return Token{Kind: KindDigit, Digit: byte(r)}, true
	case r == '.':
		return Dot(), true
	case r == '%':
		return Percent(), true
	case r == '+':
		return Operator(OpAdd), true
	case r == '-' || r == '−':
		return Operator(OpSubtract), true
	case r == '*' || r == 'x' || r == 'X' || r == GlyphMultiply:
		return Operator(OpMultiply), true
	case r == '/' || r == GlyphDivide:
		return Operator(OpDivide), true
	}
	return Token{}, false
}
