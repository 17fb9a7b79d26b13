package calc

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hpungsan/tally/internal/record"
)

// Engine owns the live expression text and the result-mode flag.
//
// Engine never records undo snapshots; callers snapshot the text before each
// mutating call. It is not safe for concurrent use.
type Engine struct {
	text       string
	resultMode bool

	now   func() time.Time
	newID func(time.Time) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to timestamp committed records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDSource sets the generator for committed record IDs.
func WithIDSource(newID func(time.Time) string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine returns an engine holding "0".
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		text:  Zero,
		now:   time.Now,
		newID: record.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Text returns the current expression.
func (e *Engine) Text() string { return e.text }

// ResultMode reports whether the text is a just-committed result.
func (e *Engine) ResultMode() bool { return e.resultMode }

// Preview returns the running total of the current text.
func (e *Engine) Preview() string { return Evaluate(e.text) }

// Append applies one keypad token.
//
// After a commit, an operator continues from the result while any other
// token starts a new expression.
func (e *Engine) Append(tok Token) {
	if e.resultMode {
		e.resultMode = false
		if !tok.IsOperator() {
			e.text = Zero
		}
	}
	e.text = appendToken(e.text, tok)
}

func appendToken(text string, tok Token) string {
	switch tok.Kind {
	case KindDigit:
		if text == Zero {
			return tok.Text()
		}
		return text + tok.Text()

	case KindDot:
		if strings.Contains(currentNumber(text), ".") {
			return text
		}
		return text + tok.Text()

	case KindPercent:
		num := currentNumber(text)
		if num == "" || strings.HasSuffix(num, "%") {
			return text
		}
		return text + tok.Text()

	case KindOperator:
		glyph := tok.Text()
		switch {
		case text == Zero && tok.Op == OpSubtract:
			// a minus on an empty display starts a negative number
			return glyph
		case text == string(GlyphSubtract):
			if tok.Op == OpSubtract {
				return text
			}
			return Zero + glyph
		case endsWithOperator(text):
			return dropLastRune(text) + glyph
		}
		return text + glyph
	}
	return text
}

// DeleteLast removes the last character, leaving "0" rather than nothing.
func (e *Engine) DeleteLast() {
	e.text = dropLastRune(e.text)
	if e.text == "" {
		e.text = Zero
	}
}

// Clear resets the expression and leaves result mode.
func (e *Engine) Clear() {
	e.text = Zero
	e.resultMode = false
}

// ToggleSign adds or removes a single leading minus. It does nothing on "0".
func (e *Engine) ToggleSign() {
	if e.text == Zero {
		return
	}
	e.resultMode = false
	if rest, ok := strings.CutPrefix(e.text, string(GlyphSubtract)); ok {
		e.text = rest
		if e.text == "" {
			e.text = Zero
		}
		return
	}
	e.text = string(GlyphSubtract) + e.text
}

// Commit freezes the preview into a history record and shows the result.
func (e *Engine) Commit() (string, record.Record) {
	result := Evaluate(e.text)
	created := e.now()
	rec := record.Record{
		ID:             e.newID(created),
		ExpressionText: e.text,
		ResultText:     result,
		CreatedAt:      created.UnixMilli(),
	}
	e.text = result
	e.resultMode = true
	return result, rec
}

// Load shows a past result as if it had just been committed.
func (e *Engine) Load(result string) {
	e.text = nonEmpty(result)
	e.resultMode = true
}

// Restore replaces the text wholesale, as undo and redo do. The restored
// text is trusted and not evaluated; the engine leaves result mode.
func (e *Engine) Restore(text string) {
	e.text = nonEmpty(text)
	e.resultMode = false
}

// currentNumber returns the text after the last operator glyph.
func currentNumber(text string) string {
	i := strings.LastIndexAny(text, operatorGlyphs)
	if i < 0 {
		return text
	}
	_, size := utf8.DecodeRuneInString(text[i:])
	return text[i+size:]
}

// endsWithOperator reports whether text ends in a binary operator glyph.
func endsWithOperator(text string) bool {
	r, _ := utf8.DecodeLastRuneInString(text)
	return strings.ContainsRune(operatorGlyphs, r)
}

func dropLastRune(text string) string {
	_, size := utf8.DecodeLastRuneInString(text)
	return text[:len(text)-size]
}

func nonEmpty(text string) string {
	if text == "" {
		return Zero
	}
	return text
}
