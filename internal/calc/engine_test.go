package calc

import (
	"testing"
	"time"
)

// press applies a run of keypad characters to e.
func press(t *testing.T, e *Engine, keys string) {
	t.Helper()
	tokens, err := ParseTokens(keys)
	if err != nil {
		t.Fatalf("ParseTokens(%q): %v", keys, err)
	}
	for _, tok := range tokens {
		e.Append(tok)
	}
}

func TestEngine_Append(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want string
	}{
		{"digit replaces zero", "7", "7"},
		{"zero stays single", "00", "0"},
		{"digits concatenate", "123", "123"},
		{"dot keeps leading zero", ".", "0."},
		{"dot then digits", ".5", "0.5"},
		{"second dot ignored", "1.2.3", "1.23"},
		{"dot allowed in next number", "1.2+3.4", "1.2+3.4"},
		{"operator replaces operator", "5+*", "5×"},
		{"divide replaces multiply", "5*/", "5÷"},
		{"minus replaces plus", "5+-", "5-"},
		{"minus on zero starts negative", "-5", "-5"},
		{"minus on lone minus ignored", "--5", "-5"},
		{"plus on lone minus", "-+", "0+"},
		{"operator after zero", "+", "0+"},
		{"percent", "15%", "15%"},
		{"percent needs a number", "5+%", "5+"},
		{"percent not doubled", "15%%", "15%"},
		{"line items", "12*3+4.5*2", "12×3+4.5×2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			press(t, e, tt.keys)
			if got := e.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_NeverTwoAdjacentOperators(t *testing.T) {
	e := NewEngine()
	press(t, e, "5+*/-+*9")
	if got := e.Text(); got != "5×9" {
		t.Errorf("Text() = %q, want %q", got, "5×9")
	}
}

func TestEngine_DeleteLast(t *testing.T) {
	e := NewEngine()
	press(t, e, "5*3")

	e.DeleteLast()
	if got := e.Text(); got != "5×" {
		t.Fatalf("after first delete Text() = %q, want %q", got, "5×")
	}
	e.DeleteLast()
	if got := e.Text(); got != "5" {
		t.Fatalf("after second delete Text() = %q, want %q", got, "5")
	}
	e.DeleteLast()
	if got := e.Text(); got != Zero {
		t.Fatalf("after third delete Text() = %q, want %q", got, Zero)
	}
	e.DeleteLast()
	if got := e.Text(); got != Zero {
		t.Fatalf("delete on zero Text() = %q, want %q", got, Zero)
	}
}

func TestEngine_Clear(t *testing.T) {
	e := NewEngine()
	press(t, e, "5*3")
	e.Commit()

	e.Clear()
	if e.Text() != Zero {
		t.Errorf("Text() = %q, want %q", e.Text(), Zero)
	}
	if e.ResultMode() {
		t.Error("ResultMode() = true after Clear")
	}
}

func TestEngine_ToggleSign(t *testing.T) {
	e := NewEngine()

	e.ToggleSign()
	if e.Text() != Zero {
		t.Fatalf("toggle on zero Text() = %q, want %q", e.Text(), Zero)
	}

	press(t, e, "12+3")
	e.ToggleSign()
	if got := e.Text(); got != "-12+3" {
		t.Fatalf("Text() = %q, want %q", got, "-12+3")
	}
	e.ToggleSign()
	if got := e.Text(); got != "12+3" {
		t.Fatalf("Text() = %q, want %q", got, "12+3")
	}
}

func TestEngine_ToggleSign_LoneMinus(t *testing.T) {
	e := NewEngine()
	press(t, e, "-")
	e.ToggleSign()
	if e.Text() != Zero {
		t.Errorf("Text() = %q, want %q", e.Text(), Zero)
	}
}

func TestEngine_ToggleSign_LeavesResultMode(t *testing.T) {
	e := NewEngine()
	press(t, e, "4*5")
	e.Commit()

	e.ToggleSign()
	if e.ResultMode() {
		t.Error("ResultMode() = true after ToggleSign")
	}
	if got := e.Text(); got != "-20.00" {
		t.Errorf("Text() = %q, want %q", got, "-20.00")
	}
}

func TestEngine_Commit(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(
		WithClock(func() time.Time { return fixed }),
		WithIDSource(func(time.Time) string { return "rec-1" }),
	)
	press(t, e, "5*3+2")

	result, rec := e.Commit()

	if result != "17.00" {
		t.Errorf("result = %q, want %q", result, "17.00")
	}
	if rec.ID != "rec-1" {
		t.Errorf("record ID = %q, want %q", rec.ID, "rec-1")
	}
	if rec.ExpressionText != "5×3+2" {
		t.Errorf("record expression = %q, want %q", rec.ExpressionText, "5×3+2")
	}
	if rec.ResultText != "17.00" {
		t.Errorf("record result = %q, want %q", rec.ResultText, "17.00")
	}
	if rec.CreatedAt != fixed.UnixMilli() {
		t.Errorf("record CreatedAt = %d, want %d", rec.CreatedAt, fixed.UnixMilli())
	}
	if e.Text() != "17.00" {
		t.Errorf("Text() = %q, want %q", e.Text(), "17.00")
	}
	if !e.ResultMode() {
		t.Error("ResultMode() = false after Commit")
	}
}

func TestEngine_Commit_UniqueIDs(t *testing.T) {
	e := NewEngine()
	_, first := e.Commit()
	_, second := e.Commit()
	if first.ID == second.ID {
		t.Errorf("two commits produced the same ID %q", first.ID)
	}
}

func TestEngine_ResultMode_DigitStartsFresh(t *testing.T) {
	e := NewEngine()
	press(t, e, "5*3+2")
	e.Commit()

	press(t, e, "9")
	if got := e.Text(); got != "9" {
		t.Errorf("Text() = %q, want %q", got, "9")
	}
	if e.ResultMode() {
		t.Error("ResultMode() = true after digit")
	}
}

func TestEngine_ResultMode_DotStartsFresh(t *testing.T) {
	e := NewEngine()
	press(t, e, "2.5*2")
	e.Commit()

	press(t, e, ".")
	if got := e.Text(); got != "0." {
		t.Errorf("Text() = %q, want %q", got, "0.")
	}
}

func TestEngine_ResultMode_OperatorContinues(t *testing.T) {
	e := NewEngine()
	press(t, e, "5*3+2")
	e.Commit()

	press(t, e, "+3")
	if got := e.Text(); got != "17.00+3" {
		t.Fatalf("Text() = %q, want %q", got, "17.00+3")
	}

	result, _ := e.Commit()
	if result != "20.00" {
		t.Errorf("second commit = %q, want %q", result, "20.00")
	}
}

func TestEngine_Load(t *testing.T) {
	e := NewEngine()
	press(t, e, "8")

	e.Load("42.50")
	if e.Text() != "42.50" {
		t.Errorf("Text() = %q, want %q", e.Text(), "42.50")
	}
	if !e.ResultMode() {
		t.Error("ResultMode() = false after Load")
	}
}

func TestEngine_Restore(t *testing.T) {
	e := NewEngine()
	e.Commit()

	e.Restore("5×")
	if e.Text() != "5×" {
		t.Errorf("Text() = %q, want %q", e.Text(), "5×")
	}
	if e.ResultMode() {
		t.Error("ResultMode() = true after Restore")
	}

	e.Restore("")
	if e.Text() != Zero {
		t.Errorf("Restore(\"\") Text() = %q, want %q", e.Text(), Zero)
	}
}

func TestEngine_Preview(t *testing.T) {
	e := NewEngine()
	if e.Preview() != ZeroPreview {
		t.Errorf("Preview() = %q, want %q", e.Preview(), ZeroPreview)
	}
	press(t, e, "4.5*2+1")
	if e.Preview() != "10.00" {
		t.Errorf("Preview() = %q, want %q", e.Preview(), "10.00")
	}
}
