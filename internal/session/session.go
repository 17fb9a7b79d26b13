// Package session serializes keypad input into a single calculator engine
// and its undo history.
package session

import (
	"sync"

	"github.com/hpungsan/tally/internal/calc"
	"github.com/hpungsan/tally/internal/record"
	"github.com/hpungsan/tally/internal/undo"
)

// State is a point-in-time view of a session.
type State struct {
	Text       string `json:"text"`
	Preview    string `json:"preview"`
	ResultMode bool   `json:"result_mode"`
	CanUndo    bool   `json:"can_undo"`
	CanRedo    bool   `json:"can_redo"`
}

// CommitResult is returned by Commit. Callers persist Record.
type CommitResult struct {
	ResultText string        `json:"result"`
	Record     record.Record `json:"record"`
	State      State         `json:"state"`
}

// Session owns one engine and its edit history. All methods are safe for
// concurrent use; each edit snapshots and mutates under one lock.
type Session struct {
	mu      sync.Mutex
	engine  *calc.Engine
	history *undo.History
}

// New creates a session showing "0". undoDepth <= 0 uses undo.DefaultDepth.
func New(undoDepth int, opts ...calc.Option) *Session {
	return &Session{
		engine:  calc.NewEngine(opts...),
		history: undo.New(undoDepth),
	}
}

// Text returns the live expression.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Text()
}

// Preview returns the running total of the live expression.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Preview()
}

// ResultMode reports whether the expression is a just-committed result.
func (s *Session) ResultMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ResultMode()
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Input appends one token.
func (s *Session) Input(tok calc.Token) State {
	return s.edit(func(e *calc.Engine) { e.Append(tok) })
}

// InputAll appends tokens in order, each as its own undoable edit.
func (s *Session) InputAll(tokens []calc.Token) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range tokens {
		s.editLocked(func(e *calc.Engine) { e.Append(tok) })
	}
	return s.stateLocked()
}

// DeleteLast removes the last character.
func (s *Session) DeleteLast() State {
	return s.edit((*calc.Engine).DeleteLast)
}

// Clear resets the expression to "0".
func (s *Session) Clear() State {
	return s.edit((*calc.Engine).Clear)
}

// ToggleSign flips the leading minus.
func (s *Session) ToggleSign() State {
	return s.edit((*calc.Engine).ToggleSign)
}

// Commit evaluates the expression and enters result mode. Undoing a commit
// restores the unevaluated expression.
func (s *Session) Commit() CommitResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		result string
		rec    record.Record
	)
	s.editLocked(func(e *calc.Engine) { result, rec = e.Commit() })
	return CommitResult{ResultText: result, Record: rec, State: s.stateLocked()}
}

// Undo steps back one edit. It reports whether anything changed.
func (s *Session) Undo() (bool, string) {
	changed, st := s.UndoState()
	return changed, st.Text
}

// Redo re-applies one undone edit. It reports whether anything changed.
func (s *Session) Redo() (bool, string) {
	changed, st := s.RedoState()
	return changed, st.Text
}

// UndoState is Undo returning the full state the step produced.
func (s *Session) UndoState() (bool, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.stepLocked(s.history.Undo)
	return changed, s.stateLocked()
}

// RedoState is Redo returning the full state the step produced.
func (s *Session) RedoState() (bool, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.stepLocked(s.history.Redo)
	return changed, s.stateLocked()
}

// stepLocked moves through the edit history with step. s.mu must be held.
func (s *Session) stepLocked(step func(current string) (string, bool)) bool {
	text, ok := step(s.engine.Text())
	if !ok {
		return false
	}
	s.engine.Restore(text)
	return true
}

// LoadFromRecord shows a past result, as an undoable edit.
func (s *Session) LoadFromRecord(rec record.Record) State {
	return s.edit(func(e *calc.Engine) { e.Load(rec.ResultText) })
}

func (s *Session) edit(fn func(*calc.Engine)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editLocked(fn)
	return s.stateLocked()
}

// editLocked applies fn and records the pre-edit text when fn changed it.
// s.mu must be held.
func (s *Session) editLocked(fn func(*calc.Engine)) {
	before := s.engine.Text()
	fn(s.engine)
	if s.engine.Text() != before {
		s.history.RecordSnapshot(before)
	}
}

func (s *Session) stateLocked() State {
	return State{
		Text:       s.engine.Text(),
		Preview:    s.engine.Preview(),
		ResultMode: s.engine.ResultMode(),
		CanUndo:    s.history.CanUndo(),
		CanRedo:    s.history.CanRedo(),
	}
}
