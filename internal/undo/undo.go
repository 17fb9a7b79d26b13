// Package undo keeps a bounded linear undo/redo history of expression text.
package undo

// DefaultDepth is the number of snapshots kept on the undo stack.
const DefaultDepth = 50

// History is a pair of snapshot stacks. Recording a new snapshot discards
// any redo frames, so there is only ever one timeline.
//
// History is not safe for concurrent use; session.Session serializes access.
type History struct {
	undoStack []string
	redoStack []string
	depth     int
}

// New creates a History holding at most depth undo frames.
// A non-positive depth selects DefaultDepth.
func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{
		undoStack: make([]string, 0, depth),
		depth:     depth,
	}
}

// RecordSnapshot saves text as it stood before an edit and clears redo.
func (h *History) RecordSnapshot(text string) {
	h.pushUndo(text)
	h.redoStack = h.redoStack[:0]
}

// Undo pops the latest snapshot and parks current on the redo stack.
// It reports false, changing nothing, when there is nothing to undo.
func (h *History) Undo(current string) (string, bool) {
	if len(h.undoStack) == 0 {
		return "", false
	}
	prev := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return prev, true
}

// Redo pops the latest redo frame and pushes current back onto undo.
func (h *History) Redo(current string) (string, bool) {
	if len(h.redoStack) == 0 {
		return "", false
	}
	next := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.pushUndo(current)
	return next, true
}

// CanUndo reports whether Undo would change anything.
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo reports whether Redo would change anything.
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// UndoDepth returns the number of undo frames held.
func (h *History) UndoDepth() int { return len(h.undoStack) }

// RedoDepth returns the number of redo frames held.
func (h *History) RedoDepth() int { return len(h.redoStack) }

// pushUndo appends text, evicting the oldest frame beyond depth.
func (h *History) pushUndo(text string) {
	h.undoStack = append(h.undoStack, text)
	if excess := len(h.undoStack) - h.depth; excess > 0 {
		h.undoStack = append(h.undoStack[:0], h.undoStack[excess:]...)
	}
}
