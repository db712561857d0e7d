// Package history provides command-based undo/redo on top of the timeline
// editing operations. Every user edit is wrapped in a Command that knows how
// to reverse itself; the History keeps bounded undo and redo stacks.
package history

import (
	"errors"

	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command is a reversible edit. Execute must capture whatever state Undo
// needs; a Command is only pushed onto the undo stack after Execute succeeds.
type Command interface {
	Execute(tl *timeline.Timeline) error
	Undo(tl *timeline.Timeline) error
	Description() string
}

// History holds the undo and redo stacks for one project.
type History struct {
	undo []Command
	redo []Command
	max  int
}

// New creates a history keeping at most max undoable edits. The oldest edit
// is discarded once the limit is exceeded.
func New(max int) *History {
	return &History{max: max}
}

// Execute runs a command and records it. A failed command leaves both stacks
// untouched; a successful one clears the redo stack.
func (h *History) Execute(tl *timeline.Timeline, cmd Command) error {
	if err := cmd.Execute(tl); err != nil {
		return err
	}
	h.redo = h.redo[:0]
	h.undo = append(h.undo, cmd)
	if len(h.undo) > h.max {
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:len(h.undo)-1]
	}
	return nil
}

// Undo reverses the most recent edit and moves it to the redo stack.
func (h *History) Undo(tl *timeline.Timeline) error {
	if len(h.undo) == 0 {
		return ErrNothingToUndo
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	if err := cmd.Undo(tl); err != nil {
		return err
	}
	h.redo = append(h.redo, cmd)
	return nil
}

// Redo re-applies the most recently undone edit.
func (h *History) Redo(tl *timeline.Timeline) error {
	if len(h.redo) == 0 {
		return ErrNothingToRedo
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	if err := cmd.Execute(tl); err != nil {
		return err
	}
	h.undo = append(h.undo, cmd)
	return nil
}

// CanUndo reports whether an edit can be undone.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether an undone edit can be re-applied.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDescription names the edit Undo would reverse, or "".
func (h *History) UndoDescription() string {
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].Description()
}

// RedoDescription names the edit Redo would re-apply, or "".
func (h *History) RedoDescription() string {
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].Description()
}

// Clear drops both stacks, e.g. after loading a project.
func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}
