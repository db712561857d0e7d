package history

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

// AddItem places an item on a track; undo removes it again.
type AddItem struct {
	TrackID uuid.UUID
	Item    *timeline.Item
}

func (c *AddItem) Execute(tl *timeline.Timeline) error {
	return tl.AddItem(c.TrackID, c.Item)
}

func (c *AddItem) Undo(tl *timeline.Timeline) error {
	_, err := tl.RemoveItem(c.Item.ID)
	return err
}

func (c *AddItem) Description() string { return "Add clip" }

// RemoveItem deletes an item; undo puts it back on its original track.
type RemoveItem struct {
	ItemID uuid.UUID

	removed *timeline.Item
	trackID uuid.UUID
}

func (c *RemoveItem) Execute(tl *timeline.Timeline) error {
	_, tr, ok := tl.FindItem(c.ItemID)
	if !ok {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, c.ItemID)
	}
	it, err := tl.RemoveItem(c.ItemID)
	if err != nil {
		return err
	}
	c.removed = it
	c.trackID = tr.ID
	return nil
}

func (c *RemoveItem) Undo(tl *timeline.Timeline) error {
	return tl.AddItem(c.trackID, c.removed)
}

func (c *RemoveItem) Description() string { return "Remove clip" }

// MoveItem repositions an item within its track; undo restores the previous
// start.
type MoveItem struct {
	ItemID   uuid.UUID
	NewStart timeline.TimeUs

	oldStart timeline.TimeUs
}

func (c *MoveItem) Execute(tl *timeline.Timeline) error {
	it, _, ok := tl.FindItem(c.ItemID)
	if !ok {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, c.ItemID)
	}
	c.oldStart = it.Start
	return tl.MoveItem(c.ItemID, c.NewStart)
}

func (c *MoveItem) Undo(tl *timeline.Timeline) error {
	return tl.MoveItem(c.ItemID, c.oldStart)
}

func (c *MoveItem) Description() string { return "Move clip" }

// TrimIn adjusts an item's left edge; undo restores the previous in-point
// (or start, for overlays).
type TrimIn struct {
	ItemID uuid.UUID
	NewIn  timeline.TimeUs

	oldIn timeline.TimeUs
}

func (c *TrimIn) Execute(tl *timeline.Timeline) error {
	it, _, ok := tl.FindItem(c.ItemID)
	if !ok {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, c.ItemID)
	}
	if it.IsClip() {
		c.oldIn = it.SourceIn
	} else {
		c.oldIn = it.Start
	}
	return tl.TrimIn(c.ItemID, c.NewIn)
}

func (c *TrimIn) Undo(tl *timeline.Timeline) error {
	return tl.TrimIn(c.ItemID, c.oldIn)
}

func (c *TrimIn) Description() string { return "Trim in-point" }

// TrimOut adjusts an item's right edge; undo restores the previous out-point
// (or end, for overlays).
type TrimOut struct {
	ItemID uuid.UUID
	NewOut timeline.TimeUs

	oldOut timeline.TimeUs
}

func (c *TrimOut) Execute(tl *timeline.Timeline) error {
	it, _, ok := tl.FindItem(c.ItemID)
	if !ok {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, c.ItemID)
	}
	if it.IsClip() {
		c.oldOut = it.SourceOut
	} else {
		c.oldOut = it.End()
	}
	return tl.TrimOut(c.ItemID, c.NewOut)
}

func (c *TrimOut) Undo(tl *timeline.Timeline) error {
	return tl.TrimOut(c.ItemID, c.oldOut)
}

func (c *TrimOut) Description() string { return "Trim out-point" }

// Split cuts an item in two; undo removes the right half and restores the
// left half to its pre-split shape.
type Split struct {
	ItemID uuid.UUID
	At     timeline.TimeUs

	original *timeline.Item
	rightID  uuid.UUID
}

func (c *Split) Execute(tl *timeline.Timeline) error {
	it, _, ok := tl.FindItem(c.ItemID)
	if !ok {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, c.ItemID)
	}
	c.original = it.Clone()
	right, err := tl.SplitAt(c.ItemID, c.At)
	if err != nil {
		return err
	}
	c.rightID = right.ID
	return nil
}

func (c *Split) Undo(tl *timeline.Timeline) error {
	if _, err := tl.RemoveItem(c.rightID); err != nil {
		return err
	}
	it, _, ok := tl.FindItem(c.ItemID)
	if !ok {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, c.ItemID)
	}
	*it = *c.original
	return nil
}

func (c *Split) Description() string { return "Split clip" }

// MoveToTrack relocates an item onto another track; undo moves it back to
// its original track and position.
type MoveToTrack struct {
	ItemID        uuid.UUID
	TargetTrackID uuid.UUID
	NewStart      timeline.TimeUs

	oldTrackID uuid.UUID
	oldStart   timeline.TimeUs
}

func (c *MoveToTrack) Execute(tl *timeline.Timeline) error {
	it, tr, ok := tl.FindItem(c.ItemID)
	if !ok {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, c.ItemID)
	}
	c.oldTrackID = tr.ID
	c.oldStart = it.Start
	return tl.MoveItemToTrack(c.ItemID, c.TargetTrackID, c.NewStart)
}

func (c *MoveToTrack) Undo(tl *timeline.Timeline) error {
	return tl.MoveItemToTrack(c.ItemID, c.oldTrackID, c.oldStart)
}

func (c *MoveToTrack) Description() string { return "Move clip to track" }
