package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// itemsOverlap reports whether two half-open spans [Start, End) intersect.
// Touching endpoints do not overlap.
func itemsOverlap(a, b *Item) bool {
	return a.Start < b.End() && b.Start < a.End()
}

// firstOverlap returns an item in the track that overlaps it, excluding the
// item itself.
func firstOverlap(tr *Track, it *Item) *Item {
	for _, other := range tr.Items {
		if other.ID == it.ID {
			continue
		}
		if itemsOverlap(it, other) {
			return other
		}
	}
	return nil
}

// AddItem places an item on a track. Fails if the track does not exist or
// the item would overlap an existing one.
func (tl *Timeline) AddItem(trackID uuid.UUID, it *Item) error {
	tr, ok := tl.Track(trackID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}
	if other := firstOverlap(tr, it); other != nil {
		return fmt.Errorf("%w: %s overlaps %s", ErrOverlapDetected, it.ID, other.ID)
	}
	it.TrackID = tr.ID
	tr.Items = append(tr.Items, it)
	return nil
}

// RemoveItem removes an item from whichever track holds it and returns it.
func (tl *Timeline) RemoveItem(itemID uuid.UUID) (*Item, error) {
	for _, tr := range tl.Tracks {
		for i, it := range tr.Items {
			if it.ID == itemID {
				tr.Items = append(tr.Items[:i], tr.Items[i+1:]...)
				return it, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}

// MoveItem repositions an item within its track. If the new position would
// overlap, the item is restored to its previous position and slot.
func (tl *Timeline) MoveItem(itemID uuid.UUID, newStart TimeUs) error {
	for _, tr := range tl.Tracks {
		for i, it := range tr.Items {
			if it.ID != itemID {
				continue
			}
			oldStart := it.Start
			tr.Items = append(tr.Items[:i], tr.Items[i+1:]...)
			it.Start = newStart
			if other := firstOverlap(tr, it); other != nil {
				it.Start = oldStart
				tr.Items = append(tr.Items, nil)
				copy(tr.Items[i+1:], tr.Items[i:])
				tr.Items[i] = it
				return fmt.Errorf("%w: %s overlaps %s", ErrOverlapDetected, it.ID, other.ID)
			}
			tr.Items = append(tr.Items, it)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}

// TrimIn adjusts the left edge of an item. For clips the in-point moves while
// the right edge stays anchored; for overlays the start moves and the length
// shrinks or grows to keep the end fixed.
func (tl *Timeline) TrimIn(itemID uuid.UUID, newIn TimeUs) error {
	it, tr, ok := tl.FindItem(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if it.IsClip() {
		if newIn >= it.SourceOut {
			return fmt.Errorf("%w: in-point %s not before out-point %s", ErrInvalidOperation, newIn, it.SourceOut)
		}
		oldEnd := it.End()
		it.SourceIn = newIn
		it.Start = oldEnd - (it.SourceOut - newIn)
	} else {
		end := it.End()
		if newIn >= end {
			return fmt.Errorf("%w: new start %s not before end %s", ErrInvalidOperation, newIn, end)
		}
		it.Length = end - newIn
		it.Start = newIn
	}
	if other := firstOverlap(tr, it); other != nil {
		return fmt.Errorf("%w: %s overlaps %s", ErrOverlapDetected, it.ID, other.ID)
	}
	return nil
}

// TrimOut adjusts the right edge of an item. The start stays fixed.
func (tl *Timeline) TrimOut(itemID uuid.UUID, newOut TimeUs) error {
	it, tr, ok := tl.FindItem(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if it.IsClip() {
		if newOut <= it.SourceIn {
			return fmt.Errorf("%w: out-point %s not after in-point %s", ErrInvalidOperation, newOut, it.SourceIn)
		}
		it.SourceOut = newOut
	} else {
		if newOut <= it.Start {
			return fmt.Errorf("%w: new end %s not after start %s", ErrInvalidOperation, newOut, it.Start)
		}
		it.Length = newOut - it.Start
	}
	if other := firstOverlap(tr, it); other != nil {
		return fmt.Errorf("%w: %s overlaps %s", ErrOverlapDetected, it.ID, other.ID)
	}
	return nil
}

// SplitAt cuts an item at timeline position t into two contiguous items.
// The left half keeps the original ID and occupies [Start, t); the right half
// gets a fresh ID and occupies [t, End). Returns the right half. t must fall
// strictly inside the item.
func (tl *Timeline) SplitAt(itemID uuid.UUID, t TimeUs) (*Item, error) {
	it, tr, ok := tl.FindItem(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if t <= it.Start || t >= it.End() {
		return nil, fmt.Errorf("%w: split point %s outside (%s, %s)", ErrInvalidOperation, t, it.Start, it.End())
	}

	right := it.Clone()
	right.ID = uuid.New()
	right.Start = t
	if it.IsClip() {
		splitSource := it.SourceIn + (t - it.Start)
		it.SourceOut = splitSource
		right.SourceIn = splitSource
	} else {
		end := it.End()
		it.Length = t - it.Start
		right.Length = end - t
	}

	for i, cur := range tr.Items {
		if cur.ID == it.ID {
			tr.Items = append(tr.Items, nil)
			copy(tr.Items[i+2:], tr.Items[i+1:])
			tr.Items[i+1] = right
			break
		}
	}
	return right, nil
}

// ReorderItem moves an item to a new index within its track's sequence. The
// sequence index carries no timeline meaning, but layering tracks paint in
// slice order.
func (tl *Timeline) ReorderItem(itemID uuid.UUID, newIndex int) error {
	_, tr, ok := tl.FindItem(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if newIndex < 0 || newIndex >= len(tr.Items) {
		return fmt.Errorf("%w: index %d out of range for %d items", ErrInvalidOperation, newIndex, len(tr.Items))
	}
	var from int
	for i, it := range tr.Items {
		if it.ID == itemID {
			from = i
			break
		}
	}
	it := tr.Items[from]
	tr.Items = append(tr.Items[:from], tr.Items[from+1:]...)
	tr.Items = append(tr.Items, nil)
	copy(tr.Items[newIndex+1:], tr.Items[newIndex:])
	tr.Items[newIndex] = it
	return nil
}

// MoveItemToTrack moves an item to another track at a new start position.
// On overlap in the target track the item is restored to its original track
// and position.
func (tl *Timeline) MoveItemToTrack(itemID, targetTrackID uuid.UUID, newStart TimeUs) error {
	target, ok := tl.Track(targetTrackID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, targetTrackID)
	}
	for _, tr := range tl.Tracks {
		for i, it := range tr.Items {
			if it.ID != itemID {
				continue
			}
			oldStart := it.Start
			tr.Items = append(tr.Items[:i], tr.Items[i+1:]...)
			it.Start = newStart
			if other := firstOverlap(target, it); other != nil {
				it.Start = oldStart
				tr.Items = append(tr.Items, nil)
				copy(tr.Items[i+1:], tr.Items[i:])
				tr.Items[i] = it
				return fmt.Errorf("%w: %s overlaps %s", ErrOverlapDetected, it.ID, other.ID)
			}
			it.TrackID = target.ID
			target.Items = append(target.Items, it)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}
