package timeline

import (
	"sort"

	"github.com/google/uuid"
)

// CollectSnapPoints gathers every position a dragged item may snap to: the
// timeline origin, the edges of all items except the one being dragged, and
// all markers. The result is sorted and deduplicated.
func (tl *Timeline) CollectSnapPoints(exclude uuid.UUID) []TimeUs {
	points := []TimeUs{0}
	for _, tr := range tl.Tracks {
		for _, it := range tr.Items {
			if it.ID == exclude {
				continue
			}
			points = append(points, it.Start, it.End())
		}
	}
	for _, m := range tl.Markers {
		points = append(points, m.Time)
	}

	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	deduped := points[:0]
	for i, p := range points {
		if i == 0 || p != points[i-1] {
			deduped = append(deduped, p)
		}
	}
	return deduped
}

// FindSnapPoint returns the nearest snap point within threshold of pos, or
// pos unchanged if none is close enough. On a distance tie the earlier
// candidate wins.
func FindSnapPoint(pos TimeUs, points []TimeUs, threshold TimeUs) TimeUs {
	best := pos
	bestDist := threshold + 1
	for _, p := range points {
		if d := (pos - p).Abs(); d < bestDist {
			bestDist = d
			best = p
		}
	}
	if bestDist <= threshold {
		return best
	}
	return pos
}
