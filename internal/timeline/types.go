package timeline

import "github.com/google/uuid"

// TrackKind determines what a track holds and how the compiler treats it.
type TrackKind string

const (
	TrackVideo        TrackKind = "video"
	TrackAudio        TrackKind = "audio"
	TrackOverlayImage TrackKind = "overlay_image"
	TrackOverlayText  TrackKind = "overlay_text"
)

// ItemKind tags the variant of a timeline Item.
type ItemKind string

const (
	KindVideoClip    ItemKind = "video_clip"
	KindAudioClip    ItemKind = "audio_clip"
	KindImageOverlay ItemKind = "image_overlay"
	KindTextOverlay  ItemKind = "text_overlay"
)

// AssetKind classifies an imported media file.
type AssetKind string

const (
	AssetVideo AssetKind = "video"
	AssetAudio AssetKind = "audio"
	AssetImage AssetKind = "image"
)

// Item is a single element placed on a track. It is a tagged union: Kind
// decides which fields are meaningful. Clips (video/audio) reference a source
// window [SourceIn, SourceOut) of an asset; their timeline duration equals the
// window length. Overlays carry an explicit Length instead.
type Item struct {
	ID      uuid.UUID `json:"id"`
	Kind    ItemKind  `json:"kind"`
	TrackID uuid.UUID `json:"track_id,omitempty"`
	AssetID uuid.UUID `json:"asset_id,omitempty"`

	// Timeline position (all kinds).
	Start TimeUs `json:"start_us"`

	// Source window (clips only).
	SourceIn  TimeUs `json:"source_in_us,omitempty"`
	SourceOut TimeUs `json:"source_out_us,omitempty"`

	// Explicit duration (overlays only).
	Length TimeUs `json:"duration_us,omitempty"`

	// Audio gain, 1.0 = unity (clips only).
	Volume float64 `json:"volume,omitempty"`

	// Placement and blending (image overlays).
	X       int     `json:"x,omitempty"`
	Y       int     `json:"y,omitempty"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`

	// Text rendering (text overlays).
	Text     string `json:"text,omitempty"`
	FontSize int    `json:"font_size,omitempty"`
	Color    string `json:"color,omitempty"`
}

// NewVideoClip creates a video clip covering source window [in, out).
func NewVideoClip(assetID uuid.UUID, start, in, out TimeUs) *Item {
	return &Item{
		ID:        uuid.New(),
		Kind:      KindVideoClip,
		AssetID:   assetID,
		Start:     start,
		SourceIn:  in,
		SourceOut: out,
		Volume:    1.0,
	}
}

// NewAudioClip creates an audio clip covering source window [in, out).
func NewAudioClip(assetID uuid.UUID, start, in, out TimeUs) *Item {
	return &Item{
		ID:        uuid.New(),
		Kind:      KindAudioClip,
		AssetID:   assetID,
		Start:     start,
		SourceIn:  in,
		SourceOut: out,
		Volume:    1.0,
	}
}

// NewImageOverlay creates a full-opacity image overlay.
func NewImageOverlay(assetID uuid.UUID, start, length TimeUs) *Item {
	return &Item{
		ID:      uuid.New(),
		Kind:    KindImageOverlay,
		AssetID: assetID,
		Start:   start,
		Length:  length,
		Opacity: 1.0,
	}
}

// NewTextOverlay creates a text overlay with default styling.
func NewTextOverlay(text string, start, length TimeUs) *Item {
	return &Item{
		ID:       uuid.New(),
		Kind:     KindTextOverlay,
		Start:    start,
		Length:   length,
		Text:     text,
		FontSize: 48,
		Color:    "#ffffff",
	}
}

// IsClip reports whether the item references a source window.
func (it *Item) IsClip() bool {
	return it.Kind == KindVideoClip || it.Kind == KindAudioClip
}

// HasAsset reports whether the item references an imported asset.
func (it *Item) HasAsset() bool {
	return it.AssetID != uuid.Nil
}

// Duration is the span the item occupies on the timeline.
func (it *Item) Duration() TimeUs {
	if it.IsClip() {
		return it.SourceOut - it.SourceIn
	}
	return it.Length
}

// End is the exclusive end position on the timeline.
func (it *Item) End() TimeUs {
	return it.Start + it.Duration()
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	c := *it
	return &c
}

// Track is an ordered lane of items. Items within a track must not overlap;
// order within the slice is not guaranteed to match timeline order.
type Track struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Kind  TrackKind `json:"kind"`
	Items []*Item   `json:"items"`
}

// NewTrack creates an empty track.
func NewTrack(name string, kind TrackKind) *Track {
	return &Track{
		ID:    uuid.New(),
		Name:  name,
		Kind:  kind,
		Items: []*Item{},
	}
}

// Marker is a named point of interest on the timeline.
type Marker struct {
	ID    uuid.UUID `json:"id"`
	Time  TimeUs    `json:"time_us"`
	Label string    `json:"label"`
	Color string    `json:"color"`
}

// Timeline is the full arrangement: tracks plus markers.
type Timeline struct {
	Tracks  []*Track `json:"tracks"`
	Markers []Marker `json:"markers"`
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{
		Tracks:  []*Track{},
		Markers: []Marker{},
	}
}

// Track finds a track by ID.
func (tl *Timeline) Track(id uuid.UUID) (*Track, bool) {
	for _, tr := range tl.Tracks {
		if tr.ID == id {
			return tr, true
		}
	}
	return nil, false
}

// FindItem locates an item by ID, returning it together with its track.
func (tl *Timeline) FindItem(id uuid.UUID) (*Item, *Track, bool) {
	for _, tr := range tl.Tracks {
		for _, it := range tr.Items {
			if it.ID == id {
				return it, tr, true
			}
		}
	}
	return nil, nil, false
}

// Duration is the end of the last item across all tracks.
func (tl *Timeline) Duration() TimeUs {
	var max TimeUs
	for _, tr := range tl.Tracks {
		for _, it := range tr.Items {
			if end := it.End(); end > max {
				max = end
			}
		}
	}
	return max
}

// Clone returns a deep copy of the timeline.
func (tl *Timeline) Clone() *Timeline {
	c := &Timeline{
		Tracks:  make([]*Track, len(tl.Tracks)),
		Markers: append([]Marker(nil), tl.Markers...),
	}
	for i, tr := range tl.Tracks {
		ct := &Track{
			ID:    tr.ID,
			Name:  tr.Name,
			Kind:  tr.Kind,
			Items: make([]*Item, len(tr.Items)),
		}
		for j, it := range tr.Items {
			ct.Items[j] = it.Clone()
		}
		c.Tracks[i] = ct
	}
	return c
}

// ProbeResult holds media properties discovered by ffprobe.
type ProbeResult struct {
	Duration      TimeUs  `json:"duration_us"`
	Width         int     `json:"width,omitempty"`
	Height        int     `json:"height,omitempty"`
	FrameRate     float64 `json:"frame_rate,omitempty"`
	Codec         string  `json:"codec,omitempty"`
	AudioChannels int     `json:"audio_channels,omitempty"`
	SampleRate    int     `json:"sample_rate,omitempty"`
}

// Asset is an imported media file referenced by clips.
type Asset struct {
	ID    uuid.UUID   `json:"id"`
	Path  string      `json:"path"`
	Name  string      `json:"name"`
	Kind  AssetKind   `json:"kind"`
	Probe ProbeResult `json:"probe"`
}
