package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ProjectExt is the on-disk extension for saved projects.
const ProjectExt = ".forgecut"

// Settings are the output parameters a project renders to.
type Settings struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FrameRate       float64 `json:"frame_rate"`
	AudioSampleRate int     `json:"audio_sample_rate"`
}

// Preset returns the settings for a named preset, or false if unknown.
// Known presets: 1080p, 1080p60, 720p, 4k, shorts.
func Preset(name string) (Settings, bool) {
	switch name {
	case "1080p":
		return Settings{Width: 1920, Height: 1080, FrameRate: 30, AudioSampleRate: 48000}, true
	case "1080p60":
		return Settings{Width: 1920, Height: 1080, FrameRate: 60, AudioSampleRate: 48000}, true
	case "720p":
		return Settings{Width: 1280, Height: 720, FrameRate: 30, AudioSampleRate: 48000}, true
	case "4k":
		return Settings{Width: 3840, Height: 2160, FrameRate: 30, AudioSampleRate: 48000}, true
	case "shorts":
		return Settings{Width: 1080, Height: 1920, FrameRate: 30, AudioSampleRate: 48000}, true
	}
	return Settings{}, false
}

// Project bundles a timeline with its assets and output settings.
type Project struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Settings Settings  `json:"settings"`
	Assets   []Asset   `json:"assets"`
	Timeline *Timeline `json:"timeline"`
}

// NewProject creates an empty project with the given settings.
func NewProject(name string, settings Settings) *Project {
	return &Project{
		ID:       uuid.New(),
		Name:     name,
		Settings: settings,
		Assets:   []Asset{},
		Timeline: NewTimeline(),
	}
}

// InitDefaultTracks seeds the standard editing scaffold: one track of each
// kind. No-op if the timeline already has tracks.
func (p *Project) InitDefaultTracks() {
	if len(p.Timeline.Tracks) > 0 {
		return
	}
	p.Timeline.Tracks = []*Track{
		NewTrack("Video 1", TrackVideo),
		NewTrack("Audio 1", TrackAudio),
		NewTrack("Images", TrackOverlayImage),
		NewTrack("Text", TrackOverlayText),
	}
}

// AssetByID looks up an imported asset.
func (p *Project) AssetByID(id uuid.UUID) (*Asset, bool) {
	for i := range p.Assets {
		if p.Assets[i].ID == id {
			return &p.Assets[i], true
		}
	}
	return nil, false
}

// AddAsset registers an imported asset.
func (p *Project) AddAsset(a Asset) {
	p.Assets = append(p.Assets, a)
}

// RemoveAsset drops an asset from the pool. Items referencing it are left in
// place; the compiler reports them when the project is rendered.
func (p *Project) RemoveAsset(id uuid.UUID) error {
	for i := range p.Assets {
		if p.Assets[i].ID == id {
			p.Assets = append(p.Assets[:i], p.Assets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrAssetNotFound, id)
}

// Duration is the total span of the project's timeline.
func (p *Project) Duration() TimeUs {
	return p.Timeline.Duration()
}

// Clone returns a deep copy, safe to compile or serialize while the original
// keeps being edited.
func (p *Project) Clone() *Project {
	c := &Project{
		ID:       p.ID,
		Name:     p.Name,
		Settings: p.Settings,
		Assets:   append([]Asset(nil), p.Assets...),
		Timeline: p.Timeline.Clone(),
	}
	return c
}

// Save writes the project as pretty-printed JSON. The .forgecut extension is
// appended if missing.
func (p *Project) Save(path string) error {
	if !strings.HasSuffix(path, ProjectExt) {
		path += ProjectExt
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}

// LoadProject reads a project file written by Save.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project file: %w", err)
	}
	if p.Timeline == nil {
		p.Timeline = NewTimeline()
	}
	return &p, nil
}
