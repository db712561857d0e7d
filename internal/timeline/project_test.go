package timeline

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	s, ok := Preset("1080p")
	require.True(t, ok)
	assert.Equal(t, Settings{Width: 1920, Height: 1080, FrameRate: 30, AudioSampleRate: 48000}, s)

	s, ok = Preset("shorts")
	require.True(t, ok)
	assert.Equal(t, 1080, s.Width)
	assert.Equal(t, 1920, s.Height)

	s, ok = Preset("1080p60")
	require.True(t, ok)
	assert.Equal(t, 60.0, s.FrameRate)

	_, ok = Preset("8k")
	assert.False(t, ok)
}

func TestInitDefaultTracks(t *testing.T) {
	s, _ := Preset("1080p")
	p := NewProject("demo", s)
	p.InitDefaultTracks()

	require.Len(t, p.Timeline.Tracks, 4)
	kinds := []TrackKind{}
	for _, tr := range p.Timeline.Tracks {
		kinds = append(kinds, tr.Kind)
	}
	assert.Equal(t, []TrackKind{TrackVideo, TrackAudio, TrackOverlayImage, TrackOverlayText}, kinds)

	// Idempotent.
	p.InitDefaultTracks()
	assert.Len(t, p.Timeline.Tracks, 4)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := Preset("720p")
	p := NewProject("roundtrip", s)
	p.InitDefaultTracks()

	asset := Asset{
		ID:   uuid.New(),
		Path: "/media/intro.mp4",
		Name: "intro.mp4",
		Kind: AssetVideo,
		Probe: ProbeResult{
			Duration:  FromSeconds(30),
			Width:     1920,
			Height:    1080,
			FrameRate: 29.97,
			Codec:     "h264",
		},
	}
	p.AddAsset(asset)

	video := p.Timeline.Tracks[0]
	clip := NewVideoClip(asset.ID, 0, FromSeconds(1), FromSeconds(6))
	require.NoError(t, p.Timeline.AddItem(video.ID, clip))

	path := filepath.Join(t.TempDir(), "roundtrip")
	require.NoError(t, p.Save(path))

	loaded, err := LoadProject(path + ProjectExt)
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, p.Settings, loaded.Settings)
	require.Len(t, loaded.Assets, 1)
	assert.Equal(t, asset.Path, loaded.Assets[0].Path)

	got, _, ok := loaded.Timeline.FindItem(clip.ID)
	require.True(t, ok)
	assert.Equal(t, clip.SourceIn, got.SourceIn)
	assert.Equal(t, clip.SourceOut, got.SourceOut)
	assert.Equal(t, KindVideoClip, got.Kind)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "nope.forgecut"))
	assert.Error(t, err)
}

func TestRemoveAsset(t *testing.T) {
	s, _ := Preset("1080p")
	p := NewProject("demo", s)
	a := Asset{ID: uuid.New(), Path: "/media/a.mp3", Name: "a.mp3", Kind: AssetAudio}
	p.AddAsset(a)

	require.NoError(t, p.RemoveAsset(a.ID))
	assert.Empty(t, p.Assets)
	assert.ErrorIs(t, p.RemoveAsset(a.ID), ErrAssetNotFound)
}

func TestProjectClone(t *testing.T) {
	s, _ := Preset("1080p")
	p := NewProject("demo", s)
	p.InitDefaultTracks()
	video := p.Timeline.Tracks[0]
	clip := NewVideoClip(uuid.New(), 0, 0, FromSeconds(5))
	require.NoError(t, p.Timeline.AddItem(video.ID, clip))

	c := p.Clone()
	require.NoError(t, c.Timeline.MoveItem(clip.ID, FromSeconds(20)))

	// The original is untouched.
	orig, _, ok := p.Timeline.FindItem(clip.ID)
	require.True(t, ok)
	assert.Equal(t, TimeUs(0), orig.Start)
}
