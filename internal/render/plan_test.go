package render

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

func sec(s float64) timeline.TimeUs { return timeline.FromSeconds(s) }

func makeAsset(path string) timeline.Asset {
	return timeline.Asset{
		ID:   uuid.New(),
		Path: path,
		Name: path,
		Kind: timeline.AssetVideo,
		Probe: timeline.ProbeResult{
			Duration:      sec(30),
			Width:         1920,
			Height:        1080,
			FrameRate:     30,
			Codec:         "h264",
			AudioChannels: 2,
			SampleRate:    48000,
		},
	}
}

func makeProject(t *testing.T) *timeline.Project {
	t.Helper()
	settings, _ := timeline.Preset("1080p")
	p := timeline.NewProject("test", settings)
	p.Timeline.Tracks = append(p.Timeline.Tracks, timeline.NewTrack("Video 1", timeline.TrackVideo))
	return p
}

func addClip(t *testing.T, p *timeline.Project, tr *timeline.Track, asset timeline.Asset, start, in, out timeline.TimeUs) *timeline.Item {
	t.Helper()
	clip := timeline.NewVideoClip(asset.ID, start, in, out)
	require.NoError(t, p.Timeline.AddItem(tr.ID, clip))
	return clip
}

func TestCompileEmptyProject(t *testing.T) {
	settings, _ := timeline.Preset("1080p")
	p := timeline.NewProject("empty", settings)

	_, err := Compile(p)
	assert.ErrorIs(t, err, ErrNoClips)

	// A video track with no clips is still empty.
	p.Timeline.Tracks = append(p.Timeline.Tracks, timeline.NewTrack("Video 1", timeline.TrackVideo))
	_, err = Compile(p)
	assert.ErrorIs(t, err, ErrNoClips)
}

func TestCompileOneClip(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	p.AddAsset(asset)
	addClip(t, p, p.Timeline.Tracks[0], asset, 0, sec(1), sec(5))

	plan, err := Compile(p)
	require.NoError(t, err)

	require.Len(t, plan.Inputs, 1)
	assert.Equal(t, "/tmp/clip.mp4", plan.Inputs[0].Path)

	assert.Contains(t, plan.FilterGraph, "trim=start=1:end=5")
	assert.Contains(t, plan.FilterGraph, "setpts=PTS-STARTPTS")
	assert.Contains(t, plan.FilterGraph, "atrim=start=1:end=5")
	assert.Contains(t, plan.FilterGraph, "asetpts=PTS-STARTPTS")
	assert.Contains(t, plan.FilterGraph, "concat=n=1:v=1:a=1[outv][outa]")
}

func TestCompileTwoClips(t *testing.T) {
	p := makeProject(t)
	a1 := makeAsset("/tmp/clip1.mp4")
	a2 := makeAsset("/tmp/clip2.mp4")
	p.AddAsset(a1)
	p.AddAsset(a2)
	tr := p.Timeline.Tracks[0]
	addClip(t, p, tr, a1, 0, 0, sec(3))
	addClip(t, p, tr, a2, sec(3), sec(2), sec(7))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Len(t, plan.Inputs, 2)
	assert.Contains(t, plan.FilterGraph, "concat=n=2:v=1:a=1[outv][outa]")
	assert.Contains(t, plan.FilterGraph, "[v0][a0][v1][a1]")
}

func TestCompilePreservesTrimRanges(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	p.AddAsset(asset)
	addClip(t, p, p.Timeline.Tracks[0], asset, 0, sec(2.5), sec(8.75))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Contains(t, plan.FilterGraph, "trim=start=2.5:end=8.75")
	assert.Contains(t, plan.FilterGraph, "atrim=start=2.5:end=8.75")
}

func TestCompileDeduplicatesSameAsset(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	p.AddAsset(asset)
	tr := p.Timeline.Tracks[0]
	addClip(t, p, tr, asset, 0, 0, sec(3))
	addClip(t, p, tr, asset, sec(3), sec(5), sec(8))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Len(t, plan.Inputs, 1)
	assert.Contains(t, plan.FilterGraph, "concat=n=2:v=1:a=1")
}

func TestCompileClipsSortedByStart(t *testing.T) {
	p := makeProject(t)
	a1 := makeAsset("/tmp/clip1.mp4")
	a2 := makeAsset("/tmp/clip2.mp4")
	p.AddAsset(a1)
	p.AddAsset(a2)
	tr := p.Timeline.Tracks[0]
	// Added out of timeline order.
	addClip(t, p, tr, a2, sec(3), sec(2), sec(7))
	addClip(t, p, tr, a1, 0, 0, sec(3))

	plan, err := Compile(p)
	require.NoError(t, err)

	// The clip at t=0 compiles first, so its source file registers as input 0.
	assert.Equal(t, "/tmp/clip1.mp4", plan.Inputs[0].Path)
	assert.Equal(t, "/tmp/clip2.mp4", plan.Inputs[1].Path)
}

func TestCompileScaleWhenDimensionsDiffer(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/720p.mp4")
	asset.Probe.Width = 1280
	asset.Probe.Height = 720
	p.AddAsset(asset)
	addClip(t, p, p.Timeline.Tracks[0], asset, 0, 0, sec(5))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Contains(t, plan.FilterGraph,
		"scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2")
}

func TestCompileNoScaleWhenDimensionsMatch(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	p.AddAsset(asset)
	addClip(t, p, p.Timeline.Tracks[0], asset, 0, 0, sec(5))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.NotContains(t, plan.FilterGraph, "scale=")
	assert.NotContains(t, plan.FilterGraph, "pad=")
}

func TestCompileScaleFor4kProject(t *testing.T) {
	settings, _ := timeline.Preset("4k")
	p := timeline.NewProject("4k test", settings)
	p.Timeline.Tracks = append(p.Timeline.Tracks, timeline.NewTrack("Video 1", timeline.TrackVideo))
	asset := makeAsset("/tmp/1080p.mp4")
	p.AddAsset(asset)
	addClip(t, p, p.Timeline.Tracks[0], asset, 0, 0, sec(5))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Contains(t, plan.FilterGraph,
		"scale=3840:2160:force_original_aspect_ratio=decrease,pad=3840:2160:(ow-iw)/2:(oh-ih)/2")
}

func TestCompileAudioOverlayUsesAmix(t *testing.T) {
	p := makeProject(t)
	videoAsset := makeAsset("/tmp/clip.mp4")
	audioAsset := timeline.Asset{
		ID:   uuid.New(),
		Path: "/tmp/music.mp3",
		Name: "music.mp3",
		Kind: timeline.AssetAudio,
		Probe: timeline.ProbeResult{
			Duration:      sec(60),
			Codec:         "mp3",
			AudioChannels: 2,
			SampleRate:    44100,
		},
	}
	p.AddAsset(videoAsset)
	p.AddAsset(audioAsset)

	audioTrack := timeline.NewTrack("Audio 1", timeline.TrackAudio)
	p.Timeline.Tracks = append(p.Timeline.Tracks, audioTrack)

	addClip(t, p, p.Timeline.Tracks[0], videoAsset, 0, 0, sec(10))
	music := timeline.NewAudioClip(audioAsset.ID, sec(2), 0, sec(8))
	music.Volume = 0.5
	require.NoError(t, p.Timeline.AddItem(audioTrack.ID, music))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Len(t, plan.Inputs, 2)
	assert.Contains(t, plan.FilterGraph, "amix=inputs=2:duration=longest")
	assert.Contains(t, plan.FilterGraph, "volume=0.5")
	assert.Contains(t, plan.FilterGraph, "afade=t=in:d=0.1")
	assert.Contains(t, plan.FilterGraph, "afade=t=out:")
	assert.Contains(t, plan.FilterGraph, "adelay=2000|2000")
	assert.Contains(t, plan.FilterGraph, "[concat_a]")
}

func TestCompileWithoutAudioOverlayNoAmix(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	p.AddAsset(asset)
	addClip(t, p, p.Timeline.Tracks[0], asset, 0, 0, sec(5))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.NotContains(t, plan.FilterGraph, "amix")
	assert.NotContains(t, plan.FilterGraph, "concat_a")
	assert.Contains(t, plan.FilterGraph, "[outa]")
}

func TestCompilePipOverlay(t *testing.T) {
	p := makeProject(t)
	mainAsset := makeAsset("/tmp/main.mp4")
	pipAsset := makeAsset("/tmp/facecam.mp4")
	p.AddAsset(mainAsset)
	p.AddAsset(pipAsset)

	pipTrack := timeline.NewTrack("Video 2", timeline.TrackVideo)
	p.Timeline.Tracks = append(p.Timeline.Tracks, pipTrack)

	addClip(t, p, p.Timeline.Tracks[0], mainAsset, 0, 0, sec(10))
	addClip(t, p, pipTrack, pipAsset, sec(2), 0, sec(4))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Len(t, plan.Inputs, 2)
	// Concat routes through an intermediate label before the overlay stage.
	assert.Contains(t, plan.FilterGraph, "concat=n=1:v=1:a=1[concatv][outa]")
	// Quarter size, bottom-right with 20px margin on a 1920x1080 project.
	assert.Contains(t, plan.FilterGraph, "scale=480:270[pip_scaled_0]")
	assert.Contains(t, plan.FilterGraph, "overlay=x=1420:y=790:enable='between(t,2,6)'[outv]")
}

func TestCompileImageOverlay(t *testing.T) {
	p := makeProject(t)
	videoAsset := makeAsset("/tmp/clip.mp4")
	imageAsset := timeline.Asset{
		ID:    uuid.New(),
		Path:  "/tmp/logo.png",
		Name:  "logo.png",
		Kind:  timeline.AssetImage,
		Probe: timeline.ProbeResult{Width: 256, Height: 256},
	}
	p.AddAsset(videoAsset)
	p.AddAsset(imageAsset)

	imgTrack := timeline.NewTrack("Images", timeline.TrackOverlayImage)
	p.Timeline.Tracks = append(p.Timeline.Tracks, imgTrack)

	addClip(t, p, p.Timeline.Tracks[0], videoAsset, 0, 0, sec(10))
	logo := timeline.NewImageOverlay(imageAsset.ID, sec(1), sec(5))
	logo.X = 50
	logo.Y = 50
	logo.Width = 200
	logo.Height = 100
	logo.Opacity = 0.8
	require.NoError(t, p.Timeline.AddItem(imgTrack.ID, logo))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Len(t, plan.Inputs, 2)
	assert.Contains(t, plan.FilterGraph, "concat=n=1:v=1:a=1[basev][outa]")
	assert.Contains(t, plan.FilterGraph, "scale=200:100[img_scaled_0]")
	assert.Contains(t, plan.FilterGraph, "format=rgba,colorchannelmixer=aa=0.8[img_alpha_0]")
	assert.Contains(t, plan.FilterGraph, "[basev][img_alpha_0]overlay=x=50:y=50:enable='between(t,1,6)'[outv]")
}

func TestCompileTextOverlay(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	p.AddAsset(asset)

	txtTrack := timeline.NewTrack("Text", timeline.TrackOverlayText)
	p.Timeline.Tracks = append(p.Timeline.Tracks, txtTrack)

	addClip(t, p, p.Timeline.Tracks[0], asset, 0, 0, sec(10))
	title := timeline.NewTextOverlay("it's live", sec(1), sec(3))
	title.X = 100
	title.Y = 200
	title.FontSize = 64
	title.Color = "#ff0000"
	require.NoError(t, p.Timeline.AddItem(txtTrack.ID, title))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.Contains(t, plan.FilterGraph,
		`drawtext=text='it'\''s live':fontsize=64:fontcolor=0xff0000:x=100:y=200:enable='between(t,1,4)'`)
	assert.Contains(t, plan.FilterGraph, "[outv]drawtext")
	assert.Contains(t, plan.FilterGraph, "[outv_txt]")
	assert.Equal(t, "[outv_txt]", plan.OutputArgs[1])
}

func TestCompileMissingAsset(t *testing.T) {
	p := makeProject(t)
	clip := timeline.NewVideoClip(uuid.New(), 0, 0, sec(5))
	require.NoError(t, p.Timeline.AddItem(p.Timeline.Tracks[0].ID, clip))

	_, err := Compile(p)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestCompileOutputArgs(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	p.AddAsset(asset)
	addClip(t, p, p.Timeline.Tracks[0], asset, 0, 0, sec(5))

	plan, err := Compile(p)
	require.NoError(t, err)

	joined := strings.Join(plan.OutputArgs, " ")
	assert.Contains(t, joined, "-map [outv] -map [outa]")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-crf 23")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-pix_fmt yuv420p")
	assert.Contains(t, joined, "-r 30")
}

func TestBuildArgs(t *testing.T) {
	plan := &Plan{
		Inputs: []Input{
			{Path: "/tmp/a.mp4", Index: 0},
			{Path: "/tmp/b.mp4", Index: 1},
		},
		FilterGraph: "[0:v]trim=0:5[v0];[0:a]atrim=0:5[a0];[v0][a0]concat=n=1:v=1:a=1[outv][outa]",
		OutputArgs:  []string{"-map", "[outv]", "-map", "[outa]", "-c:v", "libx264"},
		OutputPath:  "/tmp/out.mp4",
	}

	args := BuildArgs(plan)

	assert.Equal(t, "-y", args[0])
	assert.Contains(t, args, "-i")
	assert.Contains(t, args, "/tmp/a.mp4")
	assert.Contains(t, args, "/tmp/b.mp4")
	assert.Contains(t, args, "-filter_complex")
	assert.Contains(t, args, "[outv]")
	assert.Contains(t, args, "libx264")
	assert.Equal(t, "/tmp/out.mp4", args[len(args)-1])
}

func TestCompileNoScaleForUnprobedAsset(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	asset.Probe.Width = 0
	asset.Probe.Height = 0
	p.AddAsset(asset)
	addClip(t, p, p.Timeline.Tracks[0], asset, 0, 0, sec(5))

	plan, err := Compile(p)
	require.NoError(t, err)

	assert.NotContains(t, plan.FilterGraph, "scale=")
	assert.NotContains(t, plan.FilterGraph, "pad=")
}

func TestCompilePipClipsSortedByStart(t *testing.T) {
	p := makeProject(t)
	main := makeAsset("/tmp/main.mp4")
	late := makeAsset("/tmp/late.mp4")
	early := makeAsset("/tmp/early.mp4")
	p.AddAsset(main)
	p.AddAsset(late)
	p.AddAsset(early)

	pipTrack := timeline.NewTrack("Video 2", timeline.TrackVideo)
	p.Timeline.Tracks = append(p.Timeline.Tracks, pipTrack)

	addClip(t, p, p.Timeline.Tracks[0], main, 0, 0, sec(20))
	// Inserted out of timeline order: the later clip first.
	addClip(t, p, pipTrack, late, sec(10), 0, sec(4))
	addClip(t, p, pipTrack, early, sec(2), 0, sec(4))

	plan, err := Compile(p)
	require.NoError(t, err)

	first := strings.Index(plan.FilterGraph, "enable='between(t,2,6)'")
	second := strings.Index(plan.FilterGraph, "enable='between(t,10,14)'")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
	assert.Contains(t, plan.FilterGraph, "enable='between(t,2,6)'[pip_0]")
	assert.Contains(t, plan.FilterGraph, "enable='between(t,10,14)'[outv]")
}

func TestCompileTextOverlaysSortedByStart(t *testing.T) {
	p := makeProject(t)
	asset := makeAsset("/tmp/clip.mp4")
	p.AddAsset(asset)

	txtTrack := timeline.NewTrack("Text", timeline.TrackOverlayText)
	p.Timeline.Tracks = append(p.Timeline.Tracks, txtTrack)

	addClip(t, p, p.Timeline.Tracks[0], asset, 0, 0, sec(10))
	outro := timeline.NewTextOverlay("outro", sec(8), sec(2))
	intro := timeline.NewTextOverlay("intro", sec(0), sec(2))
	require.NoError(t, p.Timeline.AddItem(txtTrack.ID, outro))
	require.NoError(t, p.Timeline.AddItem(txtTrack.ID, intro))

	plan, err := Compile(p)
	require.NoError(t, err)

	first := strings.Index(plan.FilterGraph, "drawtext=text='intro'")
	second := strings.Index(plan.FilterGraph, "drawtext=text='outro'")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}
