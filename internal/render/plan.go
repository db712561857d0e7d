// Package render compiles a project timeline into an ffmpeg invocation and
// drives the ffmpeg/ffprobe binaries: rendering with progress, probing,
// proxies, thumbnails, and waveforms.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

// Plan is a compiled render ready for ffmpeg execution. It is fully
// deterministic given a project, which keeps the compiler testable without
// spawning anything.
type Plan struct {
	Inputs      []Input  `json:"inputs"`
	FilterGraph string   `json:"filter_graph"`
	OutputArgs  []string `json:"output_args"`
	OutputPath  string   `json:"output_path"`
}

// Input is one -i source file, deduplicated by path.
type Input struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
}

// fnum formats a float the shortest way that round-trips, so filter args read
// "trim=start=2.5" rather than "trim=start=2.500000".
func fnum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type inputRegistry struct {
	pathToIndex map[string]int
	inputs      []Input
}

func newInputRegistry() *inputRegistry {
	return &inputRegistry{pathToIndex: map[string]int{}}
}

// register resolves an item's asset and returns the input index for its path,
// adding a new input on first sight.
func (r *inputRegistry) register(p *timeline.Project, it *timeline.Item) (int, error) {
	asset, ok := p.AssetByID(it.AssetID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAssetNotFound, it.AssetID)
	}
	if idx, ok := r.pathToIndex[asset.Path]; ok {
		return idx, nil
	}
	idx := len(r.inputs)
	r.pathToIndex[asset.Path] = idx
	r.inputs = append(r.inputs, Input{Path: asset.Path, Index: idx})
	return idx, nil
}

func sortByStart(items []*timeline.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Start < items[j].Start
	})
}

func itemsOfKind(tracks []*timeline.Track, kind timeline.ItemKind) []*timeline.Item {
	var out []*timeline.Item
	for _, tr := range tracks {
		for _, it := range tr.Items {
			if it.Kind == kind {
				out = append(out, it)
			}
		}
	}
	return out
}

func tracksOfKind(tl *timeline.Timeline, kind timeline.TrackKind) []*timeline.Track {
	var out []*timeline.Track
	for _, tr := range tl.Tracks {
		if tr.Kind == kind {
			out = append(out, tr)
		}
	}
	return out
}

// Compile turns a project into a render plan.
//
// The first video track is the primary: its clips are trimmed and
// concatenated. Clips on further video tracks become picture-in-picture
// overlays; audio tracks are mixed in with amix; image and text overlay
// tracks become overlay/drawtext stages on the concatenated video.
func Compile(p *timeline.Project) (*Plan, error) {
	videoTracks := tracksOfKind(p.Timeline, timeline.TrackVideo)
	if len(videoTracks) == 0 {
		return nil, ErrNoClips
	}

	videoClips := itemsOfKind(videoTracks[:1], timeline.KindVideoClip)
	if len(videoClips) == 0 {
		return nil, ErrNoClips
	}
	sortByStart(videoClips)

	pipClips := itemsOfKind(videoTracks[1:], timeline.KindVideoClip)
	sortByStart(pipClips)

	imageOverlays := itemsOfKind(tracksOfKind(p.Timeline, timeline.TrackOverlayImage), timeline.KindImageOverlay)
	sortByStart(imageOverlays)

	audioClips := itemsOfKind(tracksOfKind(p.Timeline, timeline.TrackAudio), timeline.KindAudioClip)
	sortByStart(audioClips)

	textOverlays := itemsOfKind(tracksOfKind(p.Timeline, timeline.TrackOverlayText), timeline.KindTextOverlay)
	sortByStart(textOverlays)

	// Register inputs, deduplicated by path: primary clips first, then image
	// overlays, PiP clips, and audio clips.
	reg := newInputRegistry()
	for _, group := range [][]*timeline.Item{videoClips, imageOverlays, pipClips, audioClips} {
		for _, it := range group {
			if _, err := reg.register(p, it); err != nil {
				return nil, err
			}
		}
	}

	projW := p.Settings.Width
	projH := p.Settings.Height

	var filters []string

	for i, clip := range videoClips {
		idx := reg.pathToIndex[mustAssetPath(p, clip)]
		start := fnum(clip.SourceIn.Seconds())
		end := fnum(clip.SourceOut.Seconds())

		// An asset probed without dimensions gives no basis for scaling, so it
		// passes through untouched.
		scale := ""
		if asset, ok := p.AssetByID(clip.AssetID); ok {
			pr := asset.Probe
			if (pr.Width != 0 || pr.Height != 0) && (pr.Width != projW || pr.Height != projH) {
				scale = fmt.Sprintf(
					",scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
					projW, projH, projW, projH)
			}
		}

		filters = append(filters,
			fmt.Sprintf("[%d:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS%s[v%d]", idx, start, end, scale, i),
			fmt.Sprintf("[%d:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS[a%d]", idx, start, end, i),
		)
	}

	hasAudioOverlay := len(audioClips) > 0
	hasImageOverlay := len(imageOverlays) > 0
	hasPip := len(pipClips) > 0

	audioOut := "outa"
	if hasAudioOverlay {
		audioOut = "concat_a"
	}
	concatVideoLabel := "outv"
	switch {
	case hasPip:
		concatVideoLabel = "concatv"
	case hasImageOverlay:
		concatVideoLabel = "basev"
	}

	var concatInputs strings.Builder
	for i := range videoClips {
		fmt.Fprintf(&concatInputs, "[v%d][a%d]", i, i)
	}
	filters = append(filters, fmt.Sprintf("%sconcat=n=%d:v=1:a=1[%s][%s]",
		concatInputs.String(), len(videoClips), concatVideoLabel, audioOut))

	if hasPip {
		pipOut := "outv"
		if hasImageOverlay {
			pipOut = "basev"
		}
		filters = append(filters, compilePipOverlays(p, reg, concatVideoLabel, pipOut, pipClips)...)
	}

	if hasAudioOverlay {
		for i, clip := range audioClips {
			idx := reg.pathToIndex[mustAssetPath(p, clip)]
			start := clip.SourceIn.Seconds()
			end := clip.SourceOut.Seconds()
			delayMs := int64(clip.Start) / 1000

			fadeOutStart := end - start - 0.1
			if fadeOutStart < 0 {
				fadeOutStart = 0
			}
			filters = append(filters, fmt.Sprintf(
				"[%d:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS,volume=%s,afade=t=in:d=0.1,afade=t=out:st=%s:d=0.1,adelay=%d|%d[ovla%d]",
				idx, fnum(start), fnum(end), fnum(clip.Volume), fnum(fadeOutStart), delayMs, delayMs, i))
		}

		var amixInputs strings.Builder
		fmt.Fprintf(&amixInputs, "[%s]", audioOut)
		for i := range audioClips {
			fmt.Fprintf(&amixInputs, "[ovla%d]", i)
		}
		filters = append(filters, fmt.Sprintf(
			"%samix=inputs=%d:duration=longest:dropout_transition=0[outa]",
			amixInputs.String(), len(audioClips)+1))
	}

	if hasImageOverlay {
		cur := "basev"
		for i, ov := range imageOverlays {
			idx := reg.pathToIndex[mustAssetPath(p, ov)]
			start := fnum(ov.Start.Seconds())
			end := fnum(ov.End().Seconds())

			scaledLabel := fmt.Sprintf("img_scaled_%d", i)
			alphaLabel := fmt.Sprintf("img_alpha_%d", i)
			next := "outv"
			if i < len(imageOverlays)-1 {
				next = fmt.Sprintf("ov_%d", i)
			}

			filters = append(filters,
				fmt.Sprintf("[%d:v]scale=%d:%d[%s]", idx, ov.Width, ov.Height, scaledLabel),
				fmt.Sprintf("[%s]format=rgba,colorchannelmixer=aa=%s[%s]", scaledLabel, fnum(ov.Opacity), alphaLabel),
				fmt.Sprintf("[%s][%s]overlay=x=%d:y=%d:enable='between(t,%s,%s)'[%s]",
					cur, alphaLabel, ov.X, ov.Y, start, end, next),
			)
			cur = next
		}
	}

	finalVideoLabel := "outv"
	if len(textOverlays) > 0 {
		var drawtext []string
		for _, ov := range textOverlays {
			start := fnum(ov.Start.Seconds())
			end := fnum(ov.End().Seconds())
			escaped := strings.ReplaceAll(ov.Text, "'", `'\''`)
			color := strings.TrimPrefix(ov.Color, "#")
			drawtext = append(drawtext, fmt.Sprintf(
				"drawtext=text='%s':fontsize=%d:fontcolor=0x%s:x=%d:y=%d:enable='between(t,%s,%s)'",
				escaped, ov.FontSize, color, ov.X, ov.Y, start, end))
		}
		filters = append(filters, fmt.Sprintf("[outv]%s[outv_txt]", strings.Join(drawtext, ",")))
		finalVideoLabel = "outv_txt"
	}

	outputArgs := []string{
		"-map", fmt.Sprintf("[%s]", finalVideoLabel),
		"-map", "[outa]",
		"-c:v", "libx264",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "48000",
		"-pix_fmt", "yuv420p",
		"-vsync", "cfr",
		"-r", fnum(p.Settings.FrameRate),
	}

	return &Plan{
		Inputs:      reg.inputs,
		FilterGraph: strings.Join(filters, ";"),
		OutputArgs:  outputArgs,
		OutputPath:  "output.mp4",
	}, nil
}

// compilePipOverlays trims and scales each secondary-track video clip to a
// quarter of the project size and chains it onto the base video in the
// bottom-right corner, 20px from the edges, enabled only for the clip's
// timeline span.
func compilePipOverlays(p *timeline.Project, reg *inputRegistry, baseLabel, outLabel string, pipClips []*timeline.Item) []string {
	pipW := p.Settings.Width / 4
	pipH := p.Settings.Height / 4
	pipX := p.Settings.Width - pipW - 20
	pipY := p.Settings.Height - pipH - 20

	var filters []string
	cur := baseLabel
	for i, clip := range pipClips {
		idx := reg.pathToIndex[mustAssetPath(p, clip)]
		start := clip.SourceIn.Seconds()
		end := clip.SourceOut.Seconds()
		tlStart := clip.Start.Seconds()
		tlEnd := tlStart + (end - start)

		scaledLabel := fmt.Sprintf("pip_scaled_%d", i)
		next := outLabel
		if i < len(pipClips)-1 {
			next = fmt.Sprintf("pip_%d", i)
		}

		filters = append(filters,
			fmt.Sprintf("[%d:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS,scale=%d:%d[%s]",
				idx, fnum(start), fnum(end), pipW, pipH, scaledLabel),
			fmt.Sprintf("[%s][%s]overlay=x=%d:y=%d:enable='between(t,%s,%s)'[%s]",
				cur, scaledLabel, pipX, pipY, fnum(tlStart), fnum(tlEnd), next),
		)
		cur = next
	}
	return filters
}

// mustAssetPath is only called after register() validated the asset.
func mustAssetPath(p *timeline.Project, it *timeline.Item) string {
	asset, _ := p.AssetByID(it.AssetID)
	return asset.Path
}

// BuildArgs assembles the full ffmpeg argument list for a plan.
func BuildArgs(plan *Plan) []string {
	args := []string{"-y"}
	for _, in := range plan.Inputs {
		args = append(args, "-i", in.Path)
	}
	args = append(args, "-filter_complex", plan.FilterGraph)
	args = append(args, plan.OutputArgs...)
	args = append(args, plan.OutputPath)
	return args
}
