package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sample_rate"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// ProbeFile runs ffprobe on a media file and parses the stream properties.
func (r *Runner) ProbeFile(ctx context.Context, path string) (timeline.ProbeResult, error) {
	if _, err := os.Stat(path); err != nil {
		return timeline.ProbeResult{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	cmd := exec.CommandContext(ctx, r.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return timeline.ProbeResult{}, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return timeline.ProbeResult{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	return parseProbeOutput(&probe), nil
}

// ImportAsset probes a media file and wraps it as a project asset.
func (r *Runner) ImportAsset(ctx context.Context, path string) (timeline.Asset, error) {
	probe, err := r.ProbeFile(ctx, path)
	if err != nil {
		return timeline.Asset{}, err
	}

	r.logger.Info().
		Str("path", path).
		Str("duration", probe.Duration.String()).
		Msg("imported asset")

	return timeline.Asset{
		ID:    uuid.New(),
		Path:  path,
		Name:  filepath.Base(path),
		Kind:  detectAssetKind(path, probe),
		Probe: probe,
	}, nil
}

func parseProbeOutput(probe *ffprobeOutput) timeline.ProbeResult {
	var video, audio *ffprobeStream
	for i := range probe.Streams {
		s := &probe.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil {
				video = s
			}
		case "audio":
			if audio == nil {
				audio = s
			}
		}
	}

	var result timeline.ProbeResult
	if secs, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		result.Duration = timeline.FromSeconds(secs)
	}
	if video != nil {
		result.Width = video.Width
		result.Height = video.Height
		if fps, ok := parseFrameRate(video.RFrameRate); ok {
			result.FrameRate = fps
		}
		result.Codec = video.CodecName
	}
	if audio != nil {
		if result.Codec == "" {
			result.Codec = audio.CodecName
		}
		result.AudioChannels = audio.Channels
		result.SampleRate, _ = strconv.Atoi(audio.SampleRate)
	}
	return result
}

// parseFrameRate handles ffprobe rate strings like "30000/1001" or "29.97".
func parseFrameRate(rate string) (float64, bool) {
	if num, den, ok := strings.Cut(rate, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	f, err := strconv.ParseFloat(rate, 64)
	return f, err == nil
}

// detectAssetKind classifies by extension first, falling back to probe data
// for containers that could hold either.
func detectAssetKind(path string, probe timeline.ProbeResult) timeline.AssetKind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "jpg", "jpeg", "gif", "bmp", "webp", "tiff", "svg":
		return timeline.AssetImage
	case "mp3", "wav", "flac", "aac", "ogg", "m4a", "wma":
		return timeline.AssetAudio
	}
	if probe.Width > 0 && probe.Height > 0 {
		return timeline.AssetVideo
	}
	if probe.AudioChannels > 0 {
		return timeline.AssetAudio
	}
	return timeline.AssetVideo
}
