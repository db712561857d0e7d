package render

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/nfnt/resize"

	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

// Thumbnail is one extracted frame on an asset's filmstrip.
type Thumbnail struct {
	Time timeline.TimeUs `json:"time_us"`
	Path string          `json:"path"`
}

// ExtractThumbnail grabs a single frame at timeSeconds, scaled to the given
// width with proportional height.
func (r *Runner) ExtractThumbnail(ctx context.Context, sourcePath, outputPath string, timeSeconds float64, width int) error {
	if parent := filepath.Dir(outputPath); parent != "." {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return fmt.Errorf("failed to create thumbnail dir: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, r.ffmpegPath,
		"-y",
		"-ss", fmt.Sprintf("%.3f", timeSeconds),
		"-i", sourcePath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", width),
		"-q:v", "5",
		outputPath,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: thumbnail extraction for %s: %v", ErrFFmpegFailed, sourcePath, err)
	}
	return nil
}

// ExtractThumbnails produces frames at a fixed interval across the asset,
// cached under <cacheDir>/<assetID>/<timeUs>.jpg. Frames already on disk are
// reused.
func (r *Runner) ExtractThumbnails(ctx context.Context, sourcePath, cacheDir, assetID string, duration timeline.TimeUs, interval timeline.TimeUs, width int) ([]Thumbnail, error) {
	assetDir := filepath.Join(cacheDir, assetID)
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache: %w", err)
	}

	var thumbs []Thumbnail
	for t := timeline.TimeUs(0); t < duration; t += interval {
		path := filepath.Join(assetDir, fmt.Sprintf("%d.jpg", int64(t)))
		if _, err := os.Stat(path); err != nil {
			if err := r.ExtractThumbnail(ctx, sourcePath, path, t.Seconds(), width); err != nil {
				return nil, err
			}
		}
		thumbs = append(thumbs, Thumbnail{Time: t, Path: path})
	}
	return thumbs, nil
}

// DownscaleThumbnail re-encodes a cached thumbnail at a smaller width,
// preserving aspect ratio. Zoomed-out timeline strips reuse the cached frames
// instead of hitting ffmpeg again.
func DownscaleThumbnail(srcPath, dstPath string, width int) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open thumbnail: %w", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode thumbnail: %w", err)
	}

	scaled := resize.Resize(uint(width), 0, img, resize.Lanczos3)

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create thumbnail: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, scaled, &jpeg.Options{Quality: 80}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return nil
}
