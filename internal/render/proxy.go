package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// GenerateProxy transcodes a source video into a 720p H.264 edit proxy at
// <proxyDir>/<assetID>.mp4 and returns its path.
func (r *Runner) GenerateProxy(ctx context.Context, sourcePath, proxyDir, assetID string) (string, error) {
	if err := os.MkdirAll(proxyDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create proxy dir: %w", err)
	}
	output := filepath.Join(proxyDir, assetID+".mp4")

	cmd := exec.CommandContext(ctx, r.ffmpegPath,
		"-y",
		"-i", sourcePath,
		"-vf", "scale=-2:720",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "28",
		"-c:a", "aac",
		"-b:a", "128k",
		output,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: proxy generation for %s: %v", ErrFFmpegFailed, sourcePath, err)
	}

	r.logger.Debug().Str("source", sourcePath).Str("proxy", output).Msg("generated proxy")
	return output, nil
}

// ProxyPath returns the proxy file for an asset if one has been generated.
func ProxyPath(proxyDir, assetID string) (string, bool) {
	path := filepath.Join(proxyDir, assetID+".mp4")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
