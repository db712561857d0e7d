package render

import "errors"

var (
	ErrNoClips        = errors.New("no video clips to render")
	ErrAssetNotFound  = errors.New("asset not found")
	ErrFileNotFound   = errors.New("file not found")
	ErrFFmpegNotFound = errors.New("ffmpeg not found")
	ErrFFmpegFailed   = errors.New("ffmpeg failed")
)
