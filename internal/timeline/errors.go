package timeline

import "errors"

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrTrackNotFound    = errors.New("track not found")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrOverlapDetected  = errors.New("overlap detected")
	ErrInvalidOperation = errors.New("invalid operation")
)
