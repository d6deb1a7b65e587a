package imageproc

import "errors"

var (
	ErrConfiguration       = errors.New("invalid watermark configuration")
	ErrDimensionMismatch   = errors.New("dimensions of images should match")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrEncode              = errors.New("failed to encode image")
	ErrCanvasTooSmall      = errors.New("canvas does not cover target")
)
