package imageproc

import (
	"image"

	"github.com/disintegration/imaging"
)

// Fit downscales img so it fits into maxW x maxH keeping the aspect ratio.
// A non-positive bound leaves that axis unconstrained; images are never upscaled.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	switch {
	case maxW > 0 && maxH > 0:
		if b.Dx() <= maxW && b.Dy() <= maxH {
			return img
		}
		return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	case maxW > 0 && b.Dx() > maxW:
		return imaging.Resize(img, maxW, 0, imaging.Lanczos) // 0 keeps the ratio
	case maxH > 0 && b.Dy() > maxH:
		return imaging.Resize(img, 0, maxH, imaging.Lanczos)
	}
	return img
}
