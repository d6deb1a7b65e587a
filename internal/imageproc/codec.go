package imageproc

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

func Decode(r io.Reader) (image.Image, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrResourceUnavailable)
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %w", ErrResourceUnavailable, err)
	}
	return img, nil
}

func Encode(w io.Writer, img image.Image, format imaging.Format) error {
	if w == nil {
		return fmt.Errorf("%w: nil writer", ErrEncode)
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// Open decodes the image file at path, honouring EXIF orientation.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", ErrResourceUnavailable, path, err)
	}
	return img, nil
}

// Save encodes img to path; the format follows the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("%w: save %q: %w", ErrEncode, path, err)
	}
	return nil
}
