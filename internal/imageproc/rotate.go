package imageproc

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// fitTolerance absorbs floating point noise so that exact extents are not rounded up.
const fitTolerance = 1e-9

// FitCanvasSize returns the smallest canvas that, rotated by degrees about its own
// centre, still covers a w x h rectangle sharing that centre.
func FitCanvasSize(w, h int, degrees float64) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	fw, fh := float64(w), float64(h)
	rot := RotateAbout(radians(degrees), fw/2, fh/2)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, x := range []float64{0, fw} {
		for _, y := range []float64{0, fh} {
			px, py := rot.Apply(x, y)
			minX, maxX = math.Min(minX, px), math.Max(maxX, px)
			minY, maxY = math.Min(minY, py), math.Max(maxY, py)
		}
	}

	return int(math.Ceil(maxX - minX - fitTolerance)), int(math.Ceil(maxY - minY - fitTolerance))
}

// cropOffset is the top-left corner of the centred w x h crop inside a cw x ch buffer.
func cropOffset(cw, ch, w, h int) image.Point {
	return image.Pt(cw/2-w/2, ch/2-h/2)
}

// canvasToTarget maps canvas coordinates to target coordinates: rotation about the
// canvas centre followed by the centred crop.
func canvasToTarget(canvas image.Rectangle, degrees float64, w, h int) Projection {
	cw, ch := canvas.Dx(), canvas.Dy()
	off := cropOffset(cw, ch, w, h)
	cx := float64(canvas.Min.X) + float64(cw)/2
	cy := float64(canvas.Min.Y) + float64(ch)/2

	return Translate(-float64(off.X)-float64(canvas.Min.X), -float64(off.Y)-float64(canvas.Min.Y)).
		Mul(RotateAbout(radians(degrees), cx, cy))
}

// covers reports whether every corner of the target maps back inside the canvas,
// allowing one pixel for the integer crop offset.
func covers(canvas image.Rectangle, s2d Projection, w, h int) bool {
	d2s, ok := s2d.Invert()
	if !ok {
		return false
	}
	minX, minY := float64(canvas.Min.X)-1, float64(canvas.Min.Y)-1
	maxX, maxY := float64(canvas.Max.X)+1, float64(canvas.Max.Y)+1
	for _, x := range []float64{0, float64(w)} {
		for _, y := range []float64{0, float64(h)} {
			sx, sy := d2s.Apply(x, y)
			if sx < minX || sx > maxX || sy < minY || sy > maxY {
				return false
			}
		}
	}
	return true
}

// RotateAndCrop rotates canvas by degrees about its centre and returns the centred
// w x h crop. Pixels rotated in from outside the canvas are black.
func RotateAndCrop(canvas *image.Gray, degrees float64, w, h int, interp Interpolation) (*image.Gray, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d", ErrConfiguration, w, h)
	}

	s2d := canvasToTarget(canvas.Rect, degrees, w, h)
	if !covers(canvas.Rect, s2d, w, h) {
		return nil, fmt.Errorf("%w: canvas %dx%d, target %dx%d at %.2f°",
			ErrCanvasTooSmall, canvas.Rect.Dx(), canvas.Rect.Dy(), w, h, degrees)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	interp.interpolator().Transform(dst, s2d.Aff3(), canvas, canvas.Rect, draw.Src, nil)
	return dst, nil
}
