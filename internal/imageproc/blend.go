package imageproc

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Combiner computes the new base pixel at (x, y) from the current base and overlay pixels.
// Implementations must not keep state between calls.
type Combiner interface {
	Combine(x, y int, base, overlay color.Color) color.Color
}

// BlendFunc adapts a plain function to Combiner.
type BlendFunc func(x, y int, base, overlay color.Color) color.Color

func (f BlendFunc) Combine(x, y int, base, overlay color.Color) color.Color {
	return f(x, y, base, overlay)
}

// Lighten keeps the brighter of each base channel and the overlay intensity.
var Lighten Combiner = BlendFunc(func(_, _ int, base, overlay color.Color) color.Color {
	b := color.NRGBAModel.Convert(base).(color.NRGBA)
	m := color.GrayModel.Convert(overlay).(color.Gray).Y
	return color.NRGBA{R: max(b.R, m), G: max(b.G, m), B: max(b.B, m), A: b.A}
})

// DarkenInvert keeps the darker of each base channel and the inverted overlay intensity.
var DarkenInvert Combiner = BlendFunc(func(_, _ int, base, overlay color.Color) color.Color {
	b := color.NRGBAModel.Convert(base).(color.NRGBA)
	m := 255 - color.GrayModel.Convert(overlay).(color.Gray).Y
	return color.NRGBA{R: min(b.R, m), G: min(b.G, m), B: min(b.B, m), A: b.A}
})

// Blend replaces every pixel of base with c.Combine applied to the base and overlay
// pixels at the same position. Both images must have the same size, base is left
// untouched otherwise.
func Blend(base draw.Image, overlay image.Image, c Combiner) error {
	bb, ob := base.Bounds(), overlay.Bounds()
	if bb.Size() != ob.Size() {
		return fmt.Errorf("%w: base %dx%d, overlay %dx%d", ErrDimensionMismatch, bb.Dx(), bb.Dy(), ob.Dx(), ob.Dy())
	}

	w, h := bb.Dx(), bb.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bx, by := bb.Min.X+x, bb.Min.Y+y
			p := c.Combine(x, y, base.At(bx, by), overlay.At(ob.Min.X+x, ob.Min.Y+y))
			base.Set(bx, by, p)
		}
	}
	return nil
}
