package imageproc

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

type Interpolation int

const (
	Nearest Interpolation = iota
	Bilinear
	Bicubic
)

var interpolationNames = map[Interpolation]string{
	Nearest:  "nearest",
	Bilinear: "bilinear",
	Bicubic:  "bicubic",
}

func (i Interpolation) String() string {
	if s, ok := interpolationNames[i]; ok {
		return s
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

func ParseInterpolation(s string) (Interpolation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, v := range interpolationNames {
		if v == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown interpolation %q", ErrConfiguration, s)
}

func (i Interpolation) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Interpolation) UnmarshalText(b []byte) error {
	v, err := ParseInterpolation(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// interpolator returns the x/image/draw counterpart used for affine resampling.
func (i Interpolation) interpolator() draw.Interpolator {
	switch i {
	case Nearest:
		return draw.NearestNeighbor
	case Bilinear:
		return draw.BiLinear
	default:
		return draw.CatmullRom
	}
}

// raster is a view over packed 8-bit pixels with ch bytes per pixel.
type raster struct {
	pix    []uint8
	stride int
	w, h   int
	ch     int
}

func grayRaster(img *image.Gray) raster {
	return raster{
		pix:    img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y):],
		stride: img.Stride,
		w:      img.Rect.Dx(),
		h:      img.Rect.Dy(),
		ch:     1,
	}
}

func nrgbaRaster(img *image.NRGBA) raster {
	return raster{
		pix:    img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y):],
		stride: img.Stride,
		w:      img.Rect.Dx(),
		h:      img.Rect.Dy(),
		ch:     4,
	}
}

func (r raster) at(x, y, c int) float64 {
	return float64(r.pix[y*r.stride+x*r.ch+c])
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func toUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// catmullRom returns the four cubic convolution weights (a = -0.5) for taps at
// offsets -1, 0, 1, 2 from floor(x), given the fractional part t.
func catmullRom(t float64) [4]float64 {
	t2 := t * t
	t3 := t2 * t
	return [4]float64{
		-0.5*t3 + t2 - 0.5*t,
		1.5*t3 - 2.5*t2 + 1,
		-1.5*t3 + 2*t2 + 0.5*t,
		0.5*t3 - 0.5*t2,
	}
}

// sample writes into out the pixel at the fractional position (fx, fy), where
// integer coordinates are pixel centres. Positions outside [0, w-1]x[0, h-1]
// produce fallback.
func (r raster) sample(fx, fy float64, interp Interpolation, fallback, out []uint8) {
	if !(fx >= 0 && fy >= 0 && fx <= float64(r.w-1) && fy <= float64(r.h-1)) {
		copy(out, fallback)
		return
	}

	switch interp {
	case Nearest:
		x := clampIndex(int(math.Round(fx)), r.w)
		y := clampIndex(int(math.Round(fy)), r.h)
		copy(out, r.pix[y*r.stride+x*r.ch:y*r.stride+x*r.ch+r.ch])

	case Bilinear:
		x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
		tx, ty := fx-float64(x0), fy-float64(y0)
		x1, y1 := clampIndex(x0+1, r.w), clampIndex(y0+1, r.h)
		for c := 0; c < r.ch; c++ {
			top := r.at(x0, y0, c)*(1-tx) + r.at(x1, y0, c)*tx
			bottom := r.at(x0, y1, c)*(1-tx) + r.at(x1, y1, c)*tx
			out[c] = toUint8(top*(1-ty) + bottom*ty)
		}

	default:
		x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
		wx, wy := catmullRom(fx-float64(x0)), catmullRom(fy-float64(y0))
		var xs, ys [4]int
		for i := 0; i < 4; i++ {
			xs[i] = clampIndex(x0-1+i, r.w)
			ys[i] = clampIndex(y0-1+i, r.h)
		}
		for c := 0; c < r.ch; c++ {
			var acc float64
			for j := 0; j < 4; j++ {
				if wy[j] == 0 {
					continue
				}
				var row float64
				for i := 0; i < 4; i++ {
					row += wx[i] * r.at(xs[i], ys[j], c)
				}
				acc += wy[j] * row
			}
			out[c] = toUint8(acc)
		}
	}
}

// Sample resamples a single-channel image at (x, y), returning fallback outside its bounds.
// Coordinates are relative to img.Bounds().Min.
func Sample(img *image.Gray, x, y float64, interp Interpolation, fallback color.Gray) color.Gray {
	var out [1]uint8
	grayRaster(img).sample(x, y, interp, []uint8{fallback.Y}, out[:])
	return color.Gray{Y: out[0]}
}

// SampleNRGBA is Sample for colour images.
func SampleNRGBA(img *image.NRGBA, x, y float64, interp Interpolation, fallback color.NRGBA) color.NRGBA {
	var out [4]uint8
	nrgbaRaster(img).sample(x, y, interp, []uint8{fallback.R, fallback.G, fallback.B, fallback.A}, out[:])
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}
