package imageproc

import (
	"fmt"
	"image"
	"math"
	"strings"
)

type WarpMode int

const (
	// WarpAxis shifts rows vertically by a sine of x only.
	WarpAxis WarpMode = iota
	// WarpCoupled displaces both axes by sin(wx*x)*sin(wy*y).
	WarpCoupled
)

func (m WarpMode) String() string {
	switch m {
	case WarpAxis:
		return "axis"
	case WarpCoupled:
		return "coupled"
	}
	return fmt.Sprintf("WarpMode(%d)", int(m))
}

func (m WarpMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *WarpMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "axis":
		*m = WarpAxis
	case "coupled":
		*m = WarpCoupled
	default:
		return fmt.Errorf("%w: unknown warp mode %q", ErrConfiguration, string(b))
	}
	return nil
}

// WarpParams describes a sinusoidal displacement. Amplitudes are in pixels,
// Wx and Wy are angular frequencies in radians per pixel.
type WarpParams struct {
	Mode       WarpMode
	AmplitudeX float64
	AmplitudeY float64
	Wx, Wy     float64
}

func (p WarpParams) displacement(x, y float64) (dx, dy float64) {
	if p.Mode == WarpCoupled {
		s := math.Sin(p.Wx*x) * math.Sin(p.Wy*y)
		return 0.5 * p.AmplitudeX * s, 0.5 * p.AmplitudeY * s
	}
	return 0, 0.5 * p.AmplitudeY * math.Sin(p.Wx*x)
}

// Warp resamples src at displaced coordinates. Samples landing outside src are black.
func Warp(src *image.Gray, p WarpParams, interp Interpolation) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	in := grayRaster(src)
	fallback := []uint8{0}
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := 0; x < w; x++ {
			fx, fy := float64(x), float64(y)
			dx, dy := p.displacement(fx, fy)
			in.sample(fx+dx, fy+dy, interp, fallback, row[x:x+1])
		}
	}
	return dst
}
