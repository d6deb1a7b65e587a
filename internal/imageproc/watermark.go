// Package imageproc builds tiled, warped and rotated text watermarks and blends them onto images.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/image/font"
)

type Watermarker struct {
	cfg     Config
	pattern *TextPattern
}

// New validates cfg and measures its text with face. The face should be built at cfg.FontSize.
func New(face font.Face, cfg Config) (*Watermarker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pattern, err := NewTextPattern(face, cfg.Text)
	if err != nil {
		return nil, err
	}

	tw, th := pattern.TextSize()
	zlog.Logger.Debug().Int("text_w", tw).Int("text_h", th).Msg("watermark text measured")

	return &Watermarker{cfg: cfg, pattern: pattern}, nil
}

func (wm *Watermarker) Config() Config {
	return wm.cfg
}

func (wm *Watermarker) warpParams(w, h int) WarpParams {
	return WarpParams{
		Mode:       wm.cfg.Warp,
		AmplitudeX: wm.cfg.AmplitudeX,
		AmplitudeY: wm.cfg.AmplitudeY,
		Wx:         2 * math.Pi / (float64(w) * wm.cfg.PeriodX),
		Wy:         2 * math.Pi / (float64(h) * wm.cfg.PeriodY),
	}
}

// Mask renders the single-channel watermark for a w x h target. High values mark text.
func (wm *Watermarker) Mask(w, h int) (*image.Gray, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d", ErrConfiguration, w, h)
	}

	cw, ch := FitCanvasSize(w, h, wm.cfg.Rotation)
	zlog.Logger.Debug().Int("w", w).Int("h", h).Int("canvas_w", cw).Int("canvas_h", ch).Msg("creating watermark")

	canvas := wm.pattern.Generate(cw, ch, color.Gray{Y: 0}, color.Gray{Y: 255})
	canvas = Warp(canvas, wm.warpParams(w, h), wm.cfg.Interpolation)

	mask, err := RotateAndCrop(canvas, wm.cfg.Rotation, w, h, wm.cfg.Interpolation)
	if err != nil {
		return nil, err
	}

	if wm.cfg.Ratio < 1 {
		for i, v := range mask.Pix {
			mask.Pix[i] = uint8(math.Round(float64(v) * wm.cfg.Ratio))
		}
	}
	return mask, nil
}

func (wm *Watermarker) passes() []Combiner {
	if wm.cfg.Blend == BlendLightenDarken {
		return []Combiner{Lighten, DarkenInvert}
	}
	return []Combiner{DarkenInvert}
}

// Apply returns an opaque copy of img carrying the watermark. img is not modified.
func (wm *Watermarker) Apply(img image.Image) (*image.NRGBA, error) {
	b := img.Bounds()
	mask, err := wm.Mask(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	// flatten onto white so the result has no meaningful alpha
	out := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)

	for _, c := range wm.passes() {
		if err := Blend(out, mask, c); err != nil {
			return nil, fmt.Errorf("blend watermark: %w", err)
		}
	}
	return out, nil
}

// Watermark decodes an image from r, downscales it to maxW x maxH when those are
// positive, applies wm and returns the encoded result with its size.
func Watermark(r io.Reader, wm *Watermarker, maxW, maxH int, format imaging.Format) (io.Reader, int64, error) {
	if wm == nil {
		return nil, 0, fmt.Errorf("%w: nil watermarker", ErrConfiguration)
	}

	base, err := Decode(r)
	if err != nil {
		return nil, 0, err
	}

	result, err := wm.Apply(Fit(base, maxW, maxH))
	if err != nil {
		return nil, 0, fmt.Errorf("apply watermark: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, result, format); err != nil {
		return nil, 0, err
	}
	return &buf, int64(buf.Len()), nil
}
