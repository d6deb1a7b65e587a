package imageproc

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// TextPattern tiles a single line of text over a buffer in a brick layout.
// It keeps the face it was built with; a face must not be shared between goroutines.
type TextPattern struct {
	face  font.Face
	text  string
	ink   fixed.Rectangle26_6
	textW int
	textH int

	vertSpacing  int
	horizSpacing int
	lineShift    int
}

// NewTextPattern measures text once and derives the tiling steps from its ink box.
func NewTextPattern(face font.Face, text string) (*TextPattern, error) {
	if face == nil {
		return nil, fmt.Errorf("%w: nil font face", ErrConfiguration)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty watermark text", ErrConfiguration)
	}

	ink, _ := font.BoundString(face, text)
	p := &TextPattern{
		face:  face,
		text:  text,
		ink:   ink,
		textW: ink.Max.X.Ceil() - ink.Min.X.Floor(),
		textH: ink.Max.Y.Ceil() - ink.Min.Y.Floor(),
	}
	p.vertSpacing = int(math.Round(float64(p.textH) * 1.1))
	p.horizSpacing = int(math.Round(float64(p.textW) * 1.1))
	p.lineShift = -p.textW / 10

	if p.textW <= 0 || p.textH <= 0 || p.vertSpacing <= 0 || p.horizSpacing <= 0 {
		return nil, fmt.Errorf("%w: text %q measures %dx%d", ErrConfiguration, text, p.textW, p.textH)
	}
	return p, nil
}

// TextSize is the measured ink box of the text in pixels.
func (p *TextPattern) TextSize() (int, int) {
	return p.textW, p.textH
}

// Spacing returns the vertical step between lines, the horizontal step between
// repeats and the shift applied to each new line.
func (p *TextPattern) Spacing() (vert, horiz, lineShift int) {
	return p.vertSpacing, p.horizSpacing, p.lineShift
}

// Generate returns a w x h buffer filled with background and covered with the text in foreground.
func (p *TextPattern) Generate(w, h int, background, foreground color.Gray) *image.Gray {
	buf := image.NewGray(image.Rect(0, 0, w, h))
	if background.Y != 0 {
		draw.Draw(buf, buf.Rect, image.NewUniform(background), image.Point{}, draw.Src)
	}

	d := &font.Drawer{
		Dst:  buf,
		Src:  image.NewUniform(foreground),
		Face: p.face,
	}

	for line := 0; line*p.vertSpacing < h; line++ {
		startY := line * p.vertSpacing
		for startX := line * p.lineShift; startX < w; startX += p.horizSpacing {
			if startX+p.textW < 0 {
				continue
			}
			p.drawAt(d, startX, startY)
		}
	}
	return buf
}

// drawAt draws the text with the top-left corner of its ink box at (x, y).
func (p *TextPattern) drawAt(d *font.Drawer, x, y int) {
	d.Dot = fixed.Point26_6{
		X: fixed.I(x) - p.ink.Min.X,
		Y: fixed.I(y) - p.ink.Min.Y,
	}
	d.DrawString(p.text)
}
