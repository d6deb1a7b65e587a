// Package fonts resolves a font family and style to font data and builds faces for text rendering.
package fonts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atwam/idmark/internal/imageproc"
)

type Style uint8

const (
	Bold Style = 1 << iota
	Italic
	Mono

	Regular Style = 0
)

var styleNames = []struct {
	style Style
	name  string
}{
	{Bold, "bold"},
	{Italic, "italic"},
	{Mono, "mono"},
}

func (s Style) String() string {
	if s == Regular {
		return "regular"
	}
	parts := make([]string, 0, len(styleNames))
	for _, n := range styleNames {
		if s&n.style != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseStyle accepts tokens separated by commas or spaces, e.g. "bold,italic".
func ParseStyle(s string) (Style, error) {
	var style Style
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == ',' || r == ' ' || r == '+' }) {
		switch tok {
		case "regular", "normal":
		case "bold":
			style |= Bold
		case "italic", "oblique":
			style |= Italic
		case "mono", "monospace":
			style |= Mono
		default:
			return 0, fmt.Errorf("unknown font style %q", tok)
		}
	}
	return style, nil
}

// Provider returns raw font data and the index of the face inside it.
type Provider interface {
	Load(family string, style Style) (data []byte, index int, err error)
}

var ErrFontNotFound = errors.New("font not found")

func notFound(family string, style Style) error {
	return fmt.Errorf("%w: %w: family %q, style %s", imageproc.ErrResourceUnavailable, ErrFontNotFound, family, style)
}

// Chain asks each provider in turn and returns the first hit.
type Chain []Provider

func (c Chain) Load(family string, style Style) ([]byte, int, error) {
	errs := make([]error, 0, len(c))
	for _, p := range c {
		data, index, err := p.Load(family, style)
		if err == nil {
			return data, index, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, 0, notFound(family, style)
	}
	return nil, 0, errors.Join(errs...)
}

type fallback struct {
	p      Provider
	family string
}

// Fallback serves family from p whatever family is requested. Style is kept.
func Fallback(p Provider, family string) Provider {
	return fallback{p: p, family: family}
}

func (f fallback) Load(_ string, style Style) ([]byte, int, error) {
	return f.p.Load(f.family, style)
}

// normalizeFamily lowercases and drops spaces, dashes and underscores.
func normalizeFamily(family string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(family))
}
