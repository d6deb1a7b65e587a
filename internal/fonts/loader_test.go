package fonts

import (
	"testing"

	"github.com/atwam/idmark/internal/imageproc"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
)

type countingProvider struct {
	Provider
	calls int
}

func (c *countingProvider) Load(family string, style Style) ([]byte, int, error) {
	c.calls++
	return c.Provider.Load(family, style)
}

type rawProvider []byte

func (r rawProvider) Load(string, Style) ([]byte, int, error) { return r, 0, nil }

func TestLoader_Cache(t *testing.T) {
	p := &countingProvider{Provider: GoFonts{}}
	l, err := NewLoader(p, 0)
	require.NoError(t, err)

	a, err := l.Font("Go", Bold)
	require.NoError(t, err)
	b, err := l.Font("go", Bold)
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, 1, p.calls)

	_, err = l.Font("Go", Regular)
	require.NoError(t, err)
	require.Equal(t, 2, p.calls)
}

func TestLoader_Face(t *testing.T) {
	l, err := NewLoader(GoFonts{}, 4)
	require.NoError(t, err)

	face, err := l.Face("Go", Bold, 32)
	require.NoError(t, err)
	defer face.Close()

	small, err := l.Face("Go", Bold, 12)
	require.NoError(t, err)
	defer small.Close()

	big, _ := font.BoundString(face, "TEST")
	little, _ := font.BoundString(small, "TEST")
	require.Greater(t, (big.Max.X - big.Min.X).Ceil(), (little.Max.X - little.Min.X).Ceil())
}

func TestLoader_Errors(t *testing.T) {
	l, err := NewLoader(GoFonts{}, 1)
	require.NoError(t, err)

	_, err = l.Face("Papyrus", Bold, 16)
	require.ErrorIs(t, err, ErrFontNotFound)

	l, err = NewLoader(rawProvider("definitely not a font"), 1)
	require.NoError(t, err)

	_, err = l.Font("broken", Regular)
	require.ErrorIs(t, err, imageproc.ErrResourceUnavailable)
}

func TestDefaultProvider(t *testing.T) {
	l, err := NewLoader(DefaultProvider(), 0)
	require.NoError(t, err)

	// whatever the host has installed, the embedded fallback guarantees a face
	face, err := l.Face(DefaultFamily, DefaultStyle, 16)
	require.NoError(t, err)
	require.NoError(t, face.Close())
}
