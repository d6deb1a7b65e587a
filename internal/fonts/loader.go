package fonts

import (
	"fmt"

	"github.com/atwam/idmark/internal/imageproc"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

const (
	DefaultFamily = "DejaVu"
	DefaultStyle  = Bold

	defaultCacheSize = 16
)

// DefaultProvider tries system fonts first and falls back to the embedded Go fonts.
func DefaultProvider() Provider {
	return Chain{DirProvider{Dirs: SystemDirs()}, Fallback(GoFonts{}, "Go")}
}

// Loader parses fonts from a Provider and keeps the parsed fonts in an LRU cache.
// Faces are created fresh on every call since a face is not safe for concurrent use.
type Loader struct {
	provider Provider
	cache    *lru.Cache[string, *opentype.Font]
}

func NewLoader(p Provider, cacheSize int) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	c, err := lru.New[string, *opentype.Font](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Loader{provider: p, cache: c}, nil
}

func cacheKey(family string, style Style) string {
	return normalizeFamily(family) + "/" + style.String()
}

func (l *Loader) Font(family string, style Style) (*opentype.Font, error) {
	key := cacheKey(family, style)
	if f, ok := l.cache.Get(key); ok {
		return f, nil
	}

	data, index, err := l.provider.Load(family, style)
	if err != nil {
		return nil, err
	}

	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font %q: %w", imageproc.ErrResourceUnavailable, family, err)
	}
	if index < 0 || index >= coll.NumFonts() {
		return nil, fmt.Errorf("%w: font %q has no face %d", imageproc.ErrResourceUnavailable, family, index)
	}
	f, err := coll.Font(index)
	if err != nil {
		return nil, fmt.Errorf("%w: font %q face %d: %w", imageproc.ErrResourceUnavailable, family, index, err)
	}

	l.cache.Add(key, f)
	return f, nil
}

// Face returns a face rendering size pixels per em.
func (l *Loader) Face(family string, style Style, size float64) (font.Face, error) {
	f, err := l.Font(family, style)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: face %q at %v: %w", imageproc.ErrResourceUnavailable, family, size, err)
	}
	return face, nil
}
