package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/wb-go/wbf/zlog"
)

var fontExts = map[string]bool{".ttf": true, ".otf": true, ".ttc": true}

// DirProvider looks for font files under Dirs whose names carry the family and style,
// e.g. DejaVu + Bold resolves to DejaVuSans-Bold.ttf.
type DirProvider struct {
	Dirs []string
}

// SystemDirs lists the usual font directories of the running OS.
func SystemDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	case "windows":
		return []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
	}
	return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts")}
}

func (p DirProvider) Load(family string, style Style) ([]byte, int, error) {
	path := p.find(family, style)
	if path == "" {
		return nil, 0, notFound(family, style)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, notFound(family, style)
	}
	zlog.Logger.Debug().Str("family", family).Str("style", style.String()).Str("path", path).Msg("font resolved")
	return data, 0, nil
}

func (p DirProvider) find(family string, style Style) string {
	fam := normalizeFamily(family)
	if fam == "" {
		return ""
	}

	var candidates []string
	for _, dir := range p.Dirs {
		if dir == "" {
			continue
		}
		// unreadable directories are skipped
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !fontExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if matchesName(filepath.Base(path), fam, style) {
				candidates = append(candidates, path)
			}
			return nil
		})
	}
	if len(candidates) == 0 {
		return ""
	}

	// shortest base name is the least decorated variant: DejaVuSans-Bold over DejaVuSansCondensed-Bold
	sort.Slice(candidates, func(i, j int) bool {
		bi, bj := filepath.Base(candidates[i]), filepath.Base(candidates[j])
		if len(bi) != len(bj) {
			return len(bi) < len(bj)
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0]
}

func matchesName(base, fam string, style Style) bool {
	name := normalizeFamily(strings.TrimSuffix(base, filepath.Ext(base)))
	if !strings.HasPrefix(name, fam) {
		return false
	}
	rest := name[len(fam):]

	bold := strings.Contains(rest, "bold")
	italic := strings.Contains(rest, "italic") || strings.Contains(rest, "oblique")
	mono := strings.Contains(rest, "mono")

	for _, light := range []string{"light", "thin", "extralight", "black", "heavy"} {
		if strings.Contains(rest, light) {
			return false
		}
	}
	return bold == (style&Bold != 0) && italic == (style&Italic != 0) && mono == (style&Mono != 0)
}
