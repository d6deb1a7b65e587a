package worker

import (
	"fmt"
	"strings"

	"github.com/atwam/idmark/internal/fonts"
	"github.com/atwam/idmark/internal/imageproc"
	"github.com/spf13/cast"
)

// EnvSource is satisfied by *config.Config from wbf.
type EnvSource interface {
	GetString(key string) string
}

// Settings describe how every task is watermarked: the base profile plus the font to render it with.
type Settings struct {
	Profile    imageproc.Config
	FontFamily string
	FontStyle  fonts.Style
	ResultKey  string
	CacheSize  int
}

// LoadSettings reads WM_PROFILE (yaml file), WM_FONT_FAMILY, WM_FONT_STYLE, WM_FONT_SIZE,
// WM_RATIO, FONT_CACHE_SIZE and RESULT_KEY. Unset values keep their defaults.
func LoadSettings(env EnvSource) (Settings, error) {
	s := Settings{
		Profile:    imageproc.DefaultConfig(""),
		FontFamily: fonts.DefaultFamily,
		FontStyle:  fonts.DefaultStyle,
		ResultKey:  env.GetString("RESULT_KEY"),
	}

	if path := strings.TrimSpace(env.GetString("WM_PROFILE")); path != "" {
		p, err := imageproc.LoadConfig(path)
		if err != nil {
			return Settings{}, err
		}
		s.Profile = p
	}

	if v := strings.TrimSpace(env.GetString("WM_FONT_FAMILY")); v != "" {
		s.FontFamily = v
	}
	if v := strings.TrimSpace(env.GetString("WM_FONT_STYLE")); v != "" {
		style, err := fonts.ParseStyle(v)
		if err != nil {
			return Settings{}, fmt.Errorf("WM_FONT_STYLE: %w", err)
		}
		s.FontStyle = style
	}
	if v := strings.TrimSpace(env.GetString("WM_FONT_SIZE")); v != "" {
		size, err := cast.ToFloat64E(v)
		if err != nil || size <= 0 {
			return Settings{}, fmt.Errorf("WM_FONT_SIZE: invalid value %q", v)
		}
		s.Profile.FontSize = size
	}
	if v := strings.TrimSpace(env.GetString("WM_RATIO")); v != "" {
		ratio, err := cast.ToFloat64E(v)
		if err != nil {
			return Settings{}, fmt.Errorf("WM_RATIO: invalid value %q", v)
		}
		s.Profile.Ratio = ratio
	}
	if v := strings.TrimSpace(env.GetString("FONT_CACHE_SIZE")); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil {
			return Settings{}, fmt.Errorf("FONT_CACHE_SIZE: invalid value %q", v)
		}
		s.CacheSize = n
	}

	// текст приходит из задачи, проверяем профиль с подставным
	probe := s.Profile
	probe.Text = "probe"
	if err := probe.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
