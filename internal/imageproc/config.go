package imageproc

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type BlendMode int

const (
	// BlendDarken applies the darken-invert pass only.
	BlendDarken BlendMode = iota
	// BlendLightenDarken applies a lighten pass, then darken-invert on its result.
	BlendLightenDarken
)

func (m BlendMode) String() string {
	switch m {
	case BlendDarken:
		return "darken"
	case BlendLightenDarken:
		return "lighten-darken"
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "darken", "":
		return BlendDarken, nil
	case "lighten-darken", "both":
		return BlendLightenDarken, nil
	}
	return 0, fmt.Errorf("%w: unknown blend mode %q", ErrConfiguration, s)
}

func (m BlendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *BlendMode) UnmarshalText(b []byte) error {
	v, err := ParseBlendMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Config holds every watermark parameter. It is validated once by New and treated as read-only.
type Config struct {
	Text string `yaml:"text"`
	// FontSize is the glyph height in pixels requested from the font loader.
	FontSize float64 `yaml:"font-size"`
	// PeriodX and PeriodY are warp periods as fractions of the target width and height.
	PeriodX float64 `yaml:"period-x"`
	PeriodY float64 `yaml:"period-y"`
	// AmplitudeX and AmplitudeY are warp amplitudes in pixels.
	AmplitudeX float64  `yaml:"amplitude-x"`
	AmplitudeY float64  `yaml:"amplitude-y"`
	Warp       WarpMode `yaml:"warp"`
	// Rotation of the whole pattern in degrees.
	Rotation      float64       `yaml:"rotation"`
	Interpolation Interpolation `yaml:"interpolation"`
	Blend         BlendMode     `yaml:"blend"`
	// Ratio scales mask intensity, 1 is full strength.
	Ratio float64 `yaml:"ratio"`
}

func DefaultConfig(text string) Config {
	return Config{
		Text:          text,
		FontSize:      16,
		PeriodX:       0.2,
		PeriodY:       0.2,
		AmplitudeX:    0,
		AmplitudeY:    6,
		Warp:          WarpAxis,
		Rotation:      10,
		Interpolation: Bicubic,
		Blend:         BlendDarken,
		Ratio:         1,
	}
}

func (c Config) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	switch {
	case strings.TrimSpace(c.Text) == "":
		return fmt.Errorf("%w: text is empty", ErrConfiguration)
	case !finite(c.FontSize) || c.FontSize <= 0:
		return fmt.Errorf("%w: font size must be positive, got %v", ErrConfiguration, c.FontSize)
	case !finite(c.PeriodX) || c.PeriodX <= 0, !finite(c.PeriodY) || c.PeriodY <= 0:
		return fmt.Errorf("%w: warp periods must be positive, got %v/%v", ErrConfiguration, c.PeriodX, c.PeriodY)
	case !finite(c.AmplitudeX) || !finite(c.AmplitudeY):
		return fmt.Errorf("%w: warp amplitudes must be finite", ErrConfiguration)
	case !finite(c.Rotation):
		return fmt.Errorf("%w: rotation must be finite", ErrConfiguration)
	case !finite(c.Ratio) || c.Ratio <= 0 || c.Ratio > 1:
		return fmt.Errorf("%w: ratio must be in (0, 1], got %v", ErrConfiguration, c.Ratio)
	}

	if _, ok := interpolationNames[c.Interpolation]; !ok {
		return fmt.Errorf("%w: unknown interpolation %d", ErrConfiguration, int(c.Interpolation))
	}
	if c.Warp != WarpAxis && c.Warp != WarpCoupled {
		return fmt.Errorf("%w: unknown warp mode %d", ErrConfiguration, int(c.Warp))
	}
	if c.Blend != BlendDarken && c.Blend != BlendLightenDarken {
		return fmt.Errorf("%w: unknown blend mode %d", ErrConfiguration, int(c.Blend))
	}
	return nil
}

// ParseConfig reads a YAML profile on top of DefaultConfig. Missing keys keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read profile %q: %w", ErrResourceUnavailable, path, err)
	}
	return ParseConfig(data)
}
