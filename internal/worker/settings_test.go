package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atwam/idmark/internal/fonts"
	"github.com/atwam/idmark/internal/imageproc"
	"github.com/stretchr/testify/require"
)

type mapEnv map[string]string

func (m mapEnv) GetString(key string) string { return m[key] }

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("rotation: 30\nblend: lighten-darken\ninterpolation: bilinear\n"), 0o600))

	tests := []struct {
		name    string
		env     mapEnv
		check   func(t *testing.T, s Settings)
		wantErr bool
	}{
		{
			name: "defaults",
			env:  mapEnv{"RESULT_KEY": "res/"},
			check: func(t *testing.T, s Settings) {
				require.Equal(t, imageproc.DefaultConfig(""), s.Profile)
				require.Equal(t, fonts.DefaultFamily, s.FontFamily)
				require.Equal(t, fonts.DefaultStyle, s.FontStyle)
				require.Equal(t, "res/", s.ResultKey)
				require.Zero(t, s.CacheSize)
			},
		},
		{
			name: "profile and overrides",
			env: mapEnv{
				"WM_PROFILE":      profile,
				"WM_FONT_FAMILY":  "Go",
				"WM_FONT_STYLE":   "bold,italic",
				"WM_FONT_SIZE":    "22.5",
				"WM_RATIO":        "0.7",
				"FONT_CACHE_SIZE": "4",
			},
			check: func(t *testing.T, s Settings) {
				require.Equal(t, 30.0, s.Profile.Rotation)
				require.Equal(t, imageproc.BlendLightenDarken, s.Profile.Blend)
				require.Equal(t, imageproc.Bilinear, s.Profile.Interpolation)
				require.Equal(t, 22.5, s.Profile.FontSize)
				require.Equal(t, 0.7, s.Profile.Ratio)
				require.Equal(t, "Go", s.FontFamily)
				require.Equal(t, fonts.Bold|fonts.Italic, s.FontStyle)
				require.Equal(t, 4, s.CacheSize)
			},
		},
		{name: "missing profile", env: mapEnv{"WM_PROFILE": filepath.Join(dir, "nope.yaml")}, wantErr: true},
		{name: "bad style", env: mapEnv{"WM_FONT_STYLE": "wavy"}, wantErr: true},
		{name: "bad size", env: mapEnv{"WM_FONT_SIZE": "big"}, wantErr: true},
		{name: "negative size", env: mapEnv{"WM_FONT_SIZE": "-3"}, wantErr: true},
		{name: "ratio out of range", env: mapEnv{"WM_RATIO": "2"}, wantErr: true},
		{name: "bad cache size", env: mapEnv{"FONT_CACHE_SIZE": "many"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := LoadSettings(tt.env)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}
