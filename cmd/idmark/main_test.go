package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/atwam/idmark/internal/imageproc"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	o, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, defaultInput, o.input)
	require.Equal(t, defaultOutput, o.output)
	require.Equal(t, defaultText, o.text)
	require.Empty(t, o.setFlags)

	cfg, err := o.config()
	require.NoError(t, err)
	require.Equal(t, imageproc.DefaultConfig(defaultText), cfg)
}

func TestParseFlags_Errors(t *testing.T) {
	_, err := parseFlags([]string{"-max-w", "wide"}, &bytes.Buffer{})
	require.Error(t, err)

	_, err = parseFlags([]string{"extra"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestOptionsConfig(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("text: FROM PROFILE\nrotation: -20\nfont-size: 30\n"), 0o600))

	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, cfg imageproc.Config)
		wantErr bool
	}{
		{
			name: "profile text wins over default flag",
			args: []string{"-profile", profile},
			check: func(t *testing.T, cfg imageproc.Config) {
				require.Equal(t, "FROM PROFILE", cfg.Text)
				require.Equal(t, -20.0, cfg.Rotation)
				require.Equal(t, 30.0, cfg.FontSize)
			},
		},
		{
			name: "explicit flags win over profile",
			args: []string{"-profile", profile, "-text", "CLI", "-rotation", "45", "-mode", "lighten-darken"},
			check: func(t *testing.T, cfg imageproc.Config) {
				require.Equal(t, "CLI", cfg.Text)
				require.Equal(t, 45.0, cfg.Rotation)
				require.Equal(t, imageproc.BlendLightenDarken, cfg.Blend)
			},
		},
		{name: "bad mode", args: []string{"-mode", "screen"}, wantErr: true},
		{name: "empty text", args: []string{"-text", " "}, wantErr: true},
		{name: "missing profile", args: []string{"-profile", filepath.Join(dir, "none.yaml")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args, &bytes.Buffer{})
			require.NoError(t, err)

			cfg, err := o.config()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	require.NoError(t, imaging.Save(imaging.New(240, 160, color.NRGBA{R: 230, G: 230, B: 230, A: 255}), in))

	// an empty font dir forces the embedded fallback
	o, err := parseFlags([]string{"-in", in, "-out", out, "-text", "TEST", "-font-dirs", dir, "-max-w", "120"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, run(o))

	img, err := imaging.Open(out)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 120, 80), img.Bounds())

	o.input = filepath.Join(dir, "missing.png")
	require.ErrorIs(t, run(o), imageproc.ErrResourceUnavailable)

	o.input = in
	o.style = "wavy"
	require.ErrorIs(t, run(o), imageproc.ErrConfiguration)
}
