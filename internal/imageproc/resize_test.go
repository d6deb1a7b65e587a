package imageproc

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{"no bounds", 300, 200, 0, 0, 300, 200},
		{"fits already", 300, 200, 400, 400, 300, 200},
		{"landscape", 400, 200, 200, 200, 200, 100},
		{"portrait", 200, 400, 200, 200, 100, 200},
		{"width only", 400, 200, 100, 0, 100, 50},
		{"height only", 400, 200, 0, 100, 200, 100},
		{"width only no upscale", 40, 20, 100, 0, 40, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := uniformNRGBA(tt.w, tt.h, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
			out := Fit(img, tt.maxW, tt.maxH)
			require.Equal(t, tt.wantW, out.Bounds().Dx())
			require.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}
