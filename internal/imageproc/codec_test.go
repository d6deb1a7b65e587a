package imageproc

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodeDecode(t *testing.T) {
	img := gradientGray(32, 16)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, imaging.PNG))

	out, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), out.Bounds())

	err = Encode(failingWriter{}, img, imaging.PNG)
	require.ErrorIs(t, err, ErrEncode)

	err = Encode(nil, img, imaging.PNG)
	require.ErrorIs(t, err, ErrEncode)
}

func TestOpenSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jpg")

	require.NoError(t, Save(gradientGray(20, 10), path))

	img, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 20, img.Bounds().Dx())

	_, err = Open(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, ErrResourceUnavailable)

	err = Save(gradientGray(2, 2), filepath.Join(dir, "out.unknown"))
	require.ErrorIs(t, err, ErrEncode)
}
