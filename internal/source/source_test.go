package source

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Unknown(t *testing.T) {
	_, err := New(Config{Type: "webcam"}, 70)
	assert.Error(t, err)
}

func TestPattern_Defaults(t *testing.T) {
	s, err := New(Config{}, 70)
	require.NoError(t, err)

	dims := s.Dimensions()
	assert.Equal(t, 640, dims.Width)
	assert.Equal(t, 480, dims.Height)
}

func TestPattern_ProducesValidJPEG(t *testing.T) {
	s, err := New(Config{Type: "pattern", Options: map[string]interface{}{
		"width":  64,
		"height": 48,
	}}, 70)
	require.NoError(t, err)

	a, err := s.Next()
	require.NoError(t, err)
	b, err := s.Next()
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(a))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)

	assert.NotEqual(t, a, b, "consecutive frames differ")
}

func TestPattern_BadDimensions(t *testing.T) {
	_, err := New(Config{Type: "pattern", Options: map[string]interface{}{
		"width": -1,
	}}, 70)
	assert.Error(t, err)
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestDir_LoopsFiles(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "a.jpg"), 32, 24)
	writeJPEG(t, filepath.Join(dir, "b.jpg"), 32, 24)

	s, err := New(Config{Type: "dir", Options: map[string]interface{}{"dir": dir}}, 70)
	require.NoError(t, err)

	dims := s.Dimensions()
	assert.Equal(t, 32, dims.Width)
	assert.Equal(t, 24, dims.Height)

	first, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.NoError(t, err)
	third, err := s.Next()
	require.NoError(t, err)

	assert.Equal(t, first, third, "two files loop with period two")
}

func TestDir_Empty(t *testing.T) {
	_, err := New(Config{Type: "dir", Options: map[string]interface{}{
		"dir": t.TempDir(),
	}}, 70)
	assert.Error(t, err)
}

func TestDir_MissingDir(t *testing.T) {
	_, err := New(Config{Type: "dir"}, 70)
	assert.Error(t, err)
}
