package source

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOpenImage(t *testing.T) {
	src, mediaType, err := Open(pngBytes(t, 40, 30))
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, 1, src.PageCount())
	w, h, err := src.GetPageDimensions(0)
	require.NoError(t, err)
	assert.Equal(t, 40.0, w)
	assert.Equal(t, 30.0, h)

	img, err := RenderCover(src, 96)
	require.NoError(t, err)
	out, err := EncodePNG(img)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, decoded.Bounds().Dx())
}

func TestOpenRejectsUnknown(t *testing.T) {
	_, mediaType, err := Open([]byte("just some text"))
	assert.Error(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", mediaType)
}

func TestOpenCorruptImage(t *testing.T) {
	data := pngBytes(t, 4, 4)[:20]
	_, _, err := Open(data)
	assert.Error(t, err)
}
