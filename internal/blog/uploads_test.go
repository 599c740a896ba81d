package blog

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadsSave(t *testing.T) {
	u := &Uploads{Dir: filepath.Join(t.TempDir(), "up"), PublicURL: "http://example.test/"}

	st, err := u.Save(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", st.MediaType)
	assert.True(t, strings.HasSuffix(st.Name, ".png"))
	assert.Equal(t, "http://example.test/uploads/"+st.Name, st.URL)
	require.NotNil(t, st.Cover)
	assert.Equal(t, 3, st.Cover.Height)

	data, err := os.ReadFile(filepath.Join(u.Dir, st.Name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), data)
}

func TestUploadsRejectsGarbage(t *testing.T) {
	u := &Uploads{Dir: t.TempDir(), PublicURL: "http://example.test"}

	_, err := u.Save([]byte("just some text, not an image"))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = u.Save(nil)
	assert.ErrorIs(t, err, ErrInvalid)

	entries, err := os.ReadDir(u.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
