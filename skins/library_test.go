package skins_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ooovooo/qrcard/card"
	"github.com/ooovooo/qrcard/skins"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.SetNRGBA(1, 1, color.NRGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestLibrary_List(t *testing.T) {
	t.Parallel()

	t.Run("missing directory is empty", func(t *testing.T) {
		t.Parallel()
		lib := skins.NewLibrary(filepath.Join(t.TempDir(), "absent"))

		list, err := lib.List()

		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("lists images sorted by id", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "neon.png"), pngBytes(t))
		writeFile(t, filepath.Join(dir, "classic.jpg"), []byte("jpeg"))
		writeFile(t, filepath.Join(dir, "classic.png"), pngBytes(t))
		writeFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))
		writeFile(t, filepath.Join(dir, "bad id.png"), pngBytes(t))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

		list, err := skins.NewLibrary(dir).List()

		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "classic", list[0].ID)
		assert.Equal(t, "classic.png", list[0].File, "png should win over jpg")
		assert.Equal(t, "neon", list[1].ID)
		assert.Positive(t, list[1].Size)
	})
}

func TestLibrary_Path(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "gold.jpeg"), []byte("jpeg"))
	lib := skins.NewLibrary(dir)

	path, err := lib.Path("gold")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gold.jpeg"), path)

	_, err = lib.Path("silver")
	assert.True(t, errors.Is(err, skins.ErrNotFound), "error should be ErrNotFound")

	for _, id := range []string{"", "../etc/passwd", "a/b", strings.Repeat("x", 65)} {
		_, err = lib.Path(id)
		assert.True(t, errors.Is(err, skins.ErrInvalidID), "id %q should be rejected", id)
	}
}

func TestLibrary_Save(t *testing.T) {
	t.Parallel()

	t.Run("stores a decodable skin as png", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "skins")
		lib := skins.NewLibrary(dir)

		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil))
		skin, err := lib.Save("winter", &buf)

		require.NoError(t, err)
		assert.Equal(t, "winter", skin.ID)
		assert.Equal(t, "winter.png", skin.File)

		loaded, err := card.LoadSkin(filepath.Join(dir, "winter.png"))
		require.NoError(t, err)
		assert.Equal(t, 16, loaded.Bounds().Dx())
	})

	t.Run("replaces other formats with the same id", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "summer.jpg"), []byte("old"))
		lib := skins.NewLibrary(dir)

		_, err := lib.Save("summer", bytes.NewReader(pngBytes(t)))
		require.NoError(t, err)

		assert.NoFileExists(t, filepath.Join(dir, "summer.jpg"))
		path, err := lib.Path("summer")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "summer.png"), path)
	})

	t.Run("rejects undecodable input", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		_, err := skins.NewLibrary(dir).Save("junk", strings.NewReader("not an image"))

		assert.True(t, errors.Is(err, card.ErrMissingSkin), "error should be ErrMissingSkin")
		assert.NoFileExists(t, filepath.Join(dir, "junk.png"))
	})

	t.Run("rejects invalid id", func(t *testing.T) {
		t.Parallel()
		_, err := skins.NewLibrary(t.TempDir()).Save("../escape", bytes.NewReader(pngBytes(t)))
		assert.True(t, errors.Is(err, skins.ErrInvalidID), "error should be ErrInvalidID")
	})
}
