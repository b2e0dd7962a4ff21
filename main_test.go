package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ooovooo/qrcard/card"
	"github.com/ooovooo/qrcard/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("QRCARD_DATA_DIR", t.TempDir())
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	return cfg
}

func writeSkin(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 512, 512))
	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			if x < 64 || y < 64 || x >= 448 || y >= 448 {
				img.SetNRGBA(x, y, color.NRGBA{R: 0x20, G: 0x20, B: 0x80, A: 0xff})
			}
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRunGenerate(t *testing.T) {
	t.Run("writes the card and reports success", func(t *testing.T) {
		cfg := testConfig(t)
		dir := t.TempDir()
		opts := generateOptions{
			payload:    defaultPayload,
			skinPath:   filepath.Join(dir, "skin.png"),
			outputPath: filepath.Join(dir, defaultOutput),
			record:     true,
		}
		writeSkin(t, opts.skinPath)
		var out, errOut bytes.Buffer

		require.NoError(t, runGenerate(&out, &errOut, cfg, opts))

		assert.Contains(t, out.String(), "Success! Card saved to "+opts.outputPath)
		f, err := os.Open(opts.outputPath)
		require.NoError(t, err)
		defer f.Close()
		img, err := png.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 1024, 1024), img.Bounds())

		var history bytes.Buffer
		require.NoError(t, runHistory(&history, cfg, 10))
		assert.Contains(t, history.String(), defaultPayload)
	})

	t.Run("missing skin is reported, not returned", func(t *testing.T) {
		cfg := testConfig(t)
		dir := t.TempDir()
		opts := generateOptions{
			payload:    defaultPayload,
			skinPath:   filepath.Join(dir, "skin.png"),
			outputPath: filepath.Join(dir, defaultOutput),
		}
		var out, errOut bytes.Buffer

		require.NoError(t, runGenerate(&out, &errOut, cfg, opts))

		assert.Contains(t, errOut.String(), opts.skinPath)
		assert.Empty(t, out.String())
		assert.NoFileExists(t, opts.outputPath)
	})

	t.Run("other failures propagate", func(t *testing.T) {
		cfg := testConfig(t)
		dir := t.TempDir()
		opts := generateOptions{
			payload:    "",
			skinPath:   filepath.Join(dir, "skin.png"),
			outputPath: filepath.Join(dir, defaultOutput),
		}
		writeSkin(t, opts.skinPath)
		var out, errOut bytes.Buffer

		err := runGenerate(&out, &errOut, cfg, opts)

		assert.True(t, errors.Is(err, card.ErrEmptyPayload), "error should be ErrEmptyPayload")
		assert.NoFileExists(t, opts.outputPath)
	})
}

func TestRunSkins(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	require.NoError(t, runSkins(&out, cfg))
	assert.Contains(t, out.String(), "no skins")

	require.NoError(t, os.MkdirAll(cfg.SkinsDir, 0o755))
	writeSkin(t, filepath.Join(cfg.SkinsDir, "classic.png"))
	out.Reset()
	require.NoError(t, runSkins(&out, cfg))
	assert.Contains(t, out.String(), "classic")
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "qrcard "+version+"\n", out.String())
}
