package card_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ooovooo/qrcard/card"
)

func TestParseHexColor(t *testing.T) {
	t.Parallel()

	valid := map[string]color.NRGBA{
		"#50C878": {R: 0x50, G: 0xC8, B: 0x78, A: 0xff},
		"50c878":  {R: 0x50, G: 0xC8, B: 0x78, A: 0xff},
		"#fff":    {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		" #000 ":  {A: 0xff},
	}
	for in, want := range valid {
		got, err := card.ParseHexColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "#", "#12", "#12345", "#gggggg", "#1234567"} {
		_, err := card.ParseHexColor(in)
		assert.Error(t, err, in)
	}
}
