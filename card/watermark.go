package card

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Watermark geometry for a DefaultSize canvas; scaled for other sizes.
const (
	watermarkFontSize = 60
	watermarkMargin   = 80
)

var watermarkColor = color.NRGBA{A: 38} // black at ~15%

var loadWatermarkFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// drawWatermark writes text twice, centred horizontally near the top and
// bottom edges of dst.
func drawWatermark(dst *image.NRGBA, text string) error {
	otFont, err := loadWatermarkFont()
	if err != nil {
		return fmt.Errorf("parse watermark font: %w", err)
	}

	width, height := dst.Bounds().Dx(), dst.Bounds().Dy()
	scale := float64(width) / DefaultSize

	face, err := opentype.NewFace(otFont, &opentype.FaceOptions{
		Size:    watermarkFontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create watermark face: %w", err)
	}
	defer face.Close()

	bounds, _ := font.BoundString(face, text)
	textW := (bounds.Max.X - bounds.Min.X).Ceil()
	textH := (bounds.Max.Y - bounds.Min.Y).Ceil()
	margin := int(watermarkMargin * scale)

	for _, centerY := range []int{margin, height - margin} {
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(watermarkColor),
			Face: face,
			Dot:  fixed.P((width-textW)/2-bounds.Min.X.Floor(), centerY-textH/2-bounds.Min.Y.Floor()),
		}
		d.DrawString(text)
	}
	return nil
}
