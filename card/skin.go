package card

import (
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// LoadSkin opens and decodes the skin image at path. Any failure, including
// a missing file, is reported as a *SkinError.
func LoadSkin(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SkinError{Path: path, Err: err}
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, &SkinError{Path: path, Err: err}
	}
	return img, nil
}

// DecodeSkin decodes a skin from r into an NRGBA image. Sources without an
// alpha channel come out fully opaque.
func DecodeSkin(r io.Reader) (*image.NRGBA, error) {
	img, err := decode(r)
	if err != nil {
		return nil, &SkinError{Err: err}
	}
	return img, nil
}

func decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}
