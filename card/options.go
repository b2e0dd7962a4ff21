package card

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Defaults used by DefaultOptions.
const (
	DefaultSize       = 1024
	DefaultBoxSize    = 10
	DefaultBorder     = 4
	DefaultForeground = "#50C878"
	DefaultBackground = "#FFFFFF"
	DefaultMinVersion = 1
	DefaultMaxVersion = 40
	DefaultWatermark  = "MINTA / PREVIEW"
)

// Options configures a Generator.
type Options struct {
	// Size is the edge length of the square output, in pixels.
	Size int
	// BoxSize is the number of pixels per QR module in the intermediate raster.
	BoxSize int
	// Border is the quiet zone width in modules. The encoder supports the
	// standard 4 module zone or none at all.
	Border int
	// Foreground and Background are hex colours (#RGB or #RRGGBB).
	Foreground string
	Background string
	Level      qrcode.RecoveryLevel
	// MinVersion and MaxVersion bound the symbol version. The smallest
	// version in range that holds the payload is used.
	MinVersion int
	MaxVersion int
}

// DefaultOptions returns the options used for oooVooo cards.
func DefaultOptions() Options {
	return Options{
		Size:       DefaultSize,
		BoxSize:    DefaultBoxSize,
		Border:     DefaultBorder,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
		Level:      qrcode.Highest,
		MinVersion: DefaultMinVersion,
		MaxVersion: DefaultMaxVersion,
	}
}

func (o Options) validate() error {
	switch {
	case o.Size <= 0:
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidOptions, o.Size)
	case o.BoxSize <= 0:
		return fmt.Errorf("%w: box size must be positive, got %d", ErrInvalidOptions, o.BoxSize)
	case o.Border != 0 && o.Border != DefaultBorder:
		return fmt.Errorf("%w: border must be 0 or %d modules, got %d", ErrInvalidOptions, DefaultBorder, o.Border)
	case o.MinVersion < 1 || o.MinVersion > 40:
		return fmt.Errorf("%w: min version must be within 1..40, got %d", ErrInvalidOptions, o.MinVersion)
	case o.MaxVersion < o.MinVersion || o.MaxVersion > 40:
		return fmt.Errorf("%w: max version must be within %d..40, got %d", ErrInvalidOptions, o.MinVersion, o.MaxVersion)
	}
	return nil
}
