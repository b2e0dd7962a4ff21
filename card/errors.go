package card

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSkin is returned when the skin path does not exist or does
	// not hold a decodable image.
	ErrMissingSkin = errors.New("skin image missing or unreadable")
	// ErrEmptyPayload is returned for an empty payload. The QR encoder refuses
	// to build a symbol without data.
	ErrEmptyPayload = errors.New("payload cannot be empty")
	// ErrPayloadTooLarge is returned when the payload does not fit the
	// largest allowed QR version at the configured recovery level.
	ErrPayloadTooLarge = errors.New("payload exceeds QR capacity")
	// ErrOutputWrite is returned when the finished card cannot be written.
	ErrOutputWrite = errors.New("failed to write card")
	// ErrInvalidOptions is returned by NewGenerator for unusable options.
	ErrInvalidOptions = errors.New("invalid card options")
)

// SkinError describes a skin that could not be opened or decoded.
// It matches ErrMissingSkin with errors.Is.
type SkinError struct {
	Path string
	Err  error
}

func (e *SkinError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("skin image is not decodable: %v", e.Err)
	}
	return fmt.Sprintf("skin %q not found or unreadable: %v", e.Path, e.Err)
}

func (e *SkinError) Unwrap() error { return e.Err }

func (e *SkinError) Is(target error) bool { return target == ErrMissingSkin }
