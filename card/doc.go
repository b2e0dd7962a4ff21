// Package card renders QR "cards": a QR code tinted with a foreground colour,
// scaled to a fixed square canvas and flattened under a decorative skin image.
//
// # Pipeline
//
// A card is produced in a fixed order:
//
//   - the payload is encoded as a QR symbol at the highest recovery level
//     (~30%), using the smallest version that holds it;
//   - the symbol is rasterised with BoxSize pixels per module, a 4 module
//     quiet zone and the configured colours;
//   - the skin is loaded and converted to NRGBA;
//   - both images are resized to Size x Size with a Lanczos filter;
//   - the skin is composited over the symbol ("over" operator), so the QR
//     shows through wherever the skin is transparent;
//   - the result is PNG encoded and written to the output path.
//
// # Usage
//
//	gen, err := card.NewGenerator(card.DefaultOptions(), logger)
//	if err != nil {
//		// handle error
//	}
//	if err := gen.Generate("https://ooovooo.com/marcsika", "skin.png", "final_qr_card.png"); err != nil {
//		if errors.Is(err, card.ErrMissingSkin) {
//			// report and carry on
//		}
//	}
//
// # Errors
//
// Only ErrMissingSkin is meant to be recovered by callers. ErrEmptyPayload,
// ErrPayloadTooLarge, ErrOutputWrite and ErrInvalidOptions describe failures
// that callers normally propagate. All of them can be matched with errors.Is.
//
// A Generator holds no mutable state and can be shared between goroutines.
package card
