package card

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

// Generator renders QR cards with a fixed set of Options.
type Generator struct {
	opts      Options
	fg, bg    color.NRGBA
	watermark string
	log       *slog.Logger
}

// NewGenerator validates opts and returns a Generator. A nil logger discards
// all output.
func NewGenerator(opts Options, log *slog.Logger) (*Generator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	fg, err := ParseHexColor(opts.Foreground)
	if err != nil {
		return nil, fmt.Errorf("%w: foreground: %w", ErrInvalidOptions, err)
	}
	bg, err := ParseHexColor(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("%w: background: %w", ErrInvalidOptions, err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Generator{opts: opts, fg: fg, bg: bg, log: log}, nil
}

// Options returns the options the generator was built with.
func (g *Generator) Options() Options { return g.opts }

// WithWatermark returns a copy of g that stamps text over every card it
// renders. An empty text disables the watermark.
func (g *Generator) WithWatermark(text string) *Generator {
	c := *g
	c.watermark = text
	return &c
}

// Generate renders payload under the skin at skinPath and writes the PNG to
// outputPath, replacing any existing file. Nothing is written unless every
// step before it succeeded.
func (g *Generator) Generate(payload, skinPath, outputPath string) error {
	symbol, err := g.Symbol(payload)
	if err != nil {
		return err
	}
	skin, err := LoadSkin(skinPath)
	if err != nil {
		return err
	}
	data, err := g.encode(symbol, skin)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	g.log.Info("card generated", "output", outputPath, "skin", skinPath, "bytes", len(data))
	return nil
}

// Render composites the QR symbol for payload with an already decoded skin.
func (g *Generator) Render(payload string, skin image.Image) (*image.NRGBA, error) {
	symbol, err := g.Symbol(payload)
	if err != nil {
		return nil, err
	}
	return g.compose(symbol, skin)
}

// RenderPNG is like Render but returns the PNG encoded card.
func (g *Generator) RenderPNG(payload string, skin image.Image) ([]byte, error) {
	symbol, err := g.Symbol(payload)
	if err != nil {
		return nil, err
	}
	return g.encode(symbol, skin)
}

// Symbol encodes payload and rasterises it at BoxSize pixels per module,
// before any resizing.
func (g *Generator) Symbol(payload string) (*image.NRGBA, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	q, err := qrcode.New(payload, g.opts.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayloadTooLarge, err)
	}
	if q.VersionNumber < g.opts.MinVersion {
		q, err = qrcode.NewWithForcedVersion(payload, g.opts.MinVersion, g.opts.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPayloadTooLarge, err)
		}
	}
	if q.VersionNumber > g.opts.MaxVersion {
		return nil, fmt.Errorf("%w: needs version %d, limit is %d", ErrPayloadTooLarge, q.VersionNumber, g.opts.MaxVersion)
	}

	q.ForegroundColor = g.fg
	q.BackgroundColor = g.bg
	q.DisableBorder = g.opts.Border == 0

	g.log.Debug("qr symbol encoded", "version", q.VersionNumber, "payload_len", len(payload))

	// A negative size asks for a fixed number of pixels per module.
	return imaging.Clone(q.Image(-g.opts.BoxSize)), nil
}

func (g *Generator) compose(symbol, skin image.Image) (*image.NRGBA, error) {
	size := g.opts.Size
	base := imaging.Resize(symbol, size, size, imaging.Lanczos)
	top := imaging.Resize(skin, size, size, imaging.Lanczos)

	out := imaging.Overlay(base, top, image.Pt(0, 0), 1.0)
	if g.watermark != "" {
		if err := drawWatermark(out, g.watermark); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (g *Generator) encode(symbol, skin image.Image) ([]byte, error) {
	out, err := g.compose(symbol, skin)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
