package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"strings"

	// decoders accepted from the file picker
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DataURLPrefix prefixes every encoded image.
	DataURLPrefix = "data:image/jpeg;base64,"

	MiB = 1024 * 1024

	DefaultMaxFileSize    = 5 * MiB
	DefaultMaxEncodedSize = 1 * MiB
	DefaultMaxDimension   = 1024
	DefaultQuality        = 70
	DefaultMaxPixels      = 50_000_000
)

// ErrTooManyPixels is returned for images whose decoded bitmap would exceed Options.MaxPixels.
var ErrTooManyPixels = errors.New("image dimensions exceed the pixel limit")

// Options holds the limits applied to a batch.
type Options struct {
	MaxFileSize    int64 // raw per-file ceiling, checked before compression
	MaxEncodedSize int64 // per-image ceiling, checked on the encoded payload
	MaxDimension   int   // bound for the longer side in pixels
	Quality        int   // JPEG quality, 1-100
	Workers        int   // concurrent compressions per batch, 0 = one per file
	MaxPixels      int64 // width*height ceiling checked from the header before decoding
}

// DefaultOptions returns the stock limits: 5 MiB in, 1 MiB out, 1024 px, quality 70.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:    DefaultMaxFileSize,
		MaxEncodedSize: DefaultMaxEncodedSize,
		MaxDimension:   DefaultMaxDimension,
		Quality:        DefaultQuality,
		MaxPixels:      DefaultMaxPixels,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = d.MaxFileSize
	}
	if o.MaxEncodedSize <= 0 {
		o.MaxEncodedSize = d.MaxEncodedSize
	}
	if o.MaxDimension <= 0 {
		o.MaxDimension = d.MaxDimension
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = d.Quality
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = d.MaxPixels
	}
	return o
}

// ScaleDimensions bounds the longer side of w x h to maxSide, keeping the aspect ratio.
// Images already within the bound are returned unchanged.
func ScaleDimensions(w, h, maxSide int) (int, int) {
	if w >= h {
		if w > maxSide {
			h = int(math.Round(float64(h) * float64(maxSide) / float64(w)))
			w = maxSide
		}
	} else if h > maxSide {
		w = int(math.Round(float64(w) * float64(maxSide) / float64(h)))
		h = maxSide
	}
	return max(w, 1), max(h, 1)
}

// Compress decodes f, shrinks it to opts.MaxDimension and re-encodes it as a JPEG data URL.
func Compress(ctx context.Context, f File, opts Options) (string, error) {
	opts = opts.withDefaults()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", f.Name, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > opts.MaxPixels {
		return "", fmt.Errorf("%s is %dx%d: %w", f.Name, cfg.Width, cfg.Height, ErrTooManyPixels)
	}

	src, format, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", f.Name, err)
	}

	bounds := src.Bounds()
	w, h := ScaleDimensions(bounds.Dx(), bounds.Dy(), opts.MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	// JPEG has no alpha channel; transparent pixels land on white
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return "", fmt.Errorf("encoding %s (from %s): %w", f.Name, format, err)
	}

	return DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodedSize estimates the decoded byte size of a base64 data URL payload.
func EncodedSize(dataURL string) int64 {
	payload := dataURL
	if i := strings.IndexByte(dataURL, ','); i >= 0 {
		payload = dataURL[i+1:]
	}

	padding := 0
	for i := len(payload) - 1; i >= 0 && padding < 2 && payload[i] == '='; i-- {
		padding++
	}
	return int64(len(payload))*3/4 - int64(padding)
}

// DecodeDataURL returns the raw bytes and media type of a base64 data URL.
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("not a base64 data URL")
	}
	mediaType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URL payload: %w", err)
	}
	return data, mediaType, nil
}
