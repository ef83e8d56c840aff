package imageprocessor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image too large")
)

// Image is a validated upload ready for storage.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// DefaultMaxPixels bounds the decoded bitmap when no limit is configured.
const DefaultMaxPixels = 40_000_000

// Processor validates base64 image uploads and downsizes oversized ones.
type Processor struct {
	maxBytes     int64
	maxDimension int
	maxPixels    int64 // width*height declared by the header
	quality      int   // JPEG quality (1-100)
}

func NewProcessor(maxBytes int64, maxDimension int, maxPixels int64, quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Processor{
		maxBytes:     maxBytes,
		maxDimension: maxDimension,
		maxPixels:    maxPixels,
		quality:      quality,
	}
}

// DecodeDataURI splits "data:image/png;base64,<payload>" into its bytes.
func DecodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(uri), ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: expected a base64 data URI", ErrInvalidImage)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}

// Prepare decodes a data URI, checks it is a real image and shrinks it to
// the configured maximum dimension.
func (p *Processor) Prepare(uri string) (*Image, error) {
	data, err := DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, ErrImageTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrInvalidImage
	}
	// Decode allocates the full bitmap from the header alone.
	if int64(cfg.Width)*int64(cfg.Height) > p.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, p.maxPixels)
	}

	img := &Image{Data: data, Width: cfg.Width, Height: cfg.Height}
	img.ContentType, img.Ext = contentType(format)

	if p.maxDimension <= 0 || (cfg.Width <= p.maxDimension && cfg.Height <= p.maxDimension) {
		return img, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	resized := p.resize(src, p.maxDimension, p.maxDimension)

	var buf bytes.Buffer
	if format == "jpeg" {
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality})
	} else {
		// gif frames beyond the first are dropped
		format = "png"
		err = png.Encode(&buf, resized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}

	bounds := resized.Bounds()
	img.Data = buf.Bytes()
	img.Width, img.Height = bounds.Dx(), bounds.Dy()
	img.ContentType, img.Ext = contentType(format)
	return img, nil
}

func contentType(format string) (string, string) {
	switch format {
	case "jpeg":
		return "image/jpeg", "jpg"
	case "gif":
		return "image/gif", "gif"
	default:
		return "image/png", "png"
	}
}

// resize fits img into maxWidth x maxHeight keeping the aspect ratio.
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	ratio := float64(width) / float64(height)
	newWidth := maxWidth
	newHeight := maxHeight

	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
