// Package imaging normalizes uploaded pictures before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// ErrUnsupportedFormat is returned for anything other than JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

const defaultQuality = 85

// Processor sniffs, downscales and re-encodes images as JPEG.
type Processor struct {
	MaxDimension int
	Quality      int
}

// NewProcessor creates a Processor bounding both sides to maxDimension.
func NewProcessor(maxDimension int) *Processor {
	return &Processor{MaxDimension: maxDimension, Quality: defaultQuality}
}

// Process reads an upload and returns JPEG bytes no larger than
// MaxDimension on either side. The format is detected from content, not from
// client headers.
func (p *Processor) Process(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	switch detected := http.DetectContentType(data); detected {
	case "image/jpeg", "image/png":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	img = fit(img, p.MaxDimension)

	quality := p.Quality
	if quality <= 0 {
		quality = defaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img down, keeping its aspect ratio, so neither side exceeds
// maxDim. Smaller images are returned as they are.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	nw, nh := maxDim, maxDim
	if w >= h {
		nh = max(1, h*maxDim/w)
	} else {
		nw = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
