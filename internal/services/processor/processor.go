package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidImage    = errors.New("invalid image")
	ErrUnsupportedType = errors.New("unsupported image type")
)

const DefaultQuality = 85

// Options bounds what the processor accepts and produces.
type Options struct {
	MaxFileSize  int64
	MaxDimension int
	AllowedTypes []string
	Quality      int
}

// NormalizedImage is ready to be sent to a recognizer.
type NormalizedImage struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Resized  bool
}

type ImageProcessor struct {
	opts Options
}

func NewImageProcessor(opts Options) *ImageProcessor {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	return &ImageProcessor{opts: opts}
}

// Normalize validates data and downscales it so the longest side does not
// exceed MaxDimension. Images that already fit are passed through untouched
// unless their format has to be converted.
func (p *ImageProcessor) Normalize(data []byte) (*NormalizedImage, error) {
	contentType, err := p.ValidateImage(data)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	out := &NormalizedImage{
		Data:     data,
		MIMEType: contentType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}

	needsResize := p.exceedsDimension(img)
	needsConvert := !passthroughTypes[contentType]
	if !needsResize && !needsConvert {
		return out, nil
	}

	processed := img
	if needsResize {
		processed = p.resizeImage(img)
		out.Resized = true
	}

	format := outputFormat(contentType)
	buffer := &bytes.Buffer{}
	if err := p.encodeImage(buffer, processed, format, p.opts.Quality); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := processed.Bounds()
	out.Data = buffer.Bytes()
	out.MIMEType = "image/" + format
	out.Width = b.Dx()
	out.Height = b.Dy()
	return out, nil
}
