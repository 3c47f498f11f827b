package processor

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// passthroughTypes are accepted by the recognizer as-is.
var passthroughTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func outputFormat(contentType string) string {
	switch contentType {
	case "image/png", "image/gif":
		return "png"
	default:
		return "jpeg"
	}
}

func (p *ImageProcessor) encodeImage(w io.Writer, img image.Image, format string, quality int) error {
	switch format {
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	default:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
}
