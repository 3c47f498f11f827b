package processor

import (
	"image"

	"github.com/disintegration/imaging"
)

func (p *ImageProcessor) exceedsDimension(img image.Image) bool {
	if p.opts.MaxDimension <= 0 {
		return false
	}
	b := img.Bounds()
	return b.Dx() > p.opts.MaxDimension || b.Dy() > p.opts.MaxDimension
}

// resizeImage fits img inside a MaxDimension square, keeping the aspect ratio.
func (p *ImageProcessor) resizeImage(img image.Image) image.Image {
	return imaging.Fit(img, p.opts.MaxDimension, p.opts.MaxDimension, imaging.Lanczos)
}
