package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/phambaophuc/ecovision/pkg/utils"
)

// ValidateImage checks size, sniffed content type and that the header
// decodes. It returns the sniffed content type.
func (p *ImageProcessor) ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", utils.ErrEmptyImage
	}

	if size := int64(len(data)); p.opts.MaxFileSize > 0 && size > p.opts.MaxFileSize {
		return "", fmt.Errorf("%w: file size %d exceeds maximum allowed size %d", utils.ErrImageTooLarge, size, p.opts.MaxFileSize)
	}

	contentType := utils.DetectContentType(data)
	if !utils.IsValidImageType(contentType, p.opts.AllowedTypes) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return contentType, nil
}
