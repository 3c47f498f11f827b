package identifier

import (
	"context"

	"github.com/phambaophuc/ecovision/internal/models"
)

// Image is a normalized image handed to a Recognizer.
type Image struct {
	Data     []byte
	MIMEType string
}

// Recognizer maps an image to taxonomic and habitat metadata.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, img Image) (models.IdentificationResult, error)
}
