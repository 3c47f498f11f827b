package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingImage   = errors.New("one of imageBase64 or imageUrl is required")
	ErrAmbiguousImage = errors.New("imageBase64 and imageUrl are mutually exclusive")
)

// ImageRef is the image half of an identification request: either the
// encoded bytes or a URL, never both.
type ImageRef interface {
	isImageRef()
	// Source names the variant for logs and metrics.
	Source() string
}

// Base64Image carries encoded image bytes, usually as a data URL
// ("data:image/png;base64,...").
type Base64Image struct {
	Data string
}

// URLImage points to an image the server downloads itself.
type URLImage struct {
	URL string
}

func (Base64Image) isImageRef()    {}
func (Base64Image) Source() string { return SourceFile }
func (URLImage) isImageRef()       {}
func (URLImage) Source() string    { return SourceURL }

const (
	SourceFile = "file"
	SourceURL  = "url"
)

// IdentificationRequest is the body of POST /api/identify.
type IdentificationRequest struct {
	// Credential is a short-lived access token issued by POST /api/token.
	// It travels in the apiKey field for wire compatibility.
	Credential string
	Image      ImageRef
}

type identificationRequestWire struct {
	APIKey      string  `json:"apiKey"`
	ImageBase64 *string `json:"imageBase64,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// Validate checks that exactly one non-empty image reference is present.
func (r IdentificationRequest) Validate() error {
	switch img := r.Image.(type) {
	case nil:
		return ErrMissingImage
	case Base64Image:
		if strings.TrimSpace(img.Data) == "" {
			return ErrMissingImage
		}
	case URLImage:
		if strings.TrimSpace(img.URL) == "" {
			return ErrMissingImage
		}
	default:
		return fmt.Errorf("unsupported image reference %T", img)
	}
	return nil
}

func (r IdentificationRequest) MarshalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	wire := identificationRequestWire{APIKey: r.Credential}
	switch img := r.Image.(type) {
	case Base64Image:
		wire.ImageBase64 = &img.Data
	case URLImage:
		wire.ImageURL = &img.URL
	}
	return json.Marshal(wire)
}

func (r *IdentificationRequest) UnmarshalJSON(data []byte) error {
	var wire identificationRequestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	hasBase64 := wire.ImageBase64 != nil && strings.TrimSpace(*wire.ImageBase64) != ""
	hasURL := wire.ImageURL != nil && strings.TrimSpace(*wire.ImageURL) != ""

	switch {
	case hasBase64 && hasURL:
		return ErrAmbiguousImage
	case hasBase64:
		r.Image = Base64Image{Data: *wire.ImageBase64}
	case hasURL:
		r.Image = URLImage{URL: strings.TrimSpace(*wire.ImageURL)}
	default:
		return ErrMissingImage
	}

	r.Credential = wire.APIKey
	return nil
}
