package utils

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrImageTooLarge = errors.New("image exceeds maximum size")
	ErrEmptyImage    = errors.New("empty image data")
	ErrInvalidData   = errors.New("invalid base64 image data")
)

// DownloadImage fetches imageURL with client, reading at most maxSize bytes.
func DownloadImage(ctx context.Context, client *http.Client, imageURL string, maxSize int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported url scheme %q", req.URL.Scheme)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(imageData)) > maxSize {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxSize)
	}
	if len(imageData) == 0 {
		return nil, "", ErrEmptyImage
	}

	return imageData, DetectContentType(imageData), nil
}

// DetectContentType sniffs the MIME type from magic bytes.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsValidImageType checks contentType against allowed, ignoring parameters.
func IsValidImageType(contentType string, allowed []string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	for _, validType := range allowed {
		if ct == strings.ToLower(validType) {
			return true
		}
	}
	return false
}

// MakeDataURL renders data as "data:<mime>;base64,<payload>".
func MakeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL decodes a data URL or a bare base64 string. The returned MIME
// type is the one declared in the data URL prefix, or "" for bare input.
func ParseDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var declared string
	if strings.HasPrefix(s, "data:") {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: missing comma in data url", ErrInvalidData)
		}
		meta := s[len("data:"):idx]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("%w: data url is not base64 encoded", ErrInvalidData)
		}
		declared = strings.TrimSuffix(meta, ";base64")
		if semi := strings.IndexByte(declared, ';'); semi >= 0 {
			declared = declared[:semi]
		}
		s = s[idx+1:]
	}

	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return nonEmpty(b, declared)
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return nonEmpty(b, declared)
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nonEmpty(b, declared)
}

func nonEmpty(b []byte, declared string) ([]byte, string, error) {
	if len(b) == 0 {
		return nil, "", ErrEmptyImage
	}
	return b, declared, nil
}
