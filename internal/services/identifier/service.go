package identifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phambaophuc/ecovision/internal/config"
	"github.com/phambaophuc/ecovision/internal/metrics"
	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/phambaophuc/ecovision/internal/services/processor"
	"github.com/phambaophuc/ecovision/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("recognizer not configured")
	ErrFetchImage    = errors.New("failed to fetch image")
	ErrRecognition   = errors.New("recognition failed")
)

// Service resolves an image reference into bytes, normalizes them and asks
// the recognizer what they show.
type Service struct {
	processor   *processor.ImageProcessor
	recognizer  Recognizer
	httpClient  *http.Client
	maxFileSize int64
	logger      *zap.Logger
}

func NewService(
	processor *processor.ImageProcessor,
	recognizer Recognizer,
	cfg config.IdentifyConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		processor:   processor,
		recognizer:  recognizer,
		httpClient:  utils.NewDownloadClient(cfg.DownloadTimeout),
		maxFileSize: cfg.MaxFileSize,
		logger:      logger,
	}
}

// Identify runs the whole server-side identification for ref.
func (s *Service) Identify(ctx context.Context, ref models.ImageRef) (models.IdentificationResult, error) {
	if s.recognizer == nil {
		return models.IdentificationResult{}, ErrNotConfigured
	}

	data, err := s.loadImage(ctx, ref)
	if err != nil {
		return models.IdentificationResult{}, err
	}

	img, err := s.processor.Normalize(data)
	if err != nil {
		return models.IdentificationResult{}, err
	}
	if img.Resized {
		metrics.IncResized()
		s.logger.Debug("Image downscaled",
			zap.Int("width", img.Width),
			zap.Int("height", img.Height),
			zap.Int("bytes", len(img.Data)),
		)
	}

	start := time.Now()
	result, err := s.recognizer.Recognize(ctx, Image{Data: img.Data, MIMEType: img.MIMEType})
	if err != nil {
		metrics.ObserveRecognizer(s.recognizer.Name(), "error", time.Since(start))
		if errors.Is(err, ErrRecognition) {
			return models.IdentificationResult{}, err
		}
		return models.IdentificationResult{}, fmt.Errorf("%w: %w", ErrRecognition, err)
	}
	metrics.ObserveRecognizer(s.recognizer.Name(), "ok", time.Since(start))

	return result, nil
}

// Configured reports whether a recognizer is wired in.
func (s *Service) Configured() bool {
	return s.recognizer != nil
}

func (s *Service) loadImage(ctx context.Context, ref models.ImageRef) ([]byte, error) {
	switch img := ref.(type) {
	case models.Base64Image:
		data, declared, err := utils.ParseDataURL(img.Data)
		if err != nil {
			return nil, err
		}
		if declared != "" {
			s.logger.Debug("Decoded inline image", zap.String("declared_type", declared), zap.Int("bytes", len(data)))
		}
		return data, nil
	case models.URLImage:
		data, contentType, err := utils.DownloadImage(ctx, s.httpClient, img.URL, s.maxFileSize)
		if err != nil {
			if errors.Is(err, utils.ErrImageTooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrFetchImage, err)
		}
		s.logger.Debug("Downloaded image", zap.String("content_type", contentType), zap.Int("bytes", len(data)))
		return data, nil
	default:
		return nil, models.ErrMissingImage
	}
}
