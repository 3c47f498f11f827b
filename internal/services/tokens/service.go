package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/phambaophuc/ecovision/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid or expired access token")
	ErrStoreFull    = errors.New("too many live access tokens")
)

// Store issues and checks short-lived access tokens for the identify route.
type Store interface {
	Issue(ctx context.Context) (models.AccessToken, error)
	Validate(ctx context.Context, token string) error
	HealthCheck(ctx context.Context) string
}

const (
	TokenKeyPrefix = "ecovision_token:"
	DefaultTTL     = 15 * time.Minute

	// MaxMemoryTokens is the default bound of the in-memory store. Issue
	// fails with ErrStoreFull until older tokens expire.
	MaxMemoryTokens = 10000
)
