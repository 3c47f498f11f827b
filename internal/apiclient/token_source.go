package apiclient

import (
	"context"
	"sync"
	"time"

	"github.com/phambaophuc/ecovision/internal/models"
)

// refreshMargin renews a token this long before it expires.
const refreshMargin = 30 * time.Second

// TokenSource hands out the current access token, fetching a new one from
// the server when the cached one is missing or about to expire.
type TokenSource struct {
	client *Client
	now    func() time.Time

	mu    sync.Mutex
	token models.AccessToken
}

func (c *Client) TokenSource() *TokenSource {
	return &TokenSource{client: c, now: time.Now}
}

func (s *TokenSource) Credential(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.token.Expired(s.now(), refreshMargin) {
		return s.token.Token, nil
	}

	token, err := s.client.IssueToken(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	return token.Token, nil
}
