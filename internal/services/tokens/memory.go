package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/ecovision/internal/models"
)

// MemoryStore is used when no Redis is configured. Tokens do not survive a
// restart and are not shared between replicas.
type MemoryStore struct {
	mu        sync.Mutex
	tokens    map[string]time.Time
	ttl       time.Duration
	maxTokens int
	now       func() time.Time
}

// NewMemoryStore keeps at most maxTokens live tokens; zero or less means
// MaxMemoryTokens.
func NewMemoryStore(ttl time.Duration, maxTokens int) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxTokens <= 0 {
		maxTokens = MaxMemoryTokens
	}
	return &MemoryStore{
		tokens:    make(map[string]time.Time),
		ttl:       ttl,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

func (s *MemoryStore) Issue(ctx context.Context) (models.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if len(s.tokens) >= s.maxTokens {
		return models.AccessToken{}, ErrStoreFull
	}

	token := models.AccessToken{Token: uuid.NewString(), ExpiresAt: now.Add(s.ttl)}
	s.tokens[token.Token] = token.ExpiresAt
	return token, nil
}

func (s *MemoryStore) Validate(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.tokens[token]
	if !ok {
		return ErrInvalidToken
	}
	if !s.now().Before(expiresAt) {
		delete(s.tokens, token)
		return ErrInvalidToken
	}
	return nil
}

func (s *MemoryStore) HealthCheck(ctx context.Context) string {
	return models.HealthNotConfigured
}

// sweep drops expired tokens. Callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	for token, expiresAt := range s.tokens {
		if !now.Before(expiresAt) {
			delete(s.tokens, token)
		}
	}
}
