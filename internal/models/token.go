package models

import "time"

// AccessToken is a short-lived credential for POST /api/identify.
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is no longer usable at now, keeping a
// safety margin so a token is not sent right before it lapses.
func (t AccessToken) Expired(now time.Time, margin time.Duration) bool {
	if t.Token == "" {
		return true
	}
	return !now.Add(margin).Before(t.ExpiresAt)
}
