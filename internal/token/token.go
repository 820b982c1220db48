package token

import "time"

// Token is one issued access credential. A refresh produces a new value;
// records are never mutated in place.
type Token struct {
	AccessToken string    `json:"access_token"`
	ObtainedAt  time.Time `json:"obtained_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be used at now, keeping buffer of
// headroom before the issuer-declared expiry to avoid racing the issuer's own
// clock.
func (t Token) Valid(now time.Time, buffer time.Duration) bool {
	if t.AccessToken == "" || t.ExpiresAt.IsZero() {
		return false
	}
	return now.Add(buffer).Before(t.ExpiresAt)
}
