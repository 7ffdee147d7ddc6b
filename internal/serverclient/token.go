package serverclient

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource produces the bearer token attached to every outgoing
// request. Request signing only: the actual OAuth/login flow that
// provisions the signing key is out of scope for this package.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken wraps an already-obtained bearer token (e.g. a personal
// access token issued by the server out of band).
type StaticToken string

func (s StaticToken) Token() (string, error) { return string(s), nil }

// JWTTokenSource signs short-lived bearer tokens with a shared HMAC key,
// caching the current token until shortly before it expires.
type JWTTokenSource struct {
	SigningKey []byte
	Issuer     string
	Subject    string
	TTL        time.Duration

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// Token returns a cached signed token, minting a new one if the cached
// one has expired or is within 30 seconds of expiring.
func (s *JWTTokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" && time.Until(s.expiresAt) > 30*time.Second {
		return s.cached, nil
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    s.Issuer,
		Subject:   s.Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.SigningKey)
	if err != nil {
		return "", err
	}

	s.cached = signed
	s.expiresAt = expiresAt
	return signed, nil
}
