package auth

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer credential for backend calls. An empty
// string means "no credential right now"; calls go out unauthenticated and
// the backend decides whether to reject.
type TokenSource interface {
	Token() string
}

// Static returns the same token forever. Useful for tests and one-shot CLIs.
type Static string

func (s Static) Token() string { return string(s) }

// Env reads the token from an environment variable on every call, so an
// external login helper can rotate it while the console runs.
type Env string

func (e Env) Token() string { return os.Getenv(string(e)) }

type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Screened wraps another source and withholds JWTs that are already expired,
// so a dead token is dropped client-side instead of burning a round trip on
// a guaranteed 401. Non-JWT tokens pass through untouched.
type Screened struct {
	Source TokenSource
	Leeway time.Duration
}

func (s Screened) Token() string {
	tok := s.Source.Token()
	if tok == "" {
		return ""
	}
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok, claims); err != nil {
		// Opaque token; let the backend judge it.
		return tok
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time.Add(s.Leeway)) {
		return ""
	}
	return tok
}

// Generate signs a short-lived HS256 token for local development against a
// backend sharing JWT_SECRET, and for test fixtures. Validation is the
// backend's job; the client only screens expiry (see Screened).
func Generate(userID uint, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func secret() []byte {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		s = "change-me-secret"
	}
	return []byte(s)
}
