// Package auth mints and verifies the session tokens the dashboard carries
// in an httpOnly cookie, with a Bearer header accepted as the equivalent
// credential for non-browser callers.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "token"

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewTokenManager(secret string, ttl time.Duration, secure bool) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// Issue signs a token whose subject is the user id.
func (m *TokenManager) Issue(userID string, now time.Time) (string, error) {
	const op = "auth.TokenManager.Issue"

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Verify parses a token and returns the user id it was issued for.
func (m *TokenManager) Verify(token string) (string, error) {
	const op = "auth.TokenManager.Verify"

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%s: missing subject", op)
	}

	return claims.Subject, nil
}

// SessionCookie builds the login cookie. SameSite=None with Secure because
// the dashboard runs on a different origin and sends credentials.
func (m *TokenManager) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteNoneMode,
	}
}

// ClearedCookie expires the session cookie with matching attributes.
func (m *TokenManager) ClearedCookie() *http.Cookie {
	c := m.SessionCookie("")
	c.MaxAge = -1

	return c
}

// FromRequest extracts the raw token, cookie first, Bearer header second.
func FromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}

	return ""
}
