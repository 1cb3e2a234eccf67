package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 7*24*time.Hour, true)

	token, err := m.Issue("user-123", time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("subject = %q, want user-123", userID)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewTokenManager("secret-a", time.Hour, true)
	other := NewTokenManager("secret-b", time.Hour, true)

	token, err := m.Issue("user-123", time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification failure with a different secret")
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, true)

	token, err := m.Issue("user-123", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Error("expected verification failure for an expired token")
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	m := NewTokenManager("test-secret", 7*24*time.Hour, true)

	c := m.SessionCookie("abc")

	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteNoneMode {
		t.Errorf("cookie attributes wrong: %+v", c)
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want /", c.Path)
	}
	if c.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("cookie max-age = %d", c.MaxAge)
	}

	cleared := m.ClearedCookie()
	if cleared.MaxAge != -1 {
		t.Errorf("cleared cookie max-age = %d, want -1", cleared.MaxAge)
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromRequest(r) != "" {
		t.Error("expected empty token without credentials")
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	if got := FromRequest(r); got != "header-token" {
		t.Errorf("bearer token = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")
	if got := FromRequest(r); got != "cookie-token" {
		t.Errorf("cookie should win over header, got %q", got)
	}
}
