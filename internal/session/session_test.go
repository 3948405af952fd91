package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/sqlite"
)

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestSession_ReadsClaimsWithoutVerification(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s := New("http://nas:8000/")
	s.Set("", signedToken(t, "admin", exp))

	if s.Username() != "admin" {
		t.Fatalf("Username: want admin, got %q", s.Username())
	}
	if !s.ExpiresAt().Equal(exp) {
		t.Fatalf("ExpiresAt: want %v, got %v", exp, s.ExpiresAt())
	}
	if s.ServerURL() != "http://nas:8000" {
		t.Fatalf("ServerURL: got %q", s.ServerURL())
	}
	if _, err := s.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}
}

func TestSession_ExpiredBeforeRequest(t *testing.T) {
	s := New("http://nas")
	s.Set("admin", signedToken(t, "admin", time.Now().Add(time.Hour)))
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := s.Token(); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if s.LoggedIn() {
		t.Fatalf("expired session should not be logged in")
	}
}

func TestSession_OpaqueTokenAndClear(t *testing.T) {
	s := New("http://nas")
	if _, err := s.Token(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	s.Set("bob", "not-a-jwt")
	tok, err := s.Token()
	if err != nil || tok != "not-a-jwt" {
		t.Fatalf("Token: want not-a-jwt, got %q (%v)", tok, err)
	}
	if !s.ExpiresAt().IsZero() {
		t.Fatalf("opaque token should have no expiry")
	}
	s.Clear()
	if _, err := s.Token(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn after Clear, got %v", err)
	}
}

func TestSession_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := sqlite.NewSessionRepository(db.SQL)

	s := New("http://nas:8000")
	s.Set("admin", signedToken(t, "admin", time.Now().Add(time.Hour)))
	if err := Save(ctx, repo, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(ctx, repo, "http://nas:8000/")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Username() != "admin" || !loaded.LoggedIn() {
		t.Fatalf("unexpected loaded session: %+v", loaded.Stored())
	}

	other, err := Load(ctx, repo, "http://other:8000")
	if err != nil {
		t.Fatalf("Load(other): %v", err)
	}
	if other.LoggedIn() {
		t.Fatalf("session for another server must not be reused")
	}

	s.Clear()
	if err := Save(ctx, repo, s); err != nil {
		t.Fatalf("Save(cleared): %v", err)
	}
	empty, err := Load(ctx, repo, "http://nas:8000")
	if err != nil {
		t.Fatalf("Load(after logout): %v", err)
	}
	if empty.LoggedIn() {
		t.Fatalf("expected logged out after Save of cleared session")
	}
}

func TestReloader_PicksUpLaterLogin(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := sqlite.NewSessionRepository(db.SQL)

	r := NewReloader(repo, "http://nas:8000")
	r.minInterval = 0
	if _, err := r.Token(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("empty store: want ErrNotLoggedIn, got %v", err)
	}

	s := New("http://nas:8000")
	s.Set("admin", signedToken(t, "admin", time.Now().Add(time.Hour)))
	if err := Save(ctx, repo, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tok, err := r.Token()
	if err != nil || tok == "" {
		t.Fatalf("after login: got %q, %v", tok, err)
	}
	if r.Username() != "admin" {
		t.Fatalf("Username: want admin, got %q", r.Username())
	}
}
