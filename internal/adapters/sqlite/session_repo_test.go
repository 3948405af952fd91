package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

func TestSessionRepository_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSessionRepository(db.SQL)
	if _, err := repo.Get(ctx); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := repo.Put(ctx, domain.StoredSession{ServerURL: "http://nas:8000", Username: "admin", Token: "t1", ExpiresAt: exp}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// une seule session: le second Put remplace le premier
	if err := repo.Put(ctx, domain.StoredSession{ServerURL: "http://nas:8000", Username: "admin", Token: "t2", ExpiresAt: exp}); err != nil {
		t.Fatalf("Put(2): %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != "t2" {
		t.Fatalf("Token: want t2, got %q", got.Token)
	}
	if !got.ExpiresAt.Equal(exp) {
		t.Fatalf("ExpiresAt: want %v, got %v", exp, got.ExpiresAt)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Delete, got %v", err)
	}
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "strmsync.db")
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSessionRepository(db.SQL)
	if err := repo.Put(ctx, domain.StoredSession{ServerURL: "http://x", Username: "u", Token: "tok"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.ExpiresAt.IsZero() {
		t.Fatalf("expected zero ExpiresAt, got %v", got.ExpiresAt)
	}
}
