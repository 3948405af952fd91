package sqlite

import (
	"context"
	"testing"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

func TestPreferencesRepository_DefaultsAndPersist(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewPreferencesRepository(db.SQL)

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get(default): %v", err)
	}
	if got.Output != "table" {
		t.Fatalf("Output: want table, got %q", got.Output)
	}
	if got.Sort == nil {
		t.Fatalf("expected non-nil Sort map")
	}

	want := domain.DefaultViewPreferences()
	want.Output = "yaml"
	want.Sort["xtream/1/movies"] = domain.SortConfig{Key: domain.SortByCount, Direction: domain.SortDesc}

	updated, err := repo.Put(ctx, want)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if updated.Output != "yaml" {
		t.Fatalf("Output: want yaml, got %q", updated.Output)
	}
	sc := updated.Sort["xtream/1/movies"]
	if sc.Key != domain.SortByCount || sc.Direction != domain.SortDesc {
		t.Fatalf("Sort: want count/desc, got %+v", sc)
	}
}

func TestPreferencesRepository_CorruptFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.SQL.ExecContext(ctx, `INSERT INTO preferences(key, value_json, updated_at) VALUES('view', '{not json', '')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := NewPreferencesRepository(db.SQL).Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Output != "table" {
		t.Fatalf("Output: want table, got %q", got.Output)
	}
}
