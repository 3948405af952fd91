package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/validation"
)

func TestSources_CreateSubscriptionValidates(t *testing.T) {
	be := newFakeBackend()
	s := NewSources(be, be, zerolog.Nop())

	_, err := s.CreateSubscription(context.Background(), domain.Subscription{Name: "  ", XtreamURL: "not a url"})
	if ErrorCode(err) != "invalid_form" {
		t.Fatalf("want invalid_form, got %v", err)
	}
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation.Error in chain, got %T", err)
	}
	if len(be.created) != 0 {
		t.Fatalf("no request expected")
	}

	sub := domain.DefaultSubscription()
	sub.Name, sub.XtreamURL, sub.Username, sub.Password = "Main", "http://iptv.example:8080", "u", "p"
	out, err := s.CreateSubscription(context.Background(), sub)
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if out.ID == 0 {
		t.Fatalf("expected server-assigned id")
	}
}

func TestSources_M3URequiresURL(t *testing.T) {
	be := newFakeBackend()
	s := NewSources(be, be, zerolog.Nop())

	if _, err := s.CreateM3USource(context.Background(), domain.M3USource{Name: "Playlist"}); ErrorCode(err) != "invalid_form" {
		t.Fatalf("want invalid_form, got %v", err)
	}
	out, err := s.CreateM3USource(context.Background(), domain.M3USource{Name: "Playlist", URL: "https://example.com/list.m3u"})
	if err != nil {
		t.Fatalf("CreateM3USource: %v", err)
	}
	if out.SourceType != domain.M3USourceURL {
		t.Fatalf("source type: want url, got %q", out.SourceType)
	}
}

func TestSources_IsActiveUsesFreshCache(t *testing.T) {
	be := newFakeBackend()
	be.subs = []domain.Subscription{{ID: 1, IsActive: true}, {ID: 2, IsActive: false}}
	s := NewSources(be, be, zerolog.Nop())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if ok, err := s.IsActive(context.Background(), domain.ProviderXtream, 1); err != nil || !ok {
		t.Fatalf("sub 1: got %v, %v", ok, err)
	}
	if ok, _ := s.IsActive(context.Background(), domain.ProviderXtream, 2); ok {
		t.Fatalf("sub 2 should be inactive")
	}
	if be.subsCalls != 1 {
		t.Fatalf("cache should avoid a second fetch, got %d calls", be.subsCalls)
	}

	now = now.Add(10 * time.Second)
	_, _ = s.IsActive(context.Background(), domain.ProviderXtream, 1)
	if be.subsCalls != 2 {
		t.Fatalf("stale cache should refetch, got %d calls", be.subsCalls)
	}

	if _, err := s.IsActive(context.Background(), domain.ProviderXtream, 99); !errors.Is(err, ErrUnknownOwner) {
		t.Fatalf("want ErrUnknownOwner, got %v", err)
	}
}

func TestSources_OverviewIsolatesFailures(t *testing.T) {
	be := newFakeBackend()
	be.setStatuses(domain.ProviderXtream, domain.SyncStatus{OwnerID: 1, Type: domain.Movies, State: domain.SyncSuccess})
	be.sourcesErr = errors.New("boom")
	s := NewSources(be, be, zerolog.Nop())

	ov, err := s.Overview(context.Background(), domain.ProviderXtream)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.SourcesError == "" || ov.StatusError != "" {
		t.Fatalf("errors: sources=%q status=%q", ov.SourcesError, ov.StatusError)
	}
	if st := ov.Status(domain.StatusKey{OwnerID: 1, Type: domain.Movies}); st.State != domain.SyncSuccess {
		t.Fatalf("statuses must survive: got %q", st.State)
	}
	if st := ov.Status(domain.StatusKey{OwnerID: 1, Type: domain.Series}); st.State != domain.SyncIdle {
		t.Fatalf("missing key: want idle, got %q", st.State)
	}
}

func TestSources_ToggleUpdatesCache(t *testing.T) {
	be := newFakeBackend()
	be.subs = []domain.Subscription{{ID: 1, IsActive: true}}
	s := NewSources(be, be, zerolog.Nop())
	_, _ = s.Subscriptions(context.Background())

	if _, err := s.SetSubscriptionActive(context.Background(), 1, false); err != nil {
		t.Fatalf("SetSubscriptionActive: %v", err)
	}
	if ok, _ := s.IsActive(context.Background(), domain.ProviderXtream, 1); ok {
		t.Fatalf("toggle should be visible immediately")
	}
}
