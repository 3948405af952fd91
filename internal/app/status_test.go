package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

func TestStatusPoller_AbsentKeyIsIdle(t *testing.T) {
	be := newFakeBackend()
	be.setStatuses(domain.ProviderXtream, domain.SyncStatus{OwnerID: 1, Type: domain.Movies, State: domain.SyncRunning})
	sp := NewStatusPoller(domain.ProviderXtream, be, nil, zerolog.Nop(), time.Second)

	if err := sp.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if st := sp.View(domain.StatusKey{OwnerID: 1, Type: domain.Movies}); st.State != domain.SyncRunning {
		t.Fatalf("1/movies: want running, got %q", st.State)
	}
	st := sp.View(domain.StatusKey{OwnerID: 1, Type: domain.Series})
	if st.State != domain.SyncIdle || st.State.Label() != "Idle" {
		t.Fatalf("1/series: want idle, got %q", st.State)
	}
}

func TestStatusPoller_ReplacesCacheWholesale(t *testing.T) {
	be := newFakeBackend()
	be.setStatuses(domain.ProviderXtream,
		domain.SyncStatus{OwnerID: 1, Type: domain.Movies, State: domain.SyncSuccess},
		domain.SyncStatus{OwnerID: 2, Type: domain.Series, State: domain.SyncFailed},
	)
	sp := NewStatusPoller(domain.ProviderXtream, be, nil, zerolog.Nop(), time.Second)
	_ = sp.Refresh(context.Background())

	be.setStatuses(domain.ProviderXtream, domain.SyncStatus{OwnerID: 1, Type: domain.Movies, State: domain.SyncRunning})
	_ = sp.Refresh(context.Background())

	if got := len(sp.Statuses()); got != 1 {
		t.Fatalf("Statuses: want 1, got %d", got)
	}
	if st := sp.View(domain.StatusKey{OwnerID: 2, Type: domain.Series}); st.State != domain.SyncIdle {
		t.Fatalf("dropped key: want idle, got %q", st.State)
	}
}

func TestStatusPoller_ErrorKeepsCache(t *testing.T) {
	be := newFakeBackend()
	be.setStatuses(domain.ProviderM3U, domain.SyncStatus{OwnerID: 3, Type: domain.Series, State: domain.SyncRunning})
	sp := NewStatusPoller(domain.ProviderM3U, be, nil, zerolog.Nop(), time.Second)
	_ = sp.Refresh(context.Background())

	be.mu.Lock()
	be.statusErr = errors.New("network down")
	be.mu.Unlock()
	if err := sp.Refresh(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	snap := sp.Snapshot()
	if len(snap.Statuses) != 1 || snap.LastError != "network down" {
		t.Fatalf("snapshot: got %d statuses, lastError=%q", len(snap.Statuses), snap.LastError)
	}
}

func TestStatusPoller_PublishesTransitions(t *testing.T) {
	be := newFakeBackend()
	bus := memorybus.New()
	defer bus.Close()
	ch, cancel := bus.Subscribe()
	defer cancel()

	key := domain.StatusKey{OwnerID: 1, Type: domain.Movies}
	sp := NewStatusPoller(domain.ProviderXtream, be, bus, zerolog.Nop(), time.Second)

	be.setStatuses(domain.ProviderXtream, domain.SyncStatus{OwnerID: 1, Type: domain.Movies, State: domain.SyncRunning})
	_ = sp.Refresh(context.Background())
	be.setStatuses(domain.ProviderXtream, domain.SyncStatus{OwnerID: 1, Type: domain.Movies, State: domain.SyncSuccess})
	_ = sp.Refresh(context.Background())

	var transitions []Transition
	timeout := time.After(time.Second)
	for len(transitions) < 1 {
		select {
		case evt := <-ch:
			if evt.Topic != TopicSyncTransition {
				continue
			}
			var tr Transition
			if err := json.Unmarshal(evt.Payload, &tr); err != nil {
				t.Fatalf("decode transition: %v", err)
			}
			transitions = append(transitions, tr)
		case <-timeout:
			t.Fatalf("no transition published")
		}
	}
	tr := transitions[0]
	if tr.OwnerID != key.OwnerID || tr.From != domain.SyncRunning || tr.To != domain.SyncSuccess {
		t.Fatalf("transition: got %+v", tr)
	}
}
