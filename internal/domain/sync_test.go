package domain

import (
	"errors"
	"testing"
)

func TestCanTransition_JobLifecycle(t *testing.T) {
	allowed := [][2]SyncState{
		{SyncIdle, SyncRunning},
		{"", SyncRunning},
		{SyncRunning, SyncSuccess},
		{SyncRunning, SyncFailed},
		{SyncRunning, SyncCancelled},
		{SyncSuccess, SyncRunning},
		{SyncFailed, SyncRunning},
		{SyncCancelled, SyncRunning},
		{SyncRunning, SyncRunning},
	}
	for _, tr := range allowed {
		if !CanTransition(tr[0], tr[1]) {
			t.Fatalf("%q -> %q should be allowed", tr[0], tr[1])
		}
	}

	denied := [][2]SyncState{
		{SyncIdle, SyncSuccess},
		{SyncSuccess, SyncFailed},
		{SyncCancelled, SyncSuccess},
	}
	for _, tr := range denied {
		if CanTransition(tr[0], tr[1]) {
			t.Fatalf("%q -> %q should be denied", tr[0], tr[1])
		}
	}
}

func TestParseContentType(t *testing.T) {
	got, err := ParseContentType(" Movies ")
	if err != nil || got != Movies {
		t.Fatalf("want movies, got %q (%v)", got, err)
	}
	if _, err := ParseContentType("live"); !errors.Is(err, ErrUnknownContentType) {
		t.Fatalf("expected ErrUnknownContentType, got %v", err)
	}
	if Movies.EntryType() != "movie" || Series.EntryType() != "series" {
		t.Fatalf("unexpected entry types: %q %q", Movies.EntryType(), Series.EntryType())
	}
}

func TestSyncState_LabelDefaultsToIdle(t *testing.T) {
	if got := SyncState("").Label(); got != "Idle" {
		t.Fatalf("want Idle, got %q", got)
	}
	if got := SyncRunning.Label(); got != "running" {
		t.Fatalf("want running, got %q", got)
	}
}
