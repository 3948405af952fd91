package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPoller_KeepsValueOnError(t *testing.T) {
	var fail atomic.Bool
	var n atomic.Int32
	p := NewPoller("test", time.Second, func(context.Context) (int, error) {
		if fail.Load() {
			return 0, errors.New("boom")
		}
		return int(n.Add(1)), nil
	}, zerolog.Nop())

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	fail.Store(true)
	if err := p.Poll(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	snap := p.Snapshot()
	if snap.Value != 1 || !snap.Ready {
		t.Fatalf("value: want 1 ready, got %d ready=%v", snap.Value, snap.Ready)
	}
	if snap.LastError != "boom" {
		t.Fatalf("LastError: want boom, got %q", snap.LastError)
	}

	fail.Store(false)
	_ = p.Poll(context.Background())
	if snap := p.Snapshot(); snap.Value != 2 || snap.LastError != "" {
		t.Fatalf("after recovery: got %d / %q", snap.Value, snap.LastError)
	}
}

func TestPoller_DiscardsStaleResponse(t *testing.T) {
	p := NewPoller("stale", time.Second, func(context.Context) (string, error) { return "", nil }, zerolog.Nop())

	old := p.nextSeq()
	recent := p.nextSeq()
	p.apply(recent, "recent", nil)
	p.apply(old, "old", nil)

	if v, _ := p.Value(); v != "recent" {
		t.Fatalf("want recent, got %q", v)
	}
	if snap := p.Snapshot(); snap.Seq != recent {
		t.Fatalf("Seq: want %d, got %d", recent, snap.Seq)
	}
}

func TestPoller_OnApplyFirstFlag(t *testing.T) {
	var firsts []bool
	p := NewPoller("first", time.Second, func(context.Context) (int, error) { return 7, nil }, zerolog.Nop())
	p.OnApply(func(_, _ int, first bool) { firsts = append(firsts, first) })

	_ = p.Poll(context.Background())
	_ = p.Poll(context.Background())
	if len(firsts) != 2 || !firsts[0] || firsts[1] {
		t.Fatalf("first flags: got %v", firsts)
	}
}

func TestPoller_ServePollsImmediatelyAndStops(t *testing.T) {
	var n atomic.Int32
	p := NewPoller("serve", 10*time.Millisecond, func(context.Context) (int, error) {
		return int(n.Add(1)), nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for n.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected several polls, got %d", n.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve: want context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}

func TestPoller_IgnoresCancelledFetch(t *testing.T) {
	p := NewPoller("cancel", time.Second, func(ctx context.Context) (int, error) { return 0, ctx.Err() }, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Poll(ctx)
	if snap := p.Snapshot(); snap.LastError != "" {
		t.Fatalf("cancellation should not be recorded, got %q", snap.LastError)
	}
}
