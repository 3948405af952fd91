package app

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLogViewer_CapDropsOldest(t *testing.T) {
	v := NewLogViewer(&fakeStreamer{}, nil, zerolog.Nop(), LogViewerOptions{Capacity: 3})
	for i := 1; i <= 5; i++ {
		v.Append("line " + strconv.Itoa(i))
	}
	got := v.Lines()
	if len(got) != 3 || got[0] != "line 3" || got[2] != "line 5" {
		t.Fatalf("want lines 3..5, got %v", got)
	}
}

func TestLogViewer_PauseResume(t *testing.T) {
	v := NewLogViewer(&fakeStreamer{}, nil, zerolog.Nop(), LogViewerOptions{Capacity: 4})
	v.Append("a")
	v.Append("b")
	v.Pause()
	for _, l := range []string{"c", "d", "e"} {
		v.Append(l)
	}

	st := v.State()
	if !st.Paused || st.Pending != 3 || st.Lines != 2 {
		t.Fatalf("paused state: got %+v", st)
	}
	if n := v.Resume(); n != 3 {
		t.Fatalf("Resume: want 3 flushed, got %d", n)
	}
	got := v.Lines()
	want := []string{"b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
	if v.State().Pending != 0 {
		t.Fatalf("pending should be empty after resume")
	}
}

func TestLogViewer_ClearAndExport(t *testing.T) {
	v := NewLogViewer(&fakeStreamer{}, nil, zerolog.Nop(), DefaultLogViewerOptions())
	v.Append("first")
	v.Append("second")
	v.Pause()
	v.Append("hidden")

	var buf bytes.Buffer
	if err := v.Export(&buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.String() != "first\nsecond\n" {
		t.Fatalf("export: got %q", buf.String())
	}

	v.Clear()
	st := v.State()
	if st.Lines != 0 || st.Pending != 0 {
		t.Fatalf("after clear: got %+v", st)
	}
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 3, 1, 14, 5, 9, 123000000, time.FixedZone("CET", 3600))
	if got := ExportFilename(ts); got != "xtream_logs_2025-03-01T13:05:09.123Z.txt" {
		t.Fatalf("filename: got %q", got)
	}
}

func TestLogViewer_ReconnectsAndKeepsLines(t *testing.T) {
	first := newFakeStream("one", "two")
	first.end = errors.New("connection reset")
	second := newFakeStream("three")
	streamer := &fakeStreamer{streams: []*fakeStream{first, second}}

	v := NewLogViewer(streamer, nil, zerolog.Nop(), LogViewerOptions{ReconnectDelay: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(v.Lines()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("lines after reconnect: got %v", v.Lines())
		case <-time.After(5 * time.Millisecond):
		}
	}
	got := v.Lines()
	if got[0] != "one" || got[2] != "three" {
		t.Fatalf("want one,two,three, got %v", got)
	}

	select {
	case <-first.closed:
	default:
		t.Fatalf("broken stream should be closed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Serve did not stop")
	}
	if streamer.Opened() < 2 {
		t.Fatalf("expected a reconnection, opened=%d", streamer.Opened())
	}
}

func TestLogViewer_OpenFailureIsRetried(t *testing.T) {
	streamer := &fakeStreamer{err: errors.New("401")}
	v := NewLogViewer(streamer, nil, zerolog.Nop(), LogViewerOptions{ReconnectDelay: 5 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := v.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve: want deadline exceeded, got %v", err)
	}
	if streamer.Opened() < 2 {
		t.Fatalf("expected retries, opened=%d", streamer.Opened())
	}
	if st := v.State(); st.Connected || st.LastError == "" {
		t.Fatalf("state: got %+v", st)
	}
}
