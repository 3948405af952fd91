package sse

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReader_ParsesEvents(t *testing.T) {
	stream := ": ping\n\n" +
		"id: 7\nevent: log\ndata: first\n\n" +
		"data: multi\ndata: line\n\n" +
		"retry: 5000\n\n" +
		"data: 2025-03-01 INFO sync done\r\n\r\n"
	r := NewReader(io.NopCloser(strings.NewReader(stream)))

	evt, err := r.Next()
	if err != nil {
		t.Fatalf("Next(1): %v", err)
	}
	if evt.ID != "7" || evt.Event != "log" || evt.Data != "first" {
		t.Fatalf("unexpected event: %+v", evt)
	}

	evt, err = r.Next()
	if err != nil {
		t.Fatalf("Next(2): %v", err)
	}
	if evt.Data != "multi\nline" {
		t.Fatalf("multi-line data: got %q", evt.Data)
	}
	if evt.ID != "7" {
		t.Fatalf("last event id should carry over, got %q", evt.ID)
	}

	evt, err = r.Next()
	if err != nil {
		t.Fatalf("Next(3): %v", err)
	}
	if evt.Data != "2025-03-01 INFO sync done" {
		t.Fatalf("CRLF data: got %q", evt.Data)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestLines_OneMessagePerLine(t *testing.T) {
	// le backend renvoie la ligne brute, fin de ligne comprise
	stream := "data: line one\n\n\ndata: line two\n\n\n"
	l := NewLines(io.NopCloser(strings.NewReader(stream)))

	var got []string
	for {
		line, err := l.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, line)
	}
	if len(got) != 2 || got[0] != "line one" || got[1] != "line two" {
		t.Fatalf("want [line one, line two], got %q", got)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestReader_TruncatedMessageIsDelivered(t *testing.T) {
	r := NewReader(io.NopCloser(strings.NewReader("data: partial")))
	evt, err := r.Next()
	if err != nil || evt.Data != "partial" {
		t.Fatalf("want partial, got %q (%v)", evt.Data, err)
	}
}
