package memorybus

import "testing"

func TestBus_FanOutAndCancel(t *testing.T) {
	b := New()
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish("sync.status", []byte(`[]`))

	if evt := <-ch1; evt.Topic != "sync.status" {
		t.Fatalf("sub1: want sync.status, got %q", evt.Topic)
	}
	if evt := <-ch2; string(evt.Payload) != "[]" {
		t.Fatalf("sub2: want [], got %q", evt.Payload)
	}

	cancel1()
	cancel1()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed after cancel")
	}
	if got := b.Subscribers(); got != 1 {
		t.Fatalf("Subscribers: want 1, got %d", got)
	}
}

func TestBus_SlowSubscriberDrops(t *testing.T) {
	b := NewWithBuffer(2)
	_, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < 5; i++ {
		b.Publish("logs.line", []byte("x"))
	}
	if got := b.Dropped(); got != 3 {
		t.Fatalf("Dropped: want 3, got %d", got)
	}
}

func TestBus_CloseStopsDelivery(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	b.Close()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed")
	}
	b.Publish("ignored", nil)

	late, _ := b.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("expected closed channel when subscribing after Close")
	}
}
