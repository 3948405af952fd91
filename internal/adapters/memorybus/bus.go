package memorybus

import (
	"sync"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

// Bus diffuse les événements de la console (statuts, logs, admin) à tous les
// abonnés SSE. Un abonné trop lent perd des événements plutôt que de bloquer
// les pollers.
type Bus struct {
	mu      sync.Mutex
	subs    map[chan ports.Event]struct{}
	alive   bool
	buffer  int
	dropped uint64
}

func New() *Bus {
	return NewWithBuffer(64)
}

func NewWithBuffer(size int) *Bus {
	if size <= 0 {
		size = 1
	}
	return &Bus{subs: make(map[chan ports.Event]struct{}), alive: true, buffer: size}
}

func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	evt := ports.Event{Topic: topic, Payload: payload}
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.dropped++
		}
	}
}

func (b *Bus) Subscribe() (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, b.buffer)
	b.mu.Lock()
	if !b.alive {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

// Subscribers renvoie le nombre d'abonnés actifs.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close ferme tous les abonnements; les Publish suivants sont ignorés.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	b.alive = false
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
