package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/metrics"
)

// Poller interroge une source à intervalle fixe et garde la dernière valeur.
//
// Chaque requête reçoit un numéro croissant; une réponse plus ancienne que la
// dernière appliquée est ignorée. En cas d'erreur la valeur précédente est
// conservée. Pas de backoff: l'intervalle reste fixe.
type Poller[T any] struct {
	name     string
	fetch    func(ctx context.Context) (T, error)
	interval time.Duration
	logger   zerolog.Logger

	// onApply est appelé sous verrou: il ne doit pas rappeler le Poller.
	onApply func(prev, next T, first bool)

	mu        sync.Mutex
	issued    uint64
	applied   uint64
	value     T
	ready     bool
	lastErr   error
	updatedAt time.Time
	errorAt   time.Time
}

type PollSnapshot[T any] struct {
	Value     T         `json:"value"`
	Ready     bool      `json:"ready"`
	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updatedAt"`
	LastError string    `json:"lastError,omitempty"`
	ErrorAt   time.Time `json:"errorAt"`
}

func NewPoller[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error), logger zerolog.Logger) *Poller[T] {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller[T]{
		name:     name,
		fetch:    fetch,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Str("poller", name).Logger(),
	}
}

func (p *Poller[T]) OnApply(fn func(prev, next T, first bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onApply = fn
}

func (p *Poller[T]) String() string { return p.name }

func (p *Poller[T]) Interval() time.Duration { return p.interval }

// Poll lance une requête immédiate. L'erreur renvoyée est celle du fetch; la
// valeur en cache n'est remplacée que par une réponse plus récente.
func (p *Poller[T]) Poll(ctx context.Context) error {
	seq := p.nextSeq()
	v, err := p.fetch(ctx)
	p.apply(seq, v, err)
	return err
}

// Serve est la boucle du poller (compatible suture.Service).
func (p *Poller[T]) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	_ = p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug().Msg("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			// une requête lente ne bloque pas le tick suivant
			go func() { _ = p.Poll(ctx) }()
		}
	}
}

func (p *Poller[T]) nextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}

func (p *Poller[T]) apply(seq uint64, v T, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.applied {
		metrics.RecordPoll(p.name, "stale")
		p.logger.Debug().Uint64("seq", seq).Uint64("applied", p.applied).Msg("discarding stale poll response")
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		p.lastErr = err
		p.errorAt = time.Now()
		metrics.RecordPoll(p.name, "error")
		p.logger.Warn().Err(err).Uint64("seq", seq).Msg("poll failed, keeping previous value")
		return
	}

	prev, first := p.value, !p.ready
	p.value = v
	p.ready = true
	p.applied = seq
	p.lastErr = nil
	p.updatedAt = time.Now()
	metrics.RecordPoll(p.name, "applied")
	if p.onApply != nil {
		p.onApply(prev, v, first)
	}
}

func (p *Poller[T]) Snapshot() PollSnapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PollSnapshot[T]{
		Value:     p.value,
		Ready:     p.ready,
		Seq:       p.applied,
		UpdatedAt: p.updatedAt,
		ErrorAt:   p.errorAt,
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}

// Value renvoie la dernière valeur appliquée (zéro tant que rien n'est arrivé).
func (p *Poller[T]) Value() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.ready
}
