package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/metrics"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

const (
	TopicSyncStatus     = "sync.status"
	TopicSyncTransition = "sync.transition"
)

// StatusPoller garde le cache des statuts de synchronisation d'un provider.
// Le cache est remplacé en bloc à chaque réponse appliquée.
type StatusPoller struct {
	provider domain.Provider
	poller   *Poller[[]domain.SyncStatus]
	bus      ports.EventBus
	logger   zerolog.Logger

	mu    sync.RWMutex
	byKey map[domain.StatusKey]domain.SyncStatus
}

type Transition struct {
	Provider domain.Provider    `json:"provider"`
	OwnerID  int64              `json:"ownerId"`
	Type     domain.ContentType `json:"type"`
	From     domain.SyncState   `json:"from"`
	To       domain.SyncState   `json:"to"`
	Status   domain.SyncStatus  `json:"status"`
}

type StatusSnapshot struct {
	Provider  domain.Provider     `json:"provider"`
	Statuses  []domain.SyncStatus `json:"statuses"`
	Ready     bool                `json:"ready"`
	Seq       uint64              `json:"seq"`
	UpdatedAt time.Time           `json:"updatedAt"`
	LastError string              `json:"lastError,omitempty"`
}

func NewStatusPoller(provider domain.Provider, src ports.StatusSource, bus ports.EventBus, logger zerolog.Logger, interval time.Duration) *StatusPoller {
	s := &StatusPoller{
		provider: provider,
		bus:      bus,
		logger:   logger.With().Str("component", "status-poller").Str("provider", string(provider)).Logger(),
		byKey:    map[domain.StatusKey]domain.SyncStatus{},
	}
	s.poller = NewPoller("status-"+string(provider), interval, func(ctx context.Context) ([]domain.SyncStatus, error) {
		return src.SyncStatuses(ctx, provider)
	}, logger)
	s.poller.OnApply(s.onApply)
	return s
}

func (s *StatusPoller) Provider() domain.Provider { return s.provider }

func (s *StatusPoller) String() string { return s.poller.String() }

func (s *StatusPoller) Serve(ctx context.Context) error { return s.poller.Serve(ctx) }

// Refresh force un poll hors tick (après un start/stop par exemple).
func (s *StatusPoller) Refresh(ctx context.Context) error { return s.poller.Poll(ctx) }

// View renvoie le statut d'une clé; une clé absente du cache est "idle".
func (s *StatusPoller) View(key domain.StatusKey) domain.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.byKey[key]; ok {
		return st
	}
	return domain.IdleStatus(key)
}

// Statuses renvoie le cache trié par (owner, type).
func (s *StatusPoller) Statuses() []domain.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncStatus, 0, len(s.byKey))
	for _, st := range s.byKey {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OwnerID != out[j].OwnerID {
			return out[i].OwnerID < out[j].OwnerID
		}
		return out[i].Type < out[j].Type
	})
	return out
}

func (s *StatusPoller) Snapshot() StatusSnapshot {
	ps := s.poller.Snapshot()
	return StatusSnapshot{
		Provider:  s.provider,
		Statuses:  s.Statuses(),
		Ready:     ps.Ready,
		Seq:       ps.Seq,
		UpdatedAt: ps.UpdatedAt,
		LastError: ps.LastError,
	}
}

func (s *StatusPoller) onApply(_, next []domain.SyncStatus, first bool) {
	byKey := make(map[domain.StatusKey]domain.SyncStatus, len(next))
	for _, st := range next {
		byKey[st.Key()] = st
	}

	s.mu.Lock()
	prev := s.byKey
	s.byKey = byKey
	s.mu.Unlock()

	counts := map[domain.SyncState]int{}
	for _, st := range next {
		counts[st.State]++
	}
	for _, state := range []domain.SyncState{domain.SyncIdle, domain.SyncRunning, domain.SyncSuccess, domain.SyncFailed, domain.SyncCancelled} {
		metrics.SyncJobs.WithLabelValues(string(s.provider), string(state)).Set(float64(counts[state]))
	}

	s.publish(TopicSyncStatus, next)
	if first {
		return
	}
	for key, st := range byKey {
		from := domain.SyncIdle
		if old, ok := prev[key]; ok {
			from = old.State
		}
		if from == st.State {
			continue
		}
		if !domain.CanTransition(from, st.State) {
			s.logger.Warn().Str("key", key.String()).Str("from", string(from)).Str("to", string(st.State)).Msg("unexpected sync transition")
		}
		metrics.SyncTransitions.WithLabelValues(string(s.provider), string(from), string(st.State)).Inc()
		s.logger.Info().Str("key", key.String()).Str("from", string(from)).Str("to", string(st.State)).Msg("sync state changed")
		s.publish(TopicSyncTransition, Transition{
			Provider: s.provider,
			OwnerID:  key.OwnerID,
			Type:     key.Type,
			From:     from,
			To:       st.State,
			Status:   st,
		})
	}
}

func (s *StatusPoller) publish(topic string, v any) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("marshal event")
		return
	}
	s.bus.Publish(topic, b)
}
