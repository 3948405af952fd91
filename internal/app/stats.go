package app

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

const TopicStats = "dashboard.stats"

// StatsPoller garde les compteurs du tableau de bord (même politique que les
// statuts: intervalle fixe, valeur précédente conservée en cas d'erreur).
type StatsPoller struct {
	poller *Poller[domain.DashboardStats]
	bus    ports.EventBus
	logger zerolog.Logger
}

func NewStatsPoller(src ports.StatsSource, bus ports.EventBus, logger zerolog.Logger, interval time.Duration) *StatsPoller {
	s := &StatsPoller{
		bus:    bus,
		logger: logger.With().Str("component", "stats-poller").Logger(),
	}
	s.poller = NewPoller("dashboard-stats", interval, src.DashboardStats, logger)
	s.poller.OnApply(s.onApply)
	return s
}

func (s *StatsPoller) String() string { return s.poller.String() }

func (s *StatsPoller) Serve(ctx context.Context) error { return s.poller.Serve(ctx) }

func (s *StatsPoller) Refresh(ctx context.Context) error { return s.poller.Poll(ctx) }

func (s *StatsPoller) Snapshot() PollSnapshot[domain.DashboardStats] { return s.poller.Snapshot() }

func (s *StatsPoller) onApply(_, next domain.DashboardStats, _ bool) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(next)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal stats event")
		return
	}
	s.bus.Publish(TopicStats, b)
}
