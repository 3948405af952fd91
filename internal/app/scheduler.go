package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

const HistoryLimit = 50

// SchedulerPanel garde la dernière config connue par type de contenu.
type SchedulerPanel struct {
	api    ports.SchedulerAPI
	logger zerolog.Logger

	mu      sync.RWMutex
	configs map[domain.ContentType]domain.ScheduleConfig
}

func NewSchedulerPanel(api ports.SchedulerAPI, logger zerolog.Logger) *SchedulerPanel {
	return &SchedulerPanel{
		api:     api,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		configs: map[domain.ContentType]domain.ScheduleConfig{},
	}
}

func (p *SchedulerPanel) Load(ctx context.Context) error {
	list, err := p.api.ScheduleConfigs(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("load schedule configs failed")
		return fmt.Errorf("load schedule configs: %w", err)
	}
	next := map[domain.ContentType]domain.ScheduleConfig{}
	for _, c := range list {
		t, err := domain.ParseContentType(string(c.Type))
		if err != nil {
			p.logger.Warn().Str("type", string(c.Type)).Msg("ignoring schedule for unknown content type")
			continue
		}
		c.Type = t
		next[t] = c
	}
	p.mu.Lock()
	p.configs = next
	p.mu.Unlock()
	return nil
}

// Config renvoie la config d'un type; disabled/daily tant que le serveur n'en a pas.
func (p *SchedulerPanel) Config(t domain.ContentType) domain.ScheduleConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.configs[t]; ok {
		return c
	}
	return domain.DefaultScheduleConfig(t)
}

// Configs renvoie une config par type connu, dans l'ordre films puis séries.
func (p *SchedulerPanel) Configs() []domain.ScheduleConfig {
	out := make([]domain.ScheduleConfig, 0, len(domain.ContentTypes))
	for _, t := range domain.ContentTypes {
		out = append(out, p.Config(t))
	}
	return out
}

func (p *SchedulerPanel) SetEnabled(ctx context.Context, t domain.ContentType, enabled bool) (domain.ScheduleConfig, error) {
	cur := p.Config(t)
	return p.update(ctx, t, domain.ScheduleUpdate{Enabled: enabled, Frequency: cur.Frequency})
}

// SetFrequency est accepté même quand la planification est désactivée.
func (p *SchedulerPanel) SetFrequency(ctx context.Context, t domain.ContentType, frequency string) (domain.ScheduleConfig, error) {
	f, err := domain.ParseFrequency(frequency)
	if err != nil {
		return domain.ScheduleConfig{}, err
	}
	cur := p.Config(t)
	return p.update(ctx, t, domain.ScheduleUpdate{Enabled: cur.Enabled, Frequency: f})
}

// update envoie toujours les deux champs: le serveur remplace la config entière.
func (p *SchedulerPanel) update(ctx context.Context, t domain.ContentType, u domain.ScheduleUpdate) (domain.ScheduleConfig, error) {
	if _, err := domain.ParseContentType(string(t)); err != nil {
		return domain.ScheduleConfig{}, err
	}
	if !u.Frequency.Valid() {
		u.Frequency = domain.FrequencyDaily
	}
	cfg, err := p.api.UpdateSchedule(ctx, t, u)
	if err != nil {
		p.logger.Error().Err(err).Str("type", string(t)).Msg("update schedule failed")
		return domain.ScheduleConfig{}, fmt.Errorf("update schedule %s: %w", t, err)
	}
	if cfg.Type == "" {
		cfg.Type = t
	}
	p.mu.Lock()
	p.configs[t] = cfg
	p.mu.Unlock()
	p.logger.Info().Str("type", string(t)).Bool("enabled", cfg.Enabled).Str("frequency", string(cfg.Frequency)).Msg("schedule updated")
	return cfg, nil
}

// History renvoie les 50 dernières exécutions dans l'ordre du serveur.
func (p *SchedulerPanel) History(ctx context.Context) ([]domain.ExecutionRecord, error) {
	recs, err := p.api.ExecutionHistory(ctx, HistoryLimit)
	if err != nil {
		p.logger.Error().Err(err).Msg("load execution history failed")
		return nil, fmt.Errorf("load execution history: %w", err)
	}
	return recs, nil
}
