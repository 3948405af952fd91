package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/metrics"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

// ActivityChecker indique si une subscription / source est active.
type ActivityChecker interface {
	IsActive(ctx context.Context, provider domain.Provider, ownerID int64) (bool, error)
}

// JobController envoie les commandes start/stop. Il ne suppose jamais l'état
// final d'un job: seul le poll suivant fait foi.
type JobController struct {
	api     ports.JobAPI
	active  ActivityChecker
	pollers map[domain.Provider]*StatusPoller
	logger  zerolog.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

func NewJobController(api ports.JobAPI, active ActivityChecker, logger zerolog.Logger, pollers ...*StatusPoller) *JobController {
	c := &JobController{
		api:      api,
		active:   active,
		pollers:  map[domain.Provider]*StatusPoller{},
		logger:   logger.With().Str("component", "jobs").Logger(),
		inflight: map[string]bool{},
	}
	for _, p := range pollers {
		c.pollers[p.Provider()] = p
	}
	return c
}

func (c *JobController) Poller(provider domain.Provider) (*StatusPoller, error) {
	p, ok := c.pollers[provider]
	if !ok {
		return nil, fmt.Errorf("no status poller for provider %q", provider)
	}
	return p, nil
}

// Start déclenche une synchronisation. Aucune requête n'est envoyée si le
// propriétaire est inactif ou si la clé est déjà "running".
func (c *JobController) Start(ctx context.Context, provider domain.Provider, key domain.StatusKey) error {
	p, err := c.Poller(provider)
	if err != nil {
		return err
	}
	if c.active != nil {
		ok, err := c.active.IsActive(ctx, provider, key.OwnerID)
		if err != nil {
			return err
		}
		if !ok {
			metrics.JobCommands.WithLabelValues(string(provider), "start", "rejected").Inc()
			return ErrOwnerInactive
		}
	}
	if p.View(key).State == domain.SyncRunning {
		metrics.JobCommands.WithLabelValues(string(provider), "start", "rejected").Inc()
		return ErrAlreadyRunning
	}

	release, err := c.acquire(provider, key)
	if err != nil {
		return err
	}
	defer release()

	if err := c.api.StartSync(ctx, provider, key); err != nil {
		metrics.JobCommands.WithLabelValues(string(provider), "start", "error").Inc()
		c.logger.Error().Err(err).Str("provider", string(provider)).Str("key", key.String()).Msg("start sync failed")
		return fmt.Errorf("start sync %s: %w", key, err)
	}
	metrics.JobCommands.WithLabelValues(string(provider), "start", "sent").Inc()
	c.logger.Info().Str("provider", string(provider)).Str("key", key.String()).Msg("sync started")
	c.refresh(ctx, p)
	return nil
}

// StartResult rapporte le démarrage d'une clé dans StartMany.
type StartResult struct {
	Key   domain.StatusKey `json:"key"`
	Err   error            `json:"-"`
	Error string           `json:"error,omitempty"`
}

// StartMany démarre les clés avec au plus limit commandes simultanées. Une
// clé refusée (inactive, déjà lancée) n'interrompt pas les autres.
func (c *JobController) StartMany(ctx context.Context, provider domain.Provider, keys []domain.StatusKey, limit int) []StartResult {
	if limit <= 0 {
		limit = 1
	}
	results := make([]StartResult, len(keys))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, key := range keys {
		g.Go(func() error {
			results[i] = StartResult{Key: key}
			if err := c.Start(ctx, provider, key); err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Stop n'est possible que sur une clé "running".
func (c *JobController) Stop(ctx context.Context, provider domain.Provider, key domain.StatusKey) error {
	p, err := c.Poller(provider)
	if err != nil {
		return err
	}
	if p.View(key).State != domain.SyncRunning {
		metrics.JobCommands.WithLabelValues(string(provider), "stop", "rejected").Inc()
		return ErrNotRunning
	}

	release, err := c.acquire(provider, key)
	if err != nil {
		return err
	}
	defer release()

	if err := c.api.StopSync(ctx, provider, key); err != nil {
		metrics.JobCommands.WithLabelValues(string(provider), "stop", "error").Inc()
		c.logger.Error().Err(err).Str("provider", string(provider)).Str("key", key.String()).Msg("stop sync failed")
		return fmt.Errorf("stop sync %s: %w", key, err)
	}
	metrics.JobCommands.WithLabelValues(string(provider), "stop", "sent").Inc()
	c.logger.Info().Str("provider", string(provider)).Str("key", key.String()).Msg("sync stop requested")
	c.refresh(ctx, p)
	return nil
}

func (c *JobController) refresh(ctx context.Context, p *StatusPoller) {
	if err := p.Refresh(ctx); err != nil {
		// le tick suivant rattrapera
		c.logger.Warn().Err(err).Msg("refresh after command failed")
	}
}

// acquire empêche deux commandes simultanées sur la même clé.
func (c *JobController) acquire(provider domain.Provider, key domain.StatusKey) (func(), error) {
	id := string(provider) + "/" + key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[id] {
		return nil, ErrBusy
	}
	c.inflight[id] = true
	return func() {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
	}, nil
}

type Controls struct {
	Status  domain.SyncStatus `json:"status"`
	Label   string            `json:"label"`
	Action  string            `json:"action"`
	Enabled bool              `json:"enabled"`
	Busy    bool              `json:"busy"`
}

// Controls dérive le bouton affiché pour une clé: "Sync Now" ou "Stop Sync",
// désactivé si le propriétaire est inactif ou si une commande est en cours.
func (c *JobController) Controls(provider domain.Provider, key domain.StatusKey, ownerActive bool) (Controls, error) {
	p, err := c.Poller(provider)
	if err != nil {
		return Controls{}, err
	}
	st := p.View(key)

	c.mu.Lock()
	busy := c.inflight[string(provider)+"/"+key.String()]
	c.mu.Unlock()

	ctl := Controls{Status: st, Label: "Sync Now", Action: "start", Busy: busy}
	if st.State == domain.SyncRunning {
		ctl.Label = "Stop Sync"
		ctl.Action = "stop"
	}
	ctl.Enabled = ownerActive && !busy
	return ctl, nil
}
