// Package supervisor fait tourner les services longs de la console (pollers,
// flux de logs, serveur HTTP) sous un arbre suture.
package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultTreeConfig reprend les valeurs par défaut de suture.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree sépare les services qui lisent le backend (pollers, logs) de l'API
// locale: un backend instable ne coupe pas la console.
type Tree struct {
	root   *suture.Supervisor
	feeds  *suture.Supervisor
	api    *suture.Supervisor
	logger zerolog.Logger
}

func NewTree(logger zerolog.Logger, cfg TreeConfig) *Tree {
	def := DefaultTreeConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = def.FailureDecay
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = def.FailureBackoff
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	logger = logger.With().Str("component", "supervisor").Logger()
	spec := suture.Spec{
		EventHook:        EventHook(logger),
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	child := spec
	child.EventHook = nil

	t := &Tree{
		root:   suture.New("strmsync-console", spec),
		feeds:  suture.New("feeds", child),
		api:    suture.New("api", child),
		logger: logger,
	}
	t.root.Add(t.feeds)
	t.root.Add(t.api)
	return t
}

// EventHook journalise les événements suture (panic, backoff, timeout d'arrêt).
func EventHook(logger zerolog.Logger) suture.EventHook {
	return func(e suture.Event) {
		evt := logger.Warn()
		if e.Type() == suture.EventTypeServicePanic {
			evt = logger.Error()
		}
		evt.Fields(e.Map()).Msg(e.String())
	}
}

// AddFeed ajoute un service qui consomme le backend (poller, flux de logs).
func (t *Tree) AddFeed(svc suture.Service) suture.ServiceToken {
	return t.feeds.Add(svc)
}

func (t *Tree) AddAPI(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport liste les services qui n'ont pas rendu la main à temps.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
