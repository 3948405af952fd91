package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/restapi"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/buildinfo"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/config"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/logging"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/session"
)

// cli regroupe ce dont une commande a besoin: config, store local, session
// et client REST.
type cli struct {
	cfg      config.Config
	db       *sqlite.DB
	sessions *sqlite.SessionRepository
	prefs    *sqlite.PreferencesRepository
	sess     *session.Session
	client   *restapi.Client
	logger   zerolog.Logger
	out      io.Writer
	in       *bufio.Reader
}

func open(ctx context.Context) (*cli, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(config.Overrides{Server: root.Server, DB: root.DB, LogLevel: root.LogLevel}); err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, cfg.Logging.Level, "console", "strmctl")
	logging.Install(logger)

	db, err := sqlite.Open(ctx, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	sessions := sqlite.NewSessionRepository(db.SQL)
	sess, err := session.Load(ctx, sessions, cfg.Server.URL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	client := restapi.New(cfg.Server.URL, sess, restapi.Options{
		Timeout:           cfg.Server.Timeout,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
		UserAgent:         buildinfo.UserAgent("strmctl"),
		Logger:            logger,
	})

	return &cli{
		cfg:      cfg,
		db:       db,
		sessions: sessions,
		prefs:    sqlite.NewPreferencesRepository(db.SQL),
		sess:     sess,
		client:   client,
		logger:   logger,
		out:      os.Stdout,
		in:       bufio.NewReader(os.Stdin),
	}, nil
}

func (c *cli) Close() error { return c.db.Close() }

// withCLI ouvre l'environnement, exécute fn puis ferme le store.
func withCLI(fn func(ctx context.Context, c *cli) error) error {
	ctx, stop := signalContext()
	defer stop()
	c, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	return fn(ctx, c)
}

func (c *cli) preferences(ctx context.Context) domain.ViewPreferences {
	p, err := c.prefs.Get(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("read preferences failed, using defaults")
		return domain.DefaultViewPreferences()
	}
	return p
}

func (c *cli) format(ctx context.Context) string {
	if root.Output != "" {
		return root.Output
	}
	if f := c.preferences(ctx).Output; f != "" {
		return f
	}
	return "table"
}
