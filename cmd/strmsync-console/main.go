package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/httpapi"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/restapi"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/buildinfo"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/config"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/logging"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/session"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/supervisor"
)

type options struct {
	Config   string `short:"c" long:"config" description:"Fichier de configuration YAML"`
	Addr     string `long:"addr" description:"Adresse d'écoute de la console (ex: 127.0.0.1:8090)"`
	Server   string `long:"server" description:"URL du backend strmsync (ex: http://127.0.0.1:8000)"`
	DB       string `long:"db" description:"Chemin du store SQLite local"`
	LogLevel string `long:"log-level" description:"Niveau de log (trace, debug, info, warn, error)"`
	Version  bool   `long:"version" description:"Affiche la version et quitte"`
}

func main() {
	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if opts.Version {
		info := buildinfo.Current()
		os.Stdout.WriteString(info.Version + " " + info.Commit + "\n")
		return
	}

	cfg, err := config.Load(opts.Config)
	if err == nil {
		err = cfg.Apply(config.Overrides{Server: opts.Server, Addr: opts.Addr, DB: opts.DB, LogLevel: opts.LogLevel})
	}
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format, "strmsync-console")
	logging.Install(logger)

	logger.Info().Interface("build", buildinfo.Current()).Str("server", cfg.Server.URL).Str("db", cfg.Store.Path).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, cfg.Store.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	creds := session.NewReloader(sqlite.NewSessionRepository(db.SQL), cfg.Server.URL)
	client := restapi.New(cfg.Server.URL, creds, restapi.Options{
		Timeout:           cfg.Server.Timeout,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
		UserAgent:         buildinfo.UserAgent("strmsync-console"),
		Logger:            logger,
	})
	if _, err := creds.Token(); err != nil {
		logger.Warn().Err(err).Msg("no usable session yet, run `strmctl login`; pollers will retry")
	}

	bus := memorybus.New()
	defer bus.Close()

	xtream := app.NewStatusPoller(domain.ProviderXtream, client, bus, logger, cfg.Poll.StatusInterval)
	m3u := app.NewStatusPoller(domain.ProviderM3U, client, bus, logger, cfg.Poll.StatusInterval)
	sources := app.NewSources(client, client, logger)
	jobs := app.NewJobController(client, sources, logger, xtream, m3u)
	stats := app.NewStatsPoller(client, bus, logger, cfg.Poll.StatsInterval)
	logs := app.NewLogViewer(client, bus, logger, app.LogViewerOptions{
		Capacity:       cfg.Logs.BufferSize,
		ReconnectDelay: cfg.Logs.ReconnectDelay,
	})

	srv := httpapi.NewServer(logger, httpapi.Deps{
		Jobs:    jobs,
		Sources: sources,
		Stats:   stats,
		Logs:    logs,
		Bus:     bus,
	}, httpapi.Options{
		AllowedOrigins:    cfg.Console.AllowedOrigins,
		RequestsPerMinute: cfg.Console.RequestsPerMinute,
	})
	httpServer := &http.Server{
		Addr:              cfg.Console.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	tree.AddFeed(xtream)
	tree.AddFeed(m3u)
	tree.AddFeed(stats)
	tree.AddFeed(logs)
	tree.AddAPI(supervisor.NewHTTPService(httpServer, 10*time.Second))

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", cfg.Console.Addr).Msg("listening")
	if err := tree.Serve(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("supervisor stopped")
	}
	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		log.Warn().Int("count", len(report)).Msg("services did not stop in time")
	}
	logger.Info().Msg("bye")
}
