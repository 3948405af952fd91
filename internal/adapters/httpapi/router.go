package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

// Deps regroupe les view-models exposés par la console. Les champs nil
// désactivent les routes correspondantes.
type Deps struct {
	Jobs    *app.JobController
	Sources app.ActivityChecker
	Stats   *app.StatsPoller
	Logs    *app.LogViewer
	Bus     ports.EventBus
}

// Options règle CORS et la limite de requêtes par IP (0 = pas de limite).
type Options struct {
	AllowedOrigins    []string
	RequestsPerMinute int
}

type Server struct {
	logger zerolog.Logger
	deps   Deps
	opts   Options
}

func NewServer(logger zerolog.Logger, deps Deps, opts Options) *Server {
	return &Server{logger: logger, deps: deps, opts: opts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
			ExposedHeaders: []string{"Content-Disposition", "Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// flux longs: pas de timeout
		if s.deps.Bus != nil {
			r.Get("/events", s.handleEvents)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))
			if s.opts.RequestsPerMinute > 0 {
				r.Use(httprate.LimitByIP(s.opts.RequestsPerMinute, time.Minute))
			}

			r.Get("/health", s.handleHealth)
			r.Get("/version", s.handleVersion)
			r.Get("/openapi.json", s.handleOpenAPI)

			if s.deps.Jobs != nil {
				NewStatusHandler(s.deps.Jobs, s.deps.Sources).Routes(r)
			}
			if s.deps.Stats != nil {
				r.Get("/stats", s.handleStats)
			}
			if s.deps.Logs != nil {
				NewLogsHandler(s.deps.Logs).Routes(r)
			}
		})
	})

	return r
}
