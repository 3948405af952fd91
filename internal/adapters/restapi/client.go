// Package restapi est le client HTTP de l'API /api/v1 du serveur strmsync.
package restapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/metrics"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

const apiPrefix = "/api/v1"

// Credentials fournit le jeton courant (implémenté par session.Session).
type Credentials interface {
	Token() (string, error)
}

type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	Logger            zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Timeout:           15 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
		UserAgent:         "strmsync-console",
		Logger:            zerolog.Nop(),
	}
}

type Client struct {
	baseURL   string
	creds     Credentials
	client    *http.Client
	stream    *http.Client
	limiter   *rate.Limiter
	cb        *gobreaker.CircuitBreaker[struct{}]
	userAgent string
	logger    zerolog.Logger
}

func New(baseURL string, creds Credentials, opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = def.RequestsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = def.Burst
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = def.UserAgent
	}

	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		creds:     creds,
		client:    &http.Client{Timeout: opts.Timeout},
		stream:    &http.Client{},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		userAgent: opts.UserAgent,
		logger:    opts.Logger.With().Str("component", "restapi").Logger(),
	}
	c.cb = newBreaker("strmsync-api", c.logger)
	return c
}

// WithHTTPClient remplace le client HTTP (tests, transport custom).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.client = hc
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// APIError est une réponse >= 400. Detail reprend le champ "detail" de FastAPI.
type APIError struct {
	Status int
	Detail string
	Route  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: http %d: %s", e.Route, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: http %d", e.Route, e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ports.ErrUnauthorized
	case http.StatusNotFound:
		return ports.ErrNotFound
	case http.StatusConflict:
		return ports.ErrConflict
	default:
		return nil
	}
}

type call struct {
	method string
	// route est le gabarit du chemin, utilisé comme label de métrique
	route  string
	path   string
	query  url.Values
	body   any
	form   url.Values
	out    any
	noAuth bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	var token string
	if !cl.noAuth {
		t, err := c.token()
		if err != nil {
			return err
		}
		token = t
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, token, cl)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.cb.Name(), "rejected").Inc()
			c.logger.Warn().Err(err).Str("route", cl.route).Msg("request rejected by circuit breaker")
			return fmt.Errorf("%s: %w", cl.route, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(c.cb.Name(), "failure").Inc()
		return err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.cb.Name(), "success").Inc()
	return nil
}

func (c *Client) token() (string, error) {
	if c.creds == nil {
		return "", ports.ErrUnauthorized
	}
	return c.creds.Token()
}

func (c *Client) roundTrip(ctx context.Context, token string, cl call) error {
	u := c.baseURL + apiPrefix + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case cl.form != nil:
		body = strings.NewReader(cl.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case cl.body != nil:
		b, err := json.Marshal(cl.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(cl.method, cl.route, 0, time.Since(start))
		return fmt.Errorf("%s %s: %w", cl.method, cl.route, err)
	}
	defer resp.Body.Close()
	metrics.RecordAPIRequest(cl.method, cl.route, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Route: cl.method + " " + cl.route}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		apiErr.Detail = decodeDetail(b)
		c.logger.Debug().Int("status", resp.StatusCode).Str("route", cl.route).Str("detail", apiErr.Detail).Msg("api error")
		return apiErr
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", cl.method, cl.route, err)
	}
	return nil
}

// decodeDetail lit {"detail": "..."} ou la liste d'erreurs de validation FastAPI.
func decodeDetail(b []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func newBreaker(name string, logger zerolog.Logger) *gobreaker.CircuitBreaker[struct{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		// une erreur 4xx est une réponse valide du serveur
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < 500
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

var (
	_ ports.StatusSource = (*Client)(nil)
	_ ports.JobAPI       = (*Client)(nil)
	_ ports.CatalogAPI   = (*Client)(nil)
	_ ports.SchedulerAPI = (*Client)(nil)
	_ ports.AdminAPI     = (*Client)(nil)
	_ ports.SourcesAPI   = (*Client)(nil)
	_ ports.StatsSource  = (*Client)(nil)
	_ ports.LogStreamer  = (*Client)(nil)
)

// UserDetail expose le message serveur (voir app.UserMessage).
func (e *APIError) UserDetail() string { return e.Detail }
