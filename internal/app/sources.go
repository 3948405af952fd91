package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/validation"
)

// activityTTL borne l'âge du cache utilisé par IsActive.
const activityTTL = 5 * time.Second

// Sources gère les subscriptions Xtream et les sources M3U.
type Sources struct {
	api      ports.SourcesAPI
	statuses ports.StatusSource
	logger   zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	subs   map[int64]domain.Subscription
	subsAt time.Time
	m3u    map[int64]domain.M3USource
	m3uAt  time.Time
}

func NewSources(api ports.SourcesAPI, statuses ports.StatusSource, logger zerolog.Logger) *Sources {
	return &Sources{
		api:      api,
		statuses: statuses,
		logger:   logger.With().Str("component", "sources").Logger(),
		now:      time.Now,
		subs:     map[int64]domain.Subscription{},
		m3u:      map[int64]domain.M3USource{},
	}
}

func invalidForm(err error) error {
	return &CodedError{Code: "invalid_form", Message: err.Error(), Err: err}
}

// ---- Subscriptions Xtream ----

func (s *Sources) Subscriptions(ctx context.Context) ([]domain.Subscription, error) {
	list, err := s.api.Subscriptions(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list subscriptions failed")
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	s.mu.Lock()
	s.subs = make(map[int64]domain.Subscription, len(list))
	for _, sub := range list {
		s.subs[sub.ID] = sub
	}
	s.subsAt = s.now()
	s.mu.Unlock()
	return list, nil
}

func (s *Sources) CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.XtreamURL = strings.TrimSpace(sub.XtreamURL)
	if err := validation.Struct(sub); err != nil {
		return domain.Subscription{}, invalidForm(err)
	}
	out, err := s.api.CreateSubscription(ctx, sub)
	if err != nil {
		s.logger.Error().Err(err).Str("name", sub.Name).Msg("create subscription failed")
		return domain.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	s.remember(out)
	s.logger.Info().Int64("id", out.ID).Str("name", out.Name).Msg("subscription created")
	return out, nil
}

func (s *Sources) UpdateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	if sub.ID <= 0 {
		return domain.Subscription{}, invalidForm(fmt.Errorf("id is required"))
	}
	sub.Name = strings.TrimSpace(sub.Name)
	sub.XtreamURL = strings.TrimSpace(sub.XtreamURL)
	if err := validation.Struct(sub); err != nil {
		return domain.Subscription{}, invalidForm(err)
	}
	out, err := s.api.UpdateSubscription(ctx, sub)
	if err != nil {
		s.logger.Error().Err(err).Int64("id", sub.ID).Msg("update subscription failed")
		return domain.Subscription{}, fmt.Errorf("update subscription %d: %w", sub.ID, err)
	}
	s.remember(out)
	return out, nil
}

func (s *Sources) SetSubscriptionActive(ctx context.Context, id int64, active bool) (domain.Subscription, error) {
	out, err := s.api.SetSubscriptionActive(ctx, id, active)
	if err != nil {
		s.logger.Error().Err(err).Int64("id", id).Bool("active", active).Msg("toggle subscription failed")
		return domain.Subscription{}, fmt.Errorf("toggle subscription %d: %w", id, err)
	}
	if out.ID == 0 {
		out.ID = id
		out.IsActive = active
	}
	s.remember(out)
	s.logger.Info().Int64("id", id).Bool("active", active).Msg("subscription toggled")
	return out, nil
}

func (s *Sources) DeleteSubscription(ctx context.Context, id int64) error {
	if err := s.api.DeleteSubscription(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("delete subscription failed")
		return fmt.Errorf("delete subscription %d: %w", id, err)
	}
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
	s.logger.Info().Int64("id", id).Msg("subscription deleted")
	return nil
}

func (s *Sources) remember(sub domain.Subscription) {
	s.mu.Lock()
	s.subs[sub.ID] = sub
	s.mu.Unlock()
}

// ---- Sources M3U ----

func (s *Sources) M3USources(ctx context.Context) ([]domain.M3USource, error) {
	list, err := s.api.M3USources(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list m3u sources failed")
		return nil, fmt.Errorf("list m3u sources: %w", err)
	}
	s.mu.Lock()
	s.m3u = make(map[int64]domain.M3USource, len(list))
	for _, src := range list {
		s.m3u[src.ID] = src
	}
	s.m3uAt = s.now()
	s.mu.Unlock()
	return list, nil
}

// validateM3U exige une URL pour une source de type url (type par défaut).
func validateM3U(src *domain.M3USource) error {
	src.Name = strings.TrimSpace(src.Name)
	src.URL = strings.TrimSpace(src.URL)
	if src.SourceType == "" {
		src.SourceType = domain.M3USourceURL
	}
	if err := validation.Struct(*src); err != nil {
		return invalidForm(err)
	}
	if src.SourceType == domain.M3USourceURL && src.URL == "" {
		return invalidForm(validation.FieldError{Field: "url", Tag: "required"})
	}
	return nil
}

func (s *Sources) CreateM3USource(ctx context.Context, src domain.M3USource) (domain.M3USource, error) {
	if err := validateM3U(&src); err != nil {
		return domain.M3USource{}, err
	}
	out, err := s.api.CreateM3USource(ctx, src)
	if err != nil {
		s.logger.Error().Err(err).Str("name", src.Name).Msg("create m3u source failed")
		return domain.M3USource{}, fmt.Errorf("create m3u source: %w", err)
	}
	s.rememberM3U(out)
	s.logger.Info().Int64("id", out.ID).Str("name", out.Name).Msg("m3u source created")
	return out, nil
}

func (s *Sources) UpdateM3USource(ctx context.Context, src domain.M3USource) (domain.M3USource, error) {
	if src.ID <= 0 {
		return domain.M3USource{}, invalidForm(fmt.Errorf("id is required"))
	}
	if err := validateM3U(&src); err != nil {
		return domain.M3USource{}, err
	}
	out, err := s.api.UpdateM3USource(ctx, src)
	if err != nil {
		s.logger.Error().Err(err).Int64("id", src.ID).Msg("update m3u source failed")
		return domain.M3USource{}, fmt.Errorf("update m3u source %d: %w", src.ID, err)
	}
	s.rememberM3U(out)
	return out, nil
}

func (s *Sources) DeleteM3USource(ctx context.Context, id int64) error {
	if err := s.api.DeleteM3USource(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("delete m3u source failed")
		return fmt.Errorf("delete m3u source %d: %w", id, err)
	}
	s.mu.Lock()
	delete(s.m3u, id)
	s.mu.Unlock()
	s.logger.Info().Int64("id", id).Msg("m3u source deleted")
	return nil
}

// SyncM3USource relance le téléchargement et le parsing de la playlist.
func (s *Sources) SyncM3USource(ctx context.Context, id int64) error {
	if err := s.api.SyncM3USource(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("m3u source sync failed")
		return fmt.Errorf("sync m3u source %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("m3u source sync requested")
	return nil
}

func (s *Sources) rememberM3U(src domain.M3USource) {
	s.mu.Lock()
	s.m3u[src.ID] = src
	s.mu.Unlock()
}

// IsActive répond depuis le cache s'il a moins de activityTTL, sinon relit
// la liste. Un identifiant inconnu renvoie ErrUnknownOwner.
func (s *Sources) IsActive(ctx context.Context, provider domain.Provider, ownerID int64) (bool, error) {
	switch provider {
	case domain.ProviderXtream:
		s.mu.Lock()
		fresh := !s.subsAt.IsZero() && s.now().Sub(s.subsAt) < activityTTL
		sub, ok := s.subs[ownerID]
		s.mu.Unlock()
		if !fresh || !ok {
			if _, err := s.Subscriptions(ctx); err != nil {
				return false, err
			}
			s.mu.Lock()
			sub, ok = s.subs[ownerID]
			s.mu.Unlock()
		}
		if !ok {
			return false, fmt.Errorf("subscription %d: %w", ownerID, ErrUnknownOwner)
		}
		return sub.IsActive, nil
	case domain.ProviderM3U:
		s.mu.Lock()
		fresh := !s.m3uAt.IsZero() && s.now().Sub(s.m3uAt) < activityTTL
		src, ok := s.m3u[ownerID]
		s.mu.Unlock()
		if !fresh || !ok {
			if _, err := s.M3USources(ctx); err != nil {
				return false, err
			}
			s.mu.Lock()
			src, ok = s.m3u[ownerID]
			s.mu.Unlock()
		}
		if !ok {
			return false, fmt.Errorf("m3u source %d: %w", ownerID, ErrUnknownOwner)
		}
		return src.IsActive, nil
	default:
		return false, fmt.Errorf("unknown provider %q", provider)
	}
}

// Overview regroupe les propriétaires et leurs statuts. Les deux appels partent
// en parallèle; l'échec de l'un n'efface pas le résultat de l'autre.
type Overview struct {
	Provider      domain.Provider       `json:"provider"`
	Subscriptions []domain.Subscription `json:"subscriptions,omitempty"`
	M3USources    []domain.M3USource    `json:"m3uSources,omitempty"`
	Statuses      []domain.SyncStatus   `json:"statuses"`
	SourcesError  string                `json:"sourcesError,omitempty"`
	StatusError   string                `json:"statusError,omitempty"`
}

func (o Overview) Status(key domain.StatusKey) domain.SyncStatus {
	for _, st := range o.Statuses {
		if st.Key() == key {
			return st
		}
	}
	return domain.IdleStatus(key)
}

func (s *Sources) Overview(ctx context.Context, provider domain.Provider) (Overview, error) {
	ov := Overview{Provider: provider}
	var srcErr, stErr error

	var g errgroup.Group
	g.Go(func() error {
		if provider == domain.ProviderM3U {
			ov.M3USources, srcErr = s.M3USources(ctx)
		} else {
			ov.Subscriptions, srcErr = s.Subscriptions(ctx)
		}
		return nil
	})
	g.Go(func() error {
		if s.statuses == nil {
			return nil
		}
		ov.Statuses, stErr = s.statuses.SyncStatuses(ctx, provider)
		if stErr != nil {
			s.logger.Error().Err(stErr).Str("provider", string(provider)).Msg("load statuses failed")
		}
		return nil
	})
	_ = g.Wait()

	if srcErr != nil {
		ov.SourcesError = UserMessage(srcErr, "failed to load sources")
	}
	if stErr != nil {
		ov.StatusError = UserMessage(stErr, "failed to load sync status")
	}
	if srcErr != nil && stErr != nil {
		return ov, fmt.Errorf("overview %s: %w", provider, srcErr)
	}
	return ov, nil
}
