package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/metrics"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

const TopicAdmin = "admin.state"

type AdminState string

const (
	AdminRequested AdminState = "requested"
	AdminConfirmed AdminState = "confirmed"
	AdminExecuting AdminState = "executing"
	AdminDone      AdminState = "done"
	AdminFailed    AdminState = "failed"
	AdminCancelled AdminState = "cancelled"
)

func (s AdminState) Terminal() bool {
	return s == AdminDone || s == AdminFailed || s == AdminCancelled
}

// AdminPolicy décrit ce qu'il faut obtenir avant d'envoyer l'action.
type AdminPolicy struct {
	Confirmations int    `json:"confirmations"`
	Phrase        bool   `json:"phrase"`
	Prompt        string `json:"prompt"`
}

var adminPolicies = map[domain.AdminAction]AdminPolicy{
	domain.AdminDeleteFiles: {
		Confirmations: 1,
		Prompt:        "Delete all generated .strm files?",
	},
	domain.AdminResetDatabase: {
		Confirmations: 1,
		Prompt:        "Reset the database? Subscriptions and selections will be lost.",
	},
	domain.AdminResetAll: {
		Confirmations: 2,
		Phrase:        true,
		Prompt:        "Delete all files AND reset the database? This cannot be undone.",
	},
	domain.AdminResetSyncHistory: {
		Confirmations: 1,
		Prompt:        "Reset the sync history and all job states?",
	},
}

func PolicyFor(action domain.AdminAction) (AdminPolicy, error) {
	p, ok := adminPolicies[action]
	if !ok {
		return AdminPolicy{}, fmt.Errorf("unknown admin action %q", action)
	}
	return p, nil
}

type AdminRequest struct {
	ID            string              `json:"id"`
	Action        domain.AdminAction  `json:"action"`
	State         AdminState          `json:"state"`
	Policy        AdminPolicy         `json:"policy"`
	Confirmations int                 `json:"confirmations"`
	Result        *domain.AdminResult `json:"result,omitempty"`
	Error         string              `json:"error,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// AdminFlow porte le cycle requested -> confirmed -> executing -> done|failed
// (ou cancelled). La requête n'est envoyée qu'à partir de confirmed.
type AdminFlow struct {
	api    ports.AdminAPI
	bus    ports.EventBus
	logger zerolog.Logger
	now    func() time.Time
	ttl    time.Duration

	mu       sync.Mutex
	requests map[string]*AdminRequest
}

func NewAdminFlow(api ports.AdminAPI, bus ports.EventBus, logger zerolog.Logger) *AdminFlow {
	return &AdminFlow{
		api:      api,
		bus:      bus,
		logger:   logger.With().Str("component", "admin").Logger(),
		now:      time.Now,
		ttl:      time.Hour,
		requests: map[string]*AdminRequest{},
	}
}

func (f *AdminFlow) Request(action domain.AdminAction) (AdminRequest, error) {
	pol, err := PolicyFor(action)
	if err != nil {
		return AdminRequest{}, err
	}
	now := f.now()
	r := &AdminRequest{
		ID:        xid.New().String(),
		Action:    action,
		State:     AdminRequested,
		Policy:    pol,
		CreatedAt: now,
		UpdatedAt: now,
	}

	f.mu.Lock()
	f.pruneLocked(now)
	f.requests[r.ID] = r
	snap := *r
	f.mu.Unlock()

	f.logger.Info().Str("id", r.ID).Str("action", string(action)).Msg("admin action requested")
	f.publish(snap)
	return snap, nil
}

// Confirm enregistre une confirmation. Pour la dernière, si l'action exige une
// phrase, elle doit contenir YES (casse ignorée); sinon rien n'est compté.
func (f *AdminFlow) Confirm(id, phrase string) (AdminRequest, error) {
	f.mu.Lock()
	r, err := f.getLocked(id)
	if err != nil {
		f.mu.Unlock()
		return AdminRequest{}, err
	}
	if r.State != AdminRequested {
		snap := *r
		f.mu.Unlock()
		return snap, fmt.Errorf("%w: %s", ErrInvalidAdminState, snap.State)
	}
	last := r.Confirmations+1 >= r.Policy.Confirmations
	if last && r.Policy.Phrase && !strings.Contains(strings.ToUpper(phrase), "YES") {
		snap := *r
		f.mu.Unlock()
		return snap, ErrConfirmationPhrase
	}
	r.Confirmations++
	if last {
		r.State = AdminConfirmed
	}
	r.UpdatedAt = f.now()
	snap := *r
	f.mu.Unlock()

	f.publish(snap)
	return snap, nil
}

func (f *AdminFlow) Cancel(id string) (AdminRequest, error) {
	f.mu.Lock()
	r, err := f.getLocked(id)
	if err != nil {
		f.mu.Unlock()
		return AdminRequest{}, err
	}
	if r.State != AdminRequested && r.State != AdminConfirmed {
		snap := *r
		f.mu.Unlock()
		return snap, fmt.Errorf("%w: %s", ErrInvalidAdminState, snap.State)
	}
	r.State = AdminCancelled
	r.UpdatedAt = f.now()
	snap := *r
	f.mu.Unlock()

	metrics.AdminActions.WithLabelValues(string(snap.Action), string(AdminCancelled)).Inc()
	f.logger.Info().Str("id", id).Str("action", string(snap.Action)).Msg("admin action cancelled")
	f.publish(snap)
	return snap, nil
}

// Execute envoie l'action. Renvoie ErrNotConfirmed tant que toutes les
// confirmations ne sont pas obtenues.
func (f *AdminFlow) Execute(ctx context.Context, id string) (AdminRequest, error) {
	f.mu.Lock()
	r, err := f.getLocked(id)
	if err != nil {
		f.mu.Unlock()
		return AdminRequest{}, err
	}
	if r.State != AdminConfirmed {
		snap := *r
		f.mu.Unlock()
		if snap.State == AdminRequested {
			return snap, ErrNotConfirmed
		}
		return snap, fmt.Errorf("%w: %s", ErrInvalidAdminState, snap.State)
	}
	r.State = AdminExecuting
	r.UpdatedAt = f.now()
	action := r.Action
	snap := *r
	f.mu.Unlock()
	f.publish(snap)

	res, callErr := f.api.Admin(ctx, action)

	f.mu.Lock()
	r.UpdatedAt = f.now()
	if callErr != nil {
		r.State = AdminFailed
		r.Error = UserMessage(callErr, "admin action failed")
	} else {
		r.State = AdminDone
	}
	if callErr == nil || res.Message != "" {
		out := res
		r.Result = &out
	}
	snap = *r
	f.mu.Unlock()

	metrics.AdminActions.WithLabelValues(string(action), string(snap.State)).Inc()
	f.publish(snap)
	if callErr != nil {
		f.logger.Error().Err(callErr).Str("id", id).Str("action", string(action)).Msg("admin action failed")
		return snap, &CodedError{Code: "admin_failed", Message: snap.Error, Err: callErr}
	}
	f.logger.Warn().Str("id", id).Str("action", string(action)).Int("deleted", res.DeletedCount).Msg("admin action executed")
	return snap, nil
}

func (f *AdminFlow) Get(id string) (AdminRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.getLocked(id)
	if err != nil {
		return AdminRequest{}, err
	}
	return *r, nil
}

func (f *AdminFlow) getLocked(id string) (*AdminRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("admin request %s: %w", id, ErrNotFound)
	}
	return r, nil
}

// pruneLocked oublie les demandes terminées depuis plus de ttl.
func (f *AdminFlow) pruneLocked(now time.Time) {
	for id, r := range f.requests {
		if r.State.Terminal() && now.Sub(r.UpdatedAt) > f.ttl {
			delete(f.requests, id)
		}
	}
}

func (f *AdminFlow) publish(r AdminRequest) {
	if f.bus == nil {
		return
	}
	b, err := json.Marshal(r)
	if err != nil {
		f.logger.Error().Err(err).Msg("marshal admin event")
		return
	}
	f.bus.Publish(TopicAdmin, b)
}
