package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/httpjson"
)

type StatusHandler struct {
	jobs   *app.JobController
	active app.ActivityChecker
}

func NewStatusHandler(jobs *app.JobController, active app.ActivityChecker) *StatusHandler {
	return &StatusHandler{jobs: jobs, active: active}
}

func (h *StatusHandler) Routes(r chi.Router) {
	r.Get("/status/{provider}", h.list)
	r.Get("/status/{provider}/{type}/{id}", h.get)
	r.Post("/jobs/{provider}/{type}/{id}/start", h.start)
	r.Post("/jobs/{provider}/{type}/{id}/stop", h.stop)
}

func (h *StatusHandler) list(w http.ResponseWriter, r *http.Request) {
	provider, err := domain.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.jobs.Poller(provider)
	if err != nil {
		httpjson.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, p.Snapshot())
}

// keyFromRequest lit {provider}/{type}/{id}.
func keyFromRequest(r *http.Request) (domain.Provider, domain.StatusKey, error) {
	provider, err := domain.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		return "", domain.StatusKey{}, err
	}
	t, err := domain.ParseContentType(chi.URLParam(r, "type"))
	if err != nil {
		return "", domain.StatusKey{}, err
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return "", domain.StatusKey{}, strconv.ErrSyntax
	}
	return provider, domain.StatusKey{OwnerID: id, Type: t}, nil
}

func (h *StatusHandler) get(w http.ResponseWriter, r *http.Request) {
	provider, key, err := keyFromRequest(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid provider, type or id")
		return
	}
	active := true
	if h.active != nil {
		active, err = h.active.IsActive(r.Context(), provider, key.OwnerID)
		if err != nil {
			// on affiche quand même le statut, boutons désactivés
			hlog.FromRequest(r).Warn().Err(err).Msg("activity check failed")
			active = false
		}
	}
	ctl, err := h.jobs.Controls(provider, key, active)
	if err != nil {
		httpjson.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, ctl)
}

func (h *StatusHandler) start(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.jobs.Start)
}

func (h *StatusHandler) stop(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.jobs.Stop)
}

type commandFunc func(ctx context.Context, provider domain.Provider, key domain.StatusKey) error

func (h *StatusHandler) command(w http.ResponseWriter, r *http.Request, fn commandFunc) {
	provider, key, err := keyFromRequest(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid provider, type or id")
		return
	}
	if err := fn(r.Context(), provider, key); err != nil {
		writeAppError(w, r, err)
		return
	}
	p, _ := h.jobs.Poller(provider)
	httpjson.Write(w, http.StatusAccepted, p.View(key))
}
