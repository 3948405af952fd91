package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/buildinfo"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/httpjson"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, buildinfo.Current())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, s.deps.Stats.Snapshot())
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}

// writeAppError traduit les erreurs métier en statut HTTP + code stable.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusBadGateway, "upstream_error"
	switch {
	case errors.Is(err, app.ErrOwnerInactive):
		status, code = http.StatusConflict, "owner_inactive"
	case errors.Is(err, app.ErrAlreadyRunning):
		status, code = http.StatusConflict, "already_running"
	case errors.Is(err, app.ErrNotRunning):
		status, code = http.StatusConflict, "not_running"
	case errors.Is(err, app.ErrBusy):
		status, code = http.StatusConflict, "busy"
	case errors.Is(err, app.ErrUnknownOwner), errors.Is(err, ports.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, ports.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrUnknownContentType):
		status, code = http.StatusBadRequest, "invalid_type"
	}
	if c := app.ErrorCode(err); c != "" {
		code = c
	}
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	}
	httpjson.WriteCodedError(w, status, code, app.UserMessage(err, err.Error()))
}
