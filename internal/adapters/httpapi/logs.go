package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/httpjson"
)

type LogsHandler struct {
	logs *app.LogViewer
}

func NewLogsHandler(logs *app.LogViewer) *LogsHandler {
	return &LogsHandler{logs: logs}
}

func (h *LogsHandler) Routes(r chi.Router) {
	r.Route("/logs", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/pause", h.pause)
		r.Post("/resume", h.resume)
		r.Post("/clear", h.clear)
		r.Get("/export", h.export)
	})
}

type logsResponse struct {
	app.LogState
	Entries []string `json:"entries"`
}

// list renvoie le tampon visible; ?tail=N limite aux N dernières lignes.
func (h *LogsHandler) list(w http.ResponseWriter, r *http.Request) {
	lines := h.logs.Lines()
	if tail, err := strconv.Atoi(r.URL.Query().Get("tail")); err == nil && tail >= 0 && tail < len(lines) {
		lines = lines[len(lines)-tail:]
	}
	httpjson.Write(w, http.StatusOK, logsResponse{LogState: h.logs.State(), Entries: lines})
}

func (h *LogsHandler) pause(w http.ResponseWriter, r *http.Request) {
	h.logs.Pause()
	httpjson.Write(w, http.StatusOK, h.logs.State())
}

func (h *LogsHandler) resume(w http.ResponseWriter, r *http.Request) {
	h.logs.Resume()
	httpjson.Write(w, http.StatusOK, h.logs.State())
}

func (h *LogsHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.logs.Clear()
	httpjson.Write(w, http.StatusOK, h.logs.State())
}

func (h *LogsHandler) export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+app.ExportFilename(time.Now())+`"`)
	if err := h.logs.Export(w); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("log export interrupted")
	}
}
