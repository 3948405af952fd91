package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/metrics"
)

const heartbeatInterval = 15 * time.Second

// handleEvents republie le bus interne en SSE (event = topic, data = payload JSON).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	clientID := xid.New().String()
	logger := hlog.FromRequest(r).With().Str("sse_client", clientID).Logger()

	events, cancel := s.deps.Bus.Subscribe()
	defer cancel()
	metrics.EventSubscribers.Inc()
	defer metrics.EventSubscribers.Dec()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	fmt.Fprintf(w, "event: hello\ndata: {\"client\":%q}\n\n", clientID)
	flusher.Flush()
	logger.Debug().Msg("sse client connected")

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Msg("sse client disconnected")
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Topic, sseData(evt.Payload))
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// sseData encode un payload multi-lignes (ligne de log brute) en plusieurs
// champs data.
func sseData(payload []byte) string {
	out := make([]byte, 0, len(payload))
	for _, b := range payload {
		if b == '\n' {
			out = append(out, "\ndata: "...)
			continue
		}
		if b != '\r' {
			out = append(out, b)
		}
	}
	return string(out)
}
