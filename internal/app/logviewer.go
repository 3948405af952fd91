package app

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/metrics"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

const (
	TopicLogLine  = "logs.line"
	TopicLogState = "logs.state"
)

type LogViewerOptions struct {
	Capacity       int
	ReconnectDelay time.Duration
}

func DefaultLogViewerOptions() LogViewerOptions {
	return LogViewerOptions{Capacity: 500, ReconnectDelay: 5 * time.Second}
}

// LogViewer suit le flux /logs/stream. Les lignes reçues en pause sont mises
// de côté puis rejouées dans l'ordre à la reprise; le tampon visible garde
// au plus Capacity lignes (les plus anciennes sont supprimées).
type LogViewer struct {
	streamer ports.LogStreamer
	bus      ports.EventBus
	opts     LogViewerOptions
	logger   zerolog.Logger

	mu        sync.Mutex
	lines     []string
	pending   []string
	paused    bool
	connected bool
	lastErr   string
	received  uint64
}

type LogState struct {
	Connected bool   `json:"connected"`
	Paused    bool   `json:"paused"`
	Lines     int    `json:"lines"`
	Pending   int    `json:"pending"`
	Received  uint64 `json:"received"`
	LastError string `json:"lastError,omitempty"`
}

func NewLogViewer(streamer ports.LogStreamer, bus ports.EventBus, logger zerolog.Logger, opts LogViewerOptions) *LogViewer {
	def := DefaultLogViewerOptions()
	if opts.Capacity <= 0 {
		opts.Capacity = def.Capacity
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = def.ReconnectDelay
	}
	return &LogViewer{
		streamer: streamer,
		bus:      bus,
		opts:     opts,
		logger:   logger.With().Str("component", "logviewer").Logger(),
	}
}

func (v *LogViewer) String() string { return "logviewer" }

// Serve maintient la connexion: à chaque coupure, attente puis reconnexion,
// indéfiniment. Les lignes déjà reçues sont conservées.
func (v *LogViewer) Serve(ctx context.Context) error {
	for {
		err := v.consume(ctx)
		v.setConnected(false, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !errors.Is(err, io.EOF) {
			v.logger.Warn().Err(err).Dur("retry_in", v.opts.ReconnectDelay).Msg("log stream lost")
		} else {
			v.logger.Info().Dur("retry_in", v.opts.ReconnectDelay).Msg("log stream closed by server")
		}

		timer := time.NewTimer(v.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		metrics.LogReconnects.Inc()
	}
}

func (v *LogViewer) consume(ctx context.Context) error {
	stream, err := v.streamer.OpenLogStream(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	v.setConnected(true, nil)
	v.logger.Info().Msg("log stream connected")
	for {
		line, err := stream.Next()
		if err != nil {
			return err
		}
		v.Append(line)
	}
}

func (v *LogViewer) setConnected(connected bool, err error) {
	v.mu.Lock()
	changed := v.connected != connected
	v.connected = connected
	if err != nil {
		v.lastErr = err.Error()
	}
	v.mu.Unlock()

	if connected {
		metrics.LogConnected.Set(1)
	} else {
		metrics.LogConnected.Set(0)
	}
	if changed {
		v.publishState()
	}
}

// Append ajoute une ligne reçue du flux.
func (v *LogViewer) Append(line string) {
	v.mu.Lock()
	v.received++
	metrics.LogLines.Inc()
	if v.paused {
		v.pending = append(v.pending, line)
		metrics.LogPending.Set(float64(len(v.pending)))
		v.mu.Unlock()
		return
	}
	v.lines = append(v.lines, line)
	v.trimLocked()
	v.mu.Unlock()

	if v.bus != nil {
		v.bus.Publish(TopicLogLine, []byte(line))
	}
}

func (v *LogViewer) trimLocked() {
	if over := len(v.lines) - v.opts.Capacity; over > 0 {
		// copie pour libérer le tableau sous-jacent
		v.lines = append([]string(nil), v.lines[over:]...)
	}
	metrics.LogBufferSize.Set(float64(len(v.lines)))
}

func (v *LogViewer) Pause() {
	v.mu.Lock()
	v.paused = true
	v.mu.Unlock()
	v.publishState()
}

// Resume rejoue les lignes en attente dans l'ordre d'arrivée puis applique
// la limite. Renvoie le nombre de lignes rejouées.
func (v *LogViewer) Resume() int {
	v.mu.Lock()
	n := len(v.pending)
	v.lines = append(v.lines, v.pending...)
	v.pending = nil
	v.paused = false
	v.trimLocked()
	metrics.LogPending.Set(0)
	v.mu.Unlock()

	v.publishState()
	return n
}

// Clear vide le tampon visible et les lignes en attente.
func (v *LogViewer) Clear() {
	v.mu.Lock()
	v.lines = nil
	v.pending = nil
	metrics.LogBufferSize.Set(0)
	metrics.LogPending.Set(0)
	v.mu.Unlock()
	v.publishState()
}

func (v *LogViewer) Lines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.lines...)
}

func (v *LogViewer) State() LogState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return LogState{
		Connected: v.connected,
		Paused:    v.paused,
		Lines:     len(v.lines),
		Pending:   len(v.pending),
		Received:  v.received,
		LastError: v.lastErr,
	}
}

// Export écrit le tampon visible tel quel, une ligne par entrée. Les lignes
// en attente (pause) ne sont pas exportées.
func (v *LogViewer) Export(w io.Writer) error {
	lines := v.Lines()
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportFilename reprend le nom de fichier du téléchargement web.
func ExportFilename(now time.Time) string {
	return "xtream_logs_" + now.UTC().Format("2006-01-02T15:04:05.000Z") + ".txt"
}

func (v *LogViewer) publishState() {
	if v.bus == nil {
		return
	}
	b, err := json.Marshal(v.State())
	if err != nil {
		return
	}
	v.bus.Publish(TopicLogState, b)
}
