package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_JSONLevelAndApp(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json", "strmctl")

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "poller").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"app":"strmctl"`) || !strings.Contains(out, `"component":"poller"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "verbose", "json", "x")
	logger.Info().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected info output, got %q", buf.String())
	}
}

func TestNew_ConsoleWithoutTTYHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "console", "x")
	logger.Info().Msg("plain")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("unexpected ANSI escape in %q", buf.String())
	}
}
