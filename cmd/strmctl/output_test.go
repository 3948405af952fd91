package main

import (
	"bytes"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	p := printer{w: &buf, format: "table"}
	err := p.print(nil, func(tw *tabwriter.Writer) {
		row(tw, "ID", "NAME")
		row(tw, 1, "alpha")
		row(tw, 22, "b")
	})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: want 3, got %d (%q)", len(lines), buf.String())
	}
	if lines[0] != "ID  NAME" {
		t.Fatalf("header: want %q, got %q", "ID  NAME", lines[0])
	}
	if lines[2] != "22  b" {
		t.Fatalf("row: want %q, got %q", "22  b", lines[2])
	}
}

func TestPrinter_JSONUsesJSONTags(t *testing.T) {
	var buf bytes.Buffer
	p := printer{w: &buf, format: "json"}
	st := domain.SyncStatus{OwnerID: 3, Type: domain.Movies, State: domain.SyncRunning}
	if err := p.print(st, nil); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"ownerId": 3`, `"state": "running"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("json: want %s in %s", want, out)
		}
	}
}

func TestPrinter_YAMLKeepsJSONNames(t *testing.T) {
	var buf bytes.Buffer
	p := printer{w: &buf, format: "yaml"}
	cfg := domain.ScheduleConfig{Type: domain.Series, Enabled: true, Frequency: domain.FrequencyWeekly}
	if err := p.print(cfg, nil); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"enabled: true", "frequency: weekly", "type: series"} {
		if !strings.Contains(out, want) {
			t.Fatalf("yaml: want %q in %q", want, out)
		}
	}
}

func TestOrDash(t *testing.T) {
	if got := orDash("  "); got != "-" {
		t.Fatalf("blank: want -, got %q", got)
	}
	if got := orDash("x"); got != "x" {
		t.Fatalf("value: want x, got %q", got)
	}
}
