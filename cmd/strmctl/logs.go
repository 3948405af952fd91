package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
)

type logsCmd struct {
	Export bool          `short:"e" long:"export" description:"Écrit les lignes reçues dans un fichier au lieu de les afficher"`
	For    time.Duration `long:"for" description:"Durée de capture (défaut: jusqu'à Ctrl-C)"`
	Dir    string        `long:"dir" default:"." description:"Dossier du fichier exporté"`
}

func (cmd *logsCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		if cmd.For > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cmd.For)
			defer cancel()
		}

		bus := memorybus.New()
		defer bus.Close()
		events, unsubscribe := bus.Subscribe()
		defer unsubscribe()

		viewer := app.NewLogViewer(c.client, bus, c.logger, app.LogViewerOptions{
			Capacity:       c.cfg.Logs.BufferSize,
			ReconnectDelay: c.cfg.Logs.ReconnectDelay,
		})
		done := make(chan error, 1)
		go func() { done <- viewer.Serve(ctx) }()

		if cmd.Export {
			fmt.Fprintln(os.Stderr, "Capturing logs, Ctrl-C to stop...")
		}
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case ev, ok := <-events:
				if !ok {
					break loop
				}
				if !cmd.Export && ev.Topic == app.TopicLogLine {
					fmt.Fprintln(c.out, string(ev.Payload))
				}
			}
		}
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !cmd.Export {
			return nil
		}
		return exportLogs(c, viewer, cmd.Dir)
	})
}

func exportLogs(c *cli, viewer *app.LogViewer, dir string) error {
	path := filepath.Join(dir, app.ExportFilename(time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := viewer.Export(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d lines written to %s\n", viewer.State().Lines, path)
	return nil
}
