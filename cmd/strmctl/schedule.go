package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

type scheduleCmd struct {
	Show    scheduleShowCmd    `command:"show" description:"Affiche la planification par type"`
	Set     scheduleSetCmd     `command:"set" description:"Active, désactive ou change la fréquence d'un type"`
	History scheduleHistoryCmd `command:"history" description:"Dernières exécutions planifiées"`
}

func printSchedules(ctx context.Context, c *cli, cfgs []domain.ScheduleConfig) error {
	return c.print(ctx, cfgs, func(tw *tabwriter.Writer) {
		row(tw, "TYPE", "ENABLED", "FREQUENCY", "LAST RUN", "NEXT RUN")
		for _, s := range cfgs {
			next := "-"
			if s.Enabled {
				next = domain.FormatDateTime(s.NextRun)
			}
			row(tw, s.Type.Label(), yesNo(s.Enabled), s.Frequency.Label(), domain.FormatDateTime(s.LastRun), next)
		}
	})
}

type scheduleShowCmd struct{}

func (cmd *scheduleShowCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		panel := app.NewSchedulerPanel(c.client, c.logger)
		if err := panel.Load(ctx); err != nil {
			return err
		}
		return printSchedules(ctx, c, panel.Configs())
	})
}

type scheduleSetCmd struct {
	Enable    bool   `long:"enable" description:"Active la planification"`
	Disable   bool   `long:"disable" description:"Désactive la planification"`
	Frequency string `long:"frequency" choice:"hourly" choice:"six_hours" choice:"twelve_hours" choice:"daily" choice:"weekly" description:"Fréquence"`
	Args      struct {
		Type string `positional-arg-name:"type" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *scheduleSetCmd) Execute(_ []string) error {
	if cmd.Enable && cmd.Disable {
		return errors.New("--enable and --disable are mutually exclusive")
	}
	if !cmd.Enable && !cmd.Disable && cmd.Frequency == "" {
		return errors.New("nothing to change: use --enable, --disable or --frequency")
	}
	t, err := domain.ParseContentType(cmd.Args.Type)
	if err != nil {
		return err
	}
	return withCLI(func(ctx context.Context, c *cli) error {
		panel := app.NewSchedulerPanel(c.client, c.logger)
		if err := panel.Load(ctx); err != nil {
			return err
		}
		if cmd.Frequency != "" {
			if _, err := panel.SetFrequency(ctx, t, cmd.Frequency); err != nil {
				return err
			}
		}
		if cmd.Enable || cmd.Disable {
			if _, err := panel.SetEnabled(ctx, t, cmd.Enable); err != nil {
				return err
			}
		}
		return printSchedules(ctx, c, []domain.ScheduleConfig{panel.Config(t)})
	})
}

type scheduleHistoryCmd struct{}

func (cmd *scheduleHistoryCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		recs, err := app.NewSchedulerPanel(c.client, c.logger).History(ctx)
		if err != nil {
			return err
		}
		return c.print(ctx, recs, func(tw *tabwriter.Writer) {
			if len(recs) == 0 {
				row(tw, "No scheduled execution yet")
				return
			}
			row(tw, "ID", "STARTED", "DURATION", "STATUS", "ITEMS", "ERROR")
			for _, r := range recs {
				row(tw, r.ID, domain.FormatDateTime(r.StartedAt), r.Duration(), r.Status.Label(), r.ItemsProcessed, orDash(r.ErrorMessage))
			}
		})
	})
}

type statsCmd struct{}

func (cmd *statsCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		poller := app.NewStatsPoller(c.client, nil, c.logger, c.cfg.Poll.StatsInterval)
		if err := poller.Refresh(ctx); err != nil {
			return err
		}
		snap := poller.Snapshot()
		s := snap.Value
		return c.print(ctx, s, func(tw *tabwriter.Writer) {
			row(tw, "CONTENT", fmt.Sprintf("%d total", s.TotalContent.Total))
			row(tw, "  movies", fmt.Sprintf("%d (%.1f%%)", s.TotalContent.Movies, s.MoviesShare()))
			row(tw, "  series", fmt.Sprintf("%d (%.1f%%)", s.TotalContent.Series, s.SeriesShare()))
			row(tw, "SOURCES", fmt.Sprintf("%d total, %d active, %d inactive", s.Sources.Total, s.Sources.Active, s.Sources.Inactive))
			state := "idle"
			if !s.Idle() {
				state = fmt.Sprintf("%d in progress", s.SyncStatus.InProgress)
			}
			row(tw, "SYNC", state)
			row(tw, "  errors (24h)", s.SyncStatus.Errors24h)
			row(tw, "  success rate", fmt.Sprintf("%.1f%%", s.SyncStatus.SuccessRate))
		})
	})
}
