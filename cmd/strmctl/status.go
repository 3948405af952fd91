package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

// statusRow est une ligne (propriétaire, type) du tableau des statuts.
type statusRow struct {
	Provider     domain.Provider    `json:"provider"`
	OwnerID      int64              `json:"ownerId"`
	Owner        string             `json:"owner"`
	Active       bool               `json:"active"`
	Type         domain.ContentType `json:"type"`
	State        domain.SyncState   `json:"state"`
	LastSyncAt   string             `json:"lastSyncAt,omitempty"`
	ItemsAdded   int                `json:"itemsAdded"`
	ItemsDeleted int                `json:"itemsDeleted"`
	ErrorMessage string             `json:"errorMessage,omitempty"`
}

type owner struct {
	id     int64
	name   string
	active bool
}

func owners(ov app.Overview) []owner {
	var out []owner
	if ov.Provider == domain.ProviderM3U {
		for _, s := range ov.M3USources {
			out = append(out, owner{id: s.ID, name: s.Name, active: s.IsActive})
		}
		return out
	}
	for _, s := range ov.Subscriptions {
		out = append(out, owner{id: s.ID, name: s.Name, active: s.IsActive})
	}
	return out
}

// statusRows croise propriétaires et statuts; sans liste de propriétaires
// (chargement en échec) seuls les statuts connus sont affichés.
func statusRows(ov app.Overview, lookup func(domain.StatusKey) domain.SyncStatus) []statusRow {
	if lookup == nil {
		lookup = ov.Status
	}
	var rows []statusRow
	own := owners(ov)
	if len(own) == 0 && ov.SourcesError != "" {
		for _, st := range ov.Statuses {
			rows = append(rows, toRow(ov.Provider, owner{id: st.OwnerID}, lookup(st.Key())))
		}
		return rows
	}
	for _, o := range own {
		for _, t := range domain.ContentTypes {
			rows = append(rows, toRow(ov.Provider, o, lookup(domain.StatusKey{OwnerID: o.id, Type: t})))
		}
	}
	return rows
}

func toRow(p domain.Provider, o owner, st domain.SyncStatus) statusRow {
	return statusRow{
		Provider:     p,
		OwnerID:      o.id,
		Owner:        o.name,
		Active:       o.active,
		Type:         st.Type,
		State:        st.State,
		LastSyncAt:   st.LastSyncAt,
		ItemsAdded:   st.ItemsAdded,
		ItemsDeleted: st.ItemsDeleted,
		ErrorMessage: st.ErrorMessage,
	}
}

func statusTable(rows []statusRow) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		row(tw, "ID", "OWNER", "ACTIVE", "TYPE", "STATE", "LAST SYNC", "ADDED", "DELETED", "ERROR")
		for _, r := range rows {
			row(tw, r.OwnerID, orDash(r.Owner), yesNo(r.Active), r.Type, r.State.Label(),
				domain.FormatDateTime(r.LastSyncAt), r.ItemsAdded, r.ItemsDeleted, orDash(r.ErrorMessage))
		}
	}
}

type statusCmd struct {
	Provider string        `short:"p" long:"provider" default:"xtream" description:"xtream ou m3u"`
	Watch    bool          `short:"w" long:"watch" description:"Suit les changements d'état jusqu'à Ctrl-C"`
	Interval time.Duration `long:"interval" description:"Intervalle de poll en mode watch (défaut: config)"`
}

func (cmd *statusCmd) Execute(_ []string) error {
	provider, err := domain.ParseProvider(cmd.Provider)
	if err != nil {
		return err
	}
	return withCLI(func(ctx context.Context, c *cli) error {
		srcs := app.NewSources(c.client, c.client, c.logger)
		ov, err := srcs.Overview(ctx, provider)
		if err != nil {
			return err
		}
		for _, msg := range []string{ov.SourcesError, ov.StatusError} {
			if msg != "" {
				c.logger.Warn().Str("provider", string(provider)).Msg(msg)
			}
		}
		if !cmd.Watch {
			rows := statusRows(ov, nil)
			return c.print(ctx, rows, statusTable(rows))
		}
		interval := cmd.Interval
		if interval <= 0 {
			interval = c.cfg.Poll.StatusInterval
		}
		return watchStatus(ctx, c, ov, interval)
	})
}

// watchStatus affiche le tableau au premier poll puis une ligne par
// transition d'état.
func watchStatus(ctx context.Context, c *cli, ov app.Overview, interval time.Duration) error {
	bus := memorybus.New()
	defer bus.Close()
	events, cancel := bus.Subscribe()
	defer cancel()

	poller := app.NewStatusPoller(ov.Provider, c.client, bus, c.logger, interval)
	go func() { _ = poller.Serve(ctx) }()

	format := c.format(ctx)
	first := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Topic {
			case app.TopicSyncStatus:
				if !first {
					continue
				}
				first = false
				rows := statusRows(ov, poller.View)
				if err := c.print(ctx, rows, statusTable(rows)); err != nil {
					return err
				}
			case app.TopicSyncTransition:
				if err := printTransition(c.out, format, ev.Payload); err != nil {
					return err
				}
			}
		}
	}
}

func printTransition(w io.Writer, format string, payload []byte) error {
	if format == "json" {
		_, err := fmt.Fprintln(w, string(payload))
		return err
	}
	var tr app.Transition
	if err := json.Unmarshal(payload, &tr); err != nil {
		return err
	}
	line := fmt.Sprintf("%s  %s %d/%s  %s -> %s", time.Now().Format(time.TimeOnly), tr.Provider, tr.OwnerID, tr.Type, tr.From.Label(), tr.To.Label())
	if tr.Status.ErrorMessage != "" {
		line += "  (" + tr.Status.ErrorMessage + ")"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

type syncKeyArgs struct {
	Provider string `short:"p" long:"provider" default:"xtream" description:"xtream ou m3u"`
	Args     struct {
		ID   int64  `positional-arg-name:"id" required:"yes"`
		Type string `positional-arg-name:"type" required:"yes"`
	} `positional-args:"yes"`
}

func (a syncKeyArgs) parse() (domain.Provider, domain.StatusKey, error) {
	provider, err := domain.ParseProvider(a.Provider)
	if err != nil {
		return "", domain.StatusKey{}, err
	}
	t, err := domain.ParseContentType(a.Args.Type)
	if err != nil {
		return "", domain.StatusKey{}, err
	}
	return provider, domain.StatusKey{OwnerID: a.Args.ID, Type: t}, nil
}

type syncCmd struct {
	Start syncStartCmd `command:"start" description:"Lance la synchronisation d'un propriétaire pour un type"`
	Stop  syncStopCmd  `command:"stop" description:"Arrête une synchronisation en cours"`
	All   syncAllCmd   `command:"all" description:"Lance la synchronisation de tous les propriétaires actifs"`
}

type syncStartCmd struct {
	Key syncKeyArgs
}

type syncStopCmd struct {
	Key syncKeyArgs
}

func (cmd *syncStartCmd) Execute(_ []string) error {
	return runJob(cmd.Key, "start")
}

func (cmd *syncStopCmd) Execute(_ []string) error {
	return runJob(cmd.Key, "stop")
}

func runJob(args syncKeyArgs, action string) error {
	provider, key, err := args.parse()
	if err != nil {
		return err
	}
	return withCLI(func(ctx context.Context, c *cli) error {
		poller := app.NewStatusPoller(provider, c.client, nil, c.logger, c.cfg.Poll.StatusInterval)
		if err := poller.Refresh(ctx); err != nil {
			return err
		}
		srcs := app.NewSources(c.client, c.client, c.logger)
		jobs := app.NewJobController(c.client, srcs, c.logger, poller)

		if action == "stop" {
			err = jobs.Stop(ctx, provider, key)
		} else {
			err = jobs.Start(ctx, provider, key)
		}
		if err != nil {
			return err
		}

		active, err := srcs.IsActive(ctx, provider, key.OwnerID)
		if err != nil {
			return err
		}
		ctl, err := jobs.Controls(provider, key, active)
		if err != nil {
			return err
		}
		return c.print(ctx, ctl, func(tw *tabwriter.Writer) {
			row(tw, "KEY", "STATE", "NEXT ACTION")
			row(tw, string(provider)+" "+key.String(), ctl.Status.State.Label(), ctl.Label)
		})
	})
}

type syncAllCmd struct {
	Provider    string `short:"p" long:"provider" default:"xtream" description:"xtream ou m3u"`
	Type        string `short:"t" long:"type" description:"movies ou series (défaut: les deux)"`
	Concurrency int    `long:"concurrency" default:"4" description:"Commandes envoyées en parallèle"`
}

func (cmd *syncAllCmd) Execute(_ []string) error {
	provider, err := domain.ParseProvider(cmd.Provider)
	if err != nil {
		return err
	}
	types, err := selectionTarget{Type: cmd.Type}.types()
	if err != nil {
		return err
	}
	return withCLI(func(ctx context.Context, c *cli) error {
		srcs := app.NewSources(c.client, c.client, c.logger)
		ov, err := srcs.Overview(ctx, provider)
		if err != nil {
			return err
		}
		if ov.SourcesError != "" {
			return errors.New(ov.SourcesError)
		}
		var keys []domain.StatusKey
		for _, o := range owners(ov) {
			if !o.active {
				continue
			}
			for _, t := range types {
				keys = append(keys, domain.StatusKey{OwnerID: o.id, Type: t})
			}
		}
		if len(keys) == 0 {
			fmt.Fprintln(c.out, "No active owner to sync")
			return nil
		}

		poller := app.NewStatusPoller(provider, c.client, nil, c.logger, c.cfg.Poll.StatusInterval)
		if err := poller.Refresh(ctx); err != nil {
			return err
		}
		jobs := app.NewJobController(c.client, srcs, c.logger, poller)
		results := jobs.StartMany(ctx, provider, keys, cmd.Concurrency)
		return c.print(ctx, results, func(tw *tabwriter.Writer) {
			row(tw, "KEY", "RESULT")
			for _, r := range results {
				res := "started"
				if r.Err != nil {
					res = app.UserMessage(r.Err, r.Error)
				}
				row(tw, r.Key.String(), res)
			}
		})
	})
}
