package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

const maskedPassword = "********"

type idArg struct {
	ID int64 `positional-arg-name:"id" required:"yes"`
}

// ---- subs ----

type subsCmd struct {
	List    subsListCmd    `command:"list" alias:"ls" description:"Liste les subscriptions"`
	Add     subsAddCmd     `command:"add" description:"Ajoute une subscription"`
	Update  subsUpdateCmd  `command:"update" description:"Modifie une subscription"`
	Enable  subsEnableCmd  `command:"enable" description:"Active une subscription"`
	Disable subsDisableCmd `command:"disable" description:"Désactive une subscription"`
	Delete  subsDeleteCmd  `command:"delete" alias:"rm" description:"Supprime une subscription"`
}

func printSubscriptions(ctx context.Context, c *cli, subs []domain.Subscription) error {
	masked := make([]domain.Subscription, len(subs))
	for i, s := range subs {
		if s.Password != "" {
			s.Password = maskedPassword
		}
		masked[i] = s
	}
	return c.print(ctx, masked, func(tw *tabwriter.Writer) {
		row(tw, "ID", "NAME", "URL", "USER", "ACTIVE", "MOVIES DIR", "SERIES DIR")
		for _, s := range masked {
			row(tw, s.ID, s.Name, s.XtreamURL, s.Username, yesNo(s.IsActive), orDash(s.MoviesDir), orDash(s.SeriesDir))
		}
	})
}

type subsListCmd struct{}

func (cmd *subsListCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		subs, err := app.NewSources(c.client, c.client, c.logger).Subscriptions(ctx)
		if err != nil {
			return err
		}
		return printSubscriptions(ctx, c, subs)
	})
}

type subsForm struct {
	Name      string `short:"n" long:"name" description:"Nom affiché"`
	URL       string `long:"url" description:"URL du serveur Xtream"`
	Username  string `short:"u" long:"username" description:"Identifiant Xtream"`
	Password  string `short:"p" long:"password" description:"Mot de passe Xtream"`
	MoviesDir string `long:"movies-dir" description:"Dossier des .strm films"`
	SeriesDir string `long:"series-dir" description:"Dossier des .strm séries"`
}

// apply recopie les champs renseignés sur sub.
func (f subsForm) apply(sub *domain.Subscription) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&sub.Name, f.Name)
	set(&sub.XtreamURL, f.URL)
	set(&sub.Username, f.Username)
	set(&sub.Password, f.Password)
	set(&sub.MoviesDir, f.MoviesDir)
	set(&sub.SeriesDir, f.SeriesDir)
}

type subsAddCmd struct {
	Form     subsForm
	Inactive bool `long:"inactive" description:"Crée la subscription désactivée"`
}

func (cmd *subsAddCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		sub := domain.DefaultSubscription()
		cmd.Form.apply(&sub)
		sub.IsActive = !cmd.Inactive
		out, err := app.NewSources(c.client, c.client, c.logger).CreateSubscription(ctx, sub)
		if err != nil {
			return err
		}
		return printSubscriptions(ctx, c, []domain.Subscription{out})
	})
}

type subsUpdateCmd struct {
	Form subsForm
	Args idArg `positional-args:"yes"`
}

func (cmd *subsUpdateCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		srcs := app.NewSources(c.client, c.client, c.logger)
		subs, err := srcs.Subscriptions(ctx)
		if err != nil {
			return err
		}
		sub, ok := findSubscription(subs, cmd.Args.ID)
		if !ok {
			return fmt.Errorf("subscription %d: %w", cmd.Args.ID, app.ErrUnknownOwner)
		}
		cmd.Form.apply(&sub)
		out, err := srcs.UpdateSubscription(ctx, sub)
		if err != nil {
			return err
		}
		return printSubscriptions(ctx, c, []domain.Subscription{out})
	})
}

func findSubscription(subs []domain.Subscription, id int64) (domain.Subscription, bool) {
	for _, s := range subs {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Subscription{}, false
}

type subsEnableCmd struct {
	Args idArg `positional-args:"yes"`
}

func (cmd *subsEnableCmd) Execute(_ []string) error { return toggleSubscription(cmd.Args.ID, true) }

type subsDisableCmd struct {
	Args idArg `positional-args:"yes"`
}

func (cmd *subsDisableCmd) Execute(_ []string) error { return toggleSubscription(cmd.Args.ID, false) }

func toggleSubscription(id int64, active bool) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		out, err := app.NewSources(c.client, c.client, c.logger).SetSubscriptionActive(ctx, id, active)
		if err != nil {
			return err
		}
		return printSubscriptions(ctx, c, []domain.Subscription{out})
	})
}

type subsDeleteCmd struct {
	Yes  bool  `short:"y" long:"yes" description:"Ne demande pas de confirmation"`
	Args idArg `positional-args:"yes"`
}

func (cmd *subsDeleteCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		if !cmd.Yes {
			ok, err := c.confirm(fmt.Sprintf("Delete subscription %d?", cmd.Args.ID))
			if err != nil || !ok {
				return cancelled(err)
			}
		}
		if err := app.NewSources(c.client, c.client, c.logger).DeleteSubscription(ctx, cmd.Args.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Subscription %d deleted\n", cmd.Args.ID)
		return nil
	})
}

// ---- m3u ----

type m3uCmd struct {
	List    m3uListCmd    `command:"list" alias:"ls" description:"Liste les sources M3U"`
	Add     m3uAddCmd     `command:"add" description:"Ajoute une source M3U"`
	Delete  m3uDeleteCmd  `command:"delete" alias:"rm" description:"Supprime une source M3U"`
	Refresh m3uRefreshCmd `command:"refresh" description:"Retélécharge et reparse la playlist"`
}

func printM3USources(ctx context.Context, c *cli, list []domain.M3USource) error {
	return c.print(ctx, list, func(tw *tabwriter.Writer) {
		row(tw, "ID", "NAME", "TYPE", "LOCATION", "ACTIVE", "STATUS", "LAST SYNC")
		for _, s := range list {
			loc := s.URL
			if s.SourceType == domain.M3USourceFile {
				loc = s.FilePath
			}
			row(tw, s.ID, s.Name, s.SourceType, orDash(loc), yesNo(s.IsActive), orDash(s.SyncStatus), domain.FormatDateTime(s.LastSync))
		}
	})
}

type m3uListCmd struct{}

func (cmd *m3uListCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		list, err := app.NewSources(c.client, c.client, c.logger).M3USources(ctx)
		if err != nil {
			return err
		}
		return printM3USources(ctx, c, list)
	})
}

type m3uAddCmd struct {
	Name      string `short:"n" long:"name" required:"true" description:"Nom affiché"`
	URL       string `long:"url" description:"URL de la playlist"`
	File      string `long:"file" description:"Chemin d'une playlist déjà importée sur le serveur"`
	OutputDir string `long:"output-dir" description:"Dossier de sortie"`
	MoviesDir string `long:"movies-dir" description:"Dossier des .strm films"`
	SeriesDir string `long:"series-dir" description:"Dossier des .strm séries"`
	Inactive  bool   `long:"inactive" description:"Crée la source désactivée"`
}

func (cmd *m3uAddCmd) source() domain.M3USource {
	src := domain.M3USource{
		Name:       cmd.Name,
		SourceType: domain.M3USourceURL,
		URL:        cmd.URL,
		OutputDir:  cmd.OutputDir,
		MoviesDir:  cmd.MoviesDir,
		SeriesDir:  cmd.SeriesDir,
		IsActive:   !cmd.Inactive,
	}
	if cmd.File != "" && cmd.URL == "" {
		src.SourceType = domain.M3USourceFile
		src.FilePath = cmd.File
	}
	return src
}

func (cmd *m3uAddCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		out, err := app.NewSources(c.client, c.client, c.logger).CreateM3USource(ctx, cmd.source())
		if err != nil {
			return err
		}
		return printM3USources(ctx, c, []domain.M3USource{out})
	})
}

type m3uDeleteCmd struct {
	Yes  bool  `short:"y" long:"yes" description:"Ne demande pas de confirmation"`
	Args idArg `positional-args:"yes"`
}

func (cmd *m3uDeleteCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		if !cmd.Yes {
			ok, err := c.confirm(fmt.Sprintf("Delete M3U source %d?", cmd.Args.ID))
			if err != nil || !ok {
				return cancelled(err)
			}
		}
		if err := app.NewSources(c.client, c.client, c.logger).DeleteM3USource(ctx, cmd.Args.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "M3U source %d deleted\n", cmd.Args.ID)
		return nil
	})
}

type m3uRefreshCmd struct {
	Args idArg `positional-args:"yes"`
}

func (cmd *m3uRefreshCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		if err := app.NewSources(c.client, c.client, c.logger).SyncM3USource(ctx, cmd.Args.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "M3U source %d refresh requested\n", cmd.Args.ID)
		return nil
	})
}
