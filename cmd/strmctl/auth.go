package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/buildinfo"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/session"
)

type loginCmd struct {
	Username string `short:"u" long:"username" required:"true" description:"Nom d'utilisateur"`
	Password string `short:"p" long:"password" env:"STRMSYNC_PASSWORD" description:"Mot de passe (sinon demandé sur stdin)"`
}

func (cmd *loginCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		password := cmd.Password
		if password == "" {
			var err error
			if password, err = c.ask("Password: "); err != nil {
				return err
			}
		}
		if strings.TrimSpace(password) == "" {
			return errors.New("password is required")
		}

		token, err := c.client.Login(ctx, cmd.Username, password)
		if err != nil {
			return err
		}
		c.sess.Set(cmd.Username, token)
		if err := session.Save(ctx, c.sessions, c.sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		c.logger.Info().Str("user", cmd.Username).Str("server", c.cfg.Server.URL).Msg("logged in")
		fmt.Fprintf(c.out, "Logged in as %s on %s\n", cmd.Username, c.cfg.Server.URL)
		return nil
	})
}

type logoutCmd struct{}

func (cmd *logoutCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		c.sess.Clear()
		if err := session.Save(ctx, c.sessions, c.sess); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Fprintln(c.out, "Logged out")
		return nil
	})
}

type whoami struct {
	Server    string    `json:"server"`
	LoggedIn  bool      `json:"loggedIn"`
	Username  string    `json:"username,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type whoamiCmd struct{}

func (cmd *whoamiCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		w := whoami{Server: c.cfg.Server.URL, LoggedIn: c.sess.LoggedIn()}
		if w.LoggedIn {
			w.Username = c.sess.Username()
			w.ExpiresAt = c.sess.ExpiresAt()
		}
		return c.print(ctx, w, func(tw *tabwriter.Writer) {
			row(tw, "SERVER", w.Server)
			if !w.LoggedIn {
				row(tw, "SESSION", "not logged in")
				return
			}
			row(tw, "USER", w.Username)
			if !w.ExpiresAt.IsZero() {
				row(tw, "EXPIRES", w.ExpiresAt.Local().Format(time.DateTime))
			}
		})
	})
}

type versionCmd struct{}

// version n'ouvre pas le store: la préférence de format est ignorée.
func (cmd *versionCmd) Execute(_ []string) error {
	info := buildinfo.Current()
	format := root.Output
	if format == "" {
		format = "table"
	}
	return printer{w: os.Stdout, format: format}.print(info, func(tw *tabwriter.Writer) {
		row(tw, "VERSION", info.Version)
		row(tw, "COMMIT", orDash(info.Commit))
		row(tw, "DATE", orDash(info.Date))
		row(tw, "GO", info.GoVersion)
	})
}

type prefsCmd struct {
	SetOutput string `long:"set-output" choice:"table" choice:"json" choice:"yaml" description:"Format de sortie par défaut"`
	ResetSort bool   `long:"reset-sort" description:"Oublie les tris enregistrés"`
}

func (cmd *prefsCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		prefs := c.preferences(ctx)
		if cmd.SetOutput != "" || cmd.ResetSort {
			if cmd.SetOutput != "" {
				prefs.Output = cmd.SetOutput
			}
			if cmd.ResetSort {
				prefs.Sort = map[string]domain.SortConfig{}
			}
			saved, err := c.prefs.Put(ctx, prefs)
			if err != nil {
				return fmt.Errorf("save preferences: %w", err)
			}
			prefs = saved
		}
		return c.print(ctx, prefs, func(tw *tabwriter.Writer) {
			row(tw, "OUTPUT", prefs.Output)
			lists := make([]string, 0, len(prefs.Sort))
			for list := range prefs.Sort {
				lists = append(lists, list)
			}
			sort.Strings(lists)
			for _, list := range lists {
				s := prefs.Sort[list]
				row(tw, "SORT "+list, string(s.Key)+" "+string(s.Direction))
			}
		})
	})
}
