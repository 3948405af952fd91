package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

type adminCmd struct {
	DeleteFiles   adminDeleteFilesCmd   `command:"delete-files" description:"Supprime tous les fichiers .strm générés"`
	ResetDatabase adminResetDatabaseCmd `command:"reset-database" description:"Réinitialise la base du serveur"`
	ResetAll      adminResetAllCmd      `command:"reset-all" description:"Fichiers et base: double confirmation + YES"`
	ResetSync     adminResetSyncCmd     `command:"reset-sync" description:"Réinitialise l'historique et l'état des synchronisations"`
}

type adminOpts struct {
	Yes    bool   `short:"y" long:"yes" description:"Répond oui aux confirmations (pas à la phrase)"`
	Phrase string `long:"phrase" description:"Phrase de confirmation pour reset-all (doit contenir YES)"`
}

type adminDeleteFilesCmd struct{ Opts adminOpts }
type adminResetDatabaseCmd struct{ Opts adminOpts }
type adminResetAllCmd struct{ Opts adminOpts }
type adminResetSyncCmd struct{ Opts adminOpts }

func (cmd *adminDeleteFilesCmd) Execute(_ []string) error {
	return runAdmin(domain.AdminDeleteFiles, cmd.Opts)
}

func (cmd *adminResetDatabaseCmd) Execute(_ []string) error {
	return runAdmin(domain.AdminResetDatabase, cmd.Opts)
}

func (cmd *adminResetAllCmd) Execute(_ []string) error {
	return runAdmin(domain.AdminResetAll, cmd.Opts)
}

func (cmd *adminResetSyncCmd) Execute(_ []string) error {
	return runAdmin(domain.AdminResetSyncHistory, cmd.Opts)
}

func runAdmin(action domain.AdminAction, opts adminOpts) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		flow := app.NewAdminFlow(c.client, nil, c.logger)
		req, err := confirmAdmin(c, flow, action, opts)
		if err != nil {
			return err
		}
		req, err = flow.Execute(ctx, req.ID)
		if err != nil {
			return err
		}
		return c.print(ctx, req, func(tw *tabwriter.Writer) {
			row(tw, "ACTION", string(req.Action))
			row(tw, "STATE", string(req.State))
			if req.Result != nil {
				row(tw, "MESSAGE", orDash(req.Result.Message))
				if req.Result.DeletedCount > 0 {
					row(tw, "DELETED", req.Result.DeletedCount)
				}
				for _, e := range req.Result.Errors {
					row(tw, "ERROR", e)
				}
			}
		})
	})
}

// confirmAdmin obtient les confirmations exigées par la politique de
// l'action. Un refus annule la demande.
func confirmAdmin(c *cli, flow *app.AdminFlow, action domain.AdminAction, opts adminOpts) (app.AdminRequest, error) {
	req, err := flow.Request(action)
	if err != nil {
		return req, err
	}
	pol := req.Policy
	for i := 0; i < pol.Confirmations; i++ {
		last := i == pol.Confirmations-1
		phrase := ""
		switch {
		case last && pol.Phrase:
			phrase = opts.Phrase
			if phrase == "" {
				if phrase, err = c.ask("Type YES to confirm: "); err != nil {
					_, _ = flow.Cancel(req.ID)
					return req, err
				}
			}
		case !opts.Yes:
			question := pol.Prompt
			if i > 0 {
				question = "Are you absolutely sure?"
			}
			ok, err := c.confirm(question)
			if err != nil || !ok {
				_, _ = flow.Cancel(req.ID)
				return req, cancelled(err)
			}
		}
		if req, err = flow.Confirm(req.ID, phrase); err != nil {
			if errors.Is(err, app.ErrConfirmationPhrase) {
				_, _ = flow.Cancel(req.ID)
			}
			return req, fmt.Errorf("%s: %w", action, err)
		}
	}
	return req, nil
}
