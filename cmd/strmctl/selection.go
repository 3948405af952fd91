package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

type selectionCmd struct {
	List    selectionListCmd    `command:"list" alias:"ls" description:"Affiche les catégories / groupes et leur sélection"`
	Refresh selectionRefreshCmd `command:"refresh" description:"Redemande le catalogue au fournisseur"`
	Save    selectionSaveCmd    `command:"save" description:"Modifie puis enregistre la sélection"`
}

type selectionTarget struct {
	Provider string `short:"p" long:"provider" default:"xtream" description:"xtream ou m3u"`
	Owner    int64  `long:"owner" required:"true" description:"Id de la subscription ou de la source M3U"`
	Type     string `short:"t" long:"type" description:"movies ou series (défaut: les deux)"`
	Filter   string `short:"f" long:"filter" description:"Filtre sur le nom (et l'id pour Xtream)"`
	Sort     string `long:"sort" choice:"name" choice:"id" choice:"count" description:"Colonne de tri (enregistrée)"`
	Desc     bool   `long:"desc" description:"Tri décroissant"`
}

func (t selectionTarget) provider() (domain.Provider, error) {
	return domain.ParseProvider(t.Provider)
}

func (t selectionTarget) types() ([]domain.ContentType, error) {
	if t.Type == "" {
		return domain.ContentTypes, nil
	}
	ct, err := domain.ParseContentType(t.Type)
	if err != nil {
		return nil, err
	}
	return []domain.ContentType{ct}, nil
}

// sortKey identifie une liste dans les préférences ("xtream/movies").
func sortKey(p domain.Provider, t domain.ContentType) string {
	return string(p) + "/" + string(t)
}

type selectionView struct {
	Provider domain.Provider       `json:"provider"`
	Owner    int64                 `json:"owner"`
	Type     domain.ContentType    `json:"type"`
	Filter   string                `json:"filter,omitempty"`
	Sort     domain.SortConfig     `json:"sort"`
	Selected int                   `json:"selected"`
	Visible  int                   `json:"visible"`
	Total    int                   `json:"total"`
	Entries  []domain.CatalogEntry `json:"entries"`
}

// openEditor charge les listes et applique filtre et tri (flag, sinon
// préférence enregistrée). Un tri passé en flag est enregistré.
func openEditor(ctx context.Context, c *cli, target selectionTarget) (*app.SelectionEditor, []domain.ContentType, error) {
	provider, err := target.provider()
	if err != nil {
		return nil, nil, err
	}
	types, err := target.types()
	if err != nil {
		return nil, nil, err
	}
	ed := app.NewSelectionEditor(provider, target.Owner, c.client, c.logger, app.SelectionOptions{
		RefreshInterval: c.cfg.Poll.RefreshInterval,
		RefreshTimeout:  c.cfg.Poll.RefreshTimeout,
	})
	if err := ed.Load(ctx); err != nil {
		return nil, nil, err
	}
	ed.SetFilter(target.Filter)

	prefs := c.preferences(ctx)
	if prefs.Sort == nil {
		prefs.Sort = map[string]domain.SortConfig{}
	}
	changed := false
	for _, t := range types {
		cfg, ok := prefs.Sort[sortKey(provider, t)]
		if target.Sort != "" {
			cfg = domain.SortConfig{Key: domain.SortKey(target.Sort), Direction: domain.SortAsc}
			if target.Desc {
				cfg.Direction = domain.SortDesc
			}
			prefs.Sort[sortKey(provider, t)] = cfg
			changed = true
		} else if !ok {
			continue
		}
		if err := ed.SetSort(t, cfg); err != nil {
			return nil, nil, err
		}
	}
	if changed {
		if _, err := c.prefs.Put(ctx, prefs); err != nil {
			c.logger.Warn().Err(err).Msg("save sort preference failed")
		}
	}
	return ed, types, nil
}

func views(ed *app.SelectionEditor, types []domain.ContentType) []selectionView {
	out := make([]selectionView, 0, len(types))
	for _, t := range types {
		sel, vis, total := ed.Counts(t)
		out = append(out, selectionView{
			Provider: ed.Provider(),
			Owner:    ed.OwnerID(),
			Type:     t,
			Filter:   ed.Filter(),
			Sort:     ed.Sort(t),
			Selected: sel,
			Visible:  vis,
			Total:    total,
			Entries:  ed.View(t),
		})
	}
	return out
}

func printSelection(ctx context.Context, c *cli, vs []selectionView) error {
	return c.print(ctx, vs, func(tw *tabwriter.Writer) {
		for i, v := range vs {
			if i > 0 {
				row(tw)
			}
			row(tw, fmt.Sprintf("%s  %d selected / %d shown / %d total  (sort: %s %s)",
				v.Type.Label(), v.Selected, v.Visible, v.Total, v.Sort.Key, v.Sort.Direction))
			row(tw, "SEL", "ID", "NAME", "ITEMS")
			for _, e := range v.Entries {
				mark := "[ ]"
				if e.Selected {
					mark = "[x]"
				}
				row(tw, mark, e.ID, e.Name, e.ItemCount)
			}
		}
	})
}

type selectionListCmd struct {
	Target selectionTarget
}

func (cmd *selectionListCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		ed, types, err := openEditor(ctx, c, cmd.Target)
		if err != nil {
			return err
		}
		return printSelection(ctx, c, views(ed, types))
	})
}

type selectionRefreshCmd struct {
	Target selectionTarget
}

func (cmd *selectionRefreshCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		ed, types, err := openEditor(ctx, c, cmd.Target)
		if err != nil {
			return err
		}
		for _, t := range types {
			fmt.Fprintf(c.out, "Refreshing %s...\n", t.Label())
			if err := ed.Refresh(ctx, t); err != nil {
				return err
			}
		}
		return printSelection(ctx, c, views(ed, types))
	})
}

type selectionSaveCmd struct {
	Target    selectionTarget
	Select    []string `long:"select" description:"Id à sélectionner (répétable)"`
	Deselect  []string `long:"deselect" description:"Id à désélectionner (répétable)"`
	ToggleAll bool     `long:"toggle-all" description:"Sélectionne les entrées visibles, ou les désélectionne si elles le sont toutes"`
	None      bool     `long:"none" description:"Vide la sélection avant les autres changements"`
}

func (cmd *selectionSaveCmd) Execute(_ []string) error {
	return withCLI(func(ctx context.Context, c *cli) error {
		ed, types, err := openEditor(ctx, c, cmd.Target)
		if err != nil {
			return err
		}
		for _, t := range types {
			if err := cmd.edit(ed, t, len(types) > 1); err != nil {
				return err
			}
		}
		if len(types) > 1 {
			err = ed.SaveAll(ctx)
		} else {
			err = ed.Save(ctx, types[0])
		}
		if err != nil {
			return err
		}
		return printSelection(ctx, c, views(ed, types))
	})
}

// edit applique les changements demandés sur un type. Sur plusieurs types un
// id absent de la liste du type est ignoré.
func (cmd *selectionSaveCmd) edit(ed *app.SelectionEditor, t domain.ContentType, lenient bool) error {
	if cmd.None {
		for _, e := range ed.Selected(t) {
			if err := ed.Set(t, e.ID, false); err != nil {
				return err
			}
		}
	}
	if cmd.ToggleAll {
		if _, err := ed.SelectAll(t); err != nil {
			return err
		}
	}
	apply := func(ids []string, selected bool) error {
		for _, id := range ids {
			if err := ed.Set(t, id, selected); err != nil && !lenient {
				return err
			}
		}
		return nil
	}
	if err := apply(cmd.Select, true); err != nil {
		return err
	}
	return apply(cmd.Deselect, false)
}
