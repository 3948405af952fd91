package app

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

// CatalogList est la liste éditable d'un type de contenu. La vue (filtre puis
// tri) est recalculée à chaque appel à partir des entrées brutes.
// Non protégée: SelectionEditor sérialise les accès.
type CatalogList struct {
	kind    domain.CatalogKind
	entries []domain.CatalogEntry
	sort    domain.SortConfig
}

func NewCatalogList(kind domain.CatalogKind, entries []domain.CatalogEntry) *CatalogList {
	l := &CatalogList{kind: kind, sort: domain.DefaultSortConfig()}
	l.Replace(entries)
	return l
}

// Replace remplace les entrées (rechargement serveur): les modifications
// locales sont perdues.
func (l *CatalogList) Replace(entries []domain.CatalogEntry) {
	l.entries = append([]domain.CatalogEntry(nil), entries...)
}

func (l *CatalogList) Len() int { return len(l.entries) }

func (l *CatalogList) Sort() domain.SortConfig { return l.sort }

func (l *CatalogList) SetSort(cfg domain.SortConfig) {
	if cfg.Key == "" {
		cfg = domain.DefaultSortConfig()
	}
	if cfg.Direction != domain.SortDesc {
		cfg.Direction = domain.SortAsc
	}
	l.sort = cfg
}

// ToggleSort suit le clic sur un en-tête: même colonne en ordre croissant ->
// décroissant, sinon croissant.
func (l *CatalogList) ToggleSort(key domain.SortKey) domain.SortConfig {
	dir := domain.SortAsc
	if l.sort.Key == key && l.sort.Direction == domain.SortAsc {
		dir = domain.SortDesc
	}
	l.sort = domain.SortConfig{Key: key, Direction: dir}
	return l.sort
}

// View applique le filtre puis le tri courant.
func (l *CatalogList) View(filter string) []domain.CatalogEntry {
	// un Caser n'est pas partageable entre goroutines
	fold := cases.Fold()
	needle := fold.String(filter)
	out := make([]domain.CatalogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if l.matches(fold, e, filter, needle) {
			out = append(out, e)
		}
	}
	less := entryLess(l.sort.Key)
	desc := l.sort.Direction == domain.SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func (l *CatalogList) matches(fold cases.Caser, e domain.CatalogEntry, filter, needle string) bool {
	if filter == "" {
		return true
	}
	if strings.Contains(fold.String(e.Name), needle) {
		return true
	}
	// l'id brut d'une catégorie est comparé tel quel
	return l.kind == domain.KindCategory && strings.Contains(e.ID, filter)
}

func entryLess(key domain.SortKey) func(a, b domain.CatalogEntry) bool {
	switch key {
	case domain.SortByCount:
		return func(a, b domain.CatalogEntry) bool { return a.ItemCount < b.ItemCount }
	case domain.SortByID:
		return func(a, b domain.CatalogEntry) bool {
			ai, aerr := strconv.ParseInt(a.ID, 10, 64)
			bi, berr := strconv.ParseInt(b.ID, 10, 64)
			if aerr == nil && berr == nil {
				return ai < bi
			}
			return a.ID < b.ID
		}
	default:
		return func(a, b domain.CatalogEntry) bool { return a.Name < b.Name }
	}
}

// Toggle inverse la sélection d'une entrée. Renvoie false si l'id est inconnu.
func (l *CatalogList) Toggle(id string) bool {
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Selected = !l.entries[i].Selected
			return true
		}
	}
	return false
}

func (l *CatalogList) Set(id string, selected bool) bool {
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Selected = selected
			return true
		}
	}
	return false
}

// SelectAll agit sur les entrées visibles uniquement: si toutes sont
// sélectionnées elles sont toutes désélectionnées, sinon toutes sélectionnées.
// Renvoie la nouvelle valeur appliquée.
func (l *CatalogList) SelectAll(filter string) bool {
	visible := l.View(filter)
	if len(visible) == 0 {
		return false
	}
	all := true
	ids := make(map[string]struct{}, len(visible))
	for _, e := range visible {
		ids[e.ID] = struct{}{}
		if !e.Selected {
			all = false
		}
	}
	target := !all
	for i := range l.entries {
		if _, ok := ids[l.entries[i].ID]; ok {
			l.entries[i].Selected = target
		}
	}
	return target
}

// AllVisibleSelected pilote l'état de la case "tout sélectionner".
func (l *CatalogList) AllVisibleSelected(filter string) bool {
	visible := l.View(filter)
	if len(visible) == 0 {
		return false
	}
	for _, e := range visible {
		if !e.Selected {
			return false
		}
	}
	return true
}

// Selected renvoie les entrées sélectionnées dans l'ordre serveur, filtre ignoré.
func (l *CatalogList) Selected() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Selected {
			out = append(out, e)
		}
	}
	return out
}

func (l *CatalogList) Entries() []domain.CatalogEntry {
	return append([]domain.CatalogEntry(nil), l.entries...)
}
