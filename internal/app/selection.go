package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

type SelectionOptions struct {
	// RefreshInterval et RefreshTimeout bornent l'attente du parsing M3U.
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
}

func DefaultSelectionOptions() SelectionOptions {
	return SelectionOptions{RefreshInterval: 3 * time.Second, RefreshTimeout: 5 * time.Minute}
}

// SelectionEditor édite la sélection de catégories (Xtream) ou de groupes
// (M3U) d'un propriétaire, une liste par type de contenu.
type SelectionEditor struct {
	provider domain.Provider
	ownerID  int64
	api      ports.CatalogAPI
	opts     SelectionOptions
	logger   zerolog.Logger

	mu     sync.Mutex
	lists  map[domain.ContentType]*CatalogList
	filter string
	busy   map[domain.ContentType]bool
}

func NewSelectionEditor(provider domain.Provider, ownerID int64, api ports.CatalogAPI, logger zerolog.Logger, opts SelectionOptions) *SelectionEditor {
	def := DefaultSelectionOptions()
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = def.RefreshInterval
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = def.RefreshTimeout
	}
	e := &SelectionEditor{
		provider: provider,
		ownerID:  ownerID,
		api:      api,
		opts:     opts,
		logger: logger.With().
			Str("component", "selection").
			Str("provider", string(provider)).
			Int64("owner_id", ownerID).
			Logger(),
		lists: map[domain.ContentType]*CatalogList{},
		busy:  map[domain.ContentType]bool{},
	}
	for _, t := range domain.ContentTypes {
		e.lists[t] = NewCatalogList(provider.CatalogKind(), nil)
	}
	return e
}

func (e *SelectionEditor) Provider() domain.Provider { return e.provider }
func (e *SelectionEditor) OwnerID() int64            { return e.ownerID }

// Load recharge les deux listes depuis le serveur. Un type en erreur garde
// sa liste précédente.
func (e *SelectionEditor) Load(ctx context.Context) error {
	if e.provider == domain.ProviderM3U {
		groups, err := e.api.Groups(ctx, e.ownerID)
		if err != nil {
			e.logger.Error().Err(err).Msg("load groups failed")
			return fmt.Errorf("load groups: %w", err)
		}
		byType := splitByType(groups)
		e.mu.Lock()
		for _, t := range domain.ContentTypes {
			e.lists[t].Replace(byType[t])
		}
		e.mu.Unlock()
		return nil
	}

	var errs []error
	for _, t := range domain.ContentTypes {
		if err := e.loadCategories(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *SelectionEditor) loadCategories(ctx context.Context, t domain.ContentType) error {
	cats, err := e.api.Categories(ctx, e.ownerID, t)
	if err != nil {
		e.logger.Error().Err(err).Str("type", string(t)).Msg("load categories failed")
		return fmt.Errorf("load %s categories: %w", t, err)
	}
	e.mu.Lock()
	e.lists[t].Replace(cats)
	e.mu.Unlock()
	return nil
}

func (e *SelectionEditor) loadGroups(ctx context.Context, t domain.ContentType) error {
	groups, err := e.api.Groups(ctx, e.ownerID)
	if err != nil {
		e.logger.Error().Err(err).Str("type", string(t)).Msg("load groups failed")
		return fmt.Errorf("load %s groups: %w", t, err)
	}
	e.mu.Lock()
	e.lists[t].Replace(splitByType(groups)[t])
	e.mu.Unlock()
	return nil
}

func splitByType(entries []domain.CatalogEntry) map[domain.ContentType][]domain.CatalogEntry {
	out := map[domain.ContentType][]domain.CatalogEntry{}
	for _, g := range entries {
		out[g.Type] = append(out[g.Type], g)
	}
	return out
}

func (e *SelectionEditor) begin(t domain.ContentType) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.lists[t]; !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownContentType, t)
	}
	if e.busy[t] {
		return nil, ErrBusy
	}
	e.busy[t] = true
	return func() {
		e.mu.Lock()
		e.busy[t] = false
		e.mu.Unlock()
	}, nil
}

func (e *SelectionEditor) Busy(t domain.ContentType) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy[t]
}

// Refresh redemande le catalogue au fournisseur puis recharge la liste du
// type: les modifications locales non sauvegardées sont perdues.
func (e *SelectionEditor) Refresh(ctx context.Context, t domain.ContentType) error {
	done, err := e.begin(t)
	if err != nil {
		return err
	}
	defer done()

	log := e.logger.With().Str("type", string(t)).Logger()
	log.Info().Msg("refreshing catalog")

	if e.provider != domain.ProviderM3U {
		if err := e.api.RefreshCategories(ctx, e.ownerID, t); err != nil {
			log.Error().Err(err).Msg("refresh categories failed")
			return &CodedError{Code: "refresh_failed", Message: "refresh " + string(t) + " categories", Err: err}
		}
		return e.loadCategories(ctx, t)
	}

	if err := e.api.RefreshGroups(ctx, e.ownerID, t); err != nil {
		log.Error().Err(err).Msg("refresh groups failed")
		return &CodedError{Code: "refresh_failed", Message: "refresh " + string(t) + " groups", Err: err}
	}
	if err := e.waitM3UIdle(ctx); err != nil {
		return err
	}
	return e.loadGroups(ctx, t)
}

// waitM3UIdle suit le sync_status de la source jusqu'à la fin du parsing.
// Au timeout le job serveur n'est pas annulé.
func (e *SelectionEditor) waitM3UIdle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.RefreshTimeout)
	defer cancel()

	ticker := time.NewTicker(e.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				e.logger.Warn().Dur("timeout", e.opts.RefreshTimeout).Msg("m3u refresh still running on server, giving up")
				return &CodedError{Code: "refresh_timeout", Message: "m3u source still syncing", Err: ErrRefreshTimeout}
			}
			return ctx.Err()
		case <-ticker.C:
			src, err := e.api.M3USource(ctx, e.ownerID)
			if err != nil {
				// transitoire: on retente au tick suivant
				e.logger.Warn().Err(err).Msg("m3u source status check failed")
				continue
			}
			switch src.SyncStatus {
			case domain.M3USyncSyncing:
				continue
			case domain.M3USyncError:
				return &CodedError{Code: "refresh_failed", Message: "m3u source sync failed"}
			default:
				return nil
			}
		}
	}
}

// Save envoie les entrées sélectionnées. En M3U le serveur remplace toute la
// sélection de la source: les deux types partent dans la même requête.
func (e *SelectionEditor) Save(ctx context.Context, t domain.ContentType) error {
	done, err := e.begin(t)
	if err != nil {
		return err
	}
	defer done()
	if e.provider == domain.ProviderM3U {
		return e.saveGroups(ctx, string(t))
	}
	return e.saveCategories(ctx, t)
}

// SaveAll sauvegarde les deux types.
func (e *SelectionEditor) SaveAll(ctx context.Context) error {
	var releases []func()
	defer func() {
		for _, r := range releases {
			r()
		}
	}()
	for _, t := range domain.ContentTypes {
		done, err := e.begin(t)
		if err != nil {
			return err
		}
		releases = append(releases, done)
	}

	if e.provider == domain.ProviderM3U {
		return e.saveGroups(ctx, "all")
	}
	var errs []error
	for _, t := range domain.ContentTypes {
		if err := e.saveCategories(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *SelectionEditor) saveCategories(ctx context.Context, t domain.ContentType) error {
	e.mu.Lock()
	selected := e.lists[t].Selected()
	e.mu.Unlock()

	if err := e.api.SaveCategories(ctx, e.ownerID, t, selected); err != nil {
		e.logger.Error().Err(err).Str("type", string(t)).Msg("save categories failed")
		return fmt.Errorf("save %s selection: %w", t, err)
	}
	e.logger.Info().Str("type", string(t)).Int("selected", len(selected)).Msg("selection saved")
	return nil
}

func (e *SelectionEditor) saveGroups(ctx context.Context, scope string) error {
	e.mu.Lock()
	var selected []domain.CatalogEntry
	for _, t := range domain.ContentTypes {
		selected = append(selected, e.lists[t].Selected()...)
	}
	e.mu.Unlock()

	if err := e.api.SaveGroups(ctx, e.ownerID, scope, selected); err != nil {
		e.logger.Error().Err(err).Str("scope", scope).Msg("save groups failed")
		return fmt.Errorf("save group selection: %w", err)
	}
	e.logger.Info().Str("scope", scope).Int("selected", len(selected)).Msg("selection saved")
	return nil
}

func (e *SelectionEditor) SetFilter(filter string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = filter
}

func (e *SelectionEditor) Filter() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

func (e *SelectionEditor) list(t domain.ContentType) (*CatalogList, error) {
	l, ok := e.lists[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownContentType, t)
	}
	return l, nil
}

// View renvoie la liste filtrée et triée d'un type.
func (e *SelectionEditor) View(t domain.ContentType) []domain.CatalogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, err := e.list(t)
	if err != nil {
		return nil
	}
	return l.View(e.filter)
}

func (e *SelectionEditor) ToggleSort(t domain.ContentType, key domain.SortKey) (domain.SortConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, err := e.list(t)
	if err != nil {
		return domain.SortConfig{}, err
	}
	return l.ToggleSort(key), nil
}

func (e *SelectionEditor) SetSort(t domain.ContentType, cfg domain.SortConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, err := e.list(t)
	if err != nil {
		return err
	}
	l.SetSort(cfg)
	return nil
}

func (e *SelectionEditor) Sort(t domain.ContentType) domain.SortConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, err := e.list(t); err == nil {
		return l.Sort()
	}
	return domain.DefaultSortConfig()
}

func (e *SelectionEditor) Toggle(t domain.ContentType, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, err := e.list(t)
	if err != nil {
		return err
	}
	if !l.Toggle(id) {
		return fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}
	return nil
}

func (e *SelectionEditor) Set(t domain.ContentType, id string, selected bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, err := e.list(t)
	if err != nil {
		return err
	}
	if !l.Set(id, selected) {
		return fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}
	return nil
}

// SelectAll bascule les entrées visibles (filtre courant) du type.
func (e *SelectionEditor) SelectAll(t domain.ContentType) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, err := e.list(t)
	if err != nil {
		return false, err
	}
	return l.SelectAll(e.filter), nil
}

func (e *SelectionEditor) Selected(t domain.ContentType) []domain.CatalogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, err := e.list(t); err == nil {
		return l.Selected()
	}
	return nil
}

// Counts renvoie (sélectionnées, visibles, total) pour l'en-tête de liste.
func (e *SelectionEditor) Counts(t domain.ContentType) (selected, visible, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, err := e.list(t)
	if err != nil {
		return 0, 0, 0
	}
	return len(l.Selected()), len(l.View(e.filter)), l.Len()
}
