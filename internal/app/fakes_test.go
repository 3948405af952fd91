package app

import (
	"context"
	"io"
	"sync"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

// fakeBackend implémente les ports REST en mémoire pour les tests.
type fakeBackend struct {
	mu sync.Mutex

	statuses    map[domain.Provider][]domain.SyncStatus
	statusErr   error
	statusCalls int

	started []domain.StatusKey
	stopped []domain.StatusKey
	jobErr  error

	categories   map[domain.ContentType][]domain.CatalogEntry
	groups       []domain.CatalogEntry
	savedCats    map[domain.ContentType][]domain.CatalogEntry
	savedGroups  []domain.CatalogEntry
	savedScope   string
	refreshed    []domain.ContentType
	m3uStatuses  []string
	m3uCalls     int
	catalogCalls int

	schedules   []domain.ScheduleConfig
	updates     []domain.ScheduleUpdate
	history     []domain.ExecutionRecord
	historyArgs []int

	adminCalls  []domain.AdminAction
	adminResult domain.AdminResult
	adminErr    error

	subs       []domain.Subscription
	m3uSources []domain.M3USource
	subsCalls  int
	sourcesErr error
	created    []any

	stats    domain.DashboardStats
	statsErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		statuses:   map[domain.Provider][]domain.SyncStatus{},
		categories: map[domain.ContentType][]domain.CatalogEntry{},
		savedCats:  map[domain.ContentType][]domain.CatalogEntry{},
	}
}

func (f *fakeBackend) SyncStatuses(_ context.Context, p domain.Provider) ([]domain.SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return append([]domain.SyncStatus(nil), f.statuses[p]...), nil
}

func (f *fakeBackend) setStatuses(p domain.Provider, sts ...domain.SyncStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[p] = sts
}

func (f *fakeBackend) StartSync(_ context.Context, _ domain.Provider, key domain.StatusKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, key)
	return f.jobErr
}

func (f *fakeBackend) StopSync(_ context.Context, _ domain.Provider, key domain.StatusKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, key)
	return f.jobErr
}

func (f *fakeBackend) Categories(_ context.Context, _ int64, t domain.ContentType) ([]domain.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogCalls++
	return append([]domain.CatalogEntry(nil), f.categories[t]...), nil
}

func (f *fakeBackend) RefreshCategories(_ context.Context, _ int64, t domain.ContentType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, t)
	return nil
}

func (f *fakeBackend) SaveCategories(_ context.Context, _ int64, t domain.ContentType, selected []domain.CatalogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedCats[t] = selected
	return nil
}

func (f *fakeBackend) Groups(_ context.Context, _ int64) ([]domain.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogCalls++
	return append([]domain.CatalogEntry(nil), f.groups...), nil
}

func (f *fakeBackend) RefreshGroups(_ context.Context, _ int64, t domain.ContentType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, t)
	return nil
}

func (f *fakeBackend) SaveGroups(_ context.Context, _ int64, scope string, selected []domain.CatalogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedScope = scope
	f.savedGroups = selected
	return nil
}

// M3USource renvoie successivement les statuts de m3uStatuses; le dernier est répété.
func (f *fakeBackend) M3USource(_ context.Context, id int64) (domain.M3USource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := domain.M3USyncSuccess
	if len(f.m3uStatuses) > 0 {
		i := f.m3uCalls
		if i >= len(f.m3uStatuses) {
			i = len(f.m3uStatuses) - 1
		}
		st = f.m3uStatuses[i]
	}
	f.m3uCalls++
	return domain.M3USource{ID: id, SyncStatus: st}, nil
}

func (f *fakeBackend) ScheduleConfigs(context.Context) ([]domain.ScheduleConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ScheduleConfig(nil), f.schedules...), nil
}

func (f *fakeBackend) UpdateSchedule(_ context.Context, t domain.ContentType, u domain.ScheduleUpdate) (domain.ScheduleConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	return domain.ScheduleConfig{Type: t, Enabled: u.Enabled, Frequency: u.Frequency}, nil
}

func (f *fakeBackend) ExecutionHistory(_ context.Context, limit int) ([]domain.ExecutionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyArgs = append(f.historyArgs, limit)
	return f.history, nil
}

func (f *fakeBackend) Admin(_ context.Context, action domain.AdminAction) (domain.AdminResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminCalls = append(f.adminCalls, action)
	return f.adminResult, f.adminErr
}

func (f *fakeBackend) Subscriptions(context.Context) ([]domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subsCalls++
	if f.sourcesErr != nil {
		return nil, f.sourcesErr
	}
	return append([]domain.Subscription(nil), f.subs...), nil
}

func (f *fakeBackend) CreateSubscription(_ context.Context, sub domain.Subscription) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, sub)
	sub.ID = int64(len(f.subs) + 1)
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeBackend) UpdateSubscription(_ context.Context, sub domain.Subscription) (domain.Subscription, error) {
	return sub, nil
}

func (f *fakeBackend) SetSubscriptionActive(_ context.Context, id int64, active bool) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].ID == id {
			f.subs[i].IsActive = active
			return f.subs[i], nil
		}
	}
	return domain.Subscription{}, ports.ErrNotFound
}

func (f *fakeBackend) DeleteSubscription(context.Context, int64) error { return nil }

func (f *fakeBackend) M3USources(context.Context) ([]domain.M3USource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sourcesErr != nil {
		return nil, f.sourcesErr
	}
	return append([]domain.M3USource(nil), f.m3uSources...), nil
}

func (f *fakeBackend) CreateM3USource(_ context.Context, src domain.M3USource) (domain.M3USource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, src)
	src.ID = int64(len(f.m3uSources) + 1)
	f.m3uSources = append(f.m3uSources, src)
	return src, nil
}

func (f *fakeBackend) UpdateM3USource(_ context.Context, src domain.M3USource) (domain.M3USource, error) {
	return src, nil
}

func (f *fakeBackend) DeleteM3USource(context.Context, int64) error { return nil }

func (f *fakeBackend) SyncM3USource(context.Context, int64) error { return nil }

func (f *fakeBackend) DashboardStats(context.Context) (domain.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, f.statsErr
}

// fakeStream délivre des lignes puis une erreur de fin.
type fakeStream struct {
	lines  chan string
	end    error
	closed chan struct{}
	once   sync.Once
}

func newFakeStream(lines ...string) *fakeStream {
	s := &fakeStream{lines: make(chan string, len(lines)), end: io.EOF, closed: make(chan struct{})}
	for _, l := range lines {
		s.lines <- l
	}
	close(s.lines)
	return s
}

func (s *fakeStream) Next() (string, error) {
	l, ok := <-s.lines
	if !ok {
		return "", s.end
	}
	return l, nil
}

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type fakeStreamer struct {
	mu      sync.Mutex
	streams []*fakeStream
	opened  int
	err     error
}

func (f *fakeStreamer) OpenLogStream(ctx context.Context) (ports.LineStream, error) {
	f.mu.Lock()
	f.opened++
	if f.err != nil {
		err := f.err
		f.mu.Unlock()
		return nil, err
	}
	if len(f.streams) == 0 {
		f.mu.Unlock()
		// plus rien à servir: bloque jusqu'à l'annulation
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s := f.streams[0]
	f.streams = f.streams[1:]
	f.mu.Unlock()
	return s, nil
}

func (f *fakeStreamer) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

type staticActivity map[int64]bool

func (a staticActivity) IsActive(_ context.Context, _ domain.Provider, id int64) (bool, error) {
	active, ok := a[id]
	if !ok {
		return false, ErrUnknownOwner
	}
	return active, nil
}
