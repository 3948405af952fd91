package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

// StatusSource renvoie tous les statuts de synchronisation d'une famille de sources.
type StatusSource interface {
	SyncStatuses(ctx context.Context, provider domain.Provider) ([]domain.SyncStatus, error)
}

type JobAPI interface {
	StartSync(ctx context.Context, provider domain.Provider, key domain.StatusKey) error
	StopSync(ctx context.Context, provider domain.Provider, key domain.StatusKey) error
}

// CatalogAPI couvre les endpoints de sélection (catégories Xtream, groupes M3U).
type CatalogAPI interface {
	Categories(ctx context.Context, subscriptionID int64, t domain.ContentType) ([]domain.CatalogEntry, error)
	RefreshCategories(ctx context.Context, subscriptionID int64, t domain.ContentType) error
	SaveCategories(ctx context.Context, subscriptionID int64, t domain.ContentType, selected []domain.CatalogEntry) error

	// Groups renvoie les groupes des deux types; Type est renseigné sur chaque entrée.
	Groups(ctx context.Context, sourceID int64) ([]domain.CatalogEntry, error)
	RefreshGroups(ctx context.Context, sourceID int64, t domain.ContentType) error
	SaveGroups(ctx context.Context, sourceID int64, scope string, selected []domain.CatalogEntry) error
	M3USource(ctx context.Context, sourceID int64) (domain.M3USource, error)
}

type SchedulerAPI interface {
	ScheduleConfigs(ctx context.Context) ([]domain.ScheduleConfig, error)
	UpdateSchedule(ctx context.Context, t domain.ContentType, update domain.ScheduleUpdate) (domain.ScheduleConfig, error)
	ExecutionHistory(ctx context.Context, limit int) ([]domain.ExecutionRecord, error)
}

type AdminAPI interface {
	Admin(ctx context.Context, action domain.AdminAction) (domain.AdminResult, error)
}

type SourcesAPI interface {
	Subscriptions(ctx context.Context) ([]domain.Subscription, error)
	CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	UpdateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	SetSubscriptionActive(ctx context.Context, id int64, active bool) (domain.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) error

	M3USources(ctx context.Context) ([]domain.M3USource, error)
	CreateM3USource(ctx context.Context, src domain.M3USource) (domain.M3USource, error)
	UpdateM3USource(ctx context.Context, src domain.M3USource) (domain.M3USource, error)
	DeleteM3USource(ctx context.Context, id int64) error
	SyncM3USource(ctx context.Context, id int64) error
}

type StatsSource interface {
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
}

// LineStream est un flux de lignes (un message SSE = une ligne de log).
type LineStream interface {
	Next() (string, error)
	Close() error
}

type LogStreamer interface {
	OpenLogStream(ctx context.Context) (LineStream, error)
}
