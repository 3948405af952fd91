package domain

import "time"

// StoredSession est la session persistée localement entre deux invocations.
type StoredSession struct {
	ServerURL string    `json:"serverUrl"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortKey string

const (
	SortByName  SortKey = "name"
	SortByID    SortKey = "id"
	SortByCount SortKey = "count"
)

type SortConfig struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

func DefaultSortConfig() SortConfig {
	return SortConfig{Key: SortByName, Direction: SortAsc}
}

// ViewPreferences garde les choix d'affichage de la CLI (tri par liste, format).
type ViewPreferences struct {
	Output string                `json:"output"`
	Sort   map[string]SortConfig `json:"sort"`
}

func DefaultViewPreferences() ViewPreferences {
	return ViewPreferences{Output: "table", Sort: map[string]SortConfig{}}
}

// AdminAction est une action destructive exposée sous /admin (ou /sync/reset).
type AdminAction string

const (
	AdminDeleteFiles      AdminAction = "delete-files"
	AdminResetDatabase    AdminAction = "reset-database"
	AdminResetAll         AdminAction = "reset-all"
	AdminResetSyncHistory AdminAction = "reset-sync-history"
)

// AdminResult reprend la réponse du serveur (message + compteurs éventuels).
type AdminResult struct {
	Message      string   `json:"message"`
	DeletedCount int      `json:"deleted_count,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}
