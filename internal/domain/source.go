package domain

// Subscription est un profil de connexion Xtream Codes.
type Subscription struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required"`
	XtreamURL string `json:"xtream_url" validate:"required,url"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	MoviesDir string `json:"movies_dir"`
	SeriesDir string `json:"series_dir"`
	IsActive  bool   `json:"is_active"`
}

// DefaultSubscription reprend les valeurs pré-remplies du formulaire d'ajout.
func DefaultSubscription() Subscription {
	return Subscription{
		MoviesDir: "/output/movies",
		SeriesDir: "/output/series",
		IsActive:  true,
	}
}

type M3USourceType string

const (
	M3USourceURL  M3USourceType = "url"
	M3USourceFile M3USourceType = "file"
)

// M3USource est une playlist M3U (URL ou fichier importé).
type M3USource struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name" validate:"required"`
	SourceType M3USourceType `json:"source_type"`
	URL        string        `json:"url,omitempty" validate:"omitempty,url"`
	FilePath   string        `json:"file_path,omitempty"`
	OutputDir  string        `json:"output_dir,omitempty"`
	MoviesDir  string        `json:"movies_dir,omitempty"`
	SeriesDir  string        `json:"series_dir,omitempty"`
	IsActive   bool          `json:"is_active"`
	SyncStatus string        `json:"sync_status,omitempty"`
	LastSync   string        `json:"last_sync,omitempty"`
	CreatedAt  string        `json:"created_at,omitempty"`
}

// Statuts "source-level" d'une source M3U (champ sync_status).
const (
	M3USyncIdle    = "idle"
	M3USyncSyncing = "syncing"
	M3USyncSuccess = "success"
	M3USyncError   = "error"
)
