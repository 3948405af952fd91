package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

// SessionRepository persiste la session courante (une seule ligne).
type SessionRepository interface {
	Get(ctx context.Context) (domain.StoredSession, error)
	Put(ctx context.Context, s domain.StoredSession) error
	Delete(ctx context.Context) error
}

type PreferencesRepository interface {
	Get(ctx context.Context) (domain.ViewPreferences, error)
	Put(ctx context.Context, prefs domain.ViewPreferences) (domain.ViewPreferences, error)
}
