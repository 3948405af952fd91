package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

const preferencesKey = "view"

type PreferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

func (r *PreferencesRepository) Get(ctx context.Context) (domain.ViewPreferences, error) {
	var b []byte
	err := r.db.QueryRowContext(ctx, `SELECT value_json FROM preferences WHERE key = ?`, preferencesKey).Scan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultViewPreferences(), nil
		}
		return domain.ViewPreferences{}, err
	}
	prefs := domain.DefaultViewPreferences()
	if err := json.Unmarshal(b, &prefs); err != nil {
		// corrompu: on repart des valeurs par défaut
		return domain.DefaultViewPreferences(), nil
	}
	if prefs.Sort == nil {
		prefs.Sort = map[string]domain.SortConfig{}
	}
	return prefs, nil
}

func (r *PreferencesRepository) Put(ctx context.Context, prefs domain.ViewPreferences) (domain.ViewPreferences, error) {
	b, err := json.Marshal(prefs)
	if err != nil {
		return domain.ViewPreferences{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO preferences(key, value_json, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at
	`, preferencesKey, b, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return domain.ViewPreferences{}, err
	}
	return r.Get(ctx)
}
