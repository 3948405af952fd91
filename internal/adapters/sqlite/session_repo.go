package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Get(ctx context.Context) (domain.StoredSession, error) {
	var (
		s         domain.StoredSession
		expiresAt sql.NullString
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT server_url, username, token, expires_at, created_at
		FROM session WHERE id = 1
	`).Scan(&s.ServerURL, &s.Username, &s.Token, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoredSession{}, ports.ErrNotFound
		}
		return domain.StoredSession{}, err
	}
	if expiresAt.Valid && expiresAt.String != "" {
		t, err := time.Parse(time.RFC3339, expiresAt.String)
		if err != nil {
			return domain.StoredSession{}, fmt.Errorf("parse expires_at: %w", err)
		}
		s.ExpiresAt = t
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		s.CreatedAt = t
	}
	return s, nil
}

func (r *SessionRepository) Put(ctx context.Context, s domain.StoredSession) error {
	var expiresAt any
	if !s.ExpiresAt.IsZero() {
		expiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session(id, server_url, username, token, expires_at, created_at)
		VALUES(1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			server_url = excluded.server_url,
			username = excluded.username,
			token = excluded.token,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`, s.ServerURL, s.Username, s.Token, expiresAt, s.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (r *SessionRepository) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`)
	return err
}
