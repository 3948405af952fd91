package session

import (
	"context"
	"sync"
	"time"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

// Reloader sert le jeton de la session persistée. Tant que la session en
// mémoire est vide ou expirée, le store est relu (au plus une fois par
// minInterval): un `strmctl login` est pris en compte sans redémarrer la
// console.
type Reloader struct {
	repo        ports.SessionRepository
	serverURL   string
	minInterval time.Duration
	now         func() time.Time

	mu       sync.Mutex
	current  *Session
	loadedAt time.Time
}

func NewReloader(repo ports.SessionRepository, serverURL string) *Reloader {
	return &Reloader{
		repo:        repo,
		serverURL:   serverURL,
		minInterval: 2 * time.Second,
		now:         time.Now,
		current:     New(serverURL),
	}
}

func (r *Reloader) Token() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, err := r.current.Token()
	if err == nil {
		return tok, nil
	}
	if !r.loadedAt.IsZero() && r.now().Sub(r.loadedAt) < r.minInterval {
		return "", err
	}
	r.loadedAt = r.now()
	s, loadErr := Load(context.Background(), r.repo, r.serverURL)
	if loadErr != nil {
		return "", loadErr
	}
	r.current = s
	return s.Token()
}

func (r *Reloader) Username() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Username()
}
