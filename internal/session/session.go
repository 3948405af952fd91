// Package session porte le jeton d'accès de l'utilisateur connecté.
//
// Une Session est créée au login puis injectée dans le client REST et le
// client SSE; il n'existe aucun état global.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired")
)

// expirySkew évite d'envoyer un jeton qui expire pendant la requête.
const expirySkew = 5 * time.Second

type Session struct {
	mu        sync.RWMutex
	serverURL string
	username  string
	token     string
	expiresAt time.Time
	createdAt time.Time

	now func() time.Time
}

func New(serverURL string) *Session {
	return &Session{serverURL: strings.TrimRight(serverURL, "/"), now: time.Now}
}

// FromStored reconstruit une session persistée (voir Save).
func FromStored(st domain.StoredSession) *Session {
	s := New(st.ServerURL)
	s.username = st.Username
	s.token = st.Token
	s.expiresAt = st.ExpiresAt
	s.createdAt = st.CreatedAt
	return s
}

// Set installe le jeton renvoyé par /login/access-token. Les claims ne sont
// pas vérifiés (la clé est côté serveur): seuls sub et exp sont lus.
func (s *Session) Set(username, token string) {
	sub, exp := readClaims(token)
	if username == "" {
		username = sub
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.token = token
	s.expiresAt = exp
	s.createdAt = s.now()
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	s.token = ""
	s.expiresAt = time.Time{}
	s.createdAt = time.Time{}
}

// Token renvoie le jeton courant, ou une erreur avant tout appel réseau si la
// session est vide ou expirée.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNotLoggedIn
	}
	if !s.expiresAt.IsZero() && !s.now().Add(expirySkew).Before(s.expiresAt) {
		return "", ErrSessionExpired
	}
	return s.token, nil
}

func (s *Session) LoggedIn() bool {
	_, err := s.Token()
	return err == nil
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) ServerURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverURL
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

func (s *Session) Stored() domain.StoredSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StoredSession{
		ServerURL: s.serverURL,
		Username:  s.username,
		Token:     s.token,
		ExpiresAt: s.expiresAt,
		CreatedAt: s.createdAt,
	}
}

// Load relit la session persistée. Une session enregistrée pour un autre
// serveur est ignorée.
func Load(ctx context.Context, repo ports.SessionRepository, serverURL string) (*Session, error) {
	st, err := repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return New(serverURL), nil
		}
		return nil, err
	}
	if serverURL != "" && strings.TrimRight(serverURL, "/") != st.ServerURL {
		return New(serverURL), nil
	}
	return FromStored(st), nil
}

func Save(ctx context.Context, repo ports.SessionRepository, s *Session) error {
	st := s.Stored()
	if st.Token == "" {
		return repo.Delete(ctx)
	}
	return repo.Put(ctx, st)
}

func readClaims(token string) (string, time.Time) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// jeton opaque: pas d'expiration connue
		return "", time.Time{}
	}
	sub, _ := claims.GetSubject()
	var exp time.Time
	if e, err := claims.GetExpirationTime(); err == nil && e != nil {
		exp = e.Time
	}
	return sub, exp
}
