package ports

import "errors"

// Erreurs communes aux adaptateurs, traduites depuis les codes HTTP du
// backend (404, 409, 401/403) ou le store local.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)
