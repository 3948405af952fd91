package app

import (
	"errors"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

var ErrNotFound = ports.ErrNotFound

var (
	ErrOwnerInactive  = errors.New("subscription or source is inactive")
	ErrAlreadyRunning = errors.New("sync already running")
	ErrNotRunning     = errors.New("sync is not running")
	ErrBusy           = errors.New("operation already in progress")
	ErrRefreshTimeout = errors.New("refresh did not complete in time")
	ErrUnknownOwner   = errors.New("unknown subscription or source")

	ErrNotConfirmed       = errors.New("admin action not confirmed")
	ErrConfirmationPhrase = errors.New("confirmation phrase must contain YES")
	ErrInvalidAdminState  = errors.New("admin request is not in a valid state for this step")
)

// CodedError porte un code stable (exposé par la console et la CLI).
//
// Exemples de codes: refresh_timeout, refresh_failed, admin_failed, invalid_form.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }

// ErrorCode renvoie le code d'un CodedError dans la chaîne, sinon "".
func ErrorCode(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// detailed est implémenté par les erreurs qui portent un message serveur
// destiné à l'utilisateur (le champ "detail" de l'API).
type detailed interface {
	UserDetail() string
}

// UserMessage renvoie le message serveur s'il existe, sinon fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var d detailed
	if errors.As(err, &d) {
		if msg := d.UserDetail(); msg != "" {
			return msg
		}
	}
	var ce *CodedError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
