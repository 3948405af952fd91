package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ContentType est le type de contenu synchronisé (films ou séries).
type ContentType string

const (
	Movies ContentType = "movies"
	Series ContentType = "series"
)

// ContentTypes liste les types dans l'ordre d'affichage.
var ContentTypes = []ContentType{Movies, Series}

var ErrUnknownContentType = errors.New("unknown content type")

func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movies", "movie", "films":
		return Movies, nil
	case "series", "tv":
		return Series, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownContentType, s)
	}
}

// EntryType renvoie la valeur "entry_type" utilisée côté M3U (singulier pour les films).
func (c ContentType) EntryType() string {
	if c == Movies {
		return "movie"
	}
	return "series"
}

func (c ContentType) Label() string {
	if c == Movies {
		return "Movies"
	}
	return "Series"
}

// Provider distingue les deux familles de sources.
type Provider string

const (
	ProviderXtream Provider = "xtream"
	ProviderM3U    Provider = "m3u"
)

func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xtream", "xtv", "xc":
		return ProviderXtream, nil
	case "m3u":
		return ProviderM3U, nil
	default:
		return "", fmt.Errorf("unknown provider: %q", s)
	}
}

type SyncState string

const (
	SyncIdle      SyncState = "idle"
	SyncRunning   SyncState = "running"
	SyncSuccess   SyncState = "success"
	SyncFailed    SyncState = "failed"
	SyncCancelled SyncState = "cancelled"
)

func (s SyncState) IsTerminal() bool {
	return s == SyncSuccess || s == SyncFailed || s == SyncCancelled
}

// Label reproduit l'affichage du dashboard ("Idle" quand aucun statut n'existe).
func (s SyncState) Label() string {
	if s == "" || s == SyncIdle {
		return "Idle"
	}
	return string(s)
}

// CanTransition décrit la machine d'état d'une clé (owner, type).
// Le serveur reste la source de vérité: le client ne s'en sert que pour
// décider si une commande a un sens.
func CanTransition(from, to SyncState) bool {
	if from == "" {
		from = SyncIdle
	}
	if from == to {
		return true
	}
	switch from {
	case SyncIdle:
		return to == SyncRunning
	case SyncRunning:
		// stop côté serveur remet parfois "idle" au lieu de "cancelled"
		return to == SyncSuccess || to == SyncFailed || to == SyncCancelled || to == SyncIdle
	case SyncSuccess, SyncFailed, SyncCancelled:
		return to == SyncRunning
	default:
		return to == SyncRunning
	}
}

// StatusKey identifie un job de synchronisation.
type StatusKey struct {
	OwnerID int64
	Type    ContentType
}

func (k StatusKey) String() string {
	return fmt.Sprintf("%d/%s", k.OwnerID, k.Type)
}

// SyncStatus est le miroir d'un statut serveur. Les horodatages restent bruts
// (voir FormatDateTime).
type SyncStatus struct {
	OwnerID      int64       `json:"ownerId"`
	Type         ContentType `json:"type"`
	State        SyncState   `json:"state"`
	LastSyncAt   string      `json:"lastSyncAt,omitempty"`
	ItemsAdded   int         `json:"itemsAdded"`
	ItemsDeleted int         `json:"itemsDeleted"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

func (s SyncStatus) Key() StatusKey {
	return StatusKey{OwnerID: s.OwnerID, Type: s.Type}
}

// IdleStatus est le statut affiché pour une clé encore jamais synchronisée.
func IdleStatus(key StatusKey) SyncStatus {
	return SyncStatus{OwnerID: key.OwnerID, Type: key.Type, State: SyncIdle}
}
