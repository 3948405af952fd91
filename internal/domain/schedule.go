package domain

import (
	"errors"
	"fmt"
	"time"
)

type Frequency string

const (
	FrequencyHourly      Frequency = "hourly"
	FrequencySixHours    Frequency = "six_hours"
	FrequencyTwelveHours Frequency = "twelve_hours"
	FrequencyDaily       Frequency = "daily"
	FrequencyWeekly      Frequency = "weekly"
)

// Frequencies est l'énumération fermée, dans l'ordre du sélecteur.
var Frequencies = []Frequency{
	FrequencyHourly,
	FrequencySixHours,
	FrequencyTwelveHours,
	FrequencyDaily,
	FrequencyWeekly,
}

var ErrInvalidFrequency = errors.New("invalid frequency")

func ParseFrequency(s string) (Frequency, error) {
	for _, f := range Frequencies {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
}

func (f Frequency) Valid() bool {
	_, err := ParseFrequency(string(f))
	return err == nil
}

// Interval correspond au calcul de next_run côté serveur.
func (f Frequency) Interval() time.Duration {
	switch f {
	case FrequencyHourly:
		return time.Hour
	case FrequencySixHours:
		return 6 * time.Hour
	case FrequencyTwelveHours:
		return 12 * time.Hour
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

func (f Frequency) Label() string {
	switch f {
	case FrequencyHourly:
		return "Toutes les heures"
	case FrequencySixHours:
		return "Toutes les 6 heures"
	case FrequencyTwelveHours:
		return "Toutes les 12 heures"
	case FrequencyDaily:
		return "Quotidiennement"
	case FrequencyWeekly:
		return "Hebdomadairement"
	default:
		return string(f)
	}
}

type ScheduleConfig struct {
	Type      ContentType `json:"type"`
	Enabled   bool        `json:"enabled"`
	Frequency Frequency   `json:"frequency"`
	LastRun   string      `json:"last_run,omitempty"`
	NextRun   string      `json:"next_run,omitempty"`
}

// DefaultScheduleConfig est affiché tant que le serveur n'a rien renvoyé pour ce type.
func DefaultScheduleConfig(t ContentType) ScheduleConfig {
	return ScheduleConfig{Type: t, Enabled: false, Frequency: FrequencyDaily}
}

// ScheduleUpdate remplace la config côté serveur: les deux champs sont toujours envoyés.
type ScheduleUpdate struct {
	Enabled   bool      `json:"enabled"`
	Frequency Frequency `json:"frequency"`
}

type ExecutionStatus string

const (
	ExecutionSuccess   ExecutionStatus = "success"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
	ExecutionRunning   ExecutionStatus = "running"
)

func (s ExecutionStatus) Label() string {
	switch s {
	case ExecutionSuccess:
		return "Succès"
	case ExecutionFailed:
		return "Échec"
	case ExecutionRunning:
		return "En cours"
	case ExecutionCancelled:
		return "Annulé"
	default:
		return string(s)
	}
}

// ExecutionRecord est une entrée (immuable) de l'historique du scheduler.
type ExecutionRecord struct {
	ID             int64           `json:"id"`
	ScheduleID     int64           `json:"schedule_id"`
	StartedAt      string          `json:"started_at"`
	CompletedAt    string          `json:"completed_at,omitempty"`
	Status         ExecutionStatus `json:"status"`
	ItemsProcessed int             `json:"items_processed"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// Duration renvoie "Xm Ys", "Ys" ou "-" si l'exécution n'est pas terminée.
func (r ExecutionRecord) Duration() string {
	return FormatDuration(r.StartedAt, r.CompletedAt)
}
