package domain

import (
	"fmt"
	"strings"
	"time"
)

const displayLayout = "2006-01-02 15:04:05"

// FormatDateTime affiche un horodatage serveur tel quel, tronqué à
// "YYYY-MM-DD HH:MM:SS". Aucune conversion de fuseau: le serveur envoie déjà
// l'heure à afficher.
func FormatDateTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Never"
	}
	s := strings.Replace(raw, "T", " ", 1)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "Z")
	if len(s) > len(displayLayout) {
		if _, err := time.Parse(displayLayout, s[:len(displayLayout)]); err == nil {
			s = s[:len(displayLayout)]
		}
	}
	return s
}

// FormatDuration calcule la durée entre deux horodatages bruts du même fuseau.
func FormatDuration(start, end string) string {
	if strings.TrimSpace(end) == "" {
		return "-"
	}
	from, err1 := time.Parse(displayLayout, FormatDateTime(start))
	to, err2 := time.Parse(displayLayout, FormatDateTime(end))
	if err1 != nil || err2 != nil {
		return "-"
	}
	seconds := int(to.Sub(from) / time.Second)
	minutes := seconds / 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}
