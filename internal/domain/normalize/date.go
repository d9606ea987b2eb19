package normalize

import (
	"strings"
	"time"
)

// Date intenta los layouts en orden y devuelve la fecha de calendario (UTC, 00:00).
// Un fallo total devuelve false, nunca un error: la decisión de cuarentena es del filtro de calidad.
func Date(raw string, layouts []string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), true
		}
	}
	return time.Time{}, false
}

// DateOnly trunca un instante a su fecha de calendario en UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween días de calendario completos de from a to (negativo si to < from).
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}
