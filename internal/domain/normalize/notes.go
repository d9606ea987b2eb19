package normalize

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	rePhysicalCount = regexp.MustCompile(`(?i)physical\s+count:\s*(\d+)`)
	reAdjustment    = regexp.MustCompile(`(?i)adj:\s*([+-]?\d+)`)
)

// NoteAnnotation ajustes manuales que el equipo de operaciones deja en la columna de notas.
type NoteAnnotation struct {
	PhysicalCount *decimal.Decimal // "Physical count: 78 (system wrong)"
	Adjustment    *decimal.Decimal // "Adj: +15 per Sarah 5/4"
}

// IsOverride indica si la nota contiene algún ajuste manual reconocido.
func (a NoteAnnotation) IsOverride() bool {
	return a.PhysicalCount != nil || a.Adjustment != nil
}

// ParseInventoryNotes extrae las anotaciones conocidas de una nota libre.
func ParseInventoryNotes(note string) NoteAnnotation {
	var out NoteAnnotation
	if m := rePhysicalCount.FindStringSubmatch(note); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			out.PhysicalCount = &d
		}
	}
	if m := reAdjustment.FindStringSubmatch(note); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			out.Adjustment = &d
		}
	}
	return out
}
