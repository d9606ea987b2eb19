// Package quality aplica reglas de validez configurables a los registros crudos y
// los separa en aceptados y en cuarentena, con un reporte de calidad por fuente.
package quality

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/domain/normalize"
)

// Bounds límites inclusivos de un campo numérico; cualquiera de los dos puede faltar.
type Bounds struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// Between construye límites cerrados [min, max].
func Between(min, max decimal.Decimal) Bounds {
	return Bounds{Min: &min, Max: &max}
}

// AtLeast construye un límite inferior.
func AtLeast(min decimal.Decimal) Bounds {
	return Bounds{Min: &min}
}

// Unbounded solo exige que el valor sea numérico.
func Unbounded() Bounds {
	return Bounds{}
}

func (b Bounds) contains(v decimal.Decimal) bool {
	if b.Min != nil && v.LessThan(*b.Min) {
		return false
	}
	if b.Max != nil && v.GreaterThan(*b.Max) {
		return false
	}
	return true
}

// Rules reglas de validez de una fuente.
type Rules struct {
	DateField      string // vacío = la fuente no tiene fecha de evento
	DateLayouts    []string
	MinValidDate   time.Time // fechas estrictamente anteriores son artefactos de captura (1900-01-01)
	RequiredFields []string
	NumericBounds  map[string]Bounds
	AllowedValues  map[string][]string // comparación sin distinguir mayúsculas
	// OptionalDates fechas que solo anotan el registro. Un valor ilegible o anterior
	// a MinValidDate se descarta y se cuenta; el registro no va a cuarentena.
	OptionalDates []string
}

// Validate detecta reglas incoherentes antes de procesar registros.
func (r Rules) Validate() error {
	if (r.DateField != "" || len(r.OptionalDates) > 0) && len(r.DateLayouts) == 0 {
		return fmt.Errorf("%w: hay campos de fecha sin formatos aceptados", domain.ErrInvalidConfig)
	}
	for field, b := range r.NumericBounds {
		if b.Min != nil && b.Max != nil && b.Min.GreaterThan(*b.Max) {
			return fmt.Errorf("%w: límites invertidos para %q (%s > %s)", domain.ErrInvalidConfig, field, b.Min, b.Max)
		}
	}
	return nil
}

// Accepted registro que pasó todas las reglas, con sus valores ya parseados.
type Accepted struct {
	Record  entity.RawRecord
	Date    time.Time // zero si la fuente no tiene campo de fecha
	Numbers map[string]decimal.Decimal
	Dates   map[string]time.Time // OptionalDates válidas
}

// OptionalDate fecha opcional parseada; zero si faltaba o se descartó.
func (a Accepted) OptionalDate(field string) time.Time {
	return a.Dates[field]
}

// Number devuelve el valor parseado del campo (cero si estaba vacío y no era obligatorio).
func (a Accepted) Number(field string) decimal.Decimal {
	return a.Numbers[field]
}

// HasNumber indica si el campo numérico vino informado.
func (a Accepted) HasNumber(field string) bool {
	_, ok := a.Numbers[field]
	return ok
}

// Result partición de una fuente.
type Result struct {
	Accepted    []Accepted
	Quarantined []entity.QuarantinedRecord
	Cleared     []entity.ClearedValue
	Report      entity.QualityReport
}

// Filter valida cada registro y lo envía a aceptados o a cuarentena con la
// primera regla incumplida. No modifica la entrada.
func Filter(source entity.SourceSystem, records []entity.RawRecord, rules Rules) Result {
	res := Result{
		Accepted:    make([]Accepted, 0, len(records)),
		Quarantined: []entity.QuarantinedRecord{},
		Cleared:     []entity.ClearedValue{},
	}
	numericFields := sortedKeys(rules.NumericBounds)
	allowed := lowerSets(rules.AllowedValues)

	for _, rec := range records {
		acc, q := check(rec, rules, numericFields, allowed)
		if q != nil {
			res.Quarantined = append(res.Quarantined, *q)
			continue
		}
		res.Cleared = append(res.Cleared, optionalDates(&acc, rules)...)
		res.Accepted = append(res.Accepted, acc)
	}
	res.Report = BuildReport(source, len(records), res.Quarantined, res.Cleared)
	return res
}

func check(
	rec entity.RawRecord,
	rules Rules,
	numericFields []string,
	allowed map[string]map[string]bool,
) (Accepted, *entity.QuarantinedRecord) {
	quarantine := func(v entity.ViolationType, field string) (Accepted, *entity.QuarantinedRecord) {
		return Accepted{}, &entity.QuarantinedRecord{Record: rec, Violation: v, Field: field, Value: rec.Get(field)}
	}

	// 1. Campos obligatorios
	for _, f := range rules.RequiredFields {
		if !rec.Has(f) {
			return quarantine(entity.ViolationMissingField, f)
		}
	}

	acc := Accepted{Record: rec, Numbers: make(map[string]decimal.Decimal, len(numericFields))}

	// 2-3. Fecha: parseable y no anterior al mínimo. Nunca se sustituye por otra fecha.
	if rules.DateField != "" && rec.Has(rules.DateField) {
		d, ok := normalize.Date(rec.Get(rules.DateField), rules.DateLayouts)
		if !ok {
			return quarantine(entity.ViolationUnparseableDate, rules.DateField)
		}
		if !rules.MinValidDate.IsZero() && d.Before(normalize.DateOnly(rules.MinValidDate)) {
			return quarantine(entity.ViolationDateBeforeMinimum, rules.DateField)
		}
		acc.Date = d
	}

	// 4-5. Numéricos y límites
	for _, f := range numericFields {
		if !rec.Has(f) {
			continue
		}
		v, ok := ParseNumber(rec.Get(f))
		if !ok {
			return quarantine(entity.ViolationNonNumeric, f)
		}
		if !rules.NumericBounds[f].contains(v) {
			return quarantine(entity.ViolationOutOfBounds, f)
		}
		acc.Numbers[f] = v
	}

	// 6. Valores permitidos
	for _, f := range sortedKeys(allowed) {
		if !rec.Has(f) {
			continue
		}
		if !allowed[f][strings.ToLower(rec.Get(f))] {
			return quarantine(entity.ViolationInvalidValue, f)
		}
	}

	return acc, nil
}

// optionalDates parsea las fechas de anotación del registro ya aceptado.
func optionalDates(acc *Accepted, rules Rules) []entity.ClearedValue {
	var cleared []entity.ClearedValue
	for _, f := range rules.OptionalDates {
		if !acc.Record.Has(f) {
			continue
		}
		raw := acc.Record.Get(f)
		d, ok := normalize.Date(raw, rules.DateLayouts)
		switch {
		case !ok:
			cleared = append(cleared, entity.ClearedValue{Record: acc.Record, Violation: entity.ViolationUnparseableDate, Field: f, Value: raw})
		case !rules.MinValidDate.IsZero() && d.Before(normalize.DateOnly(rules.MinValidDate)):
			cleared = append(cleared, entity.ClearedValue{Record: acc.Record, Violation: entity.ViolationDateBeforeMinimum, Field: f, Value: raw})
		default:
			if acc.Dates == nil {
				acc.Dates = make(map[string]time.Time, len(rules.OptionalDates))
			}
			acc.Dates[f] = d
		}
	}
	return cleared
}

// ParseNumber interpreta un número de un extracto; admite símbolo "$" inicial.
func ParseNumber(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// BuildReport cuenta registros en cuarentena por tipo de violación.
// Incluye todos los tipos (con cero) para que el reporte tenga siempre la misma forma.
// Los valores opcionales descartados se cuentan aparte: no restan aceptados.
func BuildReport(
	source entity.SourceSystem,
	total int,
	quarantined []entity.QuarantinedRecord,
	cleared []entity.ClearedValue,
) entity.QualityReport {
	counts := make(map[entity.ViolationType]int, len(entity.ViolationTypes))
	for _, q := range quarantined {
		counts[q.Violation]++
	}
	violations := make([]entity.ViolationCount, 0, len(entity.ViolationTypes))
	for _, vt := range entity.ViolationTypes {
		violations = append(violations, entity.ViolationCount{
			Type:       vt,
			Count:      counts[vt],
			Percentage: percentage(counts[vt], total),
		})
	}
	clearedCounts := make(map[entity.ViolationType]int)
	for _, c := range cleared {
		clearedCounts[c.Violation]++
	}
	clearedViolations := []entity.ViolationCount{}
	for _, vt := range entity.ViolationTypes {
		if n := clearedCounts[vt]; n > 0 {
			clearedViolations = append(clearedViolations, entity.ViolationCount{
				Type:       vt,
				Count:      n,
				Percentage: percentage(n, total),
			})
		}
	}
	return entity.QualityReport{
		Source:             source,
		TotalRecords:       total,
		AcceptedRecords:    total - len(quarantined),
		QuarantinedRecords: len(quarantined),
		Violations:         violations,
		ClearedValues:      len(cleared),
		Cleared:            clearedViolations,
	}
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*10000) / 100
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lowerSets(m map[string][]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(m))
	for f, vals := range m {
		set := make(map[string]bool, len(vals))
		for _, v := range vals {
			set[strings.ToLower(strings.TrimSpace(v))] = true
		}
		out[f] = set
	}
	return out
}
