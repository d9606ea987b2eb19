package entity

// ViolationType regla de calidad que incumplió un registro en cuarentena.
type ViolationType string

const (
	ViolationMissingField      ViolationType = "missing_field"
	ViolationUnparseableDate   ViolationType = "unparseable_date"
	ViolationDateBeforeMinimum ViolationType = "date_before_minimum"
	ViolationNonNumeric        ViolationType = "non_numeric"
	ViolationOutOfBounds       ViolationType = "out_of_bounds"
	ViolationInvalidValue      ViolationType = "invalid_value"
)

// ViolationTypes todas las reglas, en el orden en que se evalúan.
var ViolationTypes = []ViolationType{
	ViolationMissingField,
	ViolationUnparseableDate,
	ViolationDateBeforeMinimum,
	ViolationNonNumeric,
	ViolationOutOfBounds,
	ViolationInvalidValue,
}

// QuarantinedRecord registro excluido del cálculo, conservado para el reporte.
type QuarantinedRecord struct {
	Record    RawRecord
	Violation ViolationType
	Field     string
	Value     string
}

// ClearedValue valor opcional descartado de un registro que sí se aceptó
// (p. ej. una fecha de conteo 1900-01-01). El registro sigue en el cálculo.
type ClearedValue struct {
	Record    RawRecord
	Violation ViolationType
	Field     string
	Value     string
}

// ViolationCount conteo y porcentaje de registros por tipo de violación.
type ViolationCount struct {
	Type       ViolationType
	Count      int
	Percentage float64 // sobre el total de registros de la fuente
}

// QualityReport resumen de calidad de una fuente.
type QualityReport struct {
	Source             SourceSystem
	TotalRecords       int
	AcceptedRecords    int
	QuarantinedRecords int
	Violations         []ViolationCount
	ClearedValues      int
	Cleared            []ViolationCount // solo tipos con al menos un valor descartado
}
