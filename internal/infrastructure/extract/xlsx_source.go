package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Inventario-recon/internal/application/ports"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// XLSXSource extracto Excel; se lee la primera hoja.
type XLSXSource struct {
	system entity.SourceSystem
	path   string
	sheet  string
}

var _ ports.ExtractSource = (*XLSXSource)(nil)

// NewXLSXSource construye la fuente. sheet vacío = primera hoja del libro.
func NewXLSXSource(system entity.SourceSystem, path, sheet string) *XLSXSource {
	return &XLSXSource{system: system, path: path, sheet: sheet}
}

// System implementa ports.ExtractSource.
func (s *XLSXSource) System() entity.SourceSystem { return s.system }

// dateFields columnas que Excel guarda como número de serie cuando la celda es fecha.
var dateFields = []string{entity.FieldDate, entity.FieldFirstSeen, entity.FieldLastCountDate}

// Extract lee los valores crudos de las celdas. Las fechas con formato de celda
// llegan como número de serie y se convierten a ISO; las que vienen como texto no se tocan.
func (s *XLSXSource) Extract(ctx context.Context) ([]entity.RawRecord, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, openError(s.path, err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %q de %s: %w", sheet, s.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs := rowsToRecords(s.system, rows)
	for _, r := range recs {
		for _, field := range dateFields {
			if v, ok := r.Fields[field]; ok {
				r.Fields[field] = serialToISO(v)
			}
		}
	}
	return recs, nil
}

const maxExcelSerial = 2958465 // 9999-12-31

// serialToISO convierte un número de serie de Excel (sistema 1900) a 2006-01-02.
// Cualquier otro valor se devuelve igual.
func serialToISO(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial <= 0 || serial > maxExcelSerial {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}
