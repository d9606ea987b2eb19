package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jhoicas/Inventario-recon/internal/application/ports"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// CSVSource extracto CSV con encabezados (inventario o POS).
type CSVSource struct {
	system   entity.SourceSystem
	path     string
	encoding string
}

var _ ports.ExtractSource = (*CSVSource)(nil)

// NewCSVSource construye la fuente. encoding vacío = UTF-8.
func NewCSVSource(system entity.SourceSystem, path, encoding string) *CSVSource {
	return &CSVSource{system: system, path: path, encoding: encoding}
}

// System implementa ports.ExtractSource.
func (s *CSVSource) System() entity.SourceSystem { return s.system }

// Extract lee el archivo completo.
func (s *CSVSource) Extract(ctx context.Context) ([]entity.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, openError(s.path, err)
	}
	defer f.Close()
	return ReadCSV(ctx, s.system, f, s.encoding)
}

// ReadCSV interpreta un CSV ya abierto. Las filas con menos columnas que el encabezado
// se aceptan: los campos faltantes quedan vacíos y el filtro de calidad decide.
func ReadCSV(ctx context.Context, system entity.SourceSystem, r io.Reader, encoding string) ([]entity.RawRecord, error) {
	dr, err := decodingReader(r, encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dr)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv %s: %w", system, err)
		}
		rows = append(rows, row)
	}
	return rowsToRecords(system, rows), nil
}
