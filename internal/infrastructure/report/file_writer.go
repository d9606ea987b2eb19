package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/application/ports"
)

// Nombres de los artefactos.
const (
	JSONFileName   = "run_report.json"
	SQLiteFileName = "run_report.sqlite"
)

// JSONWriter escribe el reporte completo en run_report.json.
type JSONWriter struct {
	dir string
}

var _ ports.ReportWriter = (*JSONWriter)(nil)

// NewJSONWriter construye el escritor sobre el directorio de salida.
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Write implementa ports.ReportWriter.
func (w *JSONWriter) Write(_ context.Context, r *dto.RunReportDTO) error {
	return writeAtomic(filepath.Join(w.dir, JSONFileName), func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	})
}

// CSVWriter escribe una tabla plana por archivo (<tabla>.csv).
type CSVWriter struct {
	dir string
}

var _ ports.ReportWriter = (*CSVWriter)(nil)

// NewCSVWriter construye el escritor sobre el directorio de salida.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Write implementa ports.ReportWriter.
func (w *CSVWriter) Write(ctx context.Context, r *dto.RunReportDTO) error {
	for _, t := range tables(r) {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(w.dir, t.name+".csv")
		err := writeAtomic(path, func(out io.Writer) error {
			cw := csv.NewWriter(out)
			if err := cw.Write(t.header()); err != nil {
				return err
			}
			if err := cw.WriteAll(t.rows); err != nil {
				return err
			}
			return cw.Error()
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writeAtomic escribe en un temporal del mismo directorio y lo renombra al final,
// así un lector nunca ve un artefacto a medio escribir.
func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("crear directorio %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("crear temporal para %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("escribir %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cerrar %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renombrar %s: %w", path, err)
	}
	return nil
}
