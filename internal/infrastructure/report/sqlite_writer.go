package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/application/ports"
)

// SQLiteWriter vuelca las mismas tablas de los CSV en run_report.sqlite, más una
// tabla "run" con los metadatos de la corrida. El archivo se recrea en cada corrida.
type SQLiteWriter struct {
	dir string
}

var _ ports.ReportWriter = (*SQLiteWriter)(nil)

// NewSQLiteWriter construye el escritor sobre el directorio de salida.
func NewSQLiteWriter(dir string) *SQLiteWriter {
	return &SQLiteWriter{dir: dir}
}

// Write implementa ports.ReportWriter.
func (w *SQLiteWriter) Write(ctx context.Context, r *dto.RunReportDTO) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("crear directorio %s: %w", w.dir, err)
	}
	path := filepath.Join(w.dir, SQLiteFileName)
	_ = os.Remove(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("abrir sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	all := append([]table{runTable(r)}, tables(r)...)
	for _, t := range all {
		if err := writeTable(ctx, tx, t); err != nil {
			return fmt.Errorf("sqlite %s: %w", t.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite: %w", err)
	}
	return nil
}

func writeTable(ctx context.Context, tx *sql.Tx, t table) error {
	defs := make([]string, len(t.columns))
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = fmt.Sprintf("%q %s", c.name, c.typ)
		names[i] = fmt.Sprintf("%q", c.name)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %q (%s)`, t.name, strings.Join(defs, ","))); err != nil {
		return err
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(t.columns)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, t.name, strings.Join(names, ","), ph))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.rows {
		args := make([]any, len(t.columns))
		for i, c := range t.columns {
			args[i] = sqliteValue(c, row[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// sqliteValue celdas vacías en columnas numéricas se guardan como NULL.
func sqliteValue(c column, v string) any {
	if v == "" && c.typ != colText {
		return nil
	}
	return v
}

func runTable(r *dto.RunReportDTO) table {
	return table{
		name: "run",
		columns: cols("run_id", "generated_at", "reference_date", "window_start", "observed_start",
			"lookback_days:i", "critical_days:r", "high_days:r", "match_rate_pct:r"),
		rows: [][]string{{
			r.RunID, r.GeneratedAt, r.ReferenceDate, r.WindowStart, r.ObservedStart,
			fmt.Sprint(r.LookbackDays), dec(r.Thresholds.CriticalDays), dec(r.Thresholds.HighDays),
			fmt.Sprint(r.Reconciliation.MatchRate),
		}},
	}
}
