package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/application/ports"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/infrastructure/extract"
)

// Querier lo mínimo que se necesita de un pool o una conexión.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// InventorySource lee el inventario directamente de la base del sistema de origen.
// La consulta debe devolver columnas con los mismos nombres que el extracto
// (name/description, item_code, qty_on_hand, reorder_level, retail_price, notes...).
type InventorySource struct {
	q     Querier
	tx    *TxRunner
	query string
}

var _ ports.ExtractSource = (*InventorySource)(nil)

// NewInventorySource construye el adaptador. Acepta pool o conexión (Querier).
func NewInventorySource(q Querier, query string) *InventorySource {
	return &InventorySource{q: q, query: query}
}

// WithSnapshot hace que la extracción corra dentro de una transacción de solo lectura.
func (s *InventorySource) WithSnapshot(tx *TxRunner) *InventorySource {
	s.tx = tx
	return s
}

// System implementa ports.ExtractSource.
func (s *InventorySource) System() entity.SourceSystem { return entity.SourceInventory }

// Extract ejecuta la consulta y convierte cada fila en un registro crudo.
func (s *InventorySource) Extract(ctx context.Context) ([]entity.RawRecord, error) {
	if s.tx == nil {
		return s.extractFrom(ctx, s.q)
	}
	var out []entity.RawRecord
	err := s.tx.ReadOnly(ctx, func(q Querier) error {
		var err error
		out, err = s.extractFrom(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *InventorySource) extractFrom(ctx context.Context, q Querier) ([]entity.RawRecord, error) {
	rows, err := q.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("consultar inventario: %w", classifyQueryError(err))
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	for i, fd := range descs {
		columns[i] = fd.Name
	}

	out := []entity.RawRecord{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan inventario: %w", err)
		}
		out = append(out, recordFromRow(columns, values, len(out)+1))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leer inventario: %w", classifyQueryError(err))
	}
	return out, nil
}

func recordFromRow(columns []string, values []any, line int) entity.RawRecord {
	rec := entity.RawRecord{Source: entity.SourceInventory, Line: line, Fields: make(map[string]string, len(columns))}
	for i, col := range columns {
		if i >= len(values) {
			break
		}
		field := extract.CanonicalField(entity.SourceInventory, col)
		if rec.Fields[field] == "" {
			rec.Fields[field] = formatValue(values[i])
		}
	}
	return rec
}

// formatValue texto equivalente al que traería el extracto en archivo.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case decimal.NullDecimal:
		if !x.Valid {
			return ""
		}
		return x.Decimal.String()
	case time.Time:
		return x.Format("2006-01-02")
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
