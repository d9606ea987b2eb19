package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Inventario-recon/internal/domain"
)

// classifyQueryError distingue una consulta mal configurada (tabla o columna
// inexistente, sintaxis) de un fallo de conexión.
func classifyQueryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "42703", "42601": // undefined_table, undefined_column, syntax_error
			return fmt.Errorf("%w: SOURCE_INVENTORY_QUERY: %s", domain.ErrInvalidConfig, pgErr.Message)
		}
	}
	return err
}
