package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los problemas de un registro individual nunca son errores: se ponen en cuarentena.
var (
	ErrInvalidConfig  = errors.New("configuración inválida")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrNoRunAvailable = errors.New("no hay una corrida disponible")
	ErrUnknownRule    = errors.New("regla de agregación desconocida")
)
