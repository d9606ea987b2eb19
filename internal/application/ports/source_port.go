package ports

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// ExtractSource puerto de entrada de un sistema de origen (archivo, base de datos).
// Devuelve las filas con los nombres de campo canónicos de entity; no valida contenido:
// eso es responsabilidad del filtro de calidad.
type ExtractSource interface {
	System() entity.SourceSystem
	Extract(ctx context.Context) ([]entity.RawRecord, error)
}

// ReportWriter persiste los artefactos de una corrida (JSON, CSV, SQLite).
type ReportWriter interface {
	Write(ctx context.Context, report *dto.RunReportDTO) error
}

// RunRecorder recibe el resultado de cada corrida terminada (métricas, última corrida en memoria).
// Una corrida fallida llega con report nil y err distinto de nil.
type RunRecorder interface {
	Record(report *dto.RunReportDTO, elapsed time.Duration, err error)
}
