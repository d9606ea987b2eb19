package pipeline

import (
	"sync"
	"time"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/application/ports"
	"github.com/jhoicas/Inventario-recon/internal/domain"
)

// LatestRun guarda en memoria el reporte de la última corrida exitosa.
// Una corrida fallida no reemplaza al último reporte válido.
type LatestRun struct {
	mu      sync.RWMutex
	report  *dto.RunReportDTO
	lastErr error
}

var _ ports.RunRecorder = (*LatestRun)(nil)

// NewLatestRun construye el almacén vacío.
func NewLatestRun() *LatestRun {
	return &LatestRun{}
}

// Record implementa ports.RunRecorder.
func (l *LatestRun) Record(report *dto.RunReportDTO, _ time.Duration, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = err
	if err == nil && report != nil {
		l.report = report
	}
}

// Latest devuelve el último reporte; domain.ErrNoRunAvailable si aún no hay ninguno.
// El reporte es de solo lectura para quien lo recibe.
func (l *LatestRun) Latest() (*dto.RunReportDTO, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.report == nil {
		return nil, domain.ErrNoRunAvailable
	}
	return l.report, nil
}

// LastError error de la última corrida (nil si fue exitosa).
func (l *LatestRun) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}
