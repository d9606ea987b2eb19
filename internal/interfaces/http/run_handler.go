package http

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/domain"
)

// Runner ejecuta una corrida completa sobre las fuentes configuradas.
type Runner interface {
	Run(ctx context.Context) (*dto.RunReportDTO, error)
}

// LatestProvider último reporte disponible.
type LatestProvider interface {
	Latest() (*dto.RunReportDTO, error)
	LastError() error
}

// RunHandler expone el reporte de la última corrida (solo lectura) y permite lanzar una nueva.
type RunHandler struct {
	runner Runner
	latest LatestProvider
}

// NewRunHandler construye el handler. runner puede ser nil: POST /api/runs responde 503.
func NewRunHandler(runner Runner, latest LatestProvider) *RunHandler {
	return &RunHandler{runner: runner, latest: latest}
}

// Health GET /health
func (h *RunHandler) Health(c *fiber.Ctx) error {
	out := dto.HealthDTO{Status: "ok"}
	if r, err := h.latest.Latest(); err == nil {
		out.LastRunID = r.RunID
		out.ReferenceDate = r.ReferenceDate
	}
	if err := h.latest.LastError(); err != nil {
		out.Status = "degraded"
		out.LastError = err.Error()
	}
	return c.JSON(out)
}

// GetLatest GET /api/runs/latest
func (h *RunHandler) GetLatest(c *fiber.Ctx) error {
	r, err := h.latest.Latest()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

// CreateRun POST /api/runs
// Ejecuta una corrida sincrónica y devuelve su resumen. La corrida reemplaza a la
// anterior solo si termina bien.
func (h *RunHandler) CreateRun(c *fiber.Ctx) error {
	if h.runner == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "RUNNER_DISABLED", Message: "no hay fuentes configuradas para ejecutar corridas",
		})
	}
	r, err := h.runner.Run(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RunSummaryDTO{
		RunID:          r.RunID,
		ReferenceDate:  r.ReferenceDate,
		Products:       len(r.Products),
		StockoutRisks:  len(r.StockoutRisks),
		DeadInventory:  len(r.DeadInventory),
		Duplicates:     len(r.Duplicates),
		Gaps:           len(r.Gaps),
		Quarantined:    len(r.Quarantined),
		Reconciliation: r.Reconciliation,
	})
}

// ListProducts GET /api/products?tier=critical|high|none&dead=true&limit=&offset=
func (h *RunHandler) ListProducts(c *fiber.Ctx) error {
	r, err := h.latest.Latest()
	if err != nil {
		return respondError(c, err)
	}

	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}
	page.DefaultPage()

	tier := strings.ToLower(c.Query("tier"))
	deadOnly := c.QueryBool("dead", false)
	filtered := make([]dto.UnifiedProductDTO, 0, len(r.Products))
	for _, p := range r.Products {
		if tier != "" && p.RiskTier != tier {
			continue
		}
		if deadOnly && !p.Dead {
			continue
		}
		filtered = append(filtered, p)
	}

	start := min(page.Offset, len(filtered))
	end := min(start+page.Limit, len(filtered))
	return c.JSON(dto.ProductPageDTO{
		Items: filtered[start:end],
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(filtered)},
	})
}

// ListStockoutRisks GET /api/stockout-risks?sort=days|revenue
// Ambos órdenes salen de la misma lista: no se recalcula nada.
func (h *RunHandler) ListStockoutRisks(c *fiber.Ctx) error {
	r, err := h.latest.Latest()
	if err != nil {
		return respondError(c, err)
	}
	rows := append([]dto.StockoutRiskDTO(nil), r.StockoutRisks...)
	switch strings.ToLower(c.Query("sort", "days")) {
	case "days":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].DaysRank < rows[j].DaysRank })
	case "revenue":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].RevenueRank < rows[j].RevenueRank })
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "sort debe ser 'days' o 'revenue'",
		})
	}
	if rows == nil {
		rows = []dto.StockoutRiskDTO{}
	}
	return c.JSON(rows)
}

// ListDeadInventory GET /api/dead-inventory
func (h *RunHandler) ListDeadInventory(c *fiber.Ctx) error {
	return h.section(c, func(r *dto.RunReportDTO) any { return r.DeadInventory })
}

// ListDuplicates GET /api/duplicates
func (h *RunHandler) ListDuplicates(c *fiber.Ctx) error {
	return h.section(c, func(r *dto.RunReportDTO) any { return r.Duplicates })
}

// GetQuality GET /api/quality
func (h *RunHandler) GetQuality(c *fiber.Ctx) error {
	return h.section(c, func(r *dto.RunReportDTO) any { return r.Quality })
}

// ListGaps GET /api/reconciliation-gaps
func (h *RunHandler) ListGaps(c *fiber.Ctx) error {
	return h.section(c, func(r *dto.RunReportDTO) any { return r.Gaps })
}

// GetChannels GET /api/channels
func (h *RunHandler) GetChannels(c *fiber.Ctx) error {
	return h.section(c, func(r *dto.RunReportDTO) any { return r.Channels })
}

// GetKeyMetrics GET /api/key-metrics
func (h *RunHandler) GetKeyMetrics(c *fiber.Ctx) error {
	return h.section(c, func(r *dto.RunReportDTO) any { return r.KeyMetrics })
}

func (h *RunHandler) section(c *fiber.Ctx, pick func(*dto.RunReportDTO) any) error {
	r, err := h.latest.Latest()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pick(r))
}

// respondError traduce errores de dominio a códigos HTTP.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoRunAvailable):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NO_RUN", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_RUN", Message: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RUN_ABORTED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "RUN_FAILED", Message: err.Error()})
	}
}
