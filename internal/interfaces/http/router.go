package http

import (
	"errors"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Runner  Runner // nil = POST /api/runs deshabilitado
	Latest  LatestProvider
	Metrics nethttp.Handler // nil = sin /metrics
}

// NewApp crea la aplicación Fiber con recover y el manejador de errores JSON.
func NewApp(name string, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // POST /api/runs ejecuta una corrida completa
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas son de solo lectura salvo POST /api/runs.
func Router(app *fiber.App, deps RouterDeps) {
	h := NewRunHandler(deps.Runner, deps.Latest)

	app.Get("/health", h.Health)
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	runs := api.Group("/runs")
	runs.Get("/latest", h.GetLatest)
	runs.Post("/", h.CreateRun)

	api.Get("/products", h.ListProducts)
	api.Get("/stockout-risks", h.ListStockoutRisks)
	api.Get("/dead-inventory", h.ListDeadInventory)
	api.Get("/duplicates", h.ListDuplicates)
	api.Get("/quality", h.GetQuality)
	api.Get("/reconciliation-gaps", h.ListGaps)
	api.Get("/channels", h.GetChannels)
	api.Get("/key-metrics", h.GetKeyMetrics)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(dto.ErrorResponse{Code: nethttp.StatusText(code), Message: err.Error()})
}
