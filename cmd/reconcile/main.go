package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/application/pipeline"
	"github.com/jhoicas/Inventario-recon/internal/application/ports"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/infrastructure/extract"
	"github.com/jhoicas/Inventario-recon/internal/infrastructure/metrics"
	"github.com/jhoicas/Inventario-recon/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-recon/internal/infrastructure/report"
	httpRouter "github.com/jhoicas/Inventario-recon/internal/interfaces/http"
	"github.com/jhoicas/Inventario-recon/pkg/config"
	"github.com/jhoicas/Inventario-recon/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(2)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando conciliación")

	settings, err := pipeline.SettingsFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de análisis")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources := []ports.ExtractSource{
		extract.NewFileSource(entity.SourcePOS, cfg.Sources.POSPath, cfg.Sources.Encoding),
		extract.NewFileSource(entity.SourceEcommerce, cfg.Sources.EcommercePath, cfg.Sources.Encoding),
	}
	if cfg.Sources.InventoryDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Sources.InventoryDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		sources = append(sources, postgres.NewInventorySource(pool, cfg.Sources.InventoryQuery).
			WithSnapshot(postgres.NewTxRunner(pool)))
	} else {
		sources = append(sources, extract.NewFileSource(entity.SourceInventory, cfg.Sources.InventoryPath, cfg.Sources.Encoding))
	}

	writers := []ports.ReportWriter{
		report.NewJSONWriter(cfg.Output.Dir),
		report.NewCSVWriter(cfg.Output.Dir),
	}
	if cfg.Output.SQLite {
		writers = append(writers, report.NewSQLiteWriter(cfg.Output.Dir))
	}

	promRegistry := metrics.NewRegistry()
	latest := pipeline.NewLatestRun()
	runUC := pipeline.NewRunUseCase(settings, sources, writers,
		[]ports.RunRecorder{promRegistry, latest}, log)

	res, err := runUC.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("corrida fallida")
		if !cfg.HTTP.Enabled {
			os.Exit(1)
		}
	} else {
		printSummary(os.Stdout, res, cfg.Output.Dir)
	}

	if !cfg.HTTP.Enabled {
		return
	}

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		Runner:  runUC,
		Latest:  latest,
		Metrics: promRegistry.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// printSummary resumen legible de la corrida para la terminal.
func printSummary(w io.Writer, r *dto.RunReportDTO, dir string) {
	m := r.KeyMetrics
	fmt.Fprintf(w, "Corrida %s (fecha de referencia %s, ventana desde %s)\n", r.RunID, r.ReferenceDate, r.WindowStart)
	fmt.Fprintf(w, "  Productos unificados:      %d (%d duplicados consolidados)\n", len(r.Products), len(r.Duplicates))
	fmt.Fprintf(w, "  Valor de inventario:       %s\n", m.InventoryValue.StringFixed(2))
	fmt.Fprintf(w, "  Riesgo de quiebre:         %d (%d críticos)\n", m.StockoutRiskCount, m.CriticalCount)
	fmt.Fprintf(w, "  Inventario muerto:         %d por %s\n", len(r.DeadInventory), m.DeadInventoryValue.StringFixed(2))
	fmt.Fprintf(w, "  Brechas de conciliación:   %d\n", len(r.Gaps))
	fmt.Fprintf(w, "  Registros en cuarentena:   %d\n", len(r.Quarantined))
	fmt.Fprintf(w, "Artefactos en %s\n", dir)
}
