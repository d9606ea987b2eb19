// Package pipeline orquesta una corrida: filtro de calidad, deduplicación,
// conciliación y analítica, cada etapa sobre la salida inmutable de la anterior.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/application/ports"
	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/analytics"
	"github.com/jhoicas/Inventario-recon/internal/domain/dedup"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/domain/quality"
	"github.com/jhoicas/Inventario-recon/internal/domain/reconcile"
	"github.com/jhoicas/Inventario-recon/pkg/logger"
)

// ErrNoSources Run sin ninguna fuente configurada.
var ErrNoSources = fmt.Errorf("%w: no hay fuentes configuradas", domain.ErrInvalidInput)

// RunInput registros crudos de los tres sistemas. Execute no los modifica.
type RunInput struct {
	Inventory []entity.RawRecord
	POS       []entity.RawRecord
	Ecommerce []entity.RawRecord
}

// RunUseCase ejecuta corridas completas. Una corrida a la vez: cada una
// reconstruye todo desde cero y no comparte estado con la anterior.
type RunUseCase struct {
	settings  Settings
	sources   []ports.ExtractSource
	writers   []ports.ReportWriter
	recorders []ports.RunRecorder
	log       *logger.Logger

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewRunUseCase construye el caso de uso. sources puede estar vacío si solo se usa Execute.
func NewRunUseCase(
	settings Settings,
	sources []ports.ExtractSource,
	writers []ports.ReportWriter,
	recorders []ports.RunRecorder,
	log *logger.Logger,
) *RunUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RunUseCase{
		settings:  settings,
		sources:   sources,
		writers:   writers,
		recorders: recorders,
		log:       log.Component("pipeline"),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Run extrae los tres sistemas, ejecuta la corrida, escribe los artefactos y notifica a los recorders.
func (uc *RunUseCase) Run(ctx context.Context) (*dto.RunReportDTO, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	start := uc.now()
	report, err := uc.run(ctx)
	elapsed := uc.now().Sub(start)
	for _, r := range uc.recorders {
		r.Record(report, elapsed, err)
	}
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("run_id", report.RunID).
		Dur("elapsed", elapsed).
		Msg("corrida terminada")
	return report, nil
}

func (uc *RunUseCase) run(ctx context.Context) (*dto.RunReportDTO, error) {
	if len(uc.sources) == 0 {
		return nil, ErrNoSources
	}
	in, err := uc.extract(ctx)
	if err != nil {
		return nil, err
	}
	report, err := uc.Execute(ctx, in)
	if err != nil {
		return nil, err
	}
	for _, w := range uc.writers {
		if err := w.Write(ctx, report); err != nil {
			return nil, fmt.Errorf("pipeline: escribir artefactos: %w", err)
		}
	}
	return report, nil
}

// extract lee las fuentes en paralelo. Un sistema sin fuente configurada aporta cero registros.
func (uc *RunUseCase) extract(ctx context.Context) (RunInput, error) {
	type extractResult struct {
		system  entity.SourceSystem
		records []entity.RawRecord
		err     error
	}

	ch := make(chan extractResult, len(uc.sources))
	for _, src := range uc.sources {
		go func(src ports.ExtractSource) {
			recs, err := src.Extract(ctx)
			ch <- extractResult{src.System(), recs, err}
		}(src)
	}

	var in RunInput
	var errs []error
	for range uc.sources {
		r := <-ch
		if r.err != nil {
			errs = append(errs, fmt.Errorf("extraer %s: %w", r.system, r.err))
			continue
		}
		uc.log.Debug().Str("source", string(r.system)).Int("records", len(r.records)).Msg("extracto leído")
		switch r.system {
		case entity.SourceInventory:
			in.Inventory = append(in.Inventory, r.records...)
		case entity.SourcePOS:
			in.POS = append(in.POS, r.records...)
		case entity.SourceEcommerce:
			in.Ecommerce = append(in.Ecommerce, r.records...)
		}
	}
	if len(errs) > 0 {
		return RunInput{}, fmt.Errorf("pipeline: %w", errors.Join(errs...))
	}
	return in, nil
}

// Execute corre las cuatro etapas sobre registros ya extraídos.
// Solo devuelve error por configuración inválida o contexto cancelado; los
// problemas de cada registro terminan en cuarentena.
func (uc *RunUseCase) Execute(ctx context.Context, in RunInput) (*dto.RunReportDTO, error) {
	s := uc.settings
	if err := s.Validate(); err != nil {
		return nil, err
	}
	runID := uc.newID()
	log := uc.log.WithRun(runID)

	// ── Filtro de calidad: una goroutine por fuente ──────────────────────────
	type filtered struct {
		system entity.SourceSystem
		res    quality.Result
	}
	ch := make(chan filtered, 3)
	sources := []struct {
		system  entity.SourceSystem
		records []entity.RawRecord
	}{
		{entity.SourceInventory, in.Inventory},
		{entity.SourcePOS, in.POS},
		{entity.SourceEcommerce, in.Ecommerce},
	}
	for _, src := range sources {
		go func(system entity.SourceSystem, records []entity.RawRecord) {
			res := quality.Filter(system, records, s.Rules(system))
			quarantineEmptyKey(&res, s.identity)
			ch <- filtered{system, res}
		}(src.system, src.records)
	}
	results := make(map[entity.SourceSystem]quality.Result, 3)
	for range sources {
		f := <-ch
		results[f.system] = f.res
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	var reports []entity.QualityReport
	var quarantined []entity.QuarantinedRecord
	for _, src := range sources {
		r := results[src.system]
		reports = append(reports, r.Report)
		quarantined = append(quarantined, r.Quarantined...)
		log.Info().
			Str("source", string(src.system)).
			Int("total", r.Report.TotalRecords).
			Int("accepted", r.Report.AcceptedRecords).
			Int("quarantined", r.Report.QuarantinedRecords).
			Int("cleared", r.Report.ClearedValues).
			Msg("filtro de calidad")
	}

	// ── Mapeo a registros tipados ────────────────────────────────────────────
	inventory := toInventoryRecords(results[entity.SourceInventory].Accepted, s.identity)
	txs := posTransactions(results[entity.SourcePOS].Accepted, s.identity)
	online, orders := ecommerceTransactions(results[entity.SourceEcommerce].Accepted, s.identity)
	txs = append(txs, online...)

	// ── Deduplicación, conciliación, analítica ───────────────────────────────
	products, duplicates := dedup.Deduplicate(inventory, s.Policy)
	rec := reconcile.Reconcile(products, txs, s.Thresholds.LookbackDays)
	if !rec.HasReference {
		log.Warn().Msg("sin transacciones aceptadas: no hay fecha de referencia")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	an := analytics.Analyze(rec, s.Thresholds)
	channels := analytics.CompareChannels(txs, orders.refunded)
	metrics := analytics.ComputeKeyMetrics(an, txs, orders.orders, len(rec.Gaps))

	log.Info().
		Time("reference_date", rec.ReferenceDate).
		Int("products", len(products)).
		Int("duplicates", len(duplicates)).
		Int("gaps", len(rec.Gaps)).
		Int("stockout_risks", len(an.StockoutRisks)).
		Int("dead_inventory", len(an.DeadInventory)).
		Float64("match_rate", rec.Stats.MatchRate).
		Msg("análisis completo")

	return buildReport(reportInput{
		runID:       runID,
		generatedAt: uc.now(),
		settings:    s,
		ingest: dto.IngestStatsDTO{
			InventoryRecords: len(in.Inventory),
			POSRecords:       len(in.POS),
			EcommerceOrders:  len(in.Ecommerce),
			NonSaleOrders:    orders.nonSale,
			RefundedOrders:   orders.refunded,
			Transactions:     len(txs),
		},
		reconciled:  rec,
		analysis:    an,
		duplicates:  duplicates,
		quality:     reports,
		quarantined: quarantined,
		channels:    channels,
		metrics:     metrics,
	}), nil
}
