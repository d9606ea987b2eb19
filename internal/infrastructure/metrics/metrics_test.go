package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/infrastructure/metrics"
)

func TestRecord_CorridaExitosa(t *testing.T) {
	m := metrics.NewRegistry()
	m.Record(&dto.RunReportDTO{
		Products:      make([]dto.UnifiedProductDTO, 3),
		StockoutRisks: []dto.StockoutRiskDTO{{RiskTier: "critical"}, {RiskTier: "critical"}, {RiskTier: "high"}},
		DeadInventory: make([]dto.DeadInventoryDTO, 1),
		Gaps:          make([]dto.ReconciliationGapDTO, 2),
		Quality: []dto.QualityReportDTO{{
			Source: "pos", AcceptedRecords: 9, QuarantinedRecords: 1,
			Violations: []dto.ViolationCountDTO{{Type: "out_of_bounds", Count: 1}},
		}},
		KeyMetrics:     dto.KeyMetricsDTO{DeadInventoryValue: decimal.NewFromInt(1200)},
		Reconciliation: dto.ReconciliationStatsDTO{MatchRate: 87.5},
	}, 2*time.Second, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Products))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StockoutRisks.WithLabelValues("critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StockoutRisks.WithLabelValues("high")))
	assert.Equal(t, 1200.0, testutil.ToFloat64(m.DeadValue))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Gaps))
	assert.Equal(t, 87.5, testutil.ToFloat64(m.MatchRate))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.Records.WithLabelValues("pos", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Violations.WithLabelValues("pos", "out_of_bounds")))
}

func TestRecord_CorridaFallida(t *testing.T) {
	m := metrics.NewRegistry()
	m.Record(nil, time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Products))
}
