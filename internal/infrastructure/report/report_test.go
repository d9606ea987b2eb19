package report_test

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/infrastructure/report"
)

func sampleReport() *dto.RunReportDTO {
	last := "2024-12-10"
	days := 4
	return &dto.RunReportDTO{
		RunID:         "3f1c2a8e-0000-4000-8000-000000000001",
		GeneratedAt:   "2026-01-01T00:00:00Z",
		ReferenceDate: "2024-12-14",
		LookbackDays:  90,
		Thresholds: dto.ThresholdsDTO{
			CriticalDays: decimal.NewFromInt(3),
			HighDays:     decimal.NewFromInt(7),
		},
		Products: []dto.UnifiedProductDTO{{
			IdentityKey:       "large lamp",
			DisplayName:       "Large Lamp",
			SourceCodes:       []string{"LAMP-001", "SKU-LAMP-002"},
			QuantityOnHand:    decimal.NewFromInt(25),
			RetailPrice:       decimal.NewFromInt(45),
			LastSaleDate:      &last,
			DaysSinceLastSale: &days,
			ChannelMix:        map[string]decimal.Decimal{"in_store": decimal.NewFromInt(2)},
			Systems:           []string{"inventory", "pos"},
			RiskTier:          "none",
		}},
		StockoutRisks: []dto.StockoutRiskDTO{},
		DeadInventory: []dto.DeadInventoryDTO{},
		Duplicates: []dto.DuplicateGroupDTO{{
			IdentityKey: "large lamp",
			SourceCodes: []string{"LAMP-001", "SKU-LAMP-002"},
			RecordCount: 2,
		}},
		Quality: []dto.QualityReportDTO{{
			Source:       "pos",
			TotalRecords: 4,
			Violations:   []dto.ViolationCountDTO{{Type: "date_before_minimum", Count: 1, Percentage: 25}},
		}},
		Quarantined: []dto.QuarantinedRecordDTO{},
		Gaps:        []dto.ReconciliationGapDTO{},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestJSONWriter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, report.NewJSONWriter(dir).Write(context.Background(), sampleReport()))

	raw, err := os.ReadFile(filepath.Join(dir, report.JSONFileName))
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "2024-12-14", back["reference_date"])
	assert.Equal(t, []any{}, back["stockout_risks"], "listas vacías como [] y no null")
}

func TestCSVWriter_UnArchivoPorTabla(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, report.NewCSVWriter(dir).Write(context.Background(), sampleReport()))

	for _, name := range []string{"unified_products", "stockout_risks", "dead_inventory", "duplicates", "quality", "quarantined", "reconciliation_gaps"} {
		assert.FileExists(t, filepath.Join(dir, name+".csv"))
	}

	products := readCSV(t, filepath.Join(dir, "unified_products.csv"))
	require.Len(t, products, 2)
	header := products[0]
	row := products[1]
	idx := func(col string) int {
		for i, h := range header {
			if h == col {
				return i
			}
		}
		t.Fatalf("columna %q ausente", col)
		return -1
	}
	assert.Equal(t, "large lamp", row[idx("identity_key")])
	assert.Equal(t, "LAMP-001|SKU-LAMP-002", row[idx("source_codes")])
	assert.Equal(t, "4", row[idx("days_since_last_sale")])
	assert.Equal(t, "", row[idx("days_of_stock")], "días ilimitados quedan vacíos")

	stockout := readCSV(t, filepath.Join(dir, "stockout_risks.csv"))
	assert.Len(t, stockout, 1, "solo encabezado")

	quality := readCSV(t, filepath.Join(dir, "quality.csv"))
	require.Len(t, quality, 2)
	assert.Equal(t, []string{"pos", "4", "0", "0", "date_before_minimum", "1", "25.00", "0"}, quality[1])
}

func TestCSVWriter_FechasLimpiadasSinCuarentena(t *testing.T) {
	r := sampleReport()
	r.Quality = []dto.QualityReportDTO{{
		Source:          "inventory",
		TotalRecords:    2,
		AcceptedRecords: 2,
		Violations:      []dto.ViolationCountDTO{},
		ClearedValues:   1,
		Cleared:         []dto.ViolationCountDTO{{Type: "date_before_minimum", Count: 1, Percentage: 50}},
	}}
	dir := t.TempDir()
	require.NoError(t, report.NewCSVWriter(dir).Write(context.Background(), r))

	quality := readCSV(t, filepath.Join(dir, "quality.csv"))
	require.Len(t, quality, 2)
	assert.Equal(t, []string{"inventory", "2", "2", "0", "date_before_minimum", "0", "0.00", "1"}, quality[1])
}

func TestSQLiteWriter(t *testing.T) {
	dir := t.TempDir()
	w := report.NewSQLiteWriter(dir)
	require.NoError(t, w.Write(context.Background(), sampleReport()))
	// Segunda corrida sobre el mismo directorio: el archivo se recrea.
	require.NoError(t, w.Write(context.Background(), sampleReport()))

	db, err := sql.Open("sqlite", filepath.Join(dir, report.SQLiteFileName))
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM unified_products`).Scan(&n))
	assert.Equal(t, 1, n)

	var qty float64
	var dos sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT quantity_on_hand, days_of_stock FROM unified_products`).Scan(&qty, &dos))
	assert.Equal(t, 25.0, qty)
	assert.False(t, dos.Valid)

	var runID string
	require.NoError(t, db.QueryRow(`SELECT run_id FROM run`).Scan(&runID))
	assert.Equal(t, "3f1c2a8e-0000-4000-8000-000000000001", runID)
}
