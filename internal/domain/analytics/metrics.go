package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// KeyMetrics indicadores de cabecera del reporte de la corrida.
type KeyMetrics struct {
	Products               int
	InventoryValue         decimal.Decimal
	POSTransactions        int
	POSRevenue             decimal.Decimal
	EcommerceOrders        int
	EcommerceRevenue       decimal.Decimal
	StockoutRiskCount      int
	CriticalCount          int
	DeadInventoryValue     decimal.Decimal
	BelowReorderLevel      int
	ManualOverrides        int
	POSReturnRate          decimal.Decimal // % de transacciones POS que son devoluciones, sobre las ventas
	ReconciliationGapCount int
}

// ComputeKeyMetrics resume el análisis y las transacciones aceptadas.
// ecommerceOrders incluye pedidos que no cuentan como venta (cancelados, reembolsados).
func ComputeKeyMetrics(res Result, txs []entity.TransactionRecord, ecommerceOrders, gaps int) KeyMetrics {
	m := KeyMetrics{
		Products:               len(res.Products),
		InventoryValue:         decimal.Zero,
		POSRevenue:             decimal.Zero,
		EcommerceOrders:        ecommerceOrders,
		EcommerceRevenue:       decimal.Zero,
		StockoutRiskCount:      len(res.StockoutRisks),
		CriticalCount:          res.Summary.CriticalCount,
		DeadInventoryValue:     res.Summary.DeadValue,
		POSReturnRate:          decimal.Zero,
		ReconciliationGapCount: gaps,
	}
	for _, row := range res.Products {
		p := row.View.CanonicalProduct
		m.InventoryValue = m.InventoryValue.Add(p.InventoryValue())
		if p.BelowReorderLevel() {
			m.BelowReorderLevel++
		}
		if p.ManualOverride {
			m.ManualOverrides++
		}
	}

	var posSales, posReturns int
	for _, t := range txs {
		switch t.Source {
		case entity.SourcePOS:
			m.POSTransactions++
			if t.Quantity.IsPositive() {
				posSales++
				m.POSRevenue = m.POSRevenue.Add(t.LineTotal())
			} else if t.IsReturn() {
				posReturns++
			}
		case entity.SourceEcommerce:
			if t.Quantity.IsPositive() {
				m.EcommerceRevenue = m.EcommerceRevenue.Add(t.LineTotal())
			}
		}
	}
	if posSales > 0 {
		m.POSReturnRate = decimal.NewFromInt(int64(posReturns)).
			Div(decimal.NewFromInt(int64(posSales))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return m
}
