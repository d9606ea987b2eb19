package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnifiedProductView producto canónico unido a su historial de transacciones.
// Un producto sin transacciones también tiene vista (ventas en cero): así se
// detecta el inventario muerto.
type UnifiedProductView struct {
	CanonicalProduct

	UnitsSoldInWindow   decimal.Decimal
	ReturnUnitsInWindow decimal.Decimal
	RevenueInWindow     decimal.Decimal
	TransactionCount    int // transacciones aceptadas, toda la historia
	FirstSaleDate       *time.Time
	LastSaleDate        *time.Time
	DaysSinceLastSale   *int // medido desde la fecha de referencia, nunca desde el reloj
	ChannelMix          map[Channel]decimal.Decimal
	Systems             []SourceSystem // sistemas que aportaron datos
}

// HasSales indica si hubo unidades vendidas dentro de la ventana.
func (v UnifiedProductView) HasSales() bool {
	return v.UnitsSoldInWindow.IsPositive()
}

// ReconciliationGap transacciones cuya IdentityKey no coincide con ningún
// producto canónico. Se reporta; no detiene la corrida.
type ReconciliationGap struct {
	IdentityKey  string
	SampleName   string
	Systems      []SourceSystem
	Transactions int
	Units        decimal.Decimal
	Revenue      decimal.Decimal
	FirstDate    time.Time
	LastDate     time.Time
}
