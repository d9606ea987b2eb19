package entity

import "github.com/shopspring/decimal"

// RiskTier nivel de riesgo de quiebre de stock.
type RiskTier string

const (
	RiskCritical RiskTier = "critical"
	RiskHigh     RiskTier = "high"
	RiskNone     RiskTier = "none"
)

// Rank orden de severidad (menor = más urgente).
func (t RiskTier) Rank() int {
	switch t {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	default:
		return 2
	}
}

// StockoutAssessment métricas derivadas por producto. Se recalcula en cada corrida.
// DaysOfStock inválido (Valid=false) significa ilimitado: sin ventas no se divide.
type StockoutAssessment struct {
	IdentityKey       string
	AverageDailySales decimal.Decimal
	DaysOfStock       decimal.NullDecimal
	Tier              RiskTier
	RevenueAtRisk     decimal.Decimal // venta diaria promedio * precio
}

// DeadInventoryFlag clasificación de inventario muerto.
type DeadInventoryFlag struct {
	IdentityKey            string
	Dead                   bool
	DaysSinceFirstSeen     int  // desde la primera aparición hasta la fecha de referencia
	FirstSeenFromInventory bool // false = se asumió el inicio del período observado
	Value                  decimal.Decimal
}
