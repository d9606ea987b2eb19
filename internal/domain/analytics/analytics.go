// Package analytics clasifica cada producto unificado en riesgo de quiebre de
// stock o inventario muerto, y calcula las métricas de canal y resumen.
package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/domain/normalize"
	"github.com/jhoicas/Inventario-recon/internal/domain/reconcile"
)

// Thresholds umbrales de clasificación. Dependen de la velocidad real del catálogo.
type Thresholds struct {
	LookbackDays    int
	Critical        decimal.Decimal // días de stock <= Critical → critical
	High            decimal.Decimal // días de stock <= High → high
	DeadMinAgeDays  int             // 0 = todo el período observado
	DeadMinQuantity decimal.Decimal // stock mínimo para considerarlo inmovilizado
}

// DefaultThresholds 90 días de ventana, 3/7 días de corte.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LookbackDays:    90,
		Critical:        decimal.NewFromInt(3),
		High:            decimal.NewFromInt(7),
		DeadMinAgeDays:  0,
		DeadMinQuantity: decimal.NewFromInt(1),
	}
}

// Validate rechaza umbrales incoherentes antes de procesar registros.
func (t Thresholds) Validate() error {
	switch {
	case t.LookbackDays <= 0:
		return fmt.Errorf("%w: la ventana debe ser positiva (%d)", domain.ErrInvalidConfig, t.LookbackDays)
	case t.Critical.IsNegative() || t.High.IsNegative():
		return fmt.Errorf("%w: los umbrales de días no pueden ser negativos", domain.ErrInvalidConfig)
	case t.Critical.GreaterThan(t.High):
		return fmt.Errorf("%w: critical (%s) mayor que high (%s)", domain.ErrInvalidConfig, t.Critical, t.High)
	case t.DeadMinAgeDays < 0:
		return fmt.Errorf("%w: la edad mínima de inventario muerto no puede ser negativa", domain.ErrInvalidConfig)
	case t.DeadMinQuantity.IsNegative():
		return fmt.Errorf("%w: la cantidad mínima de inventario muerto no puede ser negativa", domain.ErrInvalidConfig)
	}
	return nil
}

// ProductAnalysis fila de salida: la vista unificada con sus dos clasificaciones.
type ProductAnalysis struct {
	View     entity.UnifiedProductView
	Stockout entity.StockoutAssessment
	Dead     entity.DeadInventoryFlag
}

// Summary conteos por clasificación.
type Summary struct {
	Products           int
	CriticalCount      int
	HighCount          int
	DeadCount          int
	DeadValue          decimal.Decimal
	RevenueAtRiskTotal decimal.Decimal
}

// Result salida del motor de analítica. Las listas comparten filas con Products.
type Result struct {
	Products      []ProductAnalysis
	StockoutRisks []ProductAnalysis // critical y high, ordenadas por días de stock
	DeadInventory []ProductAnalysis // ordenadas por valor inmovilizado
	Summary       Summary
}

// Assess calcula velocidad, días de stock, nivel de riesgo y venta en riesgo.
func Assess(v entity.UnifiedProductView, th Thresholds) entity.StockoutAssessment {
	a := entity.StockoutAssessment{
		IdentityKey:       v.IdentityKey,
		AverageDailySales: decimal.Zero,
		Tier:              entity.RiskNone,
		RevenueAtRisk:     decimal.Zero,
	}
	if th.LookbackDays <= 0 || !v.UnitsSoldInWindow.IsPositive() {
		return a
	}

	a.AverageDailySales = v.UnitsSoldInWindow.Div(decimal.NewFromInt(int64(th.LookbackDays)))
	a.RevenueAtRisk = a.AverageDailySales.Mul(v.RetailPrice)

	days := v.QuantityOnHand.Div(a.AverageDailySales)
	if days.IsNegative() {
		days = decimal.Zero
	}
	a.DaysOfStock = decimal.NullDecimal{Decimal: days, Valid: true}
	a.Tier = Tier(days, th)
	return a
}

// Tier clasificación total y ordenada: primero critical, luego high.
func Tier(daysOfStock decimal.Decimal, th Thresholds) entity.RiskTier {
	switch {
	case daysOfStock.LessThanOrEqual(th.Critical):
		return entity.RiskCritical
	case daysOfStock.LessThanOrEqual(th.High):
		return entity.RiskHigh
	default:
		return entity.RiskNone
	}
}

// ClassifyDead marca inventario muerto: sin ventas en la ventana, con stock y
// con antigüedad suficiente. Si el inventario no trae fecha de primera aparición
// se asume el inicio del período observado.
func ClassifyDead(v entity.UnifiedProductView, rec reconcile.Result, th Thresholds) entity.DeadInventoryFlag {
	f := entity.DeadInventoryFlag{
		IdentityKey: v.IdentityKey,
		Value:       decimal.Zero,
	}

	firstSeen := v.FirstSeen
	f.FirstSeenFromInventory = !firstSeen.IsZero()
	if firstSeen.IsZero() {
		firstSeen = rec.ObservedStart
	}
	if rec.HasReference && !firstSeen.IsZero() {
		f.DaysSinceFirstSeen = normalize.DaysBetween(firstSeen, rec.ReferenceDate)
	}

	if v.UnitsSoldInWindow.IsPositive() || !rec.HasReference {
		return f
	}
	if v.QuantityOnHand.LessThan(th.DeadMinQuantity) || !v.QuantityOnHand.IsPositive() {
		return f
	}

	minAge := th.DeadMinAgeDays
	if minAge == 0 {
		minAge = normalize.DaysBetween(rec.ObservedStart, rec.ReferenceDate)
	}
	if f.DaysSinceFirstSeen < minAge {
		return f
	}

	f.Dead = true
	f.Value = v.InventoryValue()
	return f
}

// Analyze clasifica todas las vistas. Dead y stockout son excluyentes: un
// producto sin ventas no tiene días de stock finitos y nunca entra en un nivel de riesgo.
func Analyze(rec reconcile.Result, th Thresholds) Result {
	res := Result{
		Products:      make([]ProductAnalysis, 0, len(rec.Views)),
		StockoutRisks: []ProductAnalysis{},
		DeadInventory: []ProductAnalysis{},
		Summary: Summary{
			DeadValue:          decimal.Zero,
			RevenueAtRiskTotal: decimal.Zero,
		},
	}

	for _, v := range rec.Views {
		row := ProductAnalysis{
			View:     v,
			Stockout: Assess(v, th),
			Dead:     ClassifyDead(v, rec, th),
		}
		res.Products = append(res.Products, row)

		switch row.Stockout.Tier {
		case entity.RiskCritical:
			res.Summary.CriticalCount++
		case entity.RiskHigh:
			res.Summary.HighCount++
		}
		if row.Stockout.Tier != entity.RiskNone {
			res.StockoutRisks = append(res.StockoutRisks, row)
			res.Summary.RevenueAtRiskTotal = res.Summary.RevenueAtRiskTotal.Add(row.Stockout.RevenueAtRisk)
		}
		if row.Dead.Dead {
			res.DeadInventory = append(res.DeadInventory, row)
			res.Summary.DeadCount++
			res.Summary.DeadValue = res.Summary.DeadValue.Add(row.Dead.Value)
		}
	}
	res.Summary.Products = len(res.Products)

	res.StockoutRisks = SortByDaysOfStock(res.StockoutRisks)
	sort.SliceStable(res.DeadInventory, func(i, j int) bool {
		a, b := res.DeadInventory[i].Dead, res.DeadInventory[j].Dead
		if !a.Value.Equal(b.Value) {
			return a.Value.GreaterThan(b.Value)
		}
		return a.IdentityKey < b.IdentityKey
	})
	return res
}

// SortByDaysOfStock copia ordenada: menos días primero, desempate por venta en riesgo.
// Días ilimitados van al final.
func SortByDaysOfStock(rows []ProductAnalysis) []ProductAnalysis {
	out := append([]ProductAnalysis(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Stockout, out[j].Stockout
		if a.DaysOfStock.Valid != b.DaysOfStock.Valid {
			return a.DaysOfStock.Valid
		}
		if a.DaysOfStock.Valid && !a.DaysOfStock.Decimal.Equal(b.DaysOfStock.Decimal) {
			return a.DaysOfStock.Decimal.LessThan(b.DaysOfStock.Decimal)
		}
		if !a.RevenueAtRisk.Equal(b.RevenueAtRisk) {
			return a.RevenueAtRisk.GreaterThan(b.RevenueAtRisk)
		}
		return a.IdentityKey < b.IdentityKey
	})
	return out
}

// SortByRevenueAtRisk copia ordenada: mayor venta diaria en riesgo primero.
func SortByRevenueAtRisk(rows []ProductAnalysis) []ProductAnalysis {
	out := append([]ProductAnalysis(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Stockout, out[j].Stockout
		if !a.RevenueAtRisk.Equal(b.RevenueAtRisk) {
			return a.RevenueAtRisk.GreaterThan(b.RevenueAtRisk)
		}
		return a.IdentityKey < b.IdentityKey
	})
	return out
}
