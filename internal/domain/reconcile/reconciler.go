// Package reconcile une los productos canónicos con las transacciones de POS y
// e-commerce usando la Identity Key como única clave de cruce.
//
// La fecha de referencia ("hoy" del análisis) es siempre la máxima fecha de
// transacción aceptada. Este paquete nunca lee el reloj del sistema: analizar
// datos históricos contra time.Now() produce recencias arbitrariamente erróneas.
package reconcile

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/domain/normalize"
)

// Stats conteos de cruce de la corrida.
type Stats struct {
	Products              int
	ProductsWithSales     int // con unidades vendidas dentro de la ventana
	InventoryOnly         int // sin ninguna transacción aceptada
	Transactions          int
	MatchedTransactions   int
	UnmatchedTransactions int
	MatchRate             float64 // % de transacciones con producto canónico
}

// Result vista unificada más los huecos de conciliación.
type Result struct {
	ReferenceDate time.Time // zero si no hubo transacciones aceptadas
	HasReference  bool
	WindowStart   time.Time
	ObservedStart time.Time // primera fecha de transacción aceptada
	LookbackDays  int
	Views         []entity.UnifiedProductView
	Gaps          []entity.ReconciliationGap
	Stats         Stats
}

// ReferenceDate máxima fecha presente en las transacciones aceptadas.
func ReferenceDate(txs []entity.TransactionRecord) (time.Time, bool) {
	var ref time.Time
	for _, t := range txs {
		if t.Date.After(ref) {
			ref = t.Date
		}
	}
	return ref, !ref.IsZero()
}

// ObservedStart mínima fecha presente en las transacciones aceptadas.
func ObservedStart(txs []entity.TransactionRecord) (time.Time, bool) {
	var start time.Time
	for _, t := range txs {
		if start.IsZero() || t.Date.Before(start) {
			start = t.Date
		}
	}
	return start, !start.IsZero()
}

// WindowStart primer día de una ventana de lookbackDays días de calendario que termina en ref (inclusive).
func WindowStart(ref time.Time, lookbackDays int) time.Time {
	return normalize.DateOnly(ref).AddDate(0, 0, -(lookbackDays - 1))
}

// Reconcile une productos y transacciones por IdentityKey.
// Los productos sin transacciones conservan ventas en cero; las transacciones sin
// producto se agrupan como huecos de conciliación. Ninguno de los dos casos es error.
func Reconcile(products []entity.CanonicalProduct, txs []entity.TransactionRecord, lookbackDays int) Result {
	res := Result{
		LookbackDays: lookbackDays,
		Views:        make([]entity.UnifiedProductView, 0, len(products)),
		Gaps:         []entity.ReconciliationGap{},
	}
	res.ReferenceDate, res.HasReference = ReferenceDate(txs)
	res.ObservedStart, _ = ObservedStart(txs)
	if res.HasReference {
		res.WindowStart = WindowStart(res.ReferenceDate, lookbackDays)
	}

	byKey := make(map[string][]entity.TransactionRecord, len(products))
	for _, t := range txs {
		byKey[t.IdentityKey] = append(byKey[t.IdentityKey], t)
	}

	known := make(map[string]bool, len(products))
	for _, p := range products {
		known[p.IdentityKey] = true
		view := res.aggregate(p, byKey[p.IdentityKey])
		if view.TransactionCount == 0 {
			res.Stats.InventoryOnly++
		}
		if view.HasSales() {
			res.Stats.ProductsWithSales++
		}
		res.Stats.MatchedTransactions += view.TransactionCount
		res.Views = append(res.Views, view)
	}

	for key, group := range byKey {
		if known[key] {
			continue
		}
		res.Gaps = append(res.Gaps, buildGap(key, group))
		res.Stats.UnmatchedTransactions += len(group)
	}
	sort.SliceStable(res.Gaps, func(i, j int) bool {
		a, b := res.Gaps[i], res.Gaps[j]
		if a.Transactions != b.Transactions {
			return a.Transactions > b.Transactions
		}
		return a.IdentityKey < b.IdentityKey
	})

	res.Stats.Products = len(products)
	res.Stats.Transactions = len(txs)
	if len(txs) > 0 {
		rate := float64(res.Stats.MatchedTransactions) / float64(len(txs)) * 100
		res.Stats.MatchRate = math.Round(rate*100) / 100
	}
	return res
}

// InWindow indica si la fecha cae dentro de la ventana de análisis.
func (r Result) InWindow(d time.Time) bool {
	if !r.HasReference {
		return false
	}
	return !d.Before(r.WindowStart) && !d.After(r.ReferenceDate)
}

func (r Result) aggregate(p entity.CanonicalProduct, txs []entity.TransactionRecord) entity.UnifiedProductView {
	v := entity.UnifiedProductView{
		CanonicalProduct:    p,
		UnitsSoldInWindow:   decimal.Zero,
		ReturnUnitsInWindow: decimal.Zero,
		RevenueInWindow:     decimal.Zero,
		TransactionCount:    len(txs),
		ChannelMix:          map[entity.Channel]decimal.Decimal{},
	}

	systems := map[entity.SourceSystem]bool{entity.SourceInventory: true}
	for _, t := range txs {
		systems[t.Source] = true

		if t.Quantity.IsPositive() {
			d := t.Date
			if v.FirstSaleDate == nil || d.Before(*v.FirstSaleDate) {
				v.FirstSaleDate = &d
			}
			if v.LastSaleDate == nil || d.After(*v.LastSaleDate) {
				v.LastSaleDate = &d
			}
		}

		if !r.InWindow(t.Date) {
			continue
		}
		switch {
		case t.Quantity.IsPositive():
			v.UnitsSoldInWindow = v.UnitsSoldInWindow.Add(t.Quantity)
			v.RevenueInWindow = v.RevenueInWindow.Add(t.LineTotal())
			v.ChannelMix[t.Channel] = v.ChannelMix[t.Channel].Add(t.Quantity)
		case t.Quantity.IsNegative():
			v.ReturnUnitsInWindow = v.ReturnUnitsInWindow.Add(t.Quantity.Abs())
		}
	}

	if v.LastSaleDate != nil && r.HasReference {
		days := normalize.DaysBetween(*v.LastSaleDate, r.ReferenceDate)
		v.DaysSinceLastSale = &days
	}
	v.Systems = orderedSystems(systems)
	return v
}

func buildGap(key string, txs []entity.TransactionRecord) entity.ReconciliationGap {
	g := entity.ReconciliationGap{
		IdentityKey:  key,
		SampleName:   txs[0].ProductName,
		Transactions: len(txs),
		Units:        decimal.Zero,
		Revenue:      decimal.Zero,
	}
	systems := map[entity.SourceSystem]bool{}
	for _, t := range txs {
		systems[t.Source] = true
		g.Units = g.Units.Add(t.Quantity)
		g.Revenue = g.Revenue.Add(t.LineTotal())
		if g.FirstDate.IsZero() || t.Date.Before(g.FirstDate) {
			g.FirstDate = t.Date
		}
		if t.Date.After(g.LastDate) {
			g.LastDate = t.Date
		}
	}
	g.Systems = orderedSystems(systems)
	return g
}

var systemOrder = []entity.SourceSystem{entity.SourceInventory, entity.SourcePOS, entity.SourceEcommerce}

func orderedSystems(set map[entity.SourceSystem]bool) []entity.SourceSystem {
	out := make([]entity.SourceSystem, 0, len(set))
	for _, s := range systemOrder {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}
