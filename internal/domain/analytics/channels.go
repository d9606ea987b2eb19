package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// ChannelStats desempeño de un canal sobre todas las transacciones aceptadas.
type ChannelStats struct {
	Revenue             decimal.Decimal
	Units               decimal.Decimal
	Transactions        int // solo ventas (cantidad > 0)
	AverageOrderValue   decimal.Decimal
	UnitsPerTransaction decimal.Decimal
	ReturnUnits         decimal.Decimal
	ReturnRate          decimal.Decimal // tienda: unidades devueltas / vendidas; online: reembolsos / ventas
}

// ChannelComparison tienda física contra e-commerce.
type ChannelComparison struct {
	InStore             ChannelStats
	Online              ChannelStats
	InStoreRevenueShare decimal.Decimal // % del total
	AOVDifference       decimal.Decimal // online - tienda
	ReturnRateDiff      decimal.Decimal // online - tienda
}

// CompareChannels agrega por canal. onlineRefunds es el número de pedidos
// reembolsados del e-commerce, que no llegan como transacción.
func CompareChannels(txs []entity.TransactionRecord, onlineRefunds int) ChannelComparison {
	stats := map[entity.Channel]*ChannelStats{
		entity.ChannelInStore: newChannelStats(),
		entity.ChannelOnline:  newChannelStats(),
	}
	for _, t := range txs {
		s, ok := stats[t.Channel]
		if !ok {
			continue
		}
		switch {
		case t.Quantity.IsPositive():
			s.Revenue = s.Revenue.Add(t.LineTotal())
			s.Units = s.Units.Add(t.Quantity)
			s.Transactions++
		case t.Quantity.IsNegative():
			s.ReturnUnits = s.ReturnUnits.Add(t.Quantity.Abs())
		}
	}

	in, on := stats[entity.ChannelInStore], stats[entity.ChannelOnline]
	in.finish()
	on.finish()
	in.ReturnRate = ratio(in.ReturnUnits, in.Units)
	on.ReturnUnits = on.ReturnUnits.Add(decimal.NewFromInt(int64(onlineRefunds)))
	on.ReturnRate = ratio(decimal.NewFromInt(int64(onlineRefunds)), decimal.NewFromInt(int64(on.Transactions)))

	cmp := ChannelComparison{
		InStore:             *in,
		Online:              *on,
		InStoreRevenueShare: decimal.Zero,
		AOVDifference:       on.AverageOrderValue.Sub(in.AverageOrderValue),
		ReturnRateDiff:      on.ReturnRate.Sub(in.ReturnRate),
	}
	if total := in.Revenue.Add(on.Revenue); total.IsPositive() {
		cmp.InStoreRevenueShare = in.Revenue.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return cmp
}

func newChannelStats() *ChannelStats {
	return &ChannelStats{
		Revenue:             decimal.Zero,
		Units:               decimal.Zero,
		AverageOrderValue:   decimal.Zero,
		UnitsPerTransaction: decimal.Zero,
		ReturnUnits:         decimal.Zero,
		ReturnRate:          decimal.Zero,
	}
}

func (s *ChannelStats) finish() {
	n := decimal.NewFromInt(int64(s.Transactions))
	s.AverageOrderValue = ratio(s.Revenue, n)
	s.UnitsPerTransaction = ratio(s.Units, n)
}

// ratio a/b, cero si b no es positivo.
func ratio(a, b decimal.Decimal) decimal.Decimal {
	if !b.IsPositive() {
		return decimal.Zero
	}
	return a.Div(b)
}
