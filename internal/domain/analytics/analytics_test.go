package analytics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/analytics"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/domain/reconcile"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func view(key, qty, price, sold string) entity.UnifiedProductView {
	return entity.UnifiedProductView{
		CanonicalProduct: entity.CanonicalProduct{
			IdentityKey:    key,
			DisplayName:    key,
			QuantityOnHand: d(qty),
			RetailPrice:    d(price),
		},
		UnitsSoldInWindow: d(sold),
	}
}

func reconciled(views ...entity.UnifiedProductView) reconcile.Result {
	ref := day(2024, 12, 14)
	return reconcile.Result{
		ReferenceDate: ref,
		HasReference:  true,
		WindowStart:   reconcile.WindowStart(ref, 90),
		ObservedStart: day(2024, 6, 1),
		LookbackDays:  90,
		Views:         views,
	}
}

func TestAssess_SinStockEsCritico(t *testing.T) {
	a := analytics.Assess(view("ceramic mug", "0", "12", "3091"), analytics.DefaultThresholds())

	assert.True(t, a.AverageDailySales.Round(4).Equal(d("34.3444")), "3091/90 = %s", a.AverageDailySales)
	require.True(t, a.DaysOfStock.Valid)
	assert.True(t, a.DaysOfStock.Decimal.IsZero())
	assert.Equal(t, entity.RiskCritical, a.Tier)
	assert.True(t, a.RevenueAtRisk.Equal(a.AverageDailySales.Mul(d("12"))))
}

func TestAssess_SinVentasNoDivide(t *testing.T) {
	a := analytics.Assess(view("vase", "40", "30", "0"), analytics.DefaultThresholds())

	assert.True(t, a.AverageDailySales.IsZero())
	assert.False(t, a.DaysOfStock.Valid, "sin ventas los días de stock son ilimitados")
	assert.Equal(t, entity.RiskNone, a.Tier)
	assert.True(t, a.RevenueAtRisk.IsZero())
}

func TestTier_LimitesInclusivos(t *testing.T) {
	th := analytics.DefaultThresholds()
	cases := []struct {
		days string
		want entity.RiskTier
	}{
		{"0", entity.RiskCritical},
		{"3", entity.RiskCritical},
		{"3.01", entity.RiskHigh},
		{"7", entity.RiskHigh},
		{"7.5", entity.RiskNone},
		{"120", entity.RiskNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, analytics.Tier(d(c.days), th), c.days)
	}
}

func TestTier_UmbralesConfigurables(t *testing.T) {
	th := analytics.DefaultThresholds()
	th.Critical = d("1")
	th.High = d("2")
	assert.Equal(t, entity.RiskNone, analytics.Tier(d("3"), th))
}

func TestSort_RankingsDivergen(t *testing.T) {
	// A: rápido y barato, 2 días de stock. B: lento y caro, 5 días de stock.
	a := view("a", "20", "1", "900")  // 10/día, 2 días, $10/día
	b := view("b", "10", "500", "180") // 2/día, 5 días, $1000/día
	res := analytics.Analyze(reconciled(a, b), analytics.DefaultThresholds())
	require.Len(t, res.StockoutRisks, 2)

	byDays := analytics.SortByDaysOfStock(res.StockoutRisks)
	byRevenue := analytics.SortByRevenueAtRisk(res.StockoutRisks)

	assert.Equal(t, "a", byDays[0].View.IdentityKey)
	assert.Equal(t, "b", byRevenue[0].View.IdentityKey)
	assert.Equal(t, "a", res.StockoutRisks[0].View.IdentityKey, "orden por defecto: días de stock")
}

func TestAnalyze_MuertoExcluidoDeRiesgo(t *testing.T) {
	dead := view("vase", "40", "30", "0")
	hot := view("mug", "1", "10", "90")
	res := analytics.Analyze(reconciled(dead, hot), analytics.DefaultThresholds())

	require.Len(t, res.DeadInventory, 1)
	assert.Equal(t, "vase", res.DeadInventory[0].View.IdentityKey)
	assert.True(t, res.DeadInventory[0].Dead.Value.Equal(d("1200")))
	assert.False(t, res.DeadInventory[0].Dead.FirstSeenFromInventory)

	for _, r := range res.StockoutRisks {
		assert.NotEqual(t, "vase", r.View.IdentityKey)
	}
	for _, r := range res.Products {
		assert.False(t, r.Dead.Dead && r.Stockout.Tier != entity.RiskNone, "%s es muerto y en riesgo", r.View.IdentityKey)
	}
	assert.Equal(t, 1, res.Summary.DeadCount)
	assert.Equal(t, 1, res.Summary.CriticalCount)
	assert.True(t, res.Summary.DeadValue.Equal(d("1200")))
}

func TestClassifyDead_EdadMinima(t *testing.T) {
	rec := reconciled()
	th := analytics.DefaultThresholds()
	th.DeadMinAgeDays = 60

	recent := view("new lamp", "5", "20", "0")
	recent.FirstSeen = day(2024, 11, 20) // 24 días antes de la referencia
	f := analytics.ClassifyDead(recent, rec, th)
	assert.False(t, f.Dead)
	assert.True(t, f.FirstSeenFromInventory)
	assert.Equal(t, 24, f.DaysSinceFirstSeen)

	old := view("old lamp", "5", "20", "0")
	old.FirstSeen = day(2024, 1, 1)
	assert.True(t, analytics.ClassifyDead(old, rec, th).Dead)
}

// Un conteo reciente no es fecha de alta: la antigüedad sale del período observado.
func TestClassifyDead_ConteoRecienteNoRejuvenece(t *testing.T) {
	v := view("dusty vase", "40", "30", "0")
	v.LastCounted = day(2024, 12, 1)

	f := analytics.ClassifyDead(v, reconciled(), analytics.DefaultThresholds())
	assert.True(t, f.Dead)
	assert.False(t, f.FirstSeenFromInventory)
	assert.Equal(t, 196, f.DaysSinceFirstSeen)
	assert.True(t, f.Value.Equal(d("1200")))
}

func TestClassifyDead_SinStockNoEsMuerto(t *testing.T) {
	f := analytics.ClassifyDead(view("empty", "0", "20", "0"), reconciled(), analytics.DefaultThresholds())
	assert.False(t, f.Dead)
	assert.True(t, f.Value.IsZero())
}

func TestAnalyze_SinTransacciones(t *testing.T) {
	res := analytics.Analyze(reconcile.Result{Views: []entity.UnifiedProductView{view("vase", "4", "3", "0")}}, analytics.DefaultThresholds())

	require.Len(t, res.Products, 1)
	assert.Empty(t, res.StockoutRisks)
	assert.Empty(t, res.DeadInventory)
	assert.NotNil(t, res.DeadInventory)
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, analytics.DefaultThresholds().Validate())

	bad := []func(*analytics.Thresholds){
		func(th *analytics.Thresholds) { th.LookbackDays = 0 },
		func(th *analytics.Thresholds) { th.Critical = d("-1") },
		func(th *analytics.Thresholds) { th.Critical = d("10") },
		func(th *analytics.Thresholds) { th.DeadMinAgeDays = -3 },
	}
	for i, mutate := range bad {
		th := analytics.DefaultThresholds()
		mutate(&th)
		err := th.Validate()
		require.Error(t, err, "caso %d", i)
		assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
	}
}

func TestCompareChannels(t *testing.T) {
	txs := []entity.TransactionRecord{
		{Channel: entity.ChannelInStore, Source: entity.SourcePOS, Quantity: d("2"), UnitPrice: d("10")},
		{Channel: entity.ChannelInStore, Source: entity.SourcePOS, Quantity: d("1"), UnitPrice: d("40")},
		{Channel: entity.ChannelInStore, Source: entity.SourcePOS, Quantity: d("-1"), UnitPrice: d("10")},
		{Channel: entity.ChannelOnline, Source: entity.SourceEcommerce, Quantity: d("4"), UnitPrice: d("15")},
	}
	cmp := analytics.CompareChannels(txs, 1)

	assert.True(t, cmp.InStore.Revenue.Equal(d("60")))
	assert.Equal(t, 2, cmp.InStore.Transactions)
	assert.True(t, cmp.InStore.AverageOrderValue.Equal(d("30")))
	assert.True(t, cmp.InStore.ReturnRate.Round(4).Equal(d("0.3333")))
	assert.True(t, cmp.Online.Revenue.Equal(d("60")))
	assert.True(t, cmp.Online.ReturnRate.Equal(d("1")))
	assert.True(t, cmp.InStoreRevenueShare.Equal(d("50")))
	assert.True(t, cmp.AOVDifference.Equal(d("30")))
}

func TestCompareChannels_Vacio(t *testing.T) {
	cmp := analytics.CompareChannels(nil, 0)
	assert.True(t, cmp.InStore.AverageOrderValue.IsZero())
	assert.True(t, cmp.InStoreRevenueShare.IsZero())
}

func TestComputeKeyMetrics(t *testing.T) {
	low := view("mug", "1", "10", "90")
	low.ReorderLevel = d("5")
	low.ManualOverride = true
	res := analytics.Analyze(reconciled(low, view("vase", "40", "30", "0")), analytics.DefaultThresholds())

	txs := []entity.TransactionRecord{
		{Source: entity.SourcePOS, Quantity: d("3"), UnitPrice: d("10")},
		{Source: entity.SourcePOS, Quantity: d("1"), UnitPrice: d("10")},
		{Source: entity.SourcePOS, Quantity: d("-1"), UnitPrice: d("10")},
		{Source: entity.SourceEcommerce, Quantity: d("2"), UnitPrice: d("5")},
	}
	m := analytics.ComputeKeyMetrics(res, txs, 3, 1)

	assert.Equal(t, 2, m.Products)
	assert.True(t, m.InventoryValue.Equal(d("1210")))
	assert.Equal(t, 3, m.POSTransactions)
	assert.True(t, m.POSRevenue.Equal(d("40")))
	assert.True(t, m.EcommerceRevenue.Equal(d("10")))
	assert.Equal(t, 3, m.EcommerceOrders)
	assert.Equal(t, 1, m.BelowReorderLevel)
	assert.Equal(t, 1, m.ManualOverrides)
	assert.True(t, m.POSReturnRate.Equal(d("50")))
	assert.True(t, m.DeadInventoryValue.Equal(d("1200")))
	assert.Equal(t, 1, m.ReconciliationGapCount)
}
