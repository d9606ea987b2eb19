package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/domain/analytics"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/domain/reconcile"
)

const dateLayout = "2006-01-02"

type reportInput struct {
	runID       string
	generatedAt time.Time
	settings    Settings
	ingest      dto.IngestStatsDTO
	reconciled  reconcile.Result
	analysis    analytics.Result
	duplicates  []entity.DuplicateGroup
	quality     []entity.QualityReport
	quarantined []entity.QuarantinedRecord
	channels    analytics.ChannelComparison
	metrics     analytics.KeyMetrics
}

// buildReport arma el DTO de la corrida. Todas las listas se inicializan vacías.
func buildReport(in reportInput) *dto.RunReportDTO {
	rec := in.reconciled
	th := in.settings.Thresholds
	st := rec.Stats

	out := &dto.RunReportDTO{
		RunID:         in.runID,
		GeneratedAt:   in.generatedAt.UTC().Format(time.RFC3339),
		ReferenceDate: formatDate(rec.ReferenceDate),
		WindowStart:   formatDate(rec.WindowStart),
		ObservedStart: formatDate(rec.ObservedStart),
		LookbackDays:  rec.LookbackDays,
		Thresholds: dto.ThresholdsDTO{
			CriticalDays:   th.Critical,
			HighDays:       th.High,
			DeadMinAgeDays: th.DeadMinAgeDays,
			QuantityRule:   in.settings.RuleNames.Quantity,
			ReorderRule:    in.settings.RuleNames.Reorder,
			PriceRule:      in.settings.RuleNames.Price,
		},
		Ingest: in.ingest,
		Reconciliation: dto.ReconciliationStatsDTO{
			Products:              st.Products,
			ProductsWithSales:     st.ProductsWithSales,
			InventoryOnly:         st.InventoryOnly,
			Transactions:          st.Transactions,
			MatchedTransactions:   st.MatchedTransactions,
			UnmatchedTransactions: st.UnmatchedTransactions,
			MatchRate:             st.MatchRate,
		},
		KeyMetrics:    toKeyMetricsDTO(in.metrics),
		Channels:      toChannelsDTO(in.channels),
		Products:      make([]dto.UnifiedProductDTO, 0, len(in.analysis.Products)),
		StockoutRisks: make([]dto.StockoutRiskDTO, 0, len(in.analysis.StockoutRisks)),
		DeadInventory: make([]dto.DeadInventoryDTO, 0, len(in.analysis.DeadInventory)),
		Duplicates:    make([]dto.DuplicateGroupDTO, 0, len(in.duplicates)),
		Quality:       make([]dto.QualityReportDTO, 0, len(in.quality)),
		Quarantined:   make([]dto.QuarantinedRecordDTO, 0, len(in.quarantined)),
		Gaps:          make([]dto.ReconciliationGapDTO, 0, len(rec.Gaps)),
	}

	for _, row := range in.analysis.Products {
		out.Products = append(out.Products, toUnifiedDTO(row))
	}
	revenueRank := make(map[string]int, len(in.analysis.StockoutRisks))
	for i, row := range analytics.SortByRevenueAtRisk(in.analysis.StockoutRisks) {
		revenueRank[row.View.IdentityKey] = i + 1
	}
	for i, row := range analytics.SortByDaysOfStock(in.analysis.StockoutRisks) {
		r := toStockoutRiskDTO(row)
		r.DaysRank = i + 1
		r.RevenueRank = revenueRank[row.View.IdentityKey]
		out.StockoutRisks = append(out.StockoutRisks, r)
	}
	for _, row := range in.analysis.DeadInventory {
		v := row.View
		out.DeadInventory = append(out.DeadInventory, dto.DeadInventoryDTO{
			IdentityKey:            v.IdentityKey,
			DisplayName:            v.DisplayName,
			QuantityOnHand:         v.QuantityOnHand,
			RetailPrice:            v.RetailPrice,
			ValueAtRisk:            row.Dead.Value,
			DaysSinceFirstSeen:     row.Dead.DaysSinceFirstSeen,
			FirstSeenFromInventory: row.Dead.FirstSeenFromInventory,
			LastSaleDate:           formatDatePtr(v.LastSaleDate),
			ManualOverride:         v.ManualOverride,
		})
	}
	for _, g := range in.duplicates {
		out.Duplicates = append(out.Duplicates, dto.DuplicateGroupDTO{
			IdentityKey:    g.IdentityKey,
			DisplayName:    g.DisplayName,
			SourceCodes:    nonNil(g.SourceCodes),
			RawNames:       nonNil(g.RawNames),
			RecordCount:    g.RecordCount,
			Quantity:       g.Quantity,
			ReorderLevel:   g.ReorderLevel,
			RetailPrice:    g.RetailPrice,
			ManualOverride: g.ManualOverride,
		})
	}
	for _, q := range in.quality {
		qr := dto.QualityReportDTO{
			Source:             string(q.Source),
			TotalRecords:       q.TotalRecords,
			AcceptedRecords:    q.AcceptedRecords,
			QuarantinedRecords: q.QuarantinedRecords,
			Violations:         toViolationDTOs(q.Violations),
			ClearedValues:      q.ClearedValues,
			Cleared:            toViolationDTOs(q.Cleared),
		}
		out.Quality = append(out.Quality, qr)
	}
	for _, q := range in.quarantined {
		out.Quarantined = append(out.Quarantined, dto.QuarantinedRecordDTO{
			Source:    string(q.Record.Source),
			Line:      q.Record.Line,
			Violation: string(q.Violation),
			Field:     q.Field,
			Value:     q.Value,
		})
	}
	for _, g := range rec.Gaps {
		out.Gaps = append(out.Gaps, dto.ReconciliationGapDTO{
			IdentityKey:  g.IdentityKey,
			SampleName:   g.SampleName,
			Systems:      systemNames(g.Systems),
			Transactions: g.Transactions,
			Units:        g.Units,
			Revenue:      g.Revenue,
			FirstDate:    formatDate(g.FirstDate),
			LastDate:     formatDate(g.LastDate),
		})
	}
	return out
}

func toViolationDTOs(counts []entity.ViolationCount) []dto.ViolationCountDTO {
	out := make([]dto.ViolationCountDTO, 0, len(counts))
	for _, v := range counts {
		out = append(out, dto.ViolationCountDTO{
			Type:       string(v.Type),
			Count:      v.Count,
			Percentage: v.Percentage,
		})
	}
	return out
}

func toUnifiedDTO(row analytics.ProductAnalysis) dto.UnifiedProductDTO {
	v := row.View
	mix := make(map[string]decimal.Decimal, len(v.ChannelMix))
	for ch, units := range v.ChannelMix {
		mix[string(ch)] = units
	}
	return dto.UnifiedProductDTO{
		IdentityKey:         v.IdentityKey,
		DisplayName:         v.DisplayName,
		Category:            v.Category,
		SourceCodes:         nonNil(v.SourceCodes),
		QuantityOnHand:      v.QuantityOnHand,
		ReorderLevel:        v.ReorderLevel,
		RetailPrice:         v.RetailPrice,
		InventoryValue:      v.InventoryValue(),
		BelowReorderLevel:   v.BelowReorderLevel(),
		ManualOverride:      v.ManualOverride,
		LastCountDate:       formatOptionalDate(v.LastCounted),
		UnitsSoldInWindow:   v.UnitsSoldInWindow,
		ReturnUnitsInWindow: v.ReturnUnitsInWindow,
		RevenueInWindow:     v.RevenueInWindow,
		TransactionCount:    v.TransactionCount,
		FirstSaleDate:       formatDatePtr(v.FirstSaleDate),
		LastSaleDate:        formatDatePtr(v.LastSaleDate),
		DaysSinceLastSale:   v.DaysSinceLastSale,
		ChannelMix:          mix,
		Systems:             systemNames(v.Systems),
		AverageDailySales:   row.Stockout.AverageDailySales.Round(4),
		DaysOfStock:         roundNull(row.Stockout.DaysOfStock, 2),
		RiskTier:            string(row.Stockout.Tier),
		RevenueAtRisk:       row.Stockout.RevenueAtRisk.Round(2),
		Dead:                row.Dead.Dead,
	}
}

func toStockoutRiskDTO(row analytics.ProductAnalysis) dto.StockoutRiskDTO {
	v := row.View
	return dto.StockoutRiskDTO{
		IdentityKey:       v.IdentityKey,
		DisplayName:       v.DisplayName,
		QuantityOnHand:    v.QuantityOnHand,
		ReorderLevel:      v.ReorderLevel,
		RetailPrice:       v.RetailPrice,
		UnitsSoldInWindow: v.UnitsSoldInWindow,
		AverageDailySales: row.Stockout.AverageDailySales.Round(4),
		DaysOfStock:       row.Stockout.DaysOfStock.Decimal.Round(2),
		RiskTier:          string(row.Stockout.Tier),
		RevenueAtRisk:     row.Stockout.RevenueAtRisk.Round(2),
		ManualOverride:    v.ManualOverride,
	}
}

func toChannelStatsDTO(s analytics.ChannelStats) dto.ChannelStatsDTO {
	return dto.ChannelStatsDTO{
		Revenue:             s.Revenue.Round(2),
		Units:               s.Units,
		Transactions:        s.Transactions,
		AverageOrderValue:   s.AverageOrderValue.Round(2),
		UnitsPerTransaction: s.UnitsPerTransaction.Round(2),
		ReturnRate:          s.ReturnRate.Round(4),
	}
}

func toChannelsDTO(c analytics.ChannelComparison) dto.ChannelComparisonDTO {
	return dto.ChannelComparisonDTO{
		InStore:             toChannelStatsDTO(c.InStore),
		Online:              toChannelStatsDTO(c.Online),
		InStoreRevenueShare: c.InStoreRevenueShare,
		AOVDifference:       c.AOVDifference.Round(2),
		ReturnRateDiff:      c.ReturnRateDiff.Round(4),
	}
}

func toKeyMetricsDTO(m analytics.KeyMetrics) dto.KeyMetricsDTO {
	return dto.KeyMetricsDTO{
		Products:               m.Products,
		InventoryValue:         m.InventoryValue.Round(2),
		POSTransactions:        m.POSTransactions,
		POSRevenue:             m.POSRevenue.Round(2),
		EcommerceOrders:        m.EcommerceOrders,
		EcommerceRevenue:       m.EcommerceRevenue.Round(2),
		StockoutRiskCount:      m.StockoutRiskCount,
		CriticalCount:          m.CriticalCount,
		DeadInventoryValue:     m.DeadInventoryValue.Round(2),
		BelowReorderLevel:      m.BelowReorderLevel,
		ManualOverrides:        m.ManualOverrides,
		POSReturnRate:          m.POSReturnRate,
		ReconciliationGapCount: m.ReconciliationGapCount,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatOptionalDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	return formatDatePtr(&t)
}

func roundNull(d decimal.NullDecimal, places int32) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NullDecimal{Decimal: d.Decimal.Round(places), Valid: true}
}

func systemNames(systems []entity.SourceSystem) []string {
	out := make([]string, 0, len(systems))
	for _, s := range systems {
		out = append(out, string(s))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
