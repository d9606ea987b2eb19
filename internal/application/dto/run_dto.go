package dto

import "github.com/shopspring/decimal"

// ── Corrida ───────────────────────────────────────────────────────────────────

// RunReportDTO conjunto completo de artefactos de una corrida.
// Las listas vacías se serializan como [] (nunca null).
type RunReportDTO struct {
	RunID          string                 `json:"run_id"`
	GeneratedAt    string                 `json:"generated_at"`   // RFC3339; metadato, no interviene en el análisis
	ReferenceDate  string                 `json:"reference_date"` // YYYY-MM-DD; "" si no hubo transacciones
	WindowStart    string                 `json:"window_start"`
	ObservedStart  string                 `json:"observed_start"`
	LookbackDays   int                    `json:"lookback_days"`
	Thresholds     ThresholdsDTO          `json:"thresholds"`
	Ingest         IngestStatsDTO         `json:"ingest"`
	Reconciliation ReconciliationStatsDTO `json:"reconciliation"`
	KeyMetrics     KeyMetricsDTO          `json:"key_metrics"`
	Channels       ChannelComparisonDTO   `json:"channels"`
	Products       []UnifiedProductDTO    `json:"products"`
	StockoutRisks  []StockoutRiskDTO      `json:"stockout_risks"`
	DeadInventory  []DeadInventoryDTO     `json:"dead_inventory"`
	Duplicates     []DuplicateGroupDTO    `json:"duplicates"`
	Quality        []QualityReportDTO     `json:"quality"`
	Quarantined    []QuarantinedRecordDTO `json:"quarantined"`
	Gaps           []ReconciliationGapDTO `json:"reconciliation_gaps"`
}

// ThresholdsDTO umbrales efectivos de la corrida.
type ThresholdsDTO struct {
	CriticalDays   decimal.Decimal `json:"critical_days"`
	HighDays       decimal.Decimal `json:"high_days"`
	DeadMinAgeDays int             `json:"dead_min_age_days"` // 0 = todo el período observado
	QuantityRule   string          `json:"quantity_rule"`
	ReorderRule    string          `json:"reorder_rule"`
	PriceRule      string          `json:"price_rule"`
}

// IngestStatsDTO conteos de ingesta por fuente.
type IngestStatsDTO struct {
	InventoryRecords int `json:"inventory_records"`
	POSRecords       int `json:"pos_records"`
	EcommerceOrders  int `json:"ecommerce_orders"`
	NonSaleOrders    int `json:"non_sale_orders"` // cancelados, pendientes, reembolsados
	RefundedOrders   int `json:"refunded_orders"`
	Transactions     int `json:"transactions"`
}

// ReconciliationStatsDTO resultado del cruce por Identity Key.
type ReconciliationStatsDTO struct {
	Products              int     `json:"products"`
	ProductsWithSales     int     `json:"products_with_sales"`
	InventoryOnly         int     `json:"inventory_only"`
	Transactions          int     `json:"transactions"`
	MatchedTransactions   int     `json:"matched_transactions"`
	UnmatchedTransactions int     `json:"unmatched_transactions"`
	MatchRate             float64 `json:"match_rate_pct"`
}

// ── Productos ─────────────────────────────────────────────────────────────────

// UnifiedProductDTO fila de la tabla unificada.
type UnifiedProductDTO struct {
	IdentityKey         string                     `json:"identity_key"`
	DisplayName         string                     `json:"display_name"`
	Category            string                     `json:"category,omitempty"`
	SourceCodes         []string                   `json:"source_codes"`
	QuantityOnHand      decimal.Decimal            `json:"quantity_on_hand"`
	ReorderLevel        decimal.Decimal            `json:"reorder_level"`
	RetailPrice         decimal.Decimal            `json:"retail_price"`
	InventoryValue      decimal.Decimal            `json:"inventory_value"`
	BelowReorderLevel   bool                       `json:"below_reorder_level"`
	ManualOverride      bool                       `json:"manual_override"`
	LastCountDate       *string                    `json:"last_count_date"`
	UnitsSoldInWindow   decimal.Decimal            `json:"units_sold_in_window"`
	ReturnUnitsInWindow decimal.Decimal            `json:"return_units_in_window"`
	RevenueInWindow     decimal.Decimal            `json:"revenue_in_window"`
	TransactionCount    int                        `json:"transaction_count"`
	FirstSaleDate       *string                    `json:"first_sale_date"`
	LastSaleDate        *string                    `json:"last_sale_date"`
	DaysSinceLastSale   *int                       `json:"days_since_last_sale"`
	ChannelMix          map[string]decimal.Decimal `json:"channel_mix"`
	Systems             []string                   `json:"systems"`
	AverageDailySales   decimal.Decimal            `json:"average_daily_sales"`
	DaysOfStock         decimal.NullDecimal        `json:"days_of_stock"` // null = ilimitado
	RiskTier            string                     `json:"risk_tier"`
	RevenueAtRisk       decimal.Decimal            `json:"revenue_at_risk"`
	Dead                bool                       `json:"dead"`
}

// StockoutRiskDTO producto en nivel critical o high. La lista se entrega ordenada
// por días de stock; RevenueRank permite reordenar por venta en riesgo sin recalcular.
type StockoutRiskDTO struct {
	DaysRank          int             `json:"days_rank"`
	RevenueRank       int             `json:"revenue_rank"`
	IdentityKey       string          `json:"identity_key"`
	DisplayName       string          `json:"display_name"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand"`
	ReorderLevel      decimal.Decimal `json:"reorder_level"`
	RetailPrice       decimal.Decimal `json:"retail_price"`
	UnitsSoldInWindow decimal.Decimal `json:"units_sold_in_window"`
	AverageDailySales decimal.Decimal `json:"average_daily_sales"`
	DaysOfStock       decimal.Decimal `json:"days_of_stock"`
	RiskTier          string          `json:"risk_tier"`
	RevenueAtRisk     decimal.Decimal `json:"revenue_at_risk"`
	ManualOverride    bool            `json:"manual_override"`
}

// DeadInventoryDTO producto con stock y sin ventas en la ventana.
type DeadInventoryDTO struct {
	IdentityKey            string          `json:"identity_key"`
	DisplayName            string          `json:"display_name"`
	QuantityOnHand         decimal.Decimal `json:"quantity_on_hand"`
	RetailPrice            decimal.Decimal `json:"retail_price"`
	ValueAtRisk            decimal.Decimal `json:"value_at_risk"`
	DaysSinceFirstSeen     int             `json:"days_since_first_seen"`
	FirstSeenFromInventory bool            `json:"first_seen_from_inventory"`
	LastSaleDate           *string         `json:"last_sale_date"`
	ManualOverride         bool            `json:"manual_override"`
}

// DuplicateGroupDTO entrada del reporte de duplicados.
type DuplicateGroupDTO struct {
	IdentityKey    string          `json:"identity_key"`
	DisplayName    string          `json:"display_name"`
	SourceCodes    []string        `json:"source_codes"`
	RawNames       []string        `json:"raw_names"`
	RecordCount    int             `json:"record_count"`
	Quantity       decimal.Decimal `json:"quantity"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	ManualOverride bool            `json:"manual_override"`
}

// ── Calidad y conciliación ────────────────────────────────────────────────────

// ViolationCountDTO conteo por tipo de violación.
type ViolationCountDTO struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// QualityReportDTO reporte de calidad de una fuente.
type QualityReportDTO struct {
	Source             string              `json:"source"`
	TotalRecords       int                 `json:"total_records"`
	AcceptedRecords    int                 `json:"accepted_records"`
	QuarantinedRecords int                 `json:"quarantined_records"`
	Violations         []ViolationCountDTO `json:"violations"`
	ClearedValues      int                 `json:"cleared_values"` // fechas opcionales descartadas en registros aceptados
	Cleared            []ViolationCountDTO `json:"cleared"`
}

// QuarantinedRecordDTO registro excluido, con la regla que incumplió.
type QuarantinedRecordDTO struct {
	Source    string `json:"source"`
	Line      int    `json:"line"`
	Violation string `json:"violation"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

// ReconciliationGapDTO transacciones sin producto canónico.
type ReconciliationGapDTO struct {
	IdentityKey  string          `json:"identity_key"`
	SampleName   string          `json:"sample_name"`
	Systems      []string        `json:"systems"`
	Transactions int             `json:"transactions"`
	Units        decimal.Decimal `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
	FirstDate    string          `json:"first_date"`
	LastDate     string          `json:"last_date"`
}

// ── Métricas ──────────────────────────────────────────────────────────────────

// ChannelStatsDTO desempeño de un canal.
type ChannelStatsDTO struct {
	Revenue             decimal.Decimal `json:"total_revenue"`
	Units               decimal.Decimal `json:"total_units"`
	Transactions        int             `json:"transaction_count"`
	AverageOrderValue   decimal.Decimal `json:"avg_order_value"`
	UnitsPerTransaction decimal.Decimal `json:"avg_units_per_transaction"`
	ReturnRate          decimal.Decimal `json:"return_rate"`
}

// ChannelComparisonDTO tienda física contra online.
type ChannelComparisonDTO struct {
	InStore             ChannelStatsDTO `json:"in_store"`
	Online              ChannelStatsDTO `json:"online"`
	InStoreRevenueShare decimal.Decimal `json:"revenue_split_instore_pct"`
	AOVDifference       decimal.Decimal `json:"aov_difference"`
	ReturnRateDiff      decimal.Decimal `json:"return_rate_difference"`
}

// KeyMetricsDTO indicadores de cabecera.
type KeyMetricsDTO struct {
	Products               int             `json:"total_skus_in_inventory"`
	InventoryValue         decimal.Decimal `json:"total_inventory_value"`
	POSTransactions        int             `json:"total_pos_transactions"`
	POSRevenue             decimal.Decimal `json:"total_pos_revenue"`
	EcommerceOrders        int             `json:"total_ecom_orders"`
	EcommerceRevenue       decimal.Decimal `json:"total_ecom_revenue"`
	StockoutRiskCount      int             `json:"products_at_stockout_risk"`
	CriticalCount          int             `json:"critical_stockout_count"`
	DeadInventoryValue     decimal.Decimal `json:"dead_inventory_value"`
	BelowReorderLevel      int             `json:"items_below_reorder_level"`
	ManualOverrides        int             `json:"items_with_manual_overrides"`
	POSReturnRate          decimal.Decimal `json:"pos_return_rate"`
	ReconciliationGapCount int             `json:"reconciliation_gap_count"`
}

// RunSummaryDTO resumen corto de una corrida (respuesta de POST /api/runs).
type RunSummaryDTO struct {
	RunID          string                 `json:"run_id"`
	ReferenceDate  string                 `json:"reference_date"`
	Products       int                    `json:"products"`
	StockoutRisks  int                    `json:"stockout_risks"`
	DeadInventory  int                    `json:"dead_inventory"`
	Duplicates     int                    `json:"duplicates"`
	Gaps           int                    `json:"reconciliation_gaps"`
	Quarantined    int                    `json:"quarantined"`
	Reconciliation ReconciliationStatsDTO `json:"reconciliation"`
}

// ProductPageDTO página de la tabla unificada (GET /api/products).
type ProductPageDTO struct {
	Items []UnifiedProductDTO `json:"items"`
	Page  PageResponse        `json:"page"`
}

// HealthDTO respuesta de GET /health.
type HealthDTO struct {
	Status        string `json:"status"`
	LastRunID     string `json:"last_run_id,omitempty"`
	ReferenceDate string `json:"reference_date,omitempty"`
	LastError     string `json:"last_error,omitempty"`
}
