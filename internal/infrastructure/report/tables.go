// Package report persiste los artefactos de una corrida como archivos planos:
// run_report.json, un CSV por tabla y, opcionalmente, run_report.sqlite.
package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
)

type colType string

const (
	colText colType = "TEXT"
	colReal colType = "REAL"
	colInt  colType = "INTEGER"
)

type column struct {
	name string
	typ  colType
}

// table una tabla del reporte; las celdas ya vienen como texto.
type table struct {
	name    string
	columns []column
	rows    [][]string
}

func (t table) header() []string {
	h := make([]string, len(t.columns))
	for i, c := range t.columns {
		h[i] = c.name
	}
	return h
}

func cols(defs ...string) []column {
	out := make([]column, 0, len(defs))
	for _, s := range defs {
		name, typ, _ := strings.Cut(s, ":")
		c := column{name: name, typ: colText}
		switch typ {
		case "r":
			c.typ = colReal
		case "i":
			c.typ = colInt
		}
		out = append(out, c)
	}
	return out
}

// tables arma todas las tablas planas del reporte, en el orden en que se escriben.
func tables(r *dto.RunReportDTO) []table {
	return []table{
		productsTable(r),
		stockoutTable(r),
		deadTable(r),
		duplicatesTable(r),
		qualityTable(r),
		quarantinedTable(r),
		gapsTable(r),
	}
}

func productsTable(r *dto.RunReportDTO) table {
	t := table{
		name: "unified_products",
		columns: cols("identity_key", "display_name", "category", "source_codes",
			"quantity_on_hand:r", "reorder_level:r", "retail_price:r", "inventory_value:r",
			"below_reorder_level:i", "manual_override:i", "last_count_date",
			"units_sold_in_window:r", "return_units_in_window:r", "revenue_in_window:r", "transaction_count:i",
			"first_sale_date", "last_sale_date", "days_since_last_sale:i",
			"in_store_units:r", "online_units:r", "systems",
			"average_daily_sales:r", "days_of_stock:r", "risk_tier", "revenue_at_risk:r", "dead:i"),
	}
	for _, p := range r.Products {
		t.rows = append(t.rows, []string{
			p.IdentityKey, p.DisplayName, p.Category, join(p.SourceCodes),
			dec(p.QuantityOnHand), dec(p.ReorderLevel), dec(p.RetailPrice), dec(p.InventoryValue),
			boolean(p.BelowReorderLevel), boolean(p.ManualOverride), str(p.LastCountDate),
			dec(p.UnitsSoldInWindow), dec(p.ReturnUnitsInWindow), dec(p.RevenueInWindow), strconv.Itoa(p.TransactionCount),
			str(p.FirstSaleDate), str(p.LastSaleDate), intPtr(p.DaysSinceLastSale),
			dec(p.ChannelMix["in_store"]), dec(p.ChannelMix["online"]), join(p.Systems),
			dec(p.AverageDailySales), nullDec(p.DaysOfStock), p.RiskTier, dec(p.RevenueAtRisk), boolean(p.Dead),
		})
	}
	return t
}

func stockoutTable(r *dto.RunReportDTO) table {
	t := table{
		name: "stockout_risks",
		columns: cols("days_rank:i", "revenue_rank:i", "identity_key", "display_name",
			"quantity_on_hand:r", "reorder_level:r", "retail_price:r", "units_sold_in_window:r",
			"average_daily_sales:r", "days_of_stock:r", "risk_tier", "revenue_at_risk:r", "manual_override:i"),
	}
	for _, s := range r.StockoutRisks {
		t.rows = append(t.rows, []string{
			strconv.Itoa(s.DaysRank), strconv.Itoa(s.RevenueRank), s.IdentityKey, s.DisplayName,
			dec(s.QuantityOnHand), dec(s.ReorderLevel), dec(s.RetailPrice), dec(s.UnitsSoldInWindow),
			dec(s.AverageDailySales), dec(s.DaysOfStock), s.RiskTier, dec(s.RevenueAtRisk), boolean(s.ManualOverride),
		})
	}
	return t
}

func deadTable(r *dto.RunReportDTO) table {
	t := table{
		name: "dead_inventory",
		columns: cols("identity_key", "display_name", "quantity_on_hand:r", "retail_price:r", "value_at_risk:r",
			"days_since_first_seen:i", "first_seen_from_inventory:i", "last_sale_date", "manual_override:i"),
	}
	for _, d := range r.DeadInventory {
		t.rows = append(t.rows, []string{
			d.IdentityKey, d.DisplayName, dec(d.QuantityOnHand), dec(d.RetailPrice), dec(d.ValueAtRisk),
			strconv.Itoa(d.DaysSinceFirstSeen), boolean(d.FirstSeenFromInventory), str(d.LastSaleDate), boolean(d.ManualOverride),
		})
	}
	return t
}

func duplicatesTable(r *dto.RunReportDTO) table {
	t := table{
		name: "duplicates",
		columns: cols("identity_key", "display_name", "source_codes", "raw_names", "record_count:i",
			"quantity:r", "reorder_level:r", "retail_price:r", "manual_override:i"),
	}
	for _, d := range r.Duplicates {
		t.rows = append(t.rows, []string{
			d.IdentityKey, d.DisplayName, join(d.SourceCodes), join(d.RawNames), strconv.Itoa(d.RecordCount),
			dec(d.Quantity), dec(d.ReorderLevel), dec(d.RetailPrice), boolean(d.ManualOverride),
		})
	}
	return t
}

// qualityTable una fila por fuente y tipo de violación.
func qualityTable(r *dto.RunReportDTO) table {
	t := table{
		name: "quality",
		columns: cols("source", "total_records:i", "accepted_records:i", "quarantined_records:i",
			"violation", "count:i", "percentage:r", "cleared:i"),
	}
	for _, q := range r.Quality {
		cleared := make(map[string]int, len(q.Cleared))
		for _, c := range q.Cleared {
			cleared[c.Type] = c.Count
		}
		row := func(kind string, count int, pct float64) []string {
			return []string{
				q.Source, strconv.Itoa(q.TotalRecords), strconv.Itoa(q.AcceptedRecords), strconv.Itoa(q.QuarantinedRecords),
				kind, strconv.Itoa(count), strconv.FormatFloat(pct, 'f', 2, 64), strconv.Itoa(cleared[kind]),
			}
		}
		seen := make(map[string]bool, len(q.Violations))
		for _, v := range q.Violations {
			seen[v.Type] = true
			t.rows = append(t.rows, row(v.Type, v.Count, v.Percentage))
		}
		// tipos que solo limpiaron valores opcionales
		for _, c := range q.Cleared {
			if !seen[c.Type] {
				t.rows = append(t.rows, row(c.Type, 0, 0))
			}
		}
	}
	return t
}

func quarantinedTable(r *dto.RunReportDTO) table {
	t := table{
		name:    "quarantined",
		columns: cols("source", "line:i", "violation", "field", "value"),
	}
	for _, q := range r.Quarantined {
		t.rows = append(t.rows, []string{q.Source, strconv.Itoa(q.Line), q.Violation, q.Field, q.Value})
	}
	return t
}

func gapsTable(r *dto.RunReportDTO) table {
	t := table{
		name: "reconciliation_gaps",
		columns: cols("identity_key", "sample_name", "systems", "transactions:i", "units:r", "revenue:r",
			"first_date", "last_date"),
	}
	for _, g := range r.Gaps {
		t.rows = append(t.rows, []string{
			g.IdentityKey, g.SampleName, join(g.Systems), strconv.Itoa(g.Transactions),
			dec(g.Units), dec(g.Revenue), g.FirstDate, g.LastDate,
		})
	}
	return t
}

func dec(d decimal.Decimal) string { return d.String() }

func nullDec(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func boolean(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func join(s []string) string { return strings.Join(s, "|") }
