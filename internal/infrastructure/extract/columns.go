// Package extract implementa las fuentes de entrada basadas en archivos:
// CSV, XLSX y la exportación JSON del e-commerce.
package extract

import (
	"strings"

	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// Alias de columna por sistema → nombre canónico de entity.
var columnAliases = map[entity.SourceSystem]map[string]string{
	entity.SourceInventory: {
		"name":            entity.FieldName,
		"description":     entity.FieldName,
		"product_name":    entity.FieldName,
		"item_name":       entity.FieldName,
		"item_code":       entity.FieldItemCode,
		"sku":             entity.FieldItemCode,
		"code":            entity.FieldItemCode,
		"qty_on_hand":     entity.FieldQuantity,
		"quantity":        entity.FieldQuantity,
		"qty":             entity.FieldQuantity,
		"on_hand":         entity.FieldQuantity,
		"reorder_level":   entity.FieldReorderLevel,
		"reorder_point":   entity.FieldReorderLevel,
		"retail_price":    entity.FieldPrice,
		"price":           entity.FieldPrice,
		"unit_price":      entity.FieldPrice,
		"notes":           entity.FieldNotes,
		"note":            entity.FieldNotes,
		"last_count_date": entity.FieldLastCountDate,
		"last_counted":    entity.FieldLastCountDate,
		"first_seen":      entity.FieldFirstSeen,
		"date_added":      entity.FieldFirstSeen,
		"created_at":      entity.FieldFirstSeen,
		"category":        entity.FieldCategory,
	},
	entity.SourcePOS: {
		"date":             entity.FieldDate,
		"transaction_date": entity.FieldDate,
		"sku":              entity.FieldItemCode,
		"item_code":        entity.FieldItemCode,
		"product_name":     entity.FieldName,
		"name":             entity.FieldName,
		"description":      entity.FieldName,
		"quantity":         entity.FieldQuantity,
		"qty":              entity.FieldQuantity,
		"unit_price":       entity.FieldPrice,
		"price":            entity.FieldPrice,
		"store_id":         entity.FieldStoreID,
		"store":            entity.FieldStoreID,
		"payment_method":   entity.FieldPaymentMethod,
		"payment":          entity.FieldPaymentMethod,
		"transaction_id":   entity.FieldOrderID,
	},
	entity.SourceEcommerce: {
		"order_id":     entity.FieldOrderID,
		"order_date":   entity.FieldDate,
		"date":         entity.FieldDate,
		"product_id":   entity.FieldItemCode,
		"sku":          entity.FieldItemCode,
		"product_name": entity.FieldName,
		"name":         entity.FieldName,
		"quantity":     entity.FieldQuantity,
		"unit_price":   entity.FieldPrice,
		"price":        entity.FieldPrice,
		"status":       entity.FieldStatus,
	},
}

// NormalizeHeader minúsculas, sin espacios laterales; espacios y guiones → "_".
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

// CanonicalField traduce una columna del extracto al nombre canónico.
// Las columnas sin alias se conservan con su nombre normalizado.
func CanonicalField(system entity.SourceSystem, header string) string {
	h := NormalizeHeader(header)
	if f, ok := columnAliases[system][h]; ok {
		return f
	}
	return h
}

// rowsToRecords convierte una tabla (primera fila = encabezados) en registros crudos.
// Si dos columnas caen en el mismo campo canónico gana la primera con valor.
func rowsToRecords(system entity.SourceSystem, rows [][]string) []entity.RawRecord {
	if len(rows) == 0 {
		return []entity.RawRecord{}
	}
	fields := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		fields[i] = CanonicalField(system, h)
	}

	out := make([]entity.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := entity.RawRecord{Source: system, Line: i + 1, Fields: make(map[string]string, len(fields))}
		for j, f := range fields {
			if j >= len(row) || f == "" {
				continue
			}
			if strings.TrimSpace(rec.Fields[f]) == "" {
				rec.Fields[f] = row[j]
			}
		}
		out = append(out, rec)
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
