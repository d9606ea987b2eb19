package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord fila de inventario ya validada y normalizada, antes de deduplicar.
// Varias filas pueden compartir IdentityKey con códigos distintos.
type InventoryRecord struct {
	IdentityKey    string
	Name           string
	ItemCode       string   // código tal como viene del sistema
	SKU            string   // código normalizado (solo auditoría/visualización)
	MergedCodes    []string // códigos ya fusionados (al re-deduplicar un producto canónico)
	Category       string
	Quantity       decimal.Decimal
	ReorderLevel   decimal.Decimal
	RetailPrice    decimal.Decimal
	ManualOverride bool
	Notes          []string
	PhysicalCount  *decimal.Decimal // "Physical count: N" en notas; solo anotación
	FirstSeen      time.Time        // alta del producto en inventario; zero = desconocido
	LastCounted    time.Time        // último conteo físico; solo anotación, zero = desconocido
}

// Codes devuelve los códigos de origen que aporta el registro.
func (r InventoryRecord) Codes() []string {
	if len(r.MergedCodes) > 0 {
		return r.MergedCodes
	}
	if r.ItemCode == "" {
		return nil
	}
	return []string{r.ItemCode}
}

// CanonicalProduct un producto deduplicado por IdentityKey.
// Inmutable dentro de una corrida; se reconstruye completo en la siguiente.
type CanonicalProduct struct {
	IdentityKey    string
	DisplayName    string
	Category       string
	QuantityOnHand decimal.Decimal
	ReorderLevel   decimal.Decimal
	RetailPrice    decimal.Decimal
	SourceCodes    []string // ordenados, sin repetidos
	ManualOverride bool     // OR de los duplicados; no altera cantidades
	Notes          []string
	FirstSeen      time.Time
	LastCounted    time.Time // conteo más reciente del grupo
}

// BelowReorderLevel indica si el stock agregado está por debajo del punto de reorden.
func (p CanonicalProduct) BelowReorderLevel() bool {
	return p.QuantityOnHand.LessThan(p.ReorderLevel)
}

// InventoryValue valor a precio de venta del stock disponible.
func (p CanonicalProduct) InventoryValue() decimal.Decimal {
	return p.QuantityOnHand.Mul(p.RetailPrice)
}

// AsRecord convierte el producto canónico de nuevo en registro de entrada;
// deduplicar un conjunto así devuelve el mismo conjunto.
func (p CanonicalProduct) AsRecord() InventoryRecord {
	rec := InventoryRecord{
		IdentityKey:    p.IdentityKey,
		Name:           p.DisplayName,
		MergedCodes:    append([]string(nil), p.SourceCodes...),
		Category:       p.Category,
		Quantity:       p.QuantityOnHand,
		ReorderLevel:   p.ReorderLevel,
		RetailPrice:    p.RetailPrice,
		ManualOverride: p.ManualOverride,
		Notes:          append([]string(nil), p.Notes...),
		FirstSeen:      p.FirstSeen,
		LastCounted:    p.LastCounted,
	}
	if len(p.SourceCodes) > 0 {
		rec.ItemCode = p.SourceCodes[0]
	}
	return rec
}

// DuplicateGroup entrada del reporte de duplicados: una IdentityKey que agrupó
// más de una fila de inventario. Es un resultado observable que dispara una
// acción de saneamiento en el maestro de productos.
type DuplicateGroup struct {
	IdentityKey    string
	DisplayName    string
	SourceCodes    []string
	RawNames       []string // nombres originales distintos, para detectar falsos positivos
	RecordCount    int
	Quantity       decimal.Decimal
	ReorderLevel   decimal.Decimal
	RetailPrice    decimal.Decimal
	ManualOverride bool
}
