package entity

import "strings"

// SourceSystem identifica el sistema de origen de un registro.
type SourceSystem string

const (
	SourceInventory SourceSystem = "inventory"
	SourcePOS       SourceSystem = "pos"
	SourceEcommerce SourceSystem = "ecommerce"
)

// Nombres canónicos de campo. Los adaptadores de extracción traducen las
// columnas propias de cada sistema a estos nombres.
const (
	FieldName          = "name"
	FieldItemCode      = "item_code"
	FieldQuantity      = "quantity"
	FieldReorderLevel  = "reorder_level"
	FieldPrice         = "price"
	FieldDate          = "date"
	FieldStoreID       = "store_id"
	FieldPaymentMethod = "payment_method"
	FieldNotes         = "notes"
	FieldStatus        = "status"
	FieldFirstSeen     = "first_seen"
	FieldLastCountDate = "last_count_date"
	FieldOrderID       = "order_id"
	FieldCategory      = "category"
)

// RawRecord fila de un extracto tal como llegó del sistema de origen.
// Efímero: solo existe durante la ingesta y la cuarentena.
type RawRecord struct {
	Source SourceSystem
	Line   int // número de fila en el extracto (1 = primera fila de datos)
	Fields map[string]string
}

// Get devuelve el valor del campo sin espacios laterales ("" si no existe).
func (r RawRecord) Get(field string) string {
	return strings.TrimSpace(r.Fields[field])
}

// Has indica si el campo existe y no está en blanco.
func (r RawRecord) Has(field string) bool {
	return r.Get(field) != ""
}
