package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel canal de venta de una transacción.
type Channel string

const (
	ChannelInStore Channel = "in_store"
	ChannelOnline  Channel = "online"
)

// TransactionRecord venta (o devolución, si Quantity < 0) normalizada.
// Date ya es una fecha de calendario UTC y pasó la ventana de validez.
type TransactionRecord struct {
	IdentityKey   string
	ProductName   string
	SKU           string
	Source        SourceSystem
	Line          int
	Date          time.Time
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Channel       Channel
	StoreID       *string
	PaymentMethod string
}

// IsReturn indica una devolución (cantidad negativa).
func (t TransactionRecord) IsReturn() bool {
	return t.Quantity.IsNegative()
}

// LineTotal cantidad * precio unitario.
func (t TransactionRecord) LineTotal() decimal.Decimal {
	return t.Quantity.Mul(t.UnitPrice)
}
