package pipeline

import (
	"slices"
	"strings"

	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/domain/normalize"
	"github.com/jhoicas/Inventario-recon/internal/domain/quality"
)

// orderCounts pedidos e-commerce aceptados que no son venta.
type orderCounts struct {
	orders   int
	nonSale  int
	refunded int
}

// quarantineEmptyKey aparta los registros cuyo nombre no produce Identity Key
// (solo puntuación, por ejemplo). Se reportan como valor inválido del nombre.
func quarantineEmptyKey(res *quality.Result, identity func(string) string) {
	kept := res.Accepted[:0]
	for _, a := range res.Accepted {
		if identity(a.Record.Get(entity.FieldName)) == "" {
			res.Quarantined = append(res.Quarantined, entity.QuarantinedRecord{
				Record:    a.Record,
				Violation: entity.ViolationInvalidValue,
				Field:     entity.FieldName,
				Value:     a.Record.Get(entity.FieldName),
			})
			continue
		}
		kept = append(kept, a)
	}
	res.Accepted = kept
	res.Report = quality.BuildReport(res.Report.Source, res.Report.TotalRecords, res.Quarantined, res.Cleared)
}

func toInventoryRecords(accepted []quality.Accepted, identity func(string) string) []entity.InventoryRecord {
	out := make([]entity.InventoryRecord, 0, len(accepted))
	for _, a := range accepted {
		r := a.Record
		rec := entity.InventoryRecord{
			IdentityKey:  identity(r.Get(entity.FieldName)),
			Name:         r.Get(entity.FieldName),
			ItemCode:     r.Get(entity.FieldItemCode),
			SKU:          normalize.SKU(r.Get(entity.FieldItemCode)),
			Category:     r.Get(entity.FieldCategory),
			Quantity:     a.Number(entity.FieldQuantity),
			ReorderLevel: a.Number(entity.FieldReorderLevel),
			RetailPrice:  a.Number(entity.FieldPrice),
			FirstSeen:    a.OptionalDate(entity.FieldFirstSeen),
			LastCounted:  a.OptionalDate(entity.FieldLastCountDate),
		}
		if note := r.Get(entity.FieldNotes); note != "" {
			ann := normalize.ParseInventoryNotes(note)
			rec.Notes = []string{note}
			rec.ManualOverride = ann.IsOverride()
			rec.PhysicalCount = ann.PhysicalCount
		}
		out = append(out, rec)
	}
	return out
}

func toTransaction(a quality.Accepted, ch entity.Channel, identity func(string) string) entity.TransactionRecord {
	r := a.Record
	tx := entity.TransactionRecord{
		IdentityKey:   identity(r.Get(entity.FieldName)),
		ProductName:   r.Get(entity.FieldName),
		SKU:           normalize.SKU(r.Get(entity.FieldItemCode)),
		Source:        r.Source,
		Line:          r.Line,
		Date:          a.Date,
		Quantity:      a.Number(entity.FieldQuantity),
		UnitPrice:     a.Number(entity.FieldPrice),
		Channel:       ch,
		PaymentMethod: normalize.PaymentMethod(r.Get(entity.FieldPaymentMethod)),
	}
	if store := r.Get(entity.FieldStoreID); store != "" {
		tx.StoreID = &store
	}
	return tx
}

func posTransactions(accepted []quality.Accepted, identity func(string) string) []entity.TransactionRecord {
	out := make([]entity.TransactionRecord, 0, len(accepted))
	for _, a := range accepted {
		out = append(out, toTransaction(a, entity.ChannelInStore, identity))
	}
	return out
}

// ecommerceTransactions solo los pedidos completados o enviados son venta.
func ecommerceTransactions(accepted []quality.Accepted, identity func(string) string) ([]entity.TransactionRecord, orderCounts) {
	out := make([]entity.TransactionRecord, 0, len(accepted))
	counts := orderCounts{orders: len(accepted)}
	for _, a := range accepted {
		status := strings.ToLower(a.Record.Get(entity.FieldStatus))
		if !slices.Contains(saleStatuses, status) {
			counts.nonSale++
			if status == refundStatus {
				counts.refunded++
			}
			continue
		}
		out = append(out, toTransaction(a, entity.ChannelOnline, identity))
	}
	return out, counts
}
