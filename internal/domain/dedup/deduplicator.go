// Package dedup colapsa las filas de inventario que representan el mismo producto
// lógico bajo códigos distintos en un único CanonicalProduct por Identity Key.
package dedup

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// Deduplicate agrupa por IdentityKey y pliega cada grupo con la política indicada.
// Devuelve los productos canónicos ordenados por clave y el reporte de duplicados
// (claves con más de un código de origen distinto). Registros sin IdentityKey se descartan: el filtro
// de calidad ya exige el nombre.
func Deduplicate(records []entity.InventoryRecord, policy Policy) ([]entity.CanonicalProduct, []entity.DuplicateGroup) {
	policy = policy.withDefaults()

	groups := make(map[string][]entity.InventoryRecord)
	order := make([]string, 0)
	for _, r := range records {
		if r.IdentityKey == "" {
			continue
		}
		if _, seen := groups[r.IdentityKey]; !seen {
			order = append(order, r.IdentityKey)
		}
		groups[r.IdentityKey] = append(groups[r.IdentityKey], r)
	}
	sort.Strings(order)

	products := make([]entity.CanonicalProduct, 0, len(order))
	duplicates := make([]entity.DuplicateGroup, 0)
	for _, key := range order {
		group := groups[key]
		p := fold(key, group, policy)
		products = append(products, p)

		if len(p.SourceCodes) > 1 {
			duplicates = append(duplicates, entity.DuplicateGroup{
				IdentityKey:    key,
				DisplayName:    p.DisplayName,
				SourceCodes:    p.SourceCodes,
				RawNames:       distinctNames(group),
				RecordCount:    len(group),
				Quantity:       p.QuantityOnHand,
				ReorderLevel:   p.ReorderLevel,
				RetailPrice:    p.RetailPrice,
				ManualOverride: p.ManualOverride,
			})
		}
	}
	return products, duplicates
}

func fold(key string, group []entity.InventoryRecord, policy Policy) entity.CanonicalProduct {
	qty := make([]decimal.Decimal, len(group))
	reorder := make([]decimal.Decimal, len(group))
	price := make([]decimal.Decimal, len(group))

	p := entity.CanonicalProduct{
		IdentityKey: key,
		DisplayName: group[0].Name,
		Category:    group[0].Category,
	}
	codes := make(map[string]struct{})
	for i, r := range group {
		qty[i] = r.Quantity
		reorder[i] = r.ReorderLevel
		price[i] = r.RetailPrice
		for _, c := range r.Codes() {
			codes[c] = struct{}{}
		}
		p.ManualOverride = p.ManualOverride || r.ManualOverride
		p.Notes = append(p.Notes, r.Notes...)
		if !r.FirstSeen.IsZero() && (p.FirstSeen.IsZero() || r.FirstSeen.Before(p.FirstSeen)) {
			p.FirstSeen = r.FirstSeen
		}
		if r.LastCounted.After(p.LastCounted) {
			p.LastCounted = r.LastCounted
		}
		if p.Category == "" {
			p.Category = r.Category
		}
	}

	p.QuantityOnHand = policy.Quantity(qty)
	p.ReorderLevel = policy.ReorderLevel(reorder)
	p.RetailPrice = policy.Price(price)
	p.SourceCodes = make([]string, 0, len(codes))
	for c := range codes {
		p.SourceCodes = append(p.SourceCodes, c)
	}
	sort.Strings(p.SourceCodes)
	return p
}

func distinctNames(group []entity.InventoryRecord) []string {
	seen := make(map[string]bool, len(group))
	out := make([]string, 0, len(group))
	for _, r := range group {
		if !seen[r.Name] {
			seen[r.Name] = true
			out = append(out, r.Name)
		}
	}
	return out
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.Quantity == nil {
		p.Quantity = def.Quantity
	}
	if p.ReorderLevel == nil {
		p.ReorderLevel = def.ReorderLevel
	}
	if p.Price == nil {
		p.Price = def.Price
	}
	return p
}
