package dedup_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/dedup"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func record(key, name, code, qty, reorder, price string) entity.InventoryRecord {
	return entity.InventoryRecord{
		IdentityKey:  key,
		Name:         name,
		ItemCode:     code,
		Quantity:     d(qty),
		ReorderLevel: d(reorder),
		RetailPrice:  d(price),
	}
}

// "large lamp" con códigos de cantidades 10 y 15 y reorden 5 y 8 → 25 y 8.
func TestDeduplicate_SumaCantidadYMaximoReorden(t *testing.T) {
	recs := []entity.InventoryRecord{
		record("large lamp", "Large Lamp", "SKU-1001", "10", "5", "40"),
		record("large lamp", "LARGE LAMP", "SKU-2001", "15", "8", "50"),
		record("desk fan", "Desk Fan", "SKU-3001", "4", "2", "25"),
	}

	products, dups := dedup.Deduplicate(recs, dedup.DefaultPolicy())

	require.Len(t, products, 2)
	lamp := products[1]
	assert.Equal(t, "large lamp", lamp.IdentityKey)
	assert.True(t, lamp.QuantityOnHand.Equal(d("25")), "cantidad agregada = suma")
	assert.True(t, lamp.ReorderLevel.Equal(d("8")), "reorden agregado = máximo")
	assert.True(t, lamp.RetailPrice.Equal(d("45")), "precio agregado = promedio")
	assert.Equal(t, []string{"SKU-1001", "SKU-2001"}, lamp.SourceCodes)
	assert.Equal(t, "Large Lamp", lamp.DisplayName)

	require.Len(t, dups, 1)
	assert.Equal(t, "large lamp", dups[0].IdentityKey)
	assert.Equal(t, []string{"SKU-1001", "SKU-2001"}, dups[0].SourceCodes)
	assert.Equal(t, []string{"Large Lamp", "LARGE LAMP"}, dups[0].RawNames)
	assert.Equal(t, 2, dups[0].RecordCount)
	assert.True(t, dups[0].Quantity.Equal(d("25")))
	assert.True(t, dups[0].ReorderLevel.Equal(d("8")))
}

func TestDeduplicate_PropiedadSumaYMaximoPorGrupo(t *testing.T) {
	recs := []entity.InventoryRecord{
		record("a", "A", "1", "3", "1", "10"),
		record("a", "A", "2", "7", "9", "10"),
		record("a", "A", "3", "0", "4", "10"),
		record("b", "B", "4", "11", "2", "5"),
		record("b", "B", "5", "1", "6", "7"),
	}
	products, _ := dedup.Deduplicate(recs, dedup.DefaultPolicy())

	for _, p := range products {
		var qty []decimal.Decimal
		var reorder []decimal.Decimal
		for _, r := range recs {
			if r.IdentityKey == p.IdentityKey {
				qty = append(qty, r.Quantity)
				reorder = append(reorder, r.ReorderLevel)
			}
		}
		assert.True(t, p.QuantityOnHand.Equal(dedup.Sum(qty)), "clave %s", p.IdentityKey)
		assert.True(t, p.ReorderLevel.Equal(dedup.Max(reorder)), "clave %s", p.IdentityKey)
	}
}

// Solo difiere el precio: se usa el promedio igualmente.
func TestDeduplicate_SoloDifierePrecioUsaPromedio(t *testing.T) {
	recs := []entity.InventoryRecord{
		record("mug", "Mug", "M1", "5", "2", "10"),
		record("mug", "Mug", "M2", "5", "2", "13"),
	}
	products, _ := dedup.Deduplicate(recs, dedup.DefaultPolicy())
	require.Len(t, products, 1)
	assert.True(t, products[0].RetailPrice.Equal(d("11.5")))
}

func TestDeduplicate_OverrideEsORYNoAlteraCantidades(t *testing.T) {
	a := record("rug", "Rug", "R1", "4", "1", "99")
	b := record("rug", "Rug", "R2", "6", "1", "99")
	b.ManualOverride = true
	b.Notes = []string{"Physical count: 2 (system wrong)"}

	products, dups := dedup.Deduplicate([]entity.InventoryRecord{a, b}, dedup.DefaultPolicy())
	require.Len(t, products, 1)
	assert.True(t, products[0].ManualOverride)
	assert.True(t, products[0].QuantityOnHand.Equal(d("10")), "el override anota, no sustituye")
	assert.Equal(t, []string{"Physical count: 2 (system wrong)"}, products[0].Notes)
	assert.True(t, dups[0].ManualOverride)
}

func TestDeduplicate_FirstSeenEsLaMasAntigua(t *testing.T) {
	a := record("rug", "Rug", "R1", "4", "1", "99")
	a.FirstSeen = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	b := record("rug", "Rug", "R2", "6", "1", "99")
	b.FirstSeen = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := record("rug", "Rug", "R3", "1", "1", "99")

	products, _ := dedup.Deduplicate([]entity.InventoryRecord{a, b, c}, dedup.DefaultPolicy())
	assert.Equal(t, b.FirstSeen, products[0].FirstSeen)
}

func TestDeduplicate_Idempotente(t *testing.T) {
	recs := []entity.InventoryRecord{
		record("large lamp", "Large Lamp", "SKU-1001", "10", "5", "40"),
		record("large lamp", "Large Lamp", "SKU-2001", "15", "8", "50"),
		record("desk fan", "Desk Fan", "SKU-3001", "4", "2", "25"),
	}
	first, _ := dedup.Deduplicate(recs, dedup.DefaultPolicy())

	again := make([]entity.InventoryRecord, 0, len(first))
	for _, p := range first {
		again = append(again, p.AsRecord())
	}
	second, dups := dedup.Deduplicate(again, dedup.DefaultPolicy())

	assert.Empty(t, dups, "un conjunto ya deduplicado no tiene duplicados")
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].IdentityKey, second[i].IdentityKey)
		assert.Equal(t, first[i].DisplayName, second[i].DisplayName)
		assert.Equal(t, first[i].SourceCodes, second[i].SourceCodes)
		assert.Equal(t, first[i].ManualOverride, second[i].ManualOverride)
		assert.True(t, first[i].QuantityOnHand.Equal(second[i].QuantityOnHand))
		assert.True(t, first[i].ReorderLevel.Equal(second[i].ReorderLevel))
		assert.True(t, first[i].RetailPrice.Equal(second[i].RetailPrice))
	}
}

func TestDeduplicate_MismoCodigoRepetidoNoEsDuplicado(t *testing.T) {
	recs := []entity.InventoryRecord{
		record("desk fan", "Desk Fan", "SKU-3001", "4", "2", "25"),
		record("desk fan", "DESK FAN", "SKU-3001", "1", "3", "25"),
		record("rug", "Rug", "R1", "2", "1", "99"),
		record("rug", "Rug", "R2", "3", "1", "99"),
	}

	products, dups := dedup.Deduplicate(recs, dedup.DefaultPolicy())

	require.Len(t, products, 2)
	assert.True(t, products[0].QuantityOnHand.Equal(d("5")), "las filas se pliegan igual")
	assert.Equal(t, []string{"SKU-3001"}, products[0].SourceCodes)
	require.Len(t, dups, 1, "solo las claves con más de un código distinto se reportan")
	assert.Equal(t, "rug", dups[0].IdentityKey)
}

func TestDeduplicate_EntradaVacia(t *testing.T) {
	products, dups := dedup.Deduplicate(nil, dedup.DefaultPolicy())
	assert.NotNil(t, products)
	assert.NotNil(t, dups)
	assert.Empty(t, products)
}

// ── Estrategias ───────────────────────────────────────────────────────────────

func TestPolicyFromNames_ReemplazaUnaRegla(t *testing.T) {
	policy, err := dedup.PolicyFromNames("sum", "min", "mean")
	require.NoError(t, err)

	recs := []entity.InventoryRecord{
		record("lamp", "Lamp", "L1", "10", "5", "40"),
		record("lamp", "Lamp", "L2", "15", "8", "50"),
	}
	products, _ := dedup.Deduplicate(recs, policy)
	assert.True(t, products[0].ReorderLevel.Equal(d("5")))
	assert.True(t, products[0].QuantityOnHand.Equal(d("25")))
}

func TestLookup_ReglaDesconocida(t *testing.T) {
	_, err := dedup.Lookup("median")
	assert.ErrorIs(t, err, domain.ErrUnknownRule)

	_, err = dedup.PolicyFromNames("sum", "max", "mode")
	assert.ErrorIs(t, err, domain.ErrUnknownRule)
}

func TestEstrategias(t *testing.T) {
	vals := []decimal.Decimal{d("2"), d("9"), d("4")}
	assert.True(t, dedup.Sum(vals).Equal(d("15")))
	assert.True(t, dedup.Max(vals).Equal(d("9")))
	assert.True(t, dedup.Min(vals).Equal(d("2")))
	assert.True(t, dedup.Mean(vals).Equal(d("5")))
	assert.Equal(t, []string{"max", "mean", "min", "sum"}, dedup.Names())
}
