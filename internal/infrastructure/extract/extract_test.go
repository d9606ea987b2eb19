package extract_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/infrastructure/extract"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "qty_on_hand", extract.NormalizeHeader(" Qty On Hand "))
	assert.Equal(t, "reorder_level", extract.NormalizeHeader("Reorder-Level"))
	assert.Equal(t, "name", extract.NormalizeHeader("\ufeffName"))
}

func TestCanonicalField_AliasPorSistema(t *testing.T) {
	assert.Equal(t, entity.FieldName, extract.CanonicalField(entity.SourceInventory, "Description"))
	assert.Equal(t, entity.FieldQuantity, extract.CanonicalField(entity.SourceInventory, "Qty On Hand"))
	assert.Equal(t, entity.FieldLastCountDate, extract.CanonicalField(entity.SourceInventory, "last_count_date"))
	assert.Equal(t, entity.FieldFirstSeen, extract.CanonicalField(entity.SourceInventory, "Date Added"))
	assert.Equal(t, entity.FieldItemCode, extract.CanonicalField(entity.SourcePOS, "SKU"))
	assert.Equal(t, entity.FieldDate, extract.CanonicalField(entity.SourceEcommerce, "order_date"))
	assert.Equal(t, "customer_email", extract.CanonicalField(entity.SourceEcommerce, "Customer Email"))
}

func TestReadCSV_POS(t *testing.T) {
	data := "date,sku,product_name,quantity,unit_price,store_id,payment_method\n" +
		"12/10/2024,SKU-0042,Large Lamp,2,45.00,S01,cash\n" +
		"\n" +
		"2024-12-14,42,\"Lamp, large\",-1,45.00,S02\n"

	recs, err := extract.ReadCSV(context.Background(), entity.SourcePOS, strings.NewReader(data), "")
	require.NoError(t, err)
	require.Len(t, recs, 2, "la fila en blanco se omite")

	assert.Equal(t, entity.SourcePOS, recs[0].Source)
	assert.Equal(t, 1, recs[0].Line)
	assert.Equal(t, "12/10/2024", recs[0].Get(entity.FieldDate))
	assert.Equal(t, "SKU-0042", recs[0].Get(entity.FieldItemCode))
	assert.Equal(t, "Large Lamp", recs[0].Get(entity.FieldName))
	assert.Equal(t, "cash", recs[0].Get(entity.FieldPaymentMethod))

	assert.Equal(t, "Lamp, large", recs[1].Get(entity.FieldName))
	assert.Equal(t, "-1", recs[1].Get(entity.FieldQuantity))
	assert.False(t, recs[1].Has(entity.FieldPaymentMethod), "columna faltante queda vacía")
}

func TestReadCSV_Latin1(t *testing.T) {
	// "Caf\xe9 Mug" en ISO-8859-1
	data := "name,qty_on_hand\nCaf\xe9 Mug,3\n"
	recs, err := extract.ReadCSV(context.Background(), entity.SourceInventory, strings.NewReader(data), "latin1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Café Mug", recs[0].Get(entity.FieldName))
}

func TestReadCSV_CodificacionDesconocida(t *testing.T) {
	_, err := extract.ReadCSV(context.Background(), entity.SourcePOS, strings.NewReader("a\n1\n"), "ebcdic")
	assert.Error(t, err)
}

func TestReadEcommerceJSON(t *testing.T) {
	data := `{
	  "export_date": "2024-12-15",
	  "platform": "shopify",
	  "orders": [
	    {"order_id": "ORD-1", "order_date": "2024-12-13T10:00:00Z", "product_id": "ECOM-000042",
	     "product_name": "Large Lamp", "quantity": 2, "unit_price": 45.5, "status": "shipped"},
	    {"order_id": "ORD-2", "order_date": "2024-12-12T10:00:00Z", "product_id": null,
	     "product_name": "Mug", "quantity": 1, "unit_price": 12, "status": "refunded", "tags": ["x"]}
	  ]
	}`
	recs, err := extract.ReadEcommerceJSON(context.Background(), strings.NewReader(data), "")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, entity.SourceEcommerce, first.Source)
	assert.Equal(t, "2024-12-13T10:00:00Z", first.Get(entity.FieldDate))
	assert.Equal(t, "ECOM-000042", first.Get(entity.FieldItemCode))
	assert.Equal(t, "2", first.Get(entity.FieldQuantity))
	assert.Equal(t, "45.5", first.Get(entity.FieldPrice))
	assert.Equal(t, "shipped", first.Get(entity.FieldStatus))
	assert.Equal(t, "shopify", first.Get("platform"))

	assert.False(t, recs[1].Has(entity.FieldItemCode))
	assert.False(t, recs[1].Has("tags"))
}

func TestReadEcommerceJSON_Malformado(t *testing.T) {
	_, err := extract.ReadEcommerceJSON(context.Background(), strings.NewReader(`{"orders": [`), "")
	assert.Error(t, err)
}

func TestXLSXSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Description", "Item Code", "Qty On Hand", "Reorder Level", "Retail Price", "Notes"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Large Lamp", "LAMP-001", 10, 5, "40", "Adj: -2 per Ana 3/4"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Ceramic Mug", "MUG-1", 0, 6, "12", ""}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src := extract.NewFileSource(entity.SourceInventory, path, "")
	require.IsType(t, &extract.XLSXSource{}, src)

	recs, err := src.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Large Lamp", recs[0].Get(entity.FieldName))
	assert.Equal(t, "LAMP-001", recs[0].Get(entity.FieldItemCode))
	assert.Equal(t, "10", recs[0].Get(entity.FieldQuantity))
	assert.Equal(t, "Adj: -2 per Ana 3/4", recs[0].Get(entity.FieldNotes))
	assert.Equal(t, 2, recs[1].Line)
}

// Las celdas con formato de fecha se leen como fecha ISO, no como el texto que muestra Excel.
func TestXLSXSource_CeldasDeFecha(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Description", "Item Code", "Qty On Hand", "Last Count Date"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Blue Chair", "CHR-1", 4}))
	require.NoError(t, f.SetCellValue(sheet, "D2", time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "D2", "D2", style))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Dusty Vase", "VASE-9", 40, "7-25-24"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := extract.NewXLSXSource(entity.SourceInventory, path, "").Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2024-07-25", recs[0].Get(entity.FieldLastCountDate))
	assert.Equal(t, "4", recs[0].Get(entity.FieldQuantity))
	assert.Equal(t, "7-25-24", recs[1].Get(entity.FieldLastCountDate), "el texto se conserva")
}

func TestNewFileSource_PorExtension(t *testing.T) {
	assert.IsType(t, &extract.CSVSource{}, extract.NewFileSource(entity.SourcePOS, "pos.csv", ""))
	assert.IsType(t, &extract.EcommerceJSONSource{}, extract.NewFileSource(entity.SourceEcommerce, "orders.json", ""))
}

func TestCSVSource_ArchivoInexistente(t *testing.T) {
	_, err := extract.NewCSVSource(entity.SourcePOS, filepath.Join(t.TempDir(), "nope.csv"), "").Extract(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
