package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jhoicas/Inventario-recon/internal/application/ports"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// ecommerceExport forma del archivo exportado por la plataforma.
type ecommerceExport struct {
	ExportDate string                       `json:"export_date"`
	Platform   string                       `json:"platform"`
	Orders     []map[string]json.RawMessage `json:"orders"`
}

// EcommerceJSONSource exportación de pedidos del e-commerce.
type EcommerceJSONSource struct {
	path     string
	encoding string
}

var _ ports.ExtractSource = (*EcommerceJSONSource)(nil)

// NewEcommerceJSONSource construye la fuente.
func NewEcommerceJSONSource(path, encoding string) *EcommerceJSONSource {
	return &EcommerceJSONSource{path: path, encoding: encoding}
}

// System implementa ports.ExtractSource.
func (s *EcommerceJSONSource) System() entity.SourceSystem { return entity.SourceEcommerce }

// Extract lee el archivo completo.
func (s *EcommerceJSONSource) Extract(ctx context.Context) ([]entity.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, openError(s.path, err)
	}
	defer f.Close()
	return ReadEcommerceJSON(ctx, f, s.encoding)
}

// ReadEcommerceJSON convierte cada pedido en un registro crudo. Los valores
// numéricos se conservan como texto; el filtro de calidad los interpreta.
// export_date y platform se copian a cada registro como metadatos.
func ReadEcommerceJSON(ctx context.Context, r io.Reader, encoding string) ([]entity.RawRecord, error) {
	dr, err := decodingReader(r, encoding)
	if err != nil {
		return nil, err
	}
	var exp ecommerceExport
	if err := json.NewDecoder(dr).Decode(&exp); err != nil {
		return nil, fmt.Errorf("json ecommerce: %w", err)
	}

	out := make([]entity.RawRecord, 0, len(exp.Orders))
	for i, o := range exp.Orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := entity.RawRecord{
			Source: entity.SourceEcommerce,
			Line:   i + 1,
			Fields: map[string]string{"export_date": exp.ExportDate, "platform": exp.Platform},
		}
		for k, raw := range o {
			field := CanonicalField(entity.SourceEcommerce, k)
			if strings.TrimSpace(rec.Fields[field]) == "" {
				rec.Fields[field] = scalarString(raw)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// scalarString texto de un valor JSON escalar; null y objetos quedan vacíos.
func scalarString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "" || s == "null":
		return ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return ""
		}
		return str
	case strings.HasPrefix(s, "{") || strings.HasPrefix(s, "["):
		return ""
	default:
		return s // número o booleano tal cual
	}
}
