package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Inventario-recon/internal/application/ports"
	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

// NewFileSource elige el adaptador según la extensión del archivo.
func NewFileSource(system entity.SourceSystem, path, encoding string) ports.ExtractSource {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return NewXLSXSource(system, path, "")
	case ".json":
		if system == entity.SourceEcommerce {
			return NewEcommerceJSONSource(path, encoding)
		}
	}
	return NewCSVSource(system, path, encoding)
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: extracto %s", domain.ErrNotFound, path)
	}
	return fmt.Errorf("abrir %s: %w", path, err)
}
