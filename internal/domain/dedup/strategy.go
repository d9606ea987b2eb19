package dedup

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/domain"
)

// Aggregator regla de negocio que pliega los valores de un campo dentro de un grupo de duplicados.
// Recibe al menos un valor.
type Aggregator func(values []decimal.Decimal) decimal.Decimal

// Sum stock físico repartido entre códigos duplicados: se suma para no subcontar.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Max el umbral más alto (conservador) gobierna.
func Max(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Max(values[0], values[1:]...)
}

// Min el menor valor del grupo.
func Min(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Min(values[0], values[1:]...)
}

// Mean promedio simple, sin caso especial para valores iguales.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return Sum(values).Div(decimal.NewFromInt(int64(len(values))))
}

var registry = map[string]Aggregator{
	"sum":  Sum,
	"max":  Max,
	"min":  Min,
	"mean": Mean,
}

// Lookup devuelve la estrategia registrada con ese nombre.
func Lookup(name string) (Aggregator, error) {
	agg, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (disponibles: %v)", domain.ErrUnknownRule, name, Names())
	}
	return agg, nil
}

// Names nombres de estrategias disponibles, ordenados.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Policy estrategia por campo. Un adaptador de cliente puede reemplazar una sola
// regla sin tocar el pipeline.
type Policy struct {
	Quantity     Aggregator
	ReorderLevel Aggregator
	Price        Aggregator
}

// DefaultPolicy cantidad = suma, punto de reorden = máximo, precio = promedio.
func DefaultPolicy() Policy {
	return Policy{Quantity: Sum, ReorderLevel: Max, Price: Mean}
}

// PolicyFromNames construye una política a partir de los nombres configurados.
func PolicyFromNames(quantity, reorder, price string) (Policy, error) {
	q, err := Lookup(quantity)
	if err != nil {
		return Policy{}, fmt.Errorf("cantidad: %w", err)
	}
	r, err := Lookup(reorder)
	if err != nil {
		return Policy{}, fmt.Errorf("punto de reorden: %w", err)
	}
	p, err := Lookup(price)
	if err != nil {
		return Policy{}, fmt.Errorf("precio: %w", err)
	}
	return Policy{Quantity: q, ReorderLevel: r, Price: p}, nil
}
