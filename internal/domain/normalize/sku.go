package normalize

import (
	"sort"
	"strings"
)

// DefaultSKUPrefixes prefijos de origen que se eliminan de los códigos.
var DefaultSKUPrefixes = []string{"SKU-", "SKU", "PROD-", "PROD", "ITEM-", "ITEM", "ECOM-"}

// SKU normaliza un código de producto para mostrarlo y auditarlo.
// No es la clave de cruce entre sistemas: los códigos no son compartidos.
//
//	"sku-00123" -> "123", "SKU12345A" -> "12345A", " 0042 " -> "42"
func SKU(raw string) string {
	return SKUWithPrefixes(raw, DefaultSKUPrefixes)
}

// SKUWithPrefixes como SKU pero con una lista de prefijos propia del cliente.
// Se prueba primero el prefijo más largo.
func SKUWithPrefixes(raw string, prefixes []string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if s == "" {
		return ""
	}

	ordered := make([]string, len(prefixes))
	for i, p := range prefixes {
		ordered[i] = strings.ToUpper(p)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	for _, p := range ordered {
		if p != "" && strings.HasPrefix(s, p) && len(s) > len(p) {
			s = s[len(p):]
			break
		}
	}

	if isDigits(s) {
		s = strings.TrimLeft(s, "0")
		if s == "" {
			s = "0"
		}
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PaymentMethod unifica mayúsculas del medio de pago ("card " -> "CARD").
func PaymentMethod(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
