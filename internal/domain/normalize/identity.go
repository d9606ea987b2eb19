// Package normalize canonicaliza los campos de identidad que llegan en texto libre
// (nombres de producto, fechas, códigos SKU) para que sean comparables entre sistemas.
// Todas las funciones son puras y seguras para uso concurrente.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Identity deriva la Identity Key de un nombre de producto: plegado de mayúsculas,
// sin diacríticos, solo letras, dígitos y espacios simples.
// Es determinista e idempotente: Identity(Identity(x)) == Identity(x).
func Identity(raw string) string {
	if raw == "" {
		return ""
	}
	// El plegado va antes de quitar marcas: algunas letras (İ) pliegan a letra + marca combinante.
	folded := cases.Fold().String(raw)

	// transform.Chain guarda estado: se construye por llamada.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, folded)
	if err != nil {
		stripped = folded
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case isElided(r):
			// "men's" -> "mens"
		default:
			pendingSpace = true
		}
	}
	return b.String()
}

// PackNamePrefixes prefijos de empaque que algunos sistemas anteponen al nombre.
var PackNamePrefixes = []string{"set of", "pack of", "box of"}

// IdentityWithPrefixes como Identity, quitando además los prefijos iniciales de la
// lista ("Set of Large Lamp" -> "large lamp"). Se quitan mientras alguno coincida,
// así el resultado sigue siendo idempotente. Nunca deja la clave vacía.
func IdentityWithPrefixes(raw string, prefixes []string) string {
	key := Identity(raw)
	if key == "" || len(prefixes) == 0 {
		return key
	}
	keys := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if k := Identity(p); k != "" {
			keys = append(keys, k+" ")
		}
	}
	for stripped := true; stripped; {
		stripped = false
		for _, p := range keys {
			if strings.HasPrefix(key, p) && len(key) > len(p) {
				key = key[len(p):]
				stripped = true
			}
		}
	}
	return key
}

// isElided runas que se eliminan sin separar palabras.
func isElided(r rune) bool {
	switch r {
	case '\'', '’', '‘', '`', '´':
		return true
	}
	return false
}
