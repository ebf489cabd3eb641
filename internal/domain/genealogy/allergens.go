package genealogy

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// UnionAllergens devuelve la unión ordenada de los alérgenos de varios lotes.
// Es una operación de conjunto: no depende del orden ni de repeticiones.
// Las etiquetas se normalizan con case folding Unicode ("Sésamo" == "SÉSAMO").
func UnionAllergens(sets ...[]string) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, a := range set {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			seen[fold.String(a)] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
