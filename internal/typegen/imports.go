package typegen

import "github.com/mark3labs/openapi2ts/internal/spec"

// Import is one `import type { ... } from "./<Unit>"` line.
type Import struct {
	Unit    string
	Section spec.Section
	Names   []string
}

// Aggregate computes the imports a unit needs: one entry per referenced
// foreign section, each naming every referenced declaration once. Units and
// names keep first-seen order across decls so output is stable between runs.
func Aggregate(decls []*Declaration, current spec.Section, units map[spec.Section]string) []Import {
	var out []Import
	index := make(map[spec.Section]int)
	seen := make(map[Reference]bool)
	for _, d := range decls {
		for _, r := range d.References {
			if r.Section == current || seen[r] {
				continue
			}
			seen[r] = true
			i, ok := index[r.Section]
			if !ok {
				i = len(out)
				index[r.Section] = i
				out = append(out, Import{Unit: units[r.Section], Section: r.Section})
			}
			out[i].Names = append(out[i].Names, r.Name)
		}
	}
	return out
}
