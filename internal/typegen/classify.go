package typegen

import "github.com/mark3labs/openapi2ts/internal/spec"

// IsEnum reports whether node should become a standalone enum: a primitive
// string or numeric node with a non-empty closed set of literals, all of that
// kind. The decision depends only on the node itself.
func IsEnum(node *spec.Schema) bool {
	if node == nil || node.Kind != spec.KindPrimitive || len(node.Enum) == 0 {
		return false
	}
	switch node.Type {
	case "string":
		for _, v := range node.Enum {
			if _, ok := v.(string); !ok {
				return false
			}
		}
		return true
	case "number", "integer":
		for _, v := range node.Enum {
			if _, ok := numeric(v); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// enumCandidates returns the enums an entry contributes under useEnums: the
// entry itself, or the enum-worthy direct properties of an object entry.
func enumCandidates(name string, node *spec.Schema) []hoisted {
	if IsEnum(node) {
		return []hoisted{{name: PascalName(name), node: node}}
	}
	if node == nil || node.Kind != spec.KindObject {
		return nil
	}
	var out []hoisted
	for _, p := range node.Properties {
		if IsEnum(p.Schema) {
			out = append(out, hoisted{name: enumPropertyName(name, p.Name), property: p.Name, node: p.Schema})
		}
	}
	return out
}

type hoisted struct {
	name     string
	property string
	node     *spec.Schema
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
