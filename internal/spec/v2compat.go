package spec

import "strings"

var v2Methods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true,
}

// repairV2Operations rewrites Swagger 2.0 operations that openapi2conv
// rejects, in place:
//   - several body parameters are merged into one object-typed body;
//   - body parameters mixed with formData become formData fields and the
//     operation consumes multipart/form-data.
//
// Only operations are touched; definitions, parameters and responses keep
// their shape. It reports whether anything changed.
func repairV2Operations(root map[string]any) bool {
	paths, _ := root["paths"].(map[string]any)
	changed := false
	for _, item := range paths {
		ops, _ := item.(map[string]any)
		for method, raw := range ops {
			if !v2Methods[strings.ToLower(method)] {
				continue
			}
			op, _ := raw.(map[string]any)
			if op != nil && repairV2Operation(op) {
				changed = true
			}
		}
	}
	return changed
}

func repairV2Operation(op map[string]any) bool {
	params, _ := op["parameters"].([]any)
	var bodies, others []map[string]any
	hasFormData := false
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		switch strings.ToLower(stringField(pm, "in")) {
		case "body":
			bodies = append(bodies, pm)
			continue
		case "formdata":
			hasFormData = true
		}
		others = append(others, pm)
	}

	switch {
	case len(bodies) == 0:
		return false
	case hasFormData:
		out := make([]any, 0, len(params))
		for _, p := range params {
			pm, _ := p.(map[string]any)
			if pm == nil {
				continue
			}
			if strings.EqualFold(stringField(pm, "in"), "body") {
				pm = bodyAsFormField(pm)
			}
			out = append(out, pm)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		for _, c := range consumes {
			if c == "multipart/form-data" {
				return true
			}
		}
		op["consumes"] = append(consumes, "multipart/form-data")
		return true
	case len(bodies) > 1:
		props := map[string]any{}
		var required []any
		for _, b := range bodies {
			name := fieldName(b)
			props[name] = paramSchema(b)
			if r, _ := b["required"].(bool); r {
				required = append(required, name)
			}
		}
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		out := []any{map[string]any{"in": "body", "name": "body", "schema": schema}}
		for _, o := range others {
			out = append(out, o)
		}
		op["parameters"] = out
		return true
	}
	return false
}

// paramSchema returns the body schema, synthesising one from type/items/format.
func paramSchema(pm map[string]any) map[string]any {
	if schema, ok := pm["schema"].(map[string]any); ok {
		return schema
	}
	out := map[string]any{"type": "string"}
	for _, key := range []string{"type", "items", "format"} {
		if v, ok := pm[key]; ok {
			out[key] = v
		}
	}
	return out
}

func bodyAsFormField(pm map[string]any) map[string]any {
	out := map[string]any{"in": "formData", "name": fieldName(pm)}
	if desc := stringField(pm, "description"); desc != "" {
		out["description"] = desc
	}
	if r, ok := pm["required"].(bool); ok {
		out["required"] = r
	}
	schema := paramSchema(pm)
	typ, _ := schema["type"].(string)
	if typ == "" || typ == "object" {
		// formData cannot carry objects or references.
		typ = "string"
	}
	out["type"] = typ
	if items, ok := schema["items"]; ok && typ == "array" {
		out["items"] = items
	}
	if format := stringField(schema, "format"); format != "" {
		out["format"] = format
	}
	return out
}

func fieldName(pm map[string]any) string {
	if name := stringField(pm, "name"); name != "" {
		return name
	}
	return "field"
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
