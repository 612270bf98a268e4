package spec

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode builds a Document from OpenAPI v3 YAML or JSON bytes. It walks the
// yaml.Node tree directly so that every mapping keeps its declared order.
func Decode(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	n := deref(&root)
	if n != nil && n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = deref(n.Content[0])
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, errors.New("parse document: root is not a mapping")
	}

	doc := &Document{Components: make(map[Section][]Entry)}
	if info := mapValue(n, "info"); info != nil {
		doc.Title = strings.TrimSpace(scalarValue(info, "title"))
		doc.Version = strings.TrimSpace(scalarValue(info, "version"))
		doc.Description = strings.TrimSpace(scalarValue(info, "description"))
	}

	components := mapValue(n, "components")
	if components == nil {
		return doc, nil
	}
	for _, s := range Sections {
		sec, ok := mapLookup(components, string(s))
		if !ok {
			continue
		}
		entries := []Entry{}
		if sec != nil && !isNull(sec) {
			if sec.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("#/components/%s: expected a mapping", s)
			}
			for _, kv := range pairs(sec) {
				path := "#/components/" + string(s) + "/" + escapeToken(kv.key)
				entry, err := decodeEntry(s, kv.key, kv.value, path)
				if err != nil {
					return nil, err
				}
				entries = append(entries, entry)
			}
		}
		doc.Components[s] = entries
	}
	return doc, nil
}

func decodeEntry(s Section, name string, n *yaml.Node, path string) (Entry, error) {
	entry := Entry{Name: name}
	if n != nil && n.Kind == yaml.MappingNode {
		entry.Ref = scalarValue(n, "$ref")
		entry.Description = strings.TrimSpace(scalarValue(n, "description"))
	}

	switch s {
	case Schemas:
		schema, err := decodeSchema(n, path)
		if err != nil {
			return Entry{}, err
		}
		entry.Schema = schema
	case Responses, RequestBodies:
		if entry.Ref != "" {
			return entry, nil
		}
		content := mapValue(n, "content")
		if content == nil {
			return entry, nil
		}
		for _, kv := range pairs(content) {
			media := Media{ContentType: kv.key}
			if raw, ok := mapLookup(kv.value, "schema"); ok {
				schema, err := decodeSchema(raw, path+"/content/"+escapeToken(kv.key)+"/schema")
				if err != nil {
					return Entry{}, err
				}
				media.Schema = schema
			}
			entry.Content = append(entry.Content, media)
		}
		entry.Required = scalarValue(n, "required") == "true"
	case Parameters:
		if entry.Ref != "" {
			return entry, nil
		}
		entry.In = scalarValue(n, "in")
		entry.Required = scalarValue(n, "required") == "true"
		if raw, ok := mapLookup(n, "schema"); ok {
			schema, err := decodeSchema(raw, path+"/schema")
			if err != nil {
				return Entry{}, err
			}
			entry.Schema = schema
		}
	}
	return entry, nil
}

func decodeSchema(n *yaml.Node, path string) (*Schema, error) {
	n = deref(n)
	if n == nil || isNull(n) {
		return &Schema{Kind: KindAny}, nil
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!bool" {
		// JSON Schema boolean form.
		return &Schema{Kind: KindAny}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: expected a schema object", path)
	}

	s := &Schema{}
	var types []string
	for _, kv := range pairs(n) {
		v := kv.value
		switch kv.key {
		case "$ref":
			s.Ref = v.Value
		case "type":
			types = decodeTypes(v)
		case "format":
			s.Format = v.Value
		case "description":
			s.Description = strings.TrimSpace(v.Value)
		case "nullable":
			s.Nullable = v.Value == "true"
		case "enum":
			values, err := decodeLiterals(v, path+"/enum")
			if err != nil {
				return nil, err
			}
			s.Enum = values
		case "const":
			var value any
			if err := v.Decode(&value); err != nil {
				return nil, fmt.Errorf("%s/const: %w", path, err)
			}
			s.Enum = []any{value}
		case "required":
			for _, item := range v.Content {
				s.Required = append(s.Required, deref(item).Value)
			}
		case "properties":
			if isNull(v) {
				continue
			}
			if v.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%s/properties: expected a mapping", path)
			}
			for _, prop := range pairs(v) {
				child, err := decodeSchema(prop.value, path+"/properties/"+escapeToken(prop.key))
				if err != nil {
					return nil, err
				}
				s.Properties = append(s.Properties, Property{Name: prop.key, Schema: child})
			}
		case "additionalProperties":
			if v.Kind == yaml.ScalarNode && v.Value == "false" {
				continue
			}
			child, err := decodeSchema(v, path+"/additionalProperties")
			if err != nil {
				return nil, err
			}
			s.AdditionalProperties = child
		case "items":
			child, err := decodeSchema(v, path+"/items")
			if err != nil {
				return nil, err
			}
			s.Items = child
		case string(OneOf), string(AnyOf), string(AllOf):
			if s.Composition != "" {
				// Only the first composition keyword is honoured.
				continue
			}
			if v.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%s/%s: expected a sequence", path, kv.key)
			}
			s.Composition = Composition(kv.key)
			for i, item := range v.Content {
				member, err := decodeSchema(item, fmt.Sprintf("%s/%s/%d", path, kv.key, i))
				if err != nil {
					return nil, err
				}
				s.Members = append(s.Members, member)
			}
		}
	}

	if s.Ref != "" {
		return &Schema{Kind: KindRef, Ref: s.Ref, Description: s.Description}, nil
	}

	var concrete []string
	for _, t := range types {
		if t == "null" {
			s.Nullable = true
			continue
		}
		concrete = append(concrete, t)
	}
	if len(concrete) == 0 && len(types) > 0 {
		concrete = []string{"null"}
		s.Nullable = false
	}
	if len(concrete) > 1 && s.Composition == "" {
		s.Composition = AnyOf
		for _, t := range concrete {
			s.Members = append(s.Members, &Schema{Kind: KindPrimitive, Type: t})
		}
		concrete = nil
	}
	if len(concrete) == 1 {
		s.Type = concrete[0]
	}

	switch {
	case s.Composition != "":
		s.Kind = KindComposition
	case s.Type == "object" || len(s.Properties) > 0 || s.AdditionalProperties != nil:
		s.Kind = KindObject
		s.Type = "object"
	case s.Type == "array" || s.Items != nil:
		s.Kind = KindArray
		s.Type = "array"
	case s.Type != "":
		s.Kind = KindPrimitive
	case len(s.Enum) > 0:
		s.Kind = KindPrimitive
		s.Type = literalType(s.Enum)
	default:
		s.Kind = KindAny
	}
	return s, nil
}

func decodeTypes(n *yaml.Node) []string {
	n = deref(n)
	if n.Kind == yaml.SequenceNode {
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			out = append(out, deref(item).Value)
		}
		return out
	}
	return []string{n.Value}
}

func decodeLiterals(n *yaml.Node, path string) ([]any, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: expected a sequence", path)
	}
	out := make([]any, 0, len(n.Content))
	for _, item := range n.Content {
		var value any
		if err := item.Decode(&value); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, value)
	}
	return out, nil
}

// literalType infers the primitive type shared by every literal, or "".
func literalType(values []any) string {
	kind := ""
	for _, v := range values {
		var k string
		switch v.(type) {
		case string:
			k = "string"
		case int, int64, uint64, float64:
			k = "number"
		case bool:
			k = "boolean"
		default:
			return ""
		}
		if kind != "" && kind != k {
			return ""
		}
		kind = k
	}
	return kind
}

type keyValue struct {
	key   string
	value *yaml.Node
}

func pairs(n *yaml.Node) []keyValue {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]keyValue, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, keyValue{key: deref(n.Content[i]).Value, value: deref(n.Content[i+1])})
	}
	return out
}

func mapLookup(n *yaml.Node, key string) (*yaml.Node, bool) {
	for _, kv := range pairs(n) {
		if kv.key == key {
			return kv.value, true
		}
	}
	return nil, false
}

func mapValue(n *yaml.Node, key string) *yaml.Node {
	v, ok := mapLookup(n, key)
	if !ok || v == nil || v.Kind != yaml.MappingNode {
		return nil
	}
	return v
}

func scalarValue(n *yaml.Node, key string) string {
	v, ok := mapLookup(n, key)
	if !ok || v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
