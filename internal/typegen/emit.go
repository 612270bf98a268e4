package typegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/openapi2ts/internal/spec"
)

// Context is the emission context of one entry.
type Context struct {
	Document *spec.Document
	// Section is the section being compiled; it owns every emitted declaration.
	Section  spec.Section
	UseEnums bool
}

// Emit converts one named node into declarations.
//
// With UseEnums an enum-worthy node yields exactly one enum declaration, and
// an object node yields the enums hoisted from its enum-worthy properties
// followed by its type alias. Otherwise a single type alias is emitted and
// enum values stay inline as literal unions.
//
// References to whole entries are emitted by name and recorded on the
// declaration with the section that declares them; references into an entry
// are inlined. A reference that does not resolve fails the call.
func Emit(name string, node *spec.Schema, ctx Context) ([]*Declaration, error) {
	if node == nil {
		node = &spec.Schema{Kind: spec.KindAny}
	}
	declName := PascalName(name)
	if ctx.UseEnums && IsEnum(node) {
		return []*Declaration{enumDeclaration(declName, node, ctx.Section)}, nil
	}

	e := &emitter{ctx: ctx, inlining: map[string]bool{}, seen: map[Reference]bool{}}
	var (
		decls []*Declaration
		t     TypeExpr
		err   error
	)
	if ctx.UseEnums && node.Kind == spec.KindObject {
		hoist := make(map[string]string)
		for _, h := range enumCandidates(name, node) {
			decls = append(decls, enumDeclaration(h.name, h.node, ctx.Section))
			hoist[h.property] = h.name
		}
		t, err = e.object(node, hoist)
		if err == nil && node.Nullable {
			t = nullable(t)
		}
	} else {
		t, err = e.typeOf(node)
	}
	if err != nil {
		return nil, err
	}
	return append(decls, &Declaration{
		Name:        declName,
		Kind:        TypeAlias,
		Section:     ctx.Section,
		Description: node.Description,
		Type:        t,
		References:  e.refs,
	}), nil
}

type emitter struct {
	ctx Context
	// inlining guards nested references that lead back to themselves.
	inlining map[string]bool
	refs     []Reference
	seen     map[Reference]bool
}

func (e *emitter) reference(section spec.Section, name string) {
	r := Reference{Section: section, Name: name}
	if !e.seen[r] {
		e.seen[r] = true
		e.refs = append(e.refs, r)
	}
}

func (e *emitter) typeOf(node *spec.Schema) (TypeExpr, error) {
	if node == nil {
		return KeywordUnknown, nil
	}
	var (
		t   TypeExpr
		err error
	)
	switch node.Kind {
	case spec.KindRef:
		t, err = e.ref(node.Ref)
	case spec.KindPrimitive:
		t = primitive(node)
	case spec.KindObject:
		t, err = e.object(node, nil)
	case spec.KindArray:
		var elem TypeExpr
		elem, err = e.typeOf(node.Items)
		t = ArrayType{Elem: elem}
	case spec.KindComposition:
		t, err = e.composition(node)
	default:
		t = KeywordUnknown
	}
	if err != nil {
		return nil, err
	}
	if node.Nullable {
		t = nullable(t)
	}
	return t, nil
}

func (e *emitter) ref(ref string) (TypeExpr, error) {
	resolved, err := e.ctx.Document.Resolve(ref)
	if err != nil {
		return nil, err
	}
	p := resolved.Pointer
	if p.Nested() {
		if e.inlining[ref] {
			return KeywordUnknown, nil
		}
		e.inlining[ref] = true
		defer delete(e.inlining, ref)
		return e.typeOf(resolved.Schema)
	}
	if p.Section != spec.Schemas {
		// Reference entries of body and parameter sections get no
		// declaration of their own; name their target instead.
		if entry, ok := e.ctx.Document.Lookup(p.Section, p.Name); ok && entry.Ref != "" {
			return e.ref(entry.Ref)
		}
	}
	name := PascalName(p.Name)
	e.reference(p.Section, name)
	t := TypeExpr(NamedRef{Section: p.Section, Name: name})
	if e.ctx.UseEnums && p.Section == spec.Schemas && resolved.Schema != nil &&
		resolved.Schema.Nullable && IsEnum(resolved.Schema) {
		// An enum declaration cannot include null; add it where it is used.
		t = nullable(t)
	}
	return t, nil
}

// object renders an object node. hoist maps property names to the enum
// declarations that replace their inline type.
func (e *emitter) object(node *spec.Schema, hoist map[string]string) (TypeExpr, error) {
	fields := make([]Field, 0, len(node.Properties))
	for _, p := range node.Properties {
		var (
			t   TypeExpr
			err error
		)
		if enumName, ok := hoist[p.Name]; ok {
			e.reference(e.ctx.Section, enumName)
			t = NamedRef{Section: e.ctx.Section, Name: enumName}
			if p.Schema.Nullable {
				t = nullable(t)
			}
		} else if t, err = e.typeOf(p.Schema); err != nil {
			return nil, err
		}
		var description string
		if p.Schema != nil {
			description = p.Schema.Description
		}
		fields = append(fields, Field{
			Name:        p.Name,
			Optional:    !node.IsRequired(p.Name),
			Description: description,
			Type:        t,
		})
	}

	var record TypeExpr
	if node.AdditionalProperties != nil {
		value, err := e.typeOf(node.AdditionalProperties)
		if err != nil {
			return nil, err
		}
		record = RecordType{Value: value}
	}

	switch {
	case len(fields) == 0 && record != nil:
		return record, nil
	case len(fields) == 0:
		return RecordType{Value: KeywordAny}, nil
	case record != nil:
		return Intersection{Members: []TypeExpr{ObjectType{Fields: fields}, record}}, nil
	}
	return ObjectType{Fields: fields}, nil
}

// composition keeps members in declared order.
func (e *emitter) composition(node *spec.Schema) (TypeExpr, error) {
	members := make([]TypeExpr, 0, len(node.Members)+1)
	for _, m := range node.Members {
		t, err := e.typeOf(m)
		if err != nil {
			return nil, err
		}
		members = append(members, t)
	}

	var own TypeExpr
	if len(node.Properties) > 0 || node.AdditionalProperties != nil {
		t, err := e.object(node, nil)
		if err != nil {
			return nil, err
		}
		own = t
	}

	if node.Composition == spec.AllOf {
		if own != nil {
			members = append(members, own)
		}
		return combine(members, false), nil
	}
	t := combine(members, true)
	if own != nil {
		return Intersection{Members: []TypeExpr{own, t}}, nil
	}
	return t, nil
}

func combine(members []TypeExpr, union bool) TypeExpr {
	switch {
	case len(members) == 0:
		return KeywordUnknown
	case len(members) == 1:
		return members[0]
	case union:
		return Union{Members: members}
	}
	return Intersection{Members: members}
}

func primitive(node *spec.Schema) TypeExpr {
	if len(node.Enum) > 0 {
		members := make([]TypeExpr, 0, len(node.Enum))
		for _, v := range node.Enum {
			members = append(members, Literal{Value: v})
		}
		return combine(members, true)
	}
	switch node.Type {
	case "string":
		if node.Format == "binary" {
			return KeywordBlob
		}
		return KeywordString
	case "integer", "number":
		return KeywordNumber
	case "boolean":
		return KeywordBoolean
	case "null":
		return KeywordNull
	}
	return KeywordUnknown
}

func nullable(t TypeExpr) TypeExpr {
	switch v := t.(type) {
	case Keyword:
		if v == KeywordNull || v == KeywordUnknown || v == KeywordAny {
			return t
		}
	case Union:
		for _, m := range v.Members {
			if m == KeywordNull {
				return t
			}
		}
		return Union{Members: append(append([]TypeExpr{}, v.Members...), KeywordNull)}
	}
	return Union{Members: []TypeExpr{t, KeywordNull}}
}

func enumDeclaration(name string, node *spec.Schema, section spec.Section) *Declaration {
	used := make(map[string]bool, len(node.Enum))
	members := make([]EnumMember, 0, len(node.Enum))
	for _, v := range node.Enum {
		base := enumMemberName(v)
		member := base
		for i := 2; used[member]; i++ {
			member = fmt.Sprintf("%s_%d", base, i)
		}
		used[member] = true
		members = append(members, EnumMember{Name: member, Value: v})
	}
	return &Declaration{
		Name:        name,
		Kind:        Enum,
		Section:     section,
		Description: node.Description,
		Members:     members,
	}
}

func enumMemberName(v any) string {
	if s, ok := v.(string); ok {
		return PascalName(s)
	}
	n, _ := numeric(v)
	text := strconv.FormatFloat(n, 'f', -1, 64)
	text = strings.Replace(text, "-", "Minus", 1)
	return "Value" + strings.ReplaceAll(text, ".", "_")
}
