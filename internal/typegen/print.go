package typegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Watermark is the tool name written at the top of every unit.
const Watermark = "Generated by openapi2ts"

// Render prints a unit as TypeScript source. version is the document version
// recorded in the header; it is omitted when empty.
func Render(unit *OutputUnit, version string) []byte {
	var b bytes.Buffer
	b.WriteString("/**\n * " + Watermark + "\n")
	if version != "" {
		b.WriteString(" *\n * @version " + escapeComment(version) + "\n")
	}
	b.WriteString(" */\n")

	for _, imp := range unit.Imports {
		fmt.Fprintf(&b, "import type { %s } from %s;\n", strings.Join(imp.Names, ", "), quote("./"+imp.Unit))
	}
	for _, d := range unit.Declarations {
		b.WriteString("\n")
		writeDeclaration(&b, d)
	}
	return b.Bytes()
}

func writeDeclaration(b *bytes.Buffer, d *Declaration) {
	writeDoc(b, d.Description, 0)
	if d.Kind == Enum {
		fmt.Fprintf(b, "export enum %s {\n", d.Name)
		for _, m := range d.Members {
			fmt.Fprintf(b, "  %s = %s,\n", m.Name, literal(m.Value))
		}
		b.WriteString("}\n")
		return
	}
	fmt.Fprintf(b, "export type %s = %s;\n", d.Name, typeString(d.Type, 0))
}

// typeString prints t; depth is the indentation level of the enclosing line.
func typeString(t TypeExpr, depth int) string {
	switch v := t.(type) {
	case Keyword:
		return string(v)
	case Literal:
		return literal(v.Value)
	case NamedRef:
		return v.Name
	case ArrayType:
		elem := typeString(v.Elem, depth)
		switch v.Elem.(type) {
		case Union, Intersection:
			return "(" + elem + ")[]"
		}
		return elem + "[]"
	case RecordType:
		return "Record<string, " + typeString(v.Value, depth) + ">"
	case Union:
		parts := make([]string, len(v.Members))
		for i, m := range v.Members {
			parts[i] = typeString(m, depth)
		}
		return strings.Join(parts, " | ")
	case Intersection:
		parts := make([]string, len(v.Members))
		for i, m := range v.Members {
			parts[i] = typeString(m, depth)
			if _, ok := m.(Union); ok {
				parts[i] = "(" + parts[i] + ")"
			}
		}
		return strings.Join(parts, " & ")
	case ObjectType:
		var b bytes.Buffer
		b.WriteString("{\n")
		for _, f := range v.Fields {
			writeDoc(&b, f.Description, depth+1)
			b.WriteString(indent(depth + 1))
			b.WriteString(propertyKey(f.Name))
			if f.Optional {
				b.WriteString("?")
			}
			b.WriteString(": " + typeString(f.Type, depth+1) + ";\n")
		}
		b.WriteString(indent(depth) + "}")
		return b.String()
	}
	return string(KeywordUnknown)
}

func writeDoc(b *bytes.Buffer, description string, depth int) {
	description = strings.TrimSpace(description)
	if description == "" {
		return
	}
	pad := indent(depth)
	lines := strings.Split(escapeComment(description), "\n")
	if len(lines) == 1 {
		fmt.Fprintf(b, "%s/** %s */\n", pad, lines[0])
		return
	}
	b.WriteString(pad + "/**\n")
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			b.WriteString(pad + " *\n")
			continue
		}
		fmt.Fprintf(b, "%s * %s\n", pad, line)
	}
	b.WriteString(pad + " */\n")
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

func escapeComment(s string) string { return strings.ReplaceAll(s, "*/", "*\\/") }

// propertyKey quotes names that are not valid identifiers.
func propertyKey(name string) string {
	if name == "" {
		return `""`
	}
	for i, r := range name {
		letter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		if !letter && (i == 0 || r < '0' || r > '9') {
			return quote(name)
		}
	}
	return name
}

func literal(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(n)
	case bool:
		return strconv.FormatBool(n)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return quote(fmt.Sprint(v))
}

// quote produces a double-quoted string literal valid in TypeScript.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
