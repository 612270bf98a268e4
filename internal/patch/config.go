package patch

import (
	"strconv"
	"strings"
)

// NoConfigTargetError is returned when a property merge is requested but the
// document exports no object literal.
type NoConfigTargetError struct{}

func (NoConfigTargetError) Error() string {
	return "no exported configuration object found"
}

// Value is the right-hand side of an inserted property.
type Value interface {
	render(indent string, d *Document) string
}

// ObjectValue renders as an object literal, one property per line.
type ObjectValue struct {
	Properties []Property
}

// StringValue renders as a string literal in the document's quote style.
type StringValue string

// RawValue is inserted verbatim.
type RawValue string

func (v ObjectValue) render(indent string, d *Document) string {
	if len(v.Properties) == 0 {
		return "{}"
	}
	inner := indent + d.indent
	var b strings.Builder
	b.WriteString("{" + d.newline)
	for _, p := range v.Properties {
		b.WriteString(inner)
		b.WriteString(p.render(inner, d))
		b.WriteString("," + d.newline)
	}
	b.WriteString(indent)
	b.WriteString("}")
	return b.String()
}

func (v StringValue) render(_ string, d *Document) string { return d.quote(string(v), d.quoteChar) }

func (v RawValue) render(string, *Document) string { return string(v) }

func (p Property) render(indent string, d *Document) string {
	key := p.Key
	if !isIdentifier(key) {
		key = d.quote(key, d.quoteChar)
	}
	var value Value = ObjectValue{}
	if p.Value != nil {
		value = p.Value
	}
	return key + ": " + value.render(indent, d)
}

func isIdentifier(s string) bool {
	name, end := readIdent(s, 0)
	return name != "" && end == len(s)
}

func (d *Document) quote(s string, q byte) string {
	if q != '\'' {
		return strconv.Quote(s)
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

// configTarget finds the exported object literal: the value of export
// default or module.exports, looking through one call, parentheses and a
// variable binding.
func (d *Document) configTarget() (*Statement, int, bool) {
	for _, kind := range []StatementKind{ExportDefaultStatement, ModuleExportsStatement} {
		for _, s := range d.Statements {
			if s.Kind != kind {
				continue
			}
			var i int
			if kind == ExportDefaultStatement {
				i = skipTrivia(s.Text, skipTrivia(s.Text, len("export"))+len("default"))
			} else {
				i = skipTrivia(s.Text, len("module.exports"))
				if i >= len(s.Text) || s.Text[i] != '=' {
					continue
				}
				i = skipTrivia(s.Text, i+1)
			}
			if target, open, ok := d.exprObject(s, i, 0); ok {
				return target, open, true
			}
		}
	}
	return nil, 0, false
}

func (d *Document) exprObject(s *Statement, i, depth int) (*Statement, int, bool) {
	text := s.Text
	if depth > 4 || i >= len(text) {
		return nil, 0, false
	}
	switch c := text[i]; {
	case c == '{':
		return s, i, true
	case c == '(':
		return d.exprObject(s, skipTrivia(text, i+1), depth+1)
	case isIdentStart(c):
		name, j := readIdent(text, i)
		j = skipTrivia(text, j)
		if j < len(text) && text[j] == '(' {
			return d.exprObject(s, skipTrivia(text, j+1), depth+1)
		}
		if j < len(text) && text[j] == '.' {
			return nil, 0, false
		}
		for _, v := range d.Statements {
			if v.Kind != VariableStatement {
				continue
			}
			if at, ok := declaredValue(v.Text, name); ok {
				return d.exprObject(v, at, depth+1)
			}
		}
	}
	return nil, 0, false
}

// declaredValue returns the offset of the initializer when text declares name.
func declaredValue(text, name string) (int, bool) {
	i := 0
	if hasKeyword(text, i, "export") {
		i = skipTrivia(text, i+len("export"))
	}
	for _, kw := range []string{"const", "let", "var"} {
		if hasKeyword(text, i, kw) {
			i = skipTrivia(text, i+len(kw))
			break
		}
	}
	ident, j := readIdent(text, i)
	if ident != name {
		return 0, false
	}
	// Skip an optional type annotation up to the initializer. Commas and
	// semicolons only end the declarator outside generic arguments.
	angles := 0
	for j < len(text) {
		c := text[j]
		switch {
		case c == '=' && j+1 < len(text) && text[j+1] == '>':
			j++
		case c == '=':
			if angles > 0 {
				return 0, false
			}
			return skipTrivia(text, j+1), true
		case c == '<':
			angles++
		case c == '>' && angles > 0:
			angles--
		case isQuote(c):
			end, err := skipLiteral(text, j)
			if err != nil {
				return 0, false
			}
			j = end
		case c == '(' || c == '[' || c == '{':
			end, err := matchBracket(text, j)
			if err != nil {
				return 0, false
			}
			j = end
		case (c == ';' || c == ',') && angles == 0:
			return 0, false
		}
		j++
	}
	return 0, false
}

type objectEntry struct {
	key        string
	valueStart int
	valueEnd   int
}

// objectEntries lists the entries of the object literal delimited by open
// and close. Spread and computed entries have an empty key.
func objectEntries(text string, open, close int) ([]objectEntry, error) {
	var out []objectEntry
	i := skipTrivia(text, open+1)
	for i < close {
		end, err := itemEnd(text, i, close)
		if err != nil {
			return nil, err
		}
		e := objectEntry{valueStart: -1}
		j := i
		switch c := text[i]; {
		case c == '.':
			j = end
		case c == '[':
			k, err := matchBracket(text, i)
			if err != nil {
				return nil, err
			}
			j = k + 1
		case isQuote(c):
			k, err := skipLiteral(text, i)
			if err != nil {
				return nil, err
			}
			e.key = text[i+1 : k]
			j = k + 1
		default:
			k := i
			for k < end && (isIdentChar(text[k]) || text[k] == '.') {
				k++
			}
			e.key = text[i:k]
			j = k
		}
		if j = skipTrivia(text, j); j < end && text[j] == ':' {
			e.valueStart = skipTrivia(text, j+1)
			e.valueEnd = lastSignificant(text, e.valueStart, end) + 1
		}
		out = append(out, e)
		if end >= close {
			break
		}
		i = skipTrivia(text, end+1)
	}
	return out, nil
}

// mergeProperty adds p to the object literal opening at open. When the key is
// already present with an object literal value, only its missing sub-keys are
// added; any other existing value is kept as is.
func (d *Document) mergeProperty(text, lead string, open int, p Property) (string, error) {
	close, err := matchBracket(text, open)
	if err != nil {
		return "", err
	}
	entries, err := objectEntries(text, open, close)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.key != p.Key {
			continue
		}
		incoming, ok := p.Value.(ObjectValue)
		if !ok || e.valueStart < 0 || text[e.valueStart] != '{' {
			return text, nil
		}
		for _, sub := range incoming.Properties {
			if text, err = d.addMissing(text, lead, e.valueStart, sub); err != nil {
				return "", err
			}
		}
		return text, nil
	}
	return d.addMissing(text, lead, open, p)
}

func (d *Document) addMissing(text, lead string, open int, p Property) (string, error) {
	close, err := matchBracket(text, open)
	if err != nil {
		return "", err
	}
	entries, err := objectEntries(text, open, close)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.key == p.Key {
			return text, nil
		}
	}
	return appendToList(text, open, close, d.layout(lead), true, func(indent string) []string {
		return []string{p.render(indent, d)}
	}), nil
}

// listLayout is the whitespace convention of the statement being edited.
type listLayout struct {
	unit    string
	newline string
	// lead is the indentation of the statement's first line, which is not
	// part of the statement text.
	lead string
}

func (d *Document) layout(lead string) listLayout {
	return listLayout{unit: d.indent, newline: d.newline, lead: lead}
}

// indentAt returns the indentation of the line of text containing i.
func (l listLayout) indentAt(text string, i int) string {
	if strings.LastIndexByte(text[:i], '\n') < 0 {
		return l.lead + lineIndent(text, i)
	}
	return lineIndent(text, i)
}

// appendToList inserts items before the bracket at close, following the
// layout of the list: one item per line for multi-line lists, inline
// otherwise, keeping a trailing comma when the list has one. Empty lists are
// expanded to multiple lines when multiline is set.
func appendToList(text string, open, close int, l listLayout, multiline bool, items func(indent string) []string) string {
	last := lastSignificant(text, open+1, close)
	inner := text[open+1 : close]
	nl := l.newline

	if last < 0 {
		kept := strings.TrimRight(inner, " \t\r\n")
		if multiline {
			base := l.indentAt(text, open)
			indent := base + l.unit
			var b strings.Builder
			for _, item := range items(indent) {
				b.WriteString(nl + indent + item + ",")
			}
			return text[:open+1] + kept + b.String() + nl + base + text[close:]
		}
		if kept != "" {
			kept += " "
		} else {
			kept = " "
		}
		return text[:open+1] + kept + strings.Join(items(""), ", ") + " " + text[close:]
	}

	trailingComma := text[last] == ','
	if strings.Contains(inner, "\n") {
		indent := l.indentAt(text, last)
		rendered := items(indent)
		at := restOfLine(text, last+1, close)
		if trailingComma {
			var b strings.Builder
			for _, item := range rendered {
				b.WriteString(nl + indent + item + ",")
			}
			return text[:at] + b.String() + text[at:]
		}
		added := nl + indent + strings.Join(rendered, ","+nl+indent)
		if at == last+1 {
			return text[:last+1] + "," + added + text[last+1:]
		}
		return text[:last+1] + "," + text[last+1:at] + added + text[at:]
	}

	rendered := strings.Join(items(""), ", ")
	if trailingComma {
		return text[:last+1] + " " + rendered + "," + text[last+1:]
	}
	return text[:last+1] + ", " + rendered + text[last+1:]
}
