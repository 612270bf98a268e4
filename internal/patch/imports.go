package patch

import (
	"fmt"
	"strings"
)

// ImportDecl is the parsed form of an import statement. Offsets are relative
// to the statement text.
type ImportDecl struct {
	Module    string
	Quote     byte
	TypeOnly  bool
	Default   string
	Namespace string
	Named     []Specifier

	// braceOpen and braceClose delimit the named list, or are -1.
	braceOpen, braceClose int
	// clauseEnd is the offset after the default binding.
	clauseEnd int
}

// Specifier is one entry of a named import list.
type Specifier struct {
	Imported string
	Local    string
	TypeOnly bool
}

// UnmergeableImportError is returned when a module is only imported in a form
// that cannot take named specifiers.
type UnmergeableImportError struct {
	Module string
}

func (e *UnmergeableImportError) Error() string {
	return fmt.Sprintf("cannot add named imports to namespace import of %q", e.Module)
}

// parseImport parses a static import statement. It reports false for forms it
// does not understand, which are then kept as opaque statements.
func parseImport(text string) (*ImportDecl, bool) {
	d := &ImportDecl{braceOpen: -1, braceClose: -1, clauseEnd: -1}
	i := skipTrivia(text, len("import"))
	if i >= len(text) {
		return nil, false
	}
	if isQuote(text[i]) {
		return d.module(text, i)
	}
	if hasKeyword(text, i, "type") {
		j := skipTrivia(text, i+len("type"))
		if j < len(text) && (text[j] == '{' || text[j] == '*' || (isIdentStart(text[j]) && !hasKeyword(text, j, "from"))) {
			d.TypeOnly = true
			i = j
		}
	}
	if isIdentStart(text[i]) {
		name, j := readIdent(text, i)
		d.Default = name
		d.clauseEnd = j
		i = skipTrivia(text, j)
		if i >= len(text) {
			return nil, false
		}
		if text[i] == ',' {
			i = skipTrivia(text, i+1)
		} else {
			return d.from(text, i)
		}
	}
	if i >= len(text) {
		return nil, false
	}
	switch text[i] {
	case '*':
		i = skipTrivia(text, i+1)
		if !hasKeyword(text, i, "as") {
			return nil, false
		}
		name, j := readIdent(text, skipTrivia(text, i+len("as")))
		if name == "" {
			return nil, false
		}
		d.Namespace = name
		return d.from(text, skipTrivia(text, j))
	case '{':
		end, err := matchBracket(text, i)
		if err != nil {
			return nil, false
		}
		d.braceOpen, d.braceClose = i, end
		named, ok := parseSpecifiers(text, i+1, end)
		if !ok {
			return nil, false
		}
		d.Named = named
		return d.from(text, skipTrivia(text, end+1))
	}
	return nil, false
}

func (d *ImportDecl) from(text string, i int) (*ImportDecl, bool) {
	if !hasKeyword(text, i, "from") {
		return nil, false
	}
	i = skipTrivia(text, i+len("from"))
	if i >= len(text) || !isQuote(text[i]) {
		return nil, false
	}
	return d.module(text, i)
}

func (d *ImportDecl) module(text string, i int) (*ImportDecl, bool) {
	end, err := skipLiteral(text, i)
	if err != nil {
		return nil, false
	}
	d.Quote = text[i]
	d.Module = text[i+1 : end]
	return d, true
}

func parseSpecifiers(text string, from, to int) ([]Specifier, bool) {
	var out []Specifier
	i := skipTrivia(text, from)
	for i < to {
		end, err := itemEnd(text, i, to)
		if err != nil {
			return nil, false
		}
		var sp Specifier
		j := i
		if hasKeyword(text, j, "type") {
			k := skipTrivia(text, j+len("type"))
			if k < end && text[k] != ',' && !hasKeyword(text, k, "as") {
				sp.TypeOnly = true
				j = k
			}
		}
		if isQuote(text[j]) {
			close, err := skipLiteral(text, j)
			if err != nil {
				return nil, false
			}
			sp.Imported = text[j+1 : close]
			j = close + 1
		} else {
			sp.Imported, j = readIdent(text, j)
			if sp.Imported == "" {
				return nil, false
			}
		}
		sp.Local = sp.Imported
		j = skipTrivia(text, j)
		if hasKeyword(text, j, "as") {
			sp.Local, _ = readIdent(text, skipTrivia(text, j+len("as")))
		}
		out = append(out, sp)
		i = skipTrivia(text, end+1)
	}
	return out, true
}

// mergeImports adds every requested name that no value import of its module
// already binds. Requests for the same module are combined.
func (d *Document) mergeImports(specs []ImportSpec) error {
	var order []string
	wanted := make(map[string][]string)
	for _, s := range specs {
		if _, ok := wanted[s.Module]; !ok {
			order = append(order, s.Module)
			wanted[s.Module] = nil
		}
		wanted[s.Module] = appendUnique(wanted[s.Module], s.Names...)
	}

	insertAt := 0
	for _, module := range order {
		var target, namespace *Statement
		present := make(map[string]bool)
		for _, s := range d.Statements {
			imp := s.Import
			if imp == nil || imp.Module != module || imp.TypeOnly {
				continue
			}
			for _, sp := range imp.Named {
				if !sp.TypeOnly {
					present[sp.Local] = true
				}
			}
			switch {
			case imp.Namespace != "":
				if namespace == nil {
					namespace = s
				}
			case target == nil, target.Import.braceOpen < 0 && imp.braceOpen >= 0:
				target = s
			}
		}

		var missing []string
		for _, name := range wanted[module] {
			if !present[name] {
				missing = append(missing, name)
			}
		}
		if len(missing) == 0 {
			continue
		}

		switch {
		case target != nil:
			target.Text = d.addSpecifiers(target, missing)
			imp, ok := parseImport(target.Text)
			if !ok {
				return &SyntaxError{Message: "rewritten import does not parse: " + target.Text}
			}
			target.Import = imp
		case namespace != nil:
			return &UnmergeableImportError{Module: module}
		default:
			d.insertImport(insertAt, module, missing)
			insertAt++
		}
	}
	return nil
}

func (d *Document) addSpecifiers(s *Statement, names []string) string {
	imp, text := s.Import, s.Text
	switch {
	case imp.braceOpen >= 0:
		return appendToList(text, imp.braceOpen, imp.braceClose, d.layout(s.indent()), false, func(string) []string {
			return names
		})
	case imp.Default != "":
		return text[:imp.clauseEnd] + ", { " + strings.Join(names, ", ") + " }" + text[imp.clauseEnd:]
	default:
		// Side-effect import.
		out := "import { " + strings.Join(names, ", ") + " } from " + d.quote(imp.Module, imp.Quote)
		if strings.HasSuffix(text, ";") {
			out += ";"
		}
		return out
	}
}

func (d *Document) insertImport(at int, module string, names []string) {
	text := "import { " + strings.Join(names, ", ") + " } from " + d.quote(module, d.quoteChar)
	if d.semicolons {
		text += ";"
	}
	s := &Statement{Kind: ImportStatement, Text: text}
	s.Import, _ = parseImport(text)

	if at > 0 {
		s.Leading = d.newline
	}
	if at < len(d.Statements) {
		next := d.Statements[at]
		if at == 0 && strings.HasPrefix(next.Leading, "\ufeff") {
			s.Leading = "\ufeff"
			next.Leading = next.Leading[len("\ufeff"):]
		}
		if !strings.HasPrefix(next.Leading, "\n") && !strings.HasPrefix(next.Leading, "\r\n") {
			next.Leading = d.newline + next.Leading
		}
	} else if at == 0 && !strings.HasPrefix(d.Trailing, "\n") && !strings.HasPrefix(d.Trailing, "\r\n") {
		d.Trailing = d.newline + d.Trailing
	}

	d.Statements = append(d.Statements, nil)
	copy(d.Statements[at+1:], d.Statements[at:])
	d.Statements[at] = s
}

func appendUnique(list []string, names ...string) []string {
	for _, n := range names {
		dup := false
		for _, have := range list {
			if have == n {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, n)
		}
	}
	return list
}
