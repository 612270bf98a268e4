package patch

import (
	"bytes"
	"strings"
)

// StatementKind classifies a top-level statement.
type StatementKind int

const (
	OtherStatement StatementKind = iota
	ImportStatement
	ExportDefaultStatement
	ModuleExportsStatement
	// VariableStatement is a top-level const/let/var declaration.
	VariableStatement
)

// Statement is one top-level statement. Leading holds the whitespace and
// comments before it; they travel with the statement through every edit.
type Statement struct {
	Kind    StatementKind
	Leading string
	Text    string
	// Import is set for import statements this package understands.
	Import *ImportDecl
}

// Document is a source file as an ordered list of top-level statements.
// Concatenating every Leading and Text, then Trailing, yields the source.
type Document struct {
	Statements []*Statement
	Trailing   string

	indent     string
	newline    string
	quoteChar  byte
	semicolons bool
}

// Parse splits src into top-level statements. Only import statements, the
// exported configuration and variable declarations are looked into; every
// other statement is kept verbatim.
func Parse(src []byte) (*Document, error) {
	text := string(src)
	doc := &Document{indent: detectIndent(text), newline: detectNewline(text)}
	pos := 0
	for {
		start := skipTrivia(text, pos)
		if start >= len(text) {
			doc.Trailing = text[pos:]
			doc.detectStyle()
			return doc, nil
		}
		end, err := statementEnd(text, start)
		if err != nil {
			return nil, err
		}
		doc.Statements = append(doc.Statements, newStatement(text[pos:start], text[start:end]))
		pos = end
	}
}

// detectStyle picks the quote and semicolon conventions for inserted code
// from the existing statements.
func (d *Document) detectStyle() {
	d.quoteChar = '"'
	d.semicolons = len(d.Statements) == 0
	quoted := false
	for _, s := range d.Statements {
		if s.Import != nil && !quoted && s.Import.Quote != '`' {
			d.quoteChar = s.Import.Quote
			quoted = true
		}
		if strings.HasSuffix(s.Text, ";") {
			d.semicolons = true
		}
	}
}

func newStatement(leading, text string) *Statement {
	s := &Statement{Leading: leading, Text: text}
	switch {
	case hasKeyword(text, 0, "import"):
		if decl, ok := parseImport(text); ok {
			s.Kind = ImportStatement
			s.Import = decl
		}
	case hasKeyword(text, 0, "export"):
		rest := skipTrivia(text, len("export"))
		switch {
		case hasKeyword(text, rest, "default"):
			s.Kind = ExportDefaultStatement
		case hasKeyword(text, rest, "const"), hasKeyword(text, rest, "let"), hasKeyword(text, rest, "var"):
			s.Kind = VariableStatement
		}
	case strings.HasPrefix(text, "module.exports"):
		s.Kind = ModuleExportsStatement
	case hasKeyword(text, 0, "const"), hasKeyword(text, 0, "let"), hasKeyword(text, 0, "var"):
		s.Kind = VariableStatement
	}
	return s
}

// indent returns the indentation of the statement's first line.
func (s *Statement) indent() string {
	return lineIndent(s.Leading, len(s.Leading))
}

// Bytes prints the document.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	for _, s := range d.Statements {
		b.WriteString(s.Leading)
		b.WriteString(s.Text)
	}
	b.WriteString(d.Trailing)
	return b.Bytes()
}

// Imports returns the modules imported by the document, in order.
func (d *Document) Imports() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range d.Statements {
		if s.Import != nil && !seen[s.Import.Module] {
			seen[s.Import.Module] = true
			out = append(out, s.Import.Module)
		}
	}
	return out
}

func (d *Document) clone() *Document {
	out := &Document{
		Trailing:   d.Trailing,
		indent:     d.indent,
		newline:    d.newline,
		quoteChar:  d.quoteChar,
		semicolons: d.semicolons,
	}
	out.Statements = make([]*Statement, len(d.Statements))
	for i, s := range d.Statements {
		cp := *s
		out.Statements[i] = &cp
	}
	return out
}

// statementEnd returns the offset just past the statement starting at start:
// after a semicolon at depth zero, or at a line break where the statement
// cannot continue.
func statementEnd(text string, start int) (int, error) {
	depth := 0
	isImport := hasKeyword(text, start, "import")
	seenString := false
	var last byte
	for j := start; j < len(text); j++ {
		c := text[j]
		if c == '/' {
			if end, ok := skipComment(text, j); ok {
				j = end
				continue
			}
			if end, ok := skipRegex(text, j); ok {
				j = end
				// A regular expression closes an operand.
				last = ')'
				continue
			}
		}
		switch {
		case isQuote(c):
			end, err := skipLiteral(text, j)
			if err != nil {
				return 0, err
			}
			j = end
			seenString = true
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
			if depth < 0 {
				return 0, &SyntaxError{Offset: j, Message: "unbalanced " + string(c)}
			}
		case c == ';' && depth == 0:
			return j + 1, nil
		case c == '\n' && depth == 0:
			if isImport && !seenString {
				continue
			}
			next := skipTrivia(text, j)
			if next >= len(text) || endsStatement(last, text[next]) {
				return j, nil
			}
		}
		if !isSpace(c) {
			last = c
		}
	}
	if depth != 0 {
		return 0, &SyntaxError{Offset: start, Message: "unbalanced brackets"}
	}
	return len(text), nil
}

// endsStatement reports whether a line break between last and next ends the
// statement.
func endsStatement(last, next byte) bool {
	if strings.IndexByte(",.=+-*/%&|^!?:<>([{", last) >= 0 {
		return false
	}
	return strings.IndexByte(".,?:=+-*/%&|^>([`", next) < 0
}
