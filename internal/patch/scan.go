package patch

import (
	"fmt"
	"strings"
)

// SyntaxError reports source text the scanner cannot balance.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$' || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isQuote(c byte) bool { return c == '"' || c == '\'' || c == '`' }

// hasKeyword reports whether the word kw starts at i.
func hasKeyword(text string, i int, kw string) bool {
	if !strings.HasPrefix(text[i:], kw) {
		return false
	}
	end := i + len(kw)
	return end == len(text) || !isIdentChar(text[end])
}

// readIdent returns the identifier starting at i and the offset after it.
func readIdent(text string, i int) (string, int) {
	if i >= len(text) || !isIdentStart(text[i]) {
		return "", i
	}
	j := i + 1
	for j < len(text) && isIdentChar(text[j]) {
		j++
	}
	return text[i:j], j
}

// skipComment returns the offset of the last byte of the comment starting at
// i, and false when no comment starts there.
func skipComment(text string, i int) (int, bool) {
	if text[i] != '/' || i+1 >= len(text) {
		return i, false
	}
	switch text[i+1] {
	case '/':
		end := strings.IndexByte(text[i:], '\n')
		if end < 0 {
			return len(text) - 1, true
		}
		return i + end - 1, true
	case '*':
		end := strings.Index(text[i+2:], "*/")
		if end < 0 {
			return len(text) - 1, true
		}
		return i + 2 + end + 1, true
	}
	return i, false
}

// skipTrivia returns the first offset at or after i that is neither
// whitespace nor a comment.
func skipTrivia(text string, i int) int {
	for i < len(text) {
		if isSpace(text[i]) {
			i++
			continue
		}
		if strings.HasPrefix(text[i:], "\ufeff") {
			i += len("\ufeff")
			continue
		}
		end, ok := skipComment(text, i)
		if !ok {
			return i
		}
		i = end + 1
	}
	return i
}

// skipLiteral returns the offset of the quote closing the string or template
// literal that starts at i.
func skipLiteral(text string, i int) (int, error) {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		switch c := text[j]; {
		case c == '\\':
			j++
		case c == q:
			return j, nil
		case c == '\n' && q != '`':
			return 0, &SyntaxError{Offset: i, Message: "unterminated string"}
		case c == '$' && q == '`' && j+1 < len(text) && text[j+1] == '{':
			end, err := matchBracket(text, j+1)
			if err != nil {
				return 0, err
			}
			j = end
		}
	}
	return 0, &SyntaxError{Offset: i, Message: "unterminated string"}
}

// skipRegex returns the offset of the slash closing the regular expression
// literal at i. A slash opens a regular expression only where an operand is
// expected, and the literal must close on the same line.
func skipRegex(text string, i int) (int, bool) {
	if text[i] != '/' || !operandExpected(text, i) {
		return i, false
	}
	inClass := false
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return j, true
			}
		case '\n':
			return i, false
		}
	}
	return i, false
}

var operandKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "in": true, "of": true, "void": true,
	"delete": true, "throw": true, "new": true, "yield": true, "await": true, "instanceof": true,
}

func operandExpected(text string, i int) bool {
	j := i - 1
	for j >= 0 && isSpace(text[j]) {
		j--
	}
	if j < 0 {
		return true
	}
	c := text[j]
	if strings.IndexByte("(,=:[!&|?{};+-*%<>~^", c) >= 0 {
		return true
	}
	if !isIdentChar(c) {
		return false
	}
	k := j
	for k >= 0 && isIdentChar(text[k]) {
		k--
	}
	return operandKeywords[text[k+1:j+1]]
}

func closerOf(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return '}'
}

// matchBracket returns the offset of the bracket closing the one at i.
func matchBracket(text string, i int) (int, error) {
	var stack []byte
	for j := i; j < len(text); j++ {
		c := text[j]
		switch {
		case c == '(' || c == '[' || c == '{':
			stack = append(stack, closerOf(c))
		case c == ')' || c == ']' || c == '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, &SyntaxError{Offset: j, Message: fmt.Sprintf("unexpected %q", c)}
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return j, nil
			}
		case isQuote(c):
			end, err := skipLiteral(text, j)
			if err != nil {
				return 0, err
			}
			j = end
		case c == '/':
			if end, ok := skipComment(text, j); ok {
				j = end
			} else if end, ok := skipRegex(text, j); ok {
				j = end
			}
		}
	}
	return 0, &SyntaxError{Offset: i, Message: fmt.Sprintf("unclosed %q", text[i])}
}

// itemEnd returns the offset of the first comma at bracket depth zero in
// [from, to), or to.
func itemEnd(text string, from, to int) (int, error) {
	for j := from; j < to; j++ {
		c := text[j]
		switch {
		case c == ',':
			return j, nil
		case c == '(' || c == '[' || c == '{':
			end, err := matchBracket(text, j)
			if err != nil {
				return 0, err
			}
			j = end
		case isQuote(c):
			end, err := skipLiteral(text, j)
			if err != nil {
				return 0, err
			}
			j = end
		case c == '/':
			if end, ok := skipComment(text, j); ok {
				j = end
			} else if end, ok := skipRegex(text, j); ok {
				j = end
			}
		}
	}
	return to, nil
}

// lastSignificant returns the offset of the last byte in [from, to) that is
// not whitespace or part of a comment, or -1.
func lastSignificant(text string, from, to int) int {
	last := -1
	for j := from; j < to; j++ {
		c := text[j]
		if isSpace(c) {
			continue
		}
		if end, ok := skipComment(text, j); ok {
			j = end
			continue
		}
		if isQuote(c) {
			if end, err := skipLiteral(text, j); err == nil {
				j = end
			}
		} else if end, ok := skipRegex(text, j); ok {
			j = end
		}
		last = j
	}
	return last
}

// lineIndent returns the leading whitespace of the line containing i.
func lineIndent(text string, i int) string {
	start := strings.LastIndexByte(text[:i], '\n') + 1
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[start:end]
}

// restOfLine returns the offset of the newline ending the line at i when
// everything in between is whitespace or comments; otherwise i.
func restOfLine(text string, i, limit int) int {
	for j := i; j < limit; j++ {
		c := text[j]
		switch {
		case c == '\n':
			if j > i && text[j-1] == '\r' {
				return j - 1
			}
			return j
		case c == ' ' || c == '\t' || c == '\r':
		default:
			end, ok := skipComment(text, j)
			if !ok || strings.Contains(text[j:end+1], "\n") {
				return i
			}
			j = end
		}
	}
	return i
}

// detectNewline returns the line terminator of the first line of text.
func detectNewline(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// detectIndent returns the indentation unit used by text: a tab, or the
// smallest run of leading spaces. Two spaces when nothing is indented.
func detectIndent(text string) string {
	smallest := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "*") {
			continue
		}
		if line[0] == '\t' {
			return "\t"
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if n > 0 && (smallest == 0 || n < smallest) {
			smallest = n
		}
	}
	if smallest == 0 {
		return "  "
	}
	return strings.Repeat(" ", smallest)
}
