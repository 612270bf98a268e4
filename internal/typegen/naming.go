package typegen

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mark3labs/openapi2ts/internal/spec"
)

// Case is a casing strategy for derived unit names.
type Case string

const (
	CaseCamel    Case = "camel"
	CasePascal   Case = "pascal"
	CaseSnake    Case = "snake"
	CaseKebab    Case = "kebab"
	CaseConstant Case = "constant"
)

// Cases lists the supported casing strategies.
var Cases = []Case{CaseCamel, CasePascal, CaseSnake, CaseKebab, CaseConstant}

// ParseCase accepts a case name; the empty string selects camel.
func ParseCase(s string) (Case, error) {
	if strings.TrimSpace(s) == "" {
		return CaseCamel, nil
	}
	c := Case(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Cases {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown filename case %q", s)
}

// Format renders s in the casing strategy.
func (c Case) Format(s string) string {
	// Casers are stateful; build them per call.
	words := splitWords(s)
	switch c {
	case CasePascal:
		return joinTitled(words, 0)
	case CaseSnake:
		return cases.Lower(language.Und).String(strings.Join(words, "_"))
	case CaseKebab:
		return cases.Lower(language.Und).String(strings.Join(words, "-"))
	case CaseConstant:
		return cases.Upper(language.Und).String(strings.Join(words, "_"))
	default:
		return joinTitled(words, 1)
	}
}

func joinTitled(words []string, lowerFirst int) string {
	title := cases.Title(language.Und)
	lower := cases.Lower(language.Und)
	var b strings.Builder
	for i, w := range words {
		if i < lowerFirst {
			b.WriteString(lower.String(w))
			continue
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}

// splitWords breaks s on separators and case changes. Acronyms stay together
// ("HTTPSConnection" splits as "HTTPS", "Connection").
func splitWords(s string) []string {
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) && len(cur) > 0 {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// PascalName converts an entry or property name to a TypeScript type name.
func PascalName(name string) string {
	out := CasePascal.Format(name)
	if out == "" {
		return "_"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		return "_" + out
	}
	return out
}

var unitSuffixes = map[spec.Section]string{
	spec.Schemas:       "schemas",
	spec.Responses:     "responses",
	spec.RequestBodies: "request-bodies",
	spec.Parameters:    "parameters",
}

// UnitNames derives the output unit name of every section from the prefix
// (FilenamePrefix, else the document title) and the casing strategy.
func UnitNames(title string, cfg Config) map[spec.Section]string {
	prefix := cfg.FilenamePrefix
	if prefix == "" {
		prefix = title
	}
	prefix = CaseSnake.Format(prefix)

	c := cfg.FilenameCase
	if c == "" {
		c = CaseCamel
	}
	names := make(map[spec.Section]string, len(unitSuffixes))
	for section, suffix := range unitSuffixes {
		names[section] = c.Format(prefix + "-" + suffix)
	}
	return names
}

// enumPropertyName names the enum hoisted from a property of an object entry.
func enumPropertyName(entry, property string) string {
	return PascalName(entry) + PascalName(property)
}
