package typegen

import (
	"github.com/cockroachdb/errors"

	"github.com/mark3labs/openapi2ts/internal/spec"
)

// NoComponentsError reports a document without any compiled section.
type NoComponentsError struct{}

func (*NoComponentsError) Error() string {
	return "schema document has no components to compile"
}

// Config controls compilation.
type Config struct {
	// UseEnums emits enum-worthy nodes as enums instead of literal unions.
	UseEnums bool
	// FilenamePrefix replaces the document title in unit names.
	FilenamePrefix string
	// FilenameCase is the casing of unit names; camel when empty.
	FilenameCase Case
}

// OutputUnit is the content of one generated file.
type OutputUnit struct {
	Name         string
	Section      spec.Section
	Declarations []*Declaration
	Imports      []Import
}

// Result holds the units of one compilation in section order.
type Result struct {
	Units []*OutputUnit
}

// Unit returns the unit of section s, or nil when none was produced.
func (r *Result) Unit(s spec.Section) *OutputUnit {
	for _, u := range r.Units {
		if u.Section == s {
			return u
		}
	}
	return nil
}

// Compile turns every present section of doc into an output unit. Sections
// without declarations are omitted, except schemas. Every unit is fully
// built before Compile returns; on error no unit is returned.
func Compile(doc *spec.Document, cfg Config) (*Result, error) {
	if doc == nil || !doc.HasComponents() {
		return nil, &NoComponentsError{}
	}
	c, err := ParseCase(string(cfg.FilenameCase))
	if err != nil {
		return nil, errors.WithHint(err, "supported cases: camel, pascal, snake, kebab, constant")
	}
	cfg.FilenameCase = c

	names := UnitNames(doc.Title, cfg)
	res := &Result{}
	for _, section := range spec.Sections {
		entries, ok := doc.Section(section)
		if !ok {
			continue
		}
		decls, err := compileSection(doc, section, entries, cfg.UseEnums)
		if err != nil {
			return nil, err
		}
		if len(decls) == 0 && section != spec.Schemas {
			continue
		}
		res.Units = append(res.Units, &OutputUnit{
			Name:         names[section],
			Section:      section,
			Declarations: decls,
			Imports:      Aggregate(decls, section, names),
		})
	}
	return res, nil
}

func compileSection(doc *spec.Document, section spec.Section, entries []spec.Entry, useEnums bool) ([]*Declaration, error) {
	ctx := Context{Document: doc, Section: section, UseEnums: useEnums}
	var enums, aliases []*Declaration
	for _, entry := range entries {
		node, ok := entryShape(section, entry)
		if !ok {
			continue
		}
		decls, err := Emit(entry.Name, node, ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "compile %s %q", section, entry.Name)
		}
		for _, d := range decls {
			if d.Kind == Enum {
				enums = append(enums, d)
			} else {
				aliases = append(aliases, d)
			}
		}
	}
	return append(enums, aliases...), nil
}

// entryShape returns the node compiled for an entry. Reference entries of
// body and parameter sections, bodies without a compatible media type and
// parameters without a schema have none.
func entryShape(section spec.Section, entry spec.Entry) (*spec.Schema, bool) {
	var node *spec.Schema
	switch section {
	case spec.Schemas:
		return entry.Schema, true
	case spec.Parameters:
		if entry.Ref != "" || entry.Schema == nil {
			return nil, false
		}
		node = entry.Schema
	default:
		if entry.Ref != "" {
			return nil, false
		}
		media := spec.SelectMediaType(entry.Content)
		if media == nil || media.Schema == nil {
			return nil, false
		}
		node = media.Schema
	}
	if node.Description == "" && entry.Description != "" {
		described := *node
		described.Description = entry.Description
		node = &described
	}
	return node, true
}
