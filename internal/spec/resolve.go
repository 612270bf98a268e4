package spec

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const componentsPrefix = "#/components/"

// UnresolvedReferenceError reports a reference whose target does not exist in
// the document.
type UnresolvedReferenceError struct {
	Ref    string
	Reason string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unresolved reference %q", e.Ref)
	}
	return fmt.Sprintf("unresolved reference %q: %s", e.Ref, e.Reason)
}

// Pointer is a parsed local reference: a section, an entry name and an
// optional path below the entry.
type Pointer struct {
	Section Section
	Name    string
	Path    []string
}

// Nested reports whether the pointer addresses something below an entry.
func (p Pointer) Nested() bool { return len(p.Path) > 0 }

func (p Pointer) String() string {
	parts := []string{string(p.Section), escapeToken(p.Name)}
	for _, step := range p.Path {
		parts = append(parts, escapeToken(step))
	}
	return componentsPrefix + strings.Join(parts, "/")
}

// ParsePointer splits a "#/components/<section>/<name>[/<path>...]" reference.
func ParsePointer(ref string) (Pointer, error) {
	if !strings.HasPrefix(ref, componentsPrefix) {
		return Pointer{}, &UnresolvedReferenceError{Ref: ref, Reason: "only local #/components references are supported"}
	}
	raw := strings.Split(strings.TrimPrefix(ref, componentsPrefix), "/")
	if len(raw) < 2 || raw[1] == "" {
		return Pointer{}, &UnresolvedReferenceError{Ref: ref, Reason: "reference must name a section and an entry"}
	}
	tokens := make([]string, len(raw))
	for i, token := range raw {
		unescaped, err := unescapeToken(token)
		if err != nil {
			return Pointer{}, &UnresolvedReferenceError{Ref: ref, Reason: err.Error()}
		}
		tokens[i] = unescaped
	}
	section := Section(tokens[0])
	if !knownSection(section) {
		return Pointer{}, &UnresolvedReferenceError{Ref: ref, Reason: fmt.Sprintf("unsupported section %q", tokens[0])}
	}
	return Pointer{Section: section, Name: tokens[1], Path: tokens[2:]}, nil
}

// Resolved is the outcome of a successful resolution. Pointer is the parsed
// form of the reference as written; Schema is the concrete node reached after
// following every intermediate reference.
type Resolved struct {
	Pointer Pointer
	Schema  *Schema
}

// Resolve locates the node a reference points to. Resolution is read-only.
func (d *Document) Resolve(ref string) (*Resolved, error) {
	p, err := ParsePointer(ref)
	if err != nil {
		return nil, err
	}
	node, err := d.resolve(ref, map[string]bool{})
	if err != nil {
		return nil, err
	}
	return &Resolved{Pointer: p, Schema: node}, nil
}

func (d *Document) resolve(ref string, seen map[string]bool) (*Schema, error) {
	if seen[ref] {
		return nil, &UnresolvedReferenceError{Ref: ref, Reason: "circular reference"}
	}
	seen[ref] = true

	p, err := ParsePointer(ref)
	if err != nil {
		return nil, err
	}
	entry, ok := d.Lookup(p.Section, p.Name)
	if !ok {
		return nil, &UnresolvedReferenceError{Ref: ref, Reason: fmt.Sprintf("%s has no entry %q", p.Section, p.Name)}
	}

	// Entry-level references of non-schema sections point at another entry;
	// the remaining path applies to that target.
	if entry.Ref != "" && p.Section != Schemas {
		next := entry.Ref
		for _, step := range p.Path {
			next += "/" + escapeToken(step)
		}
		return d.resolve(next, seen)
	}

	var node *Schema
	path := p.Path
	switch p.Section {
	case Schemas:
		node = entry.Schema
	case Parameters:
		if len(path) > 0 {
			if path[0] != "schema" {
				return nil, &UnresolvedReferenceError{Ref: ref, Reason: fmt.Sprintf("parameter has no member %q", path[0])}
			}
			path = path[1:]
		}
		node = entry.Schema
		if node == nil {
			return nil, &UnresolvedReferenceError{Ref: ref, Reason: "parameter has no schema"}
		}
	case Responses, RequestBodies:
		if len(path) == 0 {
			media := SelectMediaType(entry.Content)
			if media == nil || media.Schema == nil {
				return nil, &UnresolvedReferenceError{Ref: ref, Reason: "no compatible media type"}
			}
			node = media.Schema
			break
		}
		if len(path) < 3 || path[0] != "content" || path[2] != "schema" {
			return nil, &UnresolvedReferenceError{Ref: ref, Reason: "expected content/<media type>/schema"}
		}
		for i := range entry.Content {
			if entry.Content[i].ContentType == path[1] {
				node = entry.Content[i].Schema
			}
		}
		if node == nil {
			return nil, &UnresolvedReferenceError{Ref: ref, Reason: fmt.Sprintf("no schema for media type %q", path[1])}
		}
		path = path[3:]
	}

	node, err = d.walk(ref, node, path, seen)
	if err != nil {
		return nil, err
	}
	if node.Kind == KindRef {
		return d.resolve(node.Ref, seen)
	}
	return node, nil
}

// walk descends path from node, following references met on the way.
func (d *Document) walk(ref string, node *Schema, path []string, seen map[string]bool) (*Schema, error) {
	for len(path) > 0 {
		if node.Kind == KindRef {
			target, err := d.resolve(node.Ref, seen)
			if err != nil {
				return nil, err
			}
			node = target
		}
		step := path[0]
		path = path[1:]

		var next *Schema
		switch step {
		case "properties":
			if len(path) == 0 {
				return nil, &UnresolvedReferenceError{Ref: ref, Reason: "missing property name"}
			}
			next = node.Property(path[0])
			path = path[1:]
		case "items":
			next = node.Items
		case "additionalProperties":
			next = node.AdditionalProperties
		case string(OneOf), string(AnyOf), string(AllOf):
			if len(path) == 0 || node.Composition != Composition(step) {
				break
			}
			idx, err := strconv.Atoi(path[0])
			path = path[1:]
			if err == nil && idx >= 0 && idx < len(node.Members) {
				next = node.Members[idx]
			}
		}
		if next == nil {
			return nil, &UnresolvedReferenceError{Ref: ref, Reason: fmt.Sprintf("path segment %q not found", step)}
		}
		node = next
	}
	return node, nil
}

func knownSection(s Section) bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// escapeToken encodes a JSON Pointer reference token.
func escapeToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescapeToken(s string) (string, error) {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("invalid escape in %q", s)
	}
	return strings.ReplaceAll(strings.ReplaceAll(decoded, "~1", "/"), "~0", "~"), nil
}
