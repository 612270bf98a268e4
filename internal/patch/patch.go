// Package patch merges import specifiers and configuration properties into an
// existing TypeScript or JavaScript source file. Everything it does not edit
// is reproduced byte for byte.
package patch

import (
	"github.com/cockroachdb/errors"
)

// ImportSpec requests named imports from a module.
type ImportSpec struct {
	Module string
	Names  []string
}

// Property is a key/value pair merged into the exported configuration object.
// A nil Value renders as an empty object.
type Property struct {
	Key   string
	Value Value
}

// Request lists the edits applied in one pass: imports first, then the
// property when set.
type Request struct {
	Imports  []ImportSpec
	Property *Property
}

// Apply returns a copy of d with req applied. d is not modified. Applying the
// same request to the result yields an identical document.
func (d *Document) Apply(req Request) (*Document, error) {
	out := d.clone()
	if err := out.mergeImports(req.Imports); err != nil {
		return nil, err
	}
	if req.Property == nil {
		return out, nil
	}
	target, open, ok := out.configTarget()
	if !ok {
		return nil, NoConfigTargetError{}
	}
	text, err := out.mergeProperty(target.Text, target.indent(), open, *req.Property)
	if err != nil {
		return nil, errors.Wrapf(err, "merge property %q", req.Property.Key)
	}
	target.Text = text
	return out, nil
}

// Patch parses src, applies req and prints the result.
func Patch(src []byte, req Request) ([]byte, error) {
	doc, err := Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "parse source")
	}
	out, err := doc.Apply(req)
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
