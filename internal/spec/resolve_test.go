package spec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	t.Parallel()
	p, err := ParsePointer("#/components/schemas/Pet/properties/a~1b")
	require.NoError(t, err)
	assert.Equal(t, Schemas, p.Section)
	assert.Equal(t, "Pet", p.Name)
	assert.Equal(t, []string{"properties", "a/b"}, p.Path)
	assert.True(t, p.Nested())
	assert.Equal(t, "#/components/schemas/Pet/properties/a~1b", p.String())

	for _, ref := range []string{
		"#/definitions/Pet",
		"other.yaml#/components/schemas/Pet",
		"#/components/schemas",
		"#/components/headers/X",
	} {
		_, err := ParsePointer(ref)
		var unresolved *UnresolvedReferenceError
		assert.True(t, errors.As(err, &unresolved), ref)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(petstore))
	require.NoError(t, err)

	tests := []struct {
		ref      string
		wantKind Kind
		wantType string
	}{
		{ref: "#/components/schemas/Pet", wantKind: KindObject},
		{ref: "#/components/schemas/Alias", wantKind: KindObject},
		{ref: "#/components/schemas/Pet/properties/status", wantKind: KindPrimitive, wantType: "string"},
		{ref: "#/components/schemas/Pet/properties/owner/properties/id", wantKind: KindPrimitive, wantType: "integer"},
		{ref: "#/components/schemas/Ids/items", wantKind: KindPrimitive, wantType: "integer"},
		{ref: "#/components/schemas/PetOrOwner/oneOf/1", wantKind: KindObject},
		{ref: "#/components/responses/PetResponse", wantKind: KindObject},
		{ref: "#/components/responses/Shared", wantKind: KindObject},
		{ref: "#/components/responses/PetResponse/content/application~1xml/schema", wantKind: KindPrimitive, wantType: "string"},
		{ref: "#/components/parameters/limit", wantKind: KindPrimitive, wantType: "integer"},
		{ref: "#/components/parameters/limit/schema", wantKind: KindPrimitive, wantType: "integer"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.ref, func(t *testing.T) {
			t.Parallel()
			got, err := doc.Resolve(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Schema.Kind)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, got.Schema.Type)
			}
		})
	}
}

func TestResolve_Failures(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(`openapi: 3.0.0
info: { title: T, version: "1" }
components:
  schemas:
    A: { $ref: "#/components/schemas/B" }
    B: { $ref: "#/components/schemas/A" }
    C: { $ref: "#/components/schemas/Gone" }
    D: { type: object, properties: { x: { type: string } } }
  responses:
    Xml:
      description: xml only
      content:
        application/xml:
          schema: { type: string }
`))
	require.NoError(t, err)

	tests := []struct {
		ref    string
		reason string
	}{
		{ref: "#/components/schemas/Missing", reason: `schemas has no entry "Missing"`},
		{ref: "#/components/schemas/A", reason: "circular reference"},
		{ref: "#/components/schemas/C", reason: `schemas has no entry "Gone"`},
		{ref: "#/components/schemas/D/properties/y", reason: `path segment "properties" not found`},
		{ref: "#/components/responses/Xml", reason: "no compatible media type"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.ref, func(t *testing.T) {
			t.Parallel()
			_, err := doc.Resolve(tt.ref)
			var unresolved *UnresolvedReferenceError
			require.True(t, errors.As(err, &unresolved), "got %v", err)
			assert.Equal(t, tt.reason, unresolved.Reason)
		})
	}
}

func TestResolve_DoesNotMutate(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(petstore))
	require.NoError(t, err)
	before, _ := doc.Lookup(Schemas, "Alias")

	_, err = doc.Resolve("#/components/schemas/Alias")
	require.NoError(t, err)

	after, _ := doc.Lookup(Schemas, "Alias")
	assert.Equal(t, KindRef, after.Schema.Kind)
	assert.Equal(t, before.Schema, after.Schema)
}
