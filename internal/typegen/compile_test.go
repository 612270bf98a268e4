package typegen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/openapi2ts/internal/spec"
)

func decode(t *testing.T, src string) *spec.Document {
	t.Helper()
	doc, err := spec.Decode([]byte(src))
	require.NoError(t, err)
	return doc
}

func declNames(decls []*Declaration) []string {
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.Kind.String()+" "+d.Name)
	}
	return out
}

func TestCompile_SinglePet(t *testing.T) {
	t.Parallel()
	doc := decode(t, `openapi: 3.0.0
info: { title: Petstore, version: "1.0.0" }
components:
  schemas:
    Pet:
      type: object
      properties:
        name: { type: string }
`)
	res, err := Compile(doc, Config{})
	require.NoError(t, err)
	require.Len(t, res.Units, 1)

	unit := res.Units[0]
	assert.Equal(t, "petstoreSchemas", unit.Name)
	assert.Equal(t, spec.Schemas, unit.Section)
	assert.Empty(t, unit.Imports)
	require.Len(t, unit.Declarations, 1)

	pet := unit.Declarations[0]
	assert.Equal(t, "Pet", pet.Name)
	assert.Equal(t, TypeAlias, pet.Kind)
	assert.Equal(t, ObjectType{Fields: []Field{{Name: "name", Optional: true, Type: KeywordString}}}, pet.Type)
}

const enumDoc = `openapi: 3.0.0
info: { title: Shop, version: "2" }
components:
  schemas:
    Order:
      type: object
      required: [status]
      properties:
        status:
          type: string
          enum: [placed, shipped]
        size:
          $ref: "#/components/schemas/Size"
    Size:
      type: string
      enum: [small, large]
`

func TestCompile_UseEnums(t *testing.T) {
	t.Parallel()
	doc := decode(t, enumDoc)

	res, err := Compile(doc, Config{UseEnums: true})
	require.NoError(t, err)
	unit := res.Unit(spec.Schemas)
	require.NotNil(t, unit)
	assert.Equal(t, []string{"enum OrderStatus", "enum Size", "type Order"}, declNames(unit.Declarations))

	order := unit.Declarations[2]
	fields := order.Type.(ObjectType).Fields
	assert.Equal(t, NamedRef{Section: spec.Schemas, Name: "OrderStatus"}, fields[0].Type)
	assert.False(t, fields[0].Optional)
	assert.Equal(t, NamedRef{Section: spec.Schemas, Name: "Size"}, fields[1].Type)

	size := unit.Declarations[1]
	assert.Equal(t, []EnumMember{{Name: "Small", Value: "small"}, {Name: "Large", Value: "large"}}, size.Members)
}

func TestCompile_WithoutEnums(t *testing.T) {
	t.Parallel()
	doc := decode(t, enumDoc)

	res, err := Compile(doc, Config{})
	require.NoError(t, err)
	unit := res.Unit(spec.Schemas)
	assert.Equal(t, []string{"type Order", "type Size"}, declNames(unit.Declarations))
	assert.Equal(t, Union{Members: []TypeExpr{Literal{Value: "small"}, Literal{Value: "large"}}}, unit.Declarations[1].Type)
}

func TestCompile_SectionsAndImports(t *testing.T) {
	t.Parallel()
	doc := decode(t, `openapi: 3.0.0
info: { title: API, version: "1" }
components:
  schemas:
    Error:
      type: object
      properties:
        message: { type: string }
    Pet:
      type: object
      properties:
        id: { type: integer }
  responses:
    NotFound:
      description: not found
      content:
        application/json:
          schema: { $ref: "#/components/schemas/Error" }
    Pets:
      description: pets
      content:
        application/json:
          schema:
            type: array
            items: { $ref: "#/components/schemas/Pet" }
    Teapot:
      description: text only
      content:
        text/plain:
          schema: { type: string }
    Alias:
      $ref: "#/components/responses/NotFound"
  requestBodies:
    Empty:
      content:
        text/html:
          schema: { type: string }
  parameters:
    limit:
      name: limit
      in: query
      schema: { type: integer }
    shared:
      $ref: "#/components/parameters/limit"
    content:
      name: filter
      in: query
      content:
        application/json:
          schema: { type: object }
`)
	res, err := Compile(doc, Config{FilenamePrefix: "pets"})
	require.NoError(t, err)

	var units []string
	for _, u := range res.Units {
		units = append(units, u.Name)
	}
	assert.Equal(t, []string{"petsSchemas", "petsResponses", "petsParameters"}, units)

	responses := res.Unit(spec.Responses)
	assert.Equal(t, []string{"type NotFound", "type Pets"}, declNames(responses.Declarations))
	assert.Equal(t, "not found", responses.Declarations[0].Description)
	assert.Equal(t, []Import{{Unit: "petsSchemas", Section: spec.Schemas, Names: []string{"Error", "Pet"}}}, responses.Imports)
	assert.Equal(t, []Reference{{Section: spec.Schemas, Name: "Error"}}, responses.Declarations[0].References)

	params := res.Unit(spec.Parameters)
	assert.Equal(t, []string{"type Limit"}, declNames(params.Declarations))
	assert.Empty(t, params.Imports)
}

func TestCompile_EmptySchemasSectionIsKept(t *testing.T) {
	t.Parallel()
	doc := decode(t, `openapi: 3.0.0
info: { title: Empty, version: "1" }
components:
  schemas: {}
  responses: {}
`)
	res, err := Compile(doc, Config{})
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	assert.Equal(t, spec.Schemas, res.Units[0].Section)
	assert.Empty(t, res.Units[0].Declarations)
}

func TestCompile_NoComponents(t *testing.T) {
	t.Parallel()
	doc := decode(t, `openapi: 3.0.0
info: { title: Bare, version: "1" }
paths: {}
`)
	_, err := Compile(doc, Config{})
	var noComponents *NoComponentsError
	assert.True(t, errors.As(err, &noComponents))

	_, err = Compile(nil, Config{})
	assert.True(t, errors.As(err, &noComponents))
}

func TestCompile_UnresolvedReferenceFailsWholeRun(t *testing.T) {
	t.Parallel()
	doc := decode(t, `openapi: 3.0.0
info: { title: Broken, version: "1" }
components:
  schemas:
    A: { type: string }
    B:
      type: object
      properties:
        c: { $ref: "#/components/schemas/C" }
    C: { $ref: "#/components/schemas/D" }
`)
	res, err := Compile(doc, Config{})
	assert.Nil(t, res)
	var unresolved *spec.UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	assert.Equal(t, "#/components/schemas/D", unresolved.Ref)
	assert.Contains(t, err.Error(), `compile schemas "B"`)
}

func TestCompile_ReferenceChainIsNamed(t *testing.T) {
	t.Parallel()
	doc := decode(t, `openapi: 3.0.0
info: { title: Chain, version: "1" }
components:
  schemas:
    A: { $ref: "#/components/schemas/B" }
    B: { $ref: "#/components/schemas/C" }
    C: { type: integer }
`)
	res, err := Compile(doc, Config{})
	require.NoError(t, err)
	decls := res.Unit(spec.Schemas).Declarations
	assert.Equal(t, NamedRef{Section: spec.Schemas, Name: "B"}, decls[0].Type)
	assert.Equal(t, NamedRef{Section: spec.Schemas, Name: "C"}, decls[1].Type)
	assert.Equal(t, KeywordNumber, decls[2].Type)
}

func TestCompile_InvalidCase(t *testing.T) {
	t.Parallel()
	doc := decode(t, enumDoc)
	_, err := Compile(doc, Config{FilenameCase: "title"})
	assert.Error(t, err)
}

func TestCompile_CaseIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	doc := decode(t, `openapi: 3.0.0
info: { title: My API, version: "1" }
components:
  schemas:
    Pet: { type: string }
`)
	for _, c := range []string{"SNAKE", "Snake", " snake "} {
		res, err := Compile(doc, Config{FilenameCase: Case(c)})
		require.NoError(t, err, c)
		require.Len(t, res.Units, 1)
		assert.Equal(t, "my_api_schemas", res.Units[0].Name, c)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	t.Parallel()
	doc := decode(t, enumDoc)
	first, err := Compile(doc, Config{UseEnums: true})
	require.NoError(t, err)
	second, err := Compile(doc, Config{UseEnums: true})
	require.NoError(t, err)
	assert.Equal(t, Render(first.Units[0], doc.Version), Render(second.Units[0], doc.Version))
}
