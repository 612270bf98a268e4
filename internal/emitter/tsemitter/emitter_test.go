package tsemitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/openapi2ts/internal/spec"
	"github.com/mark3labs/openapi2ts/internal/typegen"
)

const sample = `openapi: 3.0.3
info: { title: Sample API, version: 1.2.0 }
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name: { type: string }
  responses:
    PetResponse:
      description: One pet
      content:
        application/json:
          schema: { $ref: '#/components/schemas/Pet' }
`

func minimalDocument(t *testing.T) *spec.Document {
	t.Helper()
	doc, err := spec.Decode([]byte(sample))
	require.NoError(t, err)
	return doc
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), minimalDocument(t), Options{OutDir: dir, DryRun: true})
	require.NoError(t, err)

	var rels []string
	for _, pf := range res.Planned {
		rels = append(rels, pf.RelPath)
		assert.Positive(t, pf.Size)
	}
	assert.Equal(t, []string{"sampleApiResponses.ts", "sampleApiSchemas.ts"}, rels)
	assert.Len(t, res.Units, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry-run must not write")
}

func TestEmit_WriteAndContents(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "generated")

	_, err := Emit(context.Background(), minimalDocument(t), Options{
		OutDir: dir,
		Config: typegen.Config{FilenamePrefix: "pets", FilenameCase: typegen.CaseKebab},
	})
	require.NoError(t, err)

	schemas, err := os.ReadFile(filepath.Join(dir, "pets-schemas.ts"))
	require.NoError(t, err)
	assert.Equal(t, `/**
 * Generated by openapi2ts
 *
 * @version 1.2.0
 */

export type Pet = {
  name: string;
};
`, string(schemas))

	responses, err := os.ReadFile(filepath.Join(dir, "pets-responses.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(responses), `import type { Pet } from "./pets-schemas";`)
	assert.Contains(t, string(responses), "export type PetResponse = Pet;")

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestEmit_NoForce_NonEmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o600))

	_, err := Emit(context.Background(), minimalDocument(t), Options{OutDir: dir})
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--force")

	_, err = Emit(context.Background(), minimalDocument(t), Options{OutDir: dir, Force: true})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "sampleApiSchemas.ts"))
}

func TestEmit_CompileFailureWritesNothing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	doc, err := spec.Decode([]byte(`openapi: 3.0.3
info: { title: t, version: "1" }
paths: {}
components:
  schemas:
    Ok: { type: string }
    Broken: { $ref: '#/components/schemas/Missing' }
`))
	require.NoError(t, err)

	_, err = Emit(context.Background(), doc, Options{OutDir: dir})
	var unresolved *spec.UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "#/components/schemas/Missing", unresolved.Ref)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmit_InvalidOptions(t *testing.T) {
	t.Parallel()
	_, err := Emit(context.Background(), nil, Options{OutDir: t.TempDir()})
	assert.Error(t, err)
	_, err = Emit(context.Background(), minimalDocument(t), Options{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Emit(ctx, minimalDocument(t), Options{OutDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}
