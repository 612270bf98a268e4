package cli

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mark3labs/openapi2ts/internal/logger"
	"github.com/mark3labs/openapi2ts/internal/patch"
	"github.com/mark3labs/openapi2ts/internal/typegen"
)

const (
	defaultProjectConfig = "openapi2ts.config.ts"
	cliModule            = "@openapi2ts/cli"
	typescriptModule     = "@openapi2ts/typescript"
)

// projectConfigTemplate seeds a missing project config file.
const projectConfigTemplate = `import { defineConfig } from "@openapi2ts/cli";

export default defineConfig({});
`

// RegisterConfig captures the options for the register command.
type RegisterConfig struct {
	Namespace string
	From      string
	OutputDir string
	File      string
	DryRun    bool
}

var registerRunner = runRegister

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <namespace>",
		Short: "Register a generated namespace in openapi2ts.config.ts",
		Long: "Add the imports and the namespace entry needed to regenerate declarations to a TypeScript " +
			"project config file. Existing imports and entries are kept; running it again changes nothing.",
		Example: strings.TrimSpace(`  openapi2ts register petstore --from ./petstore.yaml --output-dir src/petstore
  openapi2ts register github --from https://example.com/github.json --file config/openapi2ts.config.ts`),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return newUsageError(fmt.Sprintf("register: expected exactly one namespace argument, got %d\n\n%s", len(args), cmd.UsageString()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg := &RegisterConfig{Namespace: strings.TrimSpace(args[0])}
			var err error
			if cfg.From, err = flags.GetString("from"); err != nil {
				return err
			}
			if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
				return err
			}
			if cfg.File, err = flags.GetString("file"); err != nil {
				return err
			}
			if cfg.DryRun, err = flags.GetBool("dry-run"); err != nil {
				return err
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return registerRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("from", "", "Path or URL of the OpenAPI document of the namespace")
	flags.String("output-dir", "", "Directory receiving the generated files (defaults to src/<namespace>)")
	flags.String("file", defaultProjectConfig, "Project config file to update")
	flags.Bool("dry-run", false, "Print the updated file instead of writing it")

	return cmd
}

func (c *RegisterConfig) validate() error {
	c.From = strings.TrimSpace(c.From)
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	c.File = strings.TrimSpace(c.File)
	if c.Namespace == "" {
		return newUsageError("register: namespace must not be empty")
	}
	if c.From == "" {
		return newUsageError("register: --from is required")
	}
	if c.OutputDir == "" {
		c.OutputDir = "src/" + typegen.CaseKebab.Format(c.Namespace)
	}
	if c.File == "" {
		c.File = defaultProjectConfig
	}
	return nil
}

// registration builds the patch request adding namespace to the project config.
func (c *RegisterConfig) registration() patch.Request {
	source := patch.ObjectValue{Properties: []patch.Property{
		{Key: "source", Value: patch.StringValue("file")},
		{Key: "relativePath", Value: patch.StringValue(c.From)},
	}}
	if strings.HasPrefix(c.From, "http://") || strings.HasPrefix(c.From, "https://") {
		source = patch.ObjectValue{Properties: []patch.Property{
			{Key: "source", Value: patch.StringValue("url")},
			{Key: "url", Value: patch.StringValue(c.From)},
		}}
	}
	prefix := typegen.CaseCamel.Format(c.Namespace)
	return patch.Request{
		Imports: []patch.ImportSpec{
			{Module: cliModule, Names: []string{"defineConfig"}},
			{Module: typescriptModule, Names: []string{"generateSchemaTypes"}},
		},
		Property: &patch.Property{Key: c.Namespace, Value: patch.ObjectValue{Properties: []patch.Property{
			{Key: "from", Value: source},
			{Key: "outputDir", Value: patch.StringValue(c.OutputDir)},
			{Key: "to", Value: patch.RawValue(fmt.Sprintf(
				"async (context) => { await generateSchemaTypes(context, { filenamePrefix: %q }); }", prefix))},
		}}},
	}
}

func runRegister(ctx context.Context, cfg *RegisterConfig) error {
	_ = ctx

	absPath, err := filepath.Abs(cfg.File)
	if err != nil {
		return fmt.Errorf("register: resolve config path: %w", err)
	}

	src, err := os.ReadFile(absPath)
	created := false
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debugw("project config missing, using template", logger.FieldFile, absPath)
		src = []byte(projectConfigTemplate)
		created = true
	case err != nil:
		return newUsageError(fmt.Sprintf("register: read %s: %v", absPath, err))
	}

	out, err := patch.Patch(src, cfg.registration())
	if err != nil {
		return wrapPatchError(err, absPath)
	}

	if cfg.DryRun {
		_, err := os.Stdout.Write(out)
		return err
	}
	if !created && bytes.Equal(src, out) {
		fmt.Fprintf(os.Stdout, "%s already registered in %s\n", cfg.Namespace, absPath)
		return nil
	}
	if err := writeFileAtomic(absPath, out); err != nil {
		return newUsageError(fmt.Sprintf("register: %v", err))
	}
	logger.Infow("registered namespace",
		logger.FieldFile, absPath,
		logger.FieldProperty, cfg.Namespace,
		logger.FieldModule, typescriptModule,
	)
	fmt.Fprintf(os.Stdout, "Registered %s in %s\n", cfg.Namespace, absPath)
	return nil
}

func wrapPatchError(err error, path string) error {
	var noTarget patch.NoConfigTargetError
	if errors.As(err, &noTarget) {
		return newUsageErrorWithHints(fmt.Sprintf("register: %s: %v", path, err),
			errors.WithHint(err, "the file must export its configuration, e.g. export default defineConfig({})"))
	}
	var unmergeable *patch.UnmergeableImportError
	if errors.As(err, &unmergeable) {
		return newUsageErrorWithHints(fmt.Sprintf("register: %s: %v", path, err),
			errors.WithHintf(err, "import the names from %q with a named import", unmergeable.Module))
	}
	var syntax *patch.SyntaxError
	if errors.As(err, &syntax) {
		return newUsageError(fmt.Sprintf("register: %s: %v", path, err))
	}
	return err
}
