package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/openapi2ts/internal/logger"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample openapi2ts configuration file",
		Long: "Scaffold a commented openapi2ts configuration file that documents available options. " +
			"A .toml output path produces TOML, anything else YAML.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "openapi2ts.yaml", "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "openapi2ts.yaml"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	content := sampleConfigYAML
	if strings.EqualFold(filepath.Ext(absPath), ".toml") {
		content = sampleConfigTOML
	}
	if err := writeFileAtomic(absPath, []byte(strings.TrimSpace(content)+"\n")); err != nil {
		return newUsageError(fmt.Sprintf("init: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	logger.Debugw("wrote sample config", logger.FieldFile, absPath)
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// writeFileAtomic writes through a temp file and a rename.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create parent directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cannot write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot place file at %s: %w", path, err)
	}
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# openapi2ts configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# input: ./openapi.yaml

# Output directory for the generated .ts files.
# out: ./generated

# Emit closed sets of string or number literals as enums.
# useEnums: false

# Prefix of generated file names. Defaults to the document title.
# filenamePrefix: petstore

# Casing of generated file names: camel, pascal, snake, kebab or constant.
# filenameCase: camel

# Timeout of each attempt when fetching a remote document.
# httpTimeout: 30s

# Fail on every validation error, including unresolved references.
# strict: false

# Preview planned outputs without writing files.
# dryRun: false

# Write into a non-empty output directory.
# force: false

# Enable verbose logging.
# verbose: false
`

// sampleConfigTOML documents the same options in TOML.
const sampleConfigTOML = `# openapi2ts configuration (TOML)
# All fields are optional. Command-line flags override config values.

# input = "./openapi.yaml"
# out = "./generated"
# useEnums = false
# filenamePrefix = "petstore"
# filenameCase = "camel"
# httpTimeout = "30s"
# strict = false
# dryRun = false
# force = false
# verbose = false
`
