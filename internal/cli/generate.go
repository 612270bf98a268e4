package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/openapi2ts/internal/emitter/tsemitter"
	"github.com/mark3labs/openapi2ts/internal/logger"
	"github.com/mark3labs/openapi2ts/internal/spec"
	"github.com/mark3labs/openapi2ts/internal/typegen"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input          string
	Out            string
	UseEnums       bool
	FilenamePrefix string
	FilenameCase   string
	HTTPTimeout    time.Duration
	Strict         bool
	ConfigPath     string
	DryRun         bool
	Force          bool
	Verbose        bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Out:          "generated",
		FilenameCase: string(typegen.CaseCamel),
		HTTPTimeout:  spec.DefaultSettings().HTTPTimeout,
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate TypeScript declarations from an OpenAPI/Swagger document",
		Long: "Generate one TypeScript file per component section (schemas, responses, requestBodies, parameters). " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  openapi2ts generate --input petstore.yaml --out ./src/api --use-enums
  openapi2ts --config openapi2ts.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (defaults to ./generated)")
	flags.Bool("use-enums", false, "Emit closed sets of literals as enums instead of literal unions")
	flags.String("filename-prefix", "", "Prefix of generated file names (defaults to the document title)")
	flags.String("filename-case", "", "Casing of generated file names (camel|pascal|snake|kebab|constant)")
	flags.Duration("http-timeout", 0, "Timeout of each attempt when fetching a remote document")
	flags.Bool("strict", false, "Fail on every validation error instead of deferring reference errors to the compiler")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Write into a non-empty output directory")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := map[string]*string{
		"input":           &cfg.Input,
		"out":             &cfg.Out,
		"filename-prefix": &cfg.FilenamePrefix,
		"filename-case":   &cfg.FilenameCase,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	bools := map[string]*bool{
		"use-enums": &cfg.UseEnums,
		"strict":    &cfg.Strict,
		"dry-run":   &cfg.DryRun,
		"force":     &cfg.Force,
		"verbose":   &cfg.Verbose,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("http-timeout") {
		value, err := flags.GetDuration("http-timeout")
		if err != nil {
			return err
		}
		cfg.HTTPTimeout = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.FilenamePrefix = strings.TrimSpace(c.FilenamePrefix)
	c.FilenameCase = strings.ToLower(strings.TrimSpace(c.FilenameCase))
	if c.Out == "" {
		c.Out = "generated"
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if _, err := typegen.ParseCase(c.FilenameCase); err != nil {
		names := make([]string, 0, len(typegen.Cases))
		for _, cs := range typegen.Cases {
			names = append(names, string(cs))
		}
		return newUsageError(fmt.Sprintf("generate: unsupported --filename-case %q (allowed: %s)", c.FilenameCase, strings.Join(names, ", ")))
	}
	if c.HTTPTimeout <= 0 {
		return newUsageError(fmt.Sprintf("generate: --http-timeout must be positive, got %s", c.HTTPTimeout))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	// 1) Load the document (file or http/https URL) with validation and conversion
	logger.Debugw("loading document", logger.FieldInput, cfg.Input)
	doc, err := spec.Load(ctx, cfg.Input,
		spec.WithHTTPTimeout(cfg.HTTPTimeout),
		spec.WithStrictValidation(cfg.Strict),
	)
	if err != nil {
		// Map structured spec errors into friendly messages
		var se *spec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}
	logger.Debugw("document loaded", logger.FieldInput, cfg.Input, logger.FieldVersion, doc.Version)

	// Ensure outDir is absolute only for display; the emitter handles creation/writes
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	// 2) Compile and write
	res, err := tsemitter.Emit(ctx, doc, tsemitter.Options{
		OutDir: cfg.Out,
		Config: typegen.Config{
			UseEnums:       cfg.UseEnums,
			FilenamePrefix: cfg.FilenamePrefix,
			FilenameCase:   typegen.Case(cfg.FilenameCase),
		},
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapGenerateError(err, absOut)
	}

	paths := make([]string, 0, len(res.Planned))
	for _, p := range res.Planned {
		paths = append(paths, p.RelPath)
	}
	if cfg.DryRun {
		printPlan(absOut, paths)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Wrote %d files to %s\n", len(paths), absOut)
	return nil
}

func printPlan(outDir string, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapGenerateError(err error, outDir string) error {
	var unresolved *spec.UnresolvedReferenceError
	if errors.As(err, &unresolved) {
		return newUsageErrorWithHints(fmt.Sprintf("generate: %v", err),
			errors.WithHint(err, "every $ref must point to an existing entry under #/components"))
	}
	var empty *typegen.NoComponentsError
	if errors.As(err, &empty) {
		return newUsageError("generate: " + err.Error() + "\nHint: declare schemas, responses, requestBodies or parameters under components.")
	}

	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageErrorWithHints(fmt.Sprintf("output error for %s: %s", outDir, msg),
			errors.WithHint(err, "choose a different --out or use --force when appropriate"))
	}
	return err
}

// readConfigFile decodes a YAML, JSON or TOML config file into a generic map.
func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}
	return raw, nil
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	raw, err := readConfigFile(path)
	if err != nil {
		return err
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "input":
			cfg.Input, err = valueAsString(value)
		case "out", "outputdir":
			cfg.Out, err = valueAsString(value)
		case "useenums":
			cfg.UseEnums, err = valueAsBool(value)
		case "filenameprefix":
			cfg.FilenamePrefix, err = valueAsString(value)
		case "filenamecase":
			cfg.FilenameCase, err = valueAsString(value)
		case "httptimeout":
			cfg.HTTPTimeout, err = valueAsDuration(value)
		case "strict":
			cfg.Strict, err = valueAsBool(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "force":
			cfg.Force, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// valueAsDuration accepts Go duration strings and whole seconds.
func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case string:
		return time.ParseDuration(strings.TrimSpace(val))
	case int:
		return time.Duration(val) * time.Second, nil
	case int64:
		return time.Duration(val) * time.Second, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}
