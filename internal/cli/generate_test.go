package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateConfigFromFlags(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--out", "./build",
		"--use-enums",
		"--filename-prefix", "pets",
		"--filename-case", "Kebab",
		"--http-timeout", "5s",
		"--strict",
		"--dry-run",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if captured.Out != "./build" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if !captured.UseEnums {
		t.Errorf("expected use-enums true")
	}
	if captured.FilenamePrefix != "pets" {
		t.Errorf("filename prefix mismatch: got %q", captured.FilenamePrefix)
	}
	if captured.FilenameCase != "kebab" {
		t.Errorf("filename case mismatch: got %q", captured.FilenameCase)
	}
	if captured.HTTPTimeout != 5*time.Second {
		t.Errorf("http timeout mismatch: got %s", captured.HTTPTimeout)
	}
	if !captured.Strict {
		t.Errorf("expected strict true")
	}
	if !captured.DryRun {
		t.Errorf("expected dry-run true")
	}
	if !captured.Force {
		t.Errorf("expected force true")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true")
	}
}

func TestGenerateConfigDefaults(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{"generate", "--input", "spec.yaml"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.Out != "generated" {
		t.Errorf("out: want generated got %q", captured.Out)
	}
	if captured.FilenameCase != "camel" {
		t.Errorf("filename case: want camel got %q", captured.FilenameCase)
	}
	if captured.HTTPTimeout <= 0 {
		t.Errorf("expected a positive default timeout, got %s", captured.HTTPTimeout)
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
out: from-config
use_enums: true
filename-prefix: cfg
filenameCase: snake
httpTimeout: 10s
dryRun: true
force: false
verbose: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--filename-case", "pascal",
		"--dry-run=false",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", captured.Input)
	}
	if captured.Out != "from-config" {
		t.Errorf("out: want from-config got %q", captured.Out)
	}
	if !captured.UseEnums {
		t.Errorf("expected use-enums true from config file")
	}
	if captured.FilenamePrefix != "cfg" {
		t.Errorf("filename prefix: want cfg got %q", captured.FilenamePrefix)
	}
	if captured.FilenameCase != "pascal" {
		t.Errorf("filename case: want pascal got %q", captured.FilenameCase)
	}
	if captured.HTTPTimeout != 10*time.Second {
		t.Errorf("http timeout: want 10s got %s", captured.HTTPTimeout)
	}
	if captured.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !captured.Force {
		t.Errorf("expected force true after flag override")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigFromTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "openapi2ts.toml")
	content := "input = \"api.json\"\nout = \"src/api\"\nuseEnums = true\nfilenameCase = \"constant\"\nhttpTimeout = 3\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{"--config", configPath, "generate"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.Input != "api.json" || captured.Out != "src/api" {
		t.Errorf("paths mismatch: %+v", captured)
	}
	if !captured.UseEnums || captured.FilenameCase != "constant" {
		t.Errorf("options mismatch: %+v", captured)
	}
	if captured.HTTPTimeout != 3*time.Second {
		t.Errorf("http timeout: want 3s got %s", captured.HTTPTimeout)
	}
}

func TestGenerateConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()
	unknown := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(unknown, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	badType := filepath.Join(tmpDir, "type.yaml")
	if err := os.WriteFile(badType, []byte("useEnums: [1]\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown key", args: []string{"--config", unknown, "generate", "--input", "spec.yaml"}, want: "unknown field"},
		{name: "wrong type", args: []string{"--config", badType, "generate", "--input", "spec.yaml"}, want: "expected boolean"},
		{name: "missing config file", args: []string{"--config", filepath.Join(tmpDir, "nope.yaml"), "generate"}, want: "read config file"},
		{name: "missing input", args: []string{"generate"}, want: "--input is required"},
		{name: "bad case", args: []string{"generate", "--input", "spec.yaml", "--filename-case", "title"}, want: "unsupported --filename-case"},
		{name: "bad timeout", args: []string{"generate", "--input", "spec.yaml", "--http-timeout", "0s"}, want: "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tt.args)

			err := root.Execute()
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("unexpected error message: %v", err)
			}
		})
	}
}
