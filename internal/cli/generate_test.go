package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureGenerateConfig(t *testing.T) **GenerateConfig {
	t.Helper()
	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, a *app, cfg *GenerateConfig, stdout io.Writer) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })
	return &captured
}

func TestGenerateConfigFromFlags(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	captured := captureGenerateConfig(t)

	root.SetArgs([]string{
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--lang", "TypeScript,go",
		"--out", "./build",
		"--operation-id", "getPet",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--validate",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	cfg := *captured
	if cfg == nil {
		t.Fatalf("expected config to be captured")
	}
	if cfg.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", cfg.Input)
	}
	if want := []string{"typescript", "go"}; !equalStringSlices(cfg.Langs, want) {
		t.Errorf("langs mismatch: got %v", cfg.Langs)
	}
	if cfg.Out != "./build" {
		t.Errorf("out mismatch: got %q", cfg.Out)
	}
	if cfg.OperationID != "getPet" {
		t.Errorf("operation id mismatch: got %q", cfg.OperationID)
	}
	if want := []string{"foo", "bar"}; !equalStringSlices(cfg.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", cfg.IncludeTags)
	}
	if want := []string{"baz"}; !equalStringSlices(cfg.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", cfg.ExcludeTags)
	}
	if !cfg.Validate {
		t.Errorf("expected validate true")
	}
	if !cfg.Force {
		t.Errorf("expected force true")
	}
}

func TestGenerateConfigDefaults(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	captured := captureGenerateConfig(t)

	root.SetArgs([]string{"generate", "--input", "spec.yaml"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cfg := *captured
	if want := []string{"python"}; !equalStringSlices(cfg.Langs, want) {
		t.Errorf("langs: want %v got %v", want, cfg.Langs)
	}
	if cfg.Out != "" || cfg.Validate || cfg.Force {
		t.Errorf("unexpected non-default config: %+v", cfg)
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
lang: [go, typescript]
out: from-config
includeTags:
  - cfgFoo
excludeTags: cfgBar
operation_id: cfgOp
validate: true
force: false
verbose: true
log-level: info
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	captured := captureGenerateConfig(t)

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--validate=false",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	cfg := *captured
	if cfg == nil {
		t.Fatalf("expected config to be captured")
	}
	if cfg.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", cfg.Input)
	}
	if want := []string{"go", "typescript"}; !equalStringSlices(cfg.Langs, want) {
		t.Errorf("langs: want %v got %v", want, cfg.Langs)
	}
	if cfg.Out != "from-config" {
		t.Errorf("out: want from-config got %q", cfg.Out)
	}
	if cfg.OperationID != "cfgOp" {
		t.Errorf("operation id: want cfgOp got %q", cfg.OperationID)
	}
	if want := []string{"flagTag"}; !equalStringSlices(cfg.IncludeTags, want) {
		t.Errorf("include tags: want %v got %v", want, cfg.IncludeTags)
	}
	if want := []string{"cfgBar"}; !equalStringSlices(cfg.ExcludeTags, want) {
		t.Errorf("exclude tags: want %v got %v", want, cfg.ExcludeTags)
	}
	if cfg.Validate {
		t.Errorf("expected validate false after flag override")
	}
	if !cfg.Force {
		t.Errorf("expected force true after flag override")
	}
	if cfg.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", cfg.ConfigPath)
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", configPath, "generate", "--input", "spec.yaml"})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	tests := map[string]struct {
		args []string
		want string
	}{
		"missing input":      {args: []string{"generate"}, want: "--input is required"},
		"unknown language":   {args: []string{"generate", "--input", "x.yaml", "--lang", "rust"}, want: `unsupported --lang "rust"`},
		"several to stdout":  {args: []string{"generate", "--input", "x.yaml", "--lang", "python,go"}, want: "--out must name a directory"},
		"overlapping tags":   {args: []string{"generate", "--input", "x.yaml", "--include-tags", "a,b", "--exclude-tags", "b"}, want: "overlap: b"},
		"bad log level":      {args: []string{"--log-level", "loud", "generate", "--input", "x.yaml"}, want: "unknown log level"},
		"bad boolean flag":   {args: []string{"generate", "--input", "x.yaml", "--force=maybe"}, want: "invalid argument"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			captureGenerateConfig(t)
			root.SetArgs(tt.args)

			err := root.Execute()
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
