package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/openapi2sdk/internal/codegen"
	"github.com/mark3labs/openapi2sdk/internal/sdk"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Langs       []string
	Out         string
	OperationID string
	IncludeTags []string
	ExcludeTags []string
	ConfigPath  string
	Validate    bool
	Force       bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Langs: []string{string(codegen.Python)}}
}

var generateRunner = runGenerate

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a client from an OpenAPI/Swagger document",
		Long: "Generate a client from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  openapi2sdk generate --input spec.yaml --lang typescript
  openapi2sdk generate --input https://example.com/openapi.json --lang python,go --out ./clients
  openapi2sdk --config openapi2sdk.yaml generate --force`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd, a.file)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), a, cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "URL, file path, - for stdin, or the document text")
	flags.StringSlice("lang", nil, "Target languages ("+strings.Join(codegen.LanguageNames(), "|")+"); defaults to python")
	flags.StringP("out", "o", "", "Output file, or directory when several languages are generated; stdout when omitted")
	flags.String("operation-id", "", "Only generate the method for this operation")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.Bool("validate", false, "Run full OpenAPI validation before generating")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command, file fileConfig) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()
	cfg.ConfigPath, _ = cmd.Flags().GetString("config")
	cfg.ConfigPath = strings.TrimSpace(cfg.ConfigPath)
	applyGenerateFile(&cfg, file)

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyGenerateFile(cfg *GenerateConfig, file fileConfig) {
	if file.Input != "" {
		cfg.Input = file.Input
	}
	if len(file.Langs) > 0 {
		cfg.Langs = file.Langs
	}
	cfg.Out = file.Out
	cfg.OperationID = file.OperationID
	cfg.IncludeTags = file.IncludeTags
	cfg.ExcludeTags = file.ExcludeTags
	cfg.Validate = file.Validate
	cfg.Force = file.Force
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	var err error
	if flags.Changed("input") {
		if cfg.Input, err = flags.GetString("input"); err != nil {
			return err
		}
	}
	if flags.Changed("lang") {
		if cfg.Langs, err = flags.GetStringSlice("lang"); err != nil {
			return err
		}
	}
	if flags.Changed("out") {
		if cfg.Out, err = flags.GetString("out"); err != nil {
			return err
		}
	}
	if flags.Changed("operation-id") {
		if cfg.OperationID, err = flags.GetString("operation-id"); err != nil {
			return err
		}
	}
	if flags.Changed("include-tags") {
		if cfg.IncludeTags, err = flags.GetStringSlice("include-tags"); err != nil {
			return err
		}
	}
	if flags.Changed("exclude-tags") {
		if cfg.ExcludeTags, err = flags.GetStringSlice("exclude-tags"); err != nil {
			return err
		}
	}
	if flags.Changed("validate") {
		if cfg.Validate, err = flags.GetBool("validate"); err != nil {
			return err
		}
	}
	if flags.Changed("force") {
		if cfg.Force, err = flags.GetBool("force"); err != nil {
			return err
		}
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	// Inline documents keep their whitespace.
	if !looksInline(strings.TrimSpace(c.Input)) {
		c.Input = strings.TrimSpace(c.Input)
	}
	c.Out = strings.TrimSpace(c.Out)
	c.OperationID = strings.TrimSpace(c.OperationID)
	langs := make([]string, 0, len(c.Langs))
	for _, l := range c.Langs {
		langs = append(langs, strings.ToLower(l))
	}
	c.Langs = sanitizeList(langs)
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if len(c.Langs) == 0 {
		c.Langs = []string{string(codegen.Python)}
	}
	for _, l := range c.Langs {
		if _, err := codegen.ParseLanguage(l); err != nil {
			return newUsageError(fmt.Sprintf("generate: unsupported --lang %q (allowed: %s)", l, strings.Join(codegen.LanguageNames(), ", ")))
		}
	}
	if len(c.Langs) > 1 && c.Out == "" {
		return newUsageError("generate: --out must name a directory when more than one --lang is given")
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	return nil
}

func runGenerate(ctx context.Context, a *app, cfg *GenerateConfig, stdout io.Writer) error {
	source, err := readSource(cfg.Input, a.stdin)
	if err != nil {
		return err
	}
	doc, err := a.svc.Load(ctx, source, cfg.Validate)
	if err != nil {
		return err
	}

	// The document is read-only after loading, so languages render in
	// parallel.
	artifacts := make([]*codegen.Artifact, len(cfg.Langs))
	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range cfg.Langs {
		i, lang := i, lang
		g.Go(func() error {
			art, err := a.svc.GenerateDocument(gctx, doc, sdk.GenerateRequest{
				Language:    lang,
				OperationID: cfg.OperationID,
				IncludeTags: cfg.IncludeTags,
				ExcludeTags: cfg.ExcludeTags,
			})
			if err != nil {
				return err
			}
			artifacts[i] = art
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Out == "" {
		_, err := io.WriteString(stdout, artifacts[0].Code)
		return err
	}
	return writeArtifacts(a.logger, cfg, artifacts, stdout)
}

func writeArtifacts(logger *zap.Logger, cfg *GenerateConfig, artifacts []*codegen.Artifact, stdout io.Writer) error {
	absOut, err := filepath.Abs(cfg.Out)
	if err != nil {
		return fmt.Errorf("generate: resolve output path: %w", err)
	}

	targets := make([]string, len(artifacts))
	if len(artifacts) == 1 {
		targets[0] = absOut
		if st, err := os.Stat(absOut); err == nil && st.IsDir() {
			targets[0] = filepath.Join(absOut, artifacts[0].Language.FileName())
		}
	} else {
		if err := validateOutputDirectory(absOut, cfg.Force); err != nil {
			return err
		}
		for i, art := range artifacts {
			targets[i] = filepath.Join(absOut, art.Language.FileName())
		}
	}

	for i, art := range artifacts {
		if err := writeFileAtomic(targets[i], []byte(art.Code), cfg.Force); err != nil {
			return wrapOutputError(err, absOut)
		}
		logger.Debug("client written", zap.String("path", targets[i]), zap.String("language", string(art.Language)))
		fmt.Fprintf(stdout, "Wrote %s client to %s (%d operations)\n", art.Language, targets[i], art.Operations)
	}
	return nil
}

func wrapOutputError(err error, outDir string) error {
	if _, ok := err.(usageError); ok {
		return err
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "rename") || strings.Contains(lower, "directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --out or use --force when appropriate.", outDir, err))
	}
	return err
}
