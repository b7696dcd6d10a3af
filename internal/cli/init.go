package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigName = "openapi2sdk.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample openapi2sdk configuration file",
		Long:  "Scaffold a commented openapi2sdk configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{OutputPath: out, Force: force}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(_ context.Context, cfg *InitConfig, stdout io.Writer) error {
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := writeFileAtomic(absPath, []byte(content), cfg.Force); err != nil {
		if _, ok := err.(usageError); ok {
			return newUsageError("init: " + err.Error())
		}
		return newUsageError(fmt.Sprintf("init: cannot write %s: %v\nHint: choose a different --out or check directory permissions.", absPath, err))
	}
	fmt.Fprintf(stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# openapi2sdk configuration (YAML)
# All fields are optional. Command-line flags override config values.

# URL, file path or inline text of the Swagger/OpenAPI document.
# input: ./openapi.yaml

# Target languages (python|typescript|javascript|go). Defaults to python.
# lang: [python, typescript]

# Output file for one language, or directory for several. Stdout when omitted.
# out: ./clients

# Only generate the method for this operation.
# operationId: getPet

# Only include operations with these tags (comma-separated or list).
# includeTags: [public,read]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Run full OpenAPI validation before generating.
# validate: false

# Overwrite existing output.
# force: false

# Base URL used by execute when the document has no servers.
# baseUrl: https://api.example.com

# Logging: level (debug|info|warn|error) and format (console|json).
# logLevel: warn
# logFormat: console
# verbose: false

# Write prometheus metrics to this textfile when a command finishes.
# metricsFile: ./openapi2sdk.prom
`
