// Package cli implements the openapi2sdk command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mark3labs/openapi2sdk/internal/logging"
	"github.com/mark3labs/openapi2sdk/internal/metrics"
	"github.com/mark3labs/openapi2sdk/internal/sdk"
)

// Execute runs the openapi2sdk CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// app holds what every subcommand shares. It is filled in before any
// subcommand runs.
type app struct {
	logger      *zap.Logger
	metrics     *metrics.Collector
	svc         *sdk.Service
	file        fileConfig
	metricsFile string
	stdin       io.Reader
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop(), stdin: os.Stdin}

	cmd := &cobra.Command{
		Use:   "openapi2sdk",
		Short: "Generate API clients from Swagger/OpenAPI documents",
		Long: "openapi2sdk generates Python, TypeScript, JavaScript or Go clients from " +
			"Swagger 2.0 and OpenAPI 3.x documents, and can execute single API requests.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.finish()
		},
	}

	cmd.SetFlagErrorFunc(flagError)

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file path (YAML or JSON)")
	pf.BoolP("verbose", "v", false, "Enable verbose logging output")
	pf.String("log-level", "", "Log level (debug|info|warn|error); defaults to warn")
	pf.String("log-format", "", "Log format (console|json); defaults to console")
	pf.String("metrics-file", "", "Write prometheus metrics to this textfile on exit")

	for _, sub := range []*cobra.Command{
		newGenerateCmd(a),
		newExecuteCmd(a),
		newToolCmd(a),
		newInitCmd(),
	} {
		// Convert Cobra flag errors (like unknown flags) into friendly usage
		// errors that also show the command's help text.
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}

func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		if a.file, err = loadFileConfig(configPath); err != nil {
			return err
		}
	}

	level, format := a.file.LogLevel, a.file.LogFormat
	verbose := a.file.Verbose
	a.metricsFile = a.file.MetricsFile
	if flags.Changed("log-level") {
		level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		format, _ = flags.GetString("log-format")
	}
	if flags.Changed("verbose") {
		verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("metrics-file") {
		a.metricsFile, _ = flags.GetString("metrics-file")
	}
	if verbose {
		level = "debug"
	}

	a.stdin = cmd.InOrStdin()
	logger, err := logging.New(logging.Config{Level: level, Format: format, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return newUsageError(err.Error())
	}
	a.logger = logger
	a.metrics = metrics.NewCollector(logger)
	a.svc = sdk.New(sdk.WithLogger(logger), sdk.WithMetrics(a.metrics))
	logger.Debug("cli configured",
		zap.String("command", cmd.Name()),
		zap.String("config", configPath),
		zap.String("log_level", level),
	)
	return nil
}

func (a *app) finish() error {
	defer func() { _ = a.logger.Sync() }()
	if strings.TrimSpace(a.metricsFile) == "" {
		return nil
	}
	if err := a.metrics.WriteToTextfile(a.metricsFile); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
