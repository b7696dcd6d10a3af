package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/openapi2sdk/internal/output"
	"github.com/mark3labs/openapi2sdk/internal/sdk"
)

func newToolCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Print the " + sdk.ToolName + " tool definition or call the tool",
		Long: "Print the " + sdk.ToolName + " tool definition with --schema, or call the tool with " +
			"--args and print the tool result.",
		Example: strings.TrimSpace(`  openapi2sdk tool --schema
  openapi2sdk tool --args '{"spec_source": "https://petstore3.swagger.io/api/v3/openapi.json", "language": "typescript"}'`),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetBool("schema")
			rawArgs, _ := cmd.Flags().GetString("args")
			compact, _ := cmd.Flags().GetBool("compact")
			if schema == (rawArgs != "") {
				return newUsageError("tool: give exactly one of --schema or --args")
			}

			tool := sdk.NewTool(a.svc)
			printer := output.NewPrinter(cmd.OutOrStdout(), compact)
			if schema {
				return printer.JSON(tool.Definition())
			}

			raw, err := readArg(rawArgs, "args", a.stdin)
			if err != nil {
				return err
			}
			var callArgs map[string]any
			if err := json.Unmarshal([]byte(raw), &callArgs); err != nil {
				return newUsageError(fmt.Sprintf("--args must be a JSON object: %v", err))
			}
			return printer.JSON(tool.Call(cmd.Context(), callArgs))
		},
	}

	cmd.Flags().Bool("schema", false, "Print the tool definition")
	cmd.Flags().String("args", "", "Tool arguments as JSON, @file or -")
	cmd.Flags().Bool("compact", false, "Print JSON on one line even on a terminal")
	return cmd
}
