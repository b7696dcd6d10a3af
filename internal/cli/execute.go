package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mark3labs/openapi2sdk/internal/executor"
	"github.com/mark3labs/openapi2sdk/internal/output"
	"github.com/mark3labs/openapi2sdk/internal/sdk"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

// ExecuteConfig captures the inputs of the execute command.
type ExecuteConfig struct {
	Input       string
	OperationID string
	BaseURL     string
	Endpoint    string
	Method      string
	Headers     map[string][]string
	Query       map[string][]string
	Path        map[string][]string
	Data        string
	Params      string
	Select      string
	Compact     bool
}

func newExecuteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute one API request described by a document or by flags",
		Long: "Execute one API request. The operation is looked up in --input when given; " +
			"otherwise --endpoint and --method describe it. HTTP failures are printed as " +
			"{error, status, details} and make the command exit non-zero.",
		Example: strings.TrimSpace(`  openapi2sdk execute --input spec.yaml --operation-id getPet --path id=42
  openapi2sdk execute --base-url https://api.example.com --endpoint /pets --query limit=10 --select '$[*].name'`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveExecuteConfig(cmd, a.file)
			if err != nil {
				return err
			}
			return runExecute(cmd.Context(), a, cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "URL, file path, - for stdin, or the document text")
	flags.String("operation-id", "", "Operation to call; its path and method win over --endpoint and --method")
	flags.String("base-url", "", "Base URL of the API; defaults to the document's first server")
	flags.String("endpoint", "", "Path template to call when no operation is given")
	flags.String("method", "", "HTTP method; defaults to GET")
	flags.StringArray("header", nil, "Request header as key=value (repeatable)")
	flags.StringArray("query", nil, "Query parameter as key=value (repeatable)")
	flags.StringArray("path", nil, "Path parameter as key=value (repeatable)")
	flags.String("data", "", "Request body as JSON, @file or -")
	flags.String("params", "", "Full request parameters object as JSON, @file or -")
	flags.String("select", "", "JSONPath expression applied to the result before printing")
	flags.Bool("compact", false, "Print JSON on one line even on a terminal")

	return cmd
}

func resolveExecuteConfig(cmd *cobra.Command, file fileConfig) (*ExecuteConfig, error) {
	flags := cmd.Flags()
	cfg := &ExecuteConfig{Input: file.Input, OperationID: file.OperationID, BaseURL: file.BaseURL}
	if flags.Changed("input") {
		cfg.Input, _ = flags.GetString("input")
	}
	if flags.Changed("operation-id") {
		cfg.OperationID, _ = flags.GetString("operation-id")
	}
	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	cfg.Endpoint, _ = flags.GetString("endpoint")
	cfg.Method, _ = flags.GetString("method")
	cfg.Data, _ = flags.GetString("data")
	cfg.Params, _ = flags.GetString("params")
	cfg.Select, _ = flags.GetString("select")
	cfg.Compact, _ = flags.GetBool("compact")

	var err error
	for flag, dst := range map[string]*map[string][]string{
		"header": &cfg.Headers,
		"query":  &cfg.Query,
		"path":   &cfg.Path,
	} {
		values, _ := flags.GetStringArray(flag)
		if *dst, err = parsePairs(values, flag); err != nil {
			return nil, err
		}
	}

	cfg.OperationID = strings.TrimSpace(cfg.OperationID)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if strings.TrimSpace(cfg.Input) == "" && cfg.OperationID != "" {
		return nil, newUsageError("execute: --operation-id needs --input to look the operation up")
	}
	return cfg, nil
}

// requestParams merges --params with the individual flags; flags win.
func (c *ExecuteConfig) requestParams(stdin io.Reader) (map[string]any, error) {
	params := map[string]any{}
	if c.Params != "" {
		raw, err := readArg(c.Params, "params", stdin)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, newUsageError(fmt.Sprintf("--params must be a JSON object: %v", err))
		}
	}
	if c.BaseURL != "" {
		params[executor.KeyBaseURL] = c.BaseURL
	}
	if c.Endpoint != "" {
		params[executor.KeyEndpoint] = c.Endpoint
	}
	if c.Method != "" {
		params[executor.KeyMethod] = c.Method
	}
	mergePairs(params, executor.KeyHeaders, c.Headers)
	mergePairs(params, executor.KeyParams, c.Query)
	mergePairs(params, executor.KeyPathParams, c.Path)

	if c.Data != "" {
		raw, err := readArg(c.Data, "data", stdin)
		if err != nil {
			return nil, err
		}
		var body any
		if err := json.Unmarshal([]byte(raw), &body); err == nil {
			params[executor.KeyJSON] = body
		} else {
			delete(params, executor.KeyJSON)
			params[executor.KeyBody] = raw
		}
	}
	return params, nil
}

// mergePairs adds pairs under params[key], keeping entries that came from
// --params unless a flag names the same key. A key given once maps to a
// string; a repeated key maps to a list.
func mergePairs(params map[string]any, key string, pairs map[string][]string) {
	if len(pairs) == 0 {
		return
	}
	m, _ := params[key].(map[string]any)
	if m == nil {
		m = make(map[string]any, len(pairs))
	}
	for k, values := range pairs {
		if len(values) == 1 {
			m[k] = values[0]
			continue
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		m[k] = list
	}
	params[key] = m
}

func runExecute(ctx context.Context, a *app, cfg *ExecuteConfig, stdout io.Writer) error {
	params, err := cfg.requestParams(a.stdin)
	if err != nil {
		return err
	}

	var doc *spec.Document
	if strings.TrimSpace(cfg.Input) != "" {
		source, err := readSource(cfg.Input, a.stdin)
		if err != nil {
			return err
		}
		if doc, err = a.svc.Load(ctx, source, false); err != nil {
			return err
		}
		if _, ok := params[executor.KeyBaseURL]; !ok {
			if servers := doc.Servers(); len(servers) > 0 {
				a.logger.Debug("using server from document", zap.String("base_url", servers[0]))
				params[executor.KeyBaseURL] = servers[0]
			}
		}
	}

	res, err := a.svc.Execute(ctx, sdk.ExecuteRequest{Document: doc, OperationID: cfg.OperationID, Params: params})
	if err != nil {
		return err
	}

	var v any = res
	if cfg.Select != "" {
		if v, err = output.Select(res, cfg.Select); err != nil {
			return newUsageError(err.Error())
		}
	}
	if err := output.NewPrinter(stdout, cfg.Compact).JSON(v); err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("%w: %s", ErrRequestFailed, res.Failure.Error)
	}
	return nil
}
