package sdk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mark3labs/openapi2sdk/internal/codegen"
	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
)

// ToolName is the name the tool is registered under.
const ToolName = "openapi_sdk"

// Tool argument keys.
const (
	ArgSpecSource     = "spec_source"
	ArgLanguage       = "language"
	ArgOperationID    = "operation_id"
	ArgExecuteRequest = "execute_request"
	ArgRequestParams  = "request_params"
)

// ToolDefinition describes the tool to a host that lists tools.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolResult is the reply to one call.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

// Content is a text item or an embedded resource.
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Resource *Resource `json:"resource,omitempty"`
}

type Resource struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Tool exposes generation, and optionally execution, as a single call.
type Tool struct {
	svc *Service
	// newID names resources; tests replace it.
	newID func() string
}

func NewTool(svc *Service) *Tool {
	return &Tool{svc: svc, newID: uuid.NewString}
}

// Definition returns the tool name, description and input schema.
func (t *Tool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolName,
		Description: "Generate code for an OpenAPI specification and optionally make API requests",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				ArgSpecSource: map[string]any{
					"type":        "string",
					"description": "URL to OpenAPI spec or JSON string containing the spec",
				},
				ArgLanguage: map[string]any{
					"type":        "string",
					"enum":        codegen.LanguageNames(),
					"default":     string(codegen.Python),
					"description": "Programming language for the generated code",
				},
				ArgOperationID: map[string]any{
					"type":        "string",
					"description": "Specific operation to generate code for (optional)",
				},
				ArgExecuteRequest: map[string]any{
					"type":        "boolean",
					"default":     false,
					"description": "Whether to execute the API request",
				},
				ArgRequestParams: map[string]any{
					"type":        "object",
					"description": "Parameters for the API request (if execute_request is true)",
				},
			},
			"required": []string{ArgSpecSource},
		},
	}
}

type toolArgs struct {
	source    string
	language  string
	opID      string
	execute   bool
	reqParams map[string]any
}

func parseArgs(args map[string]any) (toolArgs, error) {
	var a toolArgs
	var err error
	if a.source, err = stringArg(args, ArgSpecSource); err != nil {
		return a, err
	}
	if a.source == "" {
		return a, sdkerr.InvalidParams(ArgSpecSource, "%s is required", ArgSpecSource)
	}
	if a.language, err = stringArg(args, ArgLanguage); err != nil {
		return a, err
	}
	if a.opID, err = stringArg(args, ArgOperationID); err != nil {
		return a, err
	}
	if v, ok := args[ArgExecuteRequest]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return a, sdkerr.InvalidParams(ArgExecuteRequest, "%s must be a boolean", ArgExecuteRequest)
		}
		a.execute = b
	}
	if v, ok := args[ArgRequestParams]; ok && v != nil {
		m, ok := v.(map[string]any)
		if !ok {
			return a, sdkerr.InvalidParams(ArgRequestParams, "%s must be an object", ArgRequestParams)
		}
		a.reqParams = m
	}
	return a, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", sdkerr.InvalidParams(key, "%s must be a string", key)
	}
	return s, nil
}

// Call runs the tool. Failures never escape as errors; they come back as a
// result with IsError set.
func (t *Tool) Call(ctx context.Context, args map[string]any) *ToolResult {
	res, err := t.call(ctx, args)
	if err != nil {
		t.svc.logger.Warn("tool call failed", zap.String("tool", ToolName), zap.Error(err))
		return &ToolResult{
			Content: []Content{{Type: "text", Text: "Error generating SDK: " + err.Error()}},
			IsError: true,
		}
	}
	return res
}

func (t *Tool) call(ctx context.Context, args map[string]any) (*ToolResult, error) {
	a, err := parseArgs(args)
	if err != nil {
		return nil, err
	}
	req := GenerateRequest{Source: a.source, Language: a.language, OperationID: a.opID}
	// Checked up front so a bad language costs no fetch.
	if _, err := req.language(); err != nil {
		return nil, err
	}
	doc, err := t.svc.Load(ctx, a.source, false)
	if err != nil {
		return nil, err
	}
	art, err := t.svc.GenerateDocument(ctx, doc, req)
	if err != nil {
		return nil, err
	}

	title := doc.Info().Title
	if title == "" {
		title = "API"
	}
	out := &ToolResult{Content: []Content{
		{Type: "text", Text: "SDK generated successfully for " + title},
		{Type: "resource", Resource: &Resource{
			URI:      "sdk-code-" + t.newID(),
			MimeType: "text/plain",
			Text:     art.Code,
		}},
	}}

	if !a.execute {
		return out, nil
	}
	params := a.reqParams
	if params == nil {
		params = map[string]any{}
	}
	result, err := t.svc.Execute(ctx, ExecuteRequest{Document: doc, OperationID: a.opID, Params: params})
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode api response: %w", err)
	}
	out.Content = append(out.Content, Content{Type: "resource", Resource: &Resource{
		URI:      "api-response-" + t.newID(),
		MimeType: "application/json",
		Text:     string(body),
	}})
	return out, nil
}
