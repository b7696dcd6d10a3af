package spec

import (
	"encoding/json"
	"fmt"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
)

var swaggerMethods = []string{"get", "put", "post", "delete", "patch", "options", "head"}

// convertSwagger turns a Swagger 2.0 tree into an OpenAPI 3 tree using
// kin-openapi. The input tree is left untouched.
func convertSwagger(root map[string]any) (map[string]any, error) {
	prepared, _ := cloneTree(root).(map[string]any)
	rewriteSwaggerBodies(prepared)

	data, err := json.Marshal(prepared)
	if err != nil {
		return nil, fmt.Errorf("encode swagger document: %w", err)
	}
	var v2 openapi2.T
	if err := json.Unmarshal(data, &v2); err != nil {
		return nil, fmt.Errorf("decode swagger document: %w", err)
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(v3)
	if err != nil {
		return nil, fmt.Errorf("encode converted document: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(out, &tree); err != nil {
		return nil, fmt.Errorf("decode converted document: %w", err)
	}
	return tree, nil
}

// rewriteSwaggerBodies fixes two constructs the converter rejects: several
// body parameters on one operation are merged into a single object body, and
// body parameters mixed with formData become formData fields.
func rewriteSwaggerBodies(doc map[string]any) bool {
	modified := false
	paths := mapAt(doc, "paths")
	for _, path := range sortedKeys(paths) {
		item := mapAt(paths, path)
		for _, method := range swaggerMethods {
			if op := mapAt(item, method); op != nil && rewriteOperationBodies(op) {
				modified = true
			}
		}
	}
	return modified
}

func rewriteOperationBodies(op map[string]any) bool {
	params := sliceAt(op, "parameters")
	bodies, hasFormData := 0, false
	for _, p := range params {
		switch strings.ToLower(stringAt(asMap(p), "in")) {
		case "body":
			bodies++
		case "formdata":
			hasFormData = true
		}
	}
	if bodies == 0 || (bodies == 1 && !hasFormData) {
		return false
	}

	if hasFormData {
		rewritten := make([]any, 0, len(params))
		for _, p := range params {
			pm := asMap(p)
			if strings.EqualFold(stringAt(pm, "in"), "body") {
				rewritten = append(rewritten, formFieldFromBody(pm))
				continue
			}
			rewritten = append(rewritten, p)
		}
		op["parameters"] = rewritten
		consumes := sliceAt(op, "consumes")
		if !containsString(consumes, "multipart/form-data") {
			op["consumes"] = append(consumes, "multipart/form-data")
		}
		return true
	}

	props := map[string]any{}
	var required []any
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm := asMap(p)
		if !strings.EqualFold(stringAt(pm, "in"), "body") {
			rest = append(rest, p)
			continue
		}
		name := stringAt(pm, "name")
		if name == "" {
			name = "field"
		}
		schema := schemaOfParam(pm)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if boolAt(pm, "required") {
			required = append(required, name)
		}
	}
	merged := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		merged["required"] = required
	}
	op["parameters"] = append([]any{map[string]any{"in": "body", "name": "body", "schema": merged}}, rest...)
	return true
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

// schemaOfParam returns the parameter's schema, synthesizing one from the
// inline type, items and format when there is none.
func schemaOfParam(pm map[string]any) map[string]any {
	if schema := mapAt(pm, "schema"); schema != nil {
		return schema
	}
	t := stringAt(pm, "type")
	if t == "" {
		return nil
	}
	out := map[string]any{"type": t}
	if items := mapAt(pm, "items"); items != nil {
		out["items"] = items
	}
	if f := stringAt(pm, "format"); f != "" {
		out["format"] = f
	}
	return out
}

func formFieldFromBody(pm map[string]any) map[string]any {
	name := stringAt(pm, "name")
	if name == "" {
		name = "field"
	}
	out := map[string]any{"in": "formData", "name": name, "type": "string"}
	if desc := stringAt(pm, "description"); desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	schema := schemaOfParam(pm)
	if schema == nil || stringAt(schema, "$ref") != "" {
		// A referenced object has no formData representation.
		return out
	}
	if t := stringAt(schema, "type"); t != "" && t != "object" {
		out["type"] = t
	}
	if items := mapAt(schema, "items"); items != nil && out["type"] == "array" {
		out["items"] = items
	}
	if f := stringAt(schema, "format"); f != "" {
		out["format"] = f
	}
	return out
}
