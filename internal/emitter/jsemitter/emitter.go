// Package jsemitter renders a plain JavaScript client with JSDoc types. It
// shares query and payload construction with the TypeScript emitter.
package jsemitter

import (
	"strings"
	"text/template"

	"github.com/mark3labs/openapi2sdk/internal/emitter"
	"github.com/mark3labs/openapi2sdk/internal/emitter/tsemitter"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

var moduleTemplate = template.Must(template.New("javascript").Parse(`{{.Header}}
"use strict";
{{- range .Types}}

{{.}}
{{- end}}

{{.ClientDoc}}
class {{.Client}} {
  /**
   * @param {string} baseUrl
{{- if .HasAuth}}
   * @param {string} apiKey
{{- end}}
   */
  constructor(baseUrl{{if .HasAuth}}, apiKey{{end}}) {
    this.baseUrl = baseUrl.replace(/\/+$/, "");
{{- if .HasAuth}}
    this.apiKey = apiKey;
{{- end}}
  }
{{- range .Methods}}

{{.Doc}}
  async {{.Name}}({{.Signature}}) {
    let url = this.baseUrl + {{.Path}};
{{- range .PathParams}}
    url = url.split({{.Key}}).join(String({{.Name}}));
{{- end}}
    const params = new URLSearchParams();
{{- range .Query}}
{{- if .Required}}
    {{.Append}}
{{- else}}
    if ({{.Name}} !== undefined && {{.Name}} !== null) {
      {{.Append}}
    }
{{- end}}
{{- end}}
    const qs = params.toString();
    if (qs) {
      url += "?" + qs;
    }
    const headers = { Accept: "application/json" };
{{- range .Headers}}
{{- if .Required}}
    headers[{{.Key}}] = String({{.Name}});
{{- else}}
    if ({{.Name}} !== undefined && {{.Name}} !== null) {
      headers[{{.Key}}] = String({{.Name}});
    }
{{- end}}
{{- end}}
{{- if $.HasAuth}}
    headers["Authorization"] = "Bearer " + this.apiKey;
{{- end}}
{{- if .Payload}}
    headers["Content-Type"] = "application/json";
    const payload = JSON.stringify({{.Payload}});
{{- else}}
    const payload = undefined;
{{- end}}
    const response = await fetch(url, { method: {{.Verb}}, headers, body: payload });
    if (!response.ok) {
      throw new Error("Request failed with status " + response.status);
    }
    const text = await response.text();
    return text ? JSON.parse(text) : undefined;
  }
{{- end}}
}

{{.Usage}}

if (typeof module !== "undefined" && module.exports) {
  module.exports = { {{.Client}} };
} else if (typeof window !== "undefined") {
  window.{{.Client}} = {{.Client}};
}
`))

type moduleView struct {
	Header    string
	Types     []string
	Client    string
	ClientDoc string
	HasAuth   bool
	Methods   []methodView
	Usage     string
}

type methodView struct {
	Name       string
	Signature  string
	Doc        string
	Verb       string
	Path       string
	PathParams []argView
	Query      []argView
	Headers    []argView
	Payload    string
}

type argView struct {
	Key      string
	Name     string
	Required bool
	Append   string
}

// Emit renders the JavaScript client module.
func Emit(in emitter.Input) (string, error) {
	title := strings.TrimSpace(in.Info.Title)
	if title == "" {
		title = in.APIName
	}
	view := moduleView{
		Header:    emitter.BlockComment(emitter.Header("JavaScript", in.Info), ""),
		Client:    in.ClientName,
		ClientDoc: emitter.BlockComment([]string{"Client for " + title + "."}, ""),
		HasAuth:   in.HasAuth(),
		Usage:     emitter.ScriptUsage(in),
	}
	for _, nt := range in.Types {
		view.Types = append(view.Types, typedef(nt))
	}
	for _, op := range in.Operations {
		view.Methods = append(view.Methods, method(op))
	}
	return emitter.Render(moduleTemplate, view)
}

func typedef(nt spec.NamedType) string {
	lines := emitter.DocLines(nt.Description)
	if nt.Type.Kind == spec.KindObject && len(nt.Type.Properties) > 0 {
		lines = append(lines, "@typedef {Object} "+nt.Name)
		for _, p := range nt.Type.Properties {
			lines = append(lines, "@property {"+TypeExpr(p.Type)+"} "+optional(p.Name, p.Required)+propertyDoc(p.Description))
		}
	} else {
		lines = append(lines, "@typedef {"+TypeExpr(nt.Type)+"} "+nt.Name)
	}
	return emitter.BlockComment(lines, "")
}

func propertyDoc(desc string) string {
	lines := emitter.DocLines(desc)
	if len(lines) == 0 {
		return ""
	}
	return " - " + lines[0]
}

func optional(name string, required bool) string {
	if required {
		return name
	}
	return "[" + name + "]"
}

func method(op spec.Operation) methodView {
	mv := methodView{
		Name:    op.FuncName,
		Verb:    emitter.Quote(string(op.Method)),
		Path:    emitter.Quote(op.Path),
		Payload: tsemitter.PayloadExpr(op),
	}
	lines := emitter.OperationDoc(op)
	names := make([]string, 0, len(op.Parameters))
	for _, p := range op.Parameters {
		names = append(names, p.Name)
		lines = append(lines, "@param {"+TypeExpr(p.Type)+"} "+optional(p.Name, p.Required)+propertyDoc(p.Description))
	}
	lines = append(lines, "@returns {Promise<"+TypeExpr(op.ResponseType)+">}")
	mv.Doc = emitter.BlockComment(lines, "  ")
	mv.Signature = strings.Join(names, ", ")

	for _, p := range op.PathParams() {
		mv.PathParams = append(mv.PathParams, argView{Key: emitter.Quote("{" + p.OriginalName + "}"), Name: p.Name, Required: true})
	}
	for _, p := range op.QueryParams() {
		mv.Query = append(mv.Query, argView{Key: emitter.Quote(p.OriginalName), Name: p.Name, Required: p.Required, Append: tsemitter.QueryAppend(p)})
	}
	for _, p := range op.HeaderParams() {
		mv.Headers = append(mv.Headers, argView{Key: emitter.Quote(p.OriginalName), Name: p.Name, Required: p.Required})
	}
	return mv
}

// TypeExpr maps t to a JSDoc type expression.
func TypeExpr(t spec.TypeRef) string {
	switch t.Kind {
	case spec.KindString:
		return "string"
	case spec.KindInteger, spec.KindNumber:
		return "number"
	case spec.KindBoolean:
		return "boolean"
	case spec.KindArray:
		if t.Items == nil {
			return "Array<*>"
		}
		return "Array<" + TypeExpr(*t.Items) + ">"
	case spec.KindObject:
		return "Object"
	case spec.KindRef:
		return t.Name
	default:
		return "*"
	}
}
