// Package tsemitter renders a TypeScript client built on fetch.
package tsemitter

import (
	"strings"
	"text/template"

	"github.com/mark3labs/openapi2sdk/internal/emitter"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

var moduleTemplate = template.Must(template.New("typescript").Parse(`{{.Header}}
{{- range .Types}}

{{.Doc}}{{if .Fields}}export interface {{.Name}} {
{{- range .Fields}}
  {{.Key}}{{if .Optional}}?{{end}}: {{.Type}};
{{- end}}
}
{{- else}}export type {{.Name}} = {{.Alias}};
{{- end}}
{{- end}}

{{.ClientDoc}}
export class {{.Client}} {
  private readonly baseUrl: string;
{{- if .HasAuth}}
  private readonly apiKey: string;
{{- end}}

  constructor(baseUrl: string{{if .HasAuth}}, apiKey: string{{end}}) {
    this.baseUrl = baseUrl.replace(/\/+$/, "");
{{- if .HasAuth}}
    this.apiKey = apiKey;
{{- end}}
  }
{{- range .Methods}}

{{.Doc}}
  async {{.Name}}({{.Signature}}): Promise<{{.Return}}> {
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
    const headers: Record<string, string> = { Accept: "application/json" };
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
    return (text ? JSON.parse(text) : undefined) as {{.Return}};
  }
{{- end}}
}

{{.Usage}}
`))

type moduleView struct {
	Header    string
	Types     []typeView
	Client    string
	ClientDoc string
	HasAuth   bool
	Methods   []methodView
	Usage     string
}

type typeView struct {
	Name   string
	Doc    string
	Fields []fieldView
	Alias  string
}

type fieldView struct {
	Key      string
	Type     string
	Optional bool
}

type methodView struct {
	Name       string
	Signature  string
	Return     string
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

// Emit renders the TypeScript client module.
func Emit(in emitter.Input) (string, error) {
	view := moduleView{
		Header:    emitter.BlockComment(emitter.Header("TypeScript", in.Info), ""),
		Client:    in.ClientName,
		ClientDoc: emitter.BlockComment([]string{"Client for " + titleOf(in) + "."}, ""),
		HasAuth:   in.HasAuth(),
		Usage:     emitter.ScriptUsage(in),
	}
	for _, nt := range in.Types {
		view.Types = append(view.Types, namedType(nt))
	}
	for _, op := range in.Operations {
		view.Methods = append(view.Methods, method(op))
	}
	return emitter.Render(moduleTemplate, view)
}

func titleOf(in emitter.Input) string {
	if t := strings.TrimSpace(in.Info.Title); t != "" {
		return t
	}
	return in.APIName
}

func namedType(nt spec.NamedType) typeView {
	tv := typeView{Name: nt.Name}
	if doc := emitter.DocLines(nt.Description); len(doc) > 0 {
		tv.Doc = emitter.BlockComment(doc, "") + "\n"
	}
	if nt.Type.Kind == spec.KindObject && len(nt.Type.Properties) > 0 {
		for _, p := range nt.Type.Properties {
			tv.Fields = append(tv.Fields, fieldView{Key: propertyKey(p.Name), Type: TypeExpr(p.Type), Optional: !p.Required})
		}
		return tv
	}
	tv.Alias = TypeExpr(nt.Type)
	return tv
}

func propertyKey(name string) string {
	if emitter.IsPlainKey(name) {
		return name
	}
	return emitter.Quote(name)
}

func method(op spec.Operation) methodView {
	mv := methodView{
		Name:   op.FuncName,
		Return: TypeExpr(op.ResponseType),
		Doc:    emitter.BlockComment(emitter.OperationDoc(op), "  "),
		Verb:   emitter.Quote(string(op.Method)),
		Path:   emitter.Quote(op.Path),
	}
	sig := make([]string, 0, len(op.Parameters))
	for _, p := range op.Parameters {
		if p.Required {
			sig = append(sig, p.Name+": "+TypeExpr(p.Type))
		} else {
			sig = append(sig, p.Name+"?: "+TypeExpr(p.Type))
		}
	}
	mv.Signature = strings.Join(sig, ", ")

	for _, p := range op.PathParams() {
		mv.PathParams = append(mv.PathParams, argView{Key: emitter.Quote("{" + p.OriginalName + "}"), Name: p.Name, Required: true})
	}
	for _, p := range op.QueryParams() {
		mv.Query = append(mv.Query, argView{Key: emitter.Quote(p.OriginalName), Name: p.Name, Required: p.Required, Append: QueryAppend(p)})
	}
	for _, p := range op.HeaderParams() {
		mv.Headers = append(mv.Headers, argView{Key: emitter.Quote(p.OriginalName), Name: p.Name, Required: p.Required})
	}
	mv.Payload = PayloadExpr(op)
	return mv
}

// QueryAppend is the statement adding p to a URLSearchParams named params.
// Arrays become repeated keys. The JavaScript emitter shares it.
func QueryAppend(p spec.Parameter) string {
	key := emitter.Quote(p.OriginalName)
	if p.Type.Kind == spec.KindArray {
		return "for (const value of " + p.Name + ") params.append(" + key + ", String(value));"
	}
	return "params.append(" + key + ", String(" + p.Name + "));"
}

// PayloadExpr is the value passed to JSON.stringify, or "" when op has no
// body.
func PayloadExpr(op spec.Operation) string {
	body := op.BodyParams()
	if len(body) == 0 {
		return ""
	}
	if op.RequestBody != nil && op.RequestBody.Whole {
		return body[0].Name
	}
	entries := make([]string, 0, len(body))
	for _, p := range body {
		entries = append(entries, emitter.Quote(p.OriginalName)+": "+p.Name)
	}
	return "{ " + strings.Join(entries, ", ") + " }"
}

// TypeExpr maps t to a TypeScript type.
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
			return "any[]"
		}
		return TypeExpr(*t.Items) + "[]"
	case spec.KindObject:
		return "Record<string, any>"
	case spec.KindRef:
		return t.Name
	default:
		return "any"
	}
}
