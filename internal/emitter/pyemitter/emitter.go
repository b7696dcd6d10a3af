// Package pyemitter renders a Python client module built on requests.
package pyemitter

import (
	"strings"
	"text/template"

	"github.com/mark3labs/openapi2sdk/internal/emitter"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

var moduleTemplate = template.Must(template.New("python").Parse(`"""
{{- range .Header}}
{{.}}
{{- end}}
"""

from __future__ import annotations

from typing import Any, Dict, List, TypedDict

import requests
{{- range .Types}}
{{- if .Class}}


class {{.Name}}(TypedDict, total=False):
{{- if .Doc}}
{{.Doc}}
{{- end}}
{{- range .Fields}}
    {{.Key}}: {{.Type}}
{{- end}}
{{- else}}


{{.Decl}}
{{- end}}
{{- end}}


class {{.Client}}:
{{.ClientDoc}}

    def __init__(self, base_url: str{{if .HasAuth}}, {{.Credential}}: str{{end}}) -> None:
        self._base_url = base_url.rstrip("/")
{{- if .HasAuth}}
        self._api_key = {{.Credential}}
{{- end}}
{{- range .Methods}}

    def {{.Name}}({{.Signature}}) -> {{.Return}}:
{{.Doc}}
        url = self._base_url + {{.Path}}
{{- range .PathParams}}
        url = url.replace({{.Key}}, str({{.Name}}))
{{- end}}
        query: Dict[str, Any] = {}
{{- range .Query}}
{{- if .Required}}
        query[{{.Key}}] = {{.Name}}
{{- else}}
        if {{.Name}} is not None:
            query[{{.Key}}] = {{.Name}}
{{- end}}
{{- end}}
        headers: Dict[str, str] = {"Accept": "application/json"}
{{- range .Headers}}
{{- if .Required}}
        headers[{{.Key}}] = str({{.Name}})
{{- else}}
        if {{.Name}} is not None:
            headers[{{.Key}}] = str({{.Name}})
{{- end}}
{{- end}}
{{- if $.HasAuth}}
        headers["Authorization"] = f"Bearer {self._api_key}"
{{- end}}
        payload = {{.Payload}}
        response = requests.request({{.Verb}}, url, params=query, headers=headers, json=payload, timeout=30)
        response.raise_for_status()
        if not response.content:
            return None
        return response.json()
{{- end}}


{{.Usage}}
`))

type moduleView struct {
	Header     []string
	Types      []typeView
	Client     string
	ClientDoc  string
	HasAuth    bool
	Credential string
	Methods    []methodView
	Usage      string
}

type typeView struct {
	Name   string
	Class  bool
	Doc    string
	Fields []fieldView
	Decl   string
}

type fieldView struct {
	Key  string
	Type string
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
}

// Emit renders the Python client module.
func Emit(in emitter.Input) (string, error) {
	view := moduleView{
		Header:     escapeDoc(emitter.Header("Python", in.Info)),
		Client:     in.ClientName,
		ClientDoc:  docstring([]string{"Client for " + titleOf(in) + "."}, "    "),
		HasAuth:    in.HasAuth(),
		Credential: spec.CredentialParam,
	}
	for _, nt := range in.Types {
		view.Types = append(view.Types, namedType(nt))
	}
	for _, op := range in.Operations {
		view.Methods = append(view.Methods, method(op))
	}
	view.Usage = usage(in)
	return emitter.Render(moduleTemplate, view)
}

func usage(in emitter.Input) string {
	ctor := []string{emitter.Quote(emitter.ExampleBaseURL)}
	if in.HasAuth() {
		ctor = append(ctor, emitter.Quote("your-api-key"))
	}
	name, args := emitter.ExampleCall(in, "method_name")
	return emitter.CommentLines([]string{
		"Usage example:",
		"client = " + in.ClientName + "(" + strings.Join(ctor, ", ") + ")",
		"result = client." + name + "(" + strings.Join(args, ", ") + ")",
	}, "#")
}

func titleOf(in emitter.Input) string {
	if t := strings.TrimSpace(in.Info.Title); t != "" {
		return t
	}
	return in.APIName
}

func namedType(nt spec.NamedType) typeView {
	doc := emitter.DocLines(nt.Description)
	if nt.Type.Kind == spec.KindObject && len(nt.Type.Properties) > 0 {
		if fields, ok := classFields(nt.Type.Properties); ok {
			tv := typeView{Name: nt.Name, Class: true, Fields: fields}
			if len(doc) > 0 {
				tv.Doc = docstring(doc, "    ")
			}
			return tv
		}
		entries := make([]string, 0, len(nt.Type.Properties))
		for _, p := range nt.Type.Properties {
			entries = append(entries, emitter.Quote(p.Name)+": "+typeExpr(p.Type, true))
		}
		decl := nt.Name + " = TypedDict(" + emitter.Quote(nt.Name) + ", {" + strings.Join(entries, ", ") + "}, total=False)"
		return typeView{Name: nt.Name, Decl: withComment(doc, decl)}
	}
	return typeView{Name: nt.Name, Decl: withComment(doc, nt.Name+" = "+typeExpr(nt.Type, true))}
}

func classFields(props []spec.Property) ([]fieldView, bool) {
	fields := make([]fieldView, 0, len(props))
	for _, p := range props {
		if !isPlainName(p.Name) {
			return nil, false
		}
		fields = append(fields, fieldView{Key: p.Name, Type: typeExpr(p.Type, false)})
	}
	return fields, true
}

func withComment(doc []string, decl string) string {
	if len(doc) == 0 {
		return decl
	}
	lines := make([]string, 0, len(doc)+1)
	for _, line := range doc {
		lines = append(lines, strings.TrimRight("# "+line, " "))
	}
	return strings.Join(append(lines, decl), "\n")
}

func method(op spec.Operation) methodView {
	mv := methodView{
		Name:    op.FuncName,
		Return:  typeExpr(op.ResponseType, false),
		Doc:     docstring(emitter.OperationDoc(op), "        "),
		Verb:    emitter.Quote(string(op.Method)),
		Path:    emitter.Quote(op.Path),
		Payload: "None",
	}
	sig := []string{"self"}
	for _, p := range op.Parameters {
		arg := p.Name + ": " + typeExpr(p.Type, false)
		if !p.Required {
			arg += " = None"
		}
		sig = append(sig, arg)
	}
	mv.Signature = strings.Join(sig, ", ")

	for _, p := range op.PathParams() {
		mv.PathParams = append(mv.PathParams, argView{Key: emitter.Quote("{" + p.OriginalName + "}"), Name: p.Name, Required: true})
	}
	for _, p := range op.QueryParams() {
		mv.Query = append(mv.Query, argView{Key: emitter.Quote(p.OriginalName), Name: p.Name, Required: p.Required})
	}
	for _, p := range op.HeaderParams() {
		mv.Headers = append(mv.Headers, argView{Key: emitter.Quote(p.OriginalName), Name: p.Name, Required: p.Required})
	}
	if body := op.BodyParams(); len(body) > 0 {
		if op.RequestBody != nil && op.RequestBody.Whole {
			mv.Payload = body[0].Name
		} else {
			entries := make([]string, 0, len(body))
			for _, p := range body {
				entries = append(entries, emitter.Quote(p.OriginalName)+": "+p.Name)
			}
			mv.Payload = "{k: v for k, v in {" + strings.Join(entries, ", ") + "}.items() if v is not None}"
		}
	}
	return mv
}

// typeExpr maps t to a typing annotation. Named references are quoted when
// the expression is evaluated at import time.
func typeExpr(t spec.TypeRef, quoteRefs bool) string {
	switch t.Kind {
	case spec.KindString:
		return "str"
	case spec.KindInteger:
		return "int"
	case spec.KindNumber:
		return "float"
	case spec.KindBoolean:
		return "bool"
	case spec.KindArray:
		if t.Items == nil {
			return "List[Any]"
		}
		return "List[" + typeExpr(*t.Items, quoteRefs) + "]"
	case spec.KindObject:
		return "Dict[str, Any]"
	case spec.KindRef:
		if quoteRefs {
			return emitter.Quote(t.Name)
		}
		return t.Name
	default:
		return "Any"
	}
}

func docstring(lines []string, indent string) string {
	lines = escapeDoc(lines)
	if len(lines) == 1 && !strings.HasSuffix(lines[0], `"`) {
		return indent + `"""` + lines[0] + `"""`
	}
	out := append([]string{`"""`}, lines...)
	out = append(out, `"""`)
	return emitter.Indent(out, indent)
}

var docEscaper = strings.NewReplacer(`\`, `\\`, `"""`, `\"\"\"`)

func escapeDoc(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = docEscaper.Replace(line)
	}
	return out
}

var keywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {}, "async": {},
	"await": {}, "break": {}, "class": {}, "continue": {}, "def": {}, "del": {}, "elif": {},
	"else": {}, "except": {}, "finally": {}, "for": {}, "from": {}, "global": {}, "if": {},
	"import": {}, "in": {}, "is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {},
	"pass": {}, "raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

func isPlainName(name string) bool {
	if _, kw := keywords[name]; kw {
		return false
	}
	return strings.IndexByte(name, '$') < 0 && emitter.IsPlainKey(name)
}
