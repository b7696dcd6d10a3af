// Package goemitter renders a Go client package built on net/http.
package goemitter

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/openapi2sdk/internal/emitter"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

var packageTemplate = template.Must(template.New("go").Parse(`{{.Header}}
package {{.Package}}

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)
{{- range .Types}}

{{.Doc}}{{if .Fields}}type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}} {{.Tag}}
{{- end}}
}
{{- else}}type {{.Name}} {{.Underlying}}
{{- end}}
{{- end}}

// {{.Client}} is a client for {{.Title}}.
type {{.Client}} struct {
	baseURL string
{{- if .HasAuth}}
	apiKey string
{{- end}}
	HTTPClient *http.Client
}

// New{{.Client}} returns a client for the API served at baseURL.
func New{{.Client}}(baseURL string{{if .HasAuth}}, apiKey string{{end}}) *{{.Client}} {
	return &{{.Client}}{
		baseURL: strings.TrimRight(baseURL, "/"),
{{- if .HasAuth}}
		apiKey: apiKey,
{{- end}}
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}
{{- range .Methods}}

{{.Doc}}
func (c *{{$.Client}}) {{.Name}}({{.Signature}}) ({{.Return}}, error) {
	path := {{.Path}}
{{- range .PathParams}}
	path = strings.ReplaceAll(path, {{.Key}}, fmt.Sprint({{.Value}}))
{{- end}}
	query := url.Values{}
{{- range .Query}}
{{- if .Repeated}}
	for _, value := range {{.Name}} {
		query.Add({{.Key}}, fmt.Sprint(value))
	}
{{- else if .Guard}}
	if {{.Name}} != nil {
		query.Set({{.Key}}, fmt.Sprint({{.Value}}))
	}
{{- else}}
	query.Set({{.Key}}, fmt.Sprint({{.Value}}))
{{- end}}
{{- end}}
	headers := map[string]string{}
{{- range .Headers}}
{{- if .Guard}}
	if {{.Name}} != nil {
		headers[{{.Key}}] = fmt.Sprint({{.Value}})
	}
{{- else}}
	headers[{{.Key}}] = fmt.Sprint({{.Value}})
{{- end}}
{{- end}}
	var payload any
{{- if .Whole}}
{{- range .Body}}
{{- if .Guard}}
	if {{.Name}} != nil {
		payload = {{.Name}}
	}
{{- else}}
	payload = {{.Name}}
{{- end}}
{{- end}}
{{- else if .Body}}
	fields := map[string]any{}
{{- range .Body}}
{{- if .Guard}}
	if {{.Name}} != nil {
		fields[{{.Key}}] = {{.Name}}
	}
{{- else}}
	fields[{{.Key}}] = {{.Name}}
{{- end}}
{{- end}}
	payload = fields
{{- end}}
	var out {{.Return}}
	err := c.do(ctx, {{.Verb}}, path, query, headers, payload, &out)
	return out, err
}
{{- end}}

func (c *{{.Client}}) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
{{- if .HasAuth}}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
{{- end}}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
`))

type packageView struct {
	Header  string
	Package string
	Types   []typeView
	Client  string
	Title   string
	HasAuth bool
	Methods []methodView
}

type typeView struct {
	Name       string
	Doc        string
	Fields     []fieldView
	Underlying string
}

type fieldView struct {
	Name string
	Type string
	Tag  string
}

type methodView struct {
	Name       string
	Doc        string
	Signature  string
	Return     string
	Verb       string
	Path       string
	PathParams []argView
	Query      []argView
	Headers    []argView
	Body       []argView
	Whole      bool
}

type argView struct {
	Key   string
	Name  string
	Value string
	// Guard is set when the argument may be nil and is skipped when it is.
	Guard    bool
	Repeated bool
}

// Emit renders the Go client package and formats it with gofmt.
func Emit(in emitter.Input) (string, error) {
	pkg := PackageName(in.APIName)
	title := strings.TrimSpace(in.Info.Title)
	if title == "" {
		title = in.APIName
	}
	header := emitter.Header("Go", in.Info)
	header[0] = "Package " + pkg + " is a " + header[0]
	view := packageView{
		Header:  lineComment(header),
		Package: pkg,
		Client:  in.ClientName,
		Title:   title,
		HasAuth: in.HasAuth(),
	}
	for _, nt := range in.Types {
		view.Types = append(view.Types, namedType(nt))
	}
	// Parameters share the package scope with the emitted type names.
	typeNames := map[string]struct{}{in.ClientName: {}}
	for _, nt := range in.Types {
		typeNames[nt.Name] = struct{}{}
	}
	taken := map[string]struct{}{"HTTPClient": {}}
	for _, op := range in.Operations {
		view.Methods = append(view.Methods, method(op, taken, typeNames))
	}
	src, err := emitter.Render(packageTemplate, view)
	if err != nil {
		return "", err
	}
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return "", fmt.Errorf("format generated go source: %w", err)
	}
	return string(formatted), nil
}

var goKeywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {}, "default": {}, "defer": {},
	"else": {}, "fallthrough": {}, "for": {}, "func": {}, "go": {}, "goto": {}, "if": {},
	"import": {}, "interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},
}

// PackageName lowercases apiName into a package clause identifier.
func PackageName(apiName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(apiName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "api" + name
	}
	if _, kw := goKeywords[name]; kw {
		name += "api"
	}
	return name
}

var initialisms = map[string]struct{}{
	"ID": {}, "URL": {}, "URI": {}, "API": {}, "HTTP": {}, "UUID": {}, "JSON": {}, "IP": {}, "SQL": {},
}

// ExportedName turns raw into an exported Go identifier, e.g. "pet_id"
// becomes "PetID" and "getPet" becomes "GetPet".
func ExportedName(raw string) string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range parts {
		if _, ok := initialisms[strings.ToUpper(part)]; ok {
			b.WriteString(strings.ToUpper(part))
			continue
		}
		b.WriteString(caser.String(part))
	}
	name := b.String()
	if name == "" {
		return "Field"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "N" + name
	}
	return name
}

func unique(base string, taken map[string]struct{}) string {
	name := base
	for n := 2; ; n++ {
		if _, ok := taken[name]; !ok {
			taken[name] = struct{}{}
			return name
		}
		name = base + strconv.Itoa(n)
	}
}

func lineComment(lines []string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			out[i] = "//"
		} else {
			out[i] = "// " + line
		}
	}
	return strings.Join(out, "\n")
}

func namedType(nt spec.NamedType) typeView {
	tv := typeView{Name: nt.Name}
	if doc := emitter.DocLines(nt.Description); len(doc) > 0 {
		tv.Doc = lineComment(doc) + "\n"
	}
	if nt.Type.Kind != spec.KindObject || len(nt.Type.Properties) == 0 {
		tv.Underlying = TypeExpr(nt.Type, false)
		return tv
	}
	taken := map[string]struct{}{}
	for _, p := range nt.Type.Properties {
		tv.Fields = append(tv.Fields, fieldView{
			Name: unique(ExportedName(p.Name), taken),
			Type: TypeExpr(p.Type, true),
			Tag:  jsonTag(p.Name, !p.Required),
		})
	}
	return tv
}

func jsonTag(name string, omitEmpty bool) string {
	value := name
	if omitEmpty {
		value += ",omitempty"
	}
	tag := `json:` + strconv.Quote(value)
	if strings.ContainsRune(tag, '`') {
		return strconv.Quote(tag)
	}
	return "`" + tag + "`"
}

// TypeExpr maps t to a Go type. References are pointers when pointer is set
// and plain names inside slices.
func TypeExpr(t spec.TypeRef, pointer bool) string {
	switch t.Kind {
	case spec.KindString:
		return "string"
	case spec.KindInteger:
		return "int64"
	case spec.KindNumber:
		return "float64"
	case spec.KindBoolean:
		return "bool"
	case spec.KindArray:
		if t.Items == nil {
			return "[]any"
		}
		return "[]" + TypeExpr(*t.Items, false)
	case spec.KindObject:
		return "map[string]any"
	case spec.KindRef:
		if pointer {
			return "*" + t.Name
		}
		return t.Name
	default:
		return "any"
	}
}

// paramNames maps each parameter to its Go name. A parameter named like an
// emitted type would shadow it inside the method, so it is renamed.
func paramNames(params []spec.Parameter, typeNames map[string]struct{}) map[string]string {
	used := make(map[string]struct{}, len(params))
	for _, p := range params {
		used[p.Name] = struct{}{}
	}
	out := make(map[string]string, len(params))
	for _, p := range params {
		if _, shadows := typeNames[p.Name]; !shadows {
			out[p.Name] = p.Name
			continue
		}
		base := strings.ToLower(p.Name[:1]) + p.Name[1:]
		if _, clash := typeNames[base]; clash || spec.IsReservedIdentifier(base) {
			base += "Param"
		}
		out[p.Name] = unique(base, used)
	}
	return out
}

// nilable reports whether the Go rendering of t already has a nil value.
func nilable(t spec.TypeRef) bool {
	switch t.Kind {
	case spec.KindArray, spec.KindObject, spec.KindRef, spec.KindAny:
		return true
	default:
		return false
	}
}

func method(op spec.Operation, taken, typeNames map[string]struct{}) methodView {
	name := unique(ExportedName(op.FuncName), taken)
	doc := append([]string{name + " calls " + string(op.Method) + " " + op.Path + "."}, "")
	doc = append(doc, emitter.OperationDoc(op)...)
	if op.Summary == "" && op.Description == "" {
		doc = doc[:1]
	}
	mv := methodView{
		Name:   name,
		Doc:    lineComment(doc),
		Return: TypeExpr(op.ResponseType, true),
		Verb:   strconv.Quote(string(op.Method)),
		Path:   strconv.Quote(op.Path),
		Whole:  op.RequestBody != nil && op.RequestBody.Whole,
	}
	sig := []string{"ctx context.Context"}
	args := make(map[string]argView, len(op.Parameters))
	names := paramNames(op.Parameters, typeNames)
	for _, p := range op.Parameters {
		typ := TypeExpr(p.Type, true)
		name := names[p.Name]
		arg := argView{Name: name, Value: name, Repeated: p.Type.Kind == spec.KindArray}
		switch {
		case !p.Required && !nilable(p.Type):
			typ = "*" + typ
			arg.Value = "*" + name
			arg.Guard = true
		case !p.Required:
			arg.Guard = true
		case p.Type.Kind == spec.KindRef:
			arg.Value = "*" + name
		}
		sig = append(sig, name+" "+typ)
		args[p.Name] = arg
	}
	mv.Signature = strings.Join(sig, ", ")

	for _, p := range op.Parameters {
		arg := args[p.Name]
		switch p.In {
		case spec.InPath:
			arg.Key = strconv.Quote("{" + p.OriginalName + "}")
			mv.PathParams = append(mv.PathParams, arg)
		case spec.InQuery:
			arg.Key = strconv.Quote(p.OriginalName)
			mv.Query = append(mv.Query, arg)
		case spec.InHeader:
			arg.Key = strconv.Quote(p.OriginalName)
			mv.Headers = append(mv.Headers, arg)
		case spec.InBody:
			arg.Key = strconv.Quote(p.OriginalName)
			mv.Body = append(mv.Body, arg)
		}
	}
	return mv
}
