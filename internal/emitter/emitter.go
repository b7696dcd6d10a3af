// Package emitter holds what the per-language code emitters share: their
// input, their signature and a few rendering helpers.
package emitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/mark3labs/openapi2sdk/internal/spec"
)

// Input is everything an emitter needs to render one client source file.
type Input struct {
	APIName    string
	ClientName string
	Info       spec.Info
	Operations []spec.Operation
	Types      []spec.NamedType
	Security   *spec.SecuritySelection
}

// Func renders a complete source file for one target language.
type Func func(in Input) (string, error)

// Render executes tmpl into a string.
func Render(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// Quote renders s as a double-quoted string literal that is valid in
// Python, TypeScript and JavaScript.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// IsPlainKey reports whether s can be written unquoted as an object key.
func IsPlainKey(s string) bool {
	return identRe.MatchString(s)
}

// DocLines joins the non-empty blocks with a blank line between them and
// splits the result into lines with trailing space removed.
func DocLines(blocks ...string) []string {
	var lines []string
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		for _, line := range strings.Split(block, "\n") {
			lines = append(lines, strings.TrimRight(line, " \t\r"))
		}
	}
	return lines
}

// OperationDoc is the summary and description of op, or its method and
// path when it has neither.
func OperationDoc(op spec.Operation) []string {
	lines := DocLines(op.Summary, op.Description)
	if len(lines) == 0 {
		lines = []string{string(op.Method) + " " + op.Path}
	}
	return lines
}

// Header is the banner every generated file starts with.
func Header(lang string, info spec.Info) []string {
	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = "API"
	}
	var version string
	if v := strings.TrimSpace(info.Version); v != "" {
		version = "Version: " + v
	}
	return DocLines(lang+" client for "+title+".", info.Description, version)
}

// Indent prefixes every non-empty line and joins the lines with newlines.
func Indent(lines []string, prefix string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line != "" {
			out[i] = prefix + line
		}
	}
	return strings.Join(out, "\n")
}

// HasAuth reports whether in carries a credential selection.
func (in Input) HasAuth() bool { return in.Security != nil }

var commentEnd = strings.NewReplacer("*/", `*\/`)

// BlockComment renders lines as a /** */ comment at the given indent.
func BlockComment(lines []string, indent string) string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, indent+"/**")
	for _, line := range lines {
		if line == "" {
			out = append(out, indent+" *")
			continue
		}
		out = append(out, indent+" * "+commentEnd.Replace(line))
	}
	out = append(out, indent+" */")
	return strings.Join(out, "\n")
}

// ExampleBaseURL is the host used by the usage example at the end of each
// generated file.
const ExampleBaseURL = "https://api.example.com"

// ExampleCall names the operation the usage example calls and its required
// arguments. fallback is used when there are no operations.
func ExampleCall(in Input, fallback string) (string, []string) {
	if len(in.Operations) == 0 {
		return fallback, nil
	}
	op := in.Operations[0]
	var args []string
	for _, p := range op.Parameters {
		if p.Required {
			args = append(args, p.Name)
		}
	}
	return op.FuncName, args
}

// CommentLines prefixes every line with marker, leaving no trailing space.
func CommentLines(lines []string, marker string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight(marker+" "+line, " ")
	}
	return strings.Join(out, "\n")
}

// ScriptUsage is the usage example shared by the TypeScript and JavaScript
// clients.
func ScriptUsage(in Input) string {
	ctor := []string{Quote(ExampleBaseURL)}
	if in.HasAuth() {
		ctor = append(ctor, Quote("your-api-key"))
	}
	name, args := ExampleCall(in, "methodName")
	return CommentLines([]string{
		"Usage example:",
		"const client = new " + in.ClientName + "(" + strings.Join(ctor, ", ") + ");",
		"client." + name + "(" + strings.Join(args, ", ") + ")",
		"  .then((result) => console.log(result))",
		"  .catch((error) => console.error(error));",
	}, "//")
}
