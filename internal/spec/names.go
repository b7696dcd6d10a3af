package spec

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// reservedIdentifiers holds keywords of every target language plus names the
// generated code uses for its own locals, imports and builtins.
var reservedIdentifiers = toSet(
	// python
	"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class",
	"continue", "def", "del", "elif", "else", "except", "finally", "for", "from", "global",
	"if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise", "return",
	"try", "while", "with", "yield", "self", "requests", "str", "int", "float", "bool",
	"Any", "Dict", "List", "TypedDict",
	// javascript and typescript
	"arguments", "case", "catch", "const", "constructor", "debugger", "default", "delete",
	"do", "enum", "eval", "export", "extends", "false", "function", "implements", "instanceof",
	"interface", "let", "new", "null", "package", "private", "protected", "public", "static",
	"super", "switch", "this", "throw", "true", "typeof", "undefined", "var", "void",
	"String", "JSON", "Error", "URLSearchParams", "fetch", "module", "window", "require",
	// go
	"chan", "defer", "fallthrough", "func", "go", "goto", "map", "range", "select", "struct",
	"type", "any", "error", "string", "int64", "float64", "nil", "_",
	"context", "fmt", "url", "strings", "json", "http", "bytes", "io", "time",
	// locals of generated methods
	"c", "ctx", "path", "query", "params", "headers", "payload", "fields", "response", "out", "err", "qs", "text", "value",
)

// reservedTypeNames are names generated code already binds at type level.
var reservedTypeNames = toSet(
	"Any", "Dict", "List", "Optional", "TypedDict", "Object", "String", "Number", "Boolean",
	"Array", "Record", "Promise", "Error", "Date", "Map", "Set", "JSON", "Response",
	"URLSearchParams", "Client",
)

func toSet(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		out[item] = struct{}{}
	}
	return out
}

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(raw string) string {
	out, _, err := transform.String(foldDiacritics, raw)
	if err != nil {
		return raw
	}
	return out
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// SanitizeIdentifier maps a wire name onto an identifier that is valid in
// Python, TypeScript, JavaScript and Go. Invalid characters become '_'.
func SanitizeIdentifier(raw string) string {
	folded := fold(raw)
	var b strings.Builder
	for _, r := range folded {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		return "param"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "p" + name
	}
	if _, reserved := reservedIdentifiers[name]; reserved {
		name += "_"
	}
	return name
}

// IsReservedIdentifier reports whether name is a keyword or a name the
// generated code binds itself.
func IsReservedIdentifier(name string) bool {
	_, ok := reservedIdentifiers[name]
	return ok
}

// DerivedOperationID builds the id used when an operation declares none:
// the lowercased method and the path joined by '_', with every run of other
// characters collapsed to a single '_'.
func DerivedOperationID(method Method, path string) string {
	raw := strings.ToLower(string(method)) + "_" + path
	var b strings.Builder
	pending := false
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// TypeName turns a component key into an exported type name, e.g.
// "pet-model" becomes "PetModel".
func TypeName(raw string) string {
	parts := strings.FieldsFunc(fold(raw), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	name := b.String()
	if name == "" {
		return "Model"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "T" + name
	}
	if _, reserved := reservedTypeNames[name]; reserved {
		name += "Model"
	}
	return name
}

// APIName derives the class name prefix from the document title: whitespace
// is stripped and anything that cannot appear in an identifier is dropped.
func APIName(title string) string {
	var b strings.Builder
	for _, r := range fold(title) {
		if isIdentRune(r) {
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "API"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "API" + name
	}
	return name
}

func uniqueName(base string, taken map[string]struct{}) string {
	name := base
	for n := 2; ; n++ {
		if _, ok := taken[name]; !ok {
			taken[name] = struct{}{}
			return name
		}
		name = base + "_" + strconv.Itoa(n)
	}
}
