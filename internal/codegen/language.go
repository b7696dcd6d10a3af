package codegen

import (
	"fmt"
	"strings"

	"github.com/mark3labs/openapi2sdk/internal/emitter"
	"github.com/mark3labs/openapi2sdk/internal/emitter/goemitter"
	"github.com/mark3labs/openapi2sdk/internal/emitter/jsemitter"
	"github.com/mark3labs/openapi2sdk/internal/emitter/pyemitter"
	"github.com/mark3labs/openapi2sdk/internal/emitter/tsemitter"
	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
)

// Language is a target of code generation.
type Language string

const (
	Python     Language = "python"
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
	Go         Language = "go"
)

// Languages lists every supported target in display order.
var Languages = []Language{Python, TypeScript, JavaScript, Go}

var emitters = map[Language]emitter.Func{
	Python:     pyemitter.Emit,
	TypeScript: tsemitter.Emit,
	JavaScript: jsemitter.Emit,
	Go:         goemitter.Emit,
}

var extensions = map[Language]string{
	Python:     ".py",
	TypeScript: ".ts",
	JavaScript: ".js",
	Go:         ".go",
}

func init() {
	for _, lang := range Languages {
		if emitters[lang] == nil {
			panic(fmt.Sprintf("codegen: no emitter registered for %q", lang))
		}
		if extensions[lang] == "" {
			panic(fmt.Sprintf("codegen: no file extension registered for %q", lang))
		}
	}
}

// LanguageNames returns the accepted spellings of every Language.
func LanguageNames() []string {
	out := make([]string, len(Languages))
	for i, lang := range Languages {
		out[i] = string(lang)
	}
	return out
}

// ParseLanguage matches s case-insensitively against the supported targets.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := emitters[lang]; !ok {
		return "", sdkerr.Unsupported(s, LanguageNames())
	}
	return lang, nil
}

// Extension is the source file suffix for l, including the dot.
func (l Language) Extension() string { return extensions[l] }

// FileName is the name a generated client of this language is written to.
func (l Language) FileName() string { return "client" + l.Extension() }
