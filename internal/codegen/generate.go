// Package codegen dispatches a loaded document to the emitter of one target
// language.
package codegen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mark3labs/openapi2sdk/internal/emitter"
	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

// Artifact is one generated client.
type Artifact struct {
	Language   Language
	APIName    string
	ClientName string
	Code       string
	// Operations counts the client methods that were emitted.
	Operations int
	Warnings   []string
}

// Option configures Generate.
type Option func(*settings)

type settings struct {
	extract []spec.ExtractOption
	opID    string
	logger  *zap.Logger
}

// WithOperationID emits only the operation with the given id.
func WithOperationID(id string) Option {
	return func(s *settings) {
		s.opID = id
		s.extract = append(s.extract, spec.WithOperationID(id))
	}
}

// WithIncludeTags emits only operations carrying at least one of tags.
func WithIncludeTags(tags []string) Option {
	return func(s *settings) {
		if len(tags) > 0 {
			s.extract = append(s.extract, spec.WithIncludeTags(tags))
		}
	}
}

// WithExcludeTags skips operations carrying any of tags.
func WithExcludeTags(tags []string) Option {
	return func(s *settings) {
		if len(tags) > 0 {
			s.extract = append(s.extract, spec.WithExcludeTags(tags))
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// Generate renders the client for doc in lang. The document is only read, so
// several languages may be generated from it concurrently.
func Generate(doc *spec.Document, lang Language, opts ...Option) (*Artifact, error) {
	emit, ok := emitters[lang]
	if !ok {
		return nil, sdkerr.Unsupported(string(lang), LanguageNames())
	}
	if doc == nil {
		return nil, sdkerr.InvalidSpec("document", "no document to generate from")
	}
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	logger := s.logger.With(zap.String("component", "codegen"), zap.String("language", string(lang)))

	catalog := spec.Extract(doc, append(s.extract, spec.WithExtractLogger(s.logger))...)
	art := &Artifact{
		Language:   lang,
		APIName:    doc.APIName(),
		ClientName: doc.ClientName(),
		Operations: len(catalog.Operations),
	}
	for _, c := range catalog.Collisions {
		art.Warnings = append(art.Warnings, fmt.Sprintf("operation id %q is used by %s and %s; kept %s", c.ID, c.Kept, c.Dropped, c.Kept))
	}
	if s.opID != "" && len(catalog.Operations) == 0 {
		art.Warnings = append(art.Warnings, fmt.Sprintf("no operation matches id %q; the client has no methods", s.opID))
	}

	code, err := emit(emitter.Input{
		APIName:    doc.APIName(),
		ClientName: doc.ClientName(),
		Info:       doc.Info(),
		Operations: catalog.Operations,
		Types:      doc.Schemas().Named(),
		Security:   spec.SelectSecurity(doc),
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s client: %w", lang, err)
	}
	art.Code = code
	logger.Debug("client generated",
		zap.Int("operations", art.Operations),
		zap.Int("of", catalog.Total),
		zap.Int("warnings", len(art.Warnings)),
	)
	return art, nil
}
