// Package sdk ties loading, generation and execution together behind one
// Service, and exposes the same flow as a tool call.
package sdk

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mark3labs/openapi2sdk/internal/codegen"
	"github.com/mark3labs/openapi2sdk/internal/executor"
	"github.com/mark3labs/openapi2sdk/internal/metrics"
	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

const tracerName = "github.com/mark3labs/openapi2sdk/internal/sdk"

// Service loads documents, generates clients and executes requests. It holds
// no per-call state and is safe for concurrent use.
type Service struct {
	logger   *zap.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
	loadOpts []spec.Option
	exec     *executor.Executor
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records loads, generations and requests on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLoaderOptions passes opts to every spec.Load call.
func WithLoaderOptions(opts ...spec.Option) Option {
	return func(s *Service) { s.loadOpts = append(s.loadOpts, opts...) }
}

// WithExecutor replaces the executor built from the service's logger and
// metrics.
func WithExecutor(e *executor.Executor) Option {
	return func(s *Service) { s.exec = e }
}

func New(opts ...Option) *Service {
	s := &Service{
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exec == nil {
		s.exec = executor.New(executor.WithLogger(s.logger), executor.WithMetrics(s.metrics))
	}
	s.logger = s.logger.With(zap.String("component", "sdk"))
	return s
}

// GenerateRequest selects what to generate.
type GenerateRequest struct {
	// Source is a URL or the document text.
	Source string
	// Language defaults to python.
	Language    string
	OperationID string
	IncludeTags []string
	ExcludeTags []string
	// Strict runs the full OpenAPI validator on load.
	Strict bool
}

func (r GenerateRequest) language() (codegen.Language, error) {
	if r.Language == "" {
		return codegen.Python, nil
	}
	return codegen.ParseLanguage(r.Language)
}

// Generate loads req.Source and renders the client. An unsupported language
// is reported before anything is fetched.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (art *codegen.Artifact, err error) {
	ctx, span := s.tracer.Start(ctx, "sdk.Generate")
	defer func() { endSpan(span, err) }()

	lang, err := req.language()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("sdk.language", string(lang)))

	doc, err := s.load(ctx, req.Source, req.Strict)
	if err != nil {
		return nil, err
	}
	return s.generate(doc, lang, req)
}

// GenerateDocument renders the client for a document that is already
// loaded. req.Source and req.Strict are ignored.
func (s *Service) GenerateDocument(ctx context.Context, doc *spec.Document, req GenerateRequest) (art *codegen.Artifact, err error) {
	_, span := s.tracer.Start(ctx, "sdk.Generate")
	defer func() { endSpan(span, err) }()

	lang, err := req.language()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("sdk.language", string(lang)))
	return s.generate(doc, lang, req)
}

func (s *Service) generate(doc *spec.Document, lang codegen.Language, req GenerateRequest) (*codegen.Artifact, error) {
	opts := []codegen.Option{
		codegen.WithIncludeTags(req.IncludeTags),
		codegen.WithExcludeTags(req.ExcludeTags),
		codegen.WithLogger(s.logger),
	}
	if req.OperationID != "" {
		opts = append(opts, codegen.WithOperationID(req.OperationID))
	}
	art, err := codegen.Generate(doc, lang, opts...)
	if err != nil {
		s.metrics.RecordGeneration(string(lang), 0, err)
		return nil, err
	}
	s.metrics.RecordGeneration(string(lang), art.Operations, nil)
	for _, w := range art.Warnings {
		s.logger.Warn(w, zap.String("language", string(lang)))
	}
	s.logger.Info("client generated",
		zap.String("language", string(lang)),
		zap.String("api", art.APIName),
		zap.Int("operations", art.Operations),
	)
	return art, nil
}

// ExecuteRequest describes one live call. Document wins over Source. With
// neither, the call is described by Params alone.
type ExecuteRequest struct {
	Source      string
	Document    *spec.Document
	OperationID string
	Params      map[string]any
}

// Execute performs the call. The returned error is either a load failure or
// InvalidRequestParameters; HTTP and transport failures are in the Result.
func (s *Service) Execute(ctx context.Context, req ExecuteRequest) (res *executor.Result, err error) {
	ctx, span := s.tracer.Start(ctx, "sdk.Execute")
	defer func() { endSpan(span, err) }()

	doc := req.Document
	if doc == nil && strings.TrimSpace(req.Source) != "" {
		if doc, err = s.load(ctx, req.Source, false); err != nil {
			return nil, err
		}
	}
	return s.exec.Execute(ctx, doc, req.OperationID, req.Params)
}

// Load reads a document with the service's loader options.
func (s *Service) Load(ctx context.Context, source string, strict bool) (*spec.Document, error) {
	return s.load(ctx, source, strict)
}

func (s *Service) load(ctx context.Context, source string, strict bool) (*spec.Document, error) {
	kind := "inline"
	if spec.IsRemote(source) {
		kind = "url"
	}
	opts := append([]spec.Option{spec.WithLogger(s.logger)}, s.loadOpts...)
	if strict {
		opts = append(opts, spec.WithStrictValidation(true))
	}

	start := time.Now()
	doc, err := spec.Load(ctx, source, opts...)
	s.metrics.RecordSpecLoad(kind, err, time.Since(start))
	if err != nil {
		s.logger.Debug("specification load failed", zap.String("source", kind), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var se *sdkerr.Error
		if errors.As(err, &se) {
			span.SetAttributes(attribute.String("sdk.error_code", string(se.Code)))
		}
	}
	span.End()
}
