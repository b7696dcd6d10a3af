package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
)

var tracer = otel.Tracer("github.com/mark3labs/openapi2sdk/internal/spec")

// maxErrorBody bounds the response body kept on a failed fetch.
const maxErrorBody = 4096

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds the single fetch of a remote document.
	HTTPTimeout time.Duration
	// HTTPClient is used for remote documents; a plain client when nil.
	HTTPClient *http.Client
	// StrictValidation runs the full OpenAPI 3.0 validator after loading.
	StrictValidation bool
	Logger           *zap.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 60 * time.Second,
		Logger:      zap.NewNop(),
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithHTTPClient(c *http.Client) Option { return func(s *Settings) { s.HTTPClient = c } }
func WithStrictValidation(on bool) Option { return func(s *Settings) { s.StrictValidation = on } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// IsRemote reports whether source names a document to fetch rather than
// holding the document itself.
func IsRemote(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load turns source into a Document. A source starting with http:// or
// https:// is fetched once; anything else is the document text. JSON is
// tried first, then YAML.
func Load(ctx context.Context, source string, opts ...Option) (doc *Document, err error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	logger := settings.Logger.With(zap.String("component", "spec-loader"))

	ctx, span := tracer.Start(ctx, "spec.Load")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, sdkerr.InvalidSpec("spec_source", "specification source is empty")
	}

	data := []byte(source)
	location := ""
	if IsRemote(trimmed) {
		location = trimmed
		span.SetAttributes(attribute.String("spec.source", "url"), attribute.String("spec.url", location))
		logger.Debug("fetching specification", zap.String("url", location))
		data, err = fetch(ctx, location, settings)
		if err != nil {
			logger.Warn("specification fetch failed", zap.String("url", location), zap.Error(err))
			return nil, err
		}
	} else {
		span.SetAttributes(attribute.String("spec.source", "inline"))
	}

	root, format, err := decode(data)
	if err != nil {
		se := sdkerr.InvalidSpec("document", "specification is neither valid JSON nor YAML: %v", err)
		se.Location = location
		se.Cause = err
		return nil, se
	}

	m, err := checkShape(root)
	if err != nil {
		return nil, withLocation(err, location)
	}

	doc, err = newDocument(m, format, location)
	if err != nil {
		return nil, withLocation(err, location)
	}

	if settings.StrictValidation {
		if err := validateStrict(ctx, doc, logger); err != nil {
			return nil, withLocation(err, location)
		}
	}

	span.SetAttributes(
		attribute.String("spec.dialect", string(doc.Dialect())),
		attribute.String("spec.format", string(doc.Format())),
	)
	logger.Debug("loaded specification",
		zap.String("title", doc.Info().Title),
		zap.String("dialect", string(doc.Dialect())),
		zap.String("version", doc.Version()),
		zap.String("format", string(doc.Format())),
	)
	return doc, nil
}

func withLocation(err error, location string) error {
	var se *sdkerr.Error
	if location != "" && errors.As(err, &se) && se.Location == "" {
		se.Location = location
	}
	return err
}

func fetch(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := settings.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if settings.HTTPTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.HTTPTimeout)
		defer cancel()
	}

	fetchErr := func(err error) error {
		se := &sdkerr.Error{
			Code:     sdkerr.SpecFetchError,
			Message:  fmt.Sprintf("fetch %s: %v", rawURL, err),
			Location: rawURL,
			Cause:    err,
		}
		if isTimeout(err) {
			se.Timeout = true
			se.Message = fmt.Sprintf("fetch %s: timed out after %s", rawURL, settings.HTTPTimeout)
		}
		return se
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fetchErr(err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fetchErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &sdkerr.Error{
			Code:     sdkerr.SpecFetchError,
			Message:  fmt.Sprintf("fetch %s: http %d", rawURL, resp.StatusCode),
			Location: rawURL,
			Status:   resp.StatusCode,
			Body:     snippet,
		}
	}
	if err != nil {
		return nil, fetchErr(err)
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func decode(data []byte) (any, Format, error) {
	var root any
	jsonErr := json.Unmarshal(data, &root)
	if jsonErr == nil {
		return root, FormatJSON, nil
	}
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, "", fmt.Errorf("json: %v; yaml: %w", jsonErr, err)
	}
	return normalizeYAML(node), FormatYAML, nil
}

// checkShape enforces the minimal structure, in a fixed order, so the error
// names the first missing field.
func checkShape(root any) (map[string]any, error) {
	m, ok := root.(map[string]any)
	if !ok {
		return nil, sdkerr.InvalidSpec("document", "specification must be a mapping, got %s", describe(root))
	}
	_, hasOpenAPI := m["openapi"]
	_, hasSwagger := m["swagger"]
	if !hasOpenAPI && !hasSwagger {
		return nil, sdkerr.InvalidSpec("openapi", "document is missing a version marker (%q or %q)", "openapi", "swagger")
	}
	for _, field := range []string{"paths", "info"} {
		v, ok := m[field]
		if !ok {
			return nil, sdkerr.InvalidSpec(field, "document is missing required field %q", field)
		}
		if _, isMap := v.(map[string]any); !isMap && v != nil {
			return nil, sdkerr.InvalidSpec(field, "field %q must be a mapping, got %s", field, describe(v))
		}
	}
	return m, nil
}
