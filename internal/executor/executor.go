// Package executor performs a single live HTTP call described by a loaded
// document or by explicit request parameters. Transport and HTTP failures
// come back as Result data.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/mark3labs/openapi2sdk/internal/metrics"
	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

var tracer = otel.Tracer("github.com/mark3labs/openapi2sdk/internal/executor")

// Timeout bounds every executed request.
const Timeout = 30 * time.Second

// Recognized request parameter keys.
const (
	KeyBaseURL    = "base_url"
	KeyEndpoint   = "endpoint"
	KeyMethod     = "method"
	KeyHeaders    = "headers"
	KeyParams     = "params"
	KeyPathParams = "path_params"
	KeyJSON       = "json"
	KeyBody       = "body"
)

var allowedMethods = map[string]struct{}{
	"get": {}, "post": {}, "put": {}, "delete": {}, "patch": {}, "head": {}, "options": {},
}

// Executor runs requests. The zero value is not usable; call New.
type Executor struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient sets the client used for requests. Its own Timeout is left
// alone; every call is additionally bounded by Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		if c != nil {
			e.client = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(e *Executor) { e.metrics = m }
}

// New returns an Executor with a 30 second timeout.
func New(opts ...Option) *Executor {
	e := &Executor{
		client:  &http.Client{},
		timeout: Timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("component", "executor"))
	return e
}

// request is a fully resolved call.
type request struct {
	method   string
	endpoint string
	target   string
	headers  http.Header
	body     []byte
}

// Execute resolves operationID against doc, falling back to the endpoint and
// method in params, and performs the call. params is not modified. The only
// errors returned are InvalidRequestParameters; everything that happens on
// the wire is reported in the Result.
func (e *Executor) Execute(ctx context.Context, doc *spec.Document, operationID string, params map[string]any) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "executor.Execute")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if res != nil && !res.OK() {
			span.SetStatus(codes.Error, res.Failure.Error)
		}
		span.End()
	}()

	req, err := e.resolve(doc, operationID, params)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("http.request.method", req.method),
		attribute.String("url.template", req.endpoint),
	)
	if operationID != "" {
		span.SetAttributes(attribute.String("openapi.operation_id", operationID))
	}

	start := time.Now()
	res = e.do(ctx, req)
	elapsed := time.Since(start)
	e.metrics.RecordRequest(req.method, res.Status, elapsed)
	if res.Status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
	}

	fields := []zap.Field{
		zap.String("method", req.method),
		zap.String("url", req.target),
		zap.Int("status", res.Status),
		zap.Duration("elapsed", elapsed),
	}
	if res.OK() {
		e.logger.Info("api request completed", fields...)
	} else {
		e.logger.Warn("api request failed", append(fields, zap.String("error", res.Failure.Error))...)
	}
	return res, nil
}

func (e *Executor) resolve(doc *spec.Document, operationID string, params map[string]any) (*request, error) {
	p := make(map[string]any, len(params))
	for k, v := range params {
		p[k] = v
	}

	baseURL, err := takeString(p, KeyBaseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, sdkerr.InvalidParams(KeyBaseURL, "base_url is required for executing requests")
	}
	endpoint, err := takeString(p, KeyEndpoint)
	if err != nil {
		return nil, err
	}
	method, err := takeString(p, KeyMethod)
	if err != nil {
		return nil, err
	}

	found := false
	if operationID != "" && doc != nil {
		var op spec.Operation
		if op, found = doc.FindOperation(operationID); found {
			endpoint, method = op.Path, string(op.Method)
		}
	}
	if strings.TrimSpace(endpoint) == "" {
		if operationID != "" && !found {
			return nil, sdkerr.InvalidParams(KeyEndpoint, "operation %q not found and no endpoint given", operationID)
		}
		return nil, sdkerr.InvalidParams(KeyEndpoint, "endpoint is required when no operation_id is given")
	}
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = "get"
	}
	if _, ok := allowedMethods[method]; !ok {
		return nil, sdkerr.InvalidParams(KeyMethod, "invalid HTTP method: %s", method)
	}

	headerMap, err := takeMap(p, KeyHeaders)
	if err != nil {
		return nil, err
	}
	query, err := takeMap(p, KeyParams)
	if err != nil {
		return nil, err
	}
	pathParams, err := takeMap(p, KeyPathParams)
	if err != nil {
		return nil, err
	}
	payload := take(p, KeyJSON)
	if isEmpty(payload) {
		if body := take(p, KeyBody); !isEmpty(body) {
			payload = body
		}
	} else {
		delete(p, KeyBody)
	}
	if len(p) > 0 {
		e.logger.Debug("ignoring unrecognized request parameters", zap.Strings("keys", sortedKeys(p)))
	}

	path, query := e.substitute(endpoint, pathParams, query)
	target, err := buildURL(baseURL, path, query)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	for _, k := range sortedKeys(headerMap) {
		if v := headerMap[k]; v != nil {
			headers.Set(k, fmt.Sprint(v))
		}
	}
	if headers.Get("Accept") == "" {
		headers.Set("Accept", "application/json")
	}
	var body []byte
	if !isEmpty(payload) {
		if headers.Get("Content-Type") == "" {
			headers.Set("Content-Type", "application/json")
		}
		if body, err = encodeBody(headers.Get("Content-Type"), payload); err != nil {
			return nil, err
		}
	}

	return &request{
		method:   strings.ToUpper(method),
		endpoint: endpoint,
		target:   target,
		headers:  headers,
		body:     body,
	}, nil
}

var tokenRe = regexp.MustCompile(`\{([^{}]+)\}`)

// substitute fills {token}s in endpoint from pathParams, then from query. A
// value taken from query is removed from it.
func (e *Executor) substitute(endpoint string, pathParams, query map[string]any) (string, map[string]any) {
	rest := make(map[string]any, len(query))
	for k, v := range query {
		rest[k] = v
	}
	path := tokenRe.ReplaceAllStringFunc(endpoint, func(token string) string {
		name := token[1 : len(token)-1]
		if v, ok := pathParams[name]; ok && v != nil {
			return url.PathEscape(fmt.Sprint(v))
		}
		if v, ok := rest[name]; ok && v != nil {
			delete(rest, name)
			return url.PathEscape(fmt.Sprint(v))
		}
		e.logger.Debug("path parameter has no value", zap.String("name", name))
		return token
	})
	return path, rest
}

func buildURL(baseURL, path string, query map[string]any) (string, error) {
	target := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/" + strings.TrimLeft(path, "/")
	u, err := url.Parse(target)
	if err != nil {
		return "", sdkerr.InvalidParams(KeyBaseURL, "invalid request URL %q: %v", target, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", sdkerr.InvalidParams(KeyBaseURL, "base_url %q must be an absolute URL", baseURL)
	}
	values := u.Query()
	for _, k := range sortedKeys(query) {
		addQuery(values, k, query[k])
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// addQuery omits nil values and repeats the key for every element of a list.
func addQuery(values url.Values, key string, v any) {
	switch vv := v.(type) {
	case nil:
	case []any:
		for _, item := range vv {
			if item != nil {
				values.Add(key, fmt.Sprint(item))
			}
		}
	case []string:
		for _, item := range vv {
			values.Add(key, item)
		}
	default:
		values.Add(key, fmt.Sprint(v))
	}
}

func encodeBody(contentType string, payload any) ([]byte, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch {
	case mediaType == "application/x-www-form-urlencoded":
		if m, ok := payload.(map[string]any); ok {
			form := url.Values{}
			for _, k := range sortedKeys(m) {
				addQuery(form, k, m[k])
			}
			return []byte(form.Encode()), nil
		}
	case strings.Contains(mediaType, "json"):
	default:
		switch raw := payload.(type) {
		case string:
			return []byte(raw), nil
		case []byte:
			return raw, nil
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, sdkerr.InvalidParams(KeyJSON, "request body cannot be encoded as JSON: %v", err)
	}
	return data, nil
}

func (e *Executor) do(ctx context.Context, r *request) *Result {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.target, body)
	if err != nil {
		return transportFailure(err, e.timeout)
	}
	req.Header = r.headers.Clone()
	e.logger.Debug("sending api request",
		zap.String("method", r.method),
		zap.String("url", r.target),
		zap.Any("headers", redact(r.headers)),
	)

	resp, err := e.client.Do(req)
	if err != nil {
		return transportFailure(err, e.timeout)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		res := transportFailure(err, e.timeout)
		res.Status = resp.StatusCode
		return res
	}
	decoded := decodeBody(data)
	if resp.StatusCode >= 400 {
		return &Result{
			Status: resp.StatusCode,
			Failure: &Failure{
				Error:   fmt.Sprintf("API request failed with status %d", resp.StatusCode),
				Status:  resp.StatusCode,
				Details: decoded,
			},
		}
	}
	return &Result{Status: resp.StatusCode, Body: decoded}
}

func transportFailure(err error, timeout time.Duration) *Result {
	if isTimeout(err) {
		return &Result{Failure: &Failure{
			Error:   fmt.Sprintf("API request timed out after %s", timeout),
			Details: err.Error(),
		}}
	}
	return &Result{Failure: &Failure{
		Error:   "API request failed: " + err.Error(),
		Details: err.Error(),
	}}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// decodeBody returns the JSON value of data, or data as text when it is not
// JSON.
func decodeBody(data []byte) any {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(data)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return string(data)
	}
	return v
}

var sensitiveHeaderParts = []string{"authorization", "token", "secret", "api-key", "apikey", "cookie"}

func redact(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		v := strings.Join(vv, ", ")
		lower := strings.ToLower(k)
		for _, part := range sensitiveHeaderParts {
			if strings.Contains(lower, part) {
				v = "<redacted>"
				break
			}
		}
		out[k] = v
	}
	return out
}
