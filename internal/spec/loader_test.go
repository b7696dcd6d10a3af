package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
)

func requireSpecError(t *testing.T, err error, code sdkerr.Code) *sdkerr.Error {
	t.Helper()
	require.Error(t, err)
	var se *sdkerr.Error
	require.True(t, errors.As(err, &se), "expected *sdkerr.Error, got %T: %v", err, err)
	require.Equal(t, code, se.Code, "unexpected code: %v", err)
	return se
}

func TestLoad_InlineJSON(t *testing.T) {
	t.Parallel()
	doc, err := Load(context.Background(), `{"openapi":"3.0.0","info":{"title":"Tiny API","version":"1"},"paths":{}}`)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, doc.Format())
	assert.Equal(t, DialectOpenAPI, doc.Dialect())
	assert.Equal(t, "TinyAPI", doc.APIName())
	assert.Equal(t, "TinyAPIClient", doc.ClientName())
	assert.Empty(t, doc.Location())
}

func TestLoad_InlineYAMLNormalizesKeys(t *testing.T) {
	t.Parallel()
	doc, err := Load(context.Background(), petstoreYAML)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, doc.Format())
	assert.Equal(t, Info{Title: "Pet Store", Version: "1.0.0", Description: "A sample pet store"}, doc.Info())

	responses := mapAt(mapAt(mapAt(mapAt(doc.Tree(), "paths"), "/pets/{id}"), "get"), "responses")
	assert.Contains(t, responses, "200")
}

func TestLoad_RejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "{not: [valid")
	se := requireSpecError(t, err, sdkerr.InvalidSpecification)
	assert.Equal(t, "document", se.Field)
}

func TestLoad_RejectsNonMapping(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "[1, 2, 3]")
	se := requireSpecError(t, err, sdkerr.InvalidSpecification)
	assert.Equal(t, "document", se.Field)
	assert.Contains(t, se.Message, "a list")
}

func TestLoad_RequiredFields(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		src   string
		field string
	}{
		"empty":           {src: "   ", field: "spec_source"},
		"missing version": {src: `{"info":{},"paths":{}}`, field: "openapi"},
		"missing paths":   {src: "openapi: 3.0.0\ninfo:\n  title: x\n  version: '1'\n", field: "paths"},
		"missing info":    {src: `{"swagger":"2.0","paths":{}}`, field: "info"},
		"scalar paths":    {src: `{"openapi":"3.0.0","info":{},"paths":"nope"}`, field: "paths"},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(context.Background(), tc.src)
			se := requireSpecError(t, err, sdkerr.InvalidSpecification)
			assert.Equal(t, tc.field, se.Field)
			assert.ErrorIs(t, err, sdkerr.ErrInvalidSpecification)
		})
	}
}

func TestLoad_MissingPathsNamesField(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), `{"openapi":"3.0.0","info":{"title":"x","version":"1"}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paths")
}

func TestLoad_FetchesRemoteDocument(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(petstoreYAML))
	}))
	t.Cleanup(srv.Close)

	doc, err := Load(context.Background(), srv.URL+"/openapi.yaml")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/openapi.yaml", doc.Location())
	assert.Equal(t, "PetStore", doc.APIName())
}

func TestLoad_FetchErrorCarriesStatusAndBody(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such spec", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := Load(context.Background(), srv.URL)
	se := requireSpecError(t, err, sdkerr.SpecFetchError)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "no such spec", se.Body)
	assert.Equal(t, srv.URL, se.Location)
	assert.Equal(t, int32(1), calls.Load(), "fetch must not be retried")
}

func TestLoad_FetchTimeoutIsDistinguishable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	_, err := Load(context.Background(), srv.URL, WithHTTPTimeout(50*time.Millisecond))
	se := requireSpecError(t, err, sdkerr.SpecFetchError)
	assert.True(t, se.Timeout)
	assert.Contains(t, se.Message, "timed out")
}

func TestLoad_TransportError(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "http://127.0.0.1:1/spec.yaml", WithHTTPTimeout(time.Second))
	se := requireSpecError(t, err, sdkerr.SpecFetchError)
	assert.Zero(t, se.Status)
	assert.NotNil(t, se.Cause)
}

func TestLoad_ConvertsSwagger2(t *testing.T) {
	t.Parallel()
	doc, err := Load(context.Background(), swaggerYAML)
	require.NoError(t, err)
	assert.Equal(t, DialectSwagger2, doc.Dialect())
	assert.Equal(t, "2.0", doc.Version())
	assert.Equal(t, []string{"https://api.example.com/v1"}, doc.Servers())
	assert.Contains(t, doc.Original(), "swagger")
	assert.NotContains(t, doc.Original(), "components", "the decoded tree must stay untouched")

	op, ok := doc.FindOperation("getPet")
	require.True(t, ok)
	require.Len(t, op.Parameters, 2)
	assert.Equal(t, "id", op.Parameters[0].Name)
	assert.Equal(t, KindInteger, op.Parameters[0].Type.Kind)
	assert.Equal(t, TypeRef{Kind: KindRef, Name: "Pet"}, op.ResponseType)
}

func TestLoad_StrictValidation(t *testing.T) {
	t.Parallel()
	src := `{"openapi":"3.0.0","info":{"title":"No Version"},"paths":{}}`

	_, err := Load(context.Background(), src)
	require.NoError(t, err, "shape checks alone accept the document")

	_, err = Load(context.Background(), src, WithStrictValidation(true))
	requireSpecError(t, err, sdkerr.InvalidSpecification)
}
