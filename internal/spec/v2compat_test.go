package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteSwaggerBodies_MergesMultipleBodies(t *testing.T) {
	t.Parallel()
	op := map[string]any{
		"parameters": []any{
			map[string]any{"in": "query", "name": "q", "type": "string"},
			map[string]any{"in": "body", "name": "a", "required": true, "schema": map[string]any{"type": "string"}},
			map[string]any{"in": "body", "name": "b", "type": "integer"},
		},
	}
	doc := map[string]any{"paths": map[string]any{"/x": map[string]any{"post": op}}}

	require.True(t, rewriteSwaggerBodies(doc))
	params := sliceAt(op, "parameters")
	require.Len(t, params, 2)

	merged := asMap(params[0])
	assert.Equal(t, "body", merged["in"])
	schema := mapAt(merged, "schema")
	assert.Equal(t, []any{"a"}, schema["required"])
	assert.Equal(t, map[string]any{"type": "integer"}, mapAt(mapAt(schema, "properties"), "b"))
	assert.Equal(t, "q", asMap(params[1])["name"])
}

func TestRewriteSwaggerBodies_BodyWithFormData(t *testing.T) {
	t.Parallel()
	op := map[string]any{
		"parameters": []any{
			map[string]any{"in": "formData", "name": "file", "type": "file"},
			map[string]any{"in": "body", "name": "meta", "schema": map[string]any{"$ref": "#/definitions/Meta"}},
		},
	}
	doc := map[string]any{"paths": map[string]any{"/upload": map[string]any{"put": op}}}

	require.True(t, rewriteSwaggerBodies(doc))
	field := asMap(sliceAt(op, "parameters")[1])
	assert.Equal(t, map[string]any{"in": "formData", "name": "meta", "type": "string"}, field)
	assert.Equal(t, []any{"multipart/form-data"}, op["consumes"])
}

func TestRewriteSwaggerBodies_LeavesSingleBodyAlone(t *testing.T) {
	t.Parallel()
	doc := map[string]any{"paths": map[string]any{"/x": map[string]any{"post": map[string]any{
		"parameters": []any{map[string]any{"in": "body", "name": "b", "schema": map[string]any{"type": "object"}}},
	}}}}
	assert.False(t, rewriteSwaggerBodies(doc))
}
