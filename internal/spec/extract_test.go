package spec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDoc(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Load(context.Background(), src)
	require.NoError(t, err)
	return doc
}

func paramNames(params []Parameter) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, p.Name)
	}
	return out
}

func TestExtract_PetStore(t *testing.T) {
	t.Parallel()
	cat := Extract(loadDoc(t, petstoreYAML))
	require.Len(t, cat.Operations, 3)
	assert.Empty(t, cat.Collisions)
	assert.Equal(t, 3, cat.Total)

	list := cat.Operations[0]
	assert.Equal(t, "/pets", list.Path)
	assert.Equal(t, MethodGet, list.Method)
	assert.Equal(t, "get_pets", list.OperationID)
	assert.False(t, list.DeclaredID)
	assert.Equal(t, KindArray, list.ResponseType.Kind)
	assert.Equal(t, TypeRef{Kind: KindRef, Name: "Pet"}, *list.ResponseType.Items)

	create := cat.Operations[1]
	assert.Equal(t, "createPet", create.OperationID)
	assert.Equal(t, MethodPost, create.Method)
	assert.Equal(t, []string{"store", "name", "X_Request_ID", "dry_run", "tags"}, paramNames(create.Parameters))
	require.NotNil(t, create.RequestBody)
	assert.True(t, create.RequestBody.Required)
	assert.False(t, create.RequestBody.Whole)
	assert.Equal(t, "application/json", create.RequestBody.ContentType)
	assert.Equal(t, TypeRef{Kind: KindRef, Name: "Pet"}, create.ResponseType, "alias components collapse into their target")

	header := create.HeaderParams()
	require.Len(t, header, 1)
	assert.Equal(t, "X-Request-ID", header[0].OriginalName)
	assert.Equal(t, "X_Request_ID", header[0].Name)

	get := cat.Operations[2]
	assert.Equal(t, "getPet", get.OperationID)
	require.Len(t, get.Parameters, 2)
	assert.Equal(t, Parameter{Name: "id", OriginalName: "id", In: InPath, Required: true, Type: TypeRef{Kind: KindInteger}}, get.Parameters[0])
	assert.Equal(t, Parameter{Name: "verbose", OriginalName: "verbose", In: InQuery, Type: TypeRef{Kind: KindBoolean}}, get.Parameters[1])
}

func TestExtract_RequiredFirstPartition(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: {title: Order, version: '1'}
paths:
  /things:
    get:
      operationId: listThings
      parameters:
        - {name: a, in: query, schema: {type: string}}
        - {name: b, in: query, required: true, schema: {type: string}}
        - {name: c, in: query, schema: {type: string}}
        - {name: d, in: header, required: true, schema: {type: string}}
      responses: {}
`)
	cat := Extract(doc)
	require.Len(t, cat.Operations, 1)
	assert.Equal(t, []string{"b", "d", "a", "c"}, paramNames(cat.Operations[0].Parameters))
}

func TestExtract_OperationFilterKeepsLookup(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, petstoreYAML)

	cat := Extract(doc, WithOperationID("getPet"))
	require.Len(t, cat.Operations, 1)
	assert.Equal(t, "getPet", cat.Operations[0].OperationID)
	assert.Equal(t, 3, cat.Total)

	op, ok := doc.FindOperation("createPet")
	require.True(t, ok)
	assert.Equal(t, "/pets", op.Path)

	op, ok = doc.FindOperation("get_pets")
	require.True(t, ok, "derived ids are found too")
	assert.Equal(t, MethodGet, op.Method)

	_, ok = doc.FindOperation("nope")
	assert.False(t, ok)
}

func TestExtract_TagFilters(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, petstoreYAML)

	cat := Extract(doc, WithIncludeTags([]string{"write"}))
	require.Len(t, cat.Operations, 1)
	assert.Equal(t, "createPet", cat.Operations[0].OperationID)

	cat = Extract(doc, WithExcludeTags([]string{"read"}))
	assert.Len(t, cat.Operations, 2)
}

func TestExtract_ReportsCollisions(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: {title: Dup, version: '1'}
paths:
  /a:
    get: {operationId: fetch, responses: {}}
  /b:
    get: {operationId: fetch, responses: {}}
  /c-d:
    get: {responses: {}}
  /c_d:
    get: {responses: {}}
`)
	cat := Extract(doc)
	require.Len(t, cat.Operations, 3)
	assert.Equal(t, "GET /a", describeOp(cat.Operations[0]))
	assert.Equal(t, "GET /c-d", describeOp(cat.Operations[1]))
	assert.Equal(t, "get_c_d", cat.Operations[1].OperationID)
	assert.Equal(t, "GET /c_d", describeOp(cat.Operations[2]))
	assert.Equal(t, "get_c_d_2", cat.Operations[2].OperationID)
	assert.Equal(t, "get_c_d_2", cat.Operations[2].FuncName)
	assert.Equal(t, []Collision{
		{ID: "fetch", Kept: "GET /a", Dropped: "GET /b"},
	}, cat.Collisions)
}

func TestExtract_DerivedIDsYieldToDeclared(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: {title: Mixed, version: '1'}
paths:
  /pets:
    get: {responses: {}}
  /zoo:
    get: {operationId: get_pets, responses: {}}
`)
	cat := Extract(doc)
	require.Len(t, cat.Operations, 2)
	assert.Empty(t, cat.Collisions)
	assert.Equal(t, "get_pets_2", cat.Operations[0].OperationID)
	assert.Equal(t, "get_pets", cat.Operations[1].OperationID)

	op, ok := doc.FindOperation("get_pets")
	require.True(t, ok)
	assert.Equal(t, "GET /zoo", describeOp(op))
	op, ok = doc.FindOperation("get_pets_2")
	require.True(t, ok)
	assert.Equal(t, "GET /pets", describeOp(op))
}

func TestExtract_ParameterNamesAreUnique(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: {title: Names, version: '1'}
paths:
  /items/{id}:
    put:
      operationId: class
      parameters:
        - {name: id, in: path, schema: {type: string}}
        - {name: item-id, in: query, schema: {type: string}}
        - {name: item_id, in: header, schema: {type: string}}
        - {name: session, in: cookie, schema: {type: string}}
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                id: {type: integer}
      responses: {}
`)
	cat := Extract(doc)
	require.Len(t, cat.Operations, 1)
	op := cat.Operations[0]
	assert.Equal(t, "class_", op.FuncName)
	assert.Equal(t, []string{"id", "item_id", "item_id_2", "id_2"}, paramNames(op.Parameters))
	for _, p := range op.Parameters {
		assert.NotEqual(t, "session", p.OriginalName, "cookie parameters are skipped")
	}
}

func TestExtract_WholeBodyForNonObjectSchema(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: {title: Bulk, version: '1'}
components:
  requestBodies:
    Batch:
      required: true
      content:
        application/json:
          schema:
            type: array
            items: {type: string}
paths:
  /batch:
    post:
      operationId: upload
      requestBody: {$ref: '#/components/requestBodies/Batch'}
      responses: {}
`)
	op, ok := doc.FindOperation("upload")
	require.True(t, ok)
	require.NotNil(t, op.RequestBody)
	assert.True(t, op.RequestBody.Whole)
	require.Len(t, op.Parameters, 1)
	assert.Equal(t, "body", op.Parameters[0].Name)
	assert.Equal(t, InBody, op.Parameters[0].In)
	assert.True(t, op.Parameters[0].Required)
	assert.Equal(t, KindArray, op.Parameters[0].Type.Kind)
}

func TestExtract_ParameterRefs(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: {title: Refs, version: '1'}
components:
  parameters:
    Limit: {name: limit, in: query, schema: {type: integer}}
paths:
  /items:
    get:
      operationId: list
      parameters:
        - $ref: '#/components/parameters/Limit'
        - $ref: '#/components/parameters/Missing'
      responses: {}
`)
	op, ok := doc.FindOperation("list")
	require.True(t, ok)
	require.Len(t, op.Parameters, 1)
	assert.Equal(t, "limit", op.Parameters[0].OriginalName)
	assert.Equal(t, KindInteger, op.Parameters[0].Type.Kind)
}
