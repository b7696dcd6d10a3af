package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaTable_NamedTypesOncePerComponent(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, petstoreYAML)
	named := doc.Schemas().Named()
	require.Len(t, named, 2, "PetAlias folds into Pet")

	assert.Equal(t, "Owner", named[0].Name)
	assert.Equal(t, "Pet", named[1].Name)

	pet := named[1].Type
	assert.Equal(t, KindObject, pet.Kind)
	require.Len(t, pet.Properties, 3)
	assert.Equal(t, Property{Name: "id", Type: TypeRef{Kind: KindInteger}, Required: true}, pet.Properties[0])
	assert.Equal(t, TypeRef{Kind: KindRef, Name: "Owner"}, pet.Properties[2].Type)

	owner := named[0].Type
	require.Len(t, owner.Properties, 1)
	assert.Equal(t, KindArray, owner.Properties[0].Type.Kind)
	assert.Equal(t, TypeRef{Kind: KindRef, Name: "Pet"}, *owner.Properties[0].Type.Items)
}

func TestSchemaTable_CyclesDegradeToAny(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: {title: Cycles, version: '1'}
paths: {}
components:
  schemas:
    A: {$ref: '#/components/schemas/B'}
    B: {$ref: '#/components/schemas/A'}
    Self: {$ref: '#/components/schemas/Self'}
    Holder:
      type: object
      properties:
        a: {$ref: '#/components/schemas/A'}
        self: {$ref: '#/components/schemas/Self'}
        gone: {$ref: '#/components/schemas/Missing'}
        remote: {$ref: 'other.yaml#/Thing'}
`)
	table := doc.Schemas()
	named := table.Named()
	require.Len(t, named, 1)
	assert.Equal(t, "Holder", named[0].Name)
	for _, prop := range named[0].Type.Properties {
		assert.Equal(t, AnyType(), prop.Type, "property %s", prop.Name)
	}
	assert.Nil(t, table.Deref(map[string]any{"$ref": "#/components/schemas/A"}))
}

func TestSchemaTable_Resolve(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, petstoreYAML)
	table := doc.Schemas()

	cases := []struct {
		name   string
		schema any
		want   TypeRef
	}{
		{"string", map[string]any{"type": "string", "format": "date-time"}, TypeRef{Kind: KindString}},
		{"number", map[string]any{"type": "number"}, TypeRef{Kind: KindNumber}},
		{"nullable list form", map[string]any{"type": []any{"null", "boolean"}}, TypeRef{Kind: KindBoolean}},
		{"missing", nil, AnyType()},
		{"unknown type", map[string]any{"type": "file"}, AnyType()},
		{"composition", map[string]any{"oneOf": []any{map[string]any{"type": "string"}, map[string]any{"type": "integer"}}}, AnyType()},
		{"single allOf wrapper", map[string]any{"allOf": []any{map[string]any{"$ref": "#/components/schemas/Pet"}}}, TypeRef{Kind: KindRef, Name: "Pet"}},
		{"inferred object", map[string]any{"properties": map[string]any{}}, TypeRef{Kind: KindObject}},
		{"array without items", map[string]any{"type": "array"}, TypeRef{Kind: KindArray, Items: &TypeRef{Kind: KindAny}}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, table.Resolve(tc.schema))
		})
	}
}

func TestSchemaTable_DeepNestingIsCapped(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, petstoreYAML)
	var node any = map[string]any{"type": "string"}
	for i := 0; i < maxTypeDepth+10; i++ {
		node = map[string]any{"type": "array", "items": node}
	}
	got := doc.Schemas().Resolve(node)
	depth := 0
	for got.Kind == KindArray {
		depth++
		got = *got.Items
	}
	assert.Equal(t, KindAny, got.Kind)
	assert.LessOrEqual(t, depth, maxTypeDepth+1)
}

func TestSchemaTable_TypeNamesAvoidClashes(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: {title: Clash, version: '1'}
paths: {}
components:
  schemas:
    ClashClient: {type: object}
    List: {type: array, items: {type: string}}
    pet-model: {type: string}
    pet_model: {type: integer}
`)
	names := map[string]string{}
	for _, n := range doc.Schemas().Named() {
		names[n.Component] = n.Name
	}
	assert.Equal(t, "ClashClient_2", names["ClashClient"])
	assert.Equal(t, "ListModel", names["List"])
	assert.Equal(t, "PetModel", names["pet-model"])
	assert.Equal(t, "PetModel_2", names["pet_model"])
}
