// Package emittertest provides inputs shared by the emitter tests.
package emittertest

import (
	"github.com/mark3labs/openapi2sdk/internal/emitter"
	"github.com/mark3labs/openapi2sdk/internal/spec"
)

func ref(name string) spec.TypeRef { return spec.TypeRef{Kind: spec.KindRef, Name: name} }

func scalar(k spec.Kind) spec.TypeRef { return spec.TypeRef{Kind: k} }

// PetStore is a small client with a path parameter, an optional query
// parameter, a header, a JSON body and two named types.
func PetStore() emitter.Input {
	return emitter.Input{
		APIName:    "PetStore",
		ClientName: "PetStoreClient",
		Info:       spec.Info{Title: "Pet Store", Version: "1.0.0", Description: "A sample pet store"},
		Types: []spec.NamedType{
			{
				Name:        "Owner",
				Component:   "Owner",
				Description: "Someone who owns pets",
				Type: spec.TypeRef{Kind: spec.KindObject, Properties: []spec.Property{
					{Name: "pets", Type: spec.TypeRef{Kind: spec.KindArray, Items: &spec.TypeRef{Kind: spec.KindRef, Name: "Pet"}}},
				}},
			},
			{
				Name:      "Pet",
				Component: "Pet",
				Type: spec.TypeRef{Kind: spec.KindObject, Properties: []spec.Property{
					{Name: "id", Type: scalar(spec.KindInteger), Required: true},
					{Name: "name", Type: scalar(spec.KindString)},
					{Name: "owner", Type: ref("Owner")},
				}},
			},
			{
				Name:      "Pets",
				Component: "Pets",
				Type:      spec.TypeRef{Kind: spec.KindArray, Items: &spec.TypeRef{Kind: spec.KindRef, Name: "Pet"}},
			},
		},
		Operations: []spec.Operation{
			{
				Path:         "/pets/{id}",
				Method:       spec.MethodGet,
				OperationID:  "getPet",
				DeclaredID:   true,
				FuncName:     "getPet",
				Summary:      "Get a pet",
				ResponseType: ref("Pet"),
				Parameters: []spec.Parameter{
					{Name: "id", OriginalName: "id", In: spec.InPath, Required: true, Type: scalar(spec.KindInteger)},
					{Name: "verbose", OriginalName: "verbose", In: spec.InQuery, Type: scalar(spec.KindBoolean)},
				},
			},
			{
				Path:         "/pets",
				Method:       spec.MethodPost,
				OperationID:  "createPet",
				DeclaredID:   true,
				FuncName:     "createPet",
				ResponseType: ref("Pet"),
				RequestBody:  &spec.RequestBody{Required: true, ContentType: "application/json"},
				Parameters: []spec.Parameter{
					{Name: "store", OriginalName: "store", In: spec.InQuery, Required: true, Type: scalar(spec.KindString)},
					{Name: "name", OriginalName: "name", In: spec.InBody, Required: true, Type: scalar(spec.KindString)},
					{Name: "X_Request_ID", OriginalName: "X-Request-ID", In: spec.InHeader, Type: scalar(spec.KindString)},
					{Name: "dry_run", OriginalName: "dry-run", In: spec.InQuery, Type: scalar(spec.KindBoolean)},
					{Name: "tags", OriginalName: "tags", In: spec.InBody, Type: spec.TypeRef{Kind: spec.KindArray, Items: &spec.TypeRef{Kind: spec.KindString}}},
				},
			},
			{
				Path:         "/pets/{id}/photo",
				Method:       spec.MethodPut,
				OperationID:  "put_pets_id_photo",
				FuncName:     "put_pets_id_photo",
				ResponseType: spec.AnyType(),
				RequestBody:  &spec.RequestBody{ContentType: "application/json", Whole: true},
				Parameters: []spec.Parameter{
					{Name: "id", OriginalName: "id", In: spec.InPath, Required: true, Type: scalar(spec.KindInteger)},
					{Name: "body", OriginalName: "body", In: spec.InBody, Type: scalar(spec.KindString)},
				},
			},
		},
	}
}

// WithAPIKey returns in with an apiKey credential selected.
func WithAPIKey(in emitter.Input) emitter.Input {
	in.Security = &spec.SecuritySelection{SchemeName: "apiKeyAuth", Type: "apiKey", In: "header", HeaderName: "X-API-Key"}
	return in
}
