package spec

import (
	"strings"

	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
)

// Dialect tells which family of specification a document was written in.
type Dialect string

const (
	DialectOpenAPI  Dialect = "openapi"
	DialectSwagger2 Dialect = "swagger"
)

// Format is the text encoding a document was decoded from.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is a loaded specification. The tree is an OpenAPI 3 view of the
// input: Swagger 2.0 documents are converted during Load. A Document is not
// modified after Load returns and may be shared between goroutines.
type Document struct {
	tree     map[string]any
	original map[string]any
	dialect  Dialect
	version  string
	format   Format
	location string
	apiName  string
	schemas  *SchemaTable
}

// Tree returns the OpenAPI 3 view. Callers must treat it as read-only.
func (d *Document) Tree() map[string]any { return d.tree }

// Original returns the tree as decoded, before any Swagger conversion.
func (d *Document) Original() map[string]any { return d.original }

func (d *Document) Dialect() Dialect { return d.dialect }
func (d *Document) Version() string { return d.version }
func (d *Document) Format() Format { return d.format }
func (d *Document) Location() string { return d.location }
func (d *Document) Schemas() *SchemaTable { return d.schemas }

// APIName is the title with whitespace stripped, used as a class name prefix.
func (d *Document) APIName() string { return d.apiName }

// ClientName is the name of the generated client type.
func (d *Document) ClientName() string { return d.apiName + "Client" }

func (d *Document) Info() Info {
	info := mapAt(d.tree, "info")
	return Info{
		Title:       stringAt(info, "title"),
		Version:     stringAt(info, "version"),
		Description: stringAt(info, "description"),
	}
}

// Servers lists the absolute server URLs the document declares.
func (d *Document) Servers() []string {
	var out []string
	for _, item := range sliceAt(d.tree, "servers") {
		server, _ := item.(map[string]any)
		u := stringAt(server, "url")
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			out = append(out, u)
		}
	}
	return out
}

func newDocument(root map[string]any, format Format, location string) (*Document, error) {
	doc := &Document{original: root, format: format, location: location}
	_, hasOpenAPI := root["openapi"]
	if !hasOpenAPI {
		doc.dialect = DialectSwagger2
		doc.version = stringAt(root, "swagger")
		if !strings.HasPrefix(doc.version, "2.") {
			return nil, sdkerr.InvalidSpec("swagger", "unsupported swagger version %q (expected 2.0)", doc.version)
		}
		tree, err := convertSwagger(root)
		if err != nil {
			se := sdkerr.InvalidSpec("swagger", "convert swagger 2.0 document: %v", err)
			se.Cause = err
			return nil, se
		}
		doc.tree = tree
	} else {
		doc.dialect = DialectOpenAPI
		doc.version = stringAt(root, "openapi")
		doc.tree = root
	}
	doc.apiName = APIName(doc.Info().Title)
	doc.schemas = newSchemaTable(doc.tree, doc.ClientName(), "New"+doc.ClientName())
	return doc, nil
}
