package spec

// Method is an HTTP verb that the extractor turns into an Operation.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPut    Method = "PUT"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// extractMethods lists the verbs walked for each path item, in traversal order.
var extractMethods = []Method{MethodGet, MethodPut, MethodPost, MethodDelete, MethodPatch}

// Location is where a parameter travels on the wire.
type Location string

const (
	InPath   Location = "path"
	InQuery  Location = "query"
	InHeader Location = "header"
	InBody   Location = "body"
)

// Operation is one path+method pair in language-neutral form.
type Operation struct {
	Path        string
	Method      Method
	OperationID string
	// DeclaredID is false when OperationID was derived from method and path.
	DeclaredID bool
	// FuncName is OperationID sanitized into an identifier.
	FuncName     string
	Summary      string
	Description  string
	Tags         []string
	Parameters   []Parameter
	RequestBody  *RequestBody
	ResponseType TypeRef
}

// Parameter is a single argument of a generated client call.
type Parameter struct {
	Name         string
	OriginalName string
	In           Location
	Description  string
	Required     bool
	Type         TypeRef
}

// RequestBody describes the JSON payload of an operation. Its fields are
// exposed as Parameters with In == InBody.
type RequestBody struct {
	Required    bool
	ContentType string
	// Whole is set when the payload is not an object and travels as a single
	// parameter named "body".
	Whole bool
}

func (op Operation) params(in Location) []Parameter {
	var out []Parameter
	for _, p := range op.Parameters {
		if p.In == in {
			out = append(out, p)
		}
	}
	return out
}

func (op Operation) PathParams() []Parameter   { return op.params(InPath) }
func (op Operation) QueryParams() []Parameter  { return op.params(InQuery) }
func (op Operation) HeaderParams() []Parameter { return op.params(InHeader) }
func (op Operation) BodyParams() []Parameter   { return op.params(InBody) }

// Collision records two operations that resolved to the same identifier.
// The first one in traversal order is kept.
type Collision struct {
	ID      string
	Kept    string // "GET /pets"
	Dropped string
}

// Catalog is the extractor's output.
type Catalog struct {
	Operations []Operation
	Collisions []Collision
	// Total counts operations before filters were applied.
	Total int
}

// SecuritySelection is the credential surfaced in generated constructors.
type SecuritySelection struct {
	SchemeName string
	Type       string // apiKey or http
	Scheme     string // http only, e.g. bearer
	In         string // apiKey only
	HeaderName string // apiKey only
}

// CredentialParam is the constructor argument that carries the credential.
const CredentialParam = "api_key"

// Info mirrors the document's info block.
type Info struct {
	Title       string
	Version     string
	Description string
}
