package spec

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ExtractOption configures Extract.
type ExtractOption func(*extractSettings)

type extractSettings struct {
	operationID string
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	logger      *zap.Logger
}

// WithOperationID keeps only the operation with the given id.
func WithOperationID(id string) ExtractOption {
	return func(s *extractSettings) { s.operationID = strings.TrimSpace(id) }
}

// WithIncludeTags keeps only operations carrying at least one of tags.
func WithIncludeTags(tags []string) ExtractOption {
	return func(s *extractSettings) { s.includeTags = toSet(tags...) }
}

// WithExcludeTags drops operations carrying any of tags.
func WithExcludeTags(tags []string) ExtractOption {
	return func(s *extractSettings) { s.excludeTags = toSet(tags...) }
}

func WithExtractLogger(l *zap.Logger) ExtractOption {
	return func(s *extractSettings) {
		if l != nil {
			s.logger = l
		}
	}
}

// Extract walks the document's paths in sorted order and builds one
// Operation per supported method. Operations that declare the same
// identifier are reported in Catalog.Collisions; the first one wins.
func Extract(doc *Document, opts ...ExtractOption) *Catalog {
	settings := extractSettings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&settings)
	}
	logger := settings.logger.With(zap.String("component", "extractor"))

	all, collisions := doc.operations(logger)
	for _, c := range collisions {
		logger.Warn("operation id collision",
			zap.String("id", c.ID),
			zap.String("kept", c.Kept),
			zap.String("dropped", c.Dropped),
		)
	}

	cat := &Catalog{Collisions: collisions, Total: len(all)}
	for _, op := range all {
		if settings.operationID != "" && op.OperationID != settings.operationID {
			continue
		}
		if !settings.tagsMatch(op.Tags) {
			continue
		}
		cat.Operations = append(cat.Operations, op)
	}
	return cat
}

func (s extractSettings) tagsMatch(tags []string) bool {
	for _, tag := range tags {
		if _, ok := s.excludeTags[tag]; ok {
			return false
		}
	}
	if len(s.includeTags) == 0 {
		return true
	}
	for _, tag := range tags {
		if _, ok := s.includeTags[tag]; ok {
			return true
		}
	}
	return false
}

// FindOperation looks an operation up by id. Declared ids are matched
// before derived ones.
func (d *Document) FindOperation(id string) (Operation, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Operation{}, false
	}
	all, _ := d.operations(zap.NewNop())
	for _, op := range all {
		if op.DeclaredID && op.OperationID == id {
			return op, true
		}
	}
	for _, op := range all {
		if op.OperationID == id {
			return op, true
		}
	}
	return Operation{}, false
}

// operations builds every operation in sorted (path, method) order. Declared
// ids claim their names first, and a second operation declaring a taken id
// is reported as a collision. Derived ids never collide: a derived id that
// is already taken gets a numeric suffix.
func (d *Document) operations(logger *zap.Logger) ([]Operation, []Collision) {
	paths := mapAt(d.tree, "paths")
	var all []Operation
	for _, path := range sortedKeys(paths) {
		item := d.derefComponent(mapAt(paths, path), "pathItems")
		for _, method := range extractMethods {
			raw := mapAt(item, strings.ToLower(string(method)))
			if raw == nil {
				continue
			}
			all = append(all, d.buildOperation(path, method, item, raw, logger))
		}
	}

	var (
		collisions []Collision
		declared   = map[string]Operation{}
		dropped    = make([]bool, len(all))
		taken      = map[string]struct{}{}
	)
	for i, op := range all {
		if !op.DeclaredID {
			continue
		}
		if first, dup := declared[op.FuncName]; dup {
			collisions = append(collisions, Collision{
				ID:      op.OperationID,
				Kept:    describeOp(first),
				Dropped: describeOp(op),
			})
			dropped[i] = true
			continue
		}
		declared[op.FuncName] = op
		taken[op.FuncName] = struct{}{}
	}

	out := make([]Operation, 0, len(all))
	for i, op := range all {
		if dropped[i] {
			continue
		}
		if !op.DeclaredID {
			name := uniqueName(op.FuncName, taken)
			if name != op.FuncName {
				logger.Debug("derived operation id renamed",
					zap.String("operation", describeOp(op)),
					zap.String("id", op.OperationID),
					zap.String("name", name),
				)
				op.OperationID += strings.TrimPrefix(name, op.FuncName)
				op.FuncName = name
			}
		}
		out = append(out, op)
	}
	return out, collisions
}

func describeOp(op Operation) string {
	return string(op.Method) + " " + op.Path
}

func (d *Document) buildOperation(path string, method Method, item, raw map[string]any, logger *zap.Logger) Operation {
	op := Operation{
		Path:        path,
		Method:      method,
		OperationID: strings.TrimSpace(stringAt(raw, "operationId")),
		Summary:     stringAt(raw, "summary"),
		Description: stringAt(raw, "description"),
		Tags:        stringsAt(raw, "tags"),
	}
	if op.OperationID != "" {
		op.DeclaredID = true
	} else {
		op.OperationID = DerivedOperationID(method, path)
	}
	op.FuncName = SanitizeIdentifier(op.OperationID)

	params := d.collectParameters(sliceAt(item, "parameters"), sliceAt(raw, "parameters"), op, logger)
	if body, bodyParams := d.requestBody(mapAt(raw, "requestBody")); body != nil {
		op.RequestBody = body
		params = append(params, bodyParams...)
	}

	taken := map[string]struct{}{}
	for i := range params {
		params[i].Name = uniqueName(SanitizeIdentifier(params[i].OriginalName), taken)
	}
	sort.SliceStable(params, func(i, j int) bool {
		return params[i].Required && !params[j].Required
	})
	op.Parameters = params
	op.ResponseType = d.responseType(mapAt(raw, "responses"))
	return op
}

type paramKey struct {
	in   string
	name string
}

// collectParameters merges path-level parameters the operation does not
// override with the operation's own, keeping source order within each list.
func (d *Document) collectParameters(shared, own []any, op Operation, logger *zap.Logger) []Parameter {
	resolve := func(list []any) []map[string]any {
		out := make([]map[string]any, 0, len(list))
		for i, item := range list {
			pm := d.derefComponent(asMap(item), "parameters")
			if pm == nil {
				logger.Warn("skipping unresolved parameter",
					zap.String("operation", describeOp(op)),
					zap.Int("index", i),
				)
				continue
			}
			out = append(out, pm)
		}
		return out
	}
	ownParams := resolve(own)
	overridden := make(map[paramKey]struct{}, len(ownParams))
	for _, pm := range ownParams {
		overridden[paramKey{stringAt(pm, "in"), stringAt(pm, "name")}] = struct{}{}
	}

	var merged []map[string]any
	for _, pm := range resolve(shared) {
		if _, ok := overridden[paramKey{stringAt(pm, "in"), stringAt(pm, "name")}]; !ok {
			merged = append(merged, pm)
		}
	}
	merged = append(merged, ownParams...)

	out := make([]Parameter, 0, len(merged))
	for _, pm := range merged {
		var in Location
		switch strings.ToLower(stringAt(pm, "in")) {
		case "path":
			in = InPath
		case "query":
			in = InQuery
		case "header":
			in = InHeader
		default:
			logger.Debug("skipping parameter",
				zap.String("operation", describeOp(op)),
				zap.String("name", stringAt(pm, "name")),
				zap.String("in", stringAt(pm, "in")),
			)
			continue
		}
		schema := pm["schema"]
		if schema == nil {
			if media := jsonMedia(mapAt(pm, "content")); media != nil {
				schema = media["schema"]
			}
		}
		out = append(out, Parameter{
			OriginalName: stringAt(pm, "name"),
			In:           in,
			Description:  stringAt(pm, "description"),
			Required:     in == InPath || boolAt(pm, "required"),
			Type:         d.schemas.Resolve(schema),
		})
	}
	return out
}

// requestBody expands a JSON body into one parameter per top-level
// property. Bodies that are not objects travel as a single "body" parameter.
func (d *Document) requestBody(raw map[string]any) (*RequestBody, []Parameter) {
	rb := d.derefComponent(raw, "requestBodies")
	if rb == nil {
		return nil, nil
	}
	contentType, media := jsonMediaType(mapAt(rb, "content"))
	if media == nil {
		return nil, nil
	}
	body := &RequestBody{Required: boolAt(rb, "required"), ContentType: contentType}
	schema := media["schema"]

	obj := d.schemas.Deref(schema)
	if obj != nil && schemaType(obj) == "object" && len(mapAt(obj, "properties")) > 0 {
		resolved := d.schemas.Resolve(obj)
		params := make([]Parameter, 0, len(resolved.Properties))
		for _, prop := range resolved.Properties {
			params = append(params, Parameter{
				OriginalName: prop.Name,
				In:           InBody,
				Description:  prop.Description,
				Required:     prop.Required,
				Type:         prop.Type,
			})
		}
		return body, params
	}

	body.Whole = true
	return body, []Parameter{{
		OriginalName: "body",
		In:           InBody,
		Description:  stringAt(rb, "description"),
		Required:     body.Required,
		Type:         d.schemas.Resolve(schema),
	}}
}

// responseType prefers the 200 response and otherwise the first 2xx one.
func (d *Document) responseType(responses map[string]any) TypeRef {
	codes := make([]string, 0, len(responses))
	if _, ok := responses["200"]; ok {
		codes = append(codes, "200")
	}
	for _, code := range sortedKeys(responses) {
		if code != "200" && strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	for _, code := range codes {
		resp := d.derefComponent(mapAt(responses, code), "responses")
		if _, media := jsonMediaType(mapAt(resp, "content")); media != nil {
			if schema, ok := media["schema"]; ok {
				return d.schemas.Resolve(schema)
			}
		}
	}
	return AnyType()
}

func jsonMedia(content map[string]any) map[string]any {
	_, media := jsonMediaType(content)
	return media
}

// jsonMediaType picks application/json, then any other JSON media type in
// sorted order.
func jsonMediaType(content map[string]any) (string, map[string]any) {
	if media := mapAt(content, "application/json"); media != nil {
		return "application/json", media
	}
	for _, ct := range sortedKeys(content) {
		lower := strings.ToLower(ct)
		if strings.Contains(lower, "json") {
			if media := mapAt(content, ct); media != nil {
				return ct, media
			}
		}
	}
	return "", nil
}

// derefComponent follows "#/components/<section>/<name>" references through
// the document, stopping at cycles.
func (d *Document) derefComponent(node map[string]any, section string) map[string]any {
	prefix := fmt.Sprintf("#/components/%s/", section)
	visited := map[string]struct{}{}
	for node != nil {
		ref := stringAt(node, "$ref")
		if ref == "" {
			return node
		}
		if _, seen := visited[ref]; seen {
			return nil
		}
		visited[ref] = struct{}{}
		name, ok := strings.CutPrefix(ref, prefix)
		if !ok {
			return nil
		}
		name = strings.ReplaceAll(strings.ReplaceAll(name, "~1", "/"), "~0", "~")
		node = mapAt(mapAt(mapAt(d.tree, "components"), section), name)
	}
	return nil
}
