package spec

import "strings"

// Kind is the closed set of language-neutral type shapes.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindRef     Kind = "ref"
	KindAny     Kind = "any"
)

// TypeRef is a schema resolved into language-neutral form. Items is set for
// arrays, Properties for objects and Name for references to named types.
type TypeRef struct {
	Kind       Kind
	Items      *TypeRef
	Properties []Property
	Name       string
}

// Property is one field of an object TypeRef.
type Property struct {
	Name        string
	Type        TypeRef
	Required    bool
	Description string
}

// NamedType is a component schema emitted once as a named declaration.
type NamedType struct {
	Name        string
	Component   string
	Description string
	Type        TypeRef
}

func AnyType() TypeRef { return TypeRef{Kind: KindAny} }

const (
	schemaRefPrefix = "#/components/schemas/"
	maxTypeDepth    = 32
)

// SchemaTable resolves component schemas. It is built once per loaded
// document and is read-only afterwards.
type SchemaTable struct {
	schemas map[string]map[string]any
	names   map[string]string
	// targets maps each component to the component its $ref chain ends at,
	// or to "" when the chain is cyclic or dangling.
	targets map[string]string
	order   []string
}

func newSchemaTable(tree map[string]any, reserved ...string) *SchemaTable {
	raw := mapAt(mapAt(tree, "components"), "schemas")
	t := &SchemaTable{
		schemas: make(map[string]map[string]any, len(raw)),
		names:   make(map[string]string, len(raw)),
		targets: make(map[string]string, len(raw)),
		order:   sortedKeys(raw),
	}
	taken := toSet(reserved...)
	for _, key := range t.order {
		node, _ := raw[key].(map[string]any)
		if node == nil {
			node = map[string]any{}
		}
		t.schemas[key] = node
		t.names[key] = uniqueName(TypeName(key), taken)
	}
	for _, key := range t.order {
		t.targets[key] = t.follow(key)
	}
	return t
}

// follow walks a chain of pure $ref components. A visited set breaks cycles.
func (t *SchemaTable) follow(start string) string {
	visited := map[string]struct{}{}
	current := start
	for {
		if _, seen := visited[current]; seen {
			return ""
		}
		visited[current] = struct{}{}
		node, ok := t.schemas[current]
		if !ok {
			return ""
		}
		ref := stringAt(node, "$ref")
		if ref == "" {
			return current
		}
		next, ok := componentName(ref)
		if !ok {
			return ""
		}
		current = next
	}
}

func componentName(ref string) (string, bool) {
	name, ok := strings.CutPrefix(ref, schemaRefPrefix)
	if !ok || name == "" {
		return "", false
	}
	name = strings.ReplaceAll(name, "~1", "/")
	name = strings.ReplaceAll(name, "~0", "~")
	return name, true
}

// Resolve converts a schema node into a TypeRef. References become KindRef
// naming the emitted type; anything unresolvable becomes KindAny.
func (t *SchemaTable) Resolve(node any) TypeRef {
	return t.resolve(node, 0)
}

func (t *SchemaTable) resolve(node any, depth int) TypeRef {
	m, ok := node.(map[string]any)
	if !ok || depth > maxTypeDepth {
		return AnyType()
	}
	if ref := stringAt(m, "$ref"); ref != "" {
		return t.resolveRef(ref)
	}
	for _, key := range []string{"allOf", "oneOf", "anyOf"} {
		if parts := sliceAt(m, key); parts != nil {
			if len(parts) == 1 {
				return t.resolve(parts[0], depth+1)
			}
			return AnyType()
		}
	}
	switch schemaType(m) {
	case "string":
		return TypeRef{Kind: KindString}
	case "integer":
		return TypeRef{Kind: KindInteger}
	case "number":
		return TypeRef{Kind: KindNumber}
	case "boolean":
		return TypeRef{Kind: KindBoolean}
	case "array":
		items := t.resolve(m["items"], depth+1)
		return TypeRef{Kind: KindArray, Items: &items}
	case "object":
		return TypeRef{Kind: KindObject, Properties: t.properties(m, depth)}
	default:
		return AnyType()
	}
}

func (t *SchemaTable) resolveRef(ref string) TypeRef {
	name, ok := componentName(ref)
	if !ok {
		return AnyType()
	}
	target := t.targets[name]
	if target == "" {
		return AnyType()
	}
	return TypeRef{Kind: KindRef, Name: t.names[target]}
}

func (t *SchemaTable) properties(m map[string]any, depth int) []Property {
	props := mapAt(m, "properties")
	if len(props) == 0 {
		return nil
	}
	required := toSet(stringsAt(m, "required")...)
	out := make([]Property, 0, len(props))
	for _, name := range sortedKeys(props) {
		_, req := required[name]
		prop, _ := props[name].(map[string]any)
		out = append(out, Property{
			Name:        name,
			Type:        t.resolve(props[name], depth+1),
			Required:    req,
			Description: stringAt(prop, "description"),
		})
	}
	return out
}

// schemaType reads "type", accepting the list form of newer documents, and
// infers object or array from the keywords present when it is missing.
func schemaType(m map[string]any) string {
	switch v := m["type"].(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "null" {
				return s
			}
		}
	}
	if _, ok := m["properties"]; ok {
		return "object"
	}
	if _, ok := m["items"]; ok {
		return "array"
	}
	return ""
}

// Deref follows $ref chains to the schema node they point at. It returns nil
// for dangling or cyclic references.
func (t *SchemaTable) Deref(node any) map[string]any {
	m, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	ref := stringAt(m, "$ref")
	if ref == "" {
		return m
	}
	name, ok := componentName(ref)
	if !ok {
		return nil
	}
	target := t.targets[name]
	if target == "" {
		return nil
	}
	return t.schemas[target]
}

// Named returns one NamedType per component in sorted key order. Components
// that are only a $ref to another component are folded into their target.
func (t *SchemaTable) Named() []NamedType {
	out := make([]NamedType, 0, len(t.order))
	for _, key := range t.order {
		node := t.schemas[key]
		if stringAt(node, "$ref") != "" {
			continue
		}
		out = append(out, NamedType{
			Name:        t.names[key],
			Component:   key,
			Description: stringAt(node, "description"),
			Type:        t.Resolve(node),
		})
	}
	return out
}
