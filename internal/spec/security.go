package spec

import "strings"

// SelectSecurity returns the first apiKey or http scheme declared under
// components.securitySchemes, iterating scheme names in sorted order.
// Security requirements on operations are not consulted.
func SelectSecurity(doc *Document) *SecuritySelection {
	schemes := mapAt(mapAt(doc.Tree(), "components"), "securitySchemes")
	for _, name := range sortedKeys(schemes) {
		scheme := doc.derefComponent(mapAt(schemes, name), "securitySchemes")
		switch strings.ToLower(stringAt(scheme, "type")) {
		case "apikey":
			return &SecuritySelection{
				SchemeName: name,
				Type:       "apiKey",
				In:         stringAt(scheme, "in"),
				HeaderName: stringAt(scheme, "name"),
			}
		case "http":
			return &SecuritySelection{
				SchemeName: name,
				Type:       "http",
				Scheme:     strings.ToLower(stringAt(scheme, "scheme")),
			}
		}
	}
	return nil
}
