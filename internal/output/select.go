package output

import (
	"encoding/json"
	"fmt"

	"github.com/speakeasy-api/jsonpath/pkg/jsonpath"
	"gopkg.in/yaml.v3"
)

// Select evaluates the RFC 9535 JSONPath expr against the JSON form of v. A
// single match is returned as is; any other number of matches comes back as
// a list.
func Select(v any, expr string) (any, error) {
	path, err := jsonpath.NewPath(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value for selection: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode value for selection: %w", err)
	}

	nodes := path.Query(&root)
	matches := make([]any, 0, len(nodes))
	for _, node := range nodes {
		var m any
		if err := node.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}
		matches = append(matches, m)
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return matches, nil
}
