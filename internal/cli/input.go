package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/openapi2sdk/internal/spec"
)

// readSource turns --input into something the loader accepts: URLs and
// inline documents pass through, "-" reads stdin and anything else is a
// file path.
func readSource(input string, stdin io.Reader) (string, error) {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read specification from stdin: %w", err)
		}
		return string(data), nil
	case spec.IsRemote(trimmed), looksInline(trimmed):
		return input, nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return "", newUsageError(fmt.Sprintf("read input %q: %v", trimmed, err))
	}
	return string(data), nil
}

func looksInline(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") || strings.Contains(s, "\n")
}

// readArg resolves a flag value given as literal text, @file or "-" for
// stdin.
func readArg(value, flag string, stdin io.Reader) (string, error) {
	switch {
	case value == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read --%s from stdin: %w", flag, err)
		}
		return string(data), nil
	case strings.HasPrefix(value, "@"):
		data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return "", newUsageError(fmt.Sprintf("--%s: %v", flag, err))
		}
		return string(data), nil
	default:
		return value, nil
	}
}

// parsePairs splits repeated key=value flag values. A repeated key collects
// every value in order.
func parsePairs(values []string, flag string) (map[string][]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(values))
	for _, v := range values {
		key, val, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, newUsageError(fmt.Sprintf("--%s expects key=value, got %q", flag, v))
		}
		out[key] = append(out[key], val)
	}
	return out, nil
}
