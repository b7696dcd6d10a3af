package spec

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
)

// validateStrict runs kin-openapi's validator over the OpenAPI 3 view. The
// validator only understands 3.0, so 3.1 documents are skipped.
func validateStrict(ctx context.Context, doc *Document, logger *zap.Logger) error {
	version := stringAt(doc.Tree(), "openapi")
	if !strings.HasPrefix(version, "3.0") {
		logger.Debug("skipping strict validation", zap.String("openapi", version))
		return nil
	}
	data, err := json.Marshal(doc.Tree())
	if err != nil {
		return err
	}
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	t, err := loader.LoadFromData(data)
	if err != nil {
		return validationError(err)
	}
	if err := t.Validate(ctx); err != nil {
		if unresolvedRefOnly(err) {
			logger.Warn("strict validation found unresolved references", zap.Error(err))
			return nil
		}
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	se := sdkerr.InvalidSpec("document", "validation failed: %v", err)
	se.Pointer = extractJSONPointer(err)
	se.Cause = err
	return se
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	return jsonPtrRe.FindString(err.Error())
}

// unresolvedRefOnly reports whether err is about dangling references, which
// generation tolerates by typing them as any.
func unresolvedRefOnly(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref")
}
