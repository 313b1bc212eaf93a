package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/interpretivelabs/methodd/internal/state"
)

// identifierPattern matches already-sanitized identifiers.
var identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{0,62}[a-z0-9]?$`)

// ValidatePath rejects traversal sequences and returns the cleaned absolute
// path. Project paths arrive from tool callers and CLI flags, so they are
// treated as untrusted until cleaned here.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", state.NewError(state.CodeInvalidArgument, "path cannot be empty").WithField("path")
	}
	if strings.Contains(path, "..") {
		return "", state.NewError(state.CodePathTraversal, "path %q contains '..'", path)
	}

	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return "", state.NewError(state.CodePathTraversal, "path %q resolves to traversal", path)
	}

	abs := clean
	if !filepath.IsAbs(clean) {
		var err error
		abs, err = filepath.Abs(clean)
		if err != nil {
			return "", state.WrapError(state.CodeInvalidArgument, err, "failed to resolve path %q", path)
		}
	}
	if strings.Contains(abs, "..") {
		return "", state.NewError(state.CodePathTraversal, "path %q contains traversal after resolution", path)
	}
	return abs, nil
}

// ValidateIdentifier checks that an identifier is already in canonical form.
// Use Identifier first to normalize free-form input.
func ValidateIdentifier(id, fieldName string) error {
	if id == "" {
		return state.NewError(state.CodeInvalidArgument, "%s is required", fieldName).WithField(fieldName)
	}
	if strings.ContainsAny(id, "/\\.") {
		return state.NewError(state.CodeInvalidArgument,
			"%s contains path characters", fieldName).WithField(fieldName)
	}
	if !identifierPattern.MatchString(id) {
		return state.NewError(state.CodeInvalidArgument,
			"%s must be lowercase alphanumeric with underscores (1-64 chars)", fieldName).WithField(fieldName)
	}
	return nil
}
