package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// moduleNameRegex matches names that are valid as a Python import segment.
var moduleNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidatePackageName validates the name of a new workspace package.
// The name becomes a directory below the namespace and part of every import
// of the package, so it must be a valid Python identifier:
//   - Not empty
//   - Maximum length of 128 characters
//   - Letters, digits and underscores only, not starting with a digit
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "package name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "package name too long (max 128 characters)")
	}
	if !moduleNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid package name %q: must be a valid Python identifier", name)
	}
	return nil
}

// ValidatePath validates a workspace-relative directory such as "libs".
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidInput, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "path cannot contain backslashes")
	}
	return nil
}
