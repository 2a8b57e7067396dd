package errors

import (
	"strings"
	"unicode"
)

// ValidateResourceType validates a component resource type before it is used
// to build a repository path. Resource types are slash-separated relative
// paths such as "myapp/components/teaser".
//
// Validation rules:
//   - No empty resource types
//   - Maximum length of 256 characters
//   - No control characters
//   - No absolute paths, empty segments, or ".." segments
//   - No backslashes
func ValidateResourceType(rt string) error {
	if rt == "" {
		return New(ErrCodeInvalidInput, "resource type cannot be empty")
	}

	if len(rt) > 256 {
		return New(ErrCodeInvalidInput, "resource type too long (max 256 characters)")
	}

	for _, r := range rt {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "resource type contains invalid control characters")
		}
	}

	if err := ValidatePath(rt); err != nil {
		return err
	}

	for _, seg := range strings.Split(rt, "/") {
		if seg == "" || seg == "." {
			return New(ErrCodeInvalidInput, "resource type contains an empty segment: %q", rt)
		}
	}

	return nil
}

// ValidatePath validates a path relative to jcr_root for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No ".." segments (path traversal)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	// Dots inside a name ("my..lib") are legal JCR names; only a whole
	// ".." segment walks out of the tree.
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal segments (..)")
		}
	}

	return nil
}
