package errors

import (
	"strings"
	"unicode"
)

// ValidateSlideID validates a slide identifier used to name output files.
// Slide IDs come from batch manifests and HTTP requests, so they are treated
// as untrusted:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - No control characters
//   - No path separators or traversal sequences
//   - No hidden-file names
func ValidateSlideID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "slide id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "slide id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "slide id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "slide id cannot contain path separators")
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "slide id contains invalid characters: %q", "..")
	}

	if strings.HasPrefix(id, ".") {
		return New(ErrCodeInvalidInput, "slide id cannot start with a dot")
	}

	return nil
}

// ValidatePath validates a background path referenced by a batch manifest.
// Paths are resolved relative to the manifest directory.
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

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
