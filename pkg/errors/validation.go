package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxIDLength bounds type and field identifiers. CMS ids are short; anything
// longer is almost certainly a broken import.
const maxIDLength = 256

// ValidateID validates an entity type or field identifier.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Maximum length of 256 characters
//
// Ids end up as Graphviz node names and connection handles, so whitespace is
// rejected even though some CMSs accept it in display names.
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidModel, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidModel, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidModel, "%s id %q contains invalid characters", kind, id)
		}
	}

	return nil
}

// modelExtensions are the file extensions a content model may be read from.
var modelExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
}

// ValidateModelFilename validates that a model file has a supported extension
// and is not a path traversal attempt.
func ValidateModelFilename(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "model path cannot be empty")
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "model path contains invalid characters")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !modelExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported model file extension %q (must be .json, .yaml, .yml or .toml)", ext)
	}

	return nil
}
