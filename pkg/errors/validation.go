package errors

import (
	"strings"
	"unicode"
)

// ValidateRegionKey validates a region key for safety and correctness.
// Region keys are embedded in cache keys, plan output, and SVG element IDs,
// so the validation rules are intentionally conservative:
//   - No empty keys
//   - No control characters or whitespace
//   - No colons (reserved as the cache key separator)
//   - Maximum length of 128 characters
func ValidateRegionKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidRegion, "region key cannot be empty")
	}

	if len(key) > 128 {
		return New(ErrCodeInvalidRegion, "region key too long (max 128 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidRegion, "region key contains whitespace or control characters")
		}
	}

	if strings.Contains(key, ":") {
		return New(ErrCodeInvalidRegion, "region key cannot contain %q", ":")
	}

	return nil
}

// ValidateComponentID validates a component identifier from a document.
// Component IDs flow into measurement keys and reroute cache keys, so they
// must be non-empty and free of separator characters.
func ValidateComponentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "component id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidDocument, "component id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "component id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, ":/\\") {
		return New(ErrCodeInvalidDocument, "component id cannot contain separator characters")
	}

	return nil
}

// ValidateFormat checks an output format name against the set of supported formats.
// The valid set is supplied by the caller so this helper stays decoupled from
// the preview package.
func ValidateFormat(format string, valid map[string]bool) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !valid[format] {
		names := make([]string, 0, len(valid))
		for name := range valid {
			names = append(names, name)
		}
		return New(ErrCodeInvalidFormat, "unsupported format %q (valid: %s)", format, strings.Join(names, ", "))
	}
	return nil
}
