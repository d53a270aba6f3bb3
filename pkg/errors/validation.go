package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateCanvasName validates a canvas name before it is used as a storage
// key or file name. It rejects names that could be used for path traversal.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No path separators
//   - Maximum length of 128 characters
func ValidateCanvasName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "canvas name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "canvas name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "canvas name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "canvas name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// identifierRegex matches field, port and type identifiers.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateIdentifier validates a type, kind or field name.
// Identifiers start with a letter or underscore and contain only letters,
// digits, underscores, dots and dashes.
func ValidateIdentifier(what, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", what)
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidName, "%s name too long (max 64 characters)", what)
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid %s name: %q", what, name)
	}
	return nil
}

// colorRegex matches "#RRGGBB" hex colors.
var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateColor validates a "#RRGGBB" hex color used for type display.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q (want #RRGGBB)", color)
	}
	return nil
}
