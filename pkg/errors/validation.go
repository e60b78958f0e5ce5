package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxIDLength bounds diagram, node, edge and session identifiers.
const MaxIDLength = 128

// ValidateID rejects identifiers that cannot be used safely as a file
// name, a store key or a URL segment: empty or overlong IDs, whitespace,
// control characters, slashes and "..".
func ValidateID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidID, "id cannot be empty")
	case len(id) > MaxIDLength:
		return New(ErrCodeInvalidID, "id longer than %d bytes", MaxIDLength)
	case strings.IndexFunc(id, func(r rune) bool { return unicode.IsControl(r) || unicode.IsSpace(r) }) >= 0:
		return New(ErrCodeInvalidID, "id %q contains whitespace or control characters", id)
	case strings.ContainsAny(id, `/\`), strings.Contains(id, ".."):
		return New(ErrCodeInvalidID, "id %q contains a path separator", id)
	}
	return nil
}

// ValidateFormat reports an INVALID_FORMAT error unless format is one of
// allowed.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
