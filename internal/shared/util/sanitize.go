package util

import (
	"errors"
	"strings"
)

const maxFileNameLength = 160

// SanitizeFileName reduces a declared file name to a safe allow-listed form.
// Path separators become underscores, traversal sequences are collapsed, any
// character outside [A-Za-z0-9._-] is replaced, and the result is truncated.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "", errors.New("invalid file name")
	}
	if len(out) > maxFileNameLength {
		// Keep the extension when truncating.
		ext := ""
		if idx := strings.LastIndex(out, "."); idx > 0 && len(out)-idx <= 16 {
			ext = out[idx:]
		}
		out = out[:maxFileNameLength-len(ext)] + ext
	}
	return out, nil
}
