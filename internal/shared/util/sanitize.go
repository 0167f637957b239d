package util

import (
	"errors"
	"strings"
)

// SanitizeFileName makes name safe to place in a Content-Disposition
// header. Path separators and control characters become underscores;
// names that traverse directories or collapse to nothing are rejected.
func SanitizeFileName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("empty file name")
	}
	if strings.Contains(trimmed, "..") {
		return "", errors.New("file name must not traverse directories")
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case r < 0x20 || r == 0x7f:
			return '_'
		default:
			return r
		}
	}, trimmed)
	if strings.Trim(safe, "._ ") == "" {
		return "", errors.New("file name has no usable characters")
	}
	return safe, nil
}
