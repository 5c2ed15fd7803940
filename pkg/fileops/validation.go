package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePathSecurity rejects relative paths that could escape their base
// directory or smuggle control bytes. Only a whole ".." path segment is a
// traversal; a filename that merely contains dots is fine.
func ValidatePathSecurity(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("path contains null byte")
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return fmt.Errorf("path contains parent directory reference")
		}
	}
	return nil
}

// ValidateFileSizeLimit fails when the file exceeds maxSize bytes.
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	if info.Size() > maxSize {
		return fmt.Errorf("file size %d exceeds limit %d", info.Size(), maxSize)
	}
	return nil
}

// SanitizeIdentifier reduces an arbitrary string to a lowercase
// [a-z0-9_] identifier of at most maxLength runes. Returns an error when
// nothing usable survives.
func SanitizeIdentifier(identifier string, maxLength int) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(identifier) {
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "_")
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	if out == "" {
		return "", fmt.Errorf("identifier %q has no usable characters", identifier)
	}
	if len(out) > maxLength {
		out = strings.Trim(out[:maxLength], "_")
	}
	return out, nil
}
