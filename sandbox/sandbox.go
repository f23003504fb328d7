// Package sandbox confines tool supplied paths to a base directory.
//
// Resolve is the single containment check. Tool handlers never join or clean
// paths themselves before I/O.
package sandbox

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrViolation is returned (wrapped) for every rejected path.
var ErrViolation = errors.New("sandbox violation")

// Resolve validates requested against base and returns the absolute path it
// refers to. The request is rejected when it is empty, absolute (including
// Windows volume or UNC forms), contains a ".." segment, or when the joined
// and cleaned result is outside base.
func Resolve(base, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return "", fmt.Errorf("%w: empty path", ErrViolation)
	}
	if isAbsolute(requested) {
		return "", fmt.Errorf("%w: absolute path %q", ErrViolation, requested)
	}
	if hasParentSegment(requested) {
		return "", fmt.Errorf("%w: parent segment in %q", ErrViolation, requested)
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base %q: %v", ErrViolation, base, err)
	}

	full := filepath.Join(absBase, filepath.FromSlash(requested))
	if !within(absBase, full) {
		return "", fmt.Errorf("%w: %q escapes base", ErrViolation, requested)
	}
	return full, nil
}

// Relative returns path relative to base using forward slashes, for display
// in tool results. It falls back to path when no relative form exists.
func Relative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func isAbsolute(p string) bool {
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return true
	}
	// Rooted and drive-letter forms are rejected on every platform.
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	return len(p) >= 2 && p[1] == ':' && isLetter(p[0])
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hasParentSegment(p string) bool {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// within reports whether target equals base or lies beneath it. A plain
// string prefix is not enough: /base-other must not match /base.
func within(base, target string) bool {
	if target == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefix)
}
