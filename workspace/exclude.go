// Package workspace scans project directories. The same exclusion list feeds
// indexing and the listing tools so stored snapshots and live listings agree.
package workspace

import (
	"errors"
	"io/fs"
	"sort"
	"strings"
)

var defaultExcludes = map[string]struct{}{
	"node_modules":      {},
	".git":              {},
	"dist":              {},
	"build":             {},
	"out":               {},
	".output":           {},
	".next":             {},
	".nuxt":             {},
	"vendor":            {},
	"__pycache__":       {},
	".DS_Store":         {},
	"package-lock.json": {},
	"yarn.lock":         {},
	"pnpm-lock.yaml":    {},
	"public":            {},
}

// IsExcluded reports whether an entry name is skipped by scans and listings.
func IsExcluded(name string) bool {
	_, ok := defaultExcludes[name]
	return ok
}

// DefaultExcludes returns the excluded names, sorted.
func DefaultExcludes() []string {
	names := make([]string, 0, len(defaultExcludes))
	for name := range defaultExcludes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortEntries orders entries case-insensitively, then by raw name.
func sortEntries(entries []fs.DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name()), strings.ToLower(entries[j].Name())
		if a != b {
			return a < b
		}
		return entries[i].Name() < entries[j].Name()
	})
}

// ErrorText returns an OS error's message without the absolute path a
// *fs.PathError carries.
func ErrorText(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	if err == nil {
		return "Unknown error"
	}
	return err.Error()
}
