package vhlib

import (
	"path/filepath"
	"strings"
)

// normalizeSuffix lower-cases a configured suffix and strips a leading dot so
// comparisons against a path's extension are uniform.
func normalizeSuffix(suffix string) string {
	return strings.ToLower(strings.TrimPrefix(suffix, "."))
}

// suffixMatches reports whether path ends in one of the accepted suffixes,
// comparing the last "." occurrence case-insensitively (§4.5).
func suffixMatches(path string, accepted map[string]struct{}) bool {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return false
	}
	ext := strings.ToLower(path[idx+1:])
	_, ok := accepted[ext]
	return ok
}

// matchesAnyRoot reports whether path still falls under one of the
// configured scan roots, the same scoping walkRoot applies when it first
// emits the path: a recursive root covers path and every descendant, a
// non-recursive root only covers its immediate children (§4.5/§4.6).
func matchesAnyRoot(path string, roots []scanRootState) bool {
	for _, r := range roots {
		if r.recursive {
			if path == r.path || strings.HasPrefix(path, r.path+string(filepath.Separator)) {
				return true
			}
			continue
		}
		if filepath.Dir(path) == r.path {
			return true
		}
	}
	return false
}
