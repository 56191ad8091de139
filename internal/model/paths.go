package model

import "strings"

// splitPath decomposes an absolute path into its non-empty components,
// mirroring the original splitPathIntoParts: a leading slash is required,
// doubled slashes and a trailing slash produce no empty components.
func splitPath(path string) []string {
	if len(path) == 0 || path[0] != '/' {
		return nil
	}
	raw := strings.Split(path[1:], "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// baseName returns the last component of path.
func baseName(path string) string {
	idx := strings.LastIndexByte(path, '/')
	return path[idx+1:]
}

// parentPath returns everything before the last path separator; an empty
// result means the root.
func parentPath(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}
