package models

import "sort"

// FileSet maps a relative, slash-separated file path to its full replacement
// content. It lives only for the duration of one request.
type FileSet map[string]string

// Paths returns the file paths in deterministic (sorted) order.
func (f FileSet) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
