package tags

import "path/filepath"

// ResolvePath joins a document's base directory with the parsed parts of a
// marker and normalizes the result. Purely lexical, no I/O. Two spellings of
// the same target collapse to the same path, which makes the result usable
// as a cache and watch key.
func ResolvePath(baseDir string, parts []string) string {
	elems := make([]string, 0, len(parts)+1)
	elems = append(elems, baseDir)
	elems = append(elems, parts...)
	return Normalize(filepath.Join(elems...))
}

// Normalize resolves "." and ".." elements, unifies separators and makes the
// path absolute when possible.
func Normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}
