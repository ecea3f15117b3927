package index

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// maxScanSize caps how much of a file the workspace scan will read.
const maxScanSize = 1 << 20

// Directories that never hold documents worth indexing.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
}

type fileInfo struct {
	Path         string
	LastModified int64
	Content      []byte
}

func scanFile(path string) (*fileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(content) > maxScanSize {
		content = content[:maxScanSize]
	}

	return &fileInfo{
		Path:         path,
		LastModified: info.ModTime().Unix(),
		Content:      content,
	}, nil
}

func scanDirectory(root string) ([]*fileInfo, error) {
	var files []*fileInfo

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}

		if info.IsDir() {
			// The root itself is never skipped; a workspace may live in a
			// dot-named directory.
			if path == root {
				return nil
			}
			name := info.Name()
			if skippedDirs[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() || info.Size() > maxScanSize {
			return nil
		}

		fi, err := scanFile(path)
		if err != nil {
			log.Printf("Failed to scan file %s: %v", path, err)
			return nil
		}
		if !isPlaintext(fi.Content) {
			return nil
		}
		files = append(files, fi)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// isPlaintext is a cheap binary sniff: a NUL in the first 512 bytes rules a
// file out.
func isPlaintext(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	return !bytes.ContainsRune(head, 0)
}
