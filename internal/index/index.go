// Package index maintains the workspace tag index: which documents contain
// markers resolving to which target paths. It backs the backlinks command
// and survives restarts via sqlite.
package index

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"tagpeek/internal/index/database"
	"tagpeek/internal/tags"
)

// Index wraps the sqlite store with tag extraction.
type Index struct {
	db database.Database
}

func New(db database.Database) *Index {
	return &Index{db: db}
}

// UpdateDocument re-extracts the document's tag links and stores them.
func (idx *Index) UpdateDocument(path, text string, lastModified int64, matcher *tags.Matcher) error {
	targets := extractTargets(path, text, matcher)

	return idx.db.WithTx(func(tx database.Transaction) error {
		if err := tx.UpsertDocument(&database.DocumentRecord{
			Path:         path,
			LastModified: lastModified,
		}); err != nil {
			return fmt.Errorf("failed to update document record: %w", err)
		}
		return tx.UpsertTagLinks(path, targets)
	})
}

// RemoveDocument drops a document and its links from the index.
func (idx *Index) RemoveDocument(path string) error {
	if err := idx.db.DeleteTagLinks(path); err != nil {
		return err
	}
	err := idx.db.DeleteDocument(path)
	if err == database.ErrNotFound {
		return nil
	}
	return err
}

// Backlinks returns the documents containing a marker that resolves to the
// given target path.
func (idx *Index) Backlinks(target string) ([]string, error) {
	links, err := idx.db.GetBacklinks(tags.Normalize(target))
	if err != nil {
		return nil, err
	}

	sources := make([]string, len(links))
	for i, link := range links {
		sources[i] = link.SourcePath
	}
	return sources, nil
}

// BuildWorkspace scans the workspace root and (re)populates the index.
// Per-file failures are logged and skipped.
func (idx *Index) BuildWorkspace(root string, matcher *tags.Matcher) error {
	files, err := scanDirectory(root)
	if err != nil {
		return fmt.Errorf("failed to walk workspace: %w", err)
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 4) // Limit concurrent operations
	var failed sync.Map

	for _, file := range files {
		wg.Add(1)
		go func(f *fileInfo) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := idx.UpdateDocument(f.Path, string(f.Content), f.LastModified, matcher); err != nil {
				log.Printf("Failed to index file %s: %v", f.Path, err)
				failed.Store(f.Path, err)
			}
		}(file)
	}
	wg.Wait()

	count := 0
	failed.Range(func(_, _ any) bool { count++; return true })
	if count > 0 {
		return fmt.Errorf("encountered %d errors while indexing workspace", count)
	}
	return nil
}

// Close releases the underlying store.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func extractTargets(path, text string, matcher *tags.Matcher) []string {
	baseDir := filepath.Dir(tags.Normalize(path))

	seen := make(map[string]struct{})
	var targets []string
	for _, occ := range matcher.Match(text) {
		target := tags.ResolvePath(baseDir, occ.Parts)
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		targets = append(targets, target)
	}
	return targets
}
