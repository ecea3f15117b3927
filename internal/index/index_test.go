package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"tagpeek/internal/config"
	"tagpeek/internal/index"
	"tagpeek/internal/index/database"
	"tagpeek/internal/tags"
)

func setupIndex(t *testing.T) *index.Index {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	idx := index.New(db)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func defaultMatcher() *tags.Matcher {
	cfg := config.Default()
	return tags.NewMatcher(cfg.Pattern, cfg.PathSeparator)
}

func TestUpdateDocumentAndBacklinks(t *testing.T) {
	idx := setupIndex(t)
	matcher := defaultMatcher()

	docPath := filepath.FromSlash("/ws/main.txt")
	target := filepath.FromSlash("/ws/shared/header.txt")

	err := idx.UpdateDocument(docPath, "Intro <<shared:header.txt>> body", 1, matcher)
	if err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}

	sources, err := idx.Backlinks(target)
	if err != nil {
		t.Fatalf("Backlinks() error = %v", err)
	}
	if len(sources) != 1 || sources[0] != docPath {
		t.Errorf("Backlinks() = %v, want [%s]", sources, docPath)
	}

	// Re-extracting after an edit replaces the link set.
	if err := idx.UpdateDocument(docPath, "no tags anymore", 2, matcher); err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}
	sources, err = idx.Backlinks(target)
	if err != nil {
		t.Fatalf("Backlinks() error = %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("expected no backlinks after edit, got %v", sources)
	}
}

func TestRemoveDocument(t *testing.T) {
	idx := setupIndex(t)
	matcher := defaultMatcher()

	docPath := filepath.FromSlash("/ws/a.txt")
	if err := idx.UpdateDocument(docPath, "<<b.txt>>", 1, matcher); err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}
	if err := idx.RemoveDocument(docPath); err != nil {
		t.Fatalf("RemoveDocument() error = %v", err)
	}

	sources, err := idx.Backlinks(filepath.FromSlash("/ws/b.txt"))
	if err != nil {
		t.Fatalf("Backlinks() error = %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("expected no backlinks after removal, got %v", sources)
	}

	// Removing twice is fine.
	if err := idx.RemoveDocument(docPath); err != nil {
		t.Errorf("RemoveDocument() second call error = %v", err)
	}
}

func TestBuildWorkspace(t *testing.T) {
	idx := setupIndex(t)
	root := t.TempDir()

	mustWrite := func(rel, content string) string {
		t.Helper()
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		return path
	}

	mainPath := mustWrite("main.txt", "Intro <<shared:header.txt>>")
	headerPath := mustWrite("shared/header.txt", "Hello")
	mustWrite("other.txt", "plain text")
	mustWrite(".hidden/skipped.txt", "<<shared:header.txt>>")

	if err := idx.BuildWorkspace(root, defaultMatcher()); err != nil {
		t.Fatalf("BuildWorkspace() error = %v", err)
	}

	sources, err := idx.Backlinks(headerPath)
	if err != nil {
		t.Fatalf("Backlinks() error = %v", err)
	}
	if len(sources) != 1 || sources[0] != mainPath {
		t.Errorf("Backlinks() = %v, want [%s]", sources, mainPath)
	}
}

func TestBuildWorkspaceDotNamedRoot(t *testing.T) {
	idx := setupIndex(t)

	// The hidden-directory skip must not apply to the root itself.
	root := filepath.Join(t.TempDir(), ".notes")
	if err := os.MkdirAll(filepath.Join(root, "shared"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	mainPath := filepath.Join(root, "main.txt")
	headerPath := filepath.Join(root, "shared", "header.txt")
	if err := os.WriteFile(mainPath, []byte("Intro <<shared:header.txt>>"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.WriteFile(headerPath, []byte("Hello"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := idx.BuildWorkspace(root, defaultMatcher()); err != nil {
		t.Fatalf("BuildWorkspace() error = %v", err)
	}

	sources, err := idx.Backlinks(headerPath)
	if err != nil {
		t.Fatalf("Backlinks() error = %v", err)
	}
	if len(sources) != 1 || sources[0] != mainPath {
		t.Errorf("Backlinks() = %v, want [%s]", sources, mainPath)
	}
}
