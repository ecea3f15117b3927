package tags_test

import (
	"path/filepath"
	"testing"

	"tagpeek/internal/tags"
)

func TestResolvePath(t *testing.T) {
	base := filepath.FromSlash("/home/user/notes")

	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{
			name:  "folder and file",
			parts: []string{"shared", "header.txt"},
			want:  filepath.FromSlash("/home/user/notes/shared/header.txt"),
		},
		{
			name:  "single part",
			parts: []string{"readme.md"},
			want:  filepath.FromSlash("/home/user/notes/readme.md"),
		},
		{
			name:  "dotdot collapses",
			parts: []string{"..", "other.txt"},
			want:  filepath.FromSlash("/home/user/other.txt"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tags.ResolvePath(base, tt.parts)
			if got != tt.want {
				t.Errorf("ResolvePath() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Superficially different separator spellings of the same target must
// collapse to one cache/watch key.
func TestResolvePathSpellings(t *testing.T) {
	base := filepath.FromSlash("/base")

	a := tags.ResolvePath(base, tags.SplitParts("a/b:c", ":"))
	b := tags.ResolvePath(base, tags.SplitParts("a:b:c", ":"))
	if a != b {
		t.Errorf("expected %q and %q to resolve identically", a, b)
	}

	twice := tags.ResolvePath(base, tags.SplitParts("a:b:c", ":"))
	if twice != b {
		t.Errorf("resolution is not idempotent: %q vs %q", twice, b)
	}
}

func TestNormalize(t *testing.T) {
	in := filepath.FromSlash("/x/y/../z/./f.txt")
	want := filepath.FromSlash("/x/z/f.txt")
	if got := tags.Normalize(in); got != want {
		t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
	}
}
