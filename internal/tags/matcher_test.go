package tags_test

import (
	"reflect"
	"testing"

	"tagpeek/internal/tags"
)

func TestMatch(t *testing.T) {
	matcher := tags.NewMatcher(tags.DefaultPattern, ":")

	tests := []struct {
		name string
		text string
		want []tags.Occurrence
	}{
		{
			name: "single tag",
			text: "Intro <<shared:header.txt>> body",
			want: []tags.Occurrence{
				{Start: 6, End: 27, Inner: "shared:header.txt", Parts: []string{"shared", "header.txt"}},
			},
		},
		{
			name: "two tags in order",
			text: "<<a:b>> and <<c:d>>",
			want: []tags.Occurrence{
				{Start: 0, End: 7, Inner: "a:b", Parts: []string{"a", "b"}},
				{Start: 12, End: 19, Inner: "c:d", Parts: []string{"c", "d"}},
			},
		},
		{
			name: "slash inside part",
			text: "<<shared/sub:file.txt>>",
			want: []tags.Occurrence{
				{Start: 0, End: 23, Inner: "shared/sub:file.txt", Parts: []string{"shared", "sub", "file.txt"}},
			},
		},
		{
			name: "no tags",
			text: "plain text without markers",
			want: nil,
		},
		{
			name: "unterminated marker",
			text: "broken <<shared:header.txt",
			want: nil,
		},
		{
			name: "single part",
			text: "<<notes.txt>>",
			want: []tags.Occurrence{
				{Start: 0, End: 13, Inner: "notes.txt", Parts: []string{"notes.txt"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Match(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMatchWhitespaceInner(t *testing.T) {
	matcher := tags.NewMatcher(`<<([^<>]*)>>`, ":")
	if got := matcher.Match("<<   >> <<>>"); got != nil {
		t.Errorf("expected no occurrences for blank inner text, got %+v", got)
	}
}

func TestNewMatcherFallback(t *testing.T) {
	matcher := tags.NewMatcher(`<<(unclosed`, ":")
	if !matcher.UsedFallback() {
		t.Fatal("expected fallback for invalid pattern")
	}

	got := matcher.Match("x <<a:b>> y")
	if len(got) != 1 || got[0].Inner != "a:b" {
		t.Errorf("fallback matcher should use the default pattern, got %+v", got)
	}
}

func TestCompileRequiresCaptureGroup(t *testing.T) {
	if _, err := tags.Compile(`<<[^<>]+>>`); err == nil {
		t.Error("expected error for pattern without capture group")
	}
	if _, err := tags.Compile(tags.DefaultPattern); err != nil {
		t.Errorf("default pattern should compile, got %v", err)
	}
}

func TestSplitParts(t *testing.T) {
	tests := []struct {
		inner     string
		separator string
		want      []string
	}{
		{"a:b:c", ":", []string{"a", "b", "c"}},
		{"a/b:c", ":", []string{"a", "b", "c"}},
		{"a\\b:c", ":", []string{"a", "b", "c"}},
		{"a..b", ".", []string{"a", "b"}},
		{" a : b ", ":", []string{"a", "b"}},
		{"///", ":", nil},
	}

	for _, tt := range tests {
		t.Run(tt.inner, func(t *testing.T) {
			got := tags.SplitParts(tt.inner, tt.separator)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitParts(%q, %q) = %v, want %v", tt.inner, tt.separator, got, tt.want)
			}
		})
	}
}
