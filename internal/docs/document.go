// Package docs keeps the text of every open document in memory and converts
// between line/character positions and byte offsets. It is the engine's view
// of the host editor's document access surface.
package docs

import (
	"sync"
	"unicode/utf16"
	"unicode/utf8"
)

// Position is a zero-based line/character location in a document. Character
// counts UTF-16 code units within the line, the convention the host editor
// uses on the wire.
type Position struct {
	Line      uint32
	Character uint32
}

// Change is one edit to apply to a document. A nil Range replaces the whole
// content.
type Change struct {
	Range   *Range
	NewText string
}

// Range is a half-open [Start, End) span in a document.
type Range struct {
	Start Position
	End   Position
}

// Document is one open document. Content is replaced, never patched in
// place; readers always see a consistent snapshot.
type Document struct {
	uri     string
	content string
	mu      sync.RWMutex
}

func NewDocument(uri, content string) *Document {
	return &Document{uri: uri, content: content}
}

// URI returns the document's identity. Stable across edits, not across
// close/reopen.
func (d *Document) URI() string {
	return d.uri
}

// Content returns the current full text.
func (d *Document) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// ApplyChanges applies the edits in order. Range-based edits are resolved
// against the content as it stands when each edit is applied.
func (d *Document) ApplyChanges(changes []Change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, change := range changes {
		if change.Range == nil {
			d.content = change.NewText
			continue
		}

		start := offsetForPosition(d.content, change.Range.Start)
		end := offsetForPosition(d.content, change.Range.End)
		if end < start {
			start, end = end, start
		}

		next := make([]byte, 0, len(d.content)-(end-start)+len(change.NewText))
		next = append(next, d.content[:start]...)
		next = append(next, change.NewText...)
		next = append(next, d.content[end:]...)
		d.content = string(next)
	}
}

// OffsetForPosition converts a line/character position to a byte offset into
// the current content, clamped to the content length.
func (d *Document) OffsetForPosition(pos Position) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return offsetForPosition(d.content, pos)
}

// PositionForOffset converts a byte offset to a line/character position,
// clamping out-of-range offsets to the end of the content.
func (d *Document) PositionForOffset(offset int) Position {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if offset > len(d.content) {
		offset = len(d.content)
	}

	var line, character uint32
	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(d.content[i:])
		if r == '\n' {
			line++
			character = 0
		} else {
			character += uint32(utf16.RuneLen(r))
		}
		i += size
	}
	return Position{Line: line, Character: character}
}

func offsetForPosition(content string, pos Position) int {
	offset := 0
	var line uint32

	for offset < len(content) && line < pos.Line {
		if content[offset] == '\n' {
			line++
		}
		offset++
	}

	// Walk the line rune by rune, counting UTF-16 code units. The character
	// component clamps at the end of its line and never bleeds into the next.
	var units uint32
	for offset < len(content) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(content[offset:])
		if r == '\n' {
			break
		}
		units += uint32(utf16.RuneLen(r))
		offset += size
	}
	return offset
}
