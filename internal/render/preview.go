package render

import (
	"strings"

	"tagpeek/internal/tags"
)

// BuildPreview produces the fully substituted copy of a document: every
// resolved marker is replaced by its target's content, every missing one by
// an explicit marker. Substituted content is not re-scanned, so markers
// inside a target file come through literally.
func BuildPreview(baseDir, text string, matcher *tags.Matcher, src Source, maxBytes int) string {
	occs := matcher.Match(text)
	if len(occs) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	pos := 0
	for _, occ := range occs {
		b.WriteString(text[pos:occ.Start])

		target := tags.ResolvePath(baseDir, occ.Parts)
		if src.Exists(target) {
			b.WriteString(src.Read(target, maxBytes))
		} else {
			b.WriteString("<<missing:" + occ.Inner + ">>")
		}
		pos = occ.End
	}
	b.WriteString(text[pos:])

	return b.String()
}
