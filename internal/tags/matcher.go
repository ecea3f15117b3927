package tags

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPattern matches <<folder:file>> style markers. It is the fallback
// whenever the configured pattern fails to compile.
const DefaultPattern = `<<([^<>\n]+)>>`

var defaultRegexp = regexp.MustCompile(DefaultPattern)

// Occurrence is one matched marker in one document snapshot. Offsets are byte
// offsets into the scanned text. Occurrences are rebuilt on every pass and
// never mutated; identity across passes is derived from (document, Start).
type Occurrence struct {
	Start int
	End   int
	Inner string
	Parts []string
}

// Compile validates a user-supplied pattern string. The pattern must contain
// at least one capture group for the inner text between the delimiters.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid tag pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("tag pattern %q has no capture group for the inner text", pattern)
	}
	return re, nil
}

// Matcher scans document text for tag occurrences.
type Matcher struct {
	re        *regexp.Regexp
	separator string
	fallback  bool
}

// NewMatcher compiles the given pattern, falling back to DefaultPattern when
// it does not compile. UsedFallback reports which one is active so the caller
// can surface a non-fatal notice.
func NewMatcher(pattern, separator string) *Matcher {
	re, err := Compile(pattern)
	fallback := false
	if err != nil {
		re = defaultRegexp
		fallback = true
	}
	if separator == "" {
		separator = ":"
	}
	return &Matcher{re: re, separator: separator, fallback: fallback}
}

// UsedFallback reports whether the configured pattern failed to compile and
// the built-in default is in effect.
func (m *Matcher) UsedFallback() bool {
	return m.fallback
}

// Match scans text left to right and returns all occurrences in document
// order. Occurrences are strictly ordered and non-overlapping. Matches with
// an empty inner string or no usable path parts yield no occurrence.
func (m *Matcher) Match(text string) []Occurrence {
	var occs []Occurrence

	pos := 0
	for pos < len(text) {
		loc := m.re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}

		start, end := pos+loc[0], pos+loc[1]
		inner := ""
		if loc[2] >= 0 && loc[3] >= 0 {
			inner = text[pos+loc[2] : pos+loc[3]]
		}

		// A zero-length match must still advance the scan.
		if end == start {
			pos = start + 1
			continue
		}
		pos = end

		inner = strings.TrimSpace(inner)
		if inner == "" {
			continue
		}

		parts := SplitParts(inner, m.separator)
		if len(parts) == 0 {
			continue
		}

		occs = append(occs, Occurrence{
			Start: start,
			End:   end,
			Inner: inner,
			Parts: parts,
		})
	}

	return occs
}

// SplitParts decomposes the inner text of a marker into logical path
// segments. Parts are split on the configured separator; slash characters
// inside a part are tolerated and split off as additional segments, so
// "a/b:c" and "a:b:c" produce the same parts.
func SplitParts(inner, separator string) []string {
	var parts []string
	for _, part := range strings.Split(inner, separator) {
		for _, seg := range strings.FieldsFunc(part, func(r rune) bool {
			return r == '/' || r == '\\'
		}) {
			seg = strings.TrimSpace(seg)
			if seg != "" {
				parts = append(parts, seg)
			}
		}
	}
	return parts
}
