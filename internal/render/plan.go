// Package render turns matched occurrences into the per-document set of
// visual instructions the host applies: highlight ranges, inline substitution
// text, hover payloads and expand flags. It never touches the document text.
package render

import (
	"strings"

	"tagpeek/internal/config"
	"tagpeek/internal/state"
	"tagpeek/internal/tags"
)

// Source is the content lookup the planner draws from.
type Source interface {
	Exists(path string) bool
	Read(path string, maxBytes int) string
}

// Item is the render instruction for one occurrence.
type Item struct {
	Start    int
	End      int
	Inner    string
	Target   string
	Exists   bool
	Expanded bool

	// HideTag marks the original marker text for visual hiding (inline
	// style only).
	HideTag bool
	// Inline is the single-line substitution shown after the marker, empty
	// when inline rendering is off or nothing resolved.
	Inline string
	// Hover is the hover payload, empty when hover is off.
	Hover string
}

// Plan is the complete set of render instructions for one document at one
// pass. Targets lists every resolved target the pass saw, including missing
// ones excluded from Items, so watch interest covers paths that may appear
// later.
type Plan struct {
	Document string
	Items    []Item
	Targets  []string
}

// MissingPlaceholder is shown in place of content whose target does not
// exist (when missing occurrences are rendered at all).
const MissingPlaceholder = "(missing)"

// BuildPlan scans text and produces the render plan for one document.
// Failures are isolated per occurrence; a bad target never aborts the rest
// of the pass.
func BuildPlan(docID, baseDir, text string, matcher *tags.Matcher, src Source, tracker *state.Tracker, cfg config.Config) Plan {
	plan := Plan{Document: docID}

	for _, occ := range matcher.Match(text) {
		target := tags.ResolvePath(baseDir, occ.Parts)
		exists := src.Exists(target)

		plan.Targets = append(plan.Targets, target)
		if !exists && cfg.OnlyHighlightExistingPaths {
			continue
		}

		item := Item{
			Start:    occ.Start,
			End:      occ.End,
			Inner:    occ.Inner,
			Target:   target,
			Exists:   exists,
			Expanded: tracker.IsExpanded(state.Key{Document: docID, Start: occ.Start}),
		}

		content := ""
		if exists {
			content = src.Read(target, cfg.MaxBytes)
		}

		if cfg.ShowInline {
			item.HideTag = true
			if exists {
				item.Inline = Flatten(content, cfg.NewlineJoiner)
			} else {
				item.Inline = MissingPlaceholder
			}
		}

		if cfg.ShowHover {
			if exists {
				item.Hover = fencePlainText(content)
			} else {
				item.Hover = "not found: " + target
			}
		}

		plan.Items = append(plan.Items, item)
	}

	return plan
}

// ItemAt returns the plan item covering the given byte offset.
func (p Plan) ItemAt(offset int) (Item, bool) {
	for _, item := range p.Items {
		if offset >= item.Start && offset < item.End {
			return item, true
		}
	}
	return Item{}, false
}

// Flatten joins multi-line content into a single line using the configured
// joiner token.
func Flatten(content, joiner string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimRight(content, "\n")
	return strings.Join(strings.Split(content, "\n"), joiner)
}

func fencePlainText(content string) string {
	return "```text\n" + content + "\n```"
}
