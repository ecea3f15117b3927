package lsp

import (
	"fmt"
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"tagpeek/internal/render"
	"tagpeek/internal/state"
	"tagpeek/internal/tags"
)

func (ls *Server) executeCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	ls.setContext(context)

	switch params.Command {
	case cmdPeek:
		return ls.commandPeek(params.Arguments)
	case cmdPreview:
		return ls.commandPreview(params.Arguments)
	case cmdVisiblePreviews:
		return ls.commandVisiblePreviews(params.Arguments)
	case cmdBacklinks:
		return ls.commandBacklinks(params.Arguments)
	default:
		return nil, fmt.Errorf("unknown command: %s", params.Command)
	}
}

// commandPeek marks an occurrence expanded and returns the target content
// for the peek surface. Malformed arguments abort before any state changes.
func (ls *Server) commandPeek(args []any) (any, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("%s: expected [uri, start, end, target], got %d arguments", cmdPeek, len(args))
	}
	uri, ok := args[0].(string)
	if !ok || uri == "" {
		return nil, fmt.Errorf("%s: first argument must be a document uri", cmdPeek)
	}
	start, ok := asInt(args[1])
	if !ok || start < 0 {
		return nil, fmt.Errorf("%s: second argument must be a non-negative start offset", cmdPeek)
	}
	end, ok := asInt(args[2])
	if !ok || end <= start {
		return nil, fmt.Errorf("%s: third argument must be an end offset past the start", cmdPeek)
	}
	target, ok := args[3].(string)
	if !ok || target == "" {
		return nil, fmt.Errorf("%s: fourth argument must be a target path", cmdPeek)
	}

	ls.tracker.MarkExpanded(state.Key{Document: uri, Start: start})
	ls.coordinator.ScheduleNow(uri)

	_, cfg := ls.snapshot()
	return ls.resolver.Read(tags.Normalize(target), cfg.MaxBytes), nil
}

// commandPreview returns the fully substituted copy of the document for a
// read-only side-by-side view. No recursion into substituted content.
func (ls *Server) commandPreview(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: expected [uri], got %d arguments", cmdPreview, len(args))
	}
	uri, ok := args[0].(string)
	if !ok || uri == "" {
		return nil, fmt.Errorf("%s: argument must be a document uri", cmdPreview)
	}

	doc, ok := ls.documents.Get(uri)
	if !ok {
		return nil, fmt.Errorf("%s: document not open: %s", cmdPreview, uri)
	}

	matcher, cfg := ls.snapshot()
	return render.BuildPreview(baseDirForURI(uri), doc.Content(), matcher, ls.resolver, cfg.MaxBytes), nil
}

// commandVisiblePreviews is the host's report of which preview targets are
// currently visible. The expanded set is rebuilt from scratch against it:
// any occurrence in any open document whose resolved target is among the
// visible previews counts as expanded.
func (ls *Server) commandVisiblePreviews(args []any) (any, error) {
	visible := make(map[string]bool, len(args))
	for i, arg := range args {
		target, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d must be a target path", cmdVisiblePreviews, i)
		}
		visible[tags.Normalize(target)] = true
	}

	matcher, _ := ls.snapshot()

	var present []state.Key
	for _, doc := range ls.documents.All() {
		baseDir := baseDirForURI(doc.URI())
		for _, occ := range matcher.Match(doc.Content()) {
			if visible[tags.ResolvePath(baseDir, occ.Parts)] {
				present = append(present, state.Key{Document: doc.URI(), Start: occ.Start})
			}
		}
	}
	ls.tracker.Reconcile(present)

	ls.scheduleAllOpen()
	return nil, nil
}

func (ls *Server) commandBacklinks(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: expected [path], got %d arguments", cmdBacklinks, len(args))
	}
	path, ok := args[0].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("%s: argument must be a file path", cmdBacklinks)
	}
	if !filepath.IsAbs(path) {
		ls.mu.Lock()
		path = filepath.Join(ls.root, path)
		ls.mu.Unlock()
	}

	sources, err := ls.tagIndex.Backlinks(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmdBacklinks, err)
	}
	return sources, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}
