// Package lsp exposes the tag engine to the host editor over the language
// server protocol: document sync drives recomputation, render plans are
// published as diagnostics, hover and document links are answered from the
// most recently applied plan, and the peek/preview interactions arrive as
// workspace commands.
package lsp

import (
	"fmt"
	"sync"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"tagpeek/internal/config"
	"tagpeek/internal/content"
	"tagpeek/internal/docs"
	"tagpeek/internal/engine"
	"tagpeek/internal/index"
	"tagpeek/internal/index/database"
	"tagpeek/internal/render"
	"tagpeek/internal/state"
	"tagpeek/internal/tags"
)

const lsName = "tagpeek"

var version = "0.1.0"

// Commands recognized by workspace/executeCommand.
const (
	cmdPeek            = "tagpeek.peek"
	cmdPreview         = "tagpeek.preview"
	cmdVisiblePreviews = "tagpeek.visiblePreviews"
	cmdBacklinks       = "tagpeek.backlinks"
)

type Server struct {
	handler *protocol.Handler

	mu      sync.Mutex
	cfg     config.Config
	matcher *tags.Matcher
	root    string
	glspCtx *glsp.Context

	documents   *docs.Manager
	resolver    *content.Resolver
	tracker     *state.Tracker
	coordinator *engine.Coordinator
	tagIndex    *index.Index

	planMu sync.Mutex
	plans  map[string]render.Plan
	subs   map[string]map[string]*content.Subscription
}

// NewServer wires the engine and returns the stdio-ready glsp server.
func NewServer(cfg config.Config, indexPath string) (*server.Server, error) {
	resolver, err := content.NewResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to create content resolver: %w", err)
	}

	db, err := database.NewSQLiteDB(indexPath)
	if err != nil {
		resolver.Close()
		return nil, fmt.Errorf("failed to open tag index: %w", err)
	}

	ls := &Server{
		cfg:       cfg,
		matcher:   tags.NewMatcher(cfg.Pattern, cfg.PathSeparator),
		documents: docs.NewManager(),
		resolver:  resolver,
		tracker:   state.NewTracker(),
		tagIndex:  index.New(db),
		plans:     make(map[string]render.Plan),
		subs:      make(map[string]map[string]*content.Subscription),
	}
	ls.coordinator = engine.NewCoordinator(
		time.Duration(cfg.DebounceMs)*time.Millisecond,
		ls.compute,
		ls.apply,
	)

	ls.handler = &protocol.Handler{
		Initialize:                      ls.initialize,
		Initialized:                     ls.initialized,
		Shutdown:                        ls.shutdown,
		SetTrace:                        ls.setTrace,
		TextDocumentDidOpen:             ls.textDocumentDidOpen,
		TextDocumentDidChange:           ls.textDocumentDidChange,
		TextDocumentDidSave:             ls.textDocumentDidSave,
		TextDocumentDidClose:            ls.textDocumentDidClose,
		TextDocumentHover:               ls.textDocumentHover,
		TextDocumentDocumentLink:        ls.textDocumentDocumentLink,
		WorkspaceExecuteCommand:         ls.executeCommand,
		WorkspaceDidChangeConfiguration: ls.workspaceDidChangeConfiguration,
	}

	return server.NewServer(ls.handler, lsName, false), nil
}

// snapshot returns the current matcher and config as one consistent pair.
func (ls *Server) snapshot() (*tags.Matcher, config.Config) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.matcher, ls.cfg
}

// compute runs one recomputation pass for a document.
func (ls *Server) compute(uri string) (render.Plan, error) {
	doc, ok := ls.documents.Get(uri)
	if !ok {
		return render.Plan{}, fmt.Errorf("document not open: %s", uri)
	}

	matcher, cfg := ls.snapshot()
	baseDir := baseDirForURI(uri)

	return render.BuildPlan(uri, baseDir, doc.Content(), matcher, ls.resolver, ls.tracker, cfg), nil
}

// apply delivers a completed, non-stale plan: remember it for hover and
// link pulls, reconcile the watch interest set, publish diagnostics.
func (ls *Server) apply(uri string, plan render.Plan) {
	ls.planMu.Lock()
	ls.plans[uri] = plan
	ls.planMu.Unlock()

	ls.syncWatches(uri, plan)
	ls.publishPlan(uri, plan)
}

// syncWatches reconciles a document's watch subscriptions with every target
// the pass resolved. Missing targets are watched too, so an occurrence whose
// file appears later re-renders without waiting for an edit. Subscriptions
// are shared per path by the resolver, so a target still referenced by
// another document keeps its watch alive.
func (ls *Server) syncWatches(uri string, plan render.Plan) {
	needed := make(map[string]bool, len(plan.Targets))
	for _, target := range plan.Targets {
		needed[target] = true
	}

	ls.planMu.Lock()
	current := ls.subs[uri]
	if current == nil {
		current = make(map[string]*content.Subscription)
		ls.subs[uri] = current
	}

	var stale []*content.Subscription
	for target, sub := range current {
		if !needed[target] {
			stale = append(stale, sub)
			delete(current, target)
		}
	}

	var missing []string
	for target := range needed {
		if _, ok := current[target]; !ok {
			missing = append(missing, target)
		}
	}
	ls.planMu.Unlock()

	for _, sub := range stale {
		sub.Release()
	}
	for _, target := range missing {
		docURI := uri
		sub, err := ls.resolver.Subscribe(target, func() {
			ls.coordinator.ScheduleNow(docURI)
		})
		if err != nil {
			continue
		}
		ls.planMu.Lock()
		if m := ls.subs[uri]; m != nil {
			m[target] = sub
		} else {
			// Document closed while subscribing.
			ls.planMu.Unlock()
			sub.Release()
			continue
		}
		ls.planMu.Unlock()
	}
}

// releaseWatches drops every subscription held for a document.
func (ls *Server) releaseWatches(uri string) {
	ls.planMu.Lock()
	current := ls.subs[uri]
	delete(ls.subs, uri)
	delete(ls.plans, uri)
	ls.planMu.Unlock()

	for _, sub := range current {
		sub.Release()
	}
}

// scheduleAllOpen triggers an immediate pass for every open document.
func (ls *Server) scheduleAllOpen() {
	for _, doc := range ls.documents.All() {
		ls.coordinator.ScheduleNow(doc.URI())
	}
}
