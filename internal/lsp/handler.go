package lsp

import (
	"log"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"tagpeek/internal/docs"
	"tagpeek/internal/tags"
)

func (ls *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	ls.setContext(context)

	root := ""
	if params.RootURI != nil {
		root = uriToPath(string(*params.RootURI))
	} else if params.RootPath != nil {
		root = *params.RootPath
	}
	ls.mu.Lock()
	ls.root = root
	matcher := ls.matcher
	ls.mu.Unlock()

	// Populate the workspace tag index in the background; the live engine
	// does not depend on it.
	if root != "" {
		go func() {
			if err := ls.tagIndex.BuildWorkspace(root, matcher); err != nil {
				log.Printf("workspace index build: %v", err)
			}
		}()
	}

	capabilities := ls.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{cmdPeek, cmdPreview, cmdVisiblePreviews, cmdBacklinks},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (ls *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	ls.setContext(context)
	log.Println("Server initialized")
	if ls.currentMatcherUsedFallback() {
		ls.notifyPatternFallback(context)
	}
	return nil
}

func (ls *Server) shutdown(context *glsp.Context) error {
	log.Println("Server shutting down")
	protocol.SetTraceValue(protocol.TraceValueOff)

	ls.coordinator.Close()
	ls.documents.CloseAll()
	if err := ls.resolver.Close(); err != nil {
		log.Printf("failed to close content resolver: %v", err)
	}
	if err := ls.tagIndex.Close(); err != nil {
		log.Printf("failed to close tag index: %v", err)
	}
	return nil
}

func (ls *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	log.Printf("Trace set to: %s", params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	ls.setContext(context)

	uri := string(params.TextDocument.URI)
	if _, err := ls.documents.Open(uri, params.TextDocument.Text); err != nil {
		return err
	}

	ls.coordinator.ScheduleNow(uri)
	return nil
}

func (ls *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	ls.setContext(context)

	uri := string(params.TextDocument.URI)
	doc, ok := ls.documents.Get(uri)
	if !ok {
		return nil
	}

	var changes []docs.Change
	for _, change := range params.ContentChanges {
		switch contentChange := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, docs.Change{NewText: contentChange.Text})
		case protocol.TextDocumentContentChangeEvent:
			c := docs.Change{NewText: contentChange.Text}
			if contentChange.Range != nil {
				c.Range = &docs.Range{
					Start: docs.Position{
						Line:      contentChange.Range.Start.Line,
						Character: contentChange.Range.Start.Character,
					},
					End: docs.Position{
						Line:      contentChange.Range.End.Line,
						Character: contentChange.Range.End.Character,
					},
				}
			}
			changes = append(changes, c)
		}
	}
	doc.ApplyChanges(changes)

	ls.coordinator.Schedule(uri)
	return nil
}

func (ls *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	ls.setContext(context)

	uri := string(params.TextDocument.URI)
	doc, ok := ls.documents.Get(uri)
	if !ok {
		return nil
	}

	matcher, _ := ls.snapshot()
	path := uriToPath(uri)
	if err := ls.tagIndex.UpdateDocument(path, doc.Content(), time.Now().Unix(), matcher); err != nil {
		log.Printf("failed to update tag index for %s: %v", path, err)
	}
	return nil
}

func (ls *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	ls.setContext(context)

	uri := string(params.TextDocument.URI)
	ls.coordinator.Forget(uri)
	ls.releaseWatches(uri)
	if err := ls.documents.Close(uri); err != nil {
		return err
	}

	// Clear any published decorations for the closed document.
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	uri := string(params.TextDocument.URI)
	doc, ok := ls.documents.Get(uri)
	if !ok {
		return nil, nil
	}

	ls.planMu.Lock()
	plan, ok := ls.plans[uri]
	ls.planMu.Unlock()
	if !ok {
		return nil, nil
	}

	offset := doc.OffsetForPosition(docs.Position{
		Line:      params.Position.Line,
		Character: params.Position.Character,
	})
	item, ok := plan.ItemAt(offset)
	if !ok || item.Hover == "" {
		return nil, nil
	}

	itemRange := rangeForSpan(doc, item.Start, item.End)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: item.Hover,
		},
		Range: &itemRange,
	}, nil
}

func (ls *Server) textDocumentDocumentLink(
	context *glsp.Context,
	params *protocol.DocumentLinkParams,
) ([]protocol.DocumentLink, error) {
	uri := string(params.TextDocument.URI)
	doc, ok := ls.documents.Get(uri)
	if !ok {
		return nil, nil
	}

	ls.planMu.Lock()
	plan := ls.plans[uri]
	ls.planMu.Unlock()

	var links []protocol.DocumentLink
	for _, item := range plan.Items {
		if !item.Exists {
			continue
		}
		target := protocol.DocumentUri(pathToURI(item.Target))
		tooltip := "Peek " + item.Inner
		links = append(links, protocol.DocumentLink{
			Range:   rangeForSpan(doc, item.Start, item.End),
			Target:  &target,
			Tooltip: &tooltip,
			Data: map[string]any{
				"uri":    uri,
				"start":  item.Start,
				"end":    item.End,
				"target": item.Target,
			},
		})
	}
	return links, nil
}

func (ls *Server) workspaceDidChangeConfiguration(
	context *glsp.Context,
	params *protocol.DidChangeConfigurationParams,
) error {
	ls.setContext(context)

	settings := settingsMap(params.Settings)
	if settings == nil {
		return nil
	}

	ls.mu.Lock()
	ls.cfg.Merge(settings)
	cfg := ls.cfg
	ls.matcher = tags.NewMatcher(cfg.Pattern, cfg.PathSeparator)
	fallback := ls.matcher.UsedFallback()
	ls.mu.Unlock()

	if fallback {
		ls.notifyPatternFallback(context)
	}

	// Derived content depends on maxBytes/joiner, so start from a cold
	// cache; decoration styles are recreated client-side from the new
	// colors on the next publish.
	ls.resolver.InvalidateAll()
	ls.coordinator.SetDebounce(time.Duration(cfg.DebounceMs) * time.Millisecond)
	ls.scheduleAllOpen()
	return nil
}

func (ls *Server) currentMatcherUsedFallback() bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.matcher.UsedFallback()
}

func (ls *Server) notifyPatternFallback(context *glsp.Context) {
	context.Notify("window/showMessage", protocol.ShowMessageParams{
		Type:    protocol.MessageTypeWarning,
		Message: "tagpeek: configured pattern does not compile, using built-in default",
	})
}
