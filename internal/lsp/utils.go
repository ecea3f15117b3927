package lsp

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"tagpeek/internal/docs"
)

// setContext remembers the connection context so watch-triggered passes can
// notify the client outside a request handler.
func (ls *Server) setContext(context *glsp.Context) {
	ls.mu.Lock()
	ls.glspCtx = context
	ls.mu.Unlock()
}

func (ls *Server) currentContext() *glsp.Context {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.glspCtx
}

// uriToPath converts a file:// URI to a filesystem path. Non-file URIs come
// back unchanged.
func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	// url.Parse already percent-decodes the path component.
	return parsed.Path
}

func pathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// baseDirForURI is the directory markers in the document resolve against.
func baseDirForURI(uri string) string {
	return filepath.Dir(uriToPath(uri))
}

func rangeForSpan(doc *docs.Document, start, end int) protocol.Range {
	startPos := doc.PositionForOffset(start)
	endPos := doc.PositionForOffset(end)
	return protocol.Range{
		Start: protocol.Position{Line: startPos.Line, Character: startPos.Character},
		End:   protocol.Position{Line: endPos.Line, Character: endPos.Character},
	}
}

// settingsMap digs the tagpeek section out of a didChangeConfiguration
// payload, accepting both a flat map and one nested under "tagpeek".
func settingsMap(settings any) map[string]any {
	m, ok := settings.(map[string]any)
	if !ok {
		return nil
	}
	if nested, ok := m["tagpeek"].(map[string]any); ok {
		return nested
	}
	return m
}
