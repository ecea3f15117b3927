package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"tagpeek/internal/render"
)

// Diagnostic sources act as the two decoration channels: the base tag
// highlight and the expanded-range highlight.
const (
	sourceHighlight = "tagpeek"
	sourceExpanded  = "tagpeek.expanded"
)

// publishPlan maps a render plan onto publishDiagnostics. The host styles
// the two sources independently; the message carries the inline substitution
// text when inline rendering is on.
func (ls *Server) publishPlan(uri string, plan render.Plan) {
	context := ls.currentContext()
	if context == nil {
		return
	}

	doc, ok := ls.documents.Get(uri)
	if !ok {
		return
	}

	diagnostics := []protocol.Diagnostic{}
	for _, item := range plan.Items {
		itemRange := rangeForSpan(doc, item.Start, item.End)

		severity := protocol.DiagnosticSeverityInformation
		message := item.Target
		if !item.Exists {
			severity = protocol.DiagnosticSeverityHint
			message = render.MissingPlaceholder
		} else if item.Inline != "" {
			message = item.Inline
		}

		source := sourceHighlight
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    itemRange,
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})

		if item.Expanded {
			expandedSeverity := protocol.DiagnosticSeverityHint
			expandedSource := sourceExpanded
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    itemRange,
				Severity: &expandedSeverity,
				Source:   &expandedSource,
				Message:  "expanded",
			})
		}
	}

	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: diagnostics,
	})
}
