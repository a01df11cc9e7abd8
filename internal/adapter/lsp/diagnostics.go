package lsp

import (
	"context"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/bkyoung/review-lsp/internal/domain"
)

const diagnosticSource = "review"

// BuildDiagnostics resolves every conversation anchored in the given
// document and renders the threads as diagnostics. A starter belongs to the
// document when the URI contains the comment's repository-relative path;
// URIs carry the absolute path, so a suffix match is what the platform data
// allows.
func (b *Backend) BuildDiagnostics(ctx context.Context, conversation *domain.Conversation, uri, text string) []protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityInformation
	source := diagnosticSource

	diagnostics := make([]protocol.Diagnostic, 0)
	for _, starter := range conversation.Starters() {
		if starter.Path == "" || !strings.Contains(uri, starter.Path) {
			continue
		}

		lineRange := b.resolve.Resolve(ctx, starter, text)

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(lineRange.Beg), Character: 0},
				End:   protocol.Position{Line: protocol.UInteger(lineRange.End), Character: 0},
			},
			Severity: &severity,
			Source:   &source,
			Message:  conversation.Thread(starter.ID),
		})
	}
	return diagnostics
}
