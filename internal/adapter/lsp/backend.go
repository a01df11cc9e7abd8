// Package lsp exposes resolved review conversations to editors as LSP
// diagnostics. The server speaks LSP 3.16 over stdio and recomputes every
// diagnostic from the full document text on each change; nothing is cached
// between edits, so stale anchors cannot survive a keystroke.
package lsp

import (
	"context"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/bkyoung/review-lsp/internal/domain"
)

// ConversationSource supplies the current conversation set. Each document
// change triggers a fresh call; fallback behavior (snapshots) lives behind
// this port.
type ConversationSource interface {
	Conversation(ctx context.Context) (*domain.Conversation, error)
}

// Resolver maps a review comment onto a line range in the live document.
type Resolver interface {
	Resolve(ctx context.Context, comment domain.ReviewComment, text string) domain.LineRange
}

// Backend is the LSP server for review diagnostics.
type Backend struct {
	name    string
	version string
	source  ConversationSource
	resolve Resolver
	handler protocol.Handler
}

// NewBackend wires the conversation source and resolver into an LSP handler.
func NewBackend(name, version string, source ConversationSource, resolve Resolver) *Backend {
	b := &Backend{
		name:    name,
		version: version,
		source:  source,
		resolve: resolve,
	}
	b.handler = protocol.Handler{
		Initialize:            b.initialize,
		Initialized:           b.initialized,
		Shutdown:              b.shutdown,
		SetTrace:              b.setTrace,
		TextDocumentDidOpen:   b.didOpen,
		TextDocumentDidChange: b.didChange,
	}
	return b
}

// RunStdio serves LSP on stdin/stdout until the client disconnects.
func (b *Backend) RunStdio() error {
	// commonlog must be configured before the server logs anything;
	// verbosity 1 keeps startup and errors without per-message noise.
	commonlog.Configure(1, nil)
	srv := server.NewServer(&b.handler, b.name, false)
	return srv.RunStdio()
}

func (b *Backend) initialize(glspCtx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := b.handler.CreateServerCapabilities()
	// Full sync: the resolver needs the whole document, not deltas.
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    b.name,
			Version: &b.version,
		},
	}, nil
}

func (b *Backend) initialized(glspCtx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (b *Backend) shutdown(glspCtx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (b *Backend) setTrace(glspCtx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (b *Backend) didOpen(glspCtx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	b.onChange(glspCtx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (b *Backend) didChange(glspCtx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// Full sync delivers exactly one whole-document event, but the wire
	// format still allows the incremental shape.
	for _, change := range params.ContentChanges {
		switch event := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			b.onChange(glspCtx, params.TextDocument.URI, event.Text)
		case protocol.TextDocumentContentChangeEvent:
			b.onChange(glspCtx, params.TextDocument.URI, event.Text)
		}
	}
	return nil
}

// onChange recomputes and publishes diagnostics for one document. Failures
// are reported to the client log and otherwise swallowed: a broken fetch
// must not take the server down mid-session.
func (b *Backend) onChange(glspCtx *glsp.Context, uri protocol.DocumentUri, text string) {
	ctx := context.Background()

	conversation, err := b.source.Conversation(ctx)
	if err != nil {
		glspCtx.Notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
			Type:    protocol.MessageTypeError,
			Message: "failed to fetch review comments: " + err.Error(),
		})
		return
	}

	diagnostics := b.BuildDiagnostics(ctx, conversation, string(uri), text)

	glspCtx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
