package lsp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/bkyoung/review-lsp/internal/adapter/lsp"
	"github.com/bkyoung/review-lsp/internal/domain"
	"github.com/bkyoung/review-lsp/internal/usecase/resolve"
)

type staticSource struct {
	conversation *domain.Conversation
}

func (s *staticSource) Conversation(context.Context) (*domain.Conversation, error) {
	return s.conversation, nil
}

func newBackend(comments []domain.ReviewComment) (*lsp.Backend, *domain.Conversation) {
	conversation := domain.NewConversation(comments)
	backend := lsp.NewBackend("rvw", "0.1.0", &staticSource{conversation: conversation}, resolve.NewResolver(resolve.Options{}))
	return backend, conversation
}

func TestBuildDiagnostics_AnchorsThread(t *testing.T) {
	backend, conversation := newBackend([]domain.ReviewComment{
		{
			ID:           1,
			Body:         "rename this",
			User:         domain.User{Login: "alice"},
			Path:         "pkg/thing.go",
			DiffHunk:     "@@ -2,2 +2,2 @@\n keep\n-old\n+new\n",
			OriginalLine: 3,
			SubjectType:  domain.SubjectLine,
			CreatedAt:    "2024-03-01T00:00:00Z",
		},
		{
			ID:          2,
			InReplyToID: 1,
			Body:        "done",
			User:        domain.User{Login: "bob"},
			CreatedAt:   "2024-03-02T00:00:00Z",
		},
	})

	// The commented lines moved down two lines since the review.
	text := "header\nanother header\nkeep\nnew\ntrailer\n"

	diagnostics := backend.BuildDiagnostics(context.Background(), conversation, "file:///repo/pkg/thing.go", text)

	// Hunk text now starts on zero-based line 2; the single-line span is kept.
	require.Len(t, diagnostics, 1)
	assert.Equal(t, protocol.UInteger(2), diagnostics[0].Range.Start.Line)
	assert.Equal(t, protocol.UInteger(3), diagnostics[0].Range.End.Line)
	assert.Equal(t, "alice: rename this\nbob: done", diagnostics[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityInformation, *diagnostics[0].Severity)
	assert.Equal(t, "review", *diagnostics[0].Source)
}

func TestBuildDiagnostics_FiltersByPath(t *testing.T) {
	backend, conversation := newBackend([]domain.ReviewComment{
		{ID: 1, Path: "pkg/thing.go", OriginalLine: 1, SubjectType: domain.SubjectLine, CreatedAt: "2024-03-01T00:00:00Z"},
		{ID: 2, Path: "pkg/other.go", OriginalLine: 1, SubjectType: domain.SubjectLine, CreatedAt: "2024-03-01T00:00:01Z"},
	})

	diagnostics := backend.BuildDiagnostics(context.Background(), conversation, "file:///repo/pkg/thing.go", "x\n")

	require.Len(t, diagnostics, 1)
}

func TestBuildDiagnostics_RepliesAreNotSeparateDiagnostics(t *testing.T) {
	backend, conversation := newBackend([]domain.ReviewComment{
		{ID: 1, Path: "a.go", OriginalLine: 1, CreatedAt: "2024-03-01T00:00:00Z"},
		{ID: 2, InReplyToID: 1, Path: "a.go", OriginalLine: 1, CreatedAt: "2024-03-02T00:00:00Z"},
	})

	diagnostics := backend.BuildDiagnostics(context.Background(), conversation, "file:///a.go", "x\n")

	require.Len(t, diagnostics, 1)
}

func TestBuildDiagnostics_NoMatchesYieldsEmptySlice(t *testing.T) {
	backend, conversation := newBackend(nil)

	diagnostics := backend.BuildDiagnostics(context.Background(), conversation, "file:///a.go", "x\n")

	// Empty, not nil: publishing an empty set clears stale diagnostics.
	require.NotNil(t, diagnostics)
	assert.Empty(t, diagnostics)
}
