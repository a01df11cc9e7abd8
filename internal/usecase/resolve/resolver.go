// Package resolve projects a review comment's recorded line span onto the
// current text of the document being edited.
package resolve

import (
	"context"
	"strings"

	"github.com/bkyoung/review-lsp/internal/diff"
	"github.com/bkyoung/review-lsp/internal/domain"
)

// Logger receives optional diagnostic output from the resolver.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Options configures a Resolver. Trace enables per-comment diagnostic
// logging on the single resolution code path; it requires a Logger.
type Options struct {
	Logger Logger
	Trace  bool
}

// Resolver computes document line ranges for review comments. It is
// stateless and safe for concurrent use; each call is independent and
// resolution order is irrelevant.
type Resolver struct {
	logger Logger
	trace  bool
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		logger: opts.Logger,
		trace:  opts.Trace && opts.Logger != nil,
	}
}

// Resolve returns the zero-based half-open line range for the comment in
// the given document text. It never fails: whenever the comment's hunk
// cannot be parsed, reconstructs to nothing, or is not found in the
// document, the comment's literal recorded span is returned and should be
// treated as approximate.
func (r *Resolver) Resolve(ctx context.Context, comment domain.ReviewComment, text string) domain.LineRange {
	end := comment.OriginalLine
	beg := end - 1
	if comment.OriginalStartLine != 0 {
		beg = comment.OriginalStartLine - 1
	}
	if beg < 0 {
		beg = 0
	}

	if comment.SubjectType == domain.SubjectFile {
		return domain.LineRange{Beg: beg, End: end}
	}

	span := end - beg

	d, err := diff.Parse(comment.DiffHunk, comment.Path)
	if err != nil {
		r.traceLog(ctx, "hunk parse failed, using recorded span", map[string]interface{}{
			"comment_id": comment.ID,
			"path":       comment.Path,
			"error":      err.Error(),
		})
		return domain.LineRange{Beg: beg, End: end}
	}

	current := d.Text()
	if current == "" {
		r.traceLog(ctx, "hunk has no current-side text, using recorded span", map[string]interface{}{
			"comment_id": comment.ID,
			"path":       comment.Path,
		})
		return domain.LineRange{Beg: beg, End: beg + span}
	}

	if idx := strings.Index(text, current); idx >= 0 {
		relocated := strings.Count(text[:idx], "\n")
		r.traceLog(ctx, "hunk text found in document", map[string]interface{}{
			"comment_id":   comment.ID,
			"path":         comment.Path,
			"recorded_beg": beg,
			"resolved_beg": relocated,
		})
		beg = relocated
	} else {
		r.traceLog(ctx, "hunk text not found in document, using recorded span", map[string]interface{}{
			"comment_id": comment.ID,
			"path":       comment.Path,
		})
	}

	return domain.LineRange{Beg: beg, End: beg + span}
}

func (r *Resolver) traceLog(ctx context.Context, message string, fields map[string]interface{}) {
	if !r.trace {
		return
	}
	r.logger.LogInfo(ctx, message, fields)
}
