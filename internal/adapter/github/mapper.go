package github

import (
	"github.com/bkyoung/review-lsp/internal/domain"
)

// ToDomain converts an API comment to the platform-agnostic domain shape.
// Nullable position fields collapse to zero; the resolver treats zero as
// "not set" and falls back to the single-line span.
func ToDomain(c APIComment) domain.ReviewComment {
	comment := domain.ReviewComment{
		ID:               c.ID,
		InReplyToID:      c.InReplyToID,
		Body:             c.Body,
		CommitID:         c.CommitID,
		OriginalCommitID: c.OriginalCommitID,
		OriginalLine:     c.OriginalLine,
		User: domain.User{
			Login: c.User.Login,
			ID:    c.User.ID,
		},
		DiffHunk:    c.DiffHunk,
		Path:        c.Path,
		SubjectType: domain.ParseSubjectType(c.SubjectType),
		Side:        c.Side,
		CreatedAt:   c.CreatedAt,
	}

	if c.Line != nil {
		comment.Line = *c.Line
	}
	if c.StartLine != nil {
		comment.StartLine = *c.StartLine
	}
	if c.OriginalStartLine != nil {
		comment.OriginalStartLine = *c.OriginalStartLine
	}
	if c.StartSide != nil {
		comment.StartSide = *c.StartSide
	}

	return comment
}

// ToDomainAll converts a page of API comments, preserving order.
func ToDomainAll(comments []APIComment) []domain.ReviewComment {
	result := make([]domain.ReviewComment, len(comments))
	for i, c := range comments {
		result[i] = ToDomain(c)
	}
	return result
}
