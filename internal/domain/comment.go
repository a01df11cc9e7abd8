// Package domain holds the platform-agnostic model shared by the adapters:
// review comments as fetched from the review platform, the conversations
// they form, and resolved document positions.
package domain

import "strings"

// User identifies the author of a review comment.
type User struct {
	Login string
	ID    int64
}

// SubjectType distinguishes comments anchored to a line span from comments
// on the file as a whole.
type SubjectType int

const (
	// SubjectLine anchors the comment to a line span recorded in the hunk.
	SubjectLine SubjectType = iota
	// SubjectFile attaches the comment to the file without a span.
	SubjectFile
)

// ParseSubjectType maps the platform's subject_type string onto SubjectType.
// Unknown or empty values default to SubjectLine, matching how the platform
// omits the field for ordinary line comments.
func ParseSubjectType(s string) SubjectType {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "line") {
		return SubjectLine
	}
	if strings.Contains(lower, "file") {
		return SubjectFile
	}
	return SubjectLine
}

// ReviewComment is one review comment as recorded by the platform, together
// with the diff hunk it was made against. Line numbers are 1-based; the
// Original* fields refer to the reviewed revision and stay populated even
// when a force-push nulls the live-side fields.
type ReviewComment struct {
	ID               int64
	InReplyToID      int64
	Body             string
	CommitID         string
	OriginalCommitID string

	// Line and StartLine are 0 when the platform reports them as null.
	Line      int
	StartLine int

	OriginalLine      int
	OriginalStartLine int

	User        User
	DiffHunk    string
	Path        string
	SubjectType SubjectType
	Side        string
	StartSide   string
	CreatedAt   string
}

// IsReply reports whether the comment is a reply to another comment.
func (c ReviewComment) IsReply() bool {
	return c.InReplyToID != 0
}

// LineRange is a zero-based half-open [Beg, End) line interval in the live
// document. It is recomputed on every document change and never cached.
type LineRange struct {
	Beg int
	End int
}
